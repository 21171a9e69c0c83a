// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem under ~/.studyhall.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable prompt templates
//
// LoadEnv reads .env overrides into the process environment.
package file
