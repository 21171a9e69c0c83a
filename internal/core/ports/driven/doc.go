// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - NoteStore: Per (user, subject) note metadata
//   - BlobStore: Extracted text addressed by opaque handle
//   - ConversationStore: Append-only conversation turns
//   - ConfigStore: Application configuration
//   - PromptStore: System prompt templates
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Without it, every generation feature returns ErrLLMUnavailable.
//   - TextExtractor: Without one for a MIME type, uploads of that type are rejected.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
