// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Every generation feature runs through one shared pipeline:
//
//	NoteCorpusAggregator -> Budget -> AssemblePrompt -> ResilientInvoker -> Extract*
//
// The chat, flashcard and keyword services are thin callers that supply
// a prompt, a context budget and, for structured output, a record spec.
package services
