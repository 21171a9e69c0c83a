// Package domain defines the core business entities for studyhall.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Note: An uploaded study document belonging to a (user, subject) pair
//   - SourceDocument: Extracted text fetched for one generation request
//   - Corpus: The concatenated text of every usable SourceDocument
//   - ContextBundle: The corpus after the context budget has been applied
//   - ConversationTurn: One persisted message in a subject conversation
//   - GenerationRequest / Completion: What is sent to and received from an LLM
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
