package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptChatSystem is the system prompt for subject Q&A.
	// The template expects one %s placeholder for the study material.
	PromptChatSystem = "chat_system"

	// PromptFlashcards asks for a JSON array of {front, back} records.
	// The template expects %d (card count) and %s (study material).
	PromptFlashcards = "flashcards"

	// PromptKeywords asks for a JSON array of {term, definition} records.
	// The template expects %d (keyword count) and %s (study material).
	PromptKeywords = "keywords"
)

// DefaultPrompts are the built-in templates. Prompt stores seed user-editable
// files from them and fall back to them when a file is missing.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var DefaultPrompts = map[string]string{
	PromptChatSystem: `You are a patient study assistant. Answer the student's questions using the study material below, which comes from the notes they uploaded for this subject.

Rules:
1. Base your answers on the material. If the material does not cover the question, say so and then answer from general knowledge, clearly marked as such.
2. Refer to documents by the name in their "=== Document: ... ===" header when it helps the student find the source.
3. Keep answers focused and explain step by step when the question asks how or why.

Study material:
%s`,

	PromptFlashcards: `You create study flashcards from a student's notes.

Write exactly %d flashcards covering the most important facts, definitions and concepts in the material below. Each card has a "front" (a question or prompt) and a "back" (a concise answer).

Respond with ONLY a JSON array, no commentary, in this form:
[{"front": "question", "back": "answer"}]

Study material:
%s`,

	PromptKeywords: `You extract key terms from a student's notes.

List exactly %d key terms from the material below that a student must know, each with a one-sentence definition grounded in the material.

Respond with ONLY a JSON array, no commentary, in this form:
[{"term": "key term", "definition": "short definition"}]

Study material:
%s`,
}
