package domain

import "time"

// Flashcard is one generated question/answer pair.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// FlashcardSet is the envelope returned by flashcard generation.
type FlashcardSet struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	UserID    string      `json:"user_id"`
	SubjectID string      `json:"subject_id"`
	Cards     []Flashcard `json:"cards"`
	Truncated bool        `json:"truncated"`
	CreatedAt time.Time   `json:"created_at"`
}

// Keyword is one generated key term with a short definition.
type Keyword struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// ChatReply is the result shape of a conversational call.
type ChatReply struct {
	Reply string `json:"reply"`

	// Truncated is true when the notes were sampled to fit the context budget.
	Truncated bool `json:"truncated,omitempty"`

	// NoMaterial is true when the reply is the fixed notes-still-processing message.
	NoMaterial bool `json:"no_material,omitempty"`
}
