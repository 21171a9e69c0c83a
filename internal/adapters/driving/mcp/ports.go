package mcp

import (
	"github.com/custodia-labs/studyhall/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server calls.
type Ports struct {
	// Chat answers questions and owns the conversation history.
	Chat driving.ChatService

	// Flashcards generates flashcard sets. Optional.
	Flashcards driving.FlashcardService

	// Keywords extracts key terms. Optional.
	Keywords driving.KeywordService

	// Notes lists a subject's notes. Optional.
	Notes driving.NoteService

	// DefaultUser is used when a tool call or resource URI names no user.
	DefaultUser string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	return nil
}
