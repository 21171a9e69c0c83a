// Package tui provides an interactive terminal chat for studyhall.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/studyhall/internal/core/domain"
	"github.com/custodia-labs/studyhall/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the TUI.
type Ports struct {
	// Chat answers questions and stores the conversation.
	Chat driving.ChatService

	// Key selects the conversation.
	Key domain.ConversationKey

	// HistoryLimit is how many stored turns are shown on start-up.
	HistoryLimit int
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	return p.Key.Validate()
}
