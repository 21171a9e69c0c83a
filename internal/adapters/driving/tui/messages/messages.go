// Package messages defines Bubbletea message types for the chat TUI.
// Each message carries the result of one asynchronous service call.
package messages

import (
	"github.com/custodia-labs/studyhall/internal/core/domain"
)

// HistoryLoaded carries the stored conversation shown on start-up.
type HistoryLoaded struct {
	Turns []domain.ConversationTurn
	Err   error
}

// ReplyReceived carries the answer to a question.
type ReplyReceived struct {
	Question string
	Reply    *domain.ChatReply
	Err      error
}

// HistoryCleared reports how many turns were deleted.
type HistoryCleared struct {
	Removed int
	Err     error
}
