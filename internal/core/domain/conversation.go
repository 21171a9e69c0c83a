package domain

import (
	"fmt"
	"time"
)

// Role is the author of a message.
type Role string

// Message roles understood by every generation service.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid returns true if the role is recognised.
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (r Role) String() string {
	return string(r)
}

// ConversationKey identifies one conversation: a user studying a subject.
type ConversationKey struct {
	UserID    string
	SubjectID string
}

// Validate returns ErrInvalidInput if either part is missing.
func (k ConversationKey) Validate() error {
	if k.UserID == "" || k.SubjectID == "" {
		return fmt.Errorf("%w: conversation key requires user and subject", ErrInvalidInput)
	}
	return nil
}

// String returns "user/subject".
func (k ConversationKey) String() string {
	return k.UserID + "/" + k.SubjectID
}

// ConversationTurn is one persisted message. Turns are append-only and
// ordered by Timestamp ascending; they are never edited once written.
type ConversationTurn struct {
	ID        string
	Key       ConversationKey
	Role      Role
	Content   string
	Timestamp time.Time
}
