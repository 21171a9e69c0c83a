// Package mcp exposes studyhall over the Model Context Protocol so that AI
// assistants can ask questions about a subject's notes and generate study aids.
package mcp

import "errors"

var (
	// ErrMissingChatService is returned when the chat service is not provided.
	ErrMissingChatService = errors.New("mcp: chat service is required")

	// ErrMissingUser is returned when a call names no user and no default is set.
	ErrMissingUser = errors.New("mcp: user_id is required when no default user is configured")
)
