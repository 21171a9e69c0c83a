package services

import "github.com/custodia-labs/studyhall/internal/core/domain"

// AssemblePrompt builds the ordered message list for one generation call.
//
// The system message is always first and singular. History is copied 1:1 in
// stored order with roles preserved; the caller has already bounded it. The
// new user turn is always last. Nothing is dropped or reordered.
func AssemblePrompt(system string, history []domain.ConversationTurn, newTurn string) domain.GenerationRequest {
	messages := make([]domain.Message, 0, len(history)+2)
	messages = append(messages, domain.Message{Role: domain.RoleSystem, Content: system})

	for _, turn := range history {
		messages = append(messages, domain.Message{Role: turn.Role, Content: turn.Content})
	}

	messages = append(messages, domain.Message{Role: domain.RoleUser, Content: newTurn})
	return domain.GenerationRequest{Messages: messages}
}
