package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUsableHandle(t *testing.T) {
	tests := []struct {
		handle   string
		expected bool
	}{
		{"", false},
		{"   ", false},
		{"pending", false},
		{"PENDING", false},
		{" processing ", false},
		{"failed", false},
		{"none", false},
		{"blob-123", true},
		{"9d3c2a1e-6b1f-4e0a-8f7d-2c1b0a9e8d7c", true},
	}

	for _, tt := range tests {
		t.Run(tt.handle, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsUsableHandle(tt.handle))
			assert.Equal(t, tt.expected, Note{TextHandle: tt.handle}.HasUsableText())
		})
	}
}

func TestCorpus_IsEmpty(t *testing.T) {
	assert.True(t, Corpus{}.IsEmpty())
	assert.False(t, Corpus{DocumentCount: 1, FullText: "x", TotalLength: 1}.IsEmpty())
}

func TestConversationKey(t *testing.T) {
	t.Run("validate requires both parts", func(t *testing.T) {
		assert.ErrorIs(t, ConversationKey{UserID: "u"}.Validate(), ErrInvalidInput)
		assert.ErrorIs(t, ConversationKey{SubjectID: "s"}.Validate(), ErrInvalidInput)
		assert.NoError(t, ConversationKey{UserID: "u", SubjectID: "s"}.Validate())
	})

	t.Run("string form", func(t *testing.T) {
		assert.Equal(t, "alice/bio101", ConversationKey{UserID: "alice", SubjectID: "bio101"}.String())
	})
}

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleSystem.IsValid())
	assert.True(t, RoleUser.IsValid())
	assert.True(t, RoleAssistant.IsValid())
	assert.False(t, Role("tool").IsValid())
}

func TestOutcomeKind_String(t *testing.T) {
	assert.Equal(t, "success", OutcomeSuccess.String())
	assert.Equal(t, "rate_limited", OutcomeRateLimited.String())
	assert.Equal(t, "fatal", OutcomeFatal.String())
	assert.Equal(t, "unknown", OutcomeKind(42).String())
}
