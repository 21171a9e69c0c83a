package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/studyhall/internal/core/domain"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "studyhall", rootCmd.Use)
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	for name, shorthand := range map[string]string{"user": "u", "subject": "s", "verbose": "v", "json": ""} {
		flag := rootCmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, "%s flag should exist", name)
		assert.Equal(t, shorthand, flag.Shorthand)
	}
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"ask", "chat", "flashcards", "keywords", "history", "notes", "settings", "mcp", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestSetVersion(t *testing.T) {
	original := version
	defer func() { version = original }()

	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", version)

	SetVersion("")
	assert.Equal(t, "1.2.3", version)
}

func TestConversationKey(t *testing.T) {
	defer resetFlags()

	t.Run("flags win over environment", func(t *testing.T) {
		t.Setenv(EnvUser, "env-user")
		t.Setenv(EnvSubject, "env-subject")
		userID, subjectID = "alice", "biology"

		key, err := conversationKey()
		require.NoError(t, err)
		assert.Equal(t, domain.ConversationKey{UserID: "alice", SubjectID: "biology"}, key)
	})

	t.Run("environment fills missing flags", func(t *testing.T) {
		t.Setenv(EnvUser, "env-user")
		t.Setenv(EnvSubject, "env-subject")
		userID, subjectID = "", ""

		key, err := conversationKey()
		require.NoError(t, err)
		assert.Equal(t, domain.ConversationKey{UserID: "env-user", SubjectID: "env-subject"}, key)
	})

	t.Run("user falls back to USER", func(t *testing.T) {
		t.Setenv(EnvUser, "")
		t.Setenv("USER", "login")
		userID, subjectID = "", "chem"

		key, err := conversationKey()
		require.NoError(t, err)
		assert.Equal(t, "login", key.UserID)
	})

	t.Run("missing subject", func(t *testing.T) {
		t.Setenv(EnvSubject, "")
		userID, subjectID = "alice", ""

		_, err := conversationKey()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--subject")
	})

	t.Run("missing user", func(t *testing.T) {
		t.Setenv(EnvUser, "")
		t.Setenv("USER", "")
		userID, subjectID = "", "chem"

		_, err := conversationKey()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--user")
	})
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "llm unavailable", err: domain.ErrLLMUnavailable, want: "settings llm"},
		{name: "retries exhausted", err: domain.ErrMaxRetriesExceeded, want: "try again later"},
		{name: "rate limited", err: &domain.RateLimitError{Message: "slow down"}, want: "rate limited by the provider"},
		{name: "malformed output", err: &domain.ExtractionError{Stage: domain.StageParse, Reason: "bad json"}, want: "could not be parsed"},
		{name: "other", err: errors.New("boom"), want: "ask failed: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := describeError("ask failed", tt.err)
			assert.Contains(t, err.Error(), tt.want)
			assert.ErrorIs(t, err, tt.err, fmt.Sprintf("%v should wrap the cause", err))
		})
	}
}
