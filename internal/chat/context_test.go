package chat

import (
	"testing"

	"github.com/kavia-common/qna-chatbot/internal/llm"
	"github.com/kavia-common/qna-chatbot/internal/models"
	"github.com/stretchr/testify/require"
)

func TestBuildContextOrdering(t *testing.T) {
	prior := []models.Message{
		{Role: models.RoleUser, Content: "What is Go?"},
		{Role: models.RoleAssistant, Content: "A programming language."},
	}

	got := BuildContext(prior, "Be terse.", "Who made it?")

	require.Equal(t, []llm.ChatMessage{
		{Role: models.RoleSystem, Content: "Be terse."},
		{Role: models.RoleUser, Content: "What is Go?"},
		{Role: models.RoleAssistant, Content: "A programming language."},
		{Role: models.RoleUser, Content: "Who made it?"},
	}, got)
}

func TestBuildContextWithoutSystemPrompt(t *testing.T) {
	prior := []models.Message{
		{Role: models.RoleUser, Content: "hi"},
	}

	got := BuildContext(prior, "", "again")

	require.Equal(t, []llm.ChatMessage{
		{Role: models.RoleUser, Content: "hi"},
		{Role: models.RoleUser, Content: "again"},
	}, got)
}

func TestBuildContextEmptyHistory(t *testing.T) {
	got := BuildContext(nil, "", "Hello?")
	require.Equal(t, []llm.ChatMessage{{Role: models.RoleUser, Content: "Hello?"}}, got)
}

func TestBuildContextDeterministic(t *testing.T) {
	prior := []models.Message{
		{Role: models.RoleUser, Content: "a"},
		{Role: models.RoleAssistant, Content: "b"},
		{Role: models.RoleSystem, Content: "c"},
	}

	first := BuildContext(prior, "sys", "new")
	second := BuildContext(prior, "sys", "new")
	require.Equal(t, first, second)
}
