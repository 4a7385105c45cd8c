package chat

import (
	"github.com/kavia-common/qna-chatbot/internal/llm"
	"github.com/kavia-common/qna-chatbot/internal/models"
)

// BuildContext assembles the ordered prompt for one turn: the optional system
// prompt first, then every prior message in stored order, then the new user
// message last. Deterministic for fixed inputs. The full history is always
// included; there is no windowing or summarization.
func BuildContext(prior []models.Message, systemPrompt, userText string) []llm.ChatMessage {
	history := make([]llm.ChatMessage, 0, len(prior)+2)
	if systemPrompt != "" {
		history = append(history, llm.ChatMessage{Role: models.RoleSystem, Content: systemPrompt})
	}
	for _, m := range prior {
		history = append(history, llm.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return append(history, llm.ChatMessage{Role: models.RoleUser, Content: userText})
}
