package llm

import (
	"context"
	"sync"

	"github.com/kavia-common/qna-chatbot/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
)

type geminiGenerator struct {
	apiKey string
	model  string
	logger *zap.Logger

	once    sync.Once
	client  *googleai.GoogleAI
	initErr error
}

// Generate maps the prompt to Gemini's role taxonomy and invokes the model
// once. The client is built on first use so a broken provider setup surfaces
// as a generation failure rather than a startup crash.
func (g *geminiGenerator) Generate(ctx context.Context, messages []ChatMessage) (string, error) {
	g.once.Do(func() {
		g.client, g.initErr = googleai.New(context.Background(),
			googleai.WithAPIKey(g.apiKey),
			googleai.WithDefaultModel(g.model))
	})
	if g.initErr != nil {
		g.logger.Error("failed to initialize Gemini client", zap.Error(g.initErr))
		return "", ErrGeneration
	}

	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		content = append(content, llms.TextParts(providerRole(m.Role), m.Content))
	}

	g.logger.Debug("calling chat model",
		zap.String("model", g.model),
		zap.Int("messages", len(content)),
		zap.Int("approx_prompt_tokens", EstimateTokens(messages)))

	resp, err := g.client.GenerateContent(ctx, content)
	if err != nil {
		g.logger.Error("chat model call failed", zap.String("model", g.model), zap.Error(err))
		return "", ErrGeneration
	}
	if len(resp.Choices) == 0 {
		g.logger.Error("chat model returned no choices", zap.String("model", g.model))
		return "", ErrGeneration
	}
	return resp.Choices[0].Content, nil
}

func providerRole(role string) schema.ChatMessageType {
	switch role {
	case models.RoleSystem:
		return schema.ChatMessageTypeSystem
	case models.RoleAssistant:
		return schema.ChatMessageTypeAI
	default:
		return schema.ChatMessageTypeHuman
	}
}
