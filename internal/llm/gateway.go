package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kavia-common/qna-chatbot/internal/models"
	"go.uber.org/zap"
)

// ChatMessage is one role/content entry of the ordered prompt for a single
// generation call.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ErrGeneration is returned for any downstream generation failure. The
// underlying cause is logged, never returned, so provider diagnostics stay
// out of client responses.
var ErrGeneration = errors.New("chat generation failed")

// Generator produces an assistant reply for an ordered message list. One
// attempt per call; retries are a caller policy.
type Generator interface {
	Generate(ctx context.Context, messages []ChatMessage) (string, error)
}

type Config struct {
	APIKey  string
	Model   string
	UseMock bool
}

// NewGenerator selects the operating mode: mock when explicitly requested or
// when no credential is configured, live Gemini otherwise.
func NewGenerator(cfg Config, logger *zap.Logger) Generator {
	if cfg.UseMock || strings.TrimSpace(cfg.APIKey) == "" {
		logger.Warn("using mock AI responses (no GEMINI_API_KEY provided or USE_MOCK_AI=true)")
		return &MockGenerator{}
	}
	return &geminiGenerator{apiKey: cfg.APIKey, model: cfg.Model, logger: logger}
}

// MockGenerator echoes the most recent user message. It never fails, which
// keeps environments without provider keys fully functional.
type MockGenerator struct{}

func (MockGenerator) Generate(_ context.Context, messages []ChatMessage) (string, error) {
	var lastUser string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == models.RoleUser {
			lastUser = messages[i].Content
			break
		}
	}
	return fmt.Sprintf("(Mocked) I received your question: '%s'. Please configure GEMINI_API_KEY for real responses.", lastUser), nil
}
