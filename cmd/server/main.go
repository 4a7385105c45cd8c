package main

import (
	"net/http"

	"github.com/kavia-common/qna-chatbot/internal/api"
	"github.com/kavia-common/qna-chatbot/internal/chat"
	"github.com/kavia-common/qna-chatbot/internal/config"
	"github.com/kavia-common/qna-chatbot/internal/db"
	"github.com/kavia-common/qna-chatbot/internal/llm"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()

	database, err := db.New(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to initialize database",
			zap.Error(err),
			zap.String("dbPath", cfg.DBPath))
	}
	defer database.Close()

	generator := llm.NewGenerator(llm.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		UseMock: cfg.UseMockAI,
	}, logger)

	orchestrator := chat.NewOrchestrator(database, generator, logger)
	handler := api.NewHandler(database, orchestrator, api.HeaderAuthenticator{Header: "X-User-ID"}, logger)

	http.HandleFunc("/health", handler.Health)
	http.HandleFunc("/api/chat", handler.HandleChat)
	http.HandleFunc("/api/conversations", handler.HandleConversations)
	http.HandleFunc("/api/conversation", handler.HandleConversation)

	logger.Info("starting server", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, nil); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
