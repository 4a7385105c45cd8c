package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/kavia-common/qna-chatbot/internal/chat"
	"github.com/kavia-common/qna-chatbot/internal/db"
	"github.com/kavia-common/qna-chatbot/internal/llm"
	"github.com/kavia-common/qna-chatbot/internal/models"
	"go.uber.org/zap"
)

// Authenticator resolves the opaque owner id for a request. Credential
// issuance and verification happen upstream; this layer only needs the
// resulting identity.
type Authenticator interface {
	Authenticate(r *http.Request) (string, error)
}

// HeaderAuthenticator trusts an upstream gateway to have authenticated the
// user and forwarded the user id in a header.
type HeaderAuthenticator struct {
	Header string
}

func (a HeaderAuthenticator) Authenticate(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(a.Header))
	if id == "" {
		return "", errors.New("missing user identity")
	}
	return id, nil
}

type Handler struct {
	db     *db.Database
	chat   *chat.Orchestrator
	auth   Authenticator
	logger *zap.Logger
}

func NewHandler(database *db.Database, orchestrator *chat.Orchestrator, auth Authenticator, logger *zap.Logger) *Handler {
	return &Handler{
		db:     database,
		chat:   orchestrator,
		auth:   auth,
		logger: logger,
	}
}

type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
	SystemPrompt   string `json:"system_prompt,omitempty"`
}

type ChatResponse struct {
	ConversationID string           `json:"conversation_id"`
	Assistant      string           `json:"assistant"`
	Messages       []models.Message `json:"messages"`
}

type CreateConversationRequest struct {
	Title string `json:"title"`
}

type ConversationDetail struct {
	models.Conversation
	Messages []models.Message `json:"messages"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Server is up!"})
}

// HandleChat submits one conversation turn.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ownerID, err := h.auth.Authenticate(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.chat.SubmitTurn(r.Context(), ownerID, req.ConversationID, req.Message, req.SystemPrompt)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, ChatResponse{
		ConversationID: result.ConversationID,
		Assistant:      result.Assistant,
		Messages:       result.Messages,
	})
}

// HandleConversations lists the caller's conversations (GET) or creates a new
// one (POST).
func (h *Handler) HandleConversations(w http.ResponseWriter, r *http.Request) {
	ownerID, err := h.auth.Authenticate(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		conversations, err := h.db.ListConversations(r.Context(), ownerID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeJSON(w, http.StatusOK, conversations)

	case http.MethodPost:
		var req CreateConversationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		conversation, err := h.db.CreateConversation(r.Context(), ownerID, req.Title)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeJSON(w, http.StatusCreated, conversation)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleConversation fetches one conversation with its messages (GET) or
// deletes it and everything in it (DELETE).
func (h *Handler) HandleConversation(w http.ResponseWriter, r *http.Request) {
	ownerID, err := h.auth.Authenticate(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	convID := r.URL.Query().Get("conversation_id")
	if convID == "" {
		http.Error(w, "Invalid conversation ID", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		conversation, err := h.db.GetConversation(r.Context(), ownerID, convID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		messages, err := h.db.ListMessages(r.Context(), convID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeJSON(w, http.StatusOK, ConversationDetail{Conversation: *conversation, Messages: messages})

	case http.MethodDelete:
		if err := h.db.DeleteConversation(r.Context(), ownerID, convID); err != nil {
			h.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// writeError translates domain errors into status codes. Anything unexpected
// is a storage-level failure and stays a 500 with no detail leaked.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		http.Error(w, "Message is required", http.StatusBadRequest)
	case errors.Is(err, db.ErrNotFound):
		http.Error(w, "Conversation not found", http.StatusNotFound)
	case errors.Is(err, llm.ErrGeneration):
		http.Error(w, "Chat service error", http.StatusBadGateway)
	default:
		h.logger.Error("request failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}
