package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medimind/medimind-server/internal/chat"
	"github.com/medimind/medimind-server/pkg/logging"
)

type ChatService interface {
	Chat(ctx context.Context, sessionID, message string) (*chat.Reply, error)
	History(ctx context.Context, sessionID string) ([]chat.Exchange, error)
}

func chatHandler(svc ChatService, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		reply, err := svc.Chat(r.Context(), req.SessionID, req.Message)
		if err != nil {
			switch {
			case errors.Is(err, chat.ErrEmptyMessage):
				writeError(w, http.StatusBadRequest, "message is required")
			case errors.Is(err, chat.ErrNotConfigured):
				writeError(w, http.StatusInternalServerError, "chat assistant is not configured")
			default:
				logger.Error("chat request failed", "error", err)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		writeJSON(w, http.StatusOK, ChatResponse{
			Response:  reply.Response,
			SessionID: reply.SessionID,
		})
	}
}

func chatHistoryHandler(svc ChatService, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")

		exchanges, err := svc.History(r.Context(), sessionID)
		if err != nil {
			logger.Error("chat history request failed", "session_id", sessionID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		history := make([]ChatExchange, 0, len(exchanges))
		for _, e := range exchanges {
			history = append(history, ChatExchange{
				UserMessage: e.UserMessage,
				BotResponse: e.BotResponse,
				Timestamp:   e.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		writeJSON(w, http.StatusOK, ChatHistoryResponse{
			SessionID: sessionID,
			History:   history,
		})
	}
}
