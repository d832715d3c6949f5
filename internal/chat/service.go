package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/medimind/medimind-server/pkg/logging"
)

var (
	ErrEmptyMessage  = errors.New("message is required")
	ErrNotConfigured = errors.New("gemini api key not configured")
)

// LLMClient is the model behind the relay; GeminiClient in production,
// a stub in tests.
type LLMClient interface {
	Reply(ctx context.Context, message string) (string, error)
}

const fallbackResponse = "I apologize, but I couldn't generate a response. Please try again."

type Service struct {
	llm     LLMClient
	history HistoryRepository
	logger  *logging.Logger
}

// NewService wires the relay. llm may be nil when no API key is configured;
// Chat then fails with ErrNotConfigured.
func NewService(llm LLMClient, history HistoryRepository, logger *logging.Logger) *Service {
	return &Service{
		llm:     llm,
		history: history,
		logger:  logger,
	}
}

type Reply struct {
	SessionID string
	Response  string
}

// Chat relays message to the model and logs the exchange. A history write
// failure never fails the chat: the reply is already in hand and the log is
// best-effort, matching the behavior users rely on.
func (s *Service) Chat(ctx context.Context, sessionID, message string) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if s.llm == nil {
		return nil, ErrNotConfigured
	}

	if strings.TrimSpace(sessionID) == "" {
		sessionID = uuid.NewString()
	}

	response, err := s.llm.Reply(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("relay chat message: %w", err)
	}
	if response == "" {
		response = fallbackResponse
	}

	if err := s.history.Insert(ctx, Exchange{
		SessionID:   sessionID,
		UserMessage: message,
		BotResponse: response,
	}); err != nil {
		s.logger.Error("failed to store chat exchange", "session_id", sessionID, "error", err)
	}

	return &Reply{SessionID: sessionID, Response: response}, nil
}

func (s *Service) History(ctx context.Context, sessionID string) ([]Exchange, error) {
	return s.history.ListBySession(ctx, sessionID)
}
