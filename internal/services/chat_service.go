package services

import (
	"context"
	"strings"

	"github.com/chatimage/backend/internal/apperrors"
	"go.uber.org/zap"
)

// ChatCompleter is the interface that wraps the chat-completion API call
type ChatCompleter interface {
	// Method Complete sends a single user message and returns the reply text.
	Complete(ctx context.Context, message string) (string, error)
}

// chatService implements ChatService
type chatService struct {
	client ChatCompleter
	logger *zap.Logger
}

// NewChatService creates a new chat service
func NewChatService(client ChatCompleter, logger *zap.Logger) *chatService {
	return &chatService{
		client: client,
		logger: logger,
	}
}

// Reply forwards message to the chat-completion API and returns its reply
func (s *chatService) Reply(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", apperrors.Validation("message is required")
	}

	reply, err := s.client.Complete(ctx, message)
	if err != nil {
		s.logger.Warn("chat completion failed", zap.Error(err))
		return "", apperrors.Upstream("chat service unavailable", err)
	}

	return reply, nil
}
