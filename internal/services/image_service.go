package services

import (
	"context"
	"strings"

	"github.com/chatimage/backend/internal/apperrors"
	"go.uber.org/zap"
)

// ImageGenerator is the interface that wraps the image-generation API call
type ImageGenerator interface {
	// Method Generate creates one image for the prompt and returns its URL.
	Generate(ctx context.Context, prompt string) (string, error)
}

// imageService implements ImageService
type imageService struct {
	client ImageGenerator
	logger *zap.Logger
}

// NewImageService creates a new image service
func NewImageService(client ImageGenerator, logger *zap.Logger) *imageService {
	return &imageService{
		client: client,
		logger: logger,
	}
}

// Generate forwards prompt to the image-generation API and returns the image URL
func (s *imageService) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", apperrors.Validation("prompt is required")
	}

	url, err := s.client.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("image generation failed", zap.Error(err))
		return "", apperrors.Upstream("image service unavailable", err)
	}

	return url, nil
}
