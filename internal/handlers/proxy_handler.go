package handlers

import (
	"context"
	"net/http"

	"github.com/chatimage/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ChatService is the interface that wraps the chat pass-through.
type ChatService interface {
	// Method Reply forwards the message to the chat-completion API and returns the reply text.
	//
	// A validation error is returned for an empty message and an upstream error if the API call fails.
	Reply(ctx context.Context, message string) (string, error)
}

// ImageService is the interface that wraps the image-generation pass-through.
type ImageService interface {
	// Method Generate forwards the prompt to the image-generation API and returns the image URL.
	//
	// A validation error is returned for an empty prompt and an upstream error if the API call fails.
	Generate(ctx context.Context, prompt string) (string, error)
}

// ProxyHandler handles the chat and image generation HTTP requests
type ProxyHandler struct {
	BaseHandler
	chatService  ChatService
	imageService ImageService
}

// NewProxyHandler creates a new proxy handler
func NewProxyHandler(chatService ChatService, imageService ImageService, logger *zap.Logger) *ProxyHandler {
	return &ProxyHandler{
		BaseHandler:  BaseHandler{logger: logger},
		chatService:  chatService,
		imageService: imageService,
	}
}

// RegisterRoutes registers all proxy handler routes
func (h *ProxyHandler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.Chat)
	r.Post("/generate-image", h.GenerateImage)
}

// Chat handles POST /chat
// @Summary Chat completion
// @Description Forward a message to the chat-completion API and relay its reply
// @Tags proxy
// @Accept json
// @Produce json
// @Param request body models.ChatRequest true "Chat request"
// @Success 200 {object} models.ChatResponse
// @Failure 400 {object} models.MessageResponse "Message is required"
// @Failure 502 {object} models.MessageResponse "Chat service unavailable"
// @Router /chat [post]
func (h *ProxyHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if !h.readRequest(w, r, &req) {
		return
	}

	reply, err := h.chatService.Reply(r.Context(), req.Message)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, models.ChatResponse{Success: true, Reply: reply})
}

// GenerateImage handles POST /generate-image
// @Summary Generate image
// @Description Forward a prompt to the image-generation API and relay the resulting image URL
// @Tags proxy
// @Accept json
// @Produce json
// @Param request body models.ImageRequest true "Image request"
// @Success 200 {object} models.ImageResponse
// @Failure 400 {object} models.MessageResponse "Prompt is required"
// @Failure 502 {object} models.MessageResponse "Image service unavailable"
// @Router /generate-image [post]
func (h *ProxyHandler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req models.ImageRequest
	if !h.readRequest(w, r, &req) {
		return
	}

	url, err := h.imageService.Generate(r.Context(), req.Prompt)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, models.ImageResponse{Success: true, ImageURL: url})
}
