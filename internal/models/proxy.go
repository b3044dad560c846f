package models

// ChatRequest represents a chat request from the client
type ChatRequest struct {
	Message string `json:"message" example:"Tell me a joke"`
}

// ChatResponse carries the reply text of the chat-completion API
type ChatResponse struct {
	Success bool   `json:"success"`
	Reply   string `json:"reply"`
}

// ImageRequest represents an image generation request from the client
type ImageRequest struct {
	Prompt string `json:"prompt" example:"a red fox in the snow"`
}

// ImageResponse carries the URL of the generated image
type ImageResponse struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"imageUrl"`
}
