package handlers

import (
	"context"
	"net/http"

	"github.com/chatimage/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for credential management business logic.
type AuthService interface {
	// Method Signup validates the credentials and creates a new user.
	//
	// "req" parameter contains username, email and password.
	//
	// A validation error is returned for missing fields, a malformed email or a weak password,
	// a conflict error if the normalized email is already registered,
	// and a store error if the database fails.
	Signup(ctx context.Context, req *models.SignupRequest) error
	// Method Login checks email and password and returns the public view of the user.
	//
	// "req" parameter contains email and password.
	//
	// An unknown email and a wrong password both return the same authentication error together with "nil" value.
	Login(ctx context.Context, req *models.LoginRequest) (*models.UserResponse, error)
}

// AuthHandler handles signup and login HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{logger: logger},
		authService: authService,
	}
}

// RegisterRoutes registers all auth handler routes
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)
}

// Signup handles POST /signup
// @Summary Register a new user
// @Description Register a new user with username, email and password. The email is lowercased and trimmed before storage.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.SignupRequest true "Signup request"
// @Success 201 {object} models.MessageResponse "User registered successfully"
// @Failure 400 {object} models.MessageResponse "Missing fields, invalid email format or weak password"
// @Failure 409 {object} models.MessageResponse "Email already registered"
// @Failure 500 {object} models.MessageResponse "Internal server error"
// @Router /signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if !h.readRequest(w, r, &req) {
		return
	}

	if err := h.authService.Signup(r.Context(), &req); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, models.MessageResponse{
		Success: true,
		Message: "user registered successfully",
	})
}

// Login handles POST /login
// @Summary Login user
// @Description Check email and password. No session or token is issued.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} models.LoginResponse "Login successful"
// @Failure 400 {object} models.MessageResponse "Missing fields"
// @Failure 401 {object} models.MessageResponse "Invalid credentials"
// @Failure 500 {object} models.MessageResponse "Internal server error"
// @Router /login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.readRequest(w, r, &req) {
		return
	}

	user, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, models.LoginResponse{
		Success: true,
		Message: "login successful",
		User:    user,
	})
}
