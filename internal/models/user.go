package models

import "time"

// User represents a registered user in the credential store
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	CreatedAt    time.Time `json:"-"`
}

// SignupRequest represents a signup request
type SignupRequest struct {
	Username string `json:"username" example:"ana"`
	Email    string `json:"email" example:"ana@example.com"`
	Password string `json:"password" example:"Secure1!"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" example:"ana@example.com"`
	Password string `json:"password" example:"Secure1!"`
}

// UserResponse is the public view of a user returned after a successful login
type UserResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ToResponse converts a user to its public view
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

// MessageResponse is the body of every response that carries no payload besides a message
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	User    *UserResponse `json:"user"`
}
