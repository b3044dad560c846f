package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/chatimage/backend/internal/apperrors"
	"github.com/chatimage/backend/internal/middlewares"
	"github.com/chatimage/backend/internal/models"
	"github.com/chatimage/backend/internal/repositories"
	"github.com/chatimage/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockAuthService is a mock implementation of AuthService
type mockAuthService struct {
	signupErr     error
	loginUser     *models.UserResponse
	loginErr      error
	signupRequest *models.SignupRequest
}

func (m *mockAuthService) Signup(ctx context.Context, req *models.SignupRequest) error {
	m.signupRequest = req
	return m.signupErr
}

func (m *mockAuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.UserResponse, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return m.loginUser, nil
}

func newAuthRouter(svc AuthService) chi.Router {
	r := chi.NewRouter()
	r.Use(middlewares.RequestSizeLimitMiddleware(1 << 20))
	NewAuthHandler(svc, zap.NewNop()).RegisterRoutes(r)
	return r
}

func doRequest(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Signup(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		service        *mockAuthService
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "success",
			body:           `{"username":"ana","email":"ana@example.com","password":"Secure1!"}`,
			service:        &mockAuthService{},
			expectedStatus: http.StatusCreated,
			expectedBody:   `{"success":true,"message":"user registered successfully"}`,
		},
		{
			name:           "malformed json",
			body:           `{"username":`,
			service:        &mockAuthService{},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"success":false,"message":"invalid request body"}`,
		},
		{
			name:           "unknown field",
			body:           `{"username":"ana","email":"ana@example.com","password":"Secure1!","role":"admin"}`,
			service:        &mockAuthService{},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"success":false,"message":"invalid request body"}`,
		},
		{
			name:           "trailing data",
			body:           `{"username":"ana","email":"ana@example.com","password":"Secure1!"} {}`,
			service:        &mockAuthService{},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"success":false,"message":"invalid request body"}`,
		},
		{
			name:           "validation error",
			body:           `{"username":"","email":"ana@example.com","password":"Secure1!"}`,
			service:        &mockAuthService{signupErr: apperrors.Validation("missing fields")},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"success":false,"message":"missing fields"}`,
		},
		{
			name:           "duplicate email",
			body:           `{"username":"ana","email":"ana@example.com","password":"Secure1!"}`,
			service:        &mockAuthService{signupErr: apperrors.Conflict("email already registered")},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"success":false,"message":"email already registered"}`,
		},
		{
			name:           "store error is not leaked",
			body:           `{"username":"ana","email":"ana@example.com","password":"Secure1!"}`,
			service:        &mockAuthService{signupErr: apperrors.Store(errors.New("dial tcp 10.0.0.1:3306: connection refused"))},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"success":false,"message":"internal server error"}`,
		},
		{
			name:           "unexpected error",
			body:           `{"username":"ana","email":"ana@example.com","password":"Secure1!"}`,
			service:        &mockAuthService{signupErr: errors.New("bcrypt failure")},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"success":false,"message":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, newAuthRouter(tt.service), "/signup", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestAuthHandler_Signup_PassesRequestToService(t *testing.T) {
	svc := &mockAuthService{}

	doRequest(t, newAuthRouter(svc), "/signup", `{"username":"ana","email":"ANA@Example.com ","password":"Secure1!"}`)

	require.NotNil(t, svc.signupRequest)
	assert.Equal(t, &models.SignupRequest{Username: "ana", Email: "ANA@Example.com ", Password: "Secure1!"}, svc.signupRequest)
}

func TestAuthHandler_Signup_BodyTooLarge(t *testing.T) {
	r := chi.NewRouter()
	r.Use(middlewares.RequestSizeLimitMiddleware(32))
	NewAuthHandler(&mockAuthService{}, zap.NewNop()).RegisterRoutes(r)

	body := `{"username":"` + strings.Repeat("a", 64) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewBufferString(body))
	req.ContentLength = -1 // force the streaming limit instead of the header check
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		service        *mockAuthService
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "success",
			body:           `{"email":"ana@example.com","password":"Secure1!"}`,
			service:        &mockAuthService{loginUser: &models.UserResponse{ID: 1, Username: "ana", Email: "ana@example.com"}},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success":true,"message":"login successful","user":{"id":1,"username":"ana","email":"ana@example.com"}}`,
		},
		{
			name:           "malformed json",
			body:           `not json`,
			service:        &mockAuthService{},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"success":false,"message":"invalid request body"}`,
		},
		{
			name:           "missing fields",
			body:           `{"email":"ana@example.com"}`,
			service:        &mockAuthService{loginErr: apperrors.Validation("missing fields")},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"success":false,"message":"missing fields"}`,
		},
		{
			name:           "invalid credentials",
			body:           `{"email":"ana@example.com","password":"Wrong1!!"}`,
			service:        &mockAuthService{loginErr: apperrors.Auth("invalid credentials")},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"success":false,"message":"invalid credentials"}`,
		},
		{
			name:           "store error",
			body:           `{"email":"ana@example.com","password":"Secure1!"}`,
			service:        &mockAuthService{loginErr: apperrors.Store(errors.New("timeout"))},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"success":false,"message":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, newAuthRouter(tt.service), "/login", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			assert.NotContains(t, w.Body.String(), "password")
		})
	}
}

// memoryUserRepository is an in-memory user store with a unique email key
type memoryUserRepository struct {
	mu     sync.Mutex
	nextID int
	users  map[string]models.User
}

func (m *memoryUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Email]; ok {
		return repositories.ErrDuplicateEmail
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.Email] = *user
	return nil
}

func (m *memoryUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &user, nil
}

func (m *memoryUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[email]
	return ok, nil
}

func TestAuthHandler_SignupThenLogin(t *testing.T) {
	repo := &memoryUserRepository{users: make(map[string]models.User)}
	svc := services.NewAuthService(repo, services.NewBcryptHasher(services.MinBcryptCost), services.StrictPasswordPolicy(), zap.NewNop())
	router := newAuthRouter(svc)

	w := doRequest(t, router, "/signup", `{"username":"ana","email":"ANA@Example.com ","password":"Secure1!"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"user registered successfully"}`, w.Body.String())

	w = doRequest(t, router, "/login", `{"email":"ana@example.com","password":"Secure1!"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, &models.UserResponse{ID: 1, Username: "ana", Email: "ana@example.com"}, resp.User)

	w = doRequest(t, router, "/signup", `{"username":"other","email":"Ana@example.com","password":"Secure1!"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	wrongPassword := doRequest(t, router, "/login", `{"email":"ana@example.com","password":"Wrong1!!"}`)
	unknownEmail := doRequest(t, router, "/login", `{"email":"ghost@example.com","password":"Secure1!"}`)
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, wrongPassword.Code, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())

	w = doRequest(t, router, "/signup", `{"username":"bob","email":"not-an-email","password":"Secure1!"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"invalid email format"}`, w.Body.String())

	w = doRequest(t, router, "/signup", `{"username":"bob","email":"bob@example.com","password":"short1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"weak password"}`, w.Body.String())
}
