package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/chatimage/backend/internal/apperrors"
	"github.com/chatimage/backend/internal/models"
	"github.com/chatimage/backend/internal/repositories"
	"go.uber.org/zap"
)

// UserRepository is the interface that wraps methods for User table data access
type UserRepository interface {
	// Method Create inserts a new user into the database and sets its ID.
	//
	// "user" parameter must carry a normalized email and a password hash.
	//
	// If the email is already taken, repositories.ErrDuplicateEmail is returned.
	Create(ctx context.Context, user *models.User) error
	// Method GetByEmail retrieves a user by normalized email.
	//
	// If user with such email does not exist, repositories.ErrUserNotFound is returned together with "nil" value.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Method ExistsByEmail checks if a user with such normalized email exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// PasswordHasher is the interface that wraps one-way salted password hashing
type PasswordHasher interface {
	// Method Hash returns a salted hash of the plaintext password.
	Hash(password string) (string, error)
	// Method Compare returns nil when the plaintext password matches the hash.
	Compare(hash, password string) error
}

// authService implements AuthService
type authService struct {
	userRepo UserRepository
	hasher   PasswordHasher
	policy   PasswordPolicy
	logger   *zap.Logger

	// dummyHash is compared against when the email is unknown, so both
	// login failure paths cost one hash verification.
	dummyHashOnce sync.Once
	dummyHash     string
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo UserRepository,
	hasher PasswordHasher,
	policy PasswordPolicy,
	logger *zap.Logger,
) *authService {
	return &authService{
		userRepo: userRepo,
		hasher:   hasher,
		policy:   policy,
		logger:   logger,
	}
}

// Signup validates the credentials and creates a new user
func (s *authService) Signup(ctx context.Context, req *models.SignupRequest) error {
	if err := ValidateRequired(req.Username, req.Email, req.Password); err != nil {
		return err
	}

	email := NormalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)

	if err := ValidateEmail(email); err != nil {
		return err
	}
	if err := s.policy.Validate(req.Password); err != nil {
		return err
	}

	// Best-effort pre-check for a friendly message; the unique key decides
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return apperrors.Store(err)
	}
	if exists {
		return apperrors.Conflict("email already registered")
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return apperrors.Conflict("email already registered")
		}
		return apperrors.Store(err)
	}

	s.logger.Info("user registered", zap.Int("userId", user.ID))
	return nil
}

// Login checks the credentials and returns the public view of the user.
//
// An unknown email and a wrong password produce the same error.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.UserResponse, error) {
	if err := ValidateRequired(req.Email, req.Password); err != nil {
		return nil, err
	}

	email := NormalizeEmail(req.Email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrUserNotFound) {
		_ = s.hasher.Compare(s.getDummyHash(), req.Password)
		return nil, apperrors.Auth("invalid credentials")
	}
	if err != nil {
		return nil, apperrors.Store(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Auth("invalid credentials")
	}

	return user.ToResponse(), nil
}

func (s *authService) getDummyHash() string {
	s.dummyHashOnce.Do(func() {
		hash, err := s.hasher.Hash("dummy-password-for-timing")
		if err != nil {
			s.logger.Warn("failed to build dummy hash", zap.Error(err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
