package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/milkbook/milkbook/internal/auth"
	"github.com/milkbook/milkbook/internal/domain/models"
	"github.com/milkbook/milkbook/internal/repository/storage"
)

// ErrUsernameTaken indicates a signup with an already registered username.
var ErrUsernameTaken = errors.New("username already exists")

// ErrInvalidCredentials indicates a login with a bad username or password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrNotAuthenticated indicates an operation that requires a logged-in operator.
var ErrNotAuthenticated = errors.New("not authenticated")

// Service manages the operator registry and the current session identity.
//
// Signup registers but never authenticates; only a successful Login moves the
// session to authenticated, and Logout moves it back.
type Service struct {
	store  storage.Store
	tokens *auth.TokenManager
	logger *zap.Logger
}

// NewService wires a new identity service instance.
func NewService(store storage.Store, tokens *auth.TokenManager, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, tokens: tokens, logger: logger}
}

// Signup registers a new operator account. The password is stored as a
// bcrypt hash, never in the clear.
func (s *Service) Signup(ctx context.Context, username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: username and password are required", ErrInvalidCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return models.User{}, ErrUsernameTaken
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("operator registered", zap.String("username", username))
	return user, nil
}

// Login authenticates an operator and records the session identity. On
// success it returns the user and a signed token for the HTTP surface; on
// failure the session is left untouched.
func (s *Service) Login(ctx context.Context, username, password string) (models.User, string, error) {
	user, err := s.store.FindUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, "", ErrInvalidCredentials
		}
		return models.User{}, "", fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, "", ErrInvalidCredentials
	}

	if err := s.store.SetCurrentUser(ctx, user.ID); err != nil {
		return models.User{}, "", fmt.Errorf("record session: %w", err)
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return models.User{}, "", fmt.Errorf("generate token: %w", err)
	}

	s.logger.Info("operator logged in", zap.String("username", user.Username))
	return user, token, nil
}

// Logout clears the current session identity.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.SetCurrentUser(ctx, ""); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.logger.Info("operator logged out")
	return nil
}

// Current returns the logged-in operator, or ErrNotAuthenticated.
func (s *Service) Current(ctx context.Context) (models.User, error) {
	userID, err := s.store.CurrentUser(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("read session: %w", err)
	}
	if userID == "" {
		return models.User{}, ErrNotAuthenticated
	}

	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, ErrNotAuthenticated
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// IsAuthenticated reports whether a session identity is recorded.
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	_, err := s.Current(ctx)
	return err == nil
}

// ResolveToken maps a bearer token back to the operator it was issued to.
func (s *Service) ResolveToken(ctx context.Context, token string) (models.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return models.User{}, err
	}
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, auth.ErrInvalidToken
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
