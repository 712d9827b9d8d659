package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fittrack/apiserver/internal/auth"
	"github.com/fittrack/apiserver/internal/mq"
	"github.com/fittrack/apiserver/internal/store"
	"github.com/fittrack/apiserver/types"
	"github.com/google/uuid"
)

var (
	// ErrUsernameTaken is returned when registering a username that already exists.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrInvalidCredentials covers both unknown usernames and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized is returned for unknown or expired bearer tokens.
	ErrUnauthorized = errors.New("unauthorized")
)

// dummyPassword is hashed once per service so logins for unknown users still
// pay for a bcrypt comparison.
const dummyPassword = "fittrack-dummy-password"

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// TokenRepository defines persistence operations for bearer tokens.
type TokenRepository interface {
	Create(ctx context.Context, token types.Token) (types.Token, error)
	GetByValue(ctx context.Context, value string) (types.Token, error)
}

// EventPublisher sends domain events to a broker.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// UserService encapsulates registration, login and token authentication.
type UserService struct {
	users     UserRepository
	tokens    TokenRepository
	hasher    *auth.PasswordHasher
	tokenTTL  time.Duration
	events    EventPublisher
	logger    *slog.Logger
	dummyHash string
	now       func() time.Time
}

// NewUserService wires a UserService. events may be nil, in which case no
// events are published. A tokenTTL of zero disables token expiry.
func NewUserService(
	users UserRepository,
	tokens TokenRepository,
	hasher *auth.PasswordHasher,
	tokenTTL time.Duration,
	events EventPublisher,
	logger *slog.Logger,
) (*UserService, error) {
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, err
	}
	return &UserService{
		users:     users,
		tokens:    tokens,
		hasher:    hasher,
		tokenTTL:  tokenTTL,
		events:    events,
		logger:    logger,
		dummyHash: dummyHash,
		now:       time.Now,
	}, nil
}

// Register hashes password and inserts a new user. Uniqueness is left to the
// store, so concurrent registrations of one username yield exactly one row.
func (s *UserService) Register(ctx context.Context, username, password string) (types.User, error) {
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.users.Create(ctx, types.User{
		Username:     username,
		PasswordHash: hashed,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.User{}, ErrUsernameTaken
		}
		return types.User{}, fmt.Errorf("create user: %w", err)
	}

	s.publish(ctx, mq.ChannelUserRegistered, user)
	return user, nil
}

// Login checks the credentials and persists a freshly generated token.
func (s *UserService) Login(ctx context.Context, username, password string) (types.Token, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return types.Token{}, fmt.Errorf("lookup user: %w", err)
		}
		// Keep the timing of unknown usernames in line with wrong passwords.
		_, _ = s.hasher.Verify(password, s.dummyHash)
		return types.Token{}, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return types.Token{}, err
	}
	if !ok {
		return types.Token{}, ErrInvalidCredentials
	}

	value, err := auth.GenerateToken()
	if err != nil {
		return types.Token{}, err
	}

	token, err := s.tokens.Create(ctx, types.Token{
		Value:     value,
		UserID:    user.ID,
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	})
	if err != nil {
		return types.Token{}, fmt.Errorf("create token: %w", err)
	}
	return token, nil
}

// Authenticate resolves a bearer token value to its user id.
func (s *UserService) Authenticate(ctx context.Context, value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, ErrUnauthorized
	}

	token, err := s.tokens.GetByValue(ctx, value)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return uuid.Nil, ErrUnauthorized
		}
		return uuid.Nil, fmt.Errorf("lookup token: %w", err)
	}

	if token.ExpiredAt(s.now(), s.tokenTTL) {
		return uuid.Nil, ErrUnauthorized
	}
	return token.UserID, nil
}

func (s *UserService) publish(ctx context.Context, channel string, value any) {
	publishEvent(ctx, s.events, s.logger, channel, value)
}

// publishEvent marshals value and sends it on channel. Failures are logged only.
func publishEvent(ctx context.Context, events EventPublisher, logger *slog.Logger, channel string, value any) {
	if events == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		logger.ErrorContext(ctx, "failed to encode event", "channel", channel, "error", err)
		return
	}

	attrs := map[string]string{"content_type": "application/json"}
	if _, err := events.Publish(ctx, channel, data, attrs); err != nil {
		logger.ErrorContext(ctx, "failed to publish event", "channel", channel, "error", err)
	}
}
