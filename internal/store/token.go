package store

import (
	"context"
	"time"

	"github.com/fittrack/apiserver/types"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// TokenRepository handles persistence for bearer tokens.
type TokenRepository struct {
	db *sqlx.DB
}

func NewTokenRepository(db *sqlx.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(ctx context.Context, token types.Token) (types.Token, error) {
	token.ID = uuid.New()
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}

	const query = `
		INSERT INTO tokens (id, value, user_id, created_at)
		VALUES (:id, :value, :user_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return types.Token{}, classify(err)
	}
	return token, nil
}

// GetByValue returns the most recently issued token with the given value.
// Values are not unique at the schema level.
func (r *TokenRepository) GetByValue(ctx context.Context, value string) (types.Token, error) {
	const query = `
		SELECT id, value, user_id, created_at
		FROM tokens
		WHERE value = $1
		ORDER BY created_at DESC
		LIMIT 1`
	var token types.Token
	if err := r.db.GetContext(ctx, &token, query, value); err != nil {
		return types.Token{}, classify(err)
	}
	return token, nil
}

func (r *TokenRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	const query = `SELECT COUNT(*) FROM tokens WHERE user_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, classify(err)
	}
	return count, nil
}
