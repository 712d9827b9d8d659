package store

import (
	"context"
	"time"

	"github.com/fittrack/apiserver/types"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (types.User, error) {
	const query = `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE id = $1`
	var user types.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return types.User{}, classify(err)
	}
	return user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	const query = `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE username = $1`
	var user types.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		return types.User{}, classify(err)
	}
	return user, nil
}

// Create inserts user in a single statement. A taken username surfaces as
// ErrConflict from the unique index; there is no prior existence check.
func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	user.ID = uuid.New()
	user.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)

	const query = `
		INSERT INTO users (id, username, password_hash, created_at)
		VALUES (:id, :username, :password_hash, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return types.User{}, classify(err)
	}
	return user, nil
}
