package store

import (
	"context"

	"github.com/fittrack/apiserver/types"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// FitnessRepository handles persistence for fitness samples.
type FitnessRepository struct {
	db *sqlx.DB
}

func NewFitnessRepository(db *sqlx.DB) *FitnessRepository {
	return &FitnessRepository{db: db}
}

// Create inserts a sample. A user_id without a matching user row yields ErrInvalidReference.
func (r *FitnessRepository) Create(ctx context.Context, data types.FitnessData) (types.FitnessData, error) {
	data.ID = uuid.New()

	const query = `
		INSERT INTO fitness_data (id, user_id, steps, calories, date)
		VALUES (:id, :user_id, :steps, :calories, :date)`
	if _, err := r.db.NamedExecContext(ctx, query, data); err != nil {
		return types.FitnessData{}, classify(err)
	}
	return data, nil
}

func (r *FitnessRepository) Get(ctx context.Context, id uuid.UUID) (types.FitnessData, error) {
	const query = `
		SELECT id, user_id, steps, calories, date
		FROM fitness_data
		WHERE id = $1`
	var data types.FitnessData
	if err := r.db.GetContext(ctx, &data, query, id); err != nil {
		return types.FitnessData{}, classify(err)
	}
	return data, nil
}
