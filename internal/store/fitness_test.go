package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fittrack/apiserver/types"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	insertFitnessQuery = `(?s)^\s*INSERT\s+INTO\s+fitness_data\s*\(id,\s*user_id,\s*steps,\s*calories,\s*date\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*$`
	selectFitnessQuery = `(?s)^\s*SELECT\s+id,\s*user_id,\s*steps,\s*calories,\s*date\s+FROM\s+fitness_data\s+WHERE\s+id\s*=\s*\$1\s*$`
)

func TestFitnessRepository_CreateThenGet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFitnessRepository(db)

	userID := uuid.New()
	date := time.Date(2026, 6, 15, 7, 30, 0, 0, time.UTC)
	in := types.FitnessData{UserID: userID, Steps: 12000, Calories: 540, Date: date}

	mock.ExpectExec(insertFitnessQuery).
		WithArgs(sqlmock.AnyArg(), userID.String(), 12000, 540, date).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := repo.Create(context.Background(), in)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	mock.ExpectQuery(selectFitnessQuery).
		WithArgs(created.ID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "steps", "calories", "date"}).
			AddRow(created.ID.String(), userID.String(), 12000, 540, date))

	got, err := repo.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestFitnessRepository_Create_UnknownUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFitnessRepository(db)

	mock.ExpectExec(insertFitnessQuery).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "fitness_data_user_id_fkey"})

	_, err := repo.Create(context.Background(), types.FitnessData{UserID: uuid.New(), Date: time.Now()})
	require.ErrorIs(t, err, ErrInvalidReference)
}

func TestFitnessRepository_Get_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFitnessRepository(db)

	mock.ExpectQuery(selectFitnessQuery).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "steps", "calories", "date"}))

	_, err := repo.Get(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}
