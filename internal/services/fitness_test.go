package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/fittrack/apiserver/internal/logger"
	"github.com/fittrack/apiserver/internal/mq"
	"github.com/fittrack/apiserver/internal/store"
	"github.com/fittrack/apiserver/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitnessService_RecordAndGet(t *testing.T) {
	repo := &fakeFitnessRepo{}
	events := &fakePublisher{}
	svc := NewFitnessService(repo, events, logger.Discard())

	in := types.FitnessData{
		UserID:   uuid.New(),
		Steps:    8000,
		Calories: 320,
		Date:     time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	created, err := svc.Record(context.Background(), in)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	require.Len(t, events.sent, 1)
	assert.Equal(t, mq.ChannelFitnessRecorded, events.sent[0].channel)
	var payload types.FitnessData
	require.NoError(t, json.Unmarshal(events.sent[0].data, &payload))
	assert.Equal(t, created.ID, payload.ID)
	assert.Equal(t, 8000, payload.Steps)
}

func TestFitnessService_Record_TruncatesDate(t *testing.T) {
	repo := &fakeFitnessRepo{}
	events := &fakePublisher{}
	svc := NewFitnessService(repo, events, logger.Discard())

	created, err := svc.Record(context.Background(), types.FitnessData{
		UserID: uuid.New(),
		Date:   time.Date(2026, 6, 1, 7, 0, 0, 123456789, time.UTC),
	})
	require.NoError(t, err)

	want := time.Date(2026, 6, 1, 7, 0, 0, 123456000, time.UTC)
	assert.True(t, created.Date.Equal(want))
	assert.True(t, repo.rows[created.ID].Date.Equal(want))

	require.Len(t, events.sent, 1)
	var payload types.FitnessData
	require.NoError(t, json.Unmarshal(events.sent[0].data, &payload))
	assert.True(t, payload.Date.Equal(want))
}

func TestFitnessService_Record_UnknownUser(t *testing.T) {
	repo := &fakeFitnessRepo{err: store.ErrInvalidReference}
	events := &fakePublisher{}
	svc := NewFitnessService(repo, events, logger.Discard())

	_, err := svc.Record(context.Background(), types.FitnessData{UserID: uuid.New()})
	require.ErrorIs(t, err, store.ErrInvalidReference)
	assert.Empty(t, events.sent)
}

func TestFitnessService_Record_NoPublisher(t *testing.T) {
	svc := NewFitnessService(&fakeFitnessRepo{}, nil, logger.Discard())

	_, err := svc.Record(context.Background(), types.FitnessData{UserID: uuid.New()})
	require.NoError(t, err)
}

func TestFitnessService_Get_NotFound(t *testing.T) {
	svc := NewFitnessService(&fakeFitnessRepo{}, nil, logger.Discard())

	_, err := svc.Get(context.Background(), uuid.New())
	require.ErrorIs(t, err, store.ErrNotFound)
}
