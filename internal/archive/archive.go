// Package archive copies recorded fitness samples into object storage.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fittrack/apiserver/internal/mq"
	"github.com/fittrack/apiserver/types"
	"github.com/google/uuid"
)

// Subscriber delivers broker messages to a handler until ctx is done.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string, handler mq.Handler) error
}

// ObjectWriter persists JSON documents by key.
type ObjectWriter interface {
	PutJSON(ctx context.Context, key string, data []byte) error
}

// Archiver consumes fitness.recorded events and writes each one to storage.
type Archiver struct {
	sub     Subscriber
	objects ObjectWriter
	logger  *slog.Logger
}

func New(sub Subscriber, objects ObjectWriter, logger *slog.Logger) *Archiver {
	return &Archiver{sub: sub, objects: objects, logger: logger}
}

// Run blocks until ctx is cancelled or the subscription fails.
func (a *Archiver) Run(ctx context.Context) error {
	a.logger.Info("archiver started", "channel", mq.ChannelFitnessRecorded)
	err := a.sub.Subscribe(ctx, mq.ChannelFitnessRecorded, a.Handle)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("subscribe %s: %w", mq.ChannelFitnessRecorded, err)
	}
	return nil
}

// Handle stores one event. Payloads that cannot be decoded are dropped;
// storage errors are returned so the broker redelivers.
func (a *Archiver) Handle(ctx context.Context, msg mq.Message) error {
	var data types.FitnessData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		a.logger.WarnContext(ctx, "dropping malformed fitness event", "message_id", msg.ID, "error", err)
		return nil
	}
	if data.ID == uuid.Nil || data.UserID == uuid.Nil {
		a.logger.WarnContext(ctx, "dropping fitness event without ids", "message_id", msg.ID)
		return nil
	}

	key := ObjectKey(data)
	if err := a.objects.PutJSON(ctx, key, msg.Data); err != nil {
		a.logger.ErrorContext(ctx, "archive fitness event", "key", key, "error", err)
		return err
	}
	a.logger.DebugContext(ctx, "archived fitness event", "key", key)
	return nil
}

// ObjectKey is the storage key for a sample: fitness/<user_id>/<id>.json.
func ObjectKey(data types.FitnessData) string {
	return fmt.Sprintf("fitness/%s/%s.json", data.UserID, data.ID)
}
