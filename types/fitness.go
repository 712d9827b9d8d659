package types

import (
	"time"

	"github.com/google/uuid"
)

// FitnessData is a single activity sample recorded for a user.
type FitnessData struct {
	ID       uuid.UUID `json:"id" db:"id"`
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	Steps    int       `json:"steps" db:"steps"`
	Calories int       `json:"calories" db:"calories"`
	Date     time.Time `json:"date" db:"date"`
}
