package repository

import (
	"encoding/json"
	"time"
)

// ScreenState is one persisted UI state row.
type ScreenState struct {
	Key       string
	Value     json.RawMessage
	UpdatedAt time.Time
}
