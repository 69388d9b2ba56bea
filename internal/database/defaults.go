package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/spotifydaily/internal/database/repository"
	"github.com/jask/spotifydaily/internal/screenstate"
	"github.com/jask/spotifydaily/internal/spotify"
)

// SeedDefaults writes the default screen states for a fresh database.
// It is idempotent and never overwrites a state a screen already saved.
func SeedDefaults(ctx context.Context, db *sql.DB, timeRange spotify.TimeRange) error {
	if !timeRange.Valid() {
		return fmt.Errorf("seed defaults: invalid time range %q", timeRange)
	}
	return WithTx(ctx, db, func(tx *sql.Tx) error {
		states := repository.NewStateRepo(tx)
		if _, err := states.PutIfAbsent(ctx, screenstate.KeyTopArtists, screenstate.Artists{TimeRange: timeRange}); err != nil {
			return fmt.Errorf("seed %s: %w", screenstate.KeyTopArtists, err)
		}
		if _, err := states.PutIfAbsent(ctx, screenstate.KeyTopTracks, screenstate.Tracks{TimeRange: timeRange}); err != nil {
			return fmt.Errorf("seed %s: %w", screenstate.KeyTopTracks, err)
		}
		return nil
	})
}

// ClearScreenState deletes every persisted screen state.
func ClearScreenState(ctx context.Context, db *sql.DB) error {
	return WithTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM screen_state"); err != nil {
			return fmt.Errorf("clear screen_state: %w", err)
		}
		return nil
	})
}
