package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/jask/spotifydaily/internal/database"
	"github.com/jask/spotifydaily/internal/database/repository"
	"github.com/jask/spotifydaily/internal/screenstate"
	"github.com/jask/spotifydaily/internal/spotify"
)

func runState(ctx context.Context, db *sql.DB, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("state: missing subcommand (show, set, clear)")
	}
	states := repository.NewStateRepo(db)
	switch args[0] {
	case "show":
		list, err := states.List(ctx)
		if err != nil {
			return fmt.Errorf("list state: %w", err)
		}
		if len(list) == 0 {
			fmt.Fprintln(stdout, "no screen state saved")
			return nil
		}
		w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tVALUE\tUPDATED")
		for _, s := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.Key, s.Value, s.UpdatedAt.Local().Format(time.DateTime))
		}
		return w.Flush()
	case "set":
		if len(args) != 3 {
			return fmt.Errorf("state set: want <artists|tracks> <time range>")
		}
		tr, err := spotify.ParseTimeRange(args[2])
		if err != nil {
			return fmt.Errorf("state set: %w", err)
		}
		switch args[1] {
		case "artists":
			err = screenstate.SaveArtists(ctx, states, screenstate.Artists{TimeRange: tr})
		case "tracks":
			err = screenstate.SaveTracks(ctx, states, screenstate.Tracks{TimeRange: tr})
		default:
			return fmt.Errorf("state set: unknown screen %q", args[1])
		}
		if err != nil {
			return fmt.Errorf("state set: %w", err)
		}
		fmt.Fprintf(stdout, "%s time range set to %s\n", args[1], tr.Label())
		return nil
	case "clear":
		if err := database.ClearScreenState(ctx, db); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "screen state cleared")
		return nil
	}
	return fmt.Errorf("state: unknown subcommand %q", args[0])
}
