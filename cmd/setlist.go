package main

import (
	"context"
	"fmt"

	"github.com/hazelfield/encore/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetlistSearch searches the setlist database for an artist and date.
func (r *Runner) SetlistSearch(ctx context.Context, cmd *cli.Command) error {
	artist := cmd.StringArg("artist")
	date := cmd.String("date")

	if artist == "" {
		return fmt.Errorf("%w: artist argument is required", shared.ErrMissingArgument)
	}

	if r.setlists == nil {
		return fmt.Errorf("%w: setlist.fm api_key must be set in config.toml", shared.ErrMissingCredentials)
	}

	r.logger.Infof("searching %v setlists for %v on %v", r.setlists.Name(), artist, date)

	setlists, err := r.setlists.SearchSetlists(ctx, artist, date)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(setlists, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d setlists:\n\n", len(setlists))
	for i, setlist := range setlists {
		r.writePlain("%d. %s — %s, %s (%s)\n", i+1, setlist.Artist, setlist.Venue, setlist.City, setlist.EventDate)
		if setlist.URL != "" {
			r.writePlain("   %s\n", setlist.URL)
		}
		for _, song := range setlist.Songs() {
			if song.Performer != setlist.Artist {
				r.writePlain("   - %s (%s)\n", song.Title, song.Performer)
			} else {
				r.writePlain("   - %s\n", song.Title)
			}
		}
		r.writePlain("\n")
	}

	return nil
}
