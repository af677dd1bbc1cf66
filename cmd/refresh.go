package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/labelcopy/internal/shared"
	"github.com/desertthunder/labelcopy/internal/tasks"
	"github.com/desertthunder/labelcopy/internal/ui"
	"github.com/urfave/cli/v3"
)

// RefreshOne refreshes the cached metadata for a single UPC.
//
// On failure with --direct, falls back to a direct uncached lookup and prints
// the result without touching the cache.
func (r *Runner) RefreshOne(ctx context.Context, cmd *cli.Command) error {
	upc := cmd.StringArg("upc")
	if upc == "" {
		return fmt.Errorf("%w: UPC", shared.ErrMissingArgument)
	}
	r.loadConfig(cmd)

	if err := r.openCache(); err != nil {
		return err
	}

	r.logger.Info("refreshing release metadata", "upc", upc)

	if err := r.refresh.RefreshOne(ctx, upc); err != nil {
		if !cmd.Bool("direct") {
			return err
		}

		r.logger.Warn("refresh failed, trying direct lookup", "upc", upc, "error", err)
		if r.external == nil {
			return err
		}

		release, searchErr := r.external.SearchAlbumByUPC(ctx, upc)
		if searchErr != nil {
			return fmt.Errorf("direct lookup also failed: %w", searchErr)
		}

		r.writePlainln("Direct result (not cached): %s (%s), %d tracks", release.Name, release.ReleaseDate, release.TotalTracks)
		return nil
	}

	r.writePlainln("✓ Refreshed %s", upc)
	return nil
}

// RefreshAll batch-refreshes every UPC found in an artist's import history.
//
// Failed keys are reported for manual retry; they are not retried automatically.
func (r *Runner) RefreshAll(ctx context.Context, cmd *cli.Command) error {
	artist := cmd.String("artist")
	r.loadConfig(cmd)

	if err := r.openCache(); err != nil {
		return err
	}

	if r.imports == nil {
		return fmt.Errorf("%w: imports service not initialized", shared.ErrServiceUnavailable)
	}

	releases, err := r.imports.GetArtistReleases(ctx, artist)
	if err != nil {
		return fmt.Errorf("failed to list import releases: %w", err)
	}

	var upcs []string
	for _, release := range releases {
		if release.UPC != "" {
			upcs = append(upcs, release.UPC)
		}
	}

	if len(upcs) == 0 {
		r.writePlainln("No UPC-keyed releases to refresh for %s", artist)
		return nil
	}

	r.logger.Info("batch refreshing", "artist", artist, "keys", len(upcs))

	progress := make(chan tasks.ProgressUpdate, len(upcs))
	r.drainProgress(progress)

	opts := tasks.BatchRefreshOpts{
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	}
	if opts.NumWorkers == 0 {
		opts.NumWorkers = r.config.Refresh.NumWorkers
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = r.config.Refresh.RateLimit
	}

	result, err := r.refresh.RefreshBatch(ctx, progress, upcs, opts)
	close(progress)
	if err != nil {
		return err
	}

	return r.writePlain("%s", ui.RenderBatchRefresh(result))
}
