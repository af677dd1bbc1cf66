package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/labelcopy/internal/formatter"
	"github.com/desertthunder/labelcopy/internal/tasks"
	"github.com/desertthunder/labelcopy/internal/ui"
	"github.com/urfave/cli/v3"
)

// CatalogView builds the reconciled catalog for an artist and prints it.
func (r *Runner) CatalogView(ctx context.Context, cmd *cli.Command) error {
	artist := cmd.String("artist")
	r.loadConfig(cmd)

	if err := r.openCache(); err != nil {
		return err
	}

	r.logger.Info("building catalog", "artist", artist)

	progress := make(chan tasks.ProgressUpdate, 32)
	r.drainProgress(progress)

	store, err := r.reconcile.BuildCatalog(ctx, progress, artist)
	close(progress)
	if err != nil {
		return fmt.Errorf("failed to build catalog: %w", err)
	}

	view := store.View(artist)

	if cmd.Bool("json") {
		return r.writeJSON(view, cmd.Bool("pretty"))
	}

	return r.writePlain("%s", ui.RenderCatalog(view))
}

// CatalogExport builds the catalog and writes the Label Copy CSV.
func (r *Runner) CatalogExport(ctx context.Context, cmd *cli.Command) error {
	artist := cmd.String("artist")
	r.loadConfig(cmd)

	if err := r.openCache(); err != nil {
		return err
	}

	r.logger.Info("exporting label copy", "artist", artist)

	progress := make(chan tasks.ProgressUpdate, 32)
	r.drainProgress(progress)

	store, err := r.reconcile.BuildCatalog(ctx, progress, artist)
	close(progress)
	if err != nil {
		return fmt.Errorf("failed to build catalog: %w", err)
	}

	view := store.View(artist)

	path, err := formatter.WriteLabelCopy(view, cmd.String("output"))
	if err != nil {
		return err
	}

	rows := view.TotalTracks()
	for _, release := range view.Releases {
		if len(release.Tracks) == 0 {
			rows++
		}
	}

	r.writePlainln("✓ Label copy written: %s", path)
	r.writePlainln("  Releases: %d, rows: %d", len(view.Releases), rows)
	return nil
}
