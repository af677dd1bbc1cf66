package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/labelcopy/internal/catalog"
	"github.com/desertthunder/labelcopy/internal/models"
	"github.com/desertthunder/labelcopy/internal/shared"
	"github.com/desertthunder/labelcopy/internal/tasks"
	"github.com/desertthunder/labelcopy/internal/ui"
	"github.com/urfave/cli/v3"
)

// DedupeScan builds the catalog and prints detected duplicate groups.
func (r *Runner) DedupeScan(ctx context.Context, cmd *cli.Command) error {
	_, groups, err := r.scanDuplicates(ctx, cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(groups, true)
	}

	return r.writePlain("%s", ui.RenderDuplicateGroups(groups))
}

// DedupeMerge merges the confirmed subset of detected duplicate groups.
//
// Merging is destructive, so groups must be named explicitly with --groups
// (IDs from a scan of the same catalog state) or --all.
func (r *Runner) DedupeMerge(ctx context.Context, cmd *cli.Command) error {
	confirmed, err := parseGroupIDs(cmd.String("groups"))
	if err != nil {
		return err
	}
	if len(confirmed) == 0 && !cmd.Bool("all") {
		return fmt.Errorf("%w: pass --groups or --all to confirm which groups to merge", shared.ErrMissingArgument)
	}

	store, groups, err := r.scanDuplicates(ctx, cmd)
	if err != nil {
		return err
	}

	if len(groups) == 0 {
		r.writePlainln("No duplicate groups to merge")
		return nil
	}

	if cmd.Bool("all") {
		confirmed = confirmed[:0]
		for _, group := range groups {
			confirmed = append(confirmed, group.ID)
		}
	}

	progress := make(chan tasks.ProgressUpdate, len(confirmed))
	r.drainProgress(progress)

	report := r.reconcile.ExecuteMerges(progress, store, groups, confirmed)
	close(progress)

	if err := r.writePlain("%s", ui.RenderMergeReport(report)); err != nil {
		return err
	}

	view := store.View(cmd.String("artist"))
	r.writePlainln("Catalog now has %d tracks across %d releases", view.TotalTracks(), len(view.Releases))
	return nil
}

// scanDuplicates builds the catalog for the artist flag and runs the detector.
func (r *Runner) scanDuplicates(ctx context.Context, cmd *cli.Command) (*catalog.Store, []models.DuplicateGroup, error) {
	artist := cmd.String("artist")
	r.loadConfig(cmd)

	if err := r.openCache(); err != nil {
		return nil, nil, err
	}

	progress := make(chan tasks.ProgressUpdate, 32)
	r.drainProgress(progress)
	defer close(progress)

	store, err := r.reconcile.BuildCatalog(ctx, progress, artist)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build catalog: %w", err)
	}

	groups := r.reconcile.DetectDuplicates(progress, store)
	return store, groups, nil
}

// parseGroupIDs parses a comma-separated list of group IDs.
func parseGroupIDs(value string) ([]int, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	var ids []int
	for _, part := range strings.Split(value, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid group ID %q", shared.ErrInvalidFlag, part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
