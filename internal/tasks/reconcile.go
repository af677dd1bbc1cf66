package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/labelcopy/internal/catalog"
	"github.com/desertthunder/labelcopy/internal/models"
	"github.com/desertthunder/labelcopy/internal/shared"
)

// ReconcileEngine orchestrates the full reconciliation flow: build the unified
// catalog view, scan it for duplicates, and execute confirmed merges against
// the same store.
type ReconcileEngine struct {
	aggregator *catalog.Aggregator
	detector   *catalog.Detector
	executor   *catalog.Executor
	logger     *log.Logger
}

// NewReconcileEngine creates a ReconcileEngine around an aggregator.
func NewReconcileEngine(aggregator *catalog.Aggregator, logger *log.Logger) *ReconcileEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &ReconcileEngine{
		aggregator: aggregator,
		detector:   catalog.NewDetector(),
		executor:   catalog.NewExecutor(logger),
		logger:     logger,
	}
}

// BuildCatalog builds the reconciled release store for an artist.
func (e *ReconcileEngine) BuildCatalog(ctx context.Context, progress chan<- ProgressUpdate, artist string) (*catalog.Store, error) {
	if e.aggregator == nil {
		return nil, fmt.Errorf("%w: aggregator not initialized", shared.ErrServiceUnavailable)
	}

	sendProgress(progress, aggregatingUpdate(artist))

	store, err := e.aggregator.Build(ctx, artist)
	if err != nil {
		return nil, err
	}

	sendProgress(progress, completedUpdate(fmt.Sprintf("Catalog built: %d releases", store.Len())))
	return store, nil
}

// DetectDuplicates scans the store and returns every accepted duplicate group.
func (e *ReconcileEngine) DetectDuplicates(progress chan<- ProgressUpdate, store *catalog.Store) []models.DuplicateGroup {
	sendProgress(progress, scanningUpdate(store.Len()))

	groups := e.detector.Scan(store)

	sendProgress(progress, completedUpdate(fmt.Sprintf("Found %d duplicate groups", len(groups))))
	return groups
}

// ExecuteMerges merges the confirmed subset of detected groups.
func (e *ReconcileEngine) ExecuteMerges(progress chan<- ProgressUpdate, store *catalog.Store, groups []models.DuplicateGroup, confirmed []int) *catalog.MergeReport {
	total := len(confirmed)
	for i, id := range confirmed {
		for _, group := range groups {
			if group.ID == id {
				sendProgress(progress, mergingUpdate(i+1, total, group.NormalizedTitle))
			}
		}
	}

	report := e.executor.MergeGroups(store, groups, confirmed)

	sendProgress(progress, completedUpdate(fmt.Sprintf("Merged %d of %d groups", report.Applied, total)))
	return report
}
