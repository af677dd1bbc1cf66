// package tasks implements the reconciliation engines.
//
// RefreshEngine keeps the durable metadata cache current against the external
// catalog service; ReconcileEngine orchestrates catalog aggregation, duplicate
// detection, and merge execution. Operations emit progress updates via
// channels for non-blocking status reporting to the CLI layer.
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/labelcopy/internal/models"
	"github.com/desertthunder/labelcopy/internal/services"
	"github.com/desertthunder/labelcopy/internal/shared"
	"golang.org/x/time/rate"
)

// CacheWriter persists refreshed metadata. Implemented by
// repositories.MetadataRepository.
type CacheWriter interface {
	Upsert(release *models.ReleaseMetadata) error
}

// RefreshEngine fetches release metadata from the external catalog and writes
// it into the durable cache. It is the only writer of the cache.
type RefreshEngine struct {
	catalog services.CatalogService
	cache   CacheWriter
	logger  *log.Logger
	timeout time.Duration
}

// NewRefreshEngine creates a RefreshEngine. A non-positive timeout defaults to 15s.
func NewRefreshEngine(catalog services.CatalogService, cache CacheWriter, logger *log.Logger, timeout time.Duration) *RefreshEngine {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &RefreshEngine{catalog: catalog, cache: cache, logger: logger, timeout: timeout}
}

// RefreshOne fetches one release by UPC and persists it into the cache.
//
// Failure is reported to the caller, never swallowed: the caller decides
// whether to fall back to a direct uncached lookup. The prior cache value for
// the key is left untouched on failure.
func (e *RefreshEngine) RefreshOne(ctx context.Context, upc string) error {
	if e.catalog == nil {
		return fmt.Errorf("%w: catalog service not initialized", shared.ErrServiceUnavailable)
	}
	if e.cache == nil {
		return fmt.Errorf("%w: metadata cache not initialized", shared.ErrServiceUnavailable)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	release, err := e.catalog.SearchAlbumByUPC(fetchCtx, upc)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrRefreshFailed, upc, err)
	}

	meta := release.ToMetadata()
	if meta.UPC == "" {
		meta.UPC = upc
	}

	if err := e.cache.Upsert(meta); err != nil {
		return fmt.Errorf("%w: failed to persist %s: %v", shared.ErrRefreshFailed, upc, err)
	}

	return nil
}

// BatchRefreshOpts contains tuning for batch refreshes.
type BatchRefreshOpts struct {
	NumWorkers int     // Concurrent workers (default: 4)
	RateLimit  float64 // Requests per second (default: 5)
}

// FailedKey records one key that could not be refreshed in a batch.
type FailedKey struct {
	Key string
	Err error
}

// BatchRefreshResult summarizes a batch refresh. Failed keys are reported for
// manual per-key retry; they are not retried automatically.
type BatchRefreshResult struct {
	SuccessCount int
	Total        int
	Failed       []FailedKey
}

// RefreshBatch refreshes every key, isolating failures per key: one failed
// lookup is counted and reported but never cancels its siblings. Only context
// cancellation aborts the batch early.
func (e *RefreshEngine) RefreshBatch(ctx context.Context, progress chan<- ProgressUpdate, upcs []string, opts BatchRefreshOpts) (*BatchRefreshResult, error) {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	result := &BatchRefreshResult{Total: len(upcs)}
	if len(upcs) == 0 {
		return result, nil
	}

	sendProgress(progress, fetchingUpdate(0, len(upcs), "release metadata"))

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan string, len(upcs))
	outcomes := make(chan FailedKey, len(upcs))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for upc := range jobs {
				if err := limiter.Wait(ctx); err != nil {
					outcomes <- FailedKey{Key: upc, Err: err}
					continue
				}
				outcomes <- FailedKey{Key: upc, Err: e.RefreshOne(ctx, upc)}
			}
		}()
	}

	for _, upc := range upcs {
		jobs <- upc
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	completed := 0
	for outcome := range outcomes {
		completed++
		if outcome.Err == nil {
			result.SuccessCount++
			sendProgress(progress, refreshingUpdate(completed, len(upcs), outcome.Key))
		} else {
			result.Failed = append(result.Failed, outcome)
			sendProgress(progress, refreshFailedUpdate(completed, len(upcs), outcome.Key, outcome.Err))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("%w: batch refresh interrupted: %v", shared.ErrTimeout, err)
	}

	e.logger.Info("batch refresh complete", "success", result.SuccessCount, "total", result.Total)
	return result, nil
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}
