package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/labelcopy/internal/catalog"
	"github.com/desertthunder/labelcopy/internal/repositories"
	"github.com/desertthunder/labelcopy/internal/services"
	"github.com/desertthunder/labelcopy/internal/shared"
	"github.com/desertthunder/labelcopy/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	imports  services.ImportsService
	external services.CatalogService
	logger   *log.Logger
	output   io.Writer

	db        *sql.DB
	cache     *repositories.MetadataRepository
	refresh   *tasks.RefreshEngine
	reconcile *tasks.ReconcileEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	Imports  services.ImportsService
	External services.CatalogService
	Logger   *log.Logger
	Output   io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:   opts.Config,
		imports:  opts.Imports,
		external: opts.External,
		logger:   opts.Logger,
		output:   opts.Output,
	}
}

// openCache opens the metadata cache database and wires the engines that
// depend on it. Idempotent across command actions.
func (r *Runner) openCache() error {
	if r.cache != nil {
		return nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open metadata cache: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	r.db = db
	r.cache = repositories.NewMetadataRepository(db)

	timeout := time.Duration(r.config.Refresh.TimeoutSeconds) * time.Second
	r.refresh = tasks.NewRefreshEngine(r.external, r.cache, r.logger, timeout)

	resolver := catalog.NewResolver(r.cache, r.refresh, r.external, r.logger)
	aggregator := catalog.NewAggregator(r.imports, r.external, resolver, r.logger, catalog.AggregatorOpts{
		NumWorkers: r.config.Refresh.NumWorkers,
		RateLimit:  r.config.Refresh.RateLimit,
		Timeout:    timeout,
	})
	r.reconcile = tasks.NewReconcileEngine(aggregator, r.logger)

	return nil
}

// Close releases the cache database connection.
func (r *Runner) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// drainProgress logs progress updates from an engine channel in the background.
func (r *Runner) drainProgress(progress <-chan tasks.ProgressUpdate) {
	go func() {
		for update := range progress {
			r.logger.Debug(update.Message, "phase", update.Phase, "current", update.Current, "total", update.Total)
		}
	}()
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
