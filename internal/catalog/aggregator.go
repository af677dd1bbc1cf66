package catalog

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

// AggregatorOpts contains tuning for the enrichment fan-out.
type AggregatorOpts struct {
	NumWorkers int           // Concurrent enrichment workers (default: 4)
	RateLimit  float64       // External lookups per second (default: 5)
	Timeout    time.Duration // Per-release resolution timeout (default: 15s)
}

// Aggregator builds the unified catalog view: import aggregates seeded first,
// descriptive metadata layered on from the resolution pipeline, then the
// artist-level external listing merged in for releases imports have never
// reported.
type Aggregator struct {
	imports  services.ImportsService
	external services.CatalogService
	resolver *Resolver
	logger   *log.Logger
	opts     AggregatorOpts
}

// NewAggregator creates an Aggregator. The external catalog service may be nil,
// in which case the artist-level listing step is skipped.
func NewAggregator(imports services.ImportsService, external services.CatalogService, resolver *Resolver, logger *log.Logger, opts AggregatorOpts) *Aggregator {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Aggregator{
		imports:  imports,
		external: external,
		resolver: resolver,
		logger:   logger,
		opts:     opts,
	}
}

// Build constructs the release store for an artist.
//
// Failure to reach the imports API fails the whole build; every later step is
// best-effort enrichment and degrades per release.
func (a *Aggregator) Build(ctx context.Context, artist string) (*Store, error) {
	if a.imports == nil {
		return nil, fmt.Errorf("%w: imports service not initialized", shared.ErrServiceUnavailable)
	}

	importReleases, err := a.imports.GetArtistReleases(ctx, artist)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch import aggregates: %v", shared.ErrAPIRequest, err)
	}

	store := NewStore()
	for _, imp := range importReleases {
		store.Insert(seedRelease(imp))
	}

	a.enrich(ctx, store)

	if a.external != nil {
		if err := a.mergeArtistListing(ctx, store, artist); err != nil {
			a.logger.Warn("artist catalog listing unavailable", "artist", artist, "error", err)
		}
	}

	return store, nil
}

// seedRelease constructs an in-memory release from one import aggregate.
// Imports own revenue and stream figures.
func seedRelease(imp models.ImportRelease) *models.Release {
	release := &models.Release{
		Key:        ReleaseKey(imp.UPC, imp.Title),
		UPC:        imp.UPC,
		Title:      imp.Title,
		Gross:      imp.Gross,
		Streams:    imp.Streams,
		Currency:   imp.Currency,
		Format:     imp.Format,
		Provenance: models.ProvenanceImports,
	}

	for _, it := range imp.Tracks {
		currency := it.Currency
		if currency == "" {
			currency = imp.Currency
		}
		release.Tracks = append(release.Tracks, models.Track{
			Title:       it.Title,
			ISRC:        it.ISRC,
			TrackNumber: it.TrackNumber,
			DurationMS:  it.DurationMS,
			Artists:     it.Artists,
			Gross:       it.Gross,
			Streams:     it.Streams,
			Currency:    currency,
		})
	}

	release.SyncTrackCount()
	return release
}

// enrich resolves metadata for every UPC-keyed release through the pipeline,
// fanning out across a rate-limited worker pool. A failed resolution leaves
// that release import-only; it never sinks its siblings.
func (a *Aggregator) enrich(ctx context.Context, store *Store) {
	if a.resolver == nil {
		return
	}

	var upcs []string
	for _, key := range store.Keys() {
		if release, ok := store.Get(key); ok && release.UPC != "" {
			upcs = append(upcs, release.UPC)
		}
	}
	if len(upcs) == 0 {
		return
	}

	limiter := rate.NewLimiter(rate.Limit(a.opts.RateLimit), 1)
	jobs := make(chan string, len(upcs))

	var wg sync.WaitGroup
	for i := 0; i < a.opts.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for upc := range jobs {
				if err := limiter.Wait(ctx); err != nil {
					return
				}
				a.enrichOne(ctx, store, upc)
			}
		}()
	}

	for _, upc := range upcs {
		jobs <- upc
	}
	close(jobs)
	wg.Wait()
}

// enrichOne resolves one release and applies the metadata against current
// store state.
func (a *Aggregator) enrichOne(ctx context.Context, store *Store, upc string) {
	resolveCtx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	resolution := a.resolver.ResolveRelease(resolveCtx, upc)
	if !resolution.Found {
		a.logger.Debug("no external metadata", "upc", upc)
		return
	}

	err := store.Apply(upc, func(release *models.Release) error {
		applyMetadata(release, resolution.Metadata)
		return nil
	})
	if err != nil {
		a.logger.Warn("failed to apply metadata", "upc", upc, "error", err)
	}
}

// applyMetadata layers cached descriptive metadata onto an import-seeded
// release. Fields already populated from imports are never overwritten, and
// revenue/stream figures are never touched.
func applyMetadata(release *models.Release, meta *models.ReleaseMetadata) {
	release.Provenance = release.Provenance.WithExternal()

	if release.ReleaseDate == "" {
		release.ReleaseDate = meta.ReleaseDate
	}
	if release.Label == "" {
		release.Label = meta.Label
	}
	if release.ImageURL == "" {
		release.ImageURL = meta.ImageURL
	}
	if release.ImageURLSmall == "" {
		release.ImageURLSmall = meta.ImageURLSmall
	}
	if len(release.Genres) == 0 {
		release.Genres = meta.Genres
	}

	for _, cached := range meta.Tracks {
		if track := matchTrack(release, cached.ISRC, cached.Title); track != nil {
			fillTrack(track, cached)
			continue
		}

		// Canonical track the imports have not reported yet: carried with
		// zero metrics so the listing is complete.
		release.Tracks = append(release.Tracks, models.Track{
			Title:       cached.Title,
			ISRC:        cached.ISRC,
			TrackNumber: cached.TrackNumber,
			DurationMS:  cached.DurationMS,
			Artists:     cached.Artists,
			Currency:    release.Currency,
		})
	}

	release.SyncTrackCount()
}

// matchTrack finds the release track matching a cached listing row, by ISRC
// equality when both sides know one, else by normalized title.
func matchTrack(release *models.Release, isrc, title string) *models.Track {
	if isrc != "" {
		for i := range release.Tracks {
			if release.Tracks[i].ISRC == isrc {
				return &release.Tracks[i]
			}
		}
	}

	normalized := NormalizeTitle(title)
	if normalized == "" {
		return nil
	}
	for i := range release.Tracks {
		if release.Tracks[i].ISRC == "" || isrc == "" {
			if NormalizeTitle(release.Tracks[i].Title) == normalized {
				return &release.Tracks[i]
			}
		}
	}
	return nil
}

// fillTrack fills descriptive track fields the import row was missing.
func fillTrack(track *models.Track, cached models.TrackMetadata) {
	if track.ISRC == "" {
		track.ISRC = cached.ISRC
	}
	if track.DurationMS == 0 {
		track.DurationMS = cached.DurationMS
	}
	if track.TrackNumber == 0 {
		track.TrackNumber = cached.TrackNumber
	}
	if len(track.Artists) == 0 {
		track.Artists = cached.Artists
	}
}

// mergeArtistListing folds the artist-level external listing into the store.
// Entries already present (by key or normalized title) are enriched; the rest
// are inserted as external-only "unreported" releases.
func (a *Aggregator) mergeArtistListing(ctx context.Context, store *Store, artist string) error {
	listCtx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	listing, err := a.external.GetArtistCatalog(listCtx, artist)
	if err != nil {
		return err
	}

	byTitle := make(map[string]string)
	for _, key := range store.Keys() {
		if release, ok := store.Get(key); ok {
			if normalized := NormalizeTitle(release.Title); normalized != "" {
				byTitle[normalized] = key
			}
		}
	}

	for _, ext := range listing {
		meta := ext.ToMetadata()

		key := ""
		if ext.UPC != "" {
			if _, ok := store.Get(ext.UPC); ok {
				key = ext.UPC
			}
		}
		if key == "" {
			key = byTitle[NormalizeTitle(ext.Name)]
		}

		if key != "" {
			err := store.Apply(key, func(release *models.Release) error {
				applyMetadata(release, meta)
				return nil
			})
			if err != nil {
				a.logger.Warn("failed to merge listing entry", "release", ext.Name, "error", err)
			}
			continue
		}

		unreported := externalRelease(ext)
		if store.Insert(unreported) {
			if normalized := NormalizeTitle(unreported.Title); normalized != "" {
				byTitle[normalized] = unreported.Key
			}
		}
	}

	return nil
}

// externalRelease constructs an external-only release from a listing entry.
// No sales imports mention it, so all metrics are zero.
func externalRelease(ext services.ExternalRelease) *models.Release {
	release := &models.Release{
		Key:           ReleaseKey(ext.UPC, ext.Name),
		UPC:           ext.UPC,
		Title:         ext.Name,
		ReleaseDate:   ext.ReleaseDate,
		Genres:        ext.Genres,
		Label:         ext.Label,
		ImageURL:      ext.ImageURL,
		ImageURLSmall: ext.ImageURLSmall,
		Format:        "digital",
		Provenance:    models.ProvenanceExternal,
	}

	for _, track := range ext.Tracks {
		release.Tracks = append(release.Tracks, models.Track{
			Title:       track.Title,
			ISRC:        track.ISRC,
			TrackNumber: track.TrackNumber,
			DurationMS:  track.DurationMS,
			Artists:     track.Artists,
		})
	}

	release.SyncTrackCount()
	return release
}
