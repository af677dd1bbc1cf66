package catalog

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/labelcopy/internal/models"
	"github.com/desertthunder/labelcopy/internal/services"
)

// CacheReader reads the durable metadata cache. Implemented by
// repositories.MetadataRepository; read errors are absorbed by the resolver
// and treated as misses.
type CacheReader interface {
	GetByUPC(upc string) (*models.ReleaseMetadata, error)
	GetTrackByISRC(isrc string) (*models.TrackMetadata, string, error)
}

// Refresher triggers a refresh of the durable cache for one key.
// Implemented by tasks.RefreshEngine.
type Refresher interface {
	RefreshOne(ctx context.Context, upc string) error
}

// Searcher performs direct, uncached lookups against the external catalog.
type Searcher interface {
	SearchAlbumByUPC(ctx context.Context, upc string) (*services.ExternalRelease, error)
}

// ResolutionSource identifies which stage of the pipeline produced a result.
type ResolutionSource int

const (
	SourceNone ResolutionSource = iota
	SourceCache
	SourceRefreshed
	SourceDirect
)

func (s ResolutionSource) String() string {
	switch s {
	case SourceCache:
		return "cache"
	case SourceRefreshed:
		return "refreshed"
	case SourceDirect:
		return "direct"
	default:
		return "none"
	}
}

// Resolution is the outcome of a metadata lookup. Found=false is a normal
// outcome, never an error: the caller falls back to import-only data.
type Resolution struct {
	Found    bool
	Source   ResolutionSource
	Metadata *models.ReleaseMetadata
}

// Resolver is the three-stage metadata resolution pipeline:
// cache read, refresh-then-reread, direct uncached search.
//
// Stages are injectable so tests substitute fakes without touching the
// aggregator. The resolver itself never writes the cache; that is the
// refresher's job.
type Resolver struct {
	cache     CacheReader
	refresher Refresher
	searcher  Searcher
	logger    *log.Logger
}

// NewResolver creates a resolution pipeline from its three stages.
// Any stage may be nil, in which case it is skipped.
func NewResolver(cache CacheReader, refresher Refresher, searcher Searcher, logger *log.Logger) *Resolver {
	return &Resolver{cache: cache, refresher: refresher, searcher: searcher, logger: logger}
}

// ResolveRelease looks up release metadata by UPC.
//
// The cache is always tried first. A hit missing the release date (the
// critical field for releases) triggers one refresh and a single re-read.
// If the cache has no record at all and the refresh fails too, a direct
// search is the last resort. Lookup failures at any stage degrade to the
// next stage rather than propagate.
func (r *Resolver) ResolveRelease(ctx context.Context, upc string) Resolution {
	cached := r.readCache(upc)
	if cached != nil && cached.HasReleaseDate() {
		return Resolution{Found: true, Source: SourceCache, Metadata: cached}
	}

	if r.refresher != nil {
		if err := r.refresher.RefreshOne(ctx, upc); err != nil {
			if r.logger != nil {
				r.logger.Debug("refresh failed during resolution", "upc", upc, "error", err)
			}
		} else if refreshed := r.readCache(upc); refreshed != nil {
			return Resolution{Found: true, Source: SourceRefreshed, Metadata: refreshed}
		}
	}

	// A stale-but-present cache record beats a direct search round trip.
	if cached != nil {
		return Resolution{Found: true, Source: SourceCache, Metadata: cached}
	}

	if r.searcher != nil {
		if external, err := r.searcher.SearchAlbumByUPC(ctx, upc); err == nil && external != nil {
			return Resolution{Found: true, Source: SourceDirect, Metadata: external.ToMetadata()}
		}
	}

	return Resolution{}
}

// ResolveTrackISRC looks up a cached track listing row by ISRC.
// Read errors are treated as misses.
func (r *Resolver) ResolveTrackISRC(isrc string) (*models.TrackMetadata, bool) {
	if r.cache == nil || isrc == "" {
		return nil, false
	}
	track, _, err := r.cache.GetTrackByISRC(isrc)
	if err != nil || track == nil {
		return nil, false
	}
	return track, true
}

// readCache reads the cache, mapping any error to a miss.
func (r *Resolver) readCache(upc string) *models.ReleaseMetadata {
	if r.cache == nil {
		return nil
	}
	cached, err := r.cache.GetByUPC(upc)
	if err != nil {
		if r.logger != nil {
			r.logger.Debug("cache read failed", "upc", upc, "error", err)
		}
		return nil
	}
	return cached
}
