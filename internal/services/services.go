// package services defines interfaces for the external collaborators of the
// reconciliation core
//
// Spotify (external music catalog), sales-import aggregate API
package services

import (
	"context"

	"github.com/desertthunder/labelcopy/internal/models"
)

// CatalogService defines the interface for the external music catalog used to
// enrich import-derived releases with authoritative (but often incomplete)
// metadata. All operations are best-effort: the service is rate limited and
// may simply not know a release.
type CatalogService interface {
	// Authenticate performs API authentication with the catalog service.
	Authenticate(ctx context.Context) error

	// SearchAlbumByUPC performs a direct, uncached album lookup by UPC.
	// Returns shared.ErrReleaseNotFound when the catalog has no match.
	SearchAlbumByUPC(ctx context.Context, upc string) (*ExternalRelease, error)

	// SearchTrackByISRC performs a direct, uncached track lookup by ISRC.
	// Returns shared.ErrTrackNotFound when the catalog has no match.
	SearchTrackByISRC(ctx context.Context, isrc string) (*ExternalTrack, error)

	// GetArtistCatalog lists all releases the catalog knows for an artist,
	// including track listings where available.
	GetArtistCatalog(ctx context.Context, artistName string) ([]ExternalRelease, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// ImportsService defines the interface for the label's sales-import aggregate
// API, the system of record for revenue and stream figures.
type ImportsService interface {
	// GetArtistReleases retrieves per-release aggregates (with associated
	// tracks) derived from all processed sales imports for an artist.
	GetArtistReleases(ctx context.Context, artistName string) ([]models.ImportRelease, error)

	// GetArtistTracks retrieves flat per-track aggregates for an artist.
	GetArtistTracks(ctx context.Context, artistName string) ([]models.ImportTrack, error)

	// Name returns the name of the service
	Name() string
}

// ExternalRelease represents a raw release object from the external catalog.
type ExternalRelease struct {
	ID            string
	UPC           string
	Name          string
	ReleaseDate   string
	TotalTracks   int
	ImageURL      string
	ImageURLSmall string
	Genres        []string
	Label         string
	Tracks        []ExternalTrack
}

// ExternalTrack represents a raw track object from the external catalog.
type ExternalTrack struct {
	ID          string
	ISRC        string
	Title       string
	TrackNumber int
	DurationMS  int
	Artists     []string
}
