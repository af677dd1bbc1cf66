// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/labelcopy/internal/models"
	"github.com/desertthunder/labelcopy/internal/services"
)

// MockImportsService is a test double for [services.ImportsService]
type MockImportsService struct {
	Releases []models.ImportRelease
	Tracks   []models.ImportTrack
	Err      error
}

func (m *MockImportsService) GetArtistReleases(ctx context.Context, artistName string) ([]models.ImportRelease, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Releases, nil
}

func (m *MockImportsService) GetArtistTracks(ctx context.Context, artistName string) ([]models.ImportTrack, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Tracks, nil
}

func (m *MockImportsService) Name() string { return "mock-imports" }

// MockCatalogService is a test double for [services.CatalogService]
type MockCatalogService struct {
	mu sync.Mutex

	Albums       map[string]*services.ExternalRelease // keyed by UPC
	TracksByISRC map[string]*services.ExternalTrack
	Catalog      []services.ExternalRelease
	FailUPC      map[string]error
	CatalogErr   error

	SearchCalls []string
}

func (m *MockCatalogService) Authenticate(ctx context.Context) error { return nil }

func (m *MockCatalogService) SearchAlbumByUPC(ctx context.Context, upc string) (*services.ExternalRelease, error) {
	m.mu.Lock()
	m.SearchCalls = append(m.SearchCalls, upc)
	m.mu.Unlock()

	if err, ok := m.FailUPC[upc]; ok {
		return nil, err
	}
	if album, ok := m.Albums[upc]; ok {
		return album, nil
	}
	return nil, fmt.Errorf("release not found: %s", upc)
}

func (m *MockCatalogService) SearchTrackByISRC(ctx context.Context, isrc string) (*services.ExternalTrack, error) {
	if track, ok := m.TracksByISRC[isrc]; ok {
		return track, nil
	}
	return nil, fmt.Errorf("track not found: %s", isrc)
}

func (m *MockCatalogService) GetArtistCatalog(ctx context.Context, artistName string) ([]services.ExternalRelease, error) {
	if m.CatalogErr != nil {
		return nil, m.CatalogErr
	}
	return m.Catalog, nil
}

func (m *MockCatalogService) Name() string { return "mock-catalog" }

// MemoryCache is an in-memory stand-in for the durable metadata cache,
// implementing both the reader and writer interfaces.
type MemoryCache struct {
	mu       sync.Mutex
	Releases map[string]*models.ReleaseMetadata
	ReadErr  error
	WriteErr error
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{Releases: make(map[string]*models.ReleaseMetadata)}
}

func (c *MemoryCache) GetByUPC(upc string) (*models.ReleaseMetadata, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ReadErr != nil {
		return nil, c.ReadErr
	}
	return c.Releases[upc], nil
}

func (c *MemoryCache) GetTrackByISRC(isrc string) (*models.TrackMetadata, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ReadErr != nil {
		return nil, "", c.ReadErr
	}
	for upc, release := range c.Releases {
		for i := range release.Tracks {
			if release.Tracks[i].ISRC == isrc {
				return &release.Tracks[i], upc, nil
			}
		}
	}
	return nil, "", nil
}

func (c *MemoryCache) Upsert(release *models.ReleaseMetadata) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.WriteErr != nil {
		return c.WriteErr
	}
	c.Releases[release.UPC] = release
	return nil
}

// MockRefresher records refresh calls and delegates to Fn when set.
type MockRefresher struct {
	mu    sync.Mutex
	Fn    func(ctx context.Context, upc string) error
	Calls []string
}

func (r *MockRefresher) RefreshOne(ctx context.Context, upc string) error {
	r.mu.Lock()
	r.Calls = append(r.Calls, upc)
	r.mu.Unlock()
	if r.Fn != nil {
		return r.Fn(ctx, upc)
	}
	return nil
}

func (r *MockRefresher) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Calls)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
