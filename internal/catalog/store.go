package catalog

import (
	"sort"
	"sync"

	"github.com/desertthunder/labelcopy/internal/models"
	"github.com/desertthunder/labelcopy/internal/shared"
)

// Store is an index-addressable arena of releases keyed by canonical release key.
//
// Enrichment fan-out and merge execution both mutate the same collection, so
// every mutation goes through [Store.Apply], which runs against the current
// authoritative state under the store lock and bumps the version counter. A
// merge computed from an earlier listing therefore never clobbers concurrent
// enrichment; it re-resolves its targets at commit time.
type Store struct {
	mu       sync.RWMutex
	releases map[string]*models.Release
	order    []string
	version  uint64
}

// NewStore creates an empty release store.
func NewStore() *Store {
	return &Store{releases: make(map[string]*models.Release)}
}

// Len returns the number of releases in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.releases)
}

// Version returns the store's mutation counter.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Insert adds a release under its key. Existing entries are left untouched;
// enrichment of existing entries goes through Apply.
func (s *Store) Insert(release *models.Release) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.releases[release.Key]; exists {
		return false
	}

	s.releases[release.Key] = release
	s.order = append(s.order, release.Key)
	s.version++
	return true
}

// Apply runs fn against the current state of the release under the store lock.
// Returns shared.ErrStaleGroup if the key no longer exists.
func (s *Store) Apply(key string, fn func(*models.Release) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	release, ok := s.releases[key]
	if !ok {
		return shared.ErrStaleGroup
	}

	if err := fn(release); err != nil {
		return err
	}

	s.version++
	return nil
}

// Get returns the release for a key. The returned pointer must be treated as
// read-only; mutation goes through Apply.
func (s *Store) Get(key string) (*models.Release, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	release, ok := s.releases[key]
	return release, ok
}

// Keys returns release keys in insertion order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, len(s.order))
	copy(keys, s.order)
	return keys
}

// Releases returns the store contents sorted by release date descending with
// undated releases last. Ties keep insertion order (sort is stable).
func (s *Store) Releases() []*models.Release {
	s.mu.RLock()
	defer s.mu.RUnlock()

	releases := make([]*models.Release, 0, len(s.order))
	for _, key := range s.order {
		releases = append(releases, s.releases[key])
	}

	sort.SliceStable(releases, func(i, j int) bool {
		a, b := releases[i], releases[j]
		switch {
		case a.HasDate() && !b.HasDate():
			return true
		case !a.HasDate() && b.HasDate():
			return false
		default:
			return a.ReleaseDate > b.ReleaseDate
		}
	})

	return releases
}

// View assembles the ordered catalog view for an artist.
func (s *Store) View(artist string) *models.CatalogView {
	return &models.CatalogView{Artist: artist, Releases: s.Releases()}
}
