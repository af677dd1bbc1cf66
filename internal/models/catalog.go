package models

import (
	"fmt"
	"strings"
)

// Provenance is a closed set of catalog entry origins.
//
// An entry either appeared in at least one sales import, was found in the
// external catalog (cache or live service), or both. There is no valid
// zero-origin state for a constructed release.
type Provenance int

const (
	ProvenanceUnknown Provenance = iota
	ProvenanceImports            // present in sales imports only
	ProvenanceExternal           // present in the external catalog only ("unreported")
	ProvenanceBoth               // present in both
)

// WithImports marks the imports origin, preserving any external origin.
func (p Provenance) WithImports() Provenance {
	if p == ProvenanceExternal || p == ProvenanceBoth {
		return ProvenanceBoth
	}
	return ProvenanceImports
}

// WithExternal marks the external-catalog origin, preserving any imports origin.
func (p Provenance) WithExternal() Provenance {
	if p == ProvenanceImports || p == ProvenanceBoth {
		return ProvenanceBoth
	}
	return ProvenanceExternal
}

// FromImports reports whether the entry appears in at least one sales import.
func (p Provenance) FromImports() bool {
	return p == ProvenanceImports || p == ProvenanceBoth
}

// FromExternal reports whether the entry was found in the external catalog.
func (p Provenance) FromExternal() bool {
	return p == ProvenanceExternal || p == ProvenanceBoth
}

func (p Provenance) String() string {
	switch p {
	case ProvenanceImports:
		return "imports"
	case ProvenanceExternal:
		return "catalog"
	case ProvenanceBoth:
		return "imports+catalog"
	default:
		return "unknown"
	}
}

// Track represents one recording within a release.
//
// Tracks with the same non-empty ISRC are the same recording by definition.
// MergedFrom records the original titles absorbed into this track by the
// merge executor; it is empty for a track that has never been merged.
type Track struct {
	Title       string
	ISRC        string
	TrackNumber int // 0 = unknown
	DurationMS  int // 0 = unknown
	Artists     []string
	Gross       float64
	Streams     int64
	Currency    string
	MergedFrom  []string
}

// HasISRC reports whether the track carries a known recording identity.
func (t *Track) HasISRC() bool {
	return strings.TrimSpace(t.ISRC) != ""
}

// Release represents one commercial release (album or single).
//
// Identity key: UPC when present, else a normalized form of the title.
// A release owns its tracks; a track belongs to exactly one release at a time.
type Release struct {
	Key           string // canonical map key: UPC if present, else normalized title
	UPC           string
	Title         string
	TrackCount    int
	Gross         float64
	Streams       int64
	Currency      string
	ReleaseDate   string // ISO date, "" = unknown
	Genres        []string
	Label         string
	ImageURL      string
	ImageURLSmall string
	Format        string // physical/digital
	Provenance    Provenance
	Tracks        []Track
}

// HasDate reports whether the release carries a known release date.
func (r *Release) HasDate() bool {
	return r.ReleaseDate != ""
}

// SyncTrackCount recomputes TrackCount from the current track collection.
// Must be called after any mutation of Tracks.
func (r *Release) SyncTrackCount() {
	r.TrackCount = len(r.Tracks)
}

// CheckInvariants verifies the structural invariants of a constructed release:
// valid provenance, track count consistency, and track metric totals not
// exceeding the release aggregate for the same currency.
func (r *Release) CheckInvariants() error {
	if r.Provenance == ProvenanceUnknown {
		return fmt.Errorf("release %q has no provenance", r.Title)
	}
	if r.TrackCount != len(r.Tracks) {
		return fmt.Errorf("release %q track_count %d != %d tracks", r.Title, r.TrackCount, len(r.Tracks))
	}

	var gross float64
	var streams int64
	for i := range r.Tracks {
		t := &r.Tracks[i]
		if t.Currency == r.Currency {
			gross += t.Gross
		}
		streams += t.Streams
	}
	if r.Gross > 0 && gross > r.Gross+grossEpsilon {
		return fmt.Errorf("release %q track gross %.4f exceeds release gross %.4f", r.Title, gross, r.Gross)
	}
	if r.Streams > 0 && streams > r.Streams {
		return fmt.Errorf("release %q track streams %d exceed release streams %d", r.Title, streams, r.Streams)
	}
	return nil
}

// grossEpsilon absorbs float rounding when comparing summed track revenue
// against the release aggregate.
const grossEpsilon = 0.005

// TrackRef points at a track by release key and index within that release's
// track list, so a merge can be executed later without re-scanning.
type TrackRef struct {
	ReleaseKey string
	Index      int
	Title      string
	ISRC       string
}

// DuplicateGroup is one accepted cluster of candidate duplicate tracks.
//
// Confidence is an advisory raw-title similarity score in [0, 1]; the accept
// decision itself is made purely on the ISRC rule, never on similarity.
type DuplicateGroup struct {
	ID              int
	NormalizedTitle string
	Confidence      float64
	Members         []TrackRef
}

// CatalogView is the reconciled, ordered release list for one artist.
// Releases are sorted by release date descending with undated releases last.
type CatalogView struct {
	Artist   string
	Releases []*Release
}

// TotalTracks returns the number of tracks across all releases.
func (v *CatalogView) TotalTracks() int {
	n := 0
	for _, r := range v.Releases {
		n += len(r.Tracks)
	}
	return n
}

// TotalStreams returns the stream count summed over all releases.
func (v *CatalogView) TotalStreams() int64 {
	var n int64
	for _, r := range v.Releases {
		n += r.Streams
	}
	return n
}

// GrossByCurrency returns per-currency release gross totals.
func (v *CatalogView) GrossByCurrency() map[string]float64 {
	totals := make(map[string]float64)
	for _, r := range v.Releases {
		if r.Currency != "" {
			totals[r.Currency] += r.Gross
		}
	}
	return totals
}

// ImportRelease is a release-level aggregate reported by the sales-import API.
type ImportRelease struct {
	UPC      string        `json:"upc"`
	Title    string        `json:"title"`
	Gross    float64       `json:"gross"`
	Streams  int64         `json:"streams"`
	Currency string        `json:"currency"`
	Format   string        `json:"format"`
	Tracks   []ImportTrack `json:"tracks"`
}

// ImportTrack is a track-level aggregate reported by the sales-import API.
type ImportTrack struct {
	Title       string   `json:"title"`
	ISRC        string   `json:"isrc"`
	TrackNumber int      `json:"track_number"`
	DurationMS  int      `json:"duration_ms"`
	Artists     []string `json:"artists"`
	Gross       float64  `json:"gross"`
	Streams     int64    `json:"streams"`
	Currency    string   `json:"currency"`
}
