package models

import (
	"fmt"
	"time"
)

// ReleaseMetadata is a cached external-catalog record for one release, keyed by UPC.
//
// Rows are written only by the refresh path and read by the cache client; the
// in-memory catalog never mutates them.
type ReleaseMetadata struct {
	id        string
	sequence  int
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time

	UPC           string
	SpotifyID     string
	Name          string
	ImageURL      string
	ImageURLSmall string
	ReleaseDate   string
	Genres        []string
	Label         string
	TotalTracks   int
	Tracks        []TrackMetadata
}

// TrackMetadata is one canonical track listing row attached to a cached release.
type TrackMetadata struct {
	ISRC        string
	Title       string
	TrackNumber int
	DurationMS  int
	Artists     []string
}

// NewReleaseMetadata creates a cache record for the given UPC with fresh timestamps.
func NewReleaseMetadata(upc, name string) *ReleaseMetadata {
	now := time.Now()
	return &ReleaseMetadata{
		UPC:       upc,
		Name:      name,
		createdAt: now,
		updatedAt: now,
	}
}

func (m *ReleaseMetadata) ID() string           { return m.id }
func (m *ReleaseMetadata) Sequence() int        { return m.sequence }
func (m *ReleaseMetadata) CreatedAt() time.Time { return m.createdAt }
func (m *ReleaseMetadata) UpdatedAt() time.Time { return m.updatedAt }
func (m *ReleaseMetadata) DeletedAt() *time.Time {
	return m.deletedAt
}

func (m *ReleaseMetadata) SetID(id string)             { m.id = id }
func (m *ReleaseMetadata) SetSequence(seq int)         { m.sequence = seq }
func (m *ReleaseMetadata) SetCreatedAt(t time.Time)    { m.createdAt = t }
func (m *ReleaseMetadata) SetUpdatedAt(t time.Time)    { m.updatedAt = t }
func (m *ReleaseMetadata) SetDeletedAt(t *time.Time)   { m.deletedAt = t }

// Validate checks that the cache record carries its natural key and a display name.
func (m *ReleaseMetadata) Validate() error {
	if m.UPC == "" {
		return fmt.Errorf("release metadata missing UPC")
	}
	if m.Name == "" {
		return fmt.Errorf("release metadata %s missing name", m.UPC)
	}
	return nil
}

// HasReleaseDate reports whether the cached record carries the release date,
// the field the aggregator treats as critical for releases.
func (m *ReleaseMetadata) HasReleaseDate() bool {
	return m.ReleaseDate != ""
}
