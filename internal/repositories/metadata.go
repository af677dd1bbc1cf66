package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/labelcopy/internal/models"
	"github.com/desertthunder/labelcopy/internal/shared"
)

// MetadataRepository implements models.Repository[*models.ReleaseMetadata] for the
// durable external-metadata cache.
//
// Release rows are keyed by UPC; track listing rows hang off the release and are
// replaced wholesale on every refresh (the external service owns the canonical
// track list, so partial track updates are never meaningful).
type MetadataRepository struct {
	db *sql.DB
}

// NewMetadataRepository creates a new MetadataRepository with the given database connection
func NewMetadataRepository(db *sql.DB) *MetadataRepository {
	return &MetadataRepository{db: db}
}

// Create inserts a new [models.ReleaseMetadata] into the cache with generated ID and sequence
func (r *MetadataRepository) Create(release *models.ReleaseMetadata) error {
	sequence, err := NextSequence(r.db, "releases_cache")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	release.SetID(id)
	release.SetSequence(sequence)

	if err := release.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	genres, err := encodeStrings(release.Genres)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO releases_cache (id, sequence, upc, spotify_id, name, image_url, image_url_small, release_date, genres, label, total_tracks, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		release.UPC,
		release.SpotifyID,
		release.Name,
		release.ImageURL,
		release.ImageURLSmall,
		release.ReleaseDate,
		genres,
		release.Label,
		release.TotalTracks,
		release.CreatedAt(),
		release.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert release metadata: %w", err)
	}

	return r.replaceTracks(release.UPC, release.Tracks)
}

// Get retrieves a cached release by ID, excluding soft-deleted rows
func (r *MetadataRepository) Get(id string) (*models.ReleaseMetadata, error) {
	query := `
		SELECT id, sequence, upc, spotify_id, name, image_url, image_url_small, release_date, genres, label, total_tracks, created_at, updated_at, deleted_at
		FROM releases_cache
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByUPC retrieves a cached release and its track listing by UPC.
// Returns (nil, nil) when the UPC has never been cached (cache miss, not an error).
func (r *MetadataRepository) GetByUPC(upc string) (*models.ReleaseMetadata, error) {
	query := `
		SELECT id, sequence, upc, spotify_id, name, image_url, image_url_small, release_date, genres, label, total_tracks, created_at, updated_at, deleted_at
		FROM releases_cache
		WHERE upc = ? AND deleted_at IS NULL
	`

	release, err := r.scanOne(r.db.QueryRow(query, upc))
	if err != nil || release == nil {
		return release, err
	}

	tracks, err := r.tracksForUPC(upc)
	if err != nil {
		return nil, err
	}
	release.Tracks = tracks

	return release, nil
}

// GetTrackByISRC retrieves a cached track listing row by ISRC across all releases.
// Returns the owning release UPC alongside the track; (nil, "", nil) on a miss.
func (r *MetadataRepository) GetTrackByISRC(isrc string) (*models.TrackMetadata, string, error) {
	query := `
		SELECT release_upc, isrc, title, track_number, duration_ms, artists
		FROM release_tracks_cache
		WHERE isrc = ? AND deleted_at IS NULL
		LIMIT 1
	`

	var upc string
	var track models.TrackMetadata
	var trackNumber, durationMS sql.NullInt64
	var isrcCol, artists sql.NullString

	err := r.db.QueryRow(query, isrc).Scan(&upc, &isrcCol, &track.Title, &trackNumber, &durationMS, &artists)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to query track metadata: %w", err)
	}

	track.ISRC = isrcCol.String
	track.TrackNumber = int(trackNumber.Int64)
	track.DurationMS = int(durationMS.Int64)
	if track.Artists, err = decodeStrings(artists.String); err != nil {
		return nil, "", err
	}

	return &track, upc, nil
}

// Upsert writes a refreshed release record into the cache, replacing any prior
// row for the same UPC along with its track listing.
func (r *MetadataRepository) Upsert(release *models.ReleaseMetadata) error {
	existing, err := r.GetByUPC(release.UPC)
	if err != nil {
		return err
	}

	if existing == nil {
		return r.Create(release)
	}

	release.SetID(existing.ID())
	release.SetSequence(existing.Sequence())
	release.SetCreatedAt(existing.CreatedAt())
	return r.Update(release)
}

// Update modifies an existing cached release and replaces its track listing
func (r *MetadataRepository) Update(release *models.ReleaseMetadata) error {
	if err := release.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	release.SetUpdatedAt(now)

	genres, err := encodeStrings(release.Genres)
	if err != nil {
		return err
	}

	query := `
		UPDATE releases_cache
		SET spotify_id = ?, name = ?, image_url = ?, image_url_small = ?, release_date = ?, genres = ?, label = ?, total_tracks = ?, updated_at = ?
		WHERE upc = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		release.SpotifyID,
		release.Name,
		release.ImageURL,
		release.ImageURLSmall,
		release.ReleaseDate,
		genres,
		release.Label,
		release.TotalTracks,
		now,
		release.UPC,
	)
	if err != nil {
		return fmt.Errorf("failed to update release metadata: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("no cached release for UPC %s", release.UPC)
	}

	return r.replaceTracks(release.UPC, release.Tracks)
}

// Delete soft deletes a cached release by ID
func (r *MetadataRepository) Delete(id string) error {
	now := time.Now()

	result, err := r.db.Exec("UPDATE releases_cache SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", now, id)
	if err != nil {
		return fmt.Errorf("failed to delete release metadata: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("release metadata not found: %s", id)
	}

	return nil
}

// List retrieves cached releases matching the given criteria, ordered by sequence
func (r *MetadataRepository) List(criteria map[string]any) ([]*models.ReleaseMetadata, error) {
	query := `
		SELECT id, sequence, upc, spotify_id, name, image_url, image_url_small, release_date, genres, label, total_tracks, created_at, updated_at, deleted_at
		FROM releases_cache
		WHERE deleted_at IS NULL
	`
	args := []any{}

	if label, ok := criteria["label"]; ok {
		query += " AND label = ?"
		args = append(args, label)
	}

	query += " ORDER BY sequence"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list release metadata: %w", err)
	}
	defer rows.Close()

	var releases []*models.ReleaseMetadata
	for rows.Next() {
		release, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		releases = append(releases, release)
	}

	return releases, rows.Err()
}

// replaceTracks deletes and reinserts the track listing for a UPC.
func (r *MetadataRepository) replaceTracks(upc string, tracks []models.TrackMetadata) error {
	if _, err := r.db.Exec("DELETE FROM release_tracks_cache WHERE release_upc = ?", upc); err != nil {
		return fmt.Errorf("failed to clear track listing: %w", err)
	}

	now := time.Now()
	for _, track := range tracks {
		sequence, err := NextSequence(r.db, "release_tracks_cache")
		if err != nil {
			return fmt.Errorf("failed to generate track sequence: %w", err)
		}

		artists, err := encodeStrings(track.Artists)
		if err != nil {
			return err
		}

		query := `
			INSERT INTO release_tracks_cache (id, sequence, release_upc, isrc, title, track_number, duration_ms, artists, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err = r.db.Exec(query,
			shared.GenerateID(),
			sequence,
			upc,
			track.ISRC,
			track.Title,
			track.TrackNumber,
			track.DurationMS,
			artists,
			now,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert track listing row: %w", err)
		}
	}

	return nil
}

// tracksForUPC loads the cached track listing for a release ordered by track number.
func (r *MetadataRepository) tracksForUPC(upc string) ([]models.TrackMetadata, error) {
	query := `
		SELECT isrc, title, track_number, duration_ms, artists
		FROM release_tracks_cache
		WHERE release_upc = ? AND deleted_at IS NULL
		ORDER BY track_number, sequence
	`

	rows, err := r.db.Query(query, upc)
	if err != nil {
		return nil, fmt.Errorf("failed to query track listing: %w", err)
	}
	defer rows.Close()

	var tracks []models.TrackMetadata
	for rows.Next() {
		var track models.TrackMetadata
		var trackNumber, durationMS sql.NullInt64
		var isrc, artists sql.NullString

		if err := rows.Scan(&isrc, &track.Title, &trackNumber, &durationMS, &artists); err != nil {
			return nil, fmt.Errorf("failed to scan track listing row: %w", err)
		}

		track.ISRC = isrc.String
		track.TrackNumber = int(trackNumber.Int64)
		track.DurationMS = int(durationMS.Int64)
		if track.Artists, err = decodeStrings(artists.String); err != nil {
			return nil, err
		}

		tracks = append(tracks, track)
	}

	return tracks, rows.Err()
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

func (r *MetadataRepository) scanOne(row *sql.Row) (*models.ReleaseMetadata, error) {
	release, err := r.scanRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return release, err
}

func (r *MetadataRepository) scanRow(s scanner) (*models.ReleaseMetadata, error) {
	var release models.ReleaseMetadata
	var id string
	var sequence int
	var upc, name string
	var spotifyID, imageURL, imageURLSmall, releaseDate, genres, label sql.NullString
	var totalTracks sql.NullInt64
	var createdAt, updatedAt time.Time
	var deletedAt sql.NullTime

	err := s.Scan(&id, &sequence, &upc, &spotifyID, &name, &imageURL, &imageURLSmall, &releaseDate, &genres, &label, &totalTracks, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	release.UPC = upc
	release.Name = name
	release.SpotifyID = spotifyID.String
	release.ImageURL = imageURL.String
	release.ImageURLSmall = imageURLSmall.String
	release.ReleaseDate = releaseDate.String
	release.Label = label.String
	release.TotalTracks = int(totalTracks.Int64)
	if release.Genres, err = decodeStrings(genres.String); err != nil {
		return nil, err
	}

	release.SetID(id)
	release.SetSequence(sequence)
	release.SetCreatedAt(createdAt)
	release.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		t := deletedAt.Time
		release.SetDeletedAt(&t)
	}

	return &release, nil
}

// encodeStrings serializes a string slice to a JSON column value.
func encodeStrings(values []string) (string, error) {
	if len(values) == 0 {
		return "", nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to encode string list: %w", err)
	}
	return string(data), nil
}

// decodeStrings deserializes a JSON column value into a string slice.
func decodeStrings(value string) ([]string, error) {
	if value == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(value), &values); err != nil {
		return nil, fmt.Errorf("failed to decode string list: %w", err)
	}
	return values, nil
}
