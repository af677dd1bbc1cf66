package services

import "github.com/desertthunder/labelcopy/internal/models"

// ToMetadata converts a raw external release into the durable cache record the
// refresh path persists.
func (e *ExternalRelease) ToMetadata() *models.ReleaseMetadata {
	meta := models.NewReleaseMetadata(e.UPC, e.Name)
	meta.SpotifyID = e.ID
	meta.ImageURL = e.ImageURL
	meta.ImageURLSmall = e.ImageURLSmall
	meta.ReleaseDate = e.ReleaseDate
	meta.Genres = e.Genres
	meta.Label = e.Label
	meta.TotalTracks = e.TotalTracks

	for _, track := range e.Tracks {
		meta.Tracks = append(meta.Tracks, models.TrackMetadata{
			ISRC:        track.ISRC,
			Title:       track.Title,
			TrackNumber: track.TrackNumber,
			DurationMS:  track.DurationMS,
			Artists:     track.Artists,
		})
	}

	return meta
}
