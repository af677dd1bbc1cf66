// Spotify API implementation of [CatalogService]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/labelcopy/internal/shared"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type externalIDs struct {
	ISRC string `json:"isrc"`
	UPC  string `json:"upc"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Genres []string       `json:"genres"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	TrackNumber int             `json:"track_number"`
	DurationMS  int             `json:"duration_ms"`
	ExternalIDs externalIDs     `json:"external_ids"`
	URI         string          `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	ReleaseDate string          `json:"release_date"`
	TotalTracks int             `json:"total_tracks"`
	Genres      []string        `json:"genres"`
	Label       string          `json:"label"`
	Images      []SpotifyImage  `json:"images"`
	ExternalIDs externalIDs     `json:"external_ids"`
	Tracks      struct {
		Items []SpotifyTrack `json:"items"`
	} `json:"tracks"`
	URI string `json:"uri"`
}

type spotifySearchResponse struct {
	Albums struct {
		Items []SpotifyAlbum `json:"items"`
	} `json:"albums"`
	Artists struct {
		Items []SpotifyArtist `json:"items"`
	} `json:"artists"`
	Tracks struct {
		Items []SpotifyTrack `json:"items"`
	} `json:"tracks"`
}

type spotifyPaginatedAlbums struct {
	Items []SpotifyAlbum `json:"items"`
	Next  *string        `json:"next"`
}

type spotifyTracksResponse struct {
	Tracks []SpotifyTrack `json:"tracks"`
}

// SpotifyService implements the CatalogService interface for Spotify API interactions.
// Uses the [clientcredentials] flow; no user context is required for catalog reads.
type SpotifyService struct {
	config     *clientcredentials.Config
	httpClient *http.Client
	baseURL    string
}

// NewSpotifyService creates a new Spotify catalog service with the given credentials.
func NewSpotifyService(clientID, clientSecret string) (*SpotifyService, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}
	if clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyTokenURL,
	}

	return &SpotifyService{
		config:  config,
		baseURL: spotifyBaseURL,
	}, nil
}

// Name returns the name of the service
func (s *SpotifyService) Name() string { return "Spotify" }

// SetBaseURL overrides the API base URL. Used by tests to point at a fake server.
func (s *SpotifyService) SetBaseURL(baseURL string) { s.baseURL = baseURL }

// SetHTTPClient overrides the authenticated HTTP client. Used by tests.
func (s *SpotifyService) SetHTTPClient(client *http.Client) { s.httpClient = client }

// Authenticate obtains a client-credentials token and builds the authenticated HTTP client.
func (s *SpotifyService) Authenticate(ctx context.Context) error {
	if s.httpClient != nil {
		return nil
	}

	if _, err := s.config.Token(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidCredentials, err)
	}

	s.httpClient = s.config.Client(ctx)
	return nil
}

// SearchAlbumByUPC performs a direct album lookup by UPC using the search API's
// upc: filter, then hydrates the match with the full album object (label,
// genres, full track listing with ISRCs).
func (s *SpotifyService) SearchAlbumByUPC(ctx context.Context, upc string) (*ExternalRelease, error) {
	query := url.Values{}
	query.Set("q", "upc:"+upc)
	query.Set("type", "album")
	query.Set("limit", "1")

	var search spotifySearchResponse
	if err := s.get(ctx, "/search?"+query.Encode(), &search); err != nil {
		return nil, err
	}

	if len(search.Albums.Items) == 0 {
		return nil, fmt.Errorf("%w: UPC %s", shared.ErrReleaseNotFound, upc)
	}

	release, err := s.getAlbum(ctx, search.Albums.Items[0].ID)
	if err != nil {
		return nil, err
	}
	if release.UPC == "" {
		release.UPC = upc
	}
	return release, nil
}

// SearchTrackByISRC performs a direct track lookup by ISRC using the search
// API's isrc: filter.
func (s *SpotifyService) SearchTrackByISRC(ctx context.Context, isrc string) (*ExternalTrack, error) {
	query := url.Values{}
	query.Set("q", "isrc:"+isrc)
	query.Set("type", "track")
	query.Set("limit", "1")

	var search spotifySearchResponse
	if err := s.get(ctx, "/search?"+query.Encode(), &search); err != nil {
		return nil, err
	}

	if len(search.Tracks.Items) == 0 {
		return nil, fmt.Errorf("%w: ISRC %s", shared.ErrTrackNotFound, isrc)
	}

	track := convertSpotifyTrack(search.Tracks.Items[0])
	if track.ISRC == "" {
		track.ISRC = isrc
	}
	return &track, nil
}

// GetArtistCatalog lists every album and single Spotify knows for the artist,
// hydrating each entry with its full track listing.
func (s *SpotifyService) GetArtistCatalog(ctx context.Context, artistName string) ([]ExternalRelease, error) {
	query := url.Values{}
	query.Set("q", artistName)
	query.Set("type", "artist")
	query.Set("limit", "1")

	var search spotifySearchResponse
	if err := s.get(ctx, "/search?"+query.Encode(), &search); err != nil {
		return nil, err
	}

	if len(search.Artists.Items) == 0 {
		return nil, fmt.Errorf("%w: artist %q", shared.ErrReleaseNotFound, artistName)
	}
	artistID := search.Artists.Items[0].ID

	albumsQuery := url.Values{}
	albumsQuery.Set("include_groups", "album,single")
	albumsQuery.Set("limit", "50")

	var releases []ExternalRelease
	path := fmt.Sprintf("/artists/%s/albums?%s", artistID, albumsQuery.Encode())

	for path != "" {
		var page spotifyPaginatedAlbums
		if err := s.get(ctx, path, &page); err != nil {
			return nil, err
		}

		for _, album := range page.Items {
			release, err := s.getAlbum(ctx, album.ID)
			if err != nil {
				// A single unhydratable album must not sink the whole listing.
				continue
			}
			releases = append(releases, *release)
		}

		if page.Next == nil {
			break
		}
		path = strings.TrimPrefix(*page.Next, s.baseURL)
	}

	return releases, nil
}

// getAlbum fetches the full album object and resolves track ISRCs via the
// bulk tracks endpoint (the album's embedded track listing omits external IDs).
func (s *SpotifyService) getAlbum(ctx context.Context, albumID string) (*ExternalRelease, error) {
	var album SpotifyAlbum
	if err := s.get(ctx, "/albums/"+albumID, &album); err != nil {
		return nil, err
	}

	release := &ExternalRelease{
		ID:          album.ID,
		UPC:         album.ExternalIDs.UPC,
		Name:        album.Name,
		ReleaseDate: album.ReleaseDate,
		TotalTracks: album.TotalTracks,
		Genres:      album.Genres,
		Label:       album.Label,
	}

	if len(album.Images) > 0 {
		release.ImageURL = album.Images[0].URL
		release.ImageURLSmall = album.Images[len(album.Images)-1].URL
	}

	trackIDs := make([]string, 0, len(album.Tracks.Items))
	for _, track := range album.Tracks.Items {
		trackIDs = append(trackIDs, track.ID)
	}

	if len(trackIDs) > 0 {
		var full spotifyTracksResponse
		if err := s.get(ctx, "/tracks?ids="+strings.Join(trackIDs, ","), &full); err == nil && len(full.Tracks) > 0 {
			for _, track := range full.Tracks {
				release.Tracks = append(release.Tracks, convertSpotifyTrack(track))
			}
		} else {
			// Fall back to the embedded listing without ISRCs.
			for _, track := range album.Tracks.Items {
				release.Tracks = append(release.Tracks, convertSpotifyTrack(track))
			}
		}
	}

	return release, nil
}

// get performs an authenticated GET against the Spotify API and decodes the
// JSON response into target. Maps 429 to ErrRateLimited and undecodable bodies
// to ErrMalformedResponse so callers can treat them as not-found.
func (s *SpotifyService) get(ctx context.Context, path string, target any) error {
	if s.httpClient == nil {
		if err := s.Authenticate(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", shared.ErrAPIRequest, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: retry after %s", shared.ErrRateLimited, resp.Header.Get("Retry-After"))
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrReleaseNotFound, path)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}

	return nil
}

// convertSpotifyTrack maps a Spotify track object onto the service-neutral DTO.
func convertSpotifyTrack(track SpotifyTrack) ExternalTrack {
	artists := make([]string, 0, len(track.Artists))
	for _, artist := range track.Artists {
		artists = append(artists, artist.Name)
	}

	return ExternalTrack{
		ID:          track.ID,
		ISRC:        track.ExternalIDs.ISRC,
		Title:       track.Name,
		TrackNumber: track.TrackNumber,
		DurationMS:  track.DurationMS,
		Artists:     artists,
	}
}
