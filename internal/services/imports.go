// Imports API implementation of [ImportsService] for the label's sales-import
// aggregate service.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/desertthunder/labelcopy/internal/models"
	"github.com/desertthunder/labelcopy/internal/shared"
)

// ImportsAPIService provides access to release and track aggregates computed
// from processed sales-import files.
type ImportsAPIService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewImportsAPIService creates a new imports API client.
func NewImportsAPIService(baseURL, apiKey string, client *http.Client) *ImportsAPIService {
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &ImportsAPIService{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: client,
	}
}

// Name returns the name of the service
func (a *ImportsAPIService) Name() string { return "Imports" }

// GetArtistReleases retrieves per-release sales aggregates for an artist.
func (a *ImportsAPIService) GetArtistReleases(ctx context.Context, artistName string) ([]models.ImportRelease, error) {
	var releases []models.ImportRelease
	path := fmt.Sprintf("/artists/%s/releases", url.PathEscape(artistName))
	if err := a.get(ctx, path, &releases); err != nil {
		return nil, err
	}
	return releases, nil
}

// GetArtistTracks retrieves flat per-track sales aggregates for an artist.
func (a *ImportsAPIService) GetArtistTracks(ctx context.Context, artistName string) ([]models.ImportTrack, error) {
	var tracks []models.ImportTrack
	path := fmt.Sprintf("/artists/%s/tracks", url.PathEscape(artistName))
	if err := a.get(ctx, path, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// get performs a GET request against the imports API and decodes the JSON body.
func (a *ImportsAPIService) get(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}

	return nil
}
