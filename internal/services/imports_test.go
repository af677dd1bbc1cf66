package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/labelcopy/internal/shared"
)

func TestImportsAPIService_GetArtistReleases(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/artists/Dream%20Koala/releases" && r.URL.Path != "/artists/Dream Koala/releases" {
			t.Errorf("path = %q, want artist releases endpoint", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer key123" {
			t.Errorf("authorization = %q, want bearer key", auth)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{
				"upc": "111",
				"title": "Earth. Home.",
				"gross": 120.5,
				"streams": 48000,
				"currency": "USD",
				"format": "digital",
				"tracks": [
					{"title": "Odyssey", "isrc": "USAB11111111", "streams": 30000, "gross": 80}
				]
			}
		]`))
	}))
	defer server.Close()

	service := NewImportsAPIService(server.URL, "key123", nil)

	releases, err := service.GetArtistReleases(context.Background(), "Dream Koala")
	if err != nil {
		t.Fatalf("GetArtistReleases() error = %v", err)
	}

	if len(releases) != 1 {
		t.Fatalf("got %d releases, want 1", len(releases))
	}
	release := releases[0]
	if release.UPC != "111" || release.Title != "Earth. Home." {
		t.Errorf("release = %+v, want decoded identity", release)
	}
	if release.Gross != 120.5 || release.Streams != 48000 {
		t.Errorf("release metrics = %f/%d, want decoded aggregates", release.Gross, release.Streams)
	}
	if len(release.Tracks) != 1 || release.Tracks[0].ISRC != "USAB11111111" {
		t.Errorf("release tracks = %+v, want decoded listing", release.Tracks)
	}
}

func TestImportsAPIService_GetArtistTracks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"title": "Odyssey", "isrc": "USAB11111111", "streams": 30000}]`))
	}))
	defer server.Close()

	service := NewImportsAPIService(server.URL, "", nil)

	tracks, err := service.GetArtistTracks(context.Background(), "Dream Koala")
	if err != nil {
		t.Fatalf("GetArtistTracks() error = %v", err)
	}
	if len(tracks) != 1 || tracks[0].Title != "Odyssey" {
		t.Errorf("tracks = %+v, want decoded list", tracks)
	}
}

func TestImportsAPIService_Errors(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		service := NewImportsAPIService(server.URL, "", nil)
		if _, err := service.GetArtistReleases(context.Background(), "x"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("GetArtistReleases() error = %v, want ErrAPIRequest", err)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{not json"))
		}))
		defer server.Close()

		service := NewImportsAPIService(server.URL, "", nil)
		if _, err := service.GetArtistReleases(context.Background(), "x"); !errors.Is(err, shared.ErrMalformedResponse) {
			t.Errorf("GetArtistReleases() error = %v, want ErrMalformedResponse", err)
		}
	})

	t.Run("unreachable server", func(t *testing.T) {
		service := NewImportsAPIService("http://127.0.0.1:1", "", nil)
		if _, err := service.GetArtistReleases(context.Background(), "x"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("GetArtistReleases() error = %v, want ErrAPIRequest", err)
		}
	})
}
