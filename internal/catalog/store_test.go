package catalog

import (
	"errors"
	"testing"

	"github.com/desertthunder/labelcopy/internal/models"
	"github.com/desertthunder/labelcopy/internal/shared"
)

func testRelease(key, title, date string) *models.Release {
	return &models.Release{
		Key:         key,
		UPC:         key,
		Title:       title,
		ReleaseDate: date,
		Provenance:  models.ProvenanceImports,
	}
}

func TestStore_Insert(t *testing.T) {
	store := NewStore()

	if !store.Insert(testRelease("111", "First", "2024-01-01")) {
		t.Error("Insert() = false for new key, want true")
	}
	if store.Insert(testRelease("111", "Duplicate", "2024-02-02")) {
		t.Error("Insert() = true for existing key, want false")
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}

	release, ok := store.Get("111")
	if !ok {
		t.Fatal("Get() did not find inserted release")
	}
	if release.Title != "First" {
		t.Errorf("existing entry was overwritten: title = %q, want %q", release.Title, "First")
	}
}

func TestStore_Apply(t *testing.T) {
	store := NewStore()
	store.Insert(testRelease("111", "Album", ""))

	t.Run("mutation runs under current state", func(t *testing.T) {
		before := store.Version()

		err := store.Apply("111", func(release *models.Release) error {
			release.ReleaseDate = "2023-05-01"
			return nil
		})
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}

		release, _ := store.Get("111")
		if release.ReleaseDate != "2023-05-01" {
			t.Errorf("release date = %q, want %q", release.ReleaseDate, "2023-05-01")
		}
		if store.Version() <= before {
			t.Error("Apply() should bump the version counter")
		}
	})

	t.Run("missing key is stale", func(t *testing.T) {
		err := store.Apply("999", func(release *models.Release) error { return nil })
		if !errors.Is(err, shared.ErrStaleGroup) {
			t.Errorf("Apply() error = %v, want ErrStaleGroup", err)
		}
	})

	t.Run("callback error does not bump version", func(t *testing.T) {
		before := store.Version()
		wantErr := errors.New("boom")

		err := store.Apply("111", func(release *models.Release) error { return wantErr })
		if !errors.Is(err, wantErr) {
			t.Errorf("Apply() error = %v, want %v", err, wantErr)
		}
		if store.Version() != before {
			t.Error("failed Apply() should not bump the version counter")
		}
	})
}

func TestStore_Releases_Ordering(t *testing.T) {
	store := NewStore()
	store.Insert(testRelease("111", "Old", "2019-03-01"))
	store.Insert(testRelease("222", "Undated A", ""))
	store.Insert(testRelease("333", "New", "2024-06-15"))
	store.Insert(testRelease("444", "Undated B", ""))

	releases := store.Releases()

	gotTitles := make([]string, len(releases))
	for i, release := range releases {
		gotTitles[i] = release.Title
	}

	// Date descending, undated last in insertion order.
	wantTitles := []string{"New", "Old", "Undated A", "Undated B"}
	for i, want := range wantTitles {
		if gotTitles[i] != want {
			t.Fatalf("Releases() order = %v, want %v", gotTitles, wantTitles)
		}
	}
}

func TestStore_View(t *testing.T) {
	store := NewStore()
	release := testRelease("111", "Album", "2024-01-01")
	release.Streams = 500
	release.Tracks = []models.Track{{Title: "One"}, {Title: "Two"}}
	release.SyncTrackCount()
	store.Insert(release)

	view := store.View("Dream Koala")

	if view.Artist != "Dream Koala" {
		t.Errorf("view artist = %q, want %q", view.Artist, "Dream Koala")
	}
	if view.TotalTracks() != 2 {
		t.Errorf("TotalTracks() = %d, want 2", view.TotalTracks())
	}
	if view.TotalStreams() != 500 {
		t.Errorf("TotalStreams() = %d, want 500", view.TotalStreams())
	}
}
