package tasks

import (
	"context"
	"testing"

	"github.com/desertthunder/labelcopy/internal/catalog"
	"github.com/desertthunder/labelcopy/internal/models"
	mock "github.com/desertthunder/labelcopy/internal/testing"
)

func reconcileFixture() *ReconcileEngine {
	imports := &mock.MockImportsService{
		Releases: []models.ImportRelease{
			{
				UPC:      "111",
				Title:    "Singles",
				Gross:    50,
				Streams:  1500,
				Currency: "USD",
				Tracks: []models.ImportTrack{
					{Title: "Midnight", ISRC: "USAB12345678", Streams: 1000, Gross: 40},
					{Title: "Midnight (Radio Edit).wav", Streams: 500, Gross: 10},
				},
			},
		},
	}

	aggregator := catalog.NewAggregator(imports, nil, nil, nil, catalog.AggregatorOpts{NumWorkers: 1})
	return NewReconcileEngine(aggregator, nil)
}

func TestReconcileEngine_FullFlow(t *testing.T) {
	engine := reconcileFixture()
	progress := make(chan ProgressUpdate, 32)

	store, err := engine.BuildCatalog(context.Background(), progress, "Dream Koala")
	if err != nil {
		t.Fatalf("BuildCatalog() error = %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("store has %d releases, want 1", store.Len())
	}

	groups := engine.DetectDuplicates(progress, store)
	if len(groups) != 1 {
		t.Fatalf("DetectDuplicates() found %d groups, want 1", len(groups))
	}

	report := engine.ExecuteMerges(progress, store, groups, []int{groups[0].ID})
	close(progress)

	if report.Applied != 1 {
		t.Fatalf("ExecuteMerges() applied = %d, want 1", report.Applied)
	}

	release, _ := store.Get("111")
	if len(release.Tracks) != 1 {
		t.Fatalf("release has %d tracks after merge, want 1", len(release.Tracks))
	}
	if release.Tracks[0].Streams != 1500 {
		t.Errorf("canonical streams = %d, want 1500", release.Tracks[0].Streams)
	}

	phases := map[Phase]bool{}
	for update := range progress {
		phases[update.Phase] = true
	}
	for _, want := range []Phase{PhaseAggregating, PhaseScanning, PhaseMerging, PhaseCompleted} {
		if !phases[want] {
			t.Errorf("missing %q progress phase", want)
		}
	}
}

func TestReconcileEngine_BuildCatalog_NilAggregator(t *testing.T) {
	engine := NewReconcileEngine(nil, nil)
	if _, err := engine.BuildCatalog(context.Background(), nil, "Dream Koala"); err == nil {
		t.Error("BuildCatalog() error = nil, want error for nil aggregator")
	}
}

func TestReconcileEngine_ExecuteMerges_UnconfirmedUntouched(t *testing.T) {
	engine := reconcileFixture()

	store, err := engine.BuildCatalog(context.Background(), nil, "Dream Koala")
	if err != nil {
		t.Fatalf("BuildCatalog() error = %v", err)
	}

	groups := engine.DetectDuplicates(nil, store)
	report := engine.ExecuteMerges(nil, store, groups, nil)

	if report.Applied != 0 {
		t.Errorf("ExecuteMerges() applied = %d, want 0 with nothing confirmed", report.Applied)
	}

	release, _ := store.Get("111")
	if len(release.Tracks) != 2 {
		t.Errorf("release has %d tracks, want 2 untouched", len(release.Tracks))
	}
}
