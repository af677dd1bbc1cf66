package models

import "testing"

func TestProvenance(t *testing.T) {
	t.Run("transitions", func(t *testing.T) {
		tc := []struct {
			name string
			got  Provenance
			want Provenance
		}{
			{"imports from unknown", ProvenanceUnknown.WithImports(), ProvenanceImports},
			{"external from unknown", ProvenanceUnknown.WithExternal(), ProvenanceExternal},
			{"external over imports", ProvenanceImports.WithExternal(), ProvenanceBoth},
			{"imports over external", ProvenanceExternal.WithImports(), ProvenanceBoth},
			{"imports idempotent", ProvenanceImports.WithImports(), ProvenanceImports},
			{"both stays both", ProvenanceBoth.WithExternal(), ProvenanceBoth},
		}
		for _, tt := range tc {
			if tt.got != tt.want {
				t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
			}
		}
	})

	t.Run("predicates", func(t *testing.T) {
		if !ProvenanceBoth.FromImports() || !ProvenanceBoth.FromExternal() {
			t.Error("both origin should satisfy both predicates")
		}
		if ProvenanceImports.FromExternal() {
			t.Error("imports-only origin should not claim external")
		}
		if ProvenanceExternal.FromImports() {
			t.Error("external-only origin should not claim imports")
		}
	})

	t.Run("strings", func(t *testing.T) {
		tc := map[Provenance]string{
			ProvenanceUnknown:  "unknown",
			ProvenanceImports:  "imports",
			ProvenanceExternal: "catalog",
			ProvenanceBoth:     "imports+catalog",
		}
		for p, want := range tc {
			if got := p.String(); got != want {
				t.Errorf("String() = %q, want %q", got, want)
			}
		}
	})
}

func TestRelease_CheckInvariants(t *testing.T) {
	valid := func() *Release {
		r := &Release{
			Title:      "Singles",
			Currency:   "USD",
			Gross:      100,
			Streams:    5000,
			Provenance: ProvenanceImports,
			Tracks: []Track{
				{Title: "One", Gross: 60, Streams: 3000, Currency: "USD"},
				{Title: "Two", Gross: 40, Streams: 2000, Currency: "USD"},
			},
		}
		r.SyncTrackCount()
		return r
	}

	t.Run("valid release", func(t *testing.T) {
		if err := valid().CheckInvariants(); err != nil {
			t.Errorf("CheckInvariants() = %v, want nil", err)
		}
	})

	t.Run("missing provenance", func(t *testing.T) {
		r := valid()
		r.Provenance = ProvenanceUnknown
		if err := r.CheckInvariants(); err == nil {
			t.Error("CheckInvariants() = nil, want provenance error")
		}
	})

	t.Run("track count drift", func(t *testing.T) {
		r := valid()
		r.TrackCount = 5
		if err := r.CheckInvariants(); err == nil {
			t.Error("CheckInvariants() = nil, want track count error")
		}
	})

	t.Run("track gross exceeds release gross", func(t *testing.T) {
		r := valid()
		r.Tracks[0].Gross = 90
		if err := r.CheckInvariants(); err == nil {
			t.Error("CheckInvariants() = nil, want gross error")
		}
	})

	t.Run("rounding noise tolerated", func(t *testing.T) {
		r := valid()
		r.Tracks[0].Gross = 60.003
		if err := r.CheckInvariants(); err != nil {
			t.Errorf("CheckInvariants() = %v, want rounding tolerated", err)
		}
	})

	t.Run("other currency excluded from gross check", func(t *testing.T) {
		r := valid()
		r.Tracks = append(r.Tracks, Track{Title: "Three", Gross: 500, Currency: "EUR"})
		r.SyncTrackCount()
		if err := r.CheckInvariants(); err != nil {
			t.Errorf("CheckInvariants() = %v, want other-currency gross ignored", err)
		}
	})

	t.Run("track streams exceed release streams", func(t *testing.T) {
		r := valid()
		r.Tracks[0].Streams = 10000
		if err := r.CheckInvariants(); err == nil {
			t.Error("CheckInvariants() = nil, want stream error")
		}
	})
}

func TestTrack_HasISRC(t *testing.T) {
	if (&Track{ISRC: "  "}).HasISRC() {
		t.Error("whitespace ISRC should count as missing")
	}
	if !(&Track{ISRC: "USAB12345678"}).HasISRC() {
		t.Error("populated ISRC should count as present")
	}
}

func TestCatalogView_Totals(t *testing.T) {
	view := &CatalogView{
		Artist: "Dream Koala",
		Releases: []*Release{
			{Currency: "USD", Gross: 100, Streams: 5000, Tracks: []Track{{}, {}}},
			{Currency: "USD", Gross: 25, Streams: 1000, Tracks: []Track{{}}},
			{Currency: "EUR", Gross: 40, Streams: 2000},
			{Streams: 100},
		},
	}

	if got := view.TotalTracks(); got != 3 {
		t.Errorf("TotalTracks() = %d, want 3", got)
	}
	if got := view.TotalStreams(); got != 8100 {
		t.Errorf("TotalStreams() = %d, want 8100", got)
	}

	totals := view.GrossByCurrency()
	if totals["USD"] != 125 {
		t.Errorf("USD gross = %f, want 125", totals["USD"])
	}
	if totals["EUR"] != 40 {
		t.Errorf("EUR gross = %f, want 40", totals["EUR"])
	}
	if _, ok := totals[""]; ok {
		t.Error("currencyless releases should not appear in totals")
	}
}
