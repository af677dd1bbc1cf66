package catalog

import "testing"

func TestNormalizeTitle(t *testing.T) {
	tc := []struct {
		name  string
		title string
		want  string
	}{
		{
			name:  "basic lowercase",
			title: "Midnight",
			want:  "midnight",
		},
		{
			name:  "trailing audio extension",
			title: "Midnight.wav",
			want:  "midnight",
		},
		{
			name:  "bracketed qualifier",
			title: "Midnight (Radio Edit)",
			want:  "midnight",
		},
		{
			name:  "extension and qualifier together",
			title: "Midnight (Radio Edit).wav",
			want:  "midnight",
		},
		{
			name:  "square bracket qualifier",
			title: "Midnight [Live at Berghain]",
			want:  "midnight",
		},
		{
			name:  "diacritics stripped",
			title: "Café Del Mar",
			want:  "cafedelmar",
		},
		{
			name:  "punctuation and whitespace removed",
			title: "  Don't Stop -- Believin'  ",
			want:  "dontstopbelievin",
		},
		{
			name:  "extension only stripped at end",
			title: "wav of mutilation",
			want:  "wavofmutilation",
		},
		{
			name:  "empty after normalization",
			title: "(...)",
			want:  "",
		},
		{
			name:  "empty input",
			title: "",
			want:  "",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTitle(tt.title)
			if got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.title, got, tt.want)
			}

			if again := NormalizeTitle(got); again != got {
				t.Errorf("NormalizeTitle is not idempotent: %q -> %q -> %q", tt.title, got, again)
			}
		})
	}
}

func TestReleaseKey(t *testing.T) {
	tc := []struct {
		name  string
		upc   string
		title string
		want  string
	}{
		{
			name:  "upc wins when present",
			upc:   "123456789012",
			title: "Some Album",
			want:  "123456789012",
		},
		{
			name:  "upc trimmed",
			upc:   "  123456789012  ",
			title: "Some Album",
			want:  "123456789012",
		},
		{
			name:  "title fallback is prefixed",
			upc:   "",
			title: "Some Album (Deluxe)",
			want:  "title:somealbum",
		},
		{
			name:  "whitespace upc falls back to title",
			upc:   "   ",
			title: "Midnight",
			want:  "title:midnight",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReleaseKey(tt.upc, tt.title); got != tt.want {
				t.Errorf("ReleaseKey(%q, %q) = %q, want %q", tt.upc, tt.title, got, tt.want)
			}
		})
	}
}
