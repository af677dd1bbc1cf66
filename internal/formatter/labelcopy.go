// package formatter flattens the reconciled catalog into the Label Copy export
package formatter

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/labelcopy/internal/models"
	"github.com/desertthunder/labelcopy/internal/shared"
)

// utf8BOM marks the export as UTF-8 for spreadsheet imports.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// labelCopyHeaders is the fixed Label Copy column order.
var labelCopyHeaders = []string{
	"Release Title",
	"UPC",
	"Release Date",
	"Track Number",
	"Track Title",
	"ISRC",
	"Duration",
	"Artists",
	"Label",
	"Genres",
	"Format",
}

// LabelCopyCSV flattens a catalog view into the Label Copy table: one row per
// track, one row per trackless release, in the view's date-descending order.
// Every field is quoted with embedded quotes doubled, and the output carries
// a UTF-8 byte-order marker so it is suitable for direct download.
func LabelCopyCSV(view *models.CatalogView) []byte {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	writeRow(&buf, labelCopyHeaders)

	for _, release := range view.Releases {
		if len(release.Tracks) == 0 {
			writeRow(&buf, releaseRow(release, nil))
			continue
		}
		for i := range release.Tracks {
			writeRow(&buf, releaseRow(release, &release.Tracks[i]))
		}
	}

	return buf.Bytes()
}

// releaseRow builds one export row. A nil track produces the release-only row
// used for releases with no tracks.
func releaseRow(release *models.Release, track *models.Track) []string {
	row := []string{
		release.Title,
		release.UPC,
		release.ReleaseDate,
		"",
		"",
		"",
		"",
		"",
		release.Label,
		strings.Join(release.Genres, "; "),
		release.Format,
	}

	if track == nil {
		return row
	}

	if track.TrackNumber > 0 {
		row[3] = strconv.Itoa(track.TrackNumber)
	}
	row[4] = track.Title
	row[5] = track.ISRC
	if track.DurationMS > 0 {
		row[6] = shared.FormatDurationMS(track.DurationMS)
	}
	row[7] = strings.Join(track.Artists, "; ")

	return row
}

// writeRow appends one fully quoted CSV record.
func writeRow(buf *bytes.Buffer, fields []string) {
	for i, field := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteString("\r\n")
}

// unsafeFilename matches characters stripped from artist names in filenames.
var unsafeFilename = regexp.MustCompile(`[^a-z0-9]+`)

// LabelCopyFilename returns the download filename for an artist's export,
// e.g. label_copy_dream_koala_2026-08-25.csv.
func LabelCopyFilename(artist string, date time.Time) string {
	slug := unsafeFilename.ReplaceAllString(strings.ToLower(artist), "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		slug = "catalog"
	}
	return fmt.Sprintf("label_copy_%s_%s.csv", slug, date.Format("2006-01-02"))
}

// WriteLabelCopy writes the export to a file, deriving the filename from the
// view when path is empty. Returns the path written.
func WriteLabelCopy(view *models.CatalogView, path string) (string, error) {
	if path == "" {
		path = LabelCopyFilename(view.Artist, time.Now())
	}

	data := LabelCopyCSV(view)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write label copy: %w", err)
	}

	return path, nil
}
