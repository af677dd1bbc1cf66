// package ui renders catalog views, duplicate groups, and refresh summaries
// as styled terminal output
package ui

import (
	"fmt"
	"strings"

	"github.com/desertthunder/labelcopy/internal/catalog"
	"github.com/desertthunder/labelcopy/internal/models"
	"github.com/desertthunder/labelcopy/internal/shared"
	"github.com/desertthunder/labelcopy/internal/tasks"
)

// RenderCatalog renders the reconciled release list. External-only releases
// (catalog entries no sales import has reported yet) are visually marked so
// they stand out from reconciled entries.
func RenderCatalog(view *models.CatalogView) string {
	var b strings.Builder

	b.WriteString(styles.title.Render(fmt.Sprintf("Catalog: %s", view.Artist)))
	b.WriteString("\n")

	for _, release := range view.Releases {
		line := releaseLine(release)
		switch {
		case !release.Provenance.FromImports():
			b.WriteString(styles.warn.Render("◌ " + line + "  [unreported]"))
		case release.Provenance.FromExternal():
			b.WriteString(styles.ok.Render("● ") + line)
		default:
			b.WriteString("○ " + line)
		}
		b.WriteString("\n")

		for i := range release.Tracks {
			b.WriteString(trackLine(&release.Tracks[i]))
			b.WriteString("\n")
		}
	}

	totals := fmt.Sprintf("%d releases, %d tracks, %d streams",
		len(view.Releases), view.TotalTracks(), view.TotalStreams())
	for currency, gross := range view.GrossByCurrency() {
		totals += fmt.Sprintf(", %.2f %s", gross, currency)
	}
	b.WriteString(styles.help.Render(totals))
	b.WriteString("\n")

	return b.String()
}

func releaseLine(release *models.Release) string {
	date := release.ReleaseDate
	if date == "" {
		date = "undated"
	}
	return fmt.Sprintf("%s (%s) — %d tracks", release.Title, date, release.TrackCount)
}

func trackLine(track *models.Track) string {
	parts := []string{"    " + track.Title}
	if track.ISRC != "" {
		parts = append(parts, track.ISRC)
	}
	if track.DurationMS > 0 {
		parts = append(parts, shared.FormatDurationMS(track.DurationMS))
	}
	if track.Streams > 0 {
		parts = append(parts, fmt.Sprintf("%d streams", track.Streams))
	}
	line := strings.Join(parts, "  ")
	if len(track.MergedFrom) > 1 {
		line += styles.help.Render(fmt.Sprintf("  (merged from %d entries)", len(track.MergedFrom)))
	}
	return line
}

// RenderDuplicateGroups renders detector output for operator confirmation.
func RenderDuplicateGroups(groups []models.DuplicateGroup) string {
	if len(groups) == 0 {
		return styles.ok.Render("No duplicate candidates found") + "\n"
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("%d duplicate group(s)", len(groups))))
	b.WriteString("\n")

	for _, group := range groups {
		header := fmt.Sprintf("Group %d: %q (confidence %.0f%%)", group.ID, group.NormalizedTitle, group.Confidence*100)
		b.WriteString(styles.warn.Render(header))
		b.WriteString("\n")
		for _, member := range group.Members {
			isrc := member.ISRC
			if isrc == "" {
				isrc = "no ISRC"
			}
			b.WriteString(fmt.Sprintf("    %s  [%s]  (release %s, #%d)\n", member.Title, isrc, member.ReleaseKey, member.Index+1))
		}
	}

	return b.String()
}

// RenderMergeReport renders the outcome of a merge pass.
func RenderMergeReport(report *catalog.MergeReport) string {
	var b strings.Builder
	b.WriteString(styles.ok.Render(fmt.Sprintf("✓ Merged %d group(s)", report.Applied)))
	b.WriteString("\n")
	for _, skipped := range report.Skipped {
		b.WriteString(styles.err.Render(fmt.Sprintf("✗ Group %d skipped: %v", skipped.GroupID, skipped.Err)))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderBatchRefresh renders a batch refresh summary, listing failed keys so
// the operator can retry them individually.
func RenderBatchRefresh(result *tasks.BatchRefreshResult) string {
	var b strings.Builder

	summary := fmt.Sprintf("Refreshed %d of %d", result.SuccessCount, result.Total)
	if result.SuccessCount == result.Total {
		b.WriteString(styles.ok.Render("✓ " + summary))
	} else {
		b.WriteString(styles.warn.Render(summary))
	}
	b.WriteString("\n")

	for _, failed := range result.Failed {
		b.WriteString(styles.err.Render(fmt.Sprintf("✗ %s: %v", failed.Key, failed.Err)))
		b.WriteString("\n")
	}

	return b.String()
}
