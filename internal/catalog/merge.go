package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/labelcopy/internal/models"
	"github.com/desertthunder/labelcopy/internal/shared"
)

// Executor collapses confirmed duplicate groups into canonical tracks.
//
// Merges are destructive and only run for groups the caller explicitly
// confirmed. Every merge is applied against the current store state: members
// are re-resolved at commit time, so a group computed before concurrent
// enrichment landed still targets the right tracks or fails as stale.
type Executor struct {
	logger *log.Logger
}

// NewExecutor creates a merge executor.
func NewExecutor(logger *log.Logger) *Executor {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Executor{logger: logger}
}

// GroupError records why one confirmed group could not be merged.
type GroupError struct {
	GroupID int
	Err     error
}

// MergeReport summarizes a merge pass. Failed groups never abort their
// siblings.
type MergeReport struct {
	Applied int
	Skipped []GroupError
}

// MergeGroups merges every group whose ID appears in confirmed, in detection
// order. Unconfirmed groups are untouched.
func (e *Executor) MergeGroups(store *Store, groups []models.DuplicateGroup, confirmed []int) *MergeReport {
	confirmedSet := make(map[int]bool, len(confirmed))
	for _, id := range confirmed {
		confirmedSet[id] = true
	}

	report := &MergeReport{}
	for _, group := range groups {
		if !confirmedSet[group.ID] {
			continue
		}
		if err := e.Merge(store, group); err != nil {
			e.logger.Warn("merge skipped", "group", group.ID, "title", group.NormalizedTitle, "error", err)
			report.Skipped = append(report.Skipped, GroupError{GroupID: group.ID, Err: err})
			continue
		}
		report.Applied++
	}

	return report
}

// resolvedMember is a group member located in the current store state.
type resolvedMember struct {
	releaseKey string
	index      int
	track      models.Track
}

// Merge collapses one confirmed group into its canonical track.
//
// The canonical (primary) member keeps its release and position; every other
// member is removed from its owning release. Stream and gross totals are the
// sums over the whole group, and a known ISRC is never erased.
func (e *Executor) Merge(store *Store, group models.DuplicateGroup) error {
	if len(group.Members) < 2 {
		return fmt.Errorf("%w: group %d has fewer than two members", shared.ErrInvalidInput, group.ID)
	}

	members, err := e.resolve(store, group)
	if err != nil {
		return err
	}

	if err := checkCurrencies(members); err != nil {
		return err
	}

	primary := pickPrimary(members)
	canonical := buildCanonical(members, primary)

	// Plan removals per release; the primary's position receives the canonical.
	removals := make(map[string][]int)
	for i, member := range members {
		if i == primary {
			continue
		}
		removals[member.releaseKey] = append(removals[member.releaseKey], member.index)
	}

	primaryKey := members[primary].releaseKey
	primaryIndex := members[primary].index

	err = store.Apply(primaryKey, func(release *models.Release) error {
		release.Tracks[primaryIndex] = canonical
		removeTracks(release, removals[primaryKey])
		return nil
	})
	if err != nil {
		return err
	}
	delete(removals, primaryKey)

	for key, indices := range removals {
		err := store.Apply(key, func(release *models.Release) error {
			removeTracks(release, indices)
			return nil
		})
		if err != nil {
			return err
		}
	}

	e.logger.Info("merged duplicate group",
		"group", group.ID,
		"canonical", canonical.Title,
		"members", len(members),
		"streams", canonical.Streams,
	)
	return nil
}

// resolve locates every group member in the current store state. A member
// whose recorded position no longer matches is re-located by title and ISRC;
// if that fails the group is stale.
func (e *Executor) resolve(store *Store, group models.DuplicateGroup) ([]resolvedMember, error) {
	members := make([]resolvedMember, 0, len(group.Members))
	for _, ref := range group.Members {
		release, ok := store.Get(ref.ReleaseKey)
		if !ok {
			return nil, fmt.Errorf("%w: release %s", shared.ErrStaleGroup, ref.ReleaseKey)
		}

		index := locateTrack(release, ref)
		if index < 0 {
			return nil, fmt.Errorf("%w: track %q in %s", shared.ErrStaleGroup, ref.Title, ref.ReleaseKey)
		}

		members = append(members, resolvedMember{
			releaseKey: ref.ReleaseKey,
			index:      index,
			track:      release.Tracks[index],
		})
	}
	return members, nil
}

// locateTrack finds a referenced track in the release's current track list.
// The recorded index is trusted only while title and ISRC still match.
func locateTrack(release *models.Release, ref models.TrackRef) int {
	if ref.Index >= 0 && ref.Index < len(release.Tracks) {
		track := &release.Tracks[ref.Index]
		if track.Title == ref.Title && track.ISRC == ref.ISRC {
			return ref.Index
		}
	}

	found := -1
	for i := range release.Tracks {
		if release.Tracks[i].Title == ref.Title && release.Tracks[i].ISRC == ref.ISRC {
			if found >= 0 {
				return -1 // ambiguous
			}
			found = i
		}
	}
	return found
}

// checkCurrencies rejects a group whose members carry conflicting currencies.
func checkCurrencies(members []resolvedMember) error {
	currency := ""
	for _, member := range members {
		c := member.track.Currency
		if c == "" {
			continue
		}
		if currency == "" {
			currency = c
			continue
		}
		if c != currency {
			return fmt.Errorf("%w: %s vs %s", shared.ErrCurrencyMismatch, currency, c)
		}
	}
	return nil
}

// pickPrimary ranks members to choose the canonical track: a known ISRC beats
// none, a known duration beats none, then the shortest title wins. Earlier
// members win remaining ties.
func pickPrimary(members []resolvedMember) int {
	best := 0
	for i := 1; i < len(members); i++ {
		if betterPrimary(&members[i].track, &members[best].track) {
			best = i
		}
	}
	return best
}

func betterPrimary(a, b *models.Track) bool {
	if a.HasISRC() != b.HasISRC() {
		return a.HasISRC()
	}
	if (a.DurationMS > 0) != (b.DurationMS > 0) {
		return a.DurationMS > 0
	}
	return len(strings.TrimSpace(a.Title)) < len(strings.TrimSpace(b.Title))
}

// buildCanonical constructs the surviving track: metrics summed over the
// group, identity fields from the primary with gaps filled from the first
// member that knows them, and the full merged_from audit trail, primary first.
func buildCanonical(members []resolvedMember, primary int) models.Track {
	canonical := members[primary].track
	canonical.Streams = 0
	canonical.Gross = 0

	for _, member := range members {
		canonical.Streams += member.track.Streams
		canonical.Gross += member.track.Gross

		t := member.track
		if canonical.ISRC == "" && t.ISRC != "" {
			canonical.ISRC = t.ISRC
		}
		if canonical.DurationMS == 0 && t.DurationMS > 0 {
			canonical.DurationMS = t.DurationMS
		}
		if canonical.TrackNumber == 0 && t.TrackNumber > 0 {
			canonical.TrackNumber = t.TrackNumber
		}
		if len(canonical.Artists) == 0 && len(t.Artists) > 0 {
			canonical.Artists = t.Artists
		}
		if canonical.Currency == "" && t.Currency != "" {
			canonical.Currency = t.Currency
		}
	}

	canonical.MergedFrom = mergedTitles(members, primary)
	return canonical
}

// mergedTitles lists every original title absorbed into the canonical track,
// primary first, carrying over titles from earlier merges, without repeats.
func mergedTitles(members []resolvedMember, primary int) []string {
	seen := make(map[string]bool)
	var titles []string

	add := func(title string) {
		if title == "" || seen[title] {
			return
		}
		seen[title] = true
		titles = append(titles, title)
	}

	collect := func(m resolvedMember) {
		add(m.track.Title)
		for _, prior := range m.track.MergedFrom {
			add(prior)
		}
	}

	collect(members[primary])
	for i, member := range members {
		if i != primary {
			collect(member)
		}
	}

	return titles
}

// removeTracks deletes the given indices from a release's track list and
// keeps track_count consistent.
func removeTracks(release *models.Release, indices []int) {
	if len(indices) == 0 {
		release.SyncTrackCount()
		return
	}

	sorted := append([]int{}, indices...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	for _, index := range sorted {
		if index < 0 || index >= len(release.Tracks) {
			continue
		}
		release.Tracks = append(release.Tracks[:index], release.Tracks[index+1:]...)
	}

	release.SyncTrackCount()
}
