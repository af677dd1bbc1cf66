package catalog

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/desertthunder/labelcopy/internal/models"
)

// Detector scans the aggregated catalog for candidate duplicate tracks.
//
// Detection is a two-stage rule: tracks are grouped by normalized title, then
// each name-group is partitioned by ISRC. Two tracks with distinct non-empty
// ISRCs are distinct recordings and are never clustered together, no matter
// how similar their names are.
type Detector struct {
	similarity *metrics.JaroWinkler
}

// NewDetector creates a duplicate detector.
func NewDetector() *Detector {
	return &Detector{similarity: metrics.NewJaroWinkler()}
}

// Decision is the tagged outcome of the identity rule for one name-group.
// Either the group members are distinct recordings, or one or more clusters
// of merge candidates were identified.
type Decision struct {
	Distinct bool
	Clusters [][]models.TrackRef
}

// Decide applies the identity rule to one group of same-named tracks.
//
// Members partition into no-ISRC tracks and per-ISRC buckets:
//   - No no-ISRC members and every ISRC unique: distinct recordings that
//     merely share a display name. Rejected.
//   - An ISRC shared by two or more members is the same recording listed
//     twice: each such bucket is a cluster.
//   - No-ISRC members are assumed to be alternate listings of a known
//     recording. With at most one distinct ISRC in the group they join that
//     recording's cluster (or form their own when the group has no ISRC at
//     all). With two or more distinct ISRCs present the alternate listing is
//     ambiguous, so no-ISRC members are left alone rather than guessed at.
func Decide(members []models.TrackRef) Decision {
	var noISRC []models.TrackRef
	byISRC := make(map[string][]models.TrackRef)
	var isrcOrder []string

	for _, member := range members {
		isrc := strings.TrimSpace(member.ISRC)
		if isrc == "" {
			noISRC = append(noISRC, member)
			continue
		}
		if _, seen := byISRC[isrc]; !seen {
			isrcOrder = append(isrcOrder, isrc)
		}
		byISRC[isrc] = append(byISRC[isrc], member)
	}

	if len(noISRC) == 0 {
		var clusters [][]models.TrackRef
		for _, isrc := range isrcOrder {
			if bucket := byISRC[isrc]; len(bucket) >= 2 {
				clusters = append(clusters, bucket)
			}
		}
		if len(clusters) == 0 {
			return Decision{Distinct: true}
		}
		return Decision{Clusters: clusters}
	}

	switch len(isrcOrder) {
	case 0:
		if len(noISRC) < 2 {
			return Decision{Distinct: true}
		}
		return Decision{Clusters: [][]models.TrackRef{noISRC}}
	case 1:
		cluster := append(append([]models.TrackRef{}, byISRC[isrcOrder[0]]...), noISRC...)
		return Decision{Clusters: [][]models.TrackRef{cluster}}
	default:
		// Ambiguous: the no-ISRC rows could belong to any of several known
		// recordings. Cluster only the buckets that are duplicates on their own.
		var clusters [][]models.TrackRef
		for _, isrc := range isrcOrder {
			if bucket := byISRC[isrc]; len(bucket) >= 2 {
				clusters = append(clusters, bucket)
			}
		}
		if len(clusters) == 0 {
			return Decision{Distinct: true}
		}
		return Decision{Clusters: clusters}
	}
}

// Scan groups all tracks across all releases by normalized title and applies
// the identity rule to every group of two or more. Group IDs are assigned in
// catalog order and members carry positional refs for later merge execution.
func (d *Detector) Scan(store *Store) []models.DuplicateGroup {
	type nameGroup struct {
		normalized string
		members    []models.TrackRef
	}

	groupIndex := make(map[string]int)
	var groups []*nameGroup

	for _, release := range store.Releases() {
		for i := range release.Tracks {
			track := &release.Tracks[i]
			normalized := NormalizeTitle(track.Title)
			if normalized == "" {
				continue
			}

			ref := models.TrackRef{
				ReleaseKey: release.Key,
				Index:      i,
				Title:      track.Title,
				ISRC:       track.ISRC,
			}

			idx, ok := groupIndex[normalized]
			if !ok {
				idx = len(groups)
				groupIndex[normalized] = idx
				groups = append(groups, &nameGroup{normalized: normalized})
			}
			groups[idx].members = append(groups[idx].members, ref)
		}
	}

	var accepted []models.DuplicateGroup
	for _, group := range groups {
		if len(group.members) < 2 {
			continue
		}

		decision := Decide(group.members)
		if decision.Distinct {
			continue
		}

		for _, cluster := range decision.Clusters {
			if len(cluster) < 2 {
				continue
			}
			accepted = append(accepted, models.DuplicateGroup{
				ID:              len(accepted) + 1,
				NormalizedTitle: group.normalized,
				Confidence:      d.confidence(cluster),
				Members:         cluster,
			})
		}
	}

	return accepted
}

// confidence scores a cluster by the mean pairwise Jaro-Winkler similarity of
// the raw member titles. Advisory only; the accept decision is ISRC-based.
func (d *Detector) confidence(cluster []models.TrackRef) float64 {
	if len(cluster) < 2 {
		return 1.0
	}

	var total float64
	pairs := 0
	for i := 0; i < len(cluster); i++ {
		for j := i + 1; j < len(cluster); j++ {
			a := strings.ToLower(cluster[i].Title)
			b := strings.ToLower(cluster[j].Title)
			total += strutil.Similarity(a, b, d.similarity)
			pairs++
		}
	}

	return total / float64(pairs)
}
