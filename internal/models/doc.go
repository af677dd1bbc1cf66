// Package models defines domain entities and persistence interfaces for the labelcopy reconciliation service.
//
// The package contains two categories of types:
//
// 1. In-memory catalog entities rebuilt on every aggregation pass:
//   - [Release] : One commercial release with provenance and its owned tracks
//   - [Track] : One recording with sales metrics and merge audit trail
//   - [DuplicateGroup] : A cluster of candidate duplicate tracks with positional refs
//   - [CatalogView] : The ordered, reconciled release list for one artist
//
// 2. Persistent entities backing the durable metadata cache:
//   - [ReleaseMetadata] : Cached external release metadata keyed by UPC
//   - [TrackMetadata] : Cached canonical track listing rows (ISRC, duration, artists)
//
// Import-derived aggregates ([ImportRelease], [ImportTrack]) are plain DTOs produced
// by the sales-import API; they own revenue and stream figures, while cached metadata
// owns descriptive fields. The aggregator never lets one side overwrite the other.
package models
