// Package catalog implements the reconciliation and deduplication core.
//
// The package builds a unified release/track view by merging sales-import
// aggregates with cached and freshly fetched external metadata, then detects
// and merges duplicate track entries created by inconsistent naming across
// import batches.
//
// Key pieces:
//   - [NormalizeTitle] : Track title normalization (case, diacritics, file extensions, bracketed tags)
//   - [Resolver] : Three-stage metadata resolution (cache, refresh-and-reread, direct search)
//   - [Store] : Index-addressable release arena; all mutation goes through [Store.Apply]
//   - [Aggregator] : Builds the unified view with concurrent per-release enrichment
//   - [Detector] : Groups candidate duplicates under the ISRC identity rule
//   - [Executor] : Collapses confirmed groups into canonical tracks
//
// Import data owns revenue and stream figures; external metadata owns
// descriptive fields. Neither side ever overwrites the other.
package catalog
