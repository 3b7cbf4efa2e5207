// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reconcile decides and executes the create/update/retire set
// that brings the target catalog into agreement with the source-derived
// records. Source wins on every field except catalog-assigned
// identifiers and previously issued distribution links, which are always
// preserved.
package reconcile

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/dcat-sync/pkg/types"
)

// Writer is the catalog surface the engine mutates. catalog.Client
// implements it; tests substitute a fake.
type Writer interface {
	Create(ctx context.Context, ds types.Dataset) error
	Update(ctx context.Context, ds types.Dataset) error
	Retire(ctx context.Context, ds types.Dataset) error
}

// Summary is the sole output of a run: decision counts plus the
// per-record write errors that did not stop the sweep.
type Summary struct {
	Created   int
	Updated   int
	Unchanged int
	Retired   int

	// Errors collects per-record write failures. A non-empty slice means
	// some records are out of sync until the next run.
	Errors []error
}

// HasFailures reports whether any record failed to sync.
func (s Summary) HasFailures() bool {
	return len(s.Errors) > 0
}

// Engine reconciles one source pull against one catalog baseline.
type Engine struct {
	writer Writer
	log    zerolog.Logger
	prefix string
	dryRun bool
}

// NewEngine builds an engine. prefix scopes the retirement sweep: only
// records whose identifier carries it are ever retired. With dryRun set
// the engine counts and logs decisions but issues no writes.
func NewEngine(w Writer, log zerolog.Logger, prefix string, dryRun bool) *Engine {
	return &Engine{writer: w, log: log, prefix: prefix, dryRun: dryRun}
}

// Run processes every source record against the target baseline, then
// sweeps the baseline for records to retire. One record's write failure
// is recorded and the sweep continues; independent records must not
// block each other.
func (e *Engine) Run(ctx context.Context, source []types.Dataset, target map[string]types.Dataset) Summary {
	var sum Summary

	// Snapshot the provisional identifiers before matching adopts the
	// catalog's values; the retirement sweep compares against what the
	// source pull actually produced.
	provisional := make(map[string]struct{}, len(source))
	for _, ds := range source {
		provisional[ds.Identifier] = struct{}{}
	}

	keys := sortedKeys(target)

	for _, ds := range source {
		matched, ok := match(ds, target, keys)
		if !ok {
			sum.Created++
			e.log.Info().Str("identifier", ds.Identifier).Str("title", ds.Title).Msg("no match, creating dataset")
			e.write(&sum, func() error { return e.writer.Create(ctx, ds) })
			continue
		}

		// Identifiers are never invented for existing records.
		ds.ID = matched.ID
		ds.Identifier = matched.Identifier

		merged, stale := MergeDistributions(ds.Distributions, matched.Distributions)
		ds.Distributions = merged

		if !stale {
			sum.Unchanged++
			e.log.Debug().Str("identifier", ds.Identifier).Msg("match found, no sync needed")
			continue
		}

		sum.Updated++
		e.log.Info().Str("identifier", ds.Identifier).Msg("updating dataset with new distributions")
		e.write(&sum, func() error { return e.writer.Update(ctx, ds) })
	}

	// Retirement sweep. Records without the reserved prefix belong to
	// other producers and are outside this engine's authority.
	for _, key := range keys {
		ds := target[key]
		if !strings.HasPrefix(ds.Identifier, e.prefix) || ds.Status != types.StatusAvailable {
			continue
		}
		if _, ok := provisional[ds.Identifier]; ok {
			continue
		}

		sum.Retired++
		e.log.Info().Str("identifier", ds.Identifier).Msg("gone from source, retiring dataset")
		e.write(&sum, func() error { return e.writer.Retire(ctx, ds) })
	}

	return sum
}

// write executes one catalog mutation unless this is a dry run, recording
// a failure without aborting the sweep.
func (e *Engine) write(sum *Summary, op func() error) {
	if e.dryRun {
		return
	}
	if err := op(); err != nil {
		sum.Errors = append(sum.Errors, err)
		e.log.Error().Err(err).Msg("catalog write failed, continuing")
	}
}

// match scans the target set for the source record's counterpart, by
// identifier, then id, then title; first match wins. Matching on title
// alone is a deliberately loose heuristic the catalog's operators rely
// on: it adopts pre-existing hand-entered records whose identifiers this
// job never issued.
func match(ds types.Dataset, target map[string]types.Dataset, keys []string) (types.Dataset, bool) {
	fields := []func(types.Dataset) string{
		func(d types.Dataset) string { return d.Identifier },
		func(d types.Dataset) string { return d.ID },
		func(d types.Dataset) string { return d.Title },
	}

	for _, field := range fields {
		want := field(ds)
		if want == "" {
			continue
		}
		for _, key := range keys {
			if field(target[key]) == want {
				return target[key], true
			}
		}
	}
	return types.Dataset{}, false
}

// MergeDistributions replaces the source list 1:1, except that a source
// distribution whose accessURL already exists in the target list is
// swapped for the target's copy wholesale, so catalog-assigned fields
// like the persistent link are never dropped. The second return reports
// whether the lists diverge (count mismatch or any unmatched source
// distribution) and an update is needed.
func MergeDistributions(src, tgt []types.Distribution) ([]types.Distribution, bool) {
	stale := len(src) != len(tgt)

	merged := make([]types.Distribution, len(src))
	for i, dist := range src {
		merged[i] = dist
		found := false
		for _, existing := range tgt {
			if existing.AccessURL == dist.AccessURL {
				merged[i] = existing
				found = true
				break
			}
		}
		if !found {
			stale = true
		}
	}
	return merged, stale
}

// sortedKeys fixes the scan order; map iteration would make the loose
// title match nondeterministic.
func sortedKeys(target map[string]types.Dataset) []string {
	keys := make([]string, 0, len(target))
	for key := range target {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
