package fusion

import (
	"sort"

	"regulonet/domain/coexpr"
	"regulonet/domain/core"
	"regulonet/domain/genome"
	"regulonet/domain/regulon"
)

// KeySet builds the pruned co-expression interaction key set. Co-expression
// is computed across a multi-tissue reference, so one key set is shared by
// every tissue's fusion pass.
func KeySet(edges []coexpr.Edge) map[string]struct{} {
	keys := make(map[string]struct{}, len(edges))
	for _, e := range edges {
		keys[regulon.NewInteraction(e.TF, e.Target).Key()] = struct{}{}
	}
	return keys
}

// ConfirmedSet is the per-tissue table of interactions supported by both
// evidence sources, with the summary counts the run report needs.
type ConfirmedSet struct {
	Tissue          core.Tissue
	Interactions    []regulon.Interaction // sorted by key, unique
	Candidates      int                   // distinct footprint-derived keys
	DistinctTFs     int
	DistinctTargets int
}

// Confirm marks each footprint-derived interaction as confirmed iff its key
// appears in the pruned co-expression key set. The join is exact set
// membership on uppercase TF_TARGET keys; footprints are deduplicated by key
// before counting. Output order is sorted, so identical inputs produce
// byte-identical tables.
func Confirm(tissue core.Tissue, footprints []genome.FootprintRecord, coexprKeys map[string]struct{}) ConfirmedSet {
	candidates := make(map[string]regulon.Interaction, len(footprints))
	for _, rec := range footprints {
		it := regulon.NewInteraction(rec.TF, rec.TargetGene)
		candidates[it.Key()] = it
	}

	set := ConfirmedSet{Tissue: tissue, Candidates: len(candidates)}

	keys := make([]string, 0, len(candidates))
	for key := range candidates {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tfs := make(map[string]struct{})
	targets := make(map[string]struct{})
	for _, key := range keys {
		if _, ok := coexprKeys[key]; !ok {
			continue
		}
		it := candidates[key]
		set.Interactions = append(set.Interactions, it)
		tfs[it.TF] = struct{}{}
		targets[it.Target] = struct{}{}
	}
	set.DistinctTFs = len(tfs)
	set.DistinctTargets = len(targets)
	return set
}
