package specificity

import (
	"regulonet/domain/core"
	"regulonet/domain/regulon"
)

// Unique computes, for every tissue T, set(T) minus the union of every other
// tissue's set. It is a pure fold over the immutable input mapping; nothing
// is accumulated across calls. The results are pairwise disjoint: an element
// present in two tissues is excluded from both.
func Unique(perTissue map[core.Tissue]regulon.StringSet) map[core.Tissue]regulon.StringSet {
	unique := make(map[core.Tissue]regulon.StringSet, len(perTissue))
	for tissue, set := range perTissue {
		others := make(regulon.StringSet)
		for other, otherSet := range perTissue {
			if other == tissue {
				continue
			}
			for elem := range otherSet {
				others[elem] = struct{}{}
			}
		}

		diff := make(regulon.StringSet)
		for elem := range set {
			if !others.Contains(elem) {
				diff[elem] = struct{}{}
			}
		}
		unique[tissue] = diff
	}
	return unique
}

// UniqueAll applies Unique independently at interaction, target and TF
// granularity.
func UniqueAll(perTissue map[core.Tissue]regulon.TissueSets) map[core.Tissue]regulon.TissueSets {
	interactions := make(map[core.Tissue]regulon.StringSet, len(perTissue))
	targets := make(map[core.Tissue]regulon.StringSet, len(perTissue))
	tfs := make(map[core.Tissue]regulon.StringSet, len(perTissue))
	for tissue, sets := range perTissue {
		interactions[tissue] = sets.Interactions
		targets[tissue] = sets.Targets
		tfs[tissue] = sets.TFs
	}

	uInteractions := Unique(interactions)
	uTargets := Unique(targets)
	uTFs := Unique(tfs)

	out := make(map[core.Tissue]regulon.TissueSets, len(perTissue))
	for tissue := range perTissue {
		out[tissue] = regulon.TissueSets{
			Interactions: uInteractions[tissue],
			Targets:      uTargets[tissue],
			TFs:          uTFs[tissue],
		}
	}
	return out
}
