package run

import (
	"regulonet/domain/core"
	"regulonet/domain/regulon"
)

// TissueStatus distinguishes how a tissue finished. Silent empty output is
// disallowed: every tissue carries one of these in the run result.
type TissueStatus string

const (
	// StatusCompleted: the tissue produced confirmed interactions and at
	// least one regulon was scored.
	StatusCompleted TissueStatus = "completed"
	// StatusDegenerate: zero confirmed interactions after fusion. The tissue
	// contributes empty specificity sets and an empty score block but does
	// not halt other tissues.
	StatusDegenerate TissueStatus = "degenerate"
	// StatusSkipped: confirmed interactions existed but nothing was
	// scorable (every regulon below the minimum size, or no regulon gene
	// present in the expression matrix).
	StatusSkipped TissueStatus = "skipped"
)

// TissueReport is the per-tissue accounting in the run result.
type TissueReport struct {
	Tissue core.Tissue
	Status TissueStatus

	// Replicate interval agreement
	ExactSharedIntervals   int
	OverlapSharedIntervals int

	// Footprint filtering
	RawFootprints      int
	FilteredFootprints int

	// Fusion
	CandidateInteractions int
	ConfirmedInteractions int
	DistinctTFs           int
	DistinctTargets       int

	// Scoring
	ScoredRegulons       int
	RegulonsBelowMinSize int
	ZeroOverlapRegulons  int
}

// Summary aggregates run-level statistics across tissues.
type Summary struct {
	Tissues    int
	Completed  int
	Degenerate int
	Skipped    int

	PrunedEdges       int
	PrunedDistinctTFs int
	DiscardedNoSign   int

	MedianConfirmedPerTissue float64
	MeanActivity             float64
	StdDevActivity           float64
}

// Result is the complete output of one pipeline run, handed to sinks as an
// opaque payload.
type Result struct {
	RunID   core.RunID
	Reports []TissueReport
	Summary Summary

	Confirmed map[core.Tissue][]regulon.Interaction
	Unique    map[core.Tissue]regulon.TissueSets
	Regulons  map[core.Tissue][]regulon.Regulon
	Activity  map[core.Tissue]*regulon.ActivityMatrix
}
