package footprint

import (
	"fmt"
	"sort"

	"github.com/biogo/store/interval"

	"regulonet/domain/genome"
)

// ReplicateQC summarizes the agreement between the two replicate interval
// sets of one tissue. ExactShared is the quality metric used downstream;
// OverlapShared counts coordinate overlaps and is informational only.
// Matched holds, per rep1 interval, whether an identical interval exists in
// rep2 (left-outer semantics over rep1).
type ReplicateQC struct {
	Replicate1    int
	Replicate2    int
	ExactShared   int
	OverlapShared int
	Matched       []bool
}

// IntInterval adapts a genomic interval to the biogo interval tree.
type IntInterval struct {
	Start, End int
	UID        uintptr
}

// Overlap rule for two intervals
func (i IntInterval) Overlap(b interval.IntRange) bool {
	return i.End > b.Start && i.Start < b.End
}

// ID returns the tree identifier of the interval
func (i IntInterval) ID() uintptr { return i.UID }

// Range returns the coordinate range of the interval
func (i IntInterval) Range() interval.IntRange {
	return interval.IntRange{Start: i.Start, End: i.End}
}

// IntersectReplicates computes replicate agreement for one tissue. Both
// inputs must be sorted by genomic coordinate; the exact-identity count uses
// a sorted merge with left-outer semantics over rep1 (every rep1 interval is
// inspected for a matching rep2 interval, matching on exact key equality).
func IntersectReplicates(rep1, rep2 []genome.GenomicInterval) (ReplicateQC, error) {
	for _, set := range [][]genome.GenomicInterval{rep1, rep2} {
		for _, iv := range set {
			if err := iv.Validate(); err != nil {
				return ReplicateQC{}, err
			}
		}
		if !sort.SliceIsSorted(set, func(a, b int) bool { return set[a].Compare(set[b]) < 0 }) {
			return ReplicateQC{}, fmt.Errorf("replicate interval set is not coordinate-sorted")
		}
	}

	qc := ReplicateQC{
		Replicate1: len(rep1),
		Replicate2: len(rep2),
		Matched:    make([]bool, len(rep1)),
	}

	j := 0
	for i, iv := range rep1 {
		for j < len(rep2) && rep2[j].Compare(iv) < 0 {
			j++
		}
		if j < len(rep2) && rep2[j].Key() == iv.Key() {
			qc.ExactShared++
			qc.Matched[i] = true
		}
	}

	qc.OverlapShared = overlapCount(rep1, rep2)
	return qc, nil
}

// overlapCount counts rep1 intervals overlapping any rep2 interval on the
// same chromosome, via per-chromosome interval trees.
func overlapCount(rep1, rep2 []genome.GenomicInterval) int {
	trees := make(map[string]*interval.IntTree)
	for k, iv := range rep2 {
		tree, ok := trees[iv.Chrom]
		if !ok {
			tree = &interval.IntTree{}
			trees[iv.Chrom] = tree
		}
		// Insert errors only on reversed ranges, which Validate already rejected.
		_ = tree.Insert(IntInterval{Start: iv.Start, End: iv.End, UID: uintptr(k)}, false)
	}
	for _, tree := range trees {
		tree.AdjustRanges()
	}

	count := 0
	for _, iv := range rep1 {
		tree, ok := trees[iv.Chrom]
		if !ok {
			continue
		}
		if hits := tree.Get(IntInterval{Start: iv.Start, End: iv.End}); len(hits) > 0 {
			count++
		}
	}
	return count
}
