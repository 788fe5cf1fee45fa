package genome

import (
	"fmt"

	"regulonet/domain/core"
)

// GenomicInterval is a half-open genomic region on a single chromosome.
// Two intervals denote the same region only on exact key equality; there is
// no coordinate-overlap fuzziness at the filtering stage.
type GenomicInterval struct {
	Chrom string
	Start int
	End   int
}

// Key returns the identity string "chrom:start-end" used for exact matching.
func (g GenomicInterval) Key() string {
	return fmt.Sprintf("%s:%d-%d", g.Chrom, g.Start, g.End)
}

// Validate enforces the start < end invariant.
func (g GenomicInterval) Validate() error {
	if g.Chrom == "" {
		return fmt.Errorf("%w: empty chromosome", core.ErrMalformedInterval)
	}
	if g.Start >= g.End {
		return core.NewIntervalError(g.Chrom, g.Start, g.End)
	}
	return nil
}

// Compare orders intervals by (chrom, start, end). Used by the sorted-merge
// replicate intersection.
func (g GenomicInterval) Compare(o GenomicInterval) int {
	switch {
	case g.Chrom < o.Chrom:
		return -1
	case g.Chrom > o.Chrom:
		return 1
	}
	switch {
	case g.Start < o.Start:
		return -1
	case g.Start > o.Start:
		return 1
	}
	switch {
	case g.End < o.End:
		return -1
	case g.End > o.End:
		return 1
	}
	return 0
}
