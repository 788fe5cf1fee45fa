package app

import (
	"fmt"
	"runtime"

	"regulonet/domain/core"
)

// Config is the explicit pipeline configuration. Every threshold is a named
// option with a documented default; there are no implicit globals.
type Config struct {
	// QuantileProb is the per-(TF, sign) importance quantile used by module
	// pruning. Default 0.50: keep the upper half of each group. Raising it
	// keeps fewer, stronger co-expression edges.
	QuantileProb float64

	// MinRegulonSize is the smallest target set a regulon needs to enter
	// activity scoring. Default 20. Smaller regulons are excluded and
	// counted in the summary, never scored.
	MinRegulonSize int

	// RankCutoffFraction bounds the recovery curve at this fraction of the
	// expression matrix's genes. Default 0.05: a regulon is scored on how
	// many of its targets sit in each cell's top 5% of ranks.
	RankCutoffFraction float64

	// MaxWorkers bounds both the per-tissue fusion workers and the
	// cell-scoring pool. Default runtime.NumCPU(). Output is identical for
	// any worker count.
	MaxWorkers int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		QuantileProb:       0.50,
		MinRegulonSize:     20,
		RankCutoffFraction: 0.05,
		MaxWorkers:         runtime.NumCPU(),
	}
}

// Validate rejects threshold values outside their documented ranges.
func (c Config) Validate() error {
	if c.QuantileProb <= 0 || c.QuantileProb > 1 {
		return fmt.Errorf("%w: quantile probability %g", core.ErrInvalidQuantile, c.QuantileProb)
	}
	if c.RankCutoffFraction <= 0 || c.RankCutoffFraction > 1 {
		return fmt.Errorf("%w: rank cutoff fraction %g must be in (0, 1]", core.ErrConfiguration, c.RankCutoffFraction)
	}
	if c.MinRegulonSize < 1 {
		return fmt.Errorf("%w: minimum regulon size %d must be >= 1", core.ErrConfiguration, c.MinRegulonSize)
	}
	if c.MaxWorkers < 1 {
		return fmt.Errorf("%w: max workers %d must be >= 1", core.ErrConfiguration, c.MaxWorkers)
	}
	return nil
}
