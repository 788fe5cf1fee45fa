package activity

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"regulonet/domain/core"
	"regulonet/domain/regulon"
)

// Config holds the scorer thresholds. Zero values are replaced by defaults.
type Config struct {
	// RankCutoffFraction is the fraction of total genes that bounds the
	// recovery curve. Default 0.05: only the top 5% of each cell's ranking
	// contributes to a regulon's score.
	RankCutoffFraction float64

	// MinRegulonSize excludes regulons with fewer target genes from scoring
	// entirely. Default 20. Excluded regulons are counted, not errors.
	MinRegulonSize int

	// MaxWorkers bounds the cell-scoring worker pool. Default 1 worker;
	// output is byte-identical for any worker count because workers write
	// disjoint rows.
	MaxWorkers int
}

func (c Config) withDefaults() Config {
	if c.RankCutoffFraction <= 0 || c.RankCutoffFraction > 1 {
		c.RankCutoffFraction = 0.05
	}
	if c.MinRegulonSize <= 0 {
		c.MinRegulonSize = 20
	}
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = 1
	}
	return c
}

// Summary reports what the scorer excluded rather than scored.
type Summary struct {
	ScoredRegulons int
	BelowMinSize   int
	ZeroOverlap    int // scored regulons with no gene in the matrix; all-zero column
	RankCutoff     int
}

// BuildRankings ranks every cell's genes by descending expression. Ties keep
// the original column order (stable sort over column indices), so repeated
// runs over identical input are byte-identical. The result is immutable and
// shared read-only by all scoring workers.
func BuildRankings(m *regulon.ExpressionMatrix) *regulon.CellRankings {
	nCells := len(m.Cells)
	nGenes := len(m.Genes)

	rankings := &regulon.CellRankings{
		Order: make([][]int, nCells),
		Rank:  make([][]int, nCells),
	}
	for c := 0; c < nCells; c++ {
		row := m.Data[c]
		order := make([]int, nGenes)
		for j := range order {
			order[j] = j
		}
		sort.SliceStable(order, func(a, b int) bool {
			return row[order[a]] > row[order[b]]
		})

		rank := make([]int, nGenes)
		for pos, col := range order {
			rank[col] = pos + 1
		}
		rankings.Order[c] = order
		rankings.Rank[c] = rank
	}
	return rankings
}

// ScoreTissue computes the dense cell x TF activity matrix for one tissue's
// regulons. The score for a (cell, regulon) pair is the area under the
// recovery curve of "fraction of targets recovered" vs rank position,
// evaluated up to the rank cutoff and normalized against the best attainable
// area for that regulon's in-matrix target count, so the score is 1 when all
// targets occupy the very top ranks and 0 when none appear within the
// cutoff. Targets absent from the matrix are ignored, not penalized; a
// regulon with no in-matrix targets scores 0 everywhere.
func ScoreTissue(ctx context.Context, tissue core.Tissue, m *regulon.ExpressionMatrix, rankings *regulon.CellRankings, regulons []regulon.Regulon, cfg Config) (*regulon.ActivityMatrix, Summary, error) {
	cfg = cfg.withDefaults()

	nGenes := len(m.Genes)
	cutoff := int(math.Floor(cfg.RankCutoffFraction * float64(nGenes)))
	if cutoff < 1 {
		cutoff = 1
	}
	summary := Summary{RankCutoff: cutoff}

	colIndex := m.ColumnIndex()

	// Resolve each scorable regulon's targets to column indices up front.
	scorable := make([]regulon.Regulon, 0, len(regulons))
	targetCols := make([][]int, 0, len(regulons))
	for _, r := range regulons {
		if r.Size() < cfg.MinRegulonSize {
			summary.BelowMinSize++
			continue
		}
		cols := make([]int, 0, len(r.Targets))
		for _, target := range r.Targets {
			if j, ok := colIndex[target]; ok {
				cols = append(cols, j)
			}
		}
		if len(cols) == 0 {
			summary.ZeroOverlap++
		}
		scorable = append(scorable, r)
		targetCols = append(targetCols, cols)
	}
	summary.ScoredRegulons = len(scorable)

	out := &regulon.ActivityMatrix{
		Tissue: tissue,
		Cells:  m.Cells,
		TFs:    make([]string, len(scorable)),
		Scores: make([][]float64, len(m.Cells)),
	}
	for i, r := range scorable {
		out.TFs[i] = r.TF
	}

	// Each worker owns a disjoint set of rows; inputs are read-only.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.MaxWorkers)
	for c := range m.Cells {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row := make([]float64, len(scorable))
			rank := rankings.Rank[c]
			for i, cols := range targetCols {
				row[i] = recoveryAUC(rank, cols, cutoff)
			}
			out.Scores[c] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Summary{}, err
	}
	return out, summary, nil
}

// recoveryAUC sums, for every target ranked within the cutoff, the number of
// rank positions at which that target counts as recovered. Normalizing by
// the same sum with all in-matrix targets packed at ranks 1..m yields the
// [0,1] statistic.
func recoveryAUC(rank []int, targetCols []int, cutoff int) float64 {
	m := len(targetCols)
	if m == 0 {
		return 0
	}

	raw := 0
	for _, col := range targetCols {
		if r := rank[col]; r <= cutoff {
			raw += cutoff - r + 1
		}
	}
	if raw == 0 {
		return 0
	}

	best := 0
	top := m
	if top > cutoff {
		top = cutoff
	}
	for r := 1; r <= top; r++ {
		best += cutoff - r + 1
	}
	return float64(raw) / float64(best)
}
