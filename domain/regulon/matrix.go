package regulon

import (
	"fmt"
	"strings"

	"regulonet/domain/core"
)

// ExpressionMatrix is a dense cells x genes matrix of non-negative
// expression values. Gene symbols are uppercased so they match interaction
// keys without a second normalization pass.
type ExpressionMatrix struct {
	Cells []string
	Genes []string
	Data  [][]float64 // rows=cells, cols=genes
}

// NewExpressionMatrix validates shape and normalizes gene symbols.
func NewExpressionMatrix(cells, genes []string, data [][]float64) (*ExpressionMatrix, error) {
	if len(data) != len(cells) {
		return nil, fmt.Errorf("expression matrix has %d rows for %d cells", len(data), len(cells))
	}
	for i, row := range data {
		if len(row) != len(genes) {
			return nil, fmt.Errorf("expression row %d has %d values for %d genes", i, len(row), len(genes))
		}
	}
	upper := make([]string, len(genes))
	for i, g := range genes {
		upper[i] = strings.ToUpper(strings.TrimSpace(g))
	}
	return &ExpressionMatrix{Cells: cells, Genes: upper, Data: data}, nil
}

// Restrict returns a copy of the matrix keeping only columns whose gene
// appears in keep. Column order is preserved. An empty result is the
// caller's fatal zero-overlap condition, reported here as the sentinel.
func (m *ExpressionMatrix) Restrict(keep map[string]struct{}) (*ExpressionMatrix, error) {
	cols := make([]int, 0, len(m.Genes))
	genes := make([]string, 0, len(m.Genes))
	for j, g := range m.Genes {
		if _, ok := keep[g]; ok {
			cols = append(cols, j)
			genes = append(genes, g)
		}
	}
	if len(cols) == 0 {
		return nil, core.ErrNoExpressionOverlap
	}
	data := make([][]float64, len(m.Data))
	for i, row := range m.Data {
		sub := make([]float64, len(cols))
		for k, j := range cols {
			sub[k] = row[j]
		}
		data[i] = sub
	}
	return &ExpressionMatrix{Cells: m.Cells, Genes: genes, Data: data}, nil
}

// ColumnIndex maps gene symbol to column position.
func (m *ExpressionMatrix) ColumnIndex() map[string]int {
	idx := make(map[string]int, len(m.Genes))
	for j, g := range m.Genes {
		idx[g] = j
	}
	return idx
}

// CellRankings holds, per cell, the permutation of column indices ordered by
// descending expression, plus the inverse lookup (column -> 1-based rank).
// Built once from an ExpressionMatrix, then shared read-only by all scoring
// workers.
type CellRankings struct {
	Order [][]int // Order[cell][rank] = column index
	Rank  [][]int // Rank[cell][column] = 1-based rank position
}

// ActivityMatrix is the dense cells x TFs activity score output for one
// tissue. Scores are in [0,1].
type ActivityMatrix struct {
	Tissue core.Tissue
	Cells  []string
	TFs    []string
	Scores [][]float64 // rows=cells, cols=TFs
}
