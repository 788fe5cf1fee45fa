package activity

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regulonet/domain/regulon"
)

func matrixFor(t *testing.T, cells, genes []string, data [][]float64) *regulon.ExpressionMatrix {
	t.Helper()
	m, err := regulon.NewExpressionMatrix(cells, genes, data)
	require.NoError(t, err)
	return m
}

func genes(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("G%03d", i)
	}
	return out
}

// Ties break by original column order, so re-ranking identical input always
// yields the same permutation.
func TestBuildRankings_DeterministicTieBreak(t *testing.T) {
	m := matrixFor(t,
		[]string{"cell1"},
		[]string{"A", "B", "C", "D"},
		[][]float64{{2.0, 5.0, 5.0, 1.0}},
	)

	first := BuildRankings(m)
	second := BuildRankings(m)

	assert.Equal(t, first.Order, second.Order)
	// B and C tie at 5.0; B (earlier column) must outrank C.
	assert.Equal(t, []int{1, 2, 0, 3}, first.Order[0])
	assert.Equal(t, 1, first.Rank[0][1], "B should hold rank 1")
	assert.Equal(t, 2, first.Rank[0][2], "C should hold rank 2")
}

func TestScoreTissue_PerfectRegulonScoresOne(t *testing.T) {
	gs := genes(40)
	row := make([]float64, 40)
	// Targets G000..G004 get the five highest values.
	for i := 0; i < 5; i++ {
		row[i] = float64(100 - i)
	}
	for i := 5; i < 40; i++ {
		row[i] = float64(40 - i)
	}
	m := matrixFor(t, []string{"cell1"}, gs, [][]float64{row})

	regulons := []regulon.Regulon{{
		TF:      "CTCF",
		Tissue:  "liver",
		Targets: []string{"G000", "G001", "G002", "G003", "G004"},
	}}

	// cutoff = floor(0.25*40) = 10 ranks
	out, summary, err := ScoreTissue(context.Background(), "liver", m, BuildRankings(m), regulons,
		Config{RankCutoffFraction: 0.25, MinRegulonSize: 1, MaxWorkers: 2})
	require.NoError(t, err)
	require.Equal(t, []string{"CTCF"}, out.TFs)
	assert.Equal(t, 10, summary.RankCutoff)
	assert.Equal(t, 1.0, out.Scores[0][0], "all targets at the top ranks must score exactly 1")
}

func TestScoreTissue_NoTargetsWithinCutoffScoresZero(t *testing.T) {
	gs := genes(40)
	row := make([]float64, 40)
	// Target genes G038, G039 get the lowest values.
	for i := 0; i < 38; i++ {
		row[i] = float64(100 - i)
	}
	m := matrixFor(t, []string{"cell1"}, gs, [][]float64{row})

	regulons := []regulon.Regulon{{TF: "CTCF", Tissue: "liver", Targets: []string{"G038", "G039"}}}

	out, _, err := ScoreTissue(context.Background(), "liver", m, BuildRankings(m), regulons,
		Config{RankCutoffFraction: 0.25, MinRegulonSize: 1, MaxWorkers: 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, out.Scores[0][0])
}

// A regulon whose targets never appear in the matrix scores 0 for every
// cell; this is a data-quality condition, not an error.
func TestScoreTissue_ZeroOverlapRegulonScoresZero(t *testing.T) {
	m := matrixFor(t, []string{"cell1", "cell2"}, genes(10), [][]float64{
		{9, 8, 7, 6, 5, 4, 3, 2, 1, 0},
		{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
	})

	regulons := []regulon.Regulon{{TF: "HAND2", Tissue: "heart", Targets: []string{"ABSENT1", "ABSENT2"}}}

	out, summary, err := ScoreTissue(context.Background(), "heart", m, BuildRankings(m), regulons,
		Config{RankCutoffFraction: 0.5, MinRegulonSize: 1, MaxWorkers: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ZeroOverlap)
	for c := range out.Scores {
		assert.Equal(t, 0.0, out.Scores[c][0], "cell %d", c)
	}
}

// A six-target regulon with threshold 20 is excluded entirely: no column in
// the output matrix.
func TestScoreTissue_BelowMinSizeExcluded(t *testing.T) {
	m := matrixFor(t, []string{"cell1"}, genes(30), [][]float64{make([]float64, 30)})

	regulons := []regulon.Regulon{{
		TF:      "CTCF",
		Tissue:  "liver",
		Targets: []string{"G000", "G001", "G002", "G003", "G004", "G005"},
	}}

	out, summary, err := ScoreTissue(context.Background(), "liver", m, BuildRankings(m), regulons,
		Config{RankCutoffFraction: 0.05, MinRegulonSize: 20, MaxWorkers: 1})
	require.NoError(t, err)
	assert.Empty(t, out.TFs, "below-threshold regulon must not produce a column")
	assert.Equal(t, 1, summary.BelowMinSize)
	assert.Equal(t, 0, summary.ScoredRegulons)
}

// Targets absent from the matrix are ignored, not penalized: a regulon with
// one in-matrix target at rank 1 scores 1 even if other targets are missing.
func TestScoreTissue_MissingTargetsNotPenalized(t *testing.T) {
	m := matrixFor(t, []string{"cell1"}, []string{"A", "B", "C", "D"}, [][]float64{{9, 3, 2, 1}})

	regulons := []regulon.Regulon{{TF: "CTCF", Tissue: "liver", Targets: []string{"A", "MISSING1", "MISSING2"}}}

	out, _, err := ScoreTissue(context.Background(), "liver", m, BuildRankings(m), regulons,
		Config{RankCutoffFraction: 0.5, MinRegulonSize: 1, MaxWorkers: 1})
	require.NoError(t, err)
	assert.Equal(t, 1.0, out.Scores[0][0])
}

// Output is identical for any worker count: workers write disjoint rows of
// shared read-only inputs.
func TestScoreTissue_WorkerCountInvariant(t *testing.T) {
	nCells := 50
	gs := genes(60)
	data := make([][]float64, nCells)
	for c := range data {
		row := make([]float64, 60)
		for j := range row {
			row[j] = float64((c*31 + j*17) % 97)
		}
		data[c] = row
	}
	cells := make([]string, nCells)
	for c := range cells {
		cells[c] = fmt.Sprintf("cell%02d", c)
	}
	m := matrixFor(t, cells, gs, data)
	rankings := BuildRankings(m)

	regulons := []regulon.Regulon{
		{TF: "CTCF", Tissue: "liver", Targets: gs[:25]},
		{TF: "STAT1", Tissue: "liver", Targets: gs[20:45]},
	}

	var reference *regulon.ActivityMatrix
	for _, workers := range []int{1, 4, 16} {
		out, _, err := ScoreTissue(context.Background(), "liver", m, rankings, regulons,
			Config{RankCutoffFraction: 0.1, MinRegulonSize: 20, MaxWorkers: workers})
		require.NoError(t, err)
		if reference == nil {
			reference = out
			continue
		}
		assert.Equal(t, reference.Scores, out.Scores, "workers=%d", workers)
	}
}

// Scores always land in [0,1].
func TestScoreTissue_ScoresBounded(t *testing.T) {
	gs := genes(30)
	data := [][]float64{make([]float64, 30), make([]float64, 30)}
	for j := 0; j < 30; j++ {
		data[0][j] = float64(j % 7)
		data[1][j] = float64((j * 13) % 11)
	}
	m := matrixFor(t, []string{"c1", "c2"}, gs, data)

	regulons := []regulon.Regulon{{TF: "CTCF", Tissue: "liver", Targets: gs[3:9]}}

	out, _, err := ScoreTissue(context.Background(), "liver", m, BuildRankings(m), regulons,
		Config{RankCutoffFraction: 0.3, MinRegulonSize: 1, MaxWorkers: 2})
	require.NoError(t, err)
	for c := range out.Scores {
		for i := range out.Scores[c] {
			score := out.Scores[c][i]
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}
	}
}
