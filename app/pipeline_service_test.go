package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regulonet/domain/coexpr"
	"regulonet/domain/core"
	"regulonet/domain/genome"
	"regulonet/domain/regulon"
	"regulonet/domain/run"
)

type captureSink struct {
	result *run.Result
}

func (s *captureSink) PersistRun(ctx context.Context, result *run.Result) error {
	s.result = result
	return nil
}

func bound(tissue core.Tissue, tf, gene string) genome.FootprintRecord {
	return genome.FootprintRecord{TF: tf, TargetGene: gene, Tissue: tissue, Bound: true}
}

func fixtureInputs(t *testing.T) Inputs {
	t.Helper()

	expression, err := regulon.NewExpressionMatrix(
		[]string{"cellA", "cellB"},
		[]string{"MYC", "IRF1"},
		[][]float64{
			{9.0, 0.5}, // cellA: MYC on top
			{0.5, 9.0}, // cellB: IRF1 on top
		},
	)
	require.NoError(t, err)

	return Inputs{
		Tissues: []TissueInput{
			{
				Tissue: "liver",
				Footprints: []genome.FootprintRecord{
					bound("liver", "Ctcf", "Myc"),
					bound("liver", "Ctcf", "Alb"),
					{TF: "Ctcf", TargetGene: "Jun", Tissue: "liver", Bound: false},
				},
				Replicate1: []genome.GenomicInterval{
					{Chrom: "chr1", Start: 100, End: 200},
					{Chrom: "chr1", Start: 300, End: 400},
				},
				Replicate2: []genome.GenomicInterval{
					{Chrom: "chr1", Start: 100, End: 200},
				},
			},
			{
				Tissue: "kidney",
				Footprints: []genome.FootprintRecord{
					bound("kidney", "Stat1", "Irf1"),
					bound("kidney", "Ctcf", "Alb"),
				},
			},
			{
				// No footprint key of this tissue appears in the pruned
				// co-expression set, so it ends degenerate.
				Tissue: "lung",
				Footprints: []genome.FootprintRecord{
					bound("lung", "Hand2", "Myc"),
				},
			},
		},
		Edges: []coexpr.Edge{
			// Ctcf positive group: {4.0, 5.0, 6.0}; 0.50 quantile = 5.0, Jun pruned
			{TF: "Ctcf", Target: "Jun", Importance: 4.0, Sign: coexpr.SignPositive},
			{TF: "Ctcf", Target: "Myc", Importance: 5.0, Sign: coexpr.SignPositive},
			{TF: "Ctcf", Target: "Alb", Importance: 6.0, Sign: coexpr.SignPositive},
			{TF: "Stat1", Target: "Irf1", Importance: 1.0, Sign: coexpr.SignPositive},
		},
		GeneSymbols:          []string{"Myc", "Jun", "Alb", "Irf1"},
		TranscriptionFactors: []string{"Ctcf", "Stat1", "Hand2"},
		Expression:           expression,
	}
}

func fixtureConfig() Config {
	return Config{
		QuantileProb:       0.50,
		MinRegulonSize:     1,
		RankCutoffFraction: 0.5,
		MaxWorkers:         2,
	}
}

func TestPipeline_EndToEnd(t *testing.T) {
	sink := &captureSink{}
	service := NewPipelineService(sink)

	result, err := service.Run(context.Background(), fixtureInputs(t), fixtureConfig())
	require.NoError(t, err)
	require.NotNil(t, sink.result, "sink must receive the finished run")
	require.Len(t, result.Reports, 3)

	byTissue := make(map[core.Tissue]run.TissueReport)
	for _, report := range result.Reports {
		byTissue[report.Tissue] = report
	}

	// liver: Jun row unbound, Alb shared with kidney, Myc liver-specific
	liver := byTissue["liver"]
	assert.Equal(t, run.StatusCompleted, liver.Status)
	assert.Equal(t, 3, liver.RawFootprints)
	assert.Equal(t, 2, liver.FilteredFootprints)
	assert.Equal(t, 2, liver.ConfirmedInteractions) // CTCF_MYC, CTCF_ALB
	assert.Equal(t, 1, liver.ExactSharedIntervals)

	kidney := byTissue["kidney"]
	assert.Equal(t, run.StatusCompleted, kidney.Status)
	assert.Equal(t, 2, kidney.ConfirmedInteractions) // STAT1_IRF1, CTCF_ALB

	lung := byTissue["lung"]
	assert.Equal(t, run.StatusDegenerate, lung.Status)
	assert.Equal(t, 0, lung.ConfirmedInteractions)

	// CTCF_ALB is shared by liver and kidney, so it is tissue-specific nowhere.
	assert.True(t, result.Unique["liver"].Interactions.Contains("CTCF_MYC"))
	assert.False(t, result.Unique["liver"].Interactions.Contains("CTCF_ALB"))
	assert.False(t, result.Unique["kidney"].Interactions.Contains("CTCF_ALB"))
	assert.True(t, result.Unique["kidney"].Interactions.Contains("STAT1_IRF1"))

	// Tissue-specific regulons drive scoring: CTCF->MYC in liver, STAT1->IRF1 in kidney.
	require.Len(t, result.Regulons["liver"], 1)
	assert.Equal(t, []string{"MYC"}, result.Regulons["liver"][0].Targets)

	liverActivity := result.Activity["liver"]
	require.Equal(t, []string{"CTCF"}, liverActivity.TFs)
	assert.Equal(t, 1.0, liverActivity.Scores[0][0], "cellA has MYC at rank 1")
	assert.Equal(t, 0.0, liverActivity.Scores[1][0], "cellB has MYC below the cutoff")

	kidneyActivity := result.Activity["kidney"]
	require.Equal(t, []string{"STAT1"}, kidneyActivity.TFs)
	assert.Equal(t, 0.0, kidneyActivity.Scores[0][0])
	assert.Equal(t, 1.0, kidneyActivity.Scores[1][0])

	assert.Equal(t, 2, result.Summary.Completed)
	assert.Equal(t, 1, result.Summary.Degenerate)
	assert.Equal(t, 3, result.Summary.Tissues)
}

func TestPipeline_DeterministicAcrossRuns(t *testing.T) {
	service := NewPipelineService()

	first, err := service.Run(context.Background(), fixtureInputs(t), fixtureConfig())
	require.NoError(t, err)
	second, err := service.Run(context.Background(), fixtureInputs(t), fixtureConfig())
	require.NoError(t, err)

	assert.Equal(t, first.Confirmed, second.Confirmed)
	assert.Equal(t, first.Unique, second.Unique)
	assert.Equal(t, first.Regulons, second.Regulons)
	for tissue := range first.Activity {
		assert.Equal(t, first.Activity[tissue].Scores, second.Activity[tissue].Scores, tissue)
	}
}

func TestPipeline_MissingReferenceListsAbort(t *testing.T) {
	service := NewPipelineService()

	in := fixtureInputs(t)
	in.GeneSymbols = nil
	_, err := service.Run(context.Background(), in, fixtureConfig())
	assert.ErrorIs(t, err, core.ErrMissingGeneReference)

	in = fixtureInputs(t)
	in.TranscriptionFactors = nil
	_, err = service.Run(context.Background(), in, fixtureConfig())
	assert.ErrorIs(t, err, core.ErrMissingTFList)
}

func TestPipeline_MalformedIntervalAbortsBeforeTissues(t *testing.T) {
	sink := &captureSink{}
	service := NewPipelineService(sink)

	in := fixtureInputs(t)
	in.Tissues[0].Replicate1 = []genome.GenomicInterval{{Chrom: "chr1", Start: 400, End: 300}}

	_, err := service.Run(context.Background(), in, fixtureConfig())
	require.Error(t, err)
	assert.True(t, core.IsConfigurationError(err), "malformed interval is a configuration error")
	assert.Nil(t, sink.result, "nothing may be persisted after a fatal pre-check")
}

func TestPipeline_ZeroExpressionOverlapFatal(t *testing.T) {
	service := NewPipelineService()

	in := fixtureInputs(t)
	expression, err := regulon.NewExpressionMatrix(
		[]string{"cellA"},
		[]string{"UNRELATED"},
		[][]float64{{1.0}},
	)
	require.NoError(t, err)
	in.Expression = expression

	_, err = service.Run(context.Background(), in, fixtureConfig())
	assert.ErrorIs(t, err, core.ErrNoExpressionOverlap)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.QuantileProb = 0
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.RankCutoffFraction = 1.5
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.MinRegulonSize = 0
	assert.Error(t, bad.Validate())
}
