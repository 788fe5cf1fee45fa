package app

import (
	"context"
	"fmt"
	"log"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"regulonet/domain/coexpr"
	"regulonet/domain/core"
	"regulonet/domain/genome"
	"regulonet/domain/regulon"
	"regulonet/domain/run"
	"regulonet/internal/activity"
	"regulonet/internal/footprint"
	"regulonet/internal/fusion"
	"regulonet/internal/pruning"
	"regulonet/internal/specificity"
	"regulonet/ports"
)

// TissueInput is one tissue's preloaded evidence.
type TissueInput struct {
	Tissue     core.Tissue
	Footprints []genome.FootprintRecord
	Replicate1 []genome.GenomicInterval
	Replicate2 []genome.GenomicInterval
}

// Inputs carries everything a run needs, loaded before any stage begins.
type Inputs struct {
	Tissues              []TissueInput
	Edges                []coexpr.Edge
	GeneSymbols          []string
	TranscriptionFactors []string
	Expression           *regulon.ExpressionMatrix
}

// PipelineService orchestrates the evidence-fusion and scoring pipeline.
type PipelineService struct {
	sinks []ports.ResultsSink
}

// NewPipelineService creates a pipeline service writing finished runs to the
// given sinks.
func NewPipelineService(sinks ...ports.ResultsSink) *PipelineService {
	return &PipelineService{sinks: sinks}
}

// LoadInputs gathers all external tables through the source ports. Loads
// happen up front; the pipeline itself never touches I/O mid-computation.
func LoadInputs(ctx context.Context, tissues []core.Tissue, fps ports.FootprintSource, ces ports.CoExpressionSource, refs ports.ReferenceSource, exps ports.ExpressionSource) (Inputs, error) {
	var in Inputs
	var err error

	for _, tissue := range tissues {
		ti := TissueInput{Tissue: tissue}
		if ti.Footprints, err = fps.Footprints(ctx, tissue); err != nil {
			return Inputs{}, fmt.Errorf("loading footprints for %s: %w", tissue, err)
		}
		if ti.Replicate1, ti.Replicate2, err = fps.Replicates(ctx, tissue); err != nil {
			return Inputs{}, fmt.Errorf("loading replicates for %s: %w", tissue, err)
		}
		in.Tissues = append(in.Tissues, ti)
	}
	if in.Edges, err = ces.Edges(ctx); err != nil {
		return Inputs{}, fmt.Errorf("loading co-expression edges: %w", err)
	}
	if in.GeneSymbols, err = refs.GeneSymbols(ctx); err != nil {
		return Inputs{}, fmt.Errorf("loading gene symbols: %w", err)
	}
	if in.TranscriptionFactors, err = refs.TranscriptionFactors(ctx); err != nil {
		return Inputs{}, fmt.Errorf("loading TF list: %w", err)
	}
	if in.Expression, err = exps.Matrix(ctx); err != nil {
		return Inputs{}, fmt.Errorf("loading expression matrix: %w", err)
	}
	return in, nil
}

// tissueOutcome collects one tissue's stage outputs for assembly after the
// parallel section. Workers write disjoint slots, so no locking is needed.
type tissueOutcome struct {
	qc        footprint.ReplicateQC
	filtered  footprint.FilterResult
	confirmed fusion.ConfirmedSet
}

// Run executes the full pipeline: interval filtering, module pruning,
// evidence fusion, tissue-specificity algebra, and per-cell activity
// scoring. Configuration errors abort before any tissue is processed;
// per-tissue data-quality issues are isolated to that tissue and surface as
// statuses in the result.
func (s *PipelineService) Run(ctx context.Context, in Inputs, cfg Config) (*run.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	geneSet := footprint.NewSymbolSet(in.GeneSymbols)
	tfSet := footprint.NewSymbolSet(in.TranscriptionFactors)
	if len(geneSet) == 0 {
		return nil, core.ErrMissingGeneReference
	}
	if len(tfSet) == 0 {
		return nil, core.ErrMissingTFList
	}

	// Fatal pre-checks run over every tissue before any tissue is processed.
	for _, ti := range in.Tissues {
		for _, set := range [][]genome.GenomicInterval{ti.Replicate1, ti.Replicate2} {
			for _, iv := range set {
				if err := iv.Validate(); err != nil {
					return nil, fmt.Errorf("tissue %s: %w", ti.Tissue, err)
				}
			}
		}
	}

	pruned, err := pruning.Prune(in.Edges, cfg.QuantileProb)
	if err != nil {
		return nil, err
	}
	log.Printf("[pipeline] pruned co-expression modules: %d edges kept across %d TFs (%d discarded for missing sign)",
		len(pruned.Edges), pruned.DistinctTFs, pruned.Discarded)

	coexprKeys := fusion.KeySet(pruned.Edges)

	// Filtering and fusion are independent per tissue.
	outcomes := make([]tissueOutcome, len(in.Tissues))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.MaxWorkers)
	for i, ti := range in.Tissues {
		g.Go(func() error {
			qc, err := footprint.IntersectReplicates(ti.Replicate1, ti.Replicate2)
			if err != nil {
				return fmt.Errorf("tissue %s: %w", ti.Tissue, err)
			}
			filtered, err := footprint.Filter(ti.Footprints, geneSet, tfSet)
			if err != nil {
				return fmt.Errorf("tissue %s: %w", ti.Tissue, err)
			}
			outcomes[i] = tissueOutcome{
				qc:        qc,
				filtered:  filtered,
				confirmed: fusion.Confirm(ti.Tissue, filtered.Kept, coexprKeys),
			}
			if err := gctx.Err(); err != nil {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &run.Result{
		RunID:     core.RunID(core.NewID()),
		Confirmed: make(map[core.Tissue][]regulon.Interaction, len(in.Tissues)),
		Regulons:  make(map[core.Tissue][]regulon.Regulon, len(in.Tissues)),
		Activity:  make(map[core.Tissue]*regulon.ActivityMatrix, len(in.Tissues)),
	}

	perTissue := make(map[core.Tissue]regulon.TissueSets, len(in.Tissues))
	for i, ti := range in.Tissues {
		confirmed := outcomes[i].confirmed
		result.Confirmed[ti.Tissue] = confirmed.Interactions
		perTissue[ti.Tissue] = regulon.SetsFromInteractions(confirmed.Interactions)
		if len(confirmed.Interactions) == 0 {
			log.Printf("[pipeline] tissue %s has zero confirmed interactions; continuing with empty sets", ti.Tissue)
		}
	}
	result.Unique = specificity.UniqueAll(perTissue)

	// Tissue-specific regulons come from the unique interaction sets.
	allTargets := make(map[string]struct{})
	for _, ti := range in.Tissues {
		uniqueKeys := result.Unique[ti.Tissue].Interactions
		specific := make([]regulon.Interaction, 0, len(uniqueKeys))
		for _, it := range result.Confirmed[ti.Tissue] {
			if uniqueKeys.Contains(it.Key()) {
				specific = append(specific, it)
			}
		}
		regulons := regulon.BuildRegulons(ti.Tissue, specific)
		result.Regulons[ti.Tissue] = regulons
		for _, r := range regulons {
			for _, target := range r.Targets {
				allTargets[target] = struct{}{}
			}
		}
	}

	restricted, err := in.Expression.Restrict(allTargets)
	if err != nil {
		return nil, err
	}
	rankings := activity.BuildRankings(restricted)
	log.Printf("[pipeline] built rankings for %d cells over %d regulon target genes", len(restricted.Cells), len(restricted.Genes))

	scoreCfg := activity.Config{
		RankCutoffFraction: cfg.RankCutoffFraction,
		MinRegulonSize:     cfg.MinRegulonSize,
		MaxWorkers:         cfg.MaxWorkers,
	}

	confirmedCounts := make([]float64, 0, len(in.Tissues))
	var allScores []float64
	for i, ti := range in.Tissues {
		matrix, scoreSummary, err := activity.ScoreTissue(ctx, ti.Tissue, restricted, rankings, result.Regulons[ti.Tissue], scoreCfg)
		if err != nil {
			return nil, fmt.Errorf("scoring tissue %s: %w", ti.Tissue, err)
		}
		result.Activity[ti.Tissue] = matrix

		report := run.TissueReport{
			Tissue:                 ti.Tissue,
			ExactSharedIntervals:   outcomes[i].qc.ExactShared,
			OverlapSharedIntervals: outcomes[i].qc.OverlapShared,
			RawFootprints:          len(ti.Footprints),
			FilteredFootprints:     len(outcomes[i].filtered.Kept),
			CandidateInteractions:  outcomes[i].confirmed.Candidates,
			ConfirmedInteractions:  len(outcomes[i].confirmed.Interactions),
			DistinctTFs:            outcomes[i].confirmed.DistinctTFs,
			DistinctTargets:        outcomes[i].confirmed.DistinctTargets,
			ScoredRegulons:         scoreSummary.ScoredRegulons,
			RegulonsBelowMinSize:   scoreSummary.BelowMinSize,
			ZeroOverlapRegulons:    scoreSummary.ZeroOverlap,
		}
		switch {
		case report.ConfirmedInteractions == 0:
			report.Status = run.StatusDegenerate
		case scoreSummary.ScoredRegulons == 0 || scoreSummary.ScoredRegulons == scoreSummary.ZeroOverlap:
			report.Status = run.StatusSkipped
		default:
			report.Status = run.StatusCompleted
		}
		result.Reports = append(result.Reports, report)

		confirmedCounts = append(confirmedCounts, float64(report.ConfirmedInteractions))
		for _, row := range matrix.Scores {
			allScores = append(allScores, row...)
		}
		log.Printf("[pipeline] tissue %s: %s (%d confirmed interactions, %d regulons scored)",
			ti.Tissue, report.Status, report.ConfirmedInteractions, report.ScoredRegulons)
	}

	result.Summary = s.summarize(result.Reports, pruned, confirmedCounts, allScores)

	for _, sink := range s.sinks {
		if err := sink.PersistRun(ctx, result); err != nil {
			return nil, fmt.Errorf("persisting run %s: %w", result.RunID, err)
		}
	}
	return result, nil
}

func (s *PipelineService) summarize(reports []run.TissueReport, pruned pruning.Result, confirmedCounts, allScores []float64) run.Summary {
	summary := run.Summary{
		Tissues:           len(reports),
		PrunedEdges:       len(pruned.Edges),
		PrunedDistinctTFs: pruned.DistinctTFs,
		DiscardedNoSign:   pruned.Discarded,
	}
	for _, r := range reports {
		switch r.Status {
		case run.StatusCompleted:
			summary.Completed++
		case run.StatusDegenerate:
			summary.Degenerate++
		case run.StatusSkipped:
			summary.Skipped++
		}
	}
	if len(confirmedCounts) > 0 {
		summary.MedianConfirmedPerTissue, _ = stats.Median(confirmedCounts)
	}
	if len(allScores) > 0 {
		summary.MeanActivity = stat.Mean(allScores, nil)
	}
	if len(allScores) > 1 {
		summary.StdDevActivity = stat.StdDev(allScores, nil)
	}
	return summary
}
