package excel

import (
	"context"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"regulonet/domain/regulon"
	"regulonet/domain/run"
)

// SummaryWriter exports a run-summary workbook: one overview sheet plus one
// sheet per tissue with its specificity sets. It is a ResultsSink.
type SummaryWriter struct {
	path string
}

// NewSummaryWriter creates a summary writer targeting path.
func NewSummaryWriter(path string) *SummaryWriter {
	return &SummaryWriter{path: path}
}

// PersistRun implements ports.ResultsSink.
func (w *SummaryWriter) PersistRun(ctx context.Context, result *run.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	const overview = "Overview"
	f.SetSheetName("Sheet1", overview)

	headers := []string{
		"tissue", "status", "shared_intervals", "overlap_intervals",
		"raw_footprints", "filtered_footprints", "candidate_interactions",
		"confirmed_interactions", "distinct_tfs", "distinct_targets",
		"scored_regulons", "below_min_size", "zero_overlap",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(overview, cell, h)
	}

	for rowIdx, report := range result.Reports {
		values := []interface{}{
			report.Tissue.String(), string(report.Status),
			report.ExactSharedIntervals, report.OverlapSharedIntervals,
			report.RawFootprints, report.FilteredFootprints,
			report.CandidateInteractions, report.ConfirmedInteractions,
			report.DistinctTFs, report.DistinctTargets,
			report.ScoredRegulons, report.RegulonsBelowMinSize,
			report.ZeroOverlapRegulons,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			f.SetCellValue(overview, cell, v)
		}
	}

	summaryRow := len(result.Reports) + 3
	f.SetCellValue(overview, fmt.Sprintf("A%d", summaryRow), "run_id")
	f.SetCellValue(overview, fmt.Sprintf("B%d", summaryRow), result.RunID.String())
	f.SetCellValue(overview, fmt.Sprintf("A%d", summaryRow+1), "mean_activity")
	f.SetCellValue(overview, fmt.Sprintf("B%d", summaryRow+1), result.Summary.MeanActivity)
	f.SetCellValue(overview, fmt.Sprintf("A%d", summaryRow+2), "stddev_activity")
	f.SetCellValue(overview, fmt.Sprintf("B%d", summaryRow+2), result.Summary.StdDevActivity)
	f.SetCellValue(overview, fmt.Sprintf("A%d", summaryRow+3), "median_confirmed_per_tissue")
	f.SetCellValue(overview, fmt.Sprintf("B%d", summaryRow+3), result.Summary.MedianConfirmedPerTissue)

	for _, report := range result.Reports {
		sheet := report.Tissue.String()
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("creating sheet %s: %w", sheet, err)
		}
		f.SetCellValue(sheet, "A1", "unique_tf")
		f.SetCellValue(sheet, "B1", "unique_target")
		f.SetCellValue(sheet, "C1", "unique_targets")
		f.SetCellValue(sheet, "D1", "unique_tfs")

		sets := result.Unique[report.Tissue]
		keys := make([]string, 0, len(sets.Interactions))
		for key := range sets.Interactions {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for i, key := range keys {
			it, err := regulon.ParseKey(key)
			if err != nil {
				return fmt.Errorf("decomposing interaction key %q: %w", key, err)
			}
			f.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), it.TF)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", i+2), it.Target)
		}
		writeSetColumn(f, sheet, 3, sets.Targets)
		writeSetColumn(f, sheet, 4, sets.TFs)
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("writing summary workbook %s: %w", w.path, err)
	}
	return nil
}

func writeSetColumn(f *excelize.File, sheet string, col int, set map[string]struct{}) {
	elems := make([]string, 0, len(set))
	for elem := range set {
		elems = append(elems, elem)
	}
	sort.Strings(elems)
	for i, elem := range elems {
		cell, _ := excelize.CoordinatesToCellName(col, i+2)
		f.SetCellValue(sheet, cell, elem)
	}
}
