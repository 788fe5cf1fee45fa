package excel

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"regulonet/domain/core"
	"regulonet/domain/regulon"
	"regulonet/domain/run"
)

func TestSummaryWriter_DecomposesUniqueInteractionKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.xlsx")

	result := &run.Result{
		RunID: core.RunID("run-1"),
		Reports: []run.TissueReport{
			{Tissue: "liver", Status: run.StatusCompleted, ConfirmedInteractions: 2},
		},
		Unique: map[core.Tissue]regulon.TissueSets{
			"liver": {
				Interactions: regulon.StringSet{"CTCF_MYC": {}, "STAT1_IRF1": {}},
				Targets:      regulon.StringSet{"MYC": {}, "IRF1": {}},
				TFs:          regulon.StringSet{"CTCF": {}},
			},
		},
	}

	w := NewSummaryWriter(path)
	if err := w.PersistRun(context.Background(), result); err != nil {
		t.Fatalf("PersistRun failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("Opening workbook failed: %v", err)
	}
	defer f.Close()

	// Keys are written in sorted order, decomposed into TF and target columns.
	cases := map[string]string{
		"A2": "CTCF", "B2": "MYC",
		"A3": "STAT1", "B3": "IRF1",
	}
	for cell, want := range cases {
		got, err := f.GetCellValue("liver", cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s) failed: %v", cell, err)
		}
		if got != want {
			t.Errorf("liver!%s = %q, want %q", cell, got, want)
		}
	}
}
