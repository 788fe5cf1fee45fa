package flatfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"regulonet/domain/coexpr"
	"regulonet/domain/core"
	"regulonet/domain/genome"
	"regulonet/domain/regulon"
)

func parseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes", "bound":
		return true, nil
	case "0", "false", "f", "no", "unbound":
		return false, nil
	}
	return false, fmt.Errorf("unrecognized bound flag %q", s)
}

// readTSV reads a header-keyed tab-separated table. The raw header row is
// returned alongside the name->index map because the map collapses duplicate
// column names; callers that need positional columns use the row.
func readTSV(path string) (header map[string]int, headerRow []string, rows [][]string, err error) {
	r, err := open(path)
	if err != nil {
		return nil, nil, nil, err
	}
	defer r.Close()

	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.Comment = '#'

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) < 1 {
		return nil, nil, nil, fmt.Errorf("%w: %s has no header row", core.ErrEmptyInput, path)
	}

	header = make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return header, records[0], records[1:], nil
}

func column(header map[string]int, row []string, names ...string) (string, bool) {
	for _, name := range names {
		if i, ok := header[name]; ok && i < len(row) {
			return row[i], true
		}
	}
	return "", false
}

// Footprints implements ports.FootprintSource. The footprint table carries
// one row per candidate binding event; the TF symbol is derived from the raw
// binding-site identifier by stripping its motif-instance suffix.
func (s *Store) Footprints(ctx context.Context, tissue core.Tissue) ([]genome.FootprintRecord, error) {
	paths, err := s.paths(tissue)
	if err != nil {
		return nil, err
	}
	header, _, rows, err := readTSV(paths.Footprints)
	if err != nil {
		return nil, err
	}

	records := make([]genome.FootprintRecord, 0, len(rows))
	for n, row := range rows {
		siteID, ok := column(header, row, "motif_id", "site_id", "tf")
		if !ok {
			return nil, core.NewParseError(paths.Footprints, n+2, "missing TF identifier column")
		}
		gene, _ := column(header, row, "gene_name", "gene", "target_gene", "target")
		boundRaw, ok := column(header, row, "bound", "bound_flag")
		if !ok {
			return nil, core.NewParseError(paths.Footprints, n+2, "missing bound column")
		}
		bound, err := parseBool(boundRaw)
		if err != nil {
			return nil, core.NewParseError(paths.Footprints, n+2, err.Error())
		}

		rec := genome.FootprintRecord{
			TF:         genome.TFFromSiteID(siteID),
			TargetGene: strings.TrimSpace(gene),
			Tissue:     tissue,
			Bound:      bound,
			MotifID:    strings.TrimSpace(siteID),
		}
		if chrom, ok := column(header, row, "chrom", "chr", "seqnames"); ok {
			startRaw, _ := column(header, row, "start")
			endRaw, _ := column(header, row, "end")
			start, err1 := parseInt(startRaw)
			end, err2 := parseInt(endRaw)
			if err1 != nil || err2 != nil {
				return nil, core.NewParseError(paths.Footprints, n+2, "bad interval coordinates")
			}
			rec.Site = genome.GenomicInterval{Chrom: chrom, Start: start, End: end}
		}
		if scoreRaw, ok := column(header, row, "score", "footprint_score"); ok {
			if score, err := parseFloat(scoreRaw); err == nil {
				rec.Score = score
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// Replicates implements ports.FootprintSource.
func (s *Store) Replicates(ctx context.Context, tissue core.Tissue) ([]genome.GenomicInterval, []genome.GenomicInterval, error) {
	paths, err := s.paths(tissue)
	if err != nil {
		return nil, nil, err
	}
	rep1, err := readBED(paths.Replicate1)
	if err != nil {
		return nil, nil, err
	}
	rep2, err := readBED(paths.Replicate2)
	if err != nil {
		return nil, nil, err
	}
	return rep1, rep2, nil
}

// Edges implements ports.CoExpressionSource.
func (s *Store) Edges(ctx context.Context) ([]coexpr.Edge, error) {
	header, _, rows, err := readTSV(s.coexprPath)
	if err != nil {
		return nil, err
	}

	edges := make([]coexpr.Edge, 0, len(rows))
	for n, row := range rows {
		tf, ok := column(header, row, "tf", "regulator")
		if !ok {
			return nil, core.NewParseError(s.coexprPath, n+2, "missing tf column")
		}
		target, ok := column(header, row, "target", "target_gene", "gene")
		if !ok {
			return nil, core.NewParseError(s.coexprPath, n+2, "missing target column")
		}
		importanceRaw, ok := column(header, row, "importance", "weight")
		if !ok {
			return nil, core.NewParseError(s.coexprPath, n+2, "missing importance column")
		}
		importance, err := parseFloat(importanceRaw)
		if err != nil {
			return nil, core.NewParseError(s.coexprPath, n+2, fmt.Sprintf("bad importance %q", importanceRaw))
		}
		signRaw, _ := column(header, row, "regulation", "sign", "regulation_sign")

		edges = append(edges, coexpr.Edge{
			TF:         strings.TrimSpace(tf),
			Target:     strings.TrimSpace(target),
			Importance: importance,
			Sign:       coexpr.ParseSign(signRaw),
		})
	}
	return edges, nil
}

// GeneSymbols implements ports.ReferenceSource.
func (s *Store) GeneSymbols(ctx context.Context) ([]string, error) {
	return readSymbolList(s.genePath)
}

// TranscriptionFactors implements ports.ReferenceSource.
func (s *Store) TranscriptionFactors(ctx context.Context) ([]string, error) {
	return readSymbolList(s.tfPath)
}

// Matrix implements ports.ExpressionSource. The matrix file has a header of
// gene symbols after the cell-ID column and one row per cell. Values must be
// non-negative.
func (s *Store) Matrix(ctx context.Context) (*regulon.ExpressionMatrix, error) {
	_, headerRow, rows, err := readTSV(s.expressionPath)
	if err != nil {
		return nil, err
	}
	if len(headerRow) < 2 {
		return nil, core.NewParseError(s.expressionPath, 1, "expression header needs a cell ID column and at least one gene")
	}

	genes := make([]string, len(headerRow)-1)
	seen := make(map[string]struct{}, len(genes))
	for i, name := range headerRow[1:] {
		symbol := strings.ToUpper(strings.TrimSpace(name))
		if _, dup := seen[symbol]; dup {
			return nil, core.NewParseError(s.expressionPath, 1, fmt.Sprintf("duplicate gene column %q", name))
		}
		seen[symbol] = struct{}{}
		genes[i] = symbol
	}

	cells := make([]string, 0, len(rows))
	data := make([][]float64, 0, len(rows))
	for n, row := range rows {
		if len(row) != len(genes)+1 {
			return nil, core.NewParseError(s.expressionPath, n+2, fmt.Sprintf("row has %d fields, expected %d", len(row), len(genes)+1))
		}
		values := make([]float64, len(genes))
		for j, raw := range row[1:] {
			v, err := parseFloat(raw)
			if err != nil {
				return nil, core.NewParseError(s.expressionPath, n+2, fmt.Sprintf("bad expression value %q", raw))
			}
			if v < 0 {
				return nil, core.NewParseError(s.expressionPath, n+2, fmt.Sprintf("negative expression value %g", v))
			}
			values[j] = v
		}
		cells = append(cells, strings.TrimSpace(row[0]))
		data = append(data, values)
	}
	return regulon.NewExpressionMatrix(cells, genes, data)
}
