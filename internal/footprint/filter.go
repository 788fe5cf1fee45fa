package footprint

import (
	"strings"

	"regulonet/domain/core"
	"regulonet/domain/genome"
)

// SymbolSet is an uppercase-normalized set of gene or TF symbols.
type SymbolSet map[string]struct{}

// NewSymbolSet builds a set from raw symbols, uppercasing and trimming each.
func NewSymbolSet(symbols []string) SymbolSet {
	set := make(SymbolSet, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}

// Contains does a case-insensitive membership test.
func (s SymbolSet) Contains(symbol string) bool {
	_, ok := s[strings.ToUpper(strings.TrimSpace(symbol))]
	return ok
}

// FilterResult reports what the validity filter kept and why rows fell out.
type FilterResult struct {
	Kept             []genome.FootprintRecord
	DroppedUnbound   int
	DroppedGene      int
	DroppedNonCoding int
	DroppedTF        int
}

// Filter retains only bound footprints whose target gene is a known coding
// symbol and whose TF is on the curated list. Reference sets are ground
// truth; running without them is a configuration error, checked by the
// pipeline before any tissue starts.
func Filter(records []genome.FootprintRecord, genes, tfs SymbolSet) (FilterResult, error) {
	if len(genes) == 0 {
		return FilterResult{}, core.ErrMissingGeneReference
	}
	if len(tfs) == 0 {
		return FilterResult{}, core.ErrMissingTFList
	}

	res := FilterResult{Kept: make([]genome.FootprintRecord, 0, len(records))}
	for _, rec := range records {
		switch {
		case !rec.Bound:
			res.DroppedUnbound++
		case strings.TrimSpace(rec.TargetGene) == "" || !genes.Contains(rec.TargetGene):
			res.DroppedGene++
		case genome.IsNonCodingName(rec.TargetGene):
			res.DroppedNonCoding++
		case !tfs.Contains(rec.TF):
			res.DroppedTF++
		default:
			res.Kept = append(res.Kept, rec)
		}
	}
	return res, nil
}
