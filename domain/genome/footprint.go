package genome

import (
	"regexp"
	"strings"

	"regulonet/domain/core"
)

// FootprintRecord is one candidate binding event from the footprint caller.
// Records are filtered (bound flag, gene validity, curated TF membership) and
// then never mutated, only subset.
type FootprintRecord struct {
	TF         string
	TargetGene string
	Tissue     core.Tissue
	Bound      bool
	Site       GenomicInterval
	MotifID    string
	Score      float64
}

// motifSuffix matches the motif-instance suffix appended by the footprint
// caller to a binding-site identifier: "CTCF_2", "STAT1.4", "JUND(var.2)".
var motifSuffix = regexp.MustCompile(`(?i)(_\d+|\.\d+|\(var\.\d+\))$`)

// nonCodingName matches gene symbols that are non-coding annotation names
// rather than real genes ("Gm12345", "...Rik", uppercased here).
var nonCodingName = regexp.MustCompile(`^GM\d+$|RIK$`)

// TFFromSiteID derives the transcription factor symbol from a raw
// binding-site identifier by stripping the motif-instance suffix.
func TFFromSiteID(siteID string) string {
	return motifSuffix.ReplaceAllString(strings.TrimSpace(siteID), "")
}

// IsNonCodingName reports whether a gene symbol is a non-coding annotation
// name and must not enter a tissue's evidence set.
func IsNonCodingName(symbol string) bool {
	return nonCodingName.MatchString(strings.ToUpper(symbol))
}
