package regulon

import (
	"sort"

	"regulonet/domain/core"
)

// Regulon is a transcription factor together with the target genes it is
// inferred to regulate within one tissue.
type Regulon struct {
	TF      string
	Tissue  core.Tissue
	Targets []string // sorted, uppercase, unique
}

// Size returns the number of target genes.
func (r Regulon) Size() int { return len(r.Targets) }

// BuildRegulons groups confirmed interactions by TF for one tissue. Targets
// are deduplicated and sorted so repeated runs yield identical regulons.
func BuildRegulons(tissue core.Tissue, interactions []Interaction) []Regulon {
	byTF := make(map[string]map[string]struct{})
	for _, it := range interactions {
		targets, ok := byTF[it.TF]
		if !ok {
			targets = make(map[string]struct{})
			byTF[it.TF] = targets
		}
		targets[it.Target] = struct{}{}
	}

	tfs := make([]string, 0, len(byTF))
	for tf := range byTF {
		tfs = append(tfs, tf)
	}
	sort.Strings(tfs)

	regulons := make([]Regulon, 0, len(tfs))
	for _, tf := range tfs {
		targets := make([]string, 0, len(byTF[tf]))
		for target := range byTF[tf] {
			targets = append(targets, target)
		}
		sort.Strings(targets)
		regulons = append(regulons, Regulon{TF: tf, Tissue: tissue, Targets: targets})
	}
	return regulons
}
