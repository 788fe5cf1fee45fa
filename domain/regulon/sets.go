package regulon

// StringSet is a set of interaction keys, target genes or TF symbols,
// depending on granularity.
type StringSet map[string]struct{}

// Contains tests membership.
func (s StringSet) Contains(elem string) bool {
	_, ok := s[elem]
	return ok
}

// TissueSets holds one tissue's evidence at the three granularities the
// specificity algebra operates on.
type TissueSets struct {
	Interactions StringSet
	Targets      StringSet
	TFs          StringSet
}

// SetsFromInteractions derives the three per-tissue sets from a confirmed
// interaction table.
func SetsFromInteractions(interactions []Interaction) TissueSets {
	sets := TissueSets{
		Interactions: make(StringSet, len(interactions)),
		Targets:      make(StringSet),
		TFs:          make(StringSet),
	}
	for _, it := range interactions {
		sets.Interactions[it.Key()] = struct{}{}
		sets.Targets[it.Target] = struct{}{}
		sets.TFs[it.TF] = struct{}{}
	}
	return sets
}
