package regulon

import (
	"fmt"
	"strings"
)

// Interaction is a TF -> target pair confirmed by both evidence sources.
// Symbols are normalized to uppercase before any comparison; skipping the
// normalization silently loses evidence on case-mismatched inputs.
type Interaction struct {
	TF     string
	Target string
}

// NewInteraction builds an uppercase-normalized interaction.
func NewInteraction(tf, target string) Interaction {
	return Interaction{
		TF:     strings.ToUpper(strings.TrimSpace(tf)),
		Target: strings.ToUpper(strings.TrimSpace(target)),
	}
}

// Key returns the canonical identity string. The orientation is always
// TF_TARGET; every consumer that decomposes a key must use ParseKey.
func (i Interaction) Key() string {
	return i.TF + "_" + i.Target
}

// ParseKey decomposes a canonical interaction key back into TF and target.
// The TF symbol never contains an underscore, so the first separator wins.
func ParseKey(key string) (Interaction, error) {
	idx := strings.Index(key, "_")
	if idx <= 0 || idx == len(key)-1 {
		return Interaction{}, fmt.Errorf("malformed interaction key %q", key)
	}
	return Interaction{TF: key[:idx], Target: key[idx+1:]}, nil
}
