package coexpr

import "strings"

// RegulationSign classifies the direction of a co-expression relationship.
type RegulationSign string

const (
	SignPositive RegulationSign = "positive"
	SignNegative RegulationSign = "negative"
	SignNone     RegulationSign = "none"
)

// ParseSign maps raw sign annotations from the co-expression inference output
// onto a RegulationSign. Anything unrecognized is SignNone and is discarded
// by the pruner.
func ParseSign(raw string) RegulationSign {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "+", "positive", "pos", "activation", "1":
		return SignPositive
	case "-", "negative", "neg", "repression", "-1":
		return SignNegative
	default:
		return SignNone
	}
}

// Edge is one TF -> target co-expression relationship weighted by importance.
type Edge struct {
	TF         string
	Target     string
	Importance float64
	Sign       RegulationSign
}
