package pruning

import (
	"fmt"
	"math"
	"sort"

	"regulonet/domain/coexpr"
	"regulonet/domain/core"
)

// GroupKey identifies a quantile group: one TF with one regulation sign.
type GroupKey struct {
	TF   string
	Sign coexpr.RegulationSign
}

// Result is the pruned edge set plus the summary statistics reported to the
// run summary.
type Result struct {
	Edges       []coexpr.Edge
	Thresholds  map[GroupKey]float64
	DistinctTFs int
	Discarded   int
}

// Prune reduces a co-expression table to high-confidence modules. Edges with
// sign none are discarded; the survivors are grouped by (TF, sign) and only
// edges at or above the p-quantile of importance within their group are
// kept. A singleton group's quantile is its own value, so singletons always
// survive.
func Prune(edges []coexpr.Edge, p float64) (Result, error) {
	if p <= 0 || p > 1 {
		return Result{}, fmt.Errorf("%w: got %g", core.ErrInvalidQuantile, p)
	}

	groups := make(map[GroupKey][]coexpr.Edge)
	discarded := 0
	for _, e := range edges {
		if e.Sign == coexpr.SignNone {
			discarded++
			continue
		}
		key := GroupKey{TF: e.TF, Sign: e.Sign}
		groups[key] = append(groups[key], e)
	}

	res := Result{
		Thresholds: make(map[GroupKey]float64, len(groups)),
		Discarded:  discarded,
	}

	keys := make([]GroupKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].TF != keys[j].TF {
			return keys[i].TF < keys[j].TF
		}
		return keys[i].Sign < keys[j].Sign
	})

	tfs := make(map[string]struct{})
	for _, key := range keys {
		group := groups[key]
		values := make([]float64, len(group))
		for i, e := range group {
			values[i] = e.Importance
		}
		threshold := Quantile(values, p)
		res.Thresholds[key] = threshold

		for _, e := range group {
			if e.Importance >= threshold {
				res.Edges = append(res.Edges, e)
				tfs[e.TF] = struct{}{}
			}
		}
	}
	res.DistinctTFs = len(tfs)
	return res, nil
}

// Quantile is the linear-interpolation sample quantile (R type 7, the
// default of the tooling that produces the importance matrix): for sorted
// values x and h = (n-1)p, the estimate is
// x[floor(h)] + (h - floor(h)) * (x[floor(h)+1] - x[floor(h)]).
// A single value is its own quantile for every p.
func Quantile(values []float64, p float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return values[0]
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}
