package ports

import (
	"context"

	"regulonet/domain/coexpr"
	"regulonet/domain/core"
	"regulonet/domain/genome"
	"regulonet/domain/regulon"
)

// FootprintSource loads the footprint caller's output for one tissue,
// together with the tissue's replicate open-chromatin interval sets. All
// loads happen before a pipeline stage begins; sources are never called
// mid-computation.
type FootprintSource interface {
	Footprints(ctx context.Context, tissue core.Tissue) ([]genome.FootprintRecord, error)
	Replicates(ctx context.Context, tissue core.Tissue) (rep1, rep2 []genome.GenomicInterval, err error)
}

// CoExpressionSource loads the TF -> target importance table produced by the
// upstream co-expression inference. Shared across tissues.
type CoExpressionSource interface {
	Edges(ctx context.Context) ([]coexpr.Edge, error)
}

// ReferenceSource loads the ground-truth symbol lists the footprint filter
// requires.
type ReferenceSource interface {
	GeneSymbols(ctx context.Context) ([]string, error)
	TranscriptionFactors(ctx context.Context) ([]string, error)
}

// ExpressionSource loads the cell x gene expression matrix.
type ExpressionSource interface {
	Matrix(ctx context.Context) (*regulon.ExpressionMatrix, error)
}
