package ports

import (
	"context"

	"regulonet/domain/run"
)

// ResultsSink receives a finished run as an opaque payload. Serialization is
// the sink's business, not the pipeline's.
type ResultsSink interface {
	PersistRun(ctx context.Context, result *run.Result) error
}
