package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors: fatal, abort the run before any tissue is processed
	ErrConfiguration        = errors.New("configuration error")
	ErrMissingGeneReference = fmt.Errorf("%w: reference gene symbol list missing or empty", ErrConfiguration)
	ErrMissingTFList        = fmt.Errorf("%w: curated transcription factor list missing or empty", ErrConfiguration)
	ErrNoExpressionOverlap  = fmt.Errorf("%w: expression matrix shares no genes with any regulon", ErrConfiguration)
	ErrMalformedInterval    = fmt.Errorf("%w: malformed genomic interval", ErrConfiguration)
	ErrInvalidQuantile      = fmt.Errorf("%w: quantile probability must be in (0, 1]", ErrConfiguration)

	// Input errors
	ErrEmptyInput    = errors.New("empty input")
	ErrUnknownTissue = errors.New("unknown tissue")
)

// Error constructors with context
func NewIntervalError(chrom string, start, end int) error {
	return fmt.Errorf("%w: %s:%d-%d (start must be < end)", ErrMalformedInterval, chrom, start, end)
}

func NewParseError(path string, line int, reason string) error {
	return fmt.Errorf("parse failed at %s:%d: %s", path, line, reason)
}

// IsConfigurationError reports whether err belongs to the fatal, no-retry class.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
