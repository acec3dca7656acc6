package dupgraph

import (
	"errors"
	"fmt"

	"github.com/hupe1980/dupgraph/bucket"
	"github.com/hupe1980/dupgraph/cc"
	"github.com/hupe1980/dupgraph/community"
	"github.com/hupe1980/dupgraph/graph"
	"github.com/hupe1980/dupgraph/persistence"
)

var (
	// ErrMalformedInput is returned when rows are not grouped by band value
	// within a hashtable or no hashtable exists. The run is aborted.
	ErrMalformedInput = errors.New("malformed input")

	// ErrUnsupportedAlgorithm is returned for unknown community detection
	// algorithms.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrInvalidConfiguration is returned for rejected options.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrSerialization is returned when an artifact cannot be decoded. No
	// partial model is returned alongside it.
	ErrSerialization = errors.New("serialization error")
)

// ComponentError reports the failure of one component's community detection.
//
// The original underlying error can be accessed via errors.Unwrap.
type ComponentError struct {
	Component uint32
	Size      int
	cause     error
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("component %d (%d elements): %v", e.Component, e.Size, e.cause)
}

func (e *ComponentError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, bucket.ErrMalformedInput) {
		return fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	if errors.Is(err, community.ErrUnsupportedAlgorithm) {
		return fmt.Errorf("%w: %w", ErrUnsupportedAlgorithm, err)
	}
	if errors.Is(err, community.ErrInvalidConfiguration) || errors.Is(err, graph.ErrUnknownMode) {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	if errors.Is(err, persistence.ErrInvalidMagic) ||
		errors.Is(err, persistence.ErrInvalidVersion) ||
		errors.Is(err, persistence.ErrKindMismatch) ||
		errors.Is(err, persistence.ErrCorrupt) ||
		errors.Is(err, persistence.ErrSchemaMismatch) ||
		errors.Is(err, cc.ErrInvalidModel) ||
		errors.Is(err, community.ErrInvalidModel) {
		return fmt.Errorf("%w: %w", ErrSerialization, err)
	}

	return err
}
