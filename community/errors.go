package community

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedAlgorithm is returned for unknown algorithm names.
	ErrUnsupportedAlgorithm = errors.New("unsupported community detection algorithm")

	// ErrInvalidConfiguration is returned for options the algorithm does not
	// accept.
	ErrInvalidConfiguration = errors.New("invalid community detection configuration")

	// ErrInvalidModel is returned when a communities model violates its
	// invariants.
	ErrInvalidModel = errors.New("invalid communities model")
)

// UnsupportedAlgorithmError names the rejected algorithm.
type UnsupportedAlgorithmError struct {
	Name string
}

func (e *UnsupportedAlgorithmError) Error() string {
	return fmt.Sprintf("%v: %q", ErrUnsupportedAlgorithm, e.Name)
}

func (e *UnsupportedAlgorithmError) Is(target error) bool { return target == ErrUnsupportedAlgorithm }

// InvalidConfigurationError describes a rejected option.
type InvalidConfigurationError struct {
	Algorithm Algorithm
	Key       string
	Reason    string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("%v: %s: option %q: %s", ErrInvalidConfiguration, e.Algorithm, e.Key, e.Reason)
}

func (e *InvalidConfigurationError) Is(target error) bool { return target == ErrInvalidConfiguration }
