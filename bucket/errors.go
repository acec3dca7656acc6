package bucket

import (
	"errors"
	"fmt"

	"github.com/hupe1980/dupgraph/model"
)

var (
	// ErrMalformedInput is the class of all input ordering and shape errors.
	ErrMalformedInput = errors.New("malformed input")

	// ErrNoHashtables is returned when the source reports no hashtables.
	ErrNoHashtables = fmt.Errorf("%w: no hashtables", ErrMalformedInput)
)

// MalformedInputError describes a row that violates the scan contract.
type MalformedInputError struct {
	Hashtable model.HashtableID
	Band      []byte
	// Row is the zero-based position of the offending row within its hashtable
	// scan, or -1 if the error is not tied to a row.
	Row    int64
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("malformed input: hashtable %d: %s", e.Hashtable, e.Reason)
	}
	return fmt.Sprintf("malformed input: hashtable %d row %d band %x: %s", e.Hashtable, e.Row, e.Band, e.Reason)
}

// Is reports whether target is ErrMalformedInput.
func (e *MalformedInputError) Is(target error) bool { return target == ErrMalformedInput }
