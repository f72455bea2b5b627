package base32768

import (
	"fmt"

	"github.com/pkg/errors"
)

// Errors returned when decoding. Every decode failure is a
// *CorruptInputError wrapping one of these so they can be told apart
// with errors.Is.
var (
	ErrInvalidSymbol            = errors.New("not a base32768 symbol")
	ErrTrailingSymbolsAfterTail = errors.New("symbol after tail symbol")
	ErrUnalignedLargeOnlyStream = errors.New("bad padding at end of input")
	ErrMalformedTail            = errors.New("malformed tail symbol")
)

// CorruptInputError describes where decoding failed.
//
// Position counts code points from the start of the input. For
// ErrUnalignedLargeOnlyStream it is the length of the input.
type CorruptInputError struct {
	Err       error
	Position  int
	CodePoint rune // only set for ErrInvalidSymbol
}

// Error satisfies the error interface
func (e *CorruptInputError) Error() string {
	if e.Err == ErrInvalidSymbol {
		return fmt.Sprintf("base32768: %v U+%04X at position %d", e.Err, e.CodePoint, e.Position)
	}
	return fmt.Sprintf("base32768: %v at position %d", e.Err, e.Position)
}

// Unwrap returns the sentinel error
func (e *CorruptInputError) Unwrap() error {
	return e.Err
}

// Cause returns the sentinel error for github.com/pkg/errors
func (e *CorruptInputError) Cause() error {
	return e.Err
}

func corrupt(err error, pos int, r rune) error {
	return &CorruptInputError{Err: err, Position: pos, CodePoint: r}
}
