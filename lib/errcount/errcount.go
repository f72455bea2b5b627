// Package errcount counts errors, keeping only the last one, so that a
// long run of bad input can be summarised in a single error.
package errcount

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrCount stores the state of the error counter.
type ErrCount struct {
	mu      sync.Mutex
	lastErr error
	count   int
}

// New makes a new error counter
func New() *ErrCount {
	return new(ErrCount)
}

// Add an error to the error count. err may be nil.
//
// Thread safe.
func (ec *ErrCount) Add(err error) {
	if err == nil {
		return
	}
	ec.mu.Lock()
	ec.count++
	ec.lastErr = err
	ec.mu.Unlock()
}

// Count returns the number of errors added
func (ec *ErrCount) Count() int {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return ec.count
}

// Err returns the error summary so far or nil. The last error is
// wrapped so errors.Is and errors.As see it.
//
//	txt: last error
//	txt: 3 errors, last was: last error
//
// Thread safe.
func (ec *ErrCount) Err(txt string) error {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	switch ec.count {
	case 0:
		return nil
	case 1:
		return errors.Wrap(ec.lastErr, txt)
	}
	return errors.Wrapf(ec.lastErr, "%s: %d errors, last was", txt, ec.count)
}
