// Package readers contains io.Reader helpers
package readers

import (
	"context"
	"io"
)

// NewContextReader returns a reader which stops with ctx's error once
// ctx is done. A Read already blocked in r is not interrupted.
func NewContextReader(ctx context.Context, r io.Reader) io.Reader {
	return &contextReader{
		ctx: ctx,
		r:   r,
	}
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

// Read bytes as per io.Reader interface
func (cr *contextReader) Read(p []byte) (n int, err error) {
	if err = cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
