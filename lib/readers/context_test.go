package readers

import (
	"context"
	"io/ioutil"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextReader(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := NewContextReader(ctx, iotest.OneByteReader(strings.NewReader("hello")))

	buf := make([]byte, 3)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	cancel()
	n, err = r.Read(buf)
	assert.Equal(t, 0, n)
	assert.Equal(t, context.Canceled, err)
}

func TestContextReaderAll(t *testing.T) {
	got, err := ioutil.ReadAll(NewContextReader(context.Background(), strings.NewReader("hello")))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}
