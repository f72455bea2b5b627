package chat

import (
	"math/rand"
	"testing"
	"time"

	"github.com/chatlink/chatlink/lib/base32768"
	"github.com/chatlink/chatlink/lib/payload"
	"github.com/chatlink/chatlink/lib/random"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frames packs data and splits it
func frames(t *testing.T, id uint32, data []byte, m payload.Method, maxLen int) []string {
	text, err := payload.Pack(data, m)
	require.NoError(t, err)
	msgs, err := Split(id, text, maxLen)
	require.NoError(t, err)
	return msgs
}

func TestReassemblerInOrder(t *testing.T) {
	r := NewReassembler(time.Minute)
	data := random.Bytes(2000)
	msgs := frames(t, 1, data, payload.None, 50)
	require.Greater(t, len(msgs), 1)
	for i, msg := range msgs {
		got, complete, err := r.Add(msg)
		require.NoError(t, err)
		if i < len(msgs)-1 {
			assert.False(t, complete)
			assert.Nil(t, got)
			assert.Equal(t, 1, r.Pending())
		} else {
			assert.True(t, complete)
			assert.Equal(t, data, got)
		}
	}
	assert.Equal(t, 0, r.Pending())

	// repeats of a finished transfer are not delivered again
	for _, msg := range []string{msgs[0], msgs[len(msgs)-1]} {
		got, complete, err := r.Add(msg)
		require.NoError(t, err)
		assert.False(t, complete)
		assert.Nil(t, got)
	}
	assert.Equal(t, 0, r.Pending())
}

func TestReassemblerShuffledDuplicatedInterleaved(t *testing.T) {
	r := NewReassembler(0)
	a := random.Bytes(500)
	b := []byte("a much smaller payload")
	msgs := append(frames(t, 10, a, payload.Zstd, 20), frames(t, 11, b, payload.Snappy, 20)...)
	msgs = append(msgs, msgs[3], msgs[0])
	rnd := rand.New(rand.NewSource(1))
	rnd.Shuffle(len(msgs), func(i, j int) { msgs[i], msgs[j] = msgs[j], msgs[i] })

	var done [][]byte
	for _, msg := range msgs {
		got, complete, err := r.Add(msg)
		require.NoError(t, err)
		if complete {
			done = append(done, got)
		}
	}
	assert.ElementsMatch(t, [][]byte{a, b}, done)
}

func TestReassemblerErrors(t *testing.T) {
	r := NewReassembler(time.Minute)

	_, _, err := r.Add("just chatting")
	assert.Equal(t, ErrNotAFrame, err)

	// a transfer which changes its part count
	_, _, err = r.Add(Prefix + encodeHeader(5, 0, 3) + "ҠҠ")
	require.NoError(t, err)
	_, _, err = r.Add(Prefix + encodeHeader(5, 1, 4) + "ҠҠ")
	assert.True(t, errors.Is(err, ErrInconsistentCount))

	// complete transfers which don't unpack report the decode error
	_, _, err = r.Add(Prefix + encodeHeader(6, 0, 1) + "ҠA")
	assert.True(t, errors.Is(err, base32768.ErrInvalidSymbol))
	var ce *base32768.CorruptInputError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 1, ce.Position)
	assert.Equal(t, 'A', ce.CodePoint)
	assert.Equal(t, 1, r.Pending())
}

func TestReassemblerExpiry(t *testing.T) {
	r := NewReassembler(50 * time.Millisecond)
	msgs := frames(t, 9, random.Bytes(300), payload.None, 20)
	_, complete, err := r.Add(msgs[0])
	require.NoError(t, err)
	assert.False(t, complete)
	assert.Equal(t, 1, r.Pending())

	time.Sleep(100 * time.Millisecond)

	// the rest of the transfer starts a new one which can't complete
	for _, msg := range msgs[1:] {
		_, complete, err = r.Add(msg)
		require.NoError(t, err)
		assert.False(t, complete)
	}
}
