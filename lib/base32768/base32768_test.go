package base32768

import (
	"bytes"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/chatlink/chatlink/lib/random"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var decodeSentinels = []error{
	ErrInvalidSymbol,
	ErrTrailingSymbolsAfterTail,
	ErrUnalignedLargeOnlyStream,
	ErrMalformedTail,
}

// assertCorrupt checks err is one of the documented decode failures
func assertCorrupt(t *testing.T, err error) {
	t.Helper()
	var ce *CorruptInputError
	require.True(t, errors.As(err, &ce), "want *CorruptInputError got %T: %v", err, err)
	for _, sentinel := range decodeSentinels {
		if errors.Is(err, sentinel) {
			return
		}
	}
	t.Fatalf("unknown decode error %v", err)
}

// checkEncoding checks the structural properties of an encoding of n bytes
func checkEncoding(t *testing.T, n int, encoded string) {
	t.Helper()
	symbols := []rune(encoded)
	require.Equal(t, (8*n+14)/15, len(symbols), "length of encoding of %d bytes", n)
	for i, r := range symbols {
		tag, _, ok := Lookup(r)
		require.True(t, ok, "U+%04X at %d not in alphabet", r, i)
		if tag == TagTail {
			require.Equal(t, len(symbols)-1, i, "tail symbol not last")
		}
	}
}

func roundTrip(t *testing.T, in []byte) string {
	t.Helper()
	encoded := Encode(in)
	checkEncoding(t, len(in), encoded)
	out, err := Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, len(in), len(out))
	require.True(t, bytes.Equal(in, out), "round trip of %d bytes", len(in))
	return encoded
}

func TestEmpty(t *testing.T) {
	assert.Equal(t, "", Encode(nil))
	assert.Equal(t, "", Encode([]byte{}))
	out, err := Decode("")
	require.NoError(t, err)
	assert.Len(t, out, 0)
}

func TestScenarios(t *testing.T) {
	for _, test := range []struct {
		name string
		in   []byte
		want string
	}{
		// 8 bits go in one large symbol with 7 bits of padding
		{"one zero", []byte{0x00}, "\u06BF"},
		// 15 bits in a large symbol then 1 bit in the tail
		{"two zeros", []byte{0x00, 0x00}, "\u04A0\u025F"},
		{"fifteen zeros", make([]byte, 15), strings.Repeat("\u04A0", 8)},
		{"one ff", []byte{0xFF}, "\uA85F"},
		{"fourteen ff", bytes.Repeat([]byte{0xFF}, 14), strings.Repeat("\uA85F", 7) + "\u029F"},
	} {
		t.Run(test.name, func(t *testing.T) {
			got := Encode(test.in)
			assert.Equal(t, test.want, got)
			roundTrip(t, test.in)
		})
	}
}

func TestScenarioOneZeroIsLarge(t *testing.T) {
	symbols := []rune(Encode([]byte{0x00}))
	require.Len(t, symbols, 1)
	tag, index, ok := Lookup(symbols[0])
	require.True(t, ok)
	assert.Equal(t, TagLarge, tag)
	assert.Equal(t, 0x7F, index)
}

func TestScenarioTwoZerosHasTail(t *testing.T) {
	symbols := []rune(Encode([]byte{0x00, 0x00}))
	require.Len(t, symbols, 2)
	tag, _, _ := Lookup(symbols[0])
	assert.Equal(t, TagLarge, tag)
	tag, _, _ = Lookup(symbols[1])
	assert.Equal(t, TagTail, tag)
}

func TestSeededThousand(t *testing.T) {
	in := random.SeededBytes(0, 1000)
	encoded := roundTrip(t, in)
	assert.Equal(t, 534, utf8.RuneCountInString(encoded))
}

func TestDecodeASCII(t *testing.T) {
	_, err := Decode("A")
	var ce *CorruptInputError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrInvalidSymbol, ce.Err)
	assert.Equal(t, 0, ce.Position)
	assert.Equal(t, 'A', ce.CodePoint)
}

func TestDecodeSecondTail(t *testing.T) {
	tail, err := Symbol(TagTail, 0x7F)
	require.NoError(t, err)

	// 16 bits ends in a tail already
	encoded := Encode([]byte{0x01, 0x02})
	_, err = Decode(encoded + string(tail))
	assert.True(t, errors.Is(err, ErrTrailingSymbolsAfterTail))
	var ce *CorruptInputError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 2, ce.Position)

	// 24 bits ends in a padded large symbol so two tails are needed
	encoded = Encode([]byte{0x01, 0x02, 0x03})
	_, err = Decode(encoded + string(tail) + string(tail))
	assert.True(t, errors.Is(err, ErrTrailingSymbolsAfterTail))
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 3, ce.Position)
}

func TestDecodeErrors(t *testing.T) {
	large0 := "\u04A0"
	largeFF := "\uA85F"
	tail0 := "\u0180"
	tailFF := "\u029F"
	for _, test := range []struct {
		name      string
		in        string
		err       error
		pos       int
		codePoint rune
	}{
		{"ascii", "A", ErrInvalidSymbol, 0, 'A'},
		{"ascii after symbols", largeFF + largeFF + "z", ErrInvalidSymbol, 2, 'z'},
		{"space", largeFF + " ", ErrInvalidSymbol, 1, ' '},
		{"newline", "\n", ErrInvalidSymbol, 0, '\n'},
		{"bad utf8", "\xff", ErrInvalidSymbol, 0, utf8.RuneError},
		{"truncated utf8", largeFF + "\xd2", ErrInvalidSymbol, 1, utf8.RuneError},
		{"astral", "\U0001F600", ErrInvalidSymbol, 0, 0x1F600},
		{"lone tail", tailFF, ErrMalformedTail, 0, 0},
		{"tail after whole octets", strings.Repeat(large0, 8) + tailFF, ErrMalformedTail, 8, 0},
		{"tail padding zero", large0 + tail0, ErrMalformedTail, 1, 0},
		{"large padding zero", large0, ErrUnalignedLargeOnlyStream, 1, 0},
		{"large padding zero after data", largeFF + large0, ErrUnalignedLargeOnlyStream, 2, 0},
		{"large after tail", large0 + tailFF + largeFF, ErrTrailingSymbolsAfterTail, 2, 0},
		{"invalid after tail", large0 + tailFF + "A", ErrTrailingSymbolsAfterTail, 2, 0},
	} {
		t.Run(test.name, func(t *testing.T) {
			out, err := Decode(test.in)
			assert.Nil(t, out)
			var ce *CorruptInputError
			require.True(t, errors.As(err, &ce), "got %v", err)
			assert.Equal(t, test.err, ce.Err)
			assert.True(t, errors.Is(err, test.err))
			assert.Equal(t, test.err, errors.Cause(err))
			assert.Equal(t, test.pos, ce.Position)
			assert.Equal(t, test.codePoint, ce.CodePoint)

			out, err = DecodeRunes([]rune(test.in))
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, test.err))
		})
	}
}

func TestCorruptInputErrorString(t *testing.T) {
	err := &CorruptInputError{Err: ErrInvalidSymbol, Position: 3, CodePoint: 'A'}
	assert.Equal(t, "base32768: not a base32768 symbol U+0041 at position 3", err.Error())
	err = &CorruptInputError{Err: ErrMalformedTail, Position: 7}
	assert.Equal(t, "base32768: malformed tail symbol at position 7", err.Error())
}

func TestRoundTripShort(t *testing.T) {
	for n := 0; n <= 64; n++ {
		roundTrip(t, make([]byte, n))
		roundTrip(t, bytes.Repeat([]byte{0xFF}, n))
		for i := 0; i < 16; i++ {
			roundTrip(t, random.SeededBytes(int64(n*100+i), n))
		}
	}
}

func TestRoundTripLong(t *testing.T) {
	sizes := []int{1000, 4095, 4096, 4097, 65535, 65536}
	if !testing.Short() {
		sizes = append(sizes, 1<<20)
	}
	for _, n := range sizes {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			roundTrip(t, random.Bytes(n))
		})
	}
}

func TestEveryBitPosition(t *testing.T) {
	// a single set bit anywhere in the input survives
	for n := 1; n <= 16; n++ {
		for bit := 0; bit < 8*n; bit++ {
			in := make([]byte, n)
			in[bit/8] = 0x80 >> (bit % 8)
			roundTrip(t, in)
		}
	}
}

func TestAppendEncode(t *testing.T) {
	in := random.Bytes(100)
	prefix := []rune("§")
	out := AppendEncode(prefix, in)
	assert.Equal(t, '§', out[0])
	assert.Equal(t, Encode(in), string(out[1:]))
	got, err := DecodeRunes(out[1:])
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestLengths(t *testing.T) {
	for n := 0; n < 200; n++ {
		want := (8*n + 14) / 15
		assert.Equal(t, want, EncodedLen(n))
		assert.Equal(t, want, utf8.RuneCountInString(Encode(make([]byte, n))))
		assert.LessOrEqual(t, len(Encode(random.Bytes(n))), MaxEncodedSize(n))
		assert.GreaterOrEqual(t, DecodedLen(EncodedLen(n)), n)
		// DecodedLen(n) bytes is the most that fits in n symbols
		assert.LessOrEqual(t, EncodedLen(DecodedLen(n)), n)
		assert.Greater(t, EncodedLen(DecodedLen(n)+1), n)
	}
}

// Replacing a symbol with one outside the alphabet is always caught
func TestPerturbForeign(t *testing.T) {
	for n := 1; n <= 40; n++ {
		in := random.Bytes(n)
		symbols := []rune(Encode(in))
		for i := range symbols {
			changed := append([]rune(nil), symbols...)
			changed[i] = 'A'
			_, err := DecodeRunes(changed)
			var ce *CorruptInputError
			require.True(t, errors.As(err, &ce))
			require.Equal(t, ErrInvalidSymbol, ce.Err)
			require.Equal(t, i, ce.Position)
		}
	}
}

// Replacing a symbol with another from the same alphabet never gives
// back the original bytes
func TestPerturbSameAlphabet(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for n := 1; n <= 40; n++ {
		in := random.SeededBytes(int64(n), n)
		symbols := []rune(Encode(in))
		for i := range symbols {
			for try := 0; try < 8; try++ {
				tag, index, ok := Lookup(symbols[i])
				require.True(t, ok)
				other := (index + 1 + rng.Intn(Size(tag)-1)) % Size(tag)
				changed := append([]rune(nil), symbols...)
				changed[i], _ = Symbol(tag, other)
				out, err := DecodeRunes(changed)
				if err != nil {
					require.True(t, errors.Is(err, ErrMalformedTail) || errors.Is(err, ErrUnalignedLargeOnlyStream), "got %v", err)
					continue
				}
				require.False(t, bytes.Equal(in, out))
			}
		}
	}
}

// Every prefix of an encoding decodes to a prefix of the input or fails
func TestTruncation(t *testing.T) {
	for n := 0; n <= 40; n++ {
		in := random.Bytes(n)
		symbols := []rune(Encode(in))
		for i := 0; i < len(symbols); i++ {
			out, err := DecodeRunes(symbols[:i])
			if err != nil {
				assertCorrupt(t, err)
				continue
			}
			require.Less(t, len(out), len(in))
			require.Equal(t, in[:len(out)], out)
		}
	}
}

// The decoder returns data or a documented error for any input
func TestDecodeTotal(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	pick := func() rune {
		switch rng.Intn(4) {
		case 0:
			r, _ := Symbol(TagTail, rng.Intn(tailSize))
			return r
		case 1:
			return rune(rng.Intn(0x10000))
		default:
			r, _ := Symbol(TagLarge, rng.Intn(largeSize))
			return r
		}
	}
	for i := 0; i < 10000; i++ {
		symbols := make([]rune, rng.Intn(12))
		for j := range symbols {
			symbols[j] = pick()
		}
		out, err := DecodeRunes(symbols)
		if err != nil {
			assert.Nil(t, out)
			assertCorrupt(t, err)
			continue
		}
		// anything accepted is an encoding of what it decoded to
		assert.Equal(t, string(symbols), Encode(out))
	}
}

func BenchmarkEncode(b *testing.B) {
	in := random.Bytes(64 * 1024)
	b.SetBytes(int64(len(in)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Encode(in)
	}
}

func BenchmarkDecode(b *testing.B) {
	in := random.Bytes(64 * 1024)
	encoded := Encode(in)
	b.SetBytes(int64(len(in)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := Decode(encoded)
		if err != nil {
			b.Fatal(err)
		}
	}
}
