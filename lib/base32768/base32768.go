// Package base32768 implements a binary to text encoding which packs
// 15 bits into every Unicode code point.
//
// All symbols are taken from the Basic Multilingual Plane so the
// encoded text counts the same in code points and in UTF-16 code
// units, and none of them are whitespace, control characters or
// altered by normalisation, which lets binary data survive a chat
// channel that only passes text.
//
// Whole 15 bit groups become symbols of the large alphabet. When the
// input ends 1 to 7 bits short of a group those bits go into a single
// symbol from the 128 entry tail alphabet, and 8 to 14 leftover bits go
// into one more large symbol. Unused low bits of that final symbol are
// set to 1. The decoder recovers the input length from this without a
// length prefix and only accepts text the encoder could have produced.
//
// The alphabets are those of the widely used Base32768 encoding so the
// output matches other implementations of it byte for byte.
package base32768

import (
	"strings"
)

// EncodedLen returns the number of code points in the encoding of n
// bytes.
func EncodedLen(n int) int {
	return (8*n + largeBits - 1) / largeBits
}

// MaxEncodedSize returns the maximum number of UTF-8 bytes in the
// encoding of n bytes.
func MaxEncodedSize(n int) int {
	return 3 * EncodedLen(n)
}

// DecodedLen returns the maximum number of bytes n code points can
// decode to. This is also the largest payload which encodes into at
// most n code points.
func DecodedLen(n int) int {
	return n * largeBits / 8
}

// encodeBytes appends the symbols for each 15 bit group completed by
// src to dst, leaving any partial group in buf.
func encodeBytes(dst []rune, buf *bitBuffer, src []byte) []rune {
	for _, c := range src {
		buf.pushOctet(c)
		for buf.remaining() >= largeBits {
			dst = append(dst, table.symbol(TagLarge, buf.popGroup(largeBits)))
		}
	}
	return dst
}

// encodeFinish appends the final symbol for the bits left in buf, if
// any.
func encodeFinish(dst []rune, buf *bitBuffer) []rune {
	switch n := buf.remaining(); {
	case n == 0:
	case n <= tailBits:
		dst = append(dst, table.symbol(TagTail, buf.padded(tailBits)))
	default:
		dst = append(dst, table.symbol(TagLarge, buf.padded(largeBits)))
	}
	return dst
}

// AppendEncode appends the encoding of src to dst and returns the
// extended slice.
func AppendEncode(dst []rune, src []byte) []rune {
	var buf bitBuffer
	dst = encodeBytes(dst, &buf, src)
	return encodeFinish(dst, &buf)
}

// Encode returns the encoding of src. Encoding never fails.
func Encode(src []byte) string {
	if len(src) == 0 {
		return ""
	}
	symbols := AppendEncode(make([]rune, 0, EncodedLen(len(src))), src)
	var sb strings.Builder
	sb.Grow(MaxEncodedSize(len(src)))
	for _, r := range symbols {
		sb.WriteRune(r)
	}
	return sb.String()
}

// decodeState tracks where the decoder is in the input
type decodeState byte

const (
	stateStreaming decodeState = iota // only large symbols seen
	stateAfterTail                    // the tail symbol has been seen
	stateDone                         // input ended cleanly
	stateFailed                       // err is set
)

// decoder turns symbols back into bytes one code point at a time
type decoder struct {
	buf   bitBuffer
	state decodeState
	pos   int // code points accepted so far
	err   error
}

func (d *decoder) fail(sentinel error, pos int, r rune) error {
	d.state = stateFailed
	d.err = corrupt(sentinel, pos, r)
	return d.err
}

// symbol decodes r appending any completed bytes to dst
func (d *decoder) symbol(dst []byte, r rune) ([]byte, error) {
	switch d.state {
	case stateFailed:
		return dst, d.err
	case stateAfterTail, stateDone:
		return dst, d.fail(ErrTrailingSymbolsAfterTail, d.pos, 0)
	}
	tag, index, ok := table.lookup(r)
	switch {
	case !ok:
		return dst, d.fail(ErrInvalidSymbol, d.pos, r)
	case tag == TagTail:
		// a tail with nothing before it in the buffer carries no data
		if d.buf.remaining() == 0 {
			return dst, d.fail(ErrMalformedTail, d.pos, 0)
		}
		d.buf.pushGroup(index, tailBits)
		d.state = stateAfterTail
	default:
		d.buf.pushGroup(index, largeBits)
	}
	d.pos++
	for d.buf.remaining() >= 8 {
		dst = append(dst, d.buf.popOctet())
	}
	return dst, nil
}

// finish checks what is left over once the input has ended
func (d *decoder) finish() error {
	switch d.state {
	case stateFailed:
		return d.err
	case stateDone:
		return nil
	}
	if !d.buf.isPadding() {
		if d.state == stateAfterTail {
			return d.fail(ErrMalformedTail, d.pos-1, 0)
		}
		return d.fail(ErrUnalignedLargeOnlyStream, d.pos, 0)
	}
	d.state = stateDone
	return nil
}

// Decode returns the bytes encoded by s.
//
// On failure it returns a *CorruptInputError and no data. Invalid
// UTF-8 in s is reported as ErrInvalidSymbol for U+FFFD.
func Decode(s string) ([]byte, error) {
	var d decoder
	// every symbol is at least 2 bytes of UTF-8
	dst := make([]byte, 0, DecodedLen(len(s)/2))
	var err error
	for _, r := range s {
		dst, err = d.symbol(dst, r)
		if err != nil {
			return nil, err
		}
	}
	if err = d.finish(); err != nil {
		return nil, err
	}
	return dst, nil
}

// DecodeRunes is like Decode for text already split into code points
func DecodeRunes(src []rune) ([]byte, error) {
	var d decoder
	dst := make([]byte, 0, DecodedLen(len(src)))
	var err error
	for _, r := range src {
		dst, err = d.symbol(dst, r)
		if err != nil {
			return nil, err
		}
	}
	if err = d.finish(); err != nil {
		return nil, err
	}
	return dst, nil
}
