// Package chat carries payloads over a text chat channel.
//
// A payload is packed into base32768 text, cut into messages which
// fit the channel's message length and sent at a rate the channel
// will accept. Each message is a frame:
//
//	Prefix | header (5 code points) | chunk of the packed text
//
// The header is the base32768 encoding of 8 bytes holding the
// transfer id, the part index and the part count, all big-endian.
package chat

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/chatlink/chatlink/lib/base32768"
	"github.com/pkg/errors"
)

// Prefix starts every frame. The SECTION SIGN is not a base32768
// symbol.
const Prefix = "\u00a7"

const (
	headerBytes = 8
	headerLen   = 5 // code points
	maxParts    = 1<<16 - 1
)

// Errors returned by the framing functions
var (
	ErrNotAFrame       = errors.New("not a chatlink frame")
	ErrBadHeader       = errors.New("corrupt frame header")
	ErrMessageTooShort = errors.New("message length too short for a frame")
	ErrTooManyParts    = errors.New("payload needs too many messages")
)

// Frame is one message of a transfer
type Frame struct {
	ID    uint32
	Index uint16
	Count uint16
	Chunk string
}

// String describes the frame for logging
func (f Frame) String() string {
	return fmt.Sprintf("transfer %08x part %d/%d", f.ID, int(f.Index)+1, f.Count)
}

func encodeHeader(id uint32, index, count uint16) string {
	var b [headerBytes]byte
	binary.BigEndian.PutUint32(b[0:], id)
	binary.BigEndian.PutUint16(b[4:], index)
	binary.BigEndian.PutUint16(b[6:], count)
	return base32768.Encode(b[:])
}

// Split cuts text into frames for transfer id, none longer than
// maxLen code points.
func Split(id uint32, text string, maxLen int) ([]string, error) {
	overhead := utf8.RuneCountInString(Prefix) + headerLen
	room := maxLen - overhead
	if room < 1 {
		return nil, errors.Wrapf(ErrMessageTooShort, "need at least %d code points, got %d", overhead+1, maxLen)
	}
	chunks := make([]string, 0, utf8.RuneCountInString(text)/room+1)
	start := 0
	for {
		end := start
		for n := 0; n < room && end < len(text); n++ {
			_, size := utf8.DecodeRuneInString(text[end:])
			end += size
		}
		chunks = append(chunks, text[start:end])
		start = end
		if start >= len(text) {
			break
		}
	}
	if len(chunks) > maxParts {
		return nil, errors.Wrapf(ErrTooManyParts, "%d messages of %d code points", len(chunks), maxLen)
	}
	count := uint16(len(chunks))
	msgs := make([]string, len(chunks))
	for i, chunk := range chunks {
		msgs[i] = Prefix + encodeHeader(id, uint16(i), count) + chunk
	}
	return msgs, nil
}

// ParseFrame parses a chat message. Ordinary chat lines give
// ErrNotAFrame.
func ParseFrame(msg string) (f Frame, err error) {
	msg = strings.TrimSpace(msg)
	if !strings.HasPrefix(msg, Prefix) {
		return f, ErrNotAFrame
	}
	rest := msg[len(Prefix):]
	end := 0
	for n := 0; n < headerLen; n++ {
		if end >= len(rest) {
			return f, errors.Wrap(ErrBadHeader, "message too short")
		}
		_, size := utf8.DecodeRuneInString(rest[end:])
		end += size
	}
	header, err := base32768.Decode(rest[:end])
	if err != nil {
		return f, errors.Wrapf(ErrBadHeader, "%v", err)
	}
	if len(header) != headerBytes {
		return f, errors.Wrapf(ErrBadHeader, "header is %d bytes", len(header))
	}
	f = Frame{
		ID:    binary.BigEndian.Uint32(header[0:]),
		Index: binary.BigEndian.Uint16(header[4:]),
		Count: binary.BigEndian.Uint16(header[6:]),
		Chunk: rest[end:],
	}
	if f.Count == 0 || f.Index >= f.Count {
		return Frame{}, errors.Wrapf(ErrBadHeader, "part %d of %d", f.Index, f.Count)
	}
	return f, nil
}
