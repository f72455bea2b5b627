// Package payload wraps binary payloads in a one byte compression
// header and turns them into base32768 text for the chat channel.
package payload

import (
	"fmt"
	"strings"
	"sync"

	"github.com/chatlink/chatlink/lib/base32768"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// MaxDecodedSize is the largest payload Decompress will produce
const MaxDecodedSize = 16 << 20

// Method is the compression applied to a payload body
type Method byte

// Compression methods. The values are written to the wire so must
// not change.
const (
	None Method = iota
	Snappy
	Zstd
)

var methodToString = []string{
	None:   "none",
	Snappy: "snappy",
	Zstd:   "zstd",
}

// Errors returned by Decompress
var (
	ErrEmptyFrame    = errors.New("empty payload frame")
	ErrUnknownMethod = errors.New("unknown compression method")
	ErrTooLarge      = errors.New("payload exceeds maximum decoded size")
)

// String turns a Method into a string
func (m Method) String() string {
	if int(m) >= len(methodToString) {
		return fmt.Sprintf("Method(%d)", m)
	}
	return methodToString[m]
}

// Set a Method from its name
func (m *Method) Set(s string) error {
	parsed, err := ParseMethod(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Type of the value
func (m *Method) Type() string {
	return "string"
}

// ParseMethod parses a compression method name, "" meaning none
func ParseMethod(s string) (Method, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return None, nil
	}
	for n, name := range methodToString {
		if name == s {
			return Method(n), nil
		}
	}
	return None, errors.Errorf("unknown compression method %q: use none, snappy or zstd", s)
}

var (
	zstdOnce sync.Once
	zstdEnc  *zstd.Encoder
	zstdDec  *zstd.Decoder
	zstdErr  error
)

// zstdCoders returns the shared zstd encoder and decoder. EncodeAll
// and DecodeAll may be called concurrently on them.
func zstdCoders() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEnc, zstdErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if zstdErr != nil {
			return
		}
		zstdDec, zstdErr = zstd.NewReader(nil,
			zstd.WithDecoderMaxMemory(MaxDecodedSize),
			zstd.WithDecoderMaxWindow(MaxDecodedSize))
	})
	return zstdEnc, zstdDec, zstdErr
}

// Compress returns the frame for data: the method byte followed by
// the body compressed with m.
func Compress(data []byte, m Method) ([]byte, error) {
	frame := []byte{byte(m)}
	switch m {
	case None:
		return append(frame, data...), nil
	case Snappy:
		return append(frame, snappy.Encode(nil, data)...), nil
	case Zstd:
		enc, _, err := zstdCoders()
		if err != nil {
			return nil, errors.Wrap(err, "zstd setup failed")
		}
		return enc.EncodeAll(data, frame), nil
	}
	return nil, errors.Wrapf(ErrUnknownMethod, "compress %v", m)
}

// Decompress reverses Compress
func Decompress(frame []byte) ([]byte, error) {
	if len(frame) == 0 {
		return nil, ErrEmptyFrame
	}
	m, body := Method(frame[0]), frame[1:]
	switch m {
	case None:
		if len(body) > MaxDecodedSize {
			return nil, ErrTooLarge
		}
		return append([]byte(nil), body...), nil
	case Snappy:
		n, err := snappy.DecodedLen(body)
		if err != nil {
			return nil, errors.Wrap(err, "snappy decompress failed")
		}
		if n > MaxDecodedSize {
			return nil, ErrTooLarge
		}
		out, err := snappy.Decode(nil, body)
		if err != nil {
			return nil, errors.Wrap(err, "snappy decompress failed")
		}
		return out, nil
	case Zstd:
		_, dec, err := zstdCoders()
		if err != nil {
			return nil, errors.Wrap(err, "zstd setup failed")
		}
		out, err := dec.DecodeAll(body, nil)
		// a frame declaring more than the limit fails the window check
		// before any output is produced
		if errors.Is(err, zstd.ErrDecoderSizeExceeded) ||
			errors.Is(err, zstd.ErrWindowSizeExceeded) ||
			len(out) > MaxDecodedSize {
			return nil, ErrTooLarge
		}
		if err != nil {
			return nil, errors.Wrap(err, "zstd decompress failed")
		}
		return out, nil
	}
	return nil, errors.Wrapf(ErrUnknownMethod, "method byte 0x%02x", frame[0])
}

// Pack compresses data with m and encodes the frame as base32768
func Pack(data []byte, m Method) (string, error) {
	frame, err := Compress(data, m)
	if err != nil {
		return "", err
	}
	return base32768.Encode(frame), nil
}

// Unpack decodes text made by Pack and decompresses it
func Unpack(text string) ([]byte, error) {
	frame, err := base32768.Decode(text)
	if err != nil {
		return nil, err
	}
	return Decompress(frame)
}
