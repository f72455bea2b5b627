package base32768

import (
	"io"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ErrClosed is returned when writing to a closed encoder
var ErrClosed = errors.New("base32768: write to closed encoder")

// chunkSize is how many input bytes the encoder turns into text
// before handing it to the underlying writer
const chunkSize = 4096

type encoder struct {
	w      io.Writer
	buf    bitBuffer
	sym    []rune
	out    []byte
	err    error
	closed bool
}

// NewEncoder returns a new base32768 stream encoder. Data written to
// the returned writer is encoded and written to w as UTF-8 text.
//
// Close must be called to write the final symbol. Closing the encoder
// does not close w.
func NewEncoder(w io.Writer) io.WriteCloser {
	return &encoder{
		w:   w,
		sym: make([]rune, 0, EncodedLen(chunkSize)+1),
		out: make([]byte, 0, MaxEncodedSize(chunkSize)+3),
	}
}

// flush writes the pending symbols to w
func (e *encoder) flush() error {
	e.out = e.out[:0]
	for _, r := range e.sym {
		e.out = utf8.AppendRune(e.out, r)
	}
	e.sym = e.sym[:0]
	if len(e.out) == 0 {
		return nil
	}
	_, e.err = e.w.Write(e.out)
	return e.err
}

// Write encodes p
func (e *encoder) Write(p []byte) (n int, err error) {
	if e.err != nil {
		return 0, e.err
	}
	if e.closed {
		return 0, ErrClosed
	}
	for len(p) > 0 {
		chunk := p
		if len(chunk) > chunkSize {
			chunk = chunk[:chunkSize]
		}
		e.sym = encodeBytes(e.sym, &e.buf, chunk)
		if err = e.flush(); err != nil {
			return n, err
		}
		n += len(chunk)
		p = p[len(chunk):]
	}
	return n, nil
}

// Close writes out the final symbol
func (e *encoder) Close() error {
	if e.closed || e.err != nil {
		return e.err
	}
	e.closed = true
	e.sym = encodeFinish(e.sym, &e.buf)
	return e.flush()
}

type streamDecoder struct {
	r   io.Reader
	dec decoder
	in  [1024]byte
	nin int
	out []byte
	off int
	err error // returned once out is drained
}

// NewDecoder returns a new base32768 stream decoder reading UTF-8 text
// from r.
//
// Unlike Decode, bytes decoded before an error in the input has been
// found are returned by Read before the error is.
func NewDecoder(r io.Reader) io.Reader {
	return &streamDecoder{r: r}
}

// decodeBuffered decodes every complete code point in the input
// buffer. At EOF incomplete UTF-8 is decoded too so it is reported.
func (d *streamDecoder) decodeBuffered(atEOF bool) {
	i := 0
	for i < d.nin {
		if !atEOF && !utf8.FullRune(d.in[i:d.nin]) {
			break
		}
		r, size := utf8.DecodeRune(d.in[i:d.nin])
		var err error
		d.out, err = d.dec.symbol(d.out, r)
		if err != nil {
			d.err = err
			return
		}
		i += size
	}
	d.nin = copy(d.in[:], d.in[i:d.nin])
}

// fill reads more input and decodes it
func (d *streamDecoder) fill() {
	n, err := d.r.Read(d.in[d.nin:])
	d.nin += n
	atEOF := err == io.EOF
	d.decodeBuffered(atEOF)
	switch {
	case d.err != nil:
	case err == nil:
	case !atEOF:
		d.err = err
	default:
		if err = d.dec.finish(); err != nil {
			d.err = err
		} else {
			d.err = io.EOF
		}
	}
}

// Read decodes into p
func (d *streamDecoder) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	for d.off == len(d.out) {
		d.out, d.off = d.out[:0], 0
		if d.err != nil {
			return 0, d.err
		}
		d.fill()
	}
	n = copy(p, d.out[d.off:])
	d.off += n
	return n, nil
}
