package base32768

import (
	"fmt"

	"github.com/pkg/errors"
)

// Tag identifies which alphabet a symbol belongs to.
type Tag byte

// Alphabet tags
const (
	TagLarge Tag = iota // 15 bit symbols
	TagTail             // 7 bit symbols, only ever the last symbol
)

// String turns a Tag into a human readable string
func (t Tag) String() string {
	switch t {
	case TagLarge:
		return "large"
	case TagTail:
		return "tail"
	}
	return fmt.Sprintf("Tag(%d)", byte(t))
}

const (
	largeBits = 15
	tailBits  = 7
	largeSize = 1 << largeBits
	tailSize  = 1 << tailBits

	// every range below is made of whole blocks of 32 code points
	blockBits = 5
	blockSize = 1 << blockBits
	blockMask = blockSize - 1
	numBlocks = 0x10000 >> blockBits
)

// codeRange is an inclusive range of code points
type codeRange struct {
	lo, hi rune
}

// largeRanges are the code points of the large alphabet in index
// order. None of them are whitespace, control characters, combining
// marks or altered by Unicode normalisation.
var largeRanges = []codeRange{
	{0x04A0, 0x04BF}, {0x0500, 0x051F}, {0x0680, 0x06BF}, {0x0760, 0x079F},
	{0x07C0, 0x07DF}, {0x1000, 0x101F}, {0x10A0, 0x10BF}, {0x1100, 0x115F},
	{0x1180, 0x119F}, {0x11E0, 0x123F}, {0x1260, 0x127F}, {0x12E0, 0x12FF},
	{0x1320, 0x133F}, {0x13A0, 0x13DF}, {0x1420, 0x165F}, {0x16A0, 0x16DF},
	{0x1780, 0x179F}, {0x1820, 0x185F}, {0x18C0, 0x18DF}, {0x1980, 0x199F},
	{0x19E0, 0x19FF}, {0x1A20, 0x1A3F}, {0x1BC0, 0x1BDF}, {0x1C00, 0x1C1F},
	{0x1D00, 0x1D1F}, {0x21E0, 0x21FF}, {0x22C0, 0x22DF}, {0x2340, 0x23DF},
	{0x2400, 0x241F}, {0x2500, 0x275F}, {0x2780, 0x27BF}, {0x2800, 0x297F},
	{0x29A0, 0x29BF}, {0x2A20, 0x2A5F}, {0x2A80, 0x2ABF}, {0x2AE0, 0x2B5F},
	{0x2C00, 0x2C1F}, {0x2C80, 0x2CDF}, {0x2D00, 0x2D1F}, {0x2D40, 0x2D5F},
	{0x2EA0, 0x2EDF}, {0x31C0, 0x31DF}, {0x3400, 0x4D9F}, {0x4DC0, 0x9FBF},
	{0xA000, 0xA47F}, {0xA4A0, 0xA4BF}, {0xA500, 0xA5FF}, {0xA640, 0xA65F},
	{0xA6A0, 0xA6DF}, {0xA700, 0xA75F}, {0xA780, 0xA79F}, {0xA840, 0xA85F},
}

// tailRanges are the code points of the tail alphabet in index order
var tailRanges = []codeRange{
	{0x0180, 0x019F}, {0x0240, 0x029F},
}

// ErrBadIndex is returned by Symbol for an index outside the alphabet.
// Seeing it means there is a bug in the caller.
var ErrBadIndex = errors.New("base32768: symbol index out of range")

// alphabet holds both directions of the symbol mapping. It is built
// once at init and never written again.
type alphabet struct {
	large [largeSize >> blockBits]uint16 // first code point of each block
	tail  [tailSize >> blockBits]uint16
	// reverse maps a block (code point >> blockBits) to its entry.
	// Zero means not in the alphabet, otherwise bit 15 is the tag and
	// the low bits are (block index + 1).
	reverse [numBlocks]uint16
}

const (
	reverseTailFlag = 1 << 15
	reverseMask     = reverseTailFlag - 1
)

var table = newAlphabet()

// fillBlocks writes the first code point of each block in ranges into
// out, returning the number of blocks written.
func fillBlocks(out []uint16, ranges []codeRange) int {
	n := 0
	for _, cr := range ranges {
		if cr.lo&blockMask != 0 || cr.hi&blockMask != blockMask {
			panic(fmt.Sprintf("base32768: range %04X-%04X is not block aligned", cr.lo, cr.hi))
		}
		for start := cr.lo; start < cr.hi; start += blockSize {
			if n >= len(out) {
				panic("base32768: too many code points in alphabet")
			}
			out[n] = uint16(start)
			n++
		}
	}
	return n
}

func newAlphabet() *alphabet {
	a := new(alphabet)
	if n := fillBlocks(a.large[:], largeRanges); n != len(a.large) {
		panic(fmt.Sprintf("base32768: large alphabet has %d blocks, want %d", n, len(a.large)))
	}
	if n := fillBlocks(a.tail[:], tailRanges); n != len(a.tail) {
		panic(fmt.Sprintf("base32768: tail alphabet has %d blocks, want %d", n, len(a.tail)))
	}
	add := func(start uint16, entry uint16) {
		block := start >> blockBits
		if a.reverse[block] != 0 {
			panic(fmt.Sprintf("base32768: code point %04X appears twice", start))
		}
		a.reverse[block] = entry
	}
	for i, start := range a.large {
		add(start, uint16(i+1))
	}
	for i, start := range a.tail {
		add(start, reverseTailFlag|uint16(i+1))
	}
	return a
}

// symbol returns the code point for index without range checks
func (a *alphabet) symbol(tag Tag, index uint16) rune {
	if tag == TagTail {
		return rune(a.tail[index>>blockBits] | index&blockMask)
	}
	return rune(a.large[index>>blockBits] | index&blockMask)
}

// lookup returns the tag and index of r
func (a *alphabet) lookup(r rune) (tag Tag, index uint16, ok bool) {
	if r < 0 || r > 0xFFFF {
		return 0, 0, false
	}
	entry := a.reverse[r>>blockBits]
	if entry == 0 {
		return 0, 0, false
	}
	index = (entry&reverseMask-1)<<blockBits | uint16(r)&blockMask
	if entry&reverseTailFlag != 0 {
		return TagTail, index, true
	}
	return TagLarge, index, true
}

// Size returns the number of symbols in the alphabet for tag
func Size(tag Tag) int {
	if tag == TagTail {
		return tailSize
	}
	return largeSize
}

// Symbol returns the code point with the given index in the alphabet
// selected by tag.
func Symbol(tag Tag, index int) (rune, error) {
	if index < 0 || index >= Size(tag) {
		return 0, errors.Wrapf(ErrBadIndex, "%v index %d", tag, index)
	}
	return table.symbol(tag, uint16(index)), nil
}

// Lookup returns the alphabet and index of r. ok is false if r is not
// a symbol of either alphabet.
func Lookup(r rune) (tag Tag, index int, ok bool) {
	tag, i, ok := table.lookup(r)
	return tag, int(i), ok
}
