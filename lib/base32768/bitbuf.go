package base32768

// bitBuffer accumulates bits MSB first. value holds the n most
// recently pushed bits in its low end.
//
// Callers keep n below 23 which is what a drained buffer (< 8 bits)
// plus one large group needs.
type bitBuffer struct {
	value uint32
	n     uint
}

// pushOctet appends the 8 bits of b
func (b *bitBuffer) pushOctet(c byte) {
	b.value = b.value<<8 | uint32(c)
	b.n += 8
}

// pushGroup appends the low width bits of v
func (b *bitBuffer) pushGroup(v uint16, width uint) {
	b.value = b.value<<width | uint32(v)&(1<<width-1)
	b.n += width
}

// popGroup removes and returns the width oldest bits
func (b *bitBuffer) popGroup(width uint) uint16 {
	b.n -= width
	v := uint16(b.value >> b.n & (1<<width - 1))
	b.value &= 1<<b.n - 1
	return v
}

// popOctet removes and returns the 8 oldest bits
func (b *bitBuffer) popOctet() byte {
	return byte(b.popGroup(8))
}

// remaining returns the number of bits held
func (b *bitBuffer) remaining() uint {
	return b.n
}

// padded empties the buffer returning the held bits left aligned in a
// width bit word with the unused low bits set to 1.
func (b *bitBuffer) padded(width uint) uint16 {
	pad := width - b.n
	v := uint16(b.value<<pad | (1<<pad - 1))
	b.value, b.n = 0, 0
	return v
}

// isPadding reports whether every held bit is a 1, which is what the
// encoder writes into the unused end of the last symbol.
func (b *bitBuffer) isPadding() bool {
	return b.value == 1<<b.n-1
}
