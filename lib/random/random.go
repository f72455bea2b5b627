// Package random holds a few functions for working with random numbers
package random

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	mathrand "math/rand"

	"github.com/pkg/errors"
)

// String create a random string for test purposes.
//
// Do not use these for passwords.
func String(n int) string {
	const (
		vowel     = "aeiou"
		consonant = "bcdfghjklmnpqrstvwxyz"
		digit     = "0123456789"
	)
	pattern := []string{consonant, vowel, consonant, vowel, consonant, vowel, consonant, digit}
	out := make([]byte, n)
	p := 0
	for i := range out {
		source := pattern[p]
		p = (p + 1) % len(pattern)
		out[i] = source[mathrand.Intn(len(source))]
	}
	return string(out)
}

// Bytes returns n bytes from math/rand for test payloads
func Bytes(n int) []byte {
	out := make([]byte, n)
	_, _ = mathrand.Read(out)
	return out
}

// SeededBytes returns n bytes which depend only on seed, so a test
// payload can be reproduced exactly.
func SeededBytes(seed int64, n int) []byte {
	out := make([]byte, n)
	_, _ = mathrand.New(mathrand.NewSource(seed)).Read(out)
	return out
}

// Uint32 returns a crypto strong random number, used where values
// from different processes must not collide by accident.
func Uint32() (uint32, error) {
	var buf [4]byte
	n, err := cryptorand.Read(buf[:])
	if err != nil {
		return 0, errors.Wrap(err, "random read failed")
	}
	if n != len(buf) {
		return 0, errors.Errorf("random short read: %d", n)
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}
