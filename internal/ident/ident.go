// Package ident generates the short identifiers used for public image ids
// and delete tokens.
package ident

import (
	"crypto/rand"
	"math/big"
)

// Alphabet leaves out characters that are easy to misread when an id is
// typed by hand: 0/O, 1/l/I. 57 characters, 10 positions, ~57^10 ids.
const Alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// Length of every generated id and token.
const Length = 10

var alphabetSize = big.NewInt(int64(len(Alphabet)))

// New returns a fresh random identifier. Uniqueness is probabilistic; callers
// that need a hard guarantee must check against their own records.
func New() string {
	buf := make([]byte, Length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			// crypto/rand only fails when the platform source is broken,
			// at which point serving uploads is the lesser problem.
			panic("ident: crypto/rand unavailable: " + err.Error())
		}
		buf[i] = Alphabet[n.Int64()]
	}
	return string(buf)
}
