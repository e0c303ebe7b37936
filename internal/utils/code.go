package utils // package utils provides helpers for join codes and participant tokens

import (
	"crypto/rand" // secure random number generation
	"math/big"    // big.Int for unbiased modular draws
)

// codeAlphabet is the character set for join codes.  Ambiguous glyphs
// (0/O, 1/I/L) are excluded because codes are read aloud and typed by
// hand.  Codes are always upper case; lookups upper-case their input.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// JoinCodeLength is the number of characters in a join code.  Six
// characters over a 31-symbol alphabet give ~887 million codes, ample
// for the live-session space the store holds at any one time.
const JoinCodeLength = 6

// NewJoinCode returns a random join code.  Uniqueness against live
// sessions is not checked here; the caller creates the session with
// the code and regenerates when the store reports a collision.
func NewJoinCode() (string, error) {
	buf := make([]byte, JoinCodeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		// rand.Int performs rejection sampling, so every symbol is
		// drawn with equal probability.
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
