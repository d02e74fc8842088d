package state

import (
	"crypto/rand"
	"math/big"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewID returns a 9-character base-36 identifier. Uniqueness is
// probabilistic; collisions are never checked downstream, which is
// acceptable at personal-tracker collection sizes.
func NewID() string {
	buf := make([]byte, 9)
	max := big.NewInt(int64(len(idAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is
			// broken; fall back to a fixed character rather than panic.
			buf[i] = idAlphabet[0]
			continue
		}
		buf[i] = idAlphabet[n.Int64()]
	}
	return string(buf)
}

// NewSubjectID returns a subject identifier. The prefix keeps subject ids
// distinguishable from log and schedule ids.
func NewSubjectID() string {
	return "sub_" + NewID()
}
