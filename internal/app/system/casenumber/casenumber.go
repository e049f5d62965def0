// Package casenumber generates human-facing case numbers of the form
// FXV-YYYY-NNNNNN.
//
// The six-digit suffix is random rather than sequential; the unique
// index on the cases collection is the arbiter, and callers retry
// with a fresh number on a duplicate-key insert.
package casenumber

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const prefix = "FXV"

var suffixMax = big.NewInt(1_000_000)

// Generate returns a new candidate case number for the current year.
func Generate(now time.Time) string {
	n, err := rand.Int(rand.Reader, suffixMax)
	if err != nil {
		// crypto/rand only fails when the OS entropy source is
		// broken; fall back to the clock rather than panic.
		n = big.NewInt(now.UnixNano() % 1_000_000)
	}
	return fmt.Sprintf("%s-%d-%06d", prefix, now.Year(), n.Int64())
}
