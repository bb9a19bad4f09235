// Package id generates identifiers for projects and tasks.
package id

import (
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SuffixLength is the number of base-36 characters appended after the timestamp.
const SuffixLength = 6

// Generator produces a fresh identifier for the given prefix.
type Generator func(prefix string) string

// New returns prefix + "_" + base36(unix millis) + a short random suffix.
// Uniqueness is probabilistic; collisions are not detected.
func New(prefix string) string {
	return prefix + "_" + strconv.FormatInt(time.Now().UnixMilli(), 36) + randomSuffix()
}

// randomSuffix derives SuffixLength base-36 characters from a v4 UUID.
func randomSuffix() string {
	u := uuid.New()
	n := new(big.Int).SetBytes(u[:])
	s := n.Text(36)
	for len(s) < SuffixLength {
		s = "0" + s
	}
	return s[len(s)-SuffixLength:]
}

// Sequence returns a deterministic Generator that yields prefix_1, prefix_2, ...
// Counters are kept per prefix. Intended for tests and fixtures.
func Sequence() Generator {
	var mu sync.Mutex
	counters := make(map[string]int)
	return func(prefix string) string {
		mu.Lock()
		defer mu.Unlock()
		counters[prefix]++
		return fmt.Sprintf("%s_%d", prefix, counters[prefix])
	}
}
