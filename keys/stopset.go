// stopset.go -- hash-bucketed stopword set for field-based policies
//
// (c) Sudhi Herle 2018
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package keys

import (
	"github.com/opencoff/go-fasthash"
)

const stopSetSeed = 0xc0ffee00d15ea5e5

// StopSet is a fixed-size, hash-bucketed set of header tokens that
// should never become keys -- the tool's "stopwords" concept,
// populated from a file of whitespace-separated words. It's built once per
// build and consulted from every KindFields extraction, so it's
// backed by a single hash bucket array rather than a map: text.go's
// fasthash.Hash64 pattern (originally the example's CSV key hasher)
// turns out to make a faster word set than map[string]bool for the
// read-mostly, build-once workload here.
type StopSet struct {
	buckets [][]string
	mask    uint64
}

// NewStopSet builds a StopSet sized for n words.
func NewStopSet(words []string) *StopSet {
	size := uint64(64)
	for size < uint64(len(words))*2 {
		size <<= 1
	}
	s := &StopSet{
		buckets: make([][]string, size),
		mask:    size - 1,
	}
	for _, w := range words {
		s.add(w)
	}
	return s
}

func (s *StopSet) add(w string) {
	h := fasthash.Hash64(stopSetSeed, []byte(w))
	b := h & s.mask
	s.buckets[b] = append(s.buckets[b], w)
}

// Has reports whether tok (case-sensitive) is a stopword.
func (s *StopSet) Has(tok []byte) bool {
	if s == nil {
		return false
	}
	h := fasthash.Hash64(stopSetSeed, tok)
	b := h & s.mask
	for _, w := range s.buckets[b] {
		if w == string(tok) {
			return true
		}
	}
	return false
}
