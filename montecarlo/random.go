package montecarlo

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash"
	"lukechampine.com/frand"
)

// Source is where a scenario gets its randomness from. Perm must return a
// uniformly random permutation of [0, n); every ordering equally likely.
// *frand.RNG and *math/rand/v2.Rand both satisfy it.
type Source interface {
	Perm(n int) []int
}

// SourceFunc hands out the Source for one chunk of a band's trials. A Source
// is only ever used from a single goroutine.
type SourceFunc func(band string, bandIdx, chunk int) Source

type entropySource struct{}

func (entropySource) Perm(n int) []int {
	return frand.Perm(n)
}

// EntropySources draws from frand's global, continuously reseeded generator.
// Runs are not reproducible.
func EntropySources() SourceFunc {
	return func(string, int, int) Source {
		return entropySource{}
	}
}

// chacha rounds and buffer size for seeded generators.
const (
	seededRounds  = 12
	seededBufSize = 1024
)

// SeededSources returns deterministic ChaCha generators. Every
// (band, index, chunk) triple gets its own stream keyed off the seed, so a
// seeded run gives identical tables for the same seed whatever the thread
// count or scheduling.
func SeededSources(seed uint64) SourceFunc {
	return func(band string, bandIdx, chunk int) Source {
		return NewSeededSource(seed, fmt.Sprintf("%s/%d/%d", band, bandIdx, chunk))
	}
}

// NewSeededSource builds one deterministic generator for the given seed and
// stream label.
func NewSeededSource(seed uint64, stream string) *frand.RNG {
	key := make([]byte, 32)
	for i := range 4 {
		h := xxhash.Sum64String(fmt.Sprintf("%d:%s:%d", seed, stream, i))
		binary.LittleEndian.PutUint64(key[i*8:], h)
	}
	return frand.NewCustom(key, seededBufSize, seededRounds)
}
