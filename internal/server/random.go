package server

import (
	"math/rand"
	"sync"
	"time"
)

// randSource is a mutex-guarded rand.Rand shared by code generation and
// shuffling. Tests construct it with a fixed seed for deterministic draws.
type randSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newRandSource(seed int64) *randSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &randSource{rng: rand.New(rand.NewSource(seed))}
}

func (r *randSource) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

func (r *randSource) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng.Shuffle(n, swap)
}

func (r *randSource) shuffledStrings(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	r.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// newRoomCode draws a 6-digit numeric code. Uniqueness is the registry's
// concern; this only produces candidates.
func (r *randSource) newRoomCode() string {
	digits := make([]byte, 6)
	r.mu.Lock()
	for i := range digits {
		digits[i] = byte('0' + r.rng.Intn(10))
	}
	r.mu.Unlock()
	return string(digits)
}
