package seating

import (
	"math/rand"
	"sync"
	"time"
)

// Random is the source of randomness used for shuffling and conflict swaps.
// Tests supply a seeded or scripted implementation.
type Random interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// lockedRandom makes a math/rand source safe to share between requests.
type lockedRandom struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRandom returns a Random seeded with seed.
func NewRandom(seed int64) Random {
	return &lockedRandom{r: rand.New(rand.NewSource(seed))}
}

// NewTimeRandom returns a Random seeded from the wall clock.
func NewTimeRandom() Random {
	return NewRandom(time.Now().UnixNano())
}

func (l *lockedRandom) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (l *lockedRandom) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}
