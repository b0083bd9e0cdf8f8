package mocks

import (
	"fmt"
	"sync"

	"github.com/nohumanman/descenders-modding/internal/dependencies/random"
)

// MockRandom returns queued strings, then numbered fallbacks once the queue
// is drained so generated ids stay unique
type MockRandom struct {
	mu       sync.Mutex
	queue    []string
	fallback int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// String returns the next queued result, or "rand-<n>" if none remain
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) > 0 {
		result := r.queue[0]
		r.queue = r.queue[1:]
		return result
	}
	r.fallback++
	return fmt.Sprintf("rand-%d", r.fallback)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	r.queue = append(r.queue, values...)
	r.mu.Unlock()
}
