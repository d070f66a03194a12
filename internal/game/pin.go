package game

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"live-practice-service/internal/domain"
)

// PinStore reserves join codes. TryReserve must be atomic: two concurrent
// reservations of the same pin succeed at most once. Release frees a pin for
// reuse once its session has ended.
type PinStore interface {
	TryReserve(ctx context.Context, pin string) (bool, error)
	Release(ctx context.Context, pin string) error
}

// PinAllocator generates uniformly random decimal join codes, retrying on
// collision up to a bounded number of attempts.
type PinAllocator struct {
	store       PinStore
	length      int
	maxAttempts int

	// rngMu guards rng: Allocate runs outside any session lock, so
	// concurrent creates share this generator.
	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewPinAllocator(store PinStore, length, maxAttempts int, rng *rand.Rand) *PinAllocator {
	if length <= 0 {
		length = 6
	}
	if maxAttempts <= 0 {
		maxAttempts = 100
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &PinAllocator{store: store, length: length, maxAttempts: maxAttempts, rng: rng}
}

// Allocate returns a reserved pin or ErrPinExhausted after maxAttempts
// collisions.
func (a *PinAllocator) Allocate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		pin := a.randomPin()
		ok, err := a.store.TryReserve(ctx, pin)
		if err != nil {
			return "", fmt.Errorf("reserve pin: %w", err)
		}
		if ok {
			return pin, nil
		}
	}
	return "", domain.ErrPinExhausted
}

// Release returns a pin to the pool; safe to call after a session ends.
func (a *PinAllocator) Release(ctx context.Context, pin string) error {
	return a.store.Release(ctx, pin)
}

func (a *PinAllocator) randomPin() string {
	digits := make([]byte, a.length)
	a.rngMu.Lock()
	for i := range digits {
		digits[i] = byte('0' + a.rng.Intn(10))
	}
	a.rngMu.Unlock()
	return string(digits)
}
