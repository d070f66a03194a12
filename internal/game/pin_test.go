package game_test

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"live-practice-service/internal/domain"
	"live-practice-service/internal/game"
)

type stubPinStore struct {
	mu       sync.Mutex
	taken    map[string]bool
	attempts int
	reject   int
}

func newStubPinStore(reject int) *stubPinStore {
	return &stubPinStore{taken: make(map[string]bool), reject: reject}
}

func (s *stubPinStore) TryReserve(_ context.Context, pin string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if s.attempts <= s.reject {
		return false, nil
	}
	if s.taken[pin] {
		return false, nil
	}
	s.taken[pin] = true
	return true, nil
}

func (s *stubPinStore) Release(_ context.Context, pin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.taken, pin)
	return nil
}

func TestAllocateProducesDigitPin(t *testing.T) {
	store := newStubPinStore(0)
	alloc := game.NewPinAllocator(store, 6, 10, rand.New(rand.NewSource(1)))

	pin, err := alloc.Allocate(context.Background())
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if len(pin) != 6 {
		t.Fatalf("expected 6-digit pin, got %q", pin)
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			t.Fatalf("pin %q contains non-digit %q", pin, r)
		}
	}
}

func TestAllocateRetriesOnCollision(t *testing.T) {
	store := newStubPinStore(3)
	alloc := game.NewPinAllocator(store, 6, 10, rand.New(rand.NewSource(1)))

	if _, err := alloc.Allocate(context.Background()); err != nil {
		t.Fatalf("allocate failed after retries: %v", err)
	}
	if store.attempts != 4 {
		t.Fatalf("expected 4 attempts, got %d", store.attempts)
	}
}

func TestAllocateIsSafeForConcurrentUse(t *testing.T) {
	store := newStubPinStore(0)
	alloc := game.NewPinAllocator(store, 6, 100, rand.New(rand.NewSource(1)))

	const workers = 8
	const perWorker = 25

	pins := make(chan string, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				pin, err := alloc.Allocate(context.Background())
				if err != nil {
					t.Errorf("allocate failed: %v", err)
					return
				}
				pins <- pin
			}
		}()
	}
	wg.Wait()
	close(pins)

	seen := make(map[string]bool)
	for pin := range pins {
		if seen[pin] {
			t.Fatalf("pin %s allocated twice", pin)
		}
		seen[pin] = true
	}
	if len(seen) != workers*perWorker {
		t.Fatalf("expected %d pins, got %d", workers*perWorker, len(seen))
	}
}

func TestAllocateExhaustsAttempts(t *testing.T) {
	store := newStubPinStore(1000)
	alloc := game.NewPinAllocator(store, 6, 5, rand.New(rand.NewSource(1)))

	if _, err := alloc.Allocate(context.Background()); err != domain.ErrPinExhausted {
		t.Fatalf("expected ErrPinExhausted, got %v", err)
	}
	if store.attempts != 5 {
		t.Fatalf("expected 5 attempts, got %d", store.attempts)
	}
}
