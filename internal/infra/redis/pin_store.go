package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// PinStore reserves join codes with SETNX so concurrent allocators across
// instances agree on uniqueness. Keys have no TTL; End releases the pin once
// a session leaves play.
type PinStore struct {
	client *redis.Client
}

func NewPinStore(client *redis.Client) *PinStore {
	return &PinStore{client: client}
}

func (s *PinStore) TryReserve(ctx context.Context, pin string) (bool, error) {
	return s.client.SetNX(ctx, s.key(pin), "1", 0).Result()
}

func (s *PinStore) Release(ctx context.Context, pin string) error {
	return s.client.Del(ctx, s.key(pin)).Err()
}

func (s *PinStore) key(pin string) string {
	return "live:pin:" + pin
}
