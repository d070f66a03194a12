package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"live-practice-service/internal/domain"
	"live-practice-service/internal/infra/memory"
)

// WordRepository caches vocabulary sets in Redis (one JSON blob per set list)
// and falls back to a loader on cache miss. Cached as:
//
//	SET vocab:words:{setID,setID,...} {json array} EX ttl
//
// The key covers the requested set combination so the word order the factory
// sees is the order that was cached.
type WordRepository struct {
	client *redis.Client
	loader memory.WordLoader
	ttl    time.Duration
	sf     singleflight.Group

	// rndMu guards rnd: fills for different cache keys run concurrently.
	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewWordRepository(client *redis.Client, loader memory.WordLoader, ttl time.Duration) *WordRepository {
	return &WordRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ResolveSets always consults the loader; existence checks are cheap and
// stale-set caching would mask deletions.
func (r *WordRepository) ResolveSets(ctx context.Context, setIDs []string) error {
	return r.loader.ResolveSets(ctx, setIDs)
}

func (r *WordRepository) WordsForSets(ctx context.Context, setIDs []string) ([]domain.Word, error) {
	key := r.key(setIDs)

	raw, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		var words []domain.Word
		if jsonErr := json.Unmarshal(raw, &words); jsonErr == nil {
			return words, nil
		}
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		raw, err := r.client.Get(ctx, key).Bytes()
		if err == nil {
			var words []domain.Word
			if jsonErr := json.Unmarshal(raw, &words); jsonErr == nil {
				return words, nil
			}
		}

		words, err := r.loader.LoadWords(ctx, setIDs)
		if err != nil {
			return nil, err
		}

		if data, jsonErr := json.Marshal(words); jsonErr == nil {
			_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
		}
		return words, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Word), nil
}

func (r *WordRepository) key(setIDs []string) string {
	return "vocab:words:" + strings.Join(setIDs, ",")
}

func (r *WordRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	jitter := r.rnd.Int63n(jitterMax + 1)
	r.rndMu.Unlock()
	return r.ttl + time.Duration(jitter)
}
