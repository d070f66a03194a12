package memory

import (
	"context"

	"live-practice-service/internal/domain"
)

// WordLoader fetches vocabulary content from a backing store.
type WordLoader interface {
	ResolveSets(ctx context.Context, setIDs []string) error
	LoadWords(ctx context.Context, setIDs []string) ([]domain.Word, error)
}

// StaticWordLoader serves vocabulary from an in-memory map, keeping word
// order stable per set (useful for tests/demos and the factory's determinism
// contract).
type StaticWordLoader struct {
	sets map[string][]domain.Word
}

func NewStaticWordLoader(sets map[string][]domain.Word) *StaticWordLoader {
	return &StaticWordLoader{sets: sets}
}

func (l *StaticWordLoader) ResolveSets(_ context.Context, setIDs []string) error {
	for _, id := range setIDs {
		if _, ok := l.sets[id]; !ok {
			return domain.ErrVocabNotFound
		}
	}
	return nil
}

// LoadWords concatenates the sets in the order requested.
func (l *StaticWordLoader) LoadWords(_ context.Context, setIDs []string) ([]domain.Word, error) {
	var words []domain.Word
	for _, id := range setIDs {
		set, ok := l.sets[id]
		if !ok {
			return nil, domain.ErrVocabNotFound
		}
		words = append(words, set...)
	}
	return words, nil
}

// WordRepository adapts a WordLoader to game.WordRepository without caching;
// the redis-backed repository adds a TTL cache on top of the same loader.
type WordRepository struct {
	loader WordLoader
}

func NewWordRepository(loader WordLoader) *WordRepository {
	return &WordRepository{loader: loader}
}

func (r *WordRepository) ResolveSets(ctx context.Context, setIDs []string) error {
	return r.loader.ResolveSets(ctx, setIDs)
}

func (r *WordRepository) WordsForSets(ctx context.Context, setIDs []string) ([]domain.Word, error) {
	return r.loader.LoadWords(ctx, setIDs)
}
