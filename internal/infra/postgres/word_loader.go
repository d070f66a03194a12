package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"live-practice-service/internal/domain"
)

// WordLoader loads vocabulary content owned by the learning platform. Rows
// come back ordered by (set_id, id) so the question factory's seed contract
// holds across calls.
type WordLoader struct {
	pool *pgxpool.Pool
}

func NewWordLoader(pool *pgxpool.Pool) *WordLoader {
	return &WordLoader{pool: pool}
}

func (l *WordLoader) ResolveSets(ctx context.Context, setIDs []string) error {
	var count int
	err := l.pool.QueryRow(ctx,
		`SELECT count(*) FROM vocab_sets WHERE id = ANY($1)`, setIDs).Scan(&count)
	if err != nil {
		return fmt.Errorf("resolve vocab sets: %w", err)
	}
	if count != len(uniqueStrings(setIDs)) {
		return domain.ErrVocabNotFound
	}
	return nil
}

func (l *WordLoader) LoadWords(ctx context.Context, setIDs []string) ([]domain.Word, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT id, set_id, word, translation, image
		 FROM vocab_words WHERE set_id = ANY($1)
		 ORDER BY set_id, id`, setIDs)
	if err != nil {
		return nil, fmt.Errorf("load words: %w", err)
	}
	defer rows.Close()

	var words []domain.Word
	for rows.Next() {
		var w domain.Word
		var image []byte
		if err := rows.Scan(&w.ID, &w.SetID, &w.Word, &w.Translation, &image); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		if len(image) > 0 {
			var img domain.WordImage
			if err := json.Unmarshal(image, &img); err != nil {
				return nil, fmt.Errorf("unmarshal word image: %w", err)
			}
			w.Image = &img
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load words: %w", err)
	}
	return words, nil
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
