package game

import (
	"fmt"
	"sort"

	"live-practice-service/internal/domain"
)

// registry is the per-session participant set. It is not safe for concurrent
// use; the owning session's lock guards every call.
type registry struct {
	participants map[string]*domain.Participant
	byUser       map[string]string
}

func newRegistry() *registry {
	return &registry{
		participants: make(map[string]*domain.Participant),
		byUser:       make(map[string]string),
	}
}

func (r *registry) insert(p *domain.Participant) {
	r.participants[p.ID] = p
	if p.UserID != "" {
		r.byUser[p.UserID] = p.ID
	}
}

func (r *registry) byUserID(userID string) (*domain.Participant, bool) {
	id, ok := r.byUser[userID]
	if !ok {
		return nil, false
	}
	p, ok := r.participants[id]
	return p, ok
}

func (r *registry) size() int {
	return len(r.participants)
}

// uniqueName appends the smallest integer suffix >= 2 that makes base unique
// within the session.
func (r *registry) uniqueName(base string) string {
	if !r.nameTaken(base) {
		return base
	}
	for suffix := 2; ; suffix++ {
		candidate := fmt.Sprintf("%s%d", base, suffix)
		if !r.nameTaken(candidate) {
			return candidate
		}
	}
}

func (r *registry) nameTaken(name string) bool {
	for _, p := range r.participants {
		if p.DisplayName == name {
			return true
		}
	}
	return false
}

// ordered returns participants in authoritative leaderboard order:
// score descending, then total latency ascending, then join time ascending.
func (r *registry) ordered() []*domain.Participant {
	out := make([]*domain.Participant, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].TotalLatencyMS != out[j].TotalLatencyMS {
			return out[i].TotalLatencyMS < out[j].TotalLatencyMS
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out
}

// top returns the first k leaderboard rows.
func (r *registry) top(k int) []domain.LeaderboardEntry {
	ordered := r.ordered()
	if k > 0 && len(ordered) > k {
		ordered = ordered[:k]
	}
	entries := make([]domain.LeaderboardEntry, 0, len(ordered))
	for i, p := range ordered {
		entries = append(entries, domain.LeaderboardEntry{
			Rank:   i + 1,
			Name:   p.DisplayName,
			Score:  p.Score,
			Streak: p.Streak,
		})
	}
	return entries
}

// rank is 1 plus the count of participants with a strictly greater score.
func (r *registry) rank(p *domain.Participant) int {
	rank := 1
	for _, other := range r.participants {
		if other.Score > p.Score {
			rank++
		}
	}
	return rank
}

// names returns display names in leaderboard order for lobby updates.
func (r *registry) names() []string {
	ordered := r.ordered()
	names := make([]string, 0, len(ordered))
	for _, p := range ordered {
		names = append(names, p.DisplayName)
	}
	return names
}
