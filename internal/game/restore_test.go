package game_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"live-practice-service/internal/domain"
	"live-practice-service/internal/game"
	"live-practice-service/internal/infra/memory"
)

func TestRestoreSessionsRebuildsRuntimeState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(game.Options{})
	sess := f.create(t, defaultParams())

	if _, err := f.coord.Join(ctx, studentOne, sess.ID); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if _, err := f.coord.Join(ctx, studentTwo, sess.ID); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if _, err := f.coord.Start(ctx, hostCaller, sess.ID); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, err := f.coord.Next(ctx, hostCaller, sess.ID); err != nil {
		t.Fatalf("next failed: %v", err)
	}
	answer := correctAnswerFor(t, f, sess.ID)
	if _, err := f.coord.Answer(ctx, studentOne, sess.ID, 1, answer); err != nil {
		t.Fatalf("answer failed: %v", err)
	}

	// Simulate a restart: an empty runtime registry refilled from the store.
	rebuilt := memory.NewSessionStore()
	restored, err := game.RestoreSessions(ctx, f.store, rebuilt, f.store)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if restored != 1 {
		t.Fatalf("expected 1 restored session, got %d", restored)
	}
	if _, ok := rebuilt.Get(sess.ID); !ok {
		t.Fatalf("session %s missing from rebuilt registry", sess.ID)
	}

	bus2 := &recordingBus{}
	words := memory.NewWordRepository(memory.NewStaticWordLoader(map[string][]domain.Word{
		"set-1": testWordPool(),
	}))
	dir := memory.NewDirectory(
		map[string][]string{"class-1": {hostCaller.ID}},
		map[string][]string{"class-1": {studentOne.ID, studentTwo.ID}},
	)
	pins := game.NewPinAllocator(f.store, 6, 100, rand.New(rand.NewSource(7)))
	coord := game.NewCoordinator(rebuilt, f.store, words, dir, bus2, pins, game.Options{Clock: f.clock.Now})

	// Answers submitted before the restart are still remembered.
	if _, err := coord.Answer(ctx, studentOne, sess.ID, 1, "x"); !errors.Is(err, domain.ErrAlreadyAnswered) {
		t.Fatalf("expected ErrAlreadyAnswered, got %v", err)
	}

	// Scores and the roster survive into the restored leaderboard.
	result, err := coord.Answer(ctx, studentTwo, sess.ID, 1, answer)
	if err != nil {
		t.Fatalf("answer after restore failed: %v", err)
	}
	if !result.IsCorrect {
		t.Fatalf("expected correct answer, got %+v", result)
	}
	lb, ok := bus2.last(domain.GameGroup(sess.ID)).(domain.LeaderboardEvent)
	if !ok {
		t.Fatalf("expected LEADERBOARD after restored answer")
	}
	if len(lb.Top) != 2 {
		t.Fatalf("expected both participants on the restored leaderboard, got %+v", lb.Top)
	}

	// The restored question sequence keeps advancing.
	idx, err := coord.Next(ctx, hostCaller, sess.ID)
	if err != nil {
		t.Fatalf("next after restore failed: %v", err)
	}
	if idx != 2 {
		t.Fatalf("expected index 2, got %d", idx)
	}

	snap, err := coord.State(ctx, studentOne, sess.ID)
	if err != nil {
		t.Fatalf("state failed: %v", err)
	}
	if snap.You == nil || snap.You.Score != 160 {
		t.Fatalf("expected restored score 160, got %+v", snap.You)
	}
}

func TestRestoreSessionsSkipsEnded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(game.Options{})
	sess := f.create(t, defaultParams())
	if err := f.coord.End(ctx, hostCaller, sess.ID); err != nil {
		t.Fatalf("end failed: %v", err)
	}

	rebuilt := memory.NewSessionStore()
	restored, err := game.RestoreSessions(ctx, f.store, rebuilt, f.store)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if restored != 0 {
		t.Fatalf("expected no restored sessions, got %d", restored)
	}
	if _, ok := rebuilt.Get(sess.ID); ok {
		t.Fatalf("ended session should not be restored")
	}
}
