package bus_test

import (
	"encoding/json"
	"testing"

	"live-practice-service/internal/bus"
)

type frame struct {
	Type string `json:"type"`
	Seq  int    `json:"seq"`
}

func TestPublishPreservesOrderPerGroup(t *testing.T) {
	b := bus.New()
	sub := b.Subscribe("game:1")
	defer sub.Close()

	for i := 0; i < 10; i++ {
		b.Publish("game:1", frame{Type: "QUESTION", Seq: i})
	}

	for i := 0; i < 10; i++ {
		raw, ok := <-sub.C()
		if !ok {
			t.Fatalf("channel closed after %d frames", i)
		}
		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			t.Fatalf("bad frame: %v", err)
		}
		if f.Seq != i {
			t.Fatalf("frame %d arrived out of order: %+v", i, f)
		}
	}
}

func TestGroupsAreIsolated(t *testing.T) {
	b := bus.New()
	game := b.Subscribe("game:1")
	defer game.Close()
	announce := b.Subscribe("announce:class-1")
	defer announce.Close()

	b.Publish("game:1", frame{Type: "QUESTION"})

	select {
	case <-game.C():
	default:
		t.Fatalf("game subscriber missed its frame")
	}
	select {
	case raw := <-announce.C():
		t.Fatalf("announce subscriber received a game frame: %s", raw)
	default:
	}
}

func TestAddJoinsSecondGroup(t *testing.T) {
	b := bus.New()
	sub := b.Subscribe("announce:class-1")
	defer sub.Close()
	b.Add(sub, "game:1")

	b.Publish("announce:class-1", frame{Type: "GAME_ANNOUNCED"})
	b.Publish("game:1", frame{Type: "LOBBY_UPDATE"})

	var types []string
	for i := 0; i < 2; i++ {
		var f frame
		if err := json.Unmarshal(<-sub.C(), &f); err != nil {
			t.Fatalf("bad frame: %v", err)
		}
		types = append(types, f.Type)
	}
	if types[0] != "GAME_ANNOUNCED" || types[1] != "LOBBY_UPDATE" {
		t.Fatalf("unexpected frames: %v", types)
	}
}

func TestCloseStopsDelivery(t *testing.T) {
	b := bus.New()
	sub := b.Subscribe("game:1")
	sub.Close()

	if _, ok := <-sub.C(); ok {
		t.Fatalf("expected closed channel")
	}

	// Publishing to the emptied group must not panic or block.
	b.Publish("game:1", frame{Type: "QUESTION"})
}

func TestAddIgnoresClosedSubscriber(t *testing.T) {
	b := bus.New()
	sub := b.Subscribe("game:1")
	sub.Close()

	// Re-attaching a closed subscriber must not bring its channel back; a
	// later publish to the new group would otherwise send on a closed channel.
	b.Add(sub, "game:2")
	b.Publish("game:2", frame{Type: "QUESTION"})

	live := b.Subscribe("game:2")
	defer live.Close()
	b.Publish("game:2", frame{Type: "LEADERBOARD"})
	if _, ok := <-live.C(); !ok {
		t.Fatalf("live subscriber lost its frame")
	}
}

func TestAddIgnoresDroppedSubscriber(t *testing.T) {
	b := bus.New()
	slow := b.Subscribe("game:1")

	// Overflow the buffer so Publish drops the subscriber.
	for i := 0; i < 40; i++ {
		b.Publish("game:1", frame{Type: "QUESTION", Seq: i})
	}
	for range slow.C() {
	}

	b.Add(slow, "game:2")
	b.Publish("game:2", frame{Type: "GAME_OVER"})
}

func TestSlowSubscriberIsDropped(t *testing.T) {
	b := bus.New()
	slow := b.Subscribe("game:1")
	fast := b.Subscribe("game:1")

	// Never draining slow fills its buffer; the overflowing publish drops it.
	for i := 0; i < 40; i++ {
		b.Publish("game:1", frame{Type: "QUESTION", Seq: i})
		// Keep fast from overflowing too.
		<-fast.C()
	}

	received := 0
	for range slow.C() {
		received++
	}
	if received >= 40 {
		t.Fatalf("slow subscriber was never dropped, received %d", received)
	}

	// The surviving subscriber still gets new frames.
	b.Publish("game:1", frame{Type: "LEADERBOARD"})
	if _, ok := <-fast.C(); !ok {
		t.Fatalf("fast subscriber was dropped too")
	}
	fast.Close()
}
