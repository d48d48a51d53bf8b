package mockfeed

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"tokenscope/internal/token"
)

func testRand() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

func TestStepBounds(t *testing.T) {
	seed := token.Seed()
	rnd := testRand()
	for i := 0; i < 200; i++ {
		ups := Step(seed, rnd)
		if len(ups) != len(seed) {
			t.Fatalf("Step returned %d updates, want %d", len(ups), len(seed))
		}
		for j, u := range ups {
			r := seed[j]
			if u.ID != r.ID {
				t.Fatalf("update %d has ID %s, want %s", j, u.ID, r.ID)
			}
			if u.Price < MinPrice {
				t.Errorf("%s: price %v below floor", u.ID, u.Price)
			}
			if lo, hi := r.Price*0.98, r.Price*1.02; u.Price < lo-1e-12 || u.Price > hi+1e-12 {
				t.Errorf("%s: price %v outside [%v, %v]", u.ID, u.Price, lo, hi)
			}
			if u.Change24h < -0.2 || u.Change24h >= 0.2 {
				t.Errorf("%s: change %v outside [-0.2, 0.2)", u.ID, u.Change24h)
			}
			if len(u.History) != len(r.History) {
				t.Errorf("%s: history length %d, want %d", u.ID, len(u.History), len(r.History))
			}
			if u.History[len(u.History)-1] != u.Price {
				t.Errorf("%s: last history sample %v, want %v", u.ID, u.History[len(u.History)-1], u.Price)
			}
			if u.History[0] != r.History[1] {
				t.Errorf("%s: oldest sample was not dropped", u.ID)
			}
		}
	}
}

func TestStepPriceFloor(t *testing.T) {
	recs := []token.Record{{ID: "x", Price: 0.00005, History: []float64{0.00005, 0.00005}}}
	for i, rnd := 0, testRand(); i < 50; i++ {
		u := Step(recs, rnd)[0]
		if u.Price != MinPrice {
			t.Fatalf("price = %v, want floor %v", u.Price, MinPrice)
		}
	}
}

func TestStepDoesNotMutateInput(t *testing.T) {
	seed := token.Seed()
	Step(seed, testRand())
	if seed[0].Price != 0.85 || seed[0].History[0] != 0.8 {
		t.Errorf("Step modified its input: %+v", seed[0])
	}
}

func TestGeneratorStartStop(t *testing.T) {
	seed := token.Seed()
	g := New(seed, WithInterval(5*time.Millisecond), WithRand(testRand()))

	var mu sync.Mutex
	got := make(map[string]int)
	stop := g.Start(context.Background(), func(u token.Update) {
		mu.Lock()
		got[u.ID]++
		mu.Unlock()
	})

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := got["8"]
		mu.Unlock()
		if n >= 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("generator did not tick twice")
		}
		time.Sleep(time.Millisecond)
	}

	stop()
	stop()

	mu.Lock()
	after := got["1"]
	mu.Unlock()
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if got["1"] != after {
		t.Error("updates arrived after stop")
	}
	for _, r := range seed {
		if got[r.ID] == 0 {
			t.Errorf("no update for %s", r.ID)
		}
	}
}

func TestGeneratorContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g := New(token.Seed(), WithInterval(time.Millisecond))
	stop := g.Start(ctx, func(token.Update) {})
	cancel()

	done := make(chan struct{})
	go func() {
		stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stop blocked after context cancel")
	}
}

func TestDefaults(t *testing.T) {
	g := New(token.Seed(), WithInterval(-1))
	if g.Interval() != DefaultInterval {
		t.Errorf("Interval() = %v, want %v", g.Interval(), DefaultInterval)
	}
}
