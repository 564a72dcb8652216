package matching

import (
	"context"
	"errors"
	"sync"
	"testing"

	"tin-dog/internal/domain/dogs"
)

func TestEngine_PassNeverMatches(t *testing.T) {
	ctx := context.Background()
	f := newFixture(always)

	for range 5 {
		out, err := f.engine.RecordSwipe(ctx, "user-1", "dog-max", ActionPass)
		if err != nil {
			t.Fatalf("RecordSwipe: %v", err)
		}
		if out.IsMatch {
			t.Fatalf("pass must never match")
		}
	}
	if n, _ := f.store.Count(ctx); n != 0 {
		t.Fatalf("expected no matches, got %d", n)
	}
	if len(f.store.likes) != 0 {
		t.Fatalf("pass must not be persisted, got %d ledger entries", len(f.store.likes))
	}
	if f.obs.swipes[ActionPass] != 5 {
		t.Fatalf("expected 5 observed passes, got %d", f.obs.swipes[ActionPass])
	}
}

func TestEngine_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(always)

	if _, err := f.engine.RecordSwipe(ctx, "user-1", "dog-max", Action("superlike")); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
	if _, err := f.engine.RecordSwipe(ctx, "user-1", "dog-ghost", ActionLike); !errors.Is(err, dogs.ErrNotFound) {
		t.Fatalf("expected dogs.ErrNotFound, got %v", err)
	}
	if _, err := f.engine.RecordSwipe(ctx, "user-1", "dog-buddy", ActionLike); !errors.Is(err, ErrOwnDog) {
		t.Fatalf("expected ErrOwnDog, got %v", err)
	}
}

func TestEngine_MutualLedger_BuddyAndLuna(t *testing.T) {
	ctx := context.Background()
	f := newFixture(mutual)

	out, err := f.engine.RecordSwipe(ctx, "user-1", "dog-luna", ActionLike)
	if err != nil {
		t.Fatalf("RecordSwipe: %v", err)
	}
	if out.IsMatch {
		t.Fatalf("first like must not match")
	}

	out, err = f.engine.RecordSwipe(ctx, "user-2", "dog-buddy", ActionLike)
	if err != nil {
		t.Fatalf("RecordSwipe: %v", err)
	}
	if !out.IsMatch || !out.Created || out.Match == nil || out.Conversation == nil {
		t.Fatalf("expected new match with conversation, got %+v", out)
	}

	m := *out.Match
	if m.Participants != [2]string{"user-2", "user-1"} {
		t.Fatalf("unexpected participants %v", m.Participants)
	}
	if out.Conversation.Participants != m.Participants || out.Conversation.MatchID != m.ID {
		t.Fatalf("conversation must mirror match, got %+v", out.Conversation)
	}
	if m.Strategy != StrategyMutual || m.Status != StatusActive {
		t.Fatalf("unexpected match %+v", m)
	}
	if f.store.pairs != 1 {
		t.Fatalf("expected exactly one pair, got %d", f.store.pairs)
	}
}

func TestEngine_MutualLedger_CatalogNeverMatches(t *testing.T) {
	ctx := context.Background()
	f := newFixture(mutual)

	out, err := f.engine.RecordSwipe(ctx, "user-1", "dog-max", ActionLike)
	if err != nil {
		t.Fatalf("RecordSwipe: %v", err)
	}
	if out.IsMatch {
		t.Fatalf("catalog dog must not match under mutual ledger")
	}
}

func TestEngine_MutualLedger_OneSidedDoesNotMatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(mutual)

	// user-3 no tiene perro en el ledger: user-1 nunca recibió like suyo
	_, _ = f.engine.RecordSwipe(ctx, "user-1", "dog-luna", ActionLike)
	out, _ := f.engine.RecordSwipe(ctx, "user-1", "dog-luna", ActionLike)
	if out.IsMatch {
		t.Fatalf("repeated one-sided like must not match")
	}
	if len(f.store.likes) != 1 {
		t.Fatalf("expected idempotent ledger, got %d", len(f.store.likes))
	}
}

func TestEngine_ExistingMatchIsReturned(t *testing.T) {
	ctx := context.Background()
	f := newFixture(always)

	first, err := f.engine.RecordSwipe(ctx, "user-1", "dog-max", ActionLike)
	if err != nil || !first.IsMatch {
		t.Fatalf("expected match, got %+v err=%v", first, err)
	}
	second, err := f.engine.RecordSwipe(ctx, "user-1", "dog-max", ActionLike)
	if err != nil {
		t.Fatalf("RecordSwipe: %v", err)
	}
	if !second.IsMatch || second.Created || second.Match.ID != first.Match.ID {
		t.Fatalf("expected existing match returned, got %+v", second)
	}
	if second.Conversation.ID != first.Conversation.ID {
		t.Fatalf("expected same conversation")
	}
	if f.obs.matches != 1 {
		t.Fatalf("expected one created match observed, got %d", f.obs.matches)
	}
}

func TestEngine_ConcurrentLikesCreateOneMatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(always)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = f.engine.RecordSwipe(ctx, "user-1", "dog-luna", ActionLike)
		}()
		go func() {
			defer wg.Done()
			_, _ = f.engine.RecordSwipe(ctx, "user-2", "dog-buddy", ActionLike)
		}()
	}
	wg.Wait()

	if n, _ := f.store.Count(ctx); n != 1 {
		t.Fatalf("expected exactly one match for the pair, got %d", n)
	}
	if f.store.pairs != 1 || len(f.store.convs) != 1 {
		t.Fatalf("expected exactly one conversation, got %d", len(f.store.convs))
	}
}

func TestProbabilistic_RateWithinOnePercent(t *testing.T) {
	ctx := context.Background()
	p := NewProbabilistic(DefaultProbability, 9)

	const trials = 10000
	hits := 0
	for range trials {
		ok, _ := p.Decide(ctx, Swipe{})
		if ok {
			hits++
		}
	}

	rate := float64(hits) / trials
	if rate < DefaultProbability-0.01 || rate > DefaultProbability+0.01 {
		t.Fatalf("expected rate %.2f±0.01, got %.4f", DefaultProbability, rate)
	}
}

func TestProbabilistic_SameSeedSameSequence(t *testing.T) {
	ctx := context.Background()
	a := NewProbabilistic(0.5, 7)
	b := NewProbabilistic(0.5, 7)
	for i := range 100 {
		x, _ := a.Decide(ctx, Swipe{})
		y, _ := b.Decide(ctx, Swipe{})
		if x != y {
			t.Fatalf("diverged at trial %d", i)
		}
	}
}

func TestNewStrategy(t *testing.T) {
	s, err := NewStrategy("", 0.3, 1, newTestStore())
	if err != nil || s.Name() != StrategyMutual {
		t.Fatalf("expected mutual by default, got %v err=%v", s, err)
	}
	s, err = NewStrategy("Probabilistic", 0.3, 1, nil)
	if err != nil || s.Name() != StrategyProbabilistic {
		t.Fatalf("expected probabilistic, got %v err=%v", s, err)
	}
	if _, err := NewStrategy("random", 0.3, 1, nil); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}

func TestIndex_CounterpartsOf(t *testing.T) {
	ctx := context.Background()
	f := newFixture(always)
	_, _ = f.engine.RecordSwipe(ctx, "user-1", "dog-luna", ActionLike)
	_, _ = f.engine.RecordSwipe(ctx, "user-3", "dog-max", ActionLike)

	idx := NewIndex(f.store)

	got, _ := idx.CounterpartsOf(ctx, "user-2")
	if _, ok := got["user-1"]; !ok || len(got) != 1 {
		t.Fatalf("expected user-2 linked to user-1 (either order), got %v", got)
	}
	got, _ = idx.CounterpartsOf(ctx, "user-3")
	if _, ok := got["dog-max"]; !ok || len(got) != 1 {
		t.Fatalf("expected user-3 linked to dog-max, got %v", got)
	}
}
