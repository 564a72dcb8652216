package dogs

import (
	"context"
	"sort"
	"testing"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID map[string]Dog
	seq  int64
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Dog{}}
}

func (r *testRepo) Create(ctx context.Context, d Dog) error {
	r.seq++
	d.Seq = r.seq
	r.byID[d.ID] = d
	return nil
}

func (r *testRepo) Update(ctx context.Context, d Dog) error {
	cur, ok := r.byID[d.ID]
	if !ok {
		return ErrNotFound
	}
	d.Seq = cur.Seq
	r.byID[d.ID] = d
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Dog, error) {
	d, ok := r.byID[id]
	if !ok {
		return Dog{}, ErrNotFound
	}
	return d, nil
}

func (r *testRepo) GetByOwner(ctx context.Context, ownerID string) (Dog, error) {
	for _, d := range r.byID {
		if d.OwnerID == ownerID {
			return d, nil
		}
	}
	return Dog{}, ErrNotFound
}

func (r *testRepo) List(ctx context.Context) ([]Dog, error) {
	out := make([]Dog, 0, len(r.byID))
	for _, d := range r.byID {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (r *testRepo) Count(ctx context.Context) (int, error) { return len(r.byID), nil }

type fakeIndex map[string]map[string]struct{}

func (f fakeIndex) CounterpartsOf(ctx context.Context, userID string) (map[string]struct{}, error) {
	if m, ok := f[userID]; ok {
		return m, nil
	}
	return map[string]struct{}{}, nil
}

func names(deck Deck) []string {
	out := make([]string, 0)
	for d := range deck.All() {
		out = append(out, d.Name)
	}
	return out
}

// -------------------------
// Tests
// -------------------------

func TestService_ListCandidates_ExcludesOwnAndMatched(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	idx := fakeIndex{}
	svc := NewService(repo, idx)

	if _, err := svc.SeedSamples(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	mine, err := svc.CreateOwned(ctx, "user-1", CreateInput{Name: "Pepe"})
	if err != nil {
		t.Fatalf("CreateOwned: %v", err)
	}
	other, err := svc.CreateOwned(ctx, "user-2", CreateInput{Name: "Kira"})
	if err != nil {
		t.Fatalf("CreateOwned: %v", err)
	}

	all, _ := repo.List(ctx)
	var luna Dog
	for _, d := range all {
		if d.Name == "Luna" {
			luna = d
		}
	}

	// user-1 matcheó con Luna (catálogo) y con user-2 (dueño de Kira)
	idx["user-1"] = map[string]struct{}{luna.ID: {}, "user-2": {}}

	deck, err := svc.ListCandidates(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}

	got := names(deck)
	want := []string{"Buddy", "Max", "Bella", "Rocky"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v in insertion order, got %v", want, got)
		}
	}

	for d := range deck.All() {
		if d.ID == mine.ID || d.ID == other.ID || d.ID == luna.ID {
			t.Fatalf("deck must not include %s", d.Name)
		}
	}

	// reiniciable: una segunda pasada produce lo mismo
	if again := names(deck); len(again) != len(got) {
		t.Fatalf("expected restartable deck, got %v then %v", got, again)
	}
}

func TestService_ListCandidates_OtherSideAlsoExcluded(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	idx := fakeIndex{}
	svc := NewService(repo, idx)

	d1, _ := svc.CreateOwned(ctx, "user-1", CreateInput{Name: "Buddy"})
	_, _ = svc.CreateOwned(ctx, "user-2", CreateInput{Name: "Luna"})

	idx["user-2"] = map[string]struct{}{"user-1": {}}

	deck, _ := svc.ListCandidates(ctx, "user-2")
	for d := range deck.All() {
		if d.ID == d1.ID {
			t.Fatalf("user-2 must not see user-1's dog after match")
		}
	}
}

func TestService_Search_FiltersCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	svc := NewService(repo, fakeIndex{})
	_, _ = svc.SeedSamples(ctx)

	deck, _ := svc.Search(ctx, "user-1", Filter{Breed: "husky"})
	if got := names(deck); len(got) != 1 || got[0] != "Luna" {
		t.Fatalf("expected [Luna], got %v", got)
	}

	deck, _ = svc.Search(ctx, "user-1", Filter{Location: "ny", Age: "3 YEARS"})
	if got := names(deck); len(got) != 1 || got[0] != "Buddy" {
		t.Fatalf("expected [Buddy], got %v", got)
	}

	deck, _ = svc.Search(ctx, "user-1", Filter{})
	if got := names(deck); len(got) != 5 {
		t.Fatalf("expected empty filter to return all 5, got %v", got)
	}
}

func TestService_Search_ExcludesOnlyOwnership(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	svc := NewService(repo, fakeIndex{"user-1": {"user-2": {}}})

	_, _ = svc.CreateOwned(ctx, "user-1", CreateInput{Name: "Mine", Breed: "Husky"})
	_, _ = svc.CreateOwned(ctx, "user-2", CreateInput{Name: "Matched", Breed: "Husky"})

	deck, _ := svc.Search(ctx, "user-1", Filter{Breed: "husky"})
	if got := names(deck); len(got) != 1 || got[0] != "Matched" {
		t.Fatalf("expected search to keep matched dogs and drop own, got %v", got)
	}
}

func TestService_SeedSamples_OnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newTestRepo(), nil)

	n, err := svc.SeedSamples(ctx)
	if err != nil || n != 5 {
		t.Fatalf("expected 5 seeded, got %d err=%v", n, err)
	}
	n, _ = svc.SeedSamples(ctx)
	if n != 0 {
		t.Fatalf("expected no reseed, got %d", n)
	}
}
