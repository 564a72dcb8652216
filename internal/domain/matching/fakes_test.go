package matching

import (
	"context"
	"sort"
	"sync"

	"tin-dog/internal/domain/dogs"
	"tin-dog/internal/domain/users"
)

// -------------------------
// Test store (in-memory, thread-safe)
// -------------------------

type testStore struct {
	mu       sync.Mutex
	likes    []Swipe
	matches  []Match
	convs    map[string]Conversation
	messages map[string][]Message
	pairs    int
}

func newTestStore() *testStore {
	return &testStore{
		convs:    map[string]Conversation{},
		messages: map[string][]Message{},
	}
}

func (s *testStore) RecordLike(ctx context.Context, sw Swipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.likes {
		if l.ActorUserID == sw.ActorUserID && l.DogID == sw.DogID {
			return nil
		}
	}
	s.likes = append(s.likes, sw)
	return nil
}

func (s *testStore) HasLikeOnOwner(ctx context.Context, actor, owner string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.likes {
		if l.ActorUserID == actor && l.TargetOwnerID == owner && owner != "" {
			return true, nil
		}
	}
	return false, nil
}

func (s *testStore) GetByID(ctx context.Context, id string) (Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.matches {
		if m.ID == id {
			return m, nil
		}
	}
	return Match{}, ErrMatchNotFound
}

func (s *testStore) FindBetween(ctx context.Context, a, b string) (Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.matches {
		if m.Has(a) && m.Other(a) == b {
			return m, nil
		}
	}
	return Match{}, ErrMatchNotFound
}

func (s *testStore) ListByParticipant(ctx context.Context, id string) ([]Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Match, 0)
	for _, m := range s.matches {
		if m.Has(id) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *testStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.matches), nil
}

func (s *testStore) CreatePair(ctx context.Context, m Match, c Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches = append(s.matches, m)
	s.convs[c.ID] = c
	s.pairs++
	return nil
}

// conversations: tipo aparte para no chocar con los métodos de matches
type testConvRepo struct{ s *testStore }

func (r testConvRepo) GetByID(ctx context.Context, id string) (Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.convs[id]
	if !ok {
		return Conversation{}, ErrNotFound
	}
	return c, nil
}

func (r testConvRepo) GetByMatchID(ctx context.Context, matchID string) (Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.convs {
		if c.MatchID == matchID {
			return c, nil
		}
	}
	return Conversation{}, ErrNotFound
}

func (r testConvRepo) AppendMessage(ctx context.Context, m Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.messages[m.ConversationID] = append(r.s.messages[m.ConversationID], m)
	return nil
}

func (r testConvRepo) ListMessages(ctx context.Context, id string) ([]Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := append([]Message(nil), r.s.messages[id]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (r testConvRepo) LastMessage(ctx context.Context, id string) (Message, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ms := r.s.messages[id]
	if len(ms) == 0 {
		return Message{}, false, nil
	}
	return ms[len(ms)-1], true, nil
}

func (r testConvRepo) MarkRead(ctx context.Context, id, reader string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for i, m := range r.s.messages[id] {
		if m.SenderID != reader && !m.Read {
			r.s.messages[id][i].Read = true
			n++
		}
	}
	return n, nil
}

func (r testConvRepo) CountUnread(ctx context.Context, id, reader string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, m := range r.s.messages[id] {
		if m.SenderID != reader && !m.Read {
			n++
		}
	}
	return n, nil
}

func (r testConvRepo) Count(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.convs), nil
}

type testDogs map[string]dogs.Dog

func (d testDogs) GetByID(ctx context.Context, id string) (dogs.Dog, error) {
	dog, ok := d[id]
	if !ok {
		return dogs.Dog{}, dogs.ErrNotFound
	}
	return dog, nil
}

type testUsers map[string]users.User

func (u testUsers) Get(ctx context.Context, id string) (users.User, error) {
	usr, ok := u[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return usr, nil
}

type countingObserver struct {
	mu       sync.Mutex
	swipes   map[Action]int
	matches  int
	messages int
}

func (o *countingObserver) SwipeRecorded(a Action) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.swipes == nil {
		o.swipes = map[Action]int{}
	}
	o.swipes[a]++
}

func (o *countingObserver) MatchCreated(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.matches++
}

func (o *countingObserver) MessagePosted() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages++
}

type fixture struct {
	store  *testStore
	dogs   testDogs
	users  testUsers
	convs  *Conversations
	engine *Engine
	obs    *countingObserver
}

// newFixture: user-1 es dueño de Buddy, user-2 de Luna; Max es de catálogo.
func newFixture(strategy func(SwipeRepository) Strategy) fixture {
	store := newTestStore()
	ds := testDogs{
		"dog-buddy": {ID: "dog-buddy", OwnerID: "user-1", Name: "Buddy"},
		"dog-luna":  {ID: "dog-luna", OwnerID: "user-2", Name: "Luna"},
		"dog-max":   {ID: "dog-max", Name: "Max"},
	}
	us := testUsers{
		"user-1": {ID: "user-1", OwnerName: "Ana", DogName: "Buddy"},
		"user-2": {ID: "user-2", OwnerName: "Bruno", DogName: "Luna"},
		"user-3": {ID: "user-3", OwnerName: "Caro", DogName: "Kira"},
	}
	obs := &countingObserver{}

	convs := NewConversations(ConversationDeps{
		Repo:     testConvRepo{store},
		Matches:  store,
		Dogs:     ds,
		Users:    us,
		Observer: obs,
	})
	engine := NewEngine(EngineDeps{
		Dogs:          ds,
		Swipes:        store,
		Matches:       store,
		Conversations: testConvRepo{store},
		Pairs:         store,
		Opener:        convs,
		Strategy:      strategy(store),
		Observer:      obs,
	})

	return fixture{store: store, dogs: ds, users: us, convs: convs, engine: engine, obs: obs}
}

func mutual(s SwipeRepository) Strategy { return NewMutualLedger(s) }

func always(SwipeRepository) Strategy { return NewProbabilistic(1, 1) }
