package matching

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"tin-dog/internal/platform/keylock"
	"tin-dog/internal/platform/logger"
)

// Engine registra swipes y crea matches. Como Conversations, no guarda
// estado entre requests.
type Engine struct {
	dogs     DogLookup
	swipes   SwipeRepository
	matches  MatchRepository
	convRepo ConversationRepository
	pairs    PairStore
	convs    *Conversations
	strategy Strategy
	locks    *keylock.Locker
	obs      Observer
	log      logger.Logger
	now      func() time.Time
}

type EngineDeps struct {
	Dogs          DogLookup
	Swipes        SwipeRepository
	Matches       MatchRepository
	Conversations ConversationRepository
	Pairs         PairStore
	Opener        *Conversations
	Strategy      Strategy
	Observer      Observer
	Log           logger.Logger
}

func NewEngine(d EngineDeps) *Engine {
	obs := d.Observer
	if obs == nil {
		obs = nopObserver{}
	}
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	strategy := d.Strategy
	if strategy == nil {
		strategy = NewMutualLedger(d.Swipes)
	}
	return &Engine{
		dogs:     d.Dogs,
		swipes:   d.Swipes,
		matches:  d.Matches,
		convRepo: d.Conversations,
		pairs:    d.Pairs,
		convs:    d.Opener,
		strategy: strategy,
		locks:    keylock.New(),
		obs:      obs,
		log:      log.With(map[string]any{"component": "match_engine"}),
		now:      time.Now,
	}
}

func (e *Engine) Strategy() string { return e.strategy.Name() }

// RecordSwipe registra la decisión de userID sobre dogID.
// pass no persiste nada. like queda en el ledger y la estrategia decide;
// si hay match se crean Match y Conversation juntos.
func (e *Engine) RecordSwipe(ctx context.Context, userID, dogID string, action Action) (Outcome, error) {
	if _, err := ParseAction(string(action)); err != nil {
		return Outcome{}, err
	}

	dog, err := e.dogs.GetByID(ctx, strings.TrimSpace(dogID))
	if err != nil {
		return Outcome{}, err
	}
	if dog.OwnerID == userID {
		return Outcome{}, ErrOwnDog
	}

	e.obs.SwipeRecorded(action)
	if action == ActionPass {
		return Outcome{}, nil
	}

	counterpart := dog.ID
	if dog.Owned() {
		counterpart = dog.OwnerID
	}

	unlock := e.locks.Lock(pairKey(userID, counterpart))
	defer unlock()

	if err := e.swipes.RecordLike(ctx, Swipe{
		ActorUserID:   userID,
		DogID:         dog.ID,
		TargetOwnerID: dog.OwnerID,
		Action:        ActionLike,
		CreatedAt:     e.now().UTC(),
	}); err != nil {
		return Outcome{}, err
	}

	// el par ya tiene match: se devuelve el existente
	existing, err := e.matches.FindBetween(ctx, userID, counterpart)
	if err == nil {
		conv, err := e.convRepo.GetByMatchID(ctx, existing.ID)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{IsMatch: true, Match: &existing, Conversation: &conv}, nil
	}
	if !errors.Is(err, ErrMatchNotFound) {
		return Outcome{}, err
	}

	ok, err := e.strategy.Decide(ctx, Swipe{
		ActorUserID:   userID,
		DogID:         dog.ID,
		TargetOwnerID: dog.OwnerID,
		Action:        ActionLike,
	})
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return Outcome{}, nil
	}

	m := Match{
		ID:           uuid.NewString(),
		Participants: [2]string{userID, counterpart},
		DogID:        dog.ID,
		Strategy:     e.strategy.Name(),
		Status:       StatusActive,
		CreatedAt:    e.now().UTC(),
	}
	conv := e.convs.Open(m)

	if err := e.pairs.CreatePair(ctx, m, conv); err != nil {
		return Outcome{}, err
	}

	e.obs.MatchCreated(m.Strategy)
	e.log.Info("match created", map[string]any{
		"match_id":        m.ID,
		"conversation_id": conv.ID,
		"strategy":        m.Strategy,
	})

	return Outcome{IsMatch: true, Created: true, Match: &m, Conversation: &conv}, nil
}

func (e *Engine) CountMatches(ctx context.Context) (int, error) {
	return e.matches.Count(ctx)
}

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return "pair:" + a + "|" + b
}
