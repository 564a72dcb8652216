package memory

import (
	"context"
	"errors"

	"tin-dog/internal/domain/matching"
)

var errPairExists = errors.New("match or conversation already exists")

type swipeRepo struct {
	s *Store
}

func (r *swipeRepo) RecordLike(ctx context.Context, sw matching.Swipe) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, l := range r.s.likes {
		if l.ActorUserID == sw.ActorUserID && l.DogID == sw.DogID {
			return nil
		}
	}
	r.s.likes = append(r.s.likes, sw)
	return nil
}

func (r *swipeRepo) HasLikeOnOwner(ctx context.Context, actorUserID, ownerID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if ownerID == "" {
		return false, nil
	}
	for _, l := range r.s.likes {
		if l.ActorUserID == actorUserID && l.TargetOwnerID == ownerID {
			return true, nil
		}
	}
	return false, nil
}

type matchRepo struct {
	s *Store
}

func (r *matchRepo) GetByID(ctx context.Context, id string) (matching.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, m := range r.s.matches {
		if m.ID == id {
			return m, nil
		}
	}
	return matching.Match{}, matching.ErrMatchNotFound
}

func (r *matchRepo) FindBetween(ctx context.Context, a, b string) (matching.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if m, ok := r.s.findBetween(a, b); ok {
		return m, nil
	}
	return matching.Match{}, matching.ErrMatchNotFound
}

func (r *matchRepo) ListByParticipant(ctx context.Context, participantID string) ([]matching.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]matching.Match, 0)
	for _, m := range r.s.matches {
		if m.Has(participantID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *matchRepo) Count(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.matches), nil
}

type convRepo struct {
	s *Store
}

func (r *convRepo) GetByID(ctx context.Context, id string) (matching.Conversation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.convs[id]
	if !ok {
		return matching.Conversation{}, matching.ErrNotFound
	}
	return c, nil
}

func (r *convRepo) GetByMatchID(ctx context.Context, matchID string) (matching.Conversation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.convByMatch[matchID]
	if !ok {
		return matching.Conversation{}, matching.ErrNotFound
	}
	return r.s.convs[id], nil
}

func (r *convRepo) AppendMessage(ctx context.Context, m matching.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.convs[m.ConversationID]; !ok {
		return matching.ErrNotFound
	}
	r.s.messages[m.ConversationID] = append(r.s.messages[m.ConversationID], m)
	return nil
}

func (r *convRepo) ListMessages(ctx context.Context, conversationID string) ([]matching.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	// se agregan en orden de Seq, no hace falta ordenar
	return append([]matching.Message{}, r.s.messages[conversationID]...), nil
}

func (r *convRepo) LastMessage(ctx context.Context, conversationID string) (matching.Message, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ms := r.s.messages[conversationID]
	if len(ms) == 0 {
		return matching.Message{}, false, nil
	}
	return ms[len(ms)-1], true, nil
}

func (r *convRepo) MarkRead(ctx context.Context, conversationID, readerID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ms := r.s.messages[conversationID]
	n := 0
	for i := range ms {
		if ms[i].SenderID != readerID && !ms[i].Read {
			ms[i].Read = true
			n++
		}
	}
	return n, nil
}

func (r *convRepo) CountUnread(ctx context.Context, conversationID, readerID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, m := range r.s.messages[conversationID] {
		if m.SenderID != readerID && !m.Read {
			n++
		}
	}
	return n, nil
}

func (r *convRepo) Count(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.convs), nil
}

type pairStore struct {
	s *Store
}

// CreatePair inserta match y conversación en la misma sección crítica.
func (p *pairStore) CreatePair(ctx context.Context, m matching.Match, c matching.Conversation) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	if _, ok := p.s.findBetween(m.Participants[0], m.Participants[1]); ok {
		return errPairExists
	}
	if _, ok := p.s.convs[c.ID]; ok {
		return errPairExists
	}

	p.s.matches = append(p.s.matches, m)
	p.s.convs[c.ID] = c
	p.s.convByMatch[m.ID] = c.ID
	return nil
}

func (s *Store) findBetween(a, b string) (matching.Match, bool) {
	for _, m := range s.matches {
		if m.Has(a) && m.Other(a) == b {
			return m, true
		}
	}
	return matching.Match{}, false
}
