package matching

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"tin-dog/internal/domain/dogs"
	"tin-dog/internal/domain/users"
	"tin-dog/internal/platform/keylock"
	"tin-dog/internal/platform/logger"
)

// Conversations gobierna el acceso a mensajes por pertenencia.
// No guarda estado propio: todo vive en los repositorios.
type Conversations struct {
	repo    ConversationRepository
	matches MatchRepository
	dogs    DogLookup
	users   UserLookup
	locks   *keylock.Locker
	obs     Observer
	log     logger.Logger
	now     func() time.Time
}

type ConversationDeps struct {
	Repo     ConversationRepository
	Matches  MatchRepository
	Dogs     DogLookup
	Users    UserLookup
	Observer Observer
	Log      logger.Logger
}

func NewConversations(d ConversationDeps) *Conversations {
	obs := d.Observer
	if obs == nil {
		obs = nopObserver{}
	}
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Conversations{
		repo:    d.Repo,
		matches: d.Matches,
		dogs:    d.Dogs,
		users:   d.Users,
		locks:   keylock.New(),
		obs:     obs,
		log:     log.With(map[string]any{"component": "conversations"}),
		now:     time.Now,
	}
}

// Open arma la conversación de un match recién creado. No persiste:
// el motor la guarda junto con el match.
func (c *Conversations) Open(m Match) Conversation {
	return Conversation{
		ID:           uuid.NewString(),
		MatchID:      m.ID,
		Participants: m.Participants,
		CreatedAt:    m.CreatedAt,
	}
}

// List une cada match de userID con su conversación y la otra parte.
func (c *Conversations) List(ctx context.Context, userID string) ([]Summary, error) {
	ms, err := c.matches.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(ms))
	for _, m := range ms {
		conv, err := c.repo.GetByMatchID(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		unread, err := c.repo.CountUnread(ctx, conv.ID, userID)
		if err != nil {
			return nil, err
		}
		party, err := c.resolveParty(ctx, m.Other(userID))
		if err != nil {
			return nil, err
		}
		out = append(out, Summary{
			Match:        m,
			OtherParty:   party,
			Conversation: conv,
			Unread:       unread,
		})
	}
	return out, nil
}

// Messages devuelve los mensajes en orden de commit.
func (c *Conversations) Messages(ctx context.Context, conversationID, requesterID string) ([]Message, error) {
	if _, err := c.authorize(ctx, conversationID, requesterID); err != nil {
		return nil, err
	}
	return c.repo.ListMessages(ctx, conversationID)
}

func (c *Conversations) Post(ctx context.Context, conversationID, senderID, content string) (Message, error) {
	conv, err := c.authorize(ctx, conversationID, senderID)
	if err != nil {
		return Message{}, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return Message{}, ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > MaxContentLen {
		return Message{}, ErrContentTooLong
	}

	// un escritor por conversación: Seq y Timestamp no se intercalan
	unlock := c.locks.Lock("conv:" + conv.ID)
	defer unlock()

	last, ok, err := c.repo.LastMessage(ctx, conv.ID)
	if err != nil {
		return Message{}, err
	}

	ts := c.now().UTC().Truncate(time.Microsecond)
	seq := int64(1)
	if ok {
		seq = last.Seq + 1
		if !ts.After(last.Timestamp) {
			ts = last.Timestamp.Add(time.Microsecond)
		}
	}

	msg := Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		Seq:            seq,
		SenderID:       senderID,
		Content:        content,
		Timestamp:      ts,
		Read:           false,
	}
	if err := c.repo.AppendMessage(ctx, msg); err != nil {
		return Message{}, err
	}

	c.obs.MessagePosted()
	return msg, nil
}

// MarkRead marca como leído lo que envió la otra parte.
func (c *Conversations) MarkRead(ctx context.Context, conversationID, readerID string) (int, error) {
	conv, err := c.authorize(ctx, conversationID, readerID)
	if err != nil {
		return 0, err
	}

	unlock := c.locks.Lock("conv:" + conv.ID)
	defer unlock()

	return c.repo.MarkRead(ctx, conv.ID, readerID)
}

func (c *Conversations) Count(ctx context.Context) (int, error) {
	return c.repo.Count(ctx)
}

func (c *Conversations) authorize(ctx context.Context, conversationID, userID string) (Conversation, error) {
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return Conversation{}, ErrNotFound
	}
	conv, err := c.repo.GetByID(ctx, conversationID)
	if err != nil {
		return Conversation{}, err
	}
	if !conv.Has(userID) {
		return Conversation{}, ErrForbidden
	}
	return conv, nil
}

// resolveParty prueba primero como perro y después como usuario.
func (c *Conversations) resolveParty(ctx context.Context, id string) (Party, error) {
	d, err := c.dogs.GetByID(ctx, id)
	if err == nil {
		return Party{Kind: PartyDog, ID: id, Dog: &d}, nil
	}
	if !dogs.IsNotFound(err) {
		return Party{}, err
	}

	if c.users != nil {
		u, err := c.users.Get(ctx, id)
		if err == nil {
			return Party{Kind: PartyUser, ID: id, User: &u}, nil
		}
		if !errors.Is(err, users.ErrNotFound) {
			return Party{}, err
		}
	}

	c.log.Warn("match party not resolved", map[string]any{"party_id": id})
	return Party{Kind: PartyUnknown, ID: id}, nil
}
