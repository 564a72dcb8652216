package matching

import (
	"context"

	"tin-dog/internal/domain/dogs"
	"tin-dog/internal/domain/users"
)

type SwipeRepository interface {
	// RecordLike es idempotente por (actor, dog).
	RecordLike(ctx context.Context, s Swipe) error
	// HasLikeOnOwner: actor ya dio like a algún perro cuyo dueño es ownerID.
	HasLikeOnOwner(ctx context.Context, actorUserID, ownerID string) (bool, error)
}

type MatchRepository interface {
	GetByID(ctx context.Context, id string) (Match, error)
	// FindBetween ignora el orden de los participantes. ErrMatchNotFound si no hay.
	FindBetween(ctx context.Context, a, b string) (Match, error)
	// ListByParticipant en orden de creación.
	ListByParticipant(ctx context.Context, participantID string) ([]Match, error)
	Count(ctx context.Context) (int, error)
}

type ConversationRepository interface {
	GetByID(ctx context.Context, id string) (Conversation, error)
	GetByMatchID(ctx context.Context, matchID string) (Conversation, error)
	AppendMessage(ctx context.Context, m Message) error
	// ListMessages en orden de Seq.
	ListMessages(ctx context.Context, conversationID string) ([]Message, error)
	// LastMessage devuelve ok=false si la conversación no tiene mensajes.
	LastMessage(ctx context.Context, conversationID string) (Message, bool, error)
	// MarkRead marca como leídos los mensajes que no envió readerID.
	MarkRead(ctx context.Context, conversationID, readerID string) (int, error)
	CountUnread(ctx context.Context, conversationID, readerID string) (int, error)
	Count(ctx context.Context) (int, error)
}

// PairStore persiste Match y Conversation juntos o ninguno.
type PairStore interface {
	CreatePair(ctx context.Context, m Match, c Conversation) error
}

// DogLookup es lo que matching necesita del catálogo.
type DogLookup interface {
	GetByID(ctx context.Context, id string) (dogs.Dog, error)
}

// UserLookup resuelve usuarios para la otra parte de un match.
type UserLookup interface {
	Get(ctx context.Context, id string) (users.User, error)
}

// Observer recibe eventos del motor (métricas).
type Observer interface {
	SwipeRecorded(action Action)
	MatchCreated(strategy string)
	MessagePosted()
}

type nopObserver struct{}

func (nopObserver) SwipeRecorded(Action) {}
func (nopObserver) MatchCreated(string) {}
func (nopObserver) MessagePosted() {}
