package matching

import (
	"time"

	"tin-dog/internal/domain/dogs"
	"tin-dog/internal/domain/users"
	"tin-dog/internal/platform/apperr"
)

var (
	ErrNotFound       = apperr.New(apperr.CodeNotFound, "conversation not found")
	ErrMatchNotFound  = apperr.New(apperr.CodeNotFound, "match not found")
	ErrForbidden      = apperr.New(apperr.CodeForbidden, "access denied")
	ErrInvalidAction  = apperr.New(apperr.CodeValidation, "action must be like or pass")
	ErrOwnDog         = apperr.New(apperr.CodeValidation, "cannot swipe your own dog")
	ErrEmptyContent   = apperr.New(apperr.CodeValidation, "message content is required")
	ErrContentTooLong = apperr.New(apperr.CodeValidation, "message content too long")
)

// MaxContentLen en runes.
const MaxContentLen = 2000

type Action string

const (
	ActionLike Action = "like"
	ActionPass Action = "pass"
)

func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionLike, ActionPass:
		return Action(s), nil
	default:
		return "", ErrInvalidAction
	}
}

const StatusActive = "active"

// Swipe es una entrada del ledger. Solo se persisten los likes.
type Swipe struct {
	ActorUserID   string
	DogID         string
	TargetOwnerID string // "" si el perro es de catálogo
	Action        Action
	CreatedAt     time.Time
}

// Match une al actor (Participants[0]) con la contraparte: el dueño del perro
// si tiene dueño, o el id del perro de catálogo.
type Match struct {
	ID           string
	Participants [2]string
	DogID        string
	Strategy     string
	Status       string
	CreatedAt    time.Time
}

func (m Match) Has(id string) bool {
	return id != "" && (m.Participants[0] == id || m.Participants[1] == id)
}

// Other devuelve el participante que no es id.
func (m Match) Other(id string) string {
	if m.Participants[0] == id {
		return m.Participants[1]
	}
	return m.Participants[0]
}

type Conversation struct {
	ID           string
	MatchID      string
	Participants [2]string
	CreatedAt    time.Time
}

func (c Conversation) Has(id string) bool {
	return id != "" && (c.Participants[0] == id || c.Participants[1] == id)
}

// Message: Seq y Timestamp son estrictamente crecientes dentro de una conversación.
type Message struct {
	ID             string
	ConversationID string
	Seq            int64
	SenderID       string
	Content        string
	Timestamp      time.Time
	Read           bool
}

type PartyKind string

const (
	PartyDog     PartyKind = "dog"
	PartyUser    PartyKind = "user"
	PartyUnknown PartyKind = "unknown"
)

// Party es la otra parte de un match: un perro o un usuario, nunca ambos.
type Party struct {
	Kind PartyKind
	ID   string
	Dog  *dogs.Dog
	User *users.User
}

// Outcome es el resultado de un swipe.
type Outcome struct {
	IsMatch      bool
	Created      bool // false si el match ya existía
	Match        *Match
	Conversation *Conversation
}

// Summary es una fila de la lista de matches del usuario.
type Summary struct {
	Match        Match
	OtherParty   Party
	Conversation Conversation
	Unread       int
}
