package memory

import (
	"sync"

	"tin-dog/internal/domain/dogs"
	"tin-dog/internal/domain/matching"
	"tin-dog/internal/domain/users"
)

// Store guarda las cuatro colecciones bajo un único RWMutex. Los repos
// que expone comparten ese lock, así CreatePair es una sola sección crítica.
type Store struct {
	mu sync.RWMutex

	users       map[string]users.User
	usersByMail map[string]string

	dogs     map[string]dogs.Dog
	dogOrder []string
	dogSeq   int64

	likes   []matching.Swipe
	matches []matching.Match

	convs       map[string]matching.Conversation
	convByMatch map[string]string
	messages    map[string][]matching.Message
}

func NewStore() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.users = make(map[string]users.User)
	s.usersByMail = make(map[string]string)
	s.dogs = make(map[string]dogs.Dog)
	s.dogOrder = nil
	s.dogSeq = 0
	s.likes = nil
	s.matches = nil
	s.convs = make(map[string]matching.Conversation)
	s.convByMatch = make(map[string]string)
	s.messages = make(map[string][]matching.Message)
}

func (s *Store) Users() users.Repository { return &userRepo{s: s} }
func (s *Store) Dogs() dogs.Repository { return &dogRepo{s: s} }
func (s *Store) Swipes() matching.SwipeRepository { return &swipeRepo{s: s} }
func (s *Store) Matches() matching.MatchRepository { return &matchRepo{s: s} }
func (s *Store) Conversations() matching.ConversationRepository { return &convRepo{s: s} }
func (s *Store) Pairs() matching.PairStore { return &pairStore{s: s} }

// ConversationData es una conversación con sus mensajes (para snapshots).
type ConversationData struct {
	Conversation matching.Conversation
	Messages     []matching.Message
}

// Data es el contenido completo del store, en orden estable.
type Data struct {
	Users         []users.User
	Dogs          []dogs.Dog
	Likes         []matching.Swipe
	Matches       []matching.Match
	Conversations []ConversationData
}

// Export copia el estado actual.
func (s *Store) Export() Data {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var d Data
	for _, u := range s.users {
		d.Users = append(d.Users, cloneUser(u))
	}
	sortUsers(d.Users)

	for _, id := range s.dogOrder {
		d.Dogs = append(d.Dogs, cloneDog(s.dogs[id]))
	}

	d.Likes = append(d.Likes, s.likes...)
	d.Matches = append(d.Matches, s.matches...)

	for _, m := range s.matches {
		cid, ok := s.convByMatch[m.ID]
		if !ok {
			continue
		}
		d.Conversations = append(d.Conversations, ConversationData{
			Conversation: s.convs[cid],
			Messages:     append([]matching.Message(nil), s.messages[cid]...),
		})
	}
	return d
}

// Import reemplaza todo el estado. Los dogs conservan su orden.
func (s *Store) Import(d Data) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	for _, u := range d.Users {
		s.users[u.ID] = cloneUser(u)
		s.usersByMail[u.Email] = u.ID
	}
	for _, dog := range d.Dogs {
		s.dogSeq++
		dog.Seq = s.dogSeq
		s.dogs[dog.ID] = cloneDog(dog)
		s.dogOrder = append(s.dogOrder, dog.ID)
	}
	s.likes = append(s.likes, d.Likes...)
	s.matches = append(s.matches, d.Matches...)
	for _, c := range d.Conversations {
		s.convs[c.Conversation.ID] = c.Conversation
		s.convByMatch[c.Conversation.MatchID] = c.Conversation.ID
		s.messages[c.Conversation.ID] = append([]matching.Message(nil), c.Messages...)
	}
}
