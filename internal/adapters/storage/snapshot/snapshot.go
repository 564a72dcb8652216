package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tin-dog/internal/adapters/storage/memory"
	"tin-dog/internal/domain/dogs"
	"tin-dog/internal/domain/matching"
	"tin-dog/internal/domain/users"
)

// Un archivo por colección, igual que el layout data/*.json histórico.
const (
	usersFile         = "users.json"
	dogsFile          = "dogs.json"
	matchesFile       = "matches.json"
	conversationsFile = "conversations.json"
)

type userRecord struct {
	ID           string        `json:"id"`
	OwnerName    string        `json:"ownerName"`
	DogName      string        `json:"dogName"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"password"`
	Profile      profileRecord `json:"profile"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

type profileRecord struct {
	Age        string   `json:"age"`
	Breed      string   `json:"breed"`
	Bio        string   `json:"bio"`
	Image      string   `json:"image"`
	Location   string   `json:"location"`
	Interests  []string `json:"interests"`
	Vaccinated bool     `json:"vaccinated"`
	Neutered   bool     `json:"neutered"`
}

type dogRecord struct {
	ID         string    `json:"id"`
	OwnerID    *string   `json:"ownerId"`
	Name       string    `json:"name"`
	Age        string    `json:"age"`
	Breed      string    `json:"breed"`
	Image      string    `json:"image"`
	Bio        string    `json:"bio"`
	Location   string    `json:"location"`
	Interests  []string  `json:"interests"`
	Vaccinated bool      `json:"vaccinated"`
	Neutered   bool      `json:"neutered"`
	CreatedAt  time.Time `json:"createdAt"`
}

type matchRecord struct {
	ID           string    `json:"id"`
	Participants [2]string `json:"participants"`
	DogID        string    `json:"dogId"`
	Strategy     string    `json:"strategy"`
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
}

type likeRecord struct {
	ActorUserID   string    `json:"actorUserId"`
	DogID         string    `json:"dogId"`
	TargetOwnerID string    `json:"targetOwnerId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type matchesDoc struct {
	Matches []matchRecord `json:"matches"`
	Likes   []likeRecord  `json:"likes"`
}

type messageRecord struct {
	ID        string    `json:"id"`
	Seq       int64     `json:"seq"`
	SenderID  string    `json:"senderId"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

type conversationRecord struct {
	ID           string          `json:"id"`
	MatchID      string          `json:"matchId"`
	Participants [2]string       `json:"participants"`
	Messages     []messageRecord `json:"messages"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Load lee los archivos de dir y reemplaza el estado del store.
// Un archivo ausente es una colección vacía.
func Load(dir string, store *memory.Store) error {
	var (
		us    []userRecord
		ds    []dogRecord
		ms    matchesDoc
		convs []conversationRecord
	)
	if err := readJSON(filepath.Join(dir, usersFile), &us); err != nil {
		return err
	}
	if err := readJSON(filepath.Join(dir, dogsFile), &ds); err != nil {
		return err
	}
	if err := readJSON(filepath.Join(dir, matchesFile), &ms); err != nil {
		return err
	}
	if err := readJSON(filepath.Join(dir, conversationsFile), &convs); err != nil {
		return err
	}

	var data memory.Data
	for _, u := range us {
		data.Users = append(data.Users, fromUserRecord(u))
	}
	for _, d := range ds {
		data.Dogs = append(data.Dogs, fromDogRecord(d))
	}
	for _, m := range ms.Matches {
		data.Matches = append(data.Matches, matching.Match{
			ID:           m.ID,
			Participants: m.Participants,
			DogID:        m.DogID,
			Strategy:     m.Strategy,
			Status:       m.Status,
			CreatedAt:    m.Timestamp,
		})
	}
	for _, l := range ms.Likes {
		data.Likes = append(data.Likes, matching.Swipe{
			ActorUserID:   l.ActorUserID,
			DogID:         l.DogID,
			TargetOwnerID: l.TargetOwnerID,
			Action:        matching.ActionLike,
			CreatedAt:     l.CreatedAt,
		})
	}
	for _, c := range convs {
		cd := memory.ConversationData{Conversation: matching.Conversation{
			ID:           c.ID,
			MatchID:      c.MatchID,
			Participants: c.Participants,
			CreatedAt:    c.CreatedAt,
		}}
		for _, m := range c.Messages {
			cd.Messages = append(cd.Messages, matching.Message{
				ID:             m.ID,
				ConversationID: c.ID,
				Seq:            m.Seq,
				SenderID:       m.SenderID,
				Content:        m.Content,
				Timestamp:      m.Timestamp,
				Read:           m.Read,
			})
		}
		data.Conversations = append(data.Conversations, cd)
	}

	store.Import(data)
	return nil
}

// Save escribe cada colección por separado con rename atómico. Si una falla
// las demás igual se intentan; se devuelven todos los errores juntos.
func Save(dir string, store *memory.Store) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("snapshot: mkdir: %w", err)
	}

	data := store.Export()

	us := make([]userRecord, 0, len(data.Users))
	for _, u := range data.Users {
		us = append(us, toUserRecord(u))
	}
	ds := make([]dogRecord, 0, len(data.Dogs))
	for _, d := range data.Dogs {
		ds = append(ds, toDogRecord(d))
	}
	ms := matchesDoc{Matches: []matchRecord{}, Likes: []likeRecord{}}
	for _, m := range data.Matches {
		ms.Matches = append(ms.Matches, matchRecord{
			ID:           m.ID,
			Participants: m.Participants,
			DogID:        m.DogID,
			Strategy:     m.Strategy,
			Status:       m.Status,
			Timestamp:    m.CreatedAt,
		})
	}
	for _, l := range data.Likes {
		ms.Likes = append(ms.Likes, likeRecord{
			ActorUserID:   l.ActorUserID,
			DogID:         l.DogID,
			TargetOwnerID: l.TargetOwnerID,
			CreatedAt:     l.CreatedAt,
		})
	}
	convs := make([]conversationRecord, 0, len(data.Conversations))
	for _, c := range data.Conversations {
		rec := conversationRecord{
			ID:           c.Conversation.ID,
			MatchID:      c.Conversation.MatchID,
			Participants: c.Conversation.Participants,
			Messages:     make([]messageRecord, 0, len(c.Messages)),
			CreatedAt:    c.Conversation.CreatedAt,
		}
		for _, m := range c.Messages {
			rec.Messages = append(rec.Messages, messageRecord{
				ID:        m.ID,
				Seq:       m.Seq,
				SenderID:  m.SenderID,
				Content:   m.Content,
				Timestamp: m.Timestamp,
				Read:      m.Read,
			})
		}
		convs = append(convs, rec)
	}

	return errors.Join(
		writeJSON(filepath.Join(dir, usersFile), us),
		writeJSON(filepath.Join(dir, dogsFile), ds),
		writeJSON(filepath.Join(dir, matchesFile), ms),
		writeJSON(filepath.Join(dir, conversationsFile), convs),
	)
}

func readJSON(path string, out any) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("snapshot: read %s: %w", filepath.Base(path), err)
	}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("snapshot: decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("snapshot: encode %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("snapshot: write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("snapshot: sync %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("snapshot: close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("snapshot: rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

func toUserRecord(u users.User) userRecord {
	return userRecord{
		ID:           u.ID,
		OwnerName:    u.OwnerName,
		DogName:      u.DogName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Profile: profileRecord{
			Age:        u.Profile.Age,
			Breed:      u.Profile.Breed,
			Bio:        u.Profile.Bio,
			Image:      u.Profile.Image,
			Location:   u.Profile.Location,
			Interests:  u.Profile.Interests,
			Vaccinated: u.Profile.Vaccinated,
			Neutered:   u.Profile.Neutered,
		},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func fromUserRecord(r userRecord) users.User {
	return users.User{
		ID:           r.ID,
		OwnerName:    r.OwnerName,
		DogName:      r.DogName,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Profile: users.Profile{
			Age:        r.Profile.Age,
			Breed:      r.Profile.Breed,
			Bio:        r.Profile.Bio,
			Image:      r.Profile.Image,
			Location:   r.Profile.Location,
			Interests:  r.Profile.Interests,
			Vaccinated: r.Profile.Vaccinated,
			Neutered:   r.Profile.Neutered,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toDogRecord(d dogs.Dog) dogRecord {
	var owner *string
	if d.Owned() {
		o := d.OwnerID
		owner = &o
	}
	return dogRecord{
		ID:         d.ID,
		OwnerID:    owner,
		Name:       d.Name,
		Age:        d.Age,
		Breed:      d.Breed,
		Image:      d.Image,
		Bio:        d.Bio,
		Location:   d.Location,
		Interests:  d.Interests,
		Vaccinated: d.Vaccinated,
		Neutered:   d.Neutered,
		CreatedAt:  d.CreatedAt,
	}
}

func fromDogRecord(r dogRecord) dogs.Dog {
	d := dogs.Dog{
		ID:         r.ID,
		Name:       r.Name,
		Age:        r.Age,
		Breed:      r.Breed,
		Image:      r.Image,
		Bio:        r.Bio,
		Location:   r.Location,
		Interests:  r.Interests,
		Vaccinated: r.Vaccinated,
		Neutered:   r.Neutered,
		CreatedAt:  r.CreatedAt,
	}
	if r.OwnerID != nil {
		d.OwnerID = *r.OwnerID
	}
	return d
}
