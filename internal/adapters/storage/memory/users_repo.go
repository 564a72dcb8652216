package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"tin-dog/internal/domain/users"
)

type userRepo struct {
	s *Store
}

func (r *userRepo) Create(ctx context.Context, u users.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user id required")
	}
	if _, exists := r.s.users[u.ID]; exists {
		return errors.New("user already exists")
	}
	// email exacto, case-sensitive
	if _, taken := r.s.usersByMail[u.Email]; taken {
		return users.ErrDuplicateEmail
	}
	r.s.users[u.ID] = cloneUser(u)
	r.s.usersByMail[u.Email] = u.ID
	return nil
}

func (r *userRepo) Update(ctx context.Context, u users.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.users[u.ID]
	if !ok {
		return users.ErrNotFound
	}
	if cur.Email != u.Email {
		if _, taken := r.s.usersByMail[u.Email]; taken {
			return users.ErrDuplicateEmail
		}
		delete(r.s.usersByMail, cur.Email)
		r.s.usersByMail[u.Email] = u.ID
	}
	r.s.users[u.ID] = cloneUser(u)
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.users[id]
	if !ok {
		return nil
	}
	delete(r.s.usersByMail, cur.Email)
	delete(r.s.users, id)
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.usersByMail[email]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return cloneUser(r.s.users[id]), nil
}

func (r *userRepo) Count(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.users), nil
}

func cloneUser(u users.User) users.User {
	u.Profile.Interests = append([]string(nil), u.Profile.Interests...)
	return u
}

// Orden estable por created_at asc (solo para consistencia en dev)
func sortUsers(us []users.User) {
	sort.Slice(us, func(i, j int) bool {
		if us[i].CreatedAt.Equal(us[j].CreatedAt) {
			return us[i].ID < us[j].ID
		}
		return us[i].CreatedAt.Before(us[j].CreatedAt)
	})
}
