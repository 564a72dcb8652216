package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"tin-dog/internal/domain/users"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

const userColumns = `
	id, owner_name, dog_name, email, password_hash,
	age, breed, bio, image, location, interests, vaccinated, neutered,
	created_at, updated_at`

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	interests, err := encodeInterests(u.Profile.Interests)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		u.ID,
		u.OwnerName,
		u.DogName,
		u.Email,
		u.PasswordHash,
		u.Profile.Age,
		u.Profile.Breed,
		u.Profile.Bio,
		u.Profile.Image,
		u.Profile.Location,
		interests,
		u.Profile.Vaccinated,
		u.Profile.Neutered,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return users.ErrDuplicateEmail
	}
	return err
}

func (r *UsersRepo) Update(ctx context.Context, u users.User) error {
	interests, err := encodeInterests(u.Profile.Interests)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET
			owner_name = $2,
			dog_name = $3,
			email = $4,
			password_hash = $5,
			age = $6,
			breed = $7,
			bio = $8,
			image = $9,
			location = $10,
			interests = $11,
			vaccinated = $12,
			neutered = $13,
			updated_at = $14
		WHERE id = $1
	`,
		u.ID,
		u.OwnerName,
		u.DogName,
		u.Email,
		u.PasswordHash,
		u.Profile.Age,
		u.Profile.Breed,
		u.Profile.Bio,
		u.Profile.Image,
		u.Profile.Location,
		interests,
		u.Profile.Vaccinated,
		u.Profile.Neutered,
		u.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return users.ErrDuplicateEmail
	}
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UsersRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (r *UsersRepo) getOne(ctx context.Context, query string, arg string) (users.User, error) {
	var (
		u         users.User
		interests []byte
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.OwnerName,
		&u.DogName,
		&u.Email,
		&u.PasswordHash,
		&u.Profile.Age,
		&u.Profile.Breed,
		&u.Profile.Bio,
		&u.Profile.Image,
		&u.Profile.Location,
		&interests,
		&u.Profile.Vaccinated,
		&u.Profile.Neutered,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return users.User{}, users.ErrNotFound
	}
	if err != nil {
		return users.User{}, err
	}
	if u.Profile.Interests, err = decodeInterests(interests); err != nil {
		return users.User{}, err
	}
	return u, nil
}

// interests va como JSONB para no depender del soporte de arrays en database/sql
func encodeInterests(in []string) (string, error) {
	if in == nil {
		in = []string{}
	}
	b, err := json.Marshal(in)
	return string(b), err
}

func decodeInterests(b []byte) ([]string, error) {
	out := []string{}
	if len(b) == 0 {
		return out, nil
	}
	err := json.Unmarshal(b, &out)
	return out, err
}
