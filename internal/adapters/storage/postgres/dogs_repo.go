package postgres

import (
	"context"
	"database/sql"
	"errors"

	"tin-dog/internal/domain/dogs"
)

type DogsRepo struct {
	db *sql.DB
}

func NewDogsRepo(db *sql.DB) *DogsRepo {
	return &DogsRepo{db: db}
}

const dogColumns = `
	seq, id, owner_id, name, age, breed, image, bio, location,
	interests, vaccinated, neutered, created_at`

func (r *DogsRepo) Create(ctx context.Context, d dogs.Dog) error {
	interests, err := encodeInterests(d.Interests)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO dogs (
			id, owner_id, name, age, breed, image, bio, location,
			interests, vaccinated, neutered, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		d.ID,
		toNullString(d.OwnerID),
		d.Name,
		d.Age,
		d.Breed,
		d.Image,
		d.Bio,
		d.Location,
		interests,
		d.Vaccinated,
		d.Neutered,
		d.CreatedAt,
	)
	return err
}

func (r *DogsRepo) Update(ctx context.Context, d dogs.Dog) error {
	interests, err := encodeInterests(d.Interests)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE dogs
		SET
			name = $2,
			age = $3,
			breed = $4,
			image = $5,
			bio = $6,
			location = $7,
			interests = $8,
			vaccinated = $9,
			neutered = $10
		WHERE id = $1
	`,
		d.ID,
		d.Name,
		d.Age,
		d.Breed,
		d.Image,
		d.Bio,
		d.Location,
		interests,
		d.Vaccinated,
		d.Neutered,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return dogs.ErrNotFound
	}
	return nil
}

func (r *DogsRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM dogs WHERE id = $1`, id)
	return err
}

func (r *DogsRepo) GetByID(ctx context.Context, id string) (dogs.Dog, error) {
	return scanDog(r.db.QueryRowContext(ctx, `SELECT `+dogColumns+` FROM dogs WHERE id = $1`, id))
}

func (r *DogsRepo) GetByOwner(ctx context.Context, ownerID string) (dogs.Dog, error) {
	if ownerID == "" {
		return dogs.Dog{}, dogs.ErrNotFound
	}
	return scanDog(r.db.QueryRowContext(ctx, `SELECT `+dogColumns+` FROM dogs WHERE owner_id = $1`, ownerID))
}

func (r *DogsRepo) List(ctx context.Context) ([]dogs.Dog, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+dogColumns+` FROM dogs ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]dogs.Dog, 0)
	for rows.Next() {
		d, err := scanDog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DogsRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dogs`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDog(row rowScanner) (dogs.Dog, error) {
	var (
		d         dogs.Dog
		owner     sql.NullString
		interests []byte
	)
	err := row.Scan(
		&d.Seq,
		&d.ID,
		&owner,
		&d.Name,
		&d.Age,
		&d.Breed,
		&d.Image,
		&d.Bio,
		&d.Location,
		&interests,
		&d.Vaccinated,
		&d.Neutered,
		&d.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return dogs.Dog{}, dogs.ErrNotFound
	}
	if err != nil {
		return dogs.Dog{}, err
	}
	if owner.Valid {
		d.OwnerID = owner.String
	}
	if d.Interests, err = decodeInterests(interests); err != nil {
		return dogs.Dog{}, err
	}
	return d, nil
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
