package users

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"tin-dog/internal/domain/dogs"
	"tin-dog/internal/ports/auth"
)

// -------------------------
// Fakes (in-memory, thread-safe)
// -------------------------

type testRepo struct {
	mu        sync.Mutex
	byID      map[string]User
	failWrite error
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]User{}}
}

func (r *testRepo) Create(ctx context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cur := range r.byID {
		if cur.Email == u.Email {
			return ErrDuplicateEmail
		}
	}
	r.byID[u.ID] = u
	return nil
}

func (r *testRepo) Update(ctx context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrite != nil {
		return r.failWrite
	}
	if _, ok := r.byID[u.ID]; !ok {
		return ErrNotFound
	}
	r.byID[u.ID] = u
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *testRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *testRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID), nil
}

type testDogs struct {
	mu         sync.Mutex
	byOwner    map[string]dogs.Dog
	failCreate error
	seq        int
}

func newTestDogs() *testDogs {
	return &testDogs{byOwner: map[string]dogs.Dog{}}
}

func (d *testDogs) CreateOwned(ctx context.Context, ownerID string, in dogs.CreateInput) (dogs.Dog, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failCreate != nil {
		return dogs.Dog{}, d.failCreate
	}
	d.seq++
	dog := dogs.Dog{
		ID:        "dog-" + ownerID,
		OwnerID:   ownerID,
		Name:      in.Name,
		Age:       in.Age,
		Breed:     in.Breed,
		Image:     in.Image,
		Bio:       in.Bio,
		Interests: in.Interests,
		Seq:       int64(d.seq),
	}
	d.byOwner[ownerID] = dog
	return dog, nil
}

func (d *testDogs) GetByOwner(ctx context.Context, ownerID string) (dogs.Dog, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	dog, ok := d.byOwner[ownerID]
	if !ok {
		return dogs.Dog{}, dogs.ErrNotFound
	}
	return dog, nil
}

func (d *testDogs) Update(ctx context.Context, dog dogs.Dog) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.byOwner[dog.OwnerID]; !ok {
		return dogs.ErrNotFound
	}
	d.byOwner[dog.OwnerID] = dog
	return nil
}

func (d *testDogs) Delete(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, dog := range d.byOwner {
		if dog.ID == id {
			delete(d.byOwner, k)
		}
	}
	return nil
}

type testImages struct {
	saved   []string
	removed []string
	failErr error
}

func (s *testImages) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if s.failErr != nil {
		return "", s.failErr
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	ref := "/uploads/" + filename
	s.saved = append(s.saved, ref)
	return ref, nil
}

func (s *testImages) Remove(ref string) error {
	s.removed = append(s.removed, ref)
	return nil
}

type testTokens struct{}

func (testTokens) Issue(userID, email string) (string, error) { return "tok-" + userID, nil }

func (testTokens) Verify(ctx context.Context, token string) (auth.Claims, error) {
	id, ok := strings.CutPrefix(token, "tok-")
	if !ok {
		return auth.Claims{}, auth.ErrInvalidToken
	}
	return auth.Claims{UserID: id}, nil
}

type fixture struct {
	svc    *Service
	repo   *testRepo
	dogs   *testDogs
	images *testImages
}

func newFixture() fixture {
	f := fixture{repo: newTestRepo(), dogs: newTestDogs(), images: &testImages{}}
	f.svc = NewService(Deps{
		Repo:     f.repo,
		Dogs:     f.dogs,
		Images:   f.images,
		Tokens:   testTokens{},
		Verifier: testTokens{},
	})
	f.svc.hashCost = bcrypt.MinCost
	return f
}

func buddy() RegisterInput {
	return RegisterInput{
		OwnerName: "Ana",
		DogName:   "Buddy",
		Email:     "ana@example.com",
		Password:  "secret1",
		DogBreed:  "Golden Retriever",
	}
}

// -------------------------
// Tests
// -------------------------

func TestService_Register_CreatesUserDogAndToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	u, token, err := f.svc.Register(ctx, buddy())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.PasswordHash != "" {
		t.Fatalf("password hash must not be returned")
	}
	if token == "" {
		t.Fatalf("expected token")
	}

	stored, _ := f.repo.GetByID(ctx, u.ID)
	if stored.PasswordHash == "secret1" || bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")) != nil {
		t.Fatalf("expected bcrypt hash to be stored")
	}

	dog, err := f.dogs.GetByOwner(ctx, u.ID)
	if err != nil {
		t.Fatalf("expected owned dog: %v", err)
	}
	if dog.Name != "Buddy" || dog.Breed != "Golden Retriever" {
		t.Fatalf("unexpected dog %+v", dog)
	}

	id, err := f.svc.VerifyToken(ctx, token)
	if err != nil || id != u.ID {
		t.Fatalf("expected token to resolve to %s, got %q err=%v", u.ID, id, err)
	}
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	if _, _, err := f.svc.Register(ctx, buddy()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, _, err := f.svc.Register(ctx, buddy())
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if n, _ := f.repo.Count(ctx); n != 1 {
		t.Fatalf("expected exactly one record, got %d", n)
	}
}

func TestService_Register_ConcurrentSameEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		oks  int
		dups int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.svc.Register(ctx, buddy())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				oks++
			case errors.Is(err, ErrDuplicateEmail):
				dups++
			}
		}()
	}
	wg.Wait()

	if oks != 1 || dups != workers-1 {
		t.Fatalf("expected 1 success and %d duplicates, got %d/%d", workers-1, oks, dups)
	}
	if n, _ := f.repo.Count(ctx); n != 1 {
		t.Fatalf("expected exactly one record, got %d", n)
	}
}

func TestService_Register_RollsBackWhenDogFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.dogs.failCreate = errors.New("dogs down")

	if _, _, err := f.svc.Register(ctx, buddy()); err == nil {
		t.Fatalf("expected error")
	}
	if n, _ := f.repo.Count(ctx); n != 0 {
		t.Fatalf("expected user rollback, got %d users", n)
	}
}

func TestService_Register_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	in := buddy()
	in.Password = "123"
	if _, _, err := f.svc.Register(ctx, in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short password, got %v", err)
	}

	in = buddy()
	in.DogName = "  "
	if _, _, err := f.svc.Register(ctx, in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty dog name, got %v", err)
	}
}

func TestService_Authenticate_SameErrorForUnknownAndWrongPassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, _, _ = f.svc.Register(ctx, buddy())

	_, _, errUnknown := f.svc.Authenticate(ctx, "nobody@example.com", "secret1")
	_, _, errWrong := f.svc.Authenticate(ctx, "ana@example.com", "nope")

	if !errors.Is(errUnknown, ErrInvalidCredentials) || !errors.Is(errWrong, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v / %v", errUnknown, errWrong)
	}
	if errUnknown.Error() != errWrong.Error() {
		t.Fatalf("errors must be indistinguishable: %q vs %q", errUnknown, errWrong)
	}

	u, token, err := f.svc.Authenticate(ctx, "ana@example.com", "secret1")
	if err != nil || token == "" || u.Email != "ana@example.com" {
		t.Fatalf("expected successful login, got %+v %q %v", u, token, err)
	}
}

func TestService_UpdateProfile_PartialMergeMirrorsDog(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	u, _, _ := f.svc.Register(ctx, buddy())

	loc := "NY"
	interests := []string{"fetch", "swimming"}
	p, err := f.svc.UpdateProfile(ctx, u.ID, ProfilePatch{Location: &loc, Interests: &interests}, nil)
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if p.Breed != "Golden Retriever" {
		t.Fatalf("absent fields must be kept, got breed %q", p.Breed)
	}
	if p.Location != "NY" || len(p.Interests) != 2 {
		t.Fatalf("unexpected profile %+v", p)
	}

	dog, _ := f.dogs.GetByOwner(ctx, u.ID)
	if dog.Location != "NY" || len(dog.Interests) != 2 {
		t.Fatalf("expected dog to mirror profile, got %+v", dog)
	}
}

func TestService_UpdateProfile_WithImage(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	u, _, _ := f.svc.Register(ctx, buddy())

	p, err := f.svc.UpdateProfile(ctx, u.ID, ProfilePatch{}, &ImageUpload{Filename: "a.png", Data: strings.NewReader("png")})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if p.Image != "/uploads/a.png" {
		t.Fatalf("expected new image ref, got %q", p.Image)
	}
	dog, _ := f.dogs.GetByOwner(ctx, u.ID)
	if dog.Image != p.Image {
		t.Fatalf("expected dog image %q, got %q", p.Image, dog.Image)
	}
}

func TestService_UpdateProfile_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	u, _, _ := f.svc.Register(ctx, buddy())
	before, _ := f.dogs.GetByOwner(ctx, u.ID)

	f.repo.failWrite = errors.New("disk full")

	loc := "LA"
	_, err := f.svc.UpdateProfile(ctx, u.ID, ProfilePatch{Location: &loc}, &ImageUpload{Filename: "b.png", Data: strings.NewReader("png")})
	if err == nil {
		t.Fatalf("expected error")
	}

	after, _ := f.dogs.GetByOwner(ctx, u.ID)
	if after.Location != before.Location || after.Image != before.Image {
		t.Fatalf("dog must be restored, got %+v", after)
	}
	stored, _ := f.repo.GetByID(ctx, u.ID)
	if stored.Profile.Location != "" {
		t.Fatalf("user must be unchanged, got %+v", stored.Profile)
	}
	if len(f.images.removed) != 1 || f.images.removed[0] != "/uploads/b.png" {
		t.Fatalf("expected orphan image removed, got %v", f.images.removed)
	}
}

func TestService_UpdateProfile_ImageRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	u, _, _ := f.svc.Register(ctx, buddy())
	f.images.failErr = ErrInvalidInput

	bio := "new"
	if _, err := f.svc.UpdateProfile(ctx, u.ID, ProfilePatch{Bio: &bio}, &ImageUpload{Filename: "x.txt", Data: strings.NewReader("x")}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	stored, _ := f.repo.GetByID(ctx, u.ID)
	if stored.Profile.Bio != "" {
		t.Fatalf("profile must be unchanged, got %+v", stored.Profile)
	}
}

func TestService_UpdateProfile_UnknownUser(t *testing.T) {
	f := newFixture()
	bio := "x"
	if _, err := f.svc.UpdateProfile(context.Background(), "ghost", ProfilePatch{Bio: &bio}, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
