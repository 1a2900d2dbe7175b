package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	byEmail map[string]*User
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{byEmail: map[string]*User{}}
}

func (r *fakeRepository) Create(ctx context.Context, u *User) error {
	u.ID = uuid.NewString()
	r.byEmail[u.Email] = u
	return nil
}

func (r *fakeRepository) GetByID(ctx context.Context, id string) (*User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (r *fakeRepository) TouchLastLogin(ctx context.Context, id string) error {
	return nil
}

// plainHasher sidesteps bcrypt cost in tests.
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

func (plainHasher) Compare(hash, plain string) error {
	if hash != "hashed:"+plain {
		return ErrInvalidCredentials
	}
	return nil
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepository(), plainHasher{})

	t.Run("normalizes email and hashes password", func(t *testing.T) {
		u, err := svc.Register(ctx, "  Ada@Example.COM ", "correct horse", "Ada")
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", u.Email)
		assert.Equal(t, "hashed:correct horse", u.PasswordHash)
		require.NotNil(t, u.DisplayName)
		assert.Equal(t, "Ada", *u.DisplayName)
		assert.True(t, u.IsActive)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, "ada@example.com", "another pass", "")
		assert.ErrorIs(t, err, ErrEmailAlreadyUsed)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := svc.Register(ctx, "grace@example.com", "short", "")
		assert.Error(t, err)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := NewService(repo, plainHasher{})

	_, err := svc.Register(ctx, "ada@example.com", "correct horse", "Ada")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		u, err := svc.Login(ctx, "ADA@example.com", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", u.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "ada@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email looks like bad credentials", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", "whatever")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive user", func(t *testing.T) {
		repo.byEmail["ada@example.com"].IsActive = false
		defer func() { repo.byEmail["ada@example.com"].IsActive = true }()

		_, err := svc.Login(ctx, "ada@example.com", "correct horse")
		assert.ErrorIs(t, err, ErrInactiveUser)
	})
}
