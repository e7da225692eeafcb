package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskman/internal/apperr"
)

func TestUserStoreCreate(t *testing.T) {
	store := NewUserStore(testDB)
	ctx := context.Background()

	name := uniqueName("alice")
	user, err := store.Create(ctx, name+"@example.com", name, "digest")
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, name, user.Username)
	assert.Equal(t, name+"@example.com", user.Email)
	assert.Equal(t, "digest", user.HashedPassword)
	assert.True(t, user.IsActive, "new accounts start active")
	assert.False(t, user.IsAdmin)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestUserStoreCreateConflicts(t *testing.T) {
	store := NewUserStore(testDB)
	ctx := context.Background()

	name := uniqueName("bob")
	_, err := store.Create(ctx, name+"@example.com", name, "digest")
	require.NoError(t, err)

	// Same email, different username.
	_, err = store.Create(ctx, name+"@example.com", uniqueName("other"), "digest")
	var conflict *apperr.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "email", conflict.Field)

	// Same username, different email.
	_, err = store.Create(ctx, uniqueName("other")+"@example.com", name, "digest")
	conflict = nil
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "username", conflict.Field)
}

// Two goroutines race to claim the same email; the unique index must let
// exactly one through.
func TestUserStoreCreateRace(t *testing.T) {
	store := NewUserStore(testDB)
	ctx := context.Background()

	email := uniqueName("race") + "@example.com"
	errs := make([]error, 2)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.Create(ctx, email, uniqueName("racer"), "digest")
		}(i)
	}
	wg.Wait()

	var conflicts, successes int
	for _, err := range errs {
		var conflict *apperr.ConflictError
		switch {
		case err == nil:
			successes++
		case errors.As(err, &conflict):
			conflicts++
			assert.Equal(t, "email", conflict.Field)
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)
}

func TestUserStoreGet(t *testing.T) {
	store := NewUserStore(testDB)
	ctx := context.Background()

	name := uniqueName("carol")
	created, err := store.Create(ctx, name+"@example.com", name, "digest")
	require.NoError(t, err)

	byID, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Username, byID.Username)

	byName, err := store.GetByUsername(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)
	assert.Equal(t, "digest", byName.HashedPassword)
}

func TestUserStoreGetMissing(t *testing.T) {
	store := NewUserStore(testDB)
	ctx := context.Background()

	_, err := store.GetByID(ctx, 999999999)
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)

	_, err = store.GetByUsername(ctx, "nobody-by-this-name")
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}

func TestUserStoreSetActive(t *testing.T) {
	store := NewUserStore(testDB)
	ctx := context.Background()

	name := uniqueName("dave")
	created, err := store.Create(ctx, name+"@example.com", name, "digest")
	require.NoError(t, err)

	require.NoError(t, store.SetActive(ctx, created.ID, false))
	got, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	require.NoError(t, store.SetActive(ctx, created.ID, true))
	got, err = store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	assert.ErrorIs(t, store.SetActive(ctx, 999999999, false), apperr.ErrUserNotFound)
}
