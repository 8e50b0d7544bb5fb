package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rohllet/identity/internal/auth/domain"
	"github.com/rohllet/identity/internal/auth/store"
	"github.com/rohllet/identity/internal/auth/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)"
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func testUser(id, email string) domain.User {
	now := time.Now().UTC()
	return domain.User{
		ID:           id,
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
		FirstName:    "Test",
		LastName:     "User",
		Role:         domain.DefaultRole,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestCreateAndGetUser(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	u := testUser("01JYZJ3P3WT4N0QV0YF2K9C8XH", "a@x.com")
	require.NoError(t, st.Users().CreateUser(ctx, u))

	byID, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, byID.Email)
	require.Equal(t, u.PasswordHash, byID.PasswordHash)
	require.Equal(t, domain.DefaultRole, byID.Role)
	require.Nil(t, byID.LastLoginAt)
	require.False(t, byID.CreatedAt.IsZero())
	require.False(t, byID.UpdatedAt.IsZero())

	byEmail, err := st.Users().GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)
}

func TestGetUser_NotFound(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.Users().GetUserByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.Users().GetUserByEmail(ctx, "missing@x.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestExistsByEmail(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	exists, err := st.Users().ExistsByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, st.Users().CreateUser(ctx, testUser("01JYZJ3P3WT4N0QV0YF2K9C8XH", "a@x.com")))

	exists, err = st.Users().ExistsByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Users().CreateUser(ctx, testUser("01JYZJ3P3WT4N0QV0YF2K9C8XH", "a@x.com")))

	// Same email, different id: the unique constraint rejects the insert.
	err := st.Users().CreateUser(ctx, testUser("01JYZJ3P3WT4N0QV0YF2K9C8XJ", "a@x.com"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	// Exactly one record survives.
	u, err := st.Users().GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, "01JYZJ3P3WT4N0QV0YF2K9C8XH", u.ID)
}

func TestUpdatePasswordHash(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	u := testUser("01JYZJ3P3WT4N0QV0YF2K9C8XH", "a@x.com")
	require.NoError(t, st.Users().CreateUser(ctx, u))

	require.NoError(t, st.Users().UpdatePasswordHash(ctx, u.ID, "$argon2id$new"))

	got, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "$argon2id$new", got.PasswordHash)
}

func TestUpdateLastLogin(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	u := testUser("01JYZJ3P3WT4N0QV0YF2K9C8XH", "a@x.com")
	require.NoError(t, st.Users().CreateUser(ctx, u))

	require.NoError(t, st.Users().UpdateLastLogin(ctx, u.ID))

	got, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
}

func TestPing(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.Ping(context.Background()))
}
