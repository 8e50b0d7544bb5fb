package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rohllet/identity/internal/auth/domain"
	"github.com/rohllet/identity/internal/auth/service"
	"github.com/rohllet/identity/internal/auth/store/drivers/sqlite"
	"github.com/rohllet/identity/pkg/cryptox"
	"github.com/rohllet/identity/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testIssuer = "identity-test"

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "identity-service-test-pepper")
	cryptox.SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

func newAuthService(t *testing.T, ttl time.Duration) *service.AuthService {
	t.Helper()

	st, err := sqlite.NewStore("file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("test-key", pemKey)
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))

	return &service.AuthService{
		Store:     st,
		Signer:    signer,
		Verifier:  jwtx.NewCommonEdDSA(keys, testIssuer),
		Issuer:    testIssuer,
		AccessTTL: ttl,
	}
}

func TestRegisterLoginResolveRoundTrip(t *testing.T) {
	s := newAuthService(t, jwtx.DefaultAccessTokenTTL)
	ctx := context.Background()

	user, t1, err := s.Register(ctx, "a@x.com", "secret1", "A", "B")
	require.NoError(t, err)
	require.NotEmpty(t, t1)
	require.Equal(t, "a@x.com", user.Email)
	require.Equal(t, domain.DefaultRole, user.Role)
	require.NotEmpty(t, user.ID)

	loginUser, t2, err := s.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, t2)
	require.Equal(t, user.ID, loginUser.ID)
	require.NotNil(t, loginUser.LastLoginAt)

	// Both tokens resolve to the same identity.
	for _, token := range []string{t1, t2} {
		resolved, err := s.ResolveIdentity(ctx, token)
		require.NoError(t, err)
		require.Equal(t, "a@x.com", resolved.Email)
		require.Equal(t, domain.DefaultRole, resolved.Role)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s := newAuthService(t, jwtx.DefaultAccessTokenTTL)
	ctx := context.Background()

	_, _, err := s.Register(ctx, "a@x.com", "secret1", "A", "B")
	require.NoError(t, err)

	_, _, err = s.Register(ctx, "a@x.com", "another", "C", "D")
	require.ErrorIs(t, err, service.ErrEmailTaken)

	// Case variants of the identifier hit the same record.
	_, _, err = s.Register(ctx, "  A@X.com ", "another", "C", "D")
	require.ErrorIs(t, err, service.ErrEmailTaken)
}

func TestRegister_ConcurrentDuplicate(t *testing.T) {
	s := newAuthService(t, jwtx.DefaultAccessTokenTTL)
	ctx := context.Background()

	// Racing registrations can all pass the pre-insert existence check;
	// the unique constraint decides the winner and every loser must come
	// back as ErrEmailTaken, never as an opaque fault.
	const attempts = 8
	errs := make(chan error, attempts)

	var wg sync.WaitGroup
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.Register(ctx, "race@x.com", "secret1", "A", "B")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var wins, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, service.ErrEmailTaken):
			conflicts++
		default:
			t.Fatalf("unexpected registration error: %v", err)
		}
	}
	require.Equal(t, 1, wins)
	require.Equal(t, attempts-1, conflicts)

	// Exactly one account exists and it is usable.
	_, _, err := s.Login(ctx, "race@x.com", "secret1")
	require.NoError(t, err)
}

func TestLogin_UniformInvalidCredentials(t *testing.T) {
	s := newAuthService(t, jwtx.DefaultAccessTokenTTL)
	ctx := context.Background()

	_, _, err := s.Register(ctx, "a@x.com", "secret1", "A", "B")
	require.NoError(t, err)

	// Wrong password and unknown email fail with the identical error value
	// so callers can't probe which addresses have accounts.
	_, _, wrongPw := s.Login(ctx, "a@x.com", "wrong")
	require.ErrorIs(t, wrongPw, service.ErrInvalidCredentials)

	_, _, noUser := s.Login(ctx, "nobody@x.com", "secret1")
	require.ErrorIs(t, noUser, service.ErrInvalidCredentials)

	require.Equal(t, wrongPw, noUser)
}

func TestLogin_NormalizesEmail(t *testing.T) {
	s := newAuthService(t, jwtx.DefaultAccessTokenTTL)
	ctx := context.Background()

	_, _, err := s.Register(ctx, "Mixed.Case@Example.COM", "secret1", "A", "B")
	require.NoError(t, err)

	user, _, err := s.Login(ctx, "mixed.case@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, "mixed.case@example.com", user.Email)
}

func TestResolveIdentity_ExpiredToken(t *testing.T) {
	// Zero TTL: the token is already invalid at issue time.
	s := newAuthService(t, 0)
	ctx := context.Background()

	_, token, err := s.Register(ctx, "a@x.com", "secret1", "A", "B")
	require.NoError(t, err)

	_, err = s.ResolveIdentity(ctx, token)
	require.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestResolveIdentity_GarbageToken(t *testing.T) {
	s := newAuthService(t, jwtx.DefaultAccessTokenTTL)
	ctx := context.Background()

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := s.ResolveIdentity(ctx, token)
		require.ErrorIs(t, err, service.ErrInvalidToken)
	}
}

func TestResolveIdentity_UserVanished(t *testing.T) {
	s := newAuthService(t, jwtx.DefaultAccessTokenTTL)
	ctx := context.Background()

	// A validly signed token whose subject has no backing record.
	claims := jwtx.NewIdentityClaims(
		"01JYZJ3P3WT4N0QV0YF2K9C8XH", "ghost@x.com", domain.DefaultRole,
		time.Hour, testIssuer, time.Now().UTC(),
	)
	token, err := s.Signer.Sign(claims)
	require.NoError(t, err)

	_, err = s.ResolveIdentity(ctx, token)
	require.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	s := newAuthService(t, jwtx.DefaultAccessTokenTTL)
	ctx := context.Background()

	user, _, err := s.Register(ctx, "a@x.com", "oldsecret", "A", "B")
	require.NoError(t, err)

	require.ErrorIs(t,
		s.ChangePassword(ctx, user.ID, "wrong", "newsecret"),
		service.ErrInvalidCredentials)

	require.NoError(t, s.ChangePassword(ctx, user.ID, "oldsecret", "newsecret"))

	_, _, err = s.Login(ctx, "a@x.com", "oldsecret")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, _, err = s.Login(ctx, "a@x.com", "newsecret")
	require.NoError(t, err)

	require.ErrorIs(t,
		s.ChangePassword(ctx, "missing-user", "newsecret", "whatever"),
		service.ErrUserNotFound)
}

func TestGetUserByEmail(t *testing.T) {
	s := newAuthService(t, jwtx.DefaultAccessTokenTTL)
	users := &service.UserService{Store: s.Store}
	ctx := context.Background()

	_, _, err := s.Register(ctx, "a@x.com", "secret1", "Ada", "Lovelace")
	require.NoError(t, err)

	got, err := users.GetUserByEmail(ctx, "A@X.com")
	require.NoError(t, err)
	require.Equal(t, "Ada", got.FirstName)
	require.Equal(t, "Lovelace", got.LastName)

	_, err = users.GetUserByEmail(ctx, "nobody@x.com")
	require.ErrorIs(t, err, service.ErrUserNotFound)
}
