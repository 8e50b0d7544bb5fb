package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "identity-test-pepper")
	SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

func TestHashPassword_PHCFormat(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple", "password123"},
		{"symbols", "P@ssw0rd!#$%^&*()"},
		{"long", strings.Repeat("a", 100)},
		{"empty", ""},
		{"unicode", "пароль🔒密码"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

			parts := strings.Split(hash, "$")
			require.Len(t, parts, 6)
			require.Contains(t, parts[3], "m=")
			require.Contains(t, parts[3], "t=")
			require.Contains(t, parts[3], "p=")
			require.NotEmpty(t, parts[4])
			require.NotEmpty(t, parts[5])
		})
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	const password = "samepassword"

	hash1, err := HashPassword(password)
	require.NoError(t, err)
	hash2, err := HashPassword(password)
	require.NoError(t, err)

	// Distinct digests because of the random salt, both still verify.
	require.NotEqual(t, hash1, hash2)
	require.NoError(t, VerifyPassword(password, hash1))
	require.NoError(t, VerifyPassword(password, hash2))
}

func TestVerifyPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct-password")
	require.NoError(t, err)

	require.NoError(t, VerifyPassword("correct-password", hash))

	wrong := []string{
		"wrong-password",
		"Correct-Password",
		"correct-password ",
		"",
		"correct-passwor",
	}
	for _, w := range wrong {
		require.ErrorIs(t, VerifyPassword(w, hash), ErrPasswordMismatch)
	}
}

func TestVerifyPassword_MalformedDigest(t *testing.T) {
	tests := []struct {
		name   string
		digest string
	}{
		{"empty", ""},
		{"wrong algorithm", "$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"missing parts", "$argon2id$v=19$m=19456"},
		{"bad parameters", "$argon2id$v=19$invalid$c2FsdA$aGFzaA"},
		{"bad salt base64", "$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA"},
		{"bad hash base64", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$!!!"},
		{"wrong version", "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"not a digest at all", "hunter2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Malformed digests behave like a mismatch, not a fault.
			require.ErrorIs(t, VerifyPassword("anything", tt.digest), ErrPasswordMismatch)
		})
	}
}

func TestVerifyPassword_HonoursEmbeddedParameters(t *testing.T) {
	hash, err := HashPassword("test-password")
	require.NoError(t, err)

	require.Contains(t, hash, "m=19456")
	require.Contains(t, hash, "t=2")
	require.Contains(t, hash, "p=1")
	require.NoError(t, VerifyPassword("test-password", hash))
}

func TestGenerateEd25519Key(t *testing.T) {
	pemKey, err := GenerateEd25519Key()
	require.NoError(t, err)
	require.Contains(t, string(pemKey), "BEGIN PRIVATE KEY")

	other, err := GenerateEd25519Key()
	require.NoError(t, err)
	require.NotEqual(t, pemKey, other)
}
