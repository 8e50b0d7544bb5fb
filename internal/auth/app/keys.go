package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/rohllet/identity/pkg/cryptox"
	"github.com/rohllet/identity/pkg/idx"
	"github.com/rohllet/identity/pkg/jwtx"
)

// InitAuthKeys loads or generates the Ed25519 signing key and builds the
// signer/verifier pair around it.
//
// When AUTH_SIGNING_KEY_FILE points at a PEM-encoded PKCS#8 Ed25519 private
// key, that key is used and tokens survive restarts. Otherwise an ephemeral
// key is generated on startup and every previously issued token becomes
// invalid.
func InitAuthKeys(cfg Config, logger *slog.Logger) (jwtx.Signer, *jwtx.KeySet, jwtx.Verifier, error) {
	var pemKey []byte

	if cfg.SigningKeyFile != "" {
		raw, err := os.ReadFile(cfg.SigningKeyFile)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("read signing key file: %w", err)
		}
		pemKey = raw
		logger.Info("signing key loaded", "path", cfg.SigningKeyFile)
	} else {
		raw, err := cryptox.GenerateEd25519Key()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("generate signing key: %w", err)
		}
		pemKey = raw
		logger.Warn("ephemeral signing key generated, all existing tokens are now invalid")
	}

	signer, err := jwtx.NewSignerEdDSA(idx.New().String(), pemKey)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initialize signer: %w", err)
	}

	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, nil, nil, fmt.Errorf("register signing key: %w", err)
	}

	return signer, keys, jwtx.NewCommonEdDSA(keys, cfg.Issuer), nil
}
