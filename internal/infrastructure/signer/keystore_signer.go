package signer

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"gamebridge.io/internal/domain/port"
	"gamebridge.io/internal/infrastructure/logger"
)

// KeystoreSigner implements the Signer port with a secp256k1 key unlocked
// from a V3 keystore blob at startup. Signing is deterministic (RFC 6979
// nonces), so the same digest always yields the same 65 bytes.
type KeystoreSigner struct {
	key    *ecdsa.PrivateKey
	logger logger.Logger
}

// NewKeystoreSigner decrypts the keystore blob with the passphrase. Any
// failure here must be treated as fatal by the caller: the process cannot
// serve signing requests without the validator key.
func NewKeystoreSigner(keystoreJSON []byte, passphrase string, logger logger.Logger) (*KeystoreSigner, error) {
	key, err := keystore.DecryptKey(keystoreJSON, passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to unlock validator keystore: %w", err)
	}
	return &KeystoreSigner{
		key:    key.PrivateKey,
		logger: logger,
	}, nil
}

// NewSignerFromKey wraps an already-unlocked key. Intended for tests.
func NewSignerFromKey(key *ecdsa.PrivateKey, logger logger.Logger) *KeystoreSigner {
	return &KeystoreSigner{
		key:    key,
		logger: logger,
	}
}

var _ port.Signer = (*KeystoreSigner)(nil)

// Address returns the validator address derived from the loaded key.
func (s *KeystoreSigner) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

// Sign produces the 65-byte r||s||v signature over the pre-hashed digest.
func (s *KeystoreSigner) Sign(ctx context.Context, digest common.Hash) ([]byte, error) {
	signature, err := crypto.Sign(digest.Bytes(), s.key)
	if err != nil {
		s.logger.LogError(ctx, "Signing failed", err, "digest", digest.Hex())
		return nil, fmt.Errorf("sign digest: %w", err)
	}

	signature[64] = normalizeRecoveryByte(signature[64])
	return signature, nil
}

// normalizeRecoveryByte maps a raw recovery id (0 or 1) to the Ethereum
// 27/28 convention. Values already at or above 27 pass through.
func normalizeRecoveryByte(v byte) byte {
	if v < 27 {
		return v + 27
	}
	return v
}
