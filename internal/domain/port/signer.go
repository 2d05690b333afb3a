package port

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Signer is the port for validator co-signing. Implementations hold one
// long-lived private key unlocked at startup.
type Signer interface {
	// Sign produces the 65-byte r||s||v signature over a pre-hashed
	// digest, with v normalized to the Ethereum 27/28 convention.
	// Signing the same digest twice yields byte-identical output.
	Sign(ctx context.Context, digest common.Hash) ([]byte, error)
}
