package entity

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ValidateRequest is the inbound intent envelope on the validate endpoint.
type ValidateRequest struct {
	UUID        string `json:"uuid"`
	UserSig     string `json:"user_sig"`
	UserAddress string `json:"user_address"`
	ProjectID   string `json:"project_id"`
	Digest      string `json:"digest"`
	Intent      Intent `json:"intent"`
}

// Validate checks that every required envelope field is present.
func (r *ValidateRequest) Validate() error {
	if r.UUID == "" {
		return ErrMissingUUID
	}
	if r.UserSig == "" {
		return ErrMissingUserSig
	}
	if r.UserAddress == "" {
		return ErrMissingUserAddress
	}
	if r.ProjectID == "" {
		return ErrMissingProjectID
	}
	if r.Digest == "" {
		return ErrMissingDigest
	}
	if r.Intent.Method == "" {
		return ErrMissingIntent
	}
	return nil
}

// DigestHash canonicalizes the digest field to a 32-byte hash. Both
// 0x-prefixed and bare hex forms are accepted; the caller is assumed to
// have hashed already, so the value is treated as opaque.
func (r *ValidateRequest) DigestHash() (common.Hash, error) {
	return ParseDigest(r.Digest)
}

// ParseDigest decodes a pre-hashed digest from its hex form.
func ParseDigest(s string) (common.Hash, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: %v", ErrInvalidDigest, err)
	}
	if len(raw) != common.HashLength {
		return common.Hash{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidDigest, common.HashLength, len(raw))
	}
	return common.BytesToHash(raw), nil
}

// SettleOutput is one produced asset in a settlement callback. Peer
// implementations disagree on the key name, so both asset_id and id are
// accepted.
type SettleOutput struct {
	AssetID string `json:"asset_id"`
	ID      string `json:"id"`
	Amount  uint64 `json:"amount"`
}

// Asset returns whichever asset identifier the caller supplied.
func (o SettleOutput) Asset() string {
	if o.AssetID != "" {
		return o.AssetID
	}
	return o.ID
}

// SettleIntent carries the asset outputs reported by the exchange.
type SettleIntent struct {
	Method  string         `json:"method"`
	Outputs []SettleOutput `json:"outputs"`
}

// Receipt is the subset of the transaction receipt the bridge cares about.
// Status follows the Ethereum JSON convention ("0x1" on success).
type Receipt struct {
	Status hexutil.Uint64 `json:"status"`
}

// SettleResultRequest is the asynchronous settlement callback envelope,
// correlated back to a session via the uuid bound at validation time.
type SettleResultRequest struct {
	UUID    string       `json:"uuid"`
	TxHash  common.Hash  `json:"tx_hash"`
	Receipt Receipt      `json:"receipt"`
	Intent  SettleIntent `json:"intent"`
}
