package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"gamebridge.io/internal/domain/entity"
	"gamebridge.io/internal/domain/port"
	"gamebridge.io/internal/infrastructure/logger"
)

// ValidateIntentUseCase runs the validate-and-sign flow: envelope and
// intent validation, uuid binding, balance deduction for consuming
// methods, then validator co-signing of the caller's digest.
type ValidateIntentUseCase struct {
	ledger port.LedgerRepository
	signer port.Signer
	logger logger.Logger
}

// NewValidateIntentUseCase creates a new ValidateIntentUseCase
func NewValidateIntentUseCase(
	ledger port.LedgerRepository,
	signer port.Signer,
	logger logger.Logger,
) *ValidateIntentUseCase {
	return &ValidateIntentUseCase{
		ledger: ledger,
		signer: signer,
		logger: logger,
	}
}

// ValidateIntentResult carries the co-signature pair returned to the caller.
type ValidateIntentResult struct {
	UserSig      string `json:"userSig"`
	ValidatorSig string `json:"validatorSig"`
}

// Execute validates the request for the given session and co-signs it.
// Any failure short-circuits; the deduction step is atomic, and a
// deduction already committed stands even if signing fails afterwards.
func (uc *ValidateIntentUseCase) Execute(ctx context.Context, sessionID string, req *entity.ValidateRequest) (*ValidateIntentResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := req.Intent.Validate(); err != nil {
		uc.logger.LogWarning(ctx, "Intent rejected",
			"session_id", sessionID,
			"method", req.Intent.Method,
			"reason", err.Error())
		return nil, err
	}

	if err := uc.ledger.BindUUID(ctx, req.UUID, sessionID); err != nil {
		return nil, err
	}

	if req.Intent.ConsumesAssets() {
		if err := uc.ledger.CheckAndDeduct(ctx, sessionID, req.Intent.From); err != nil {
			return nil, err
		}
	}

	digest, err := req.DigestHash()
	if err != nil {
		return nil, err
	}

	validatorSig, err := uc.signer.Sign(ctx, digest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrSignatureGeneration, err)
	}

	uc.logger.LogInfo(ctx, "Intent validated and signed",
		"session_id", sessionID,
		"uuid", req.UUID,
		"method", req.Intent.Method,
		"digest", req.Digest)

	return &ValidateIntentResult{
		UserSig:      req.UserSig,
		ValidatorSig: hexutil.Encode(validatorSig),
	}, nil
}
