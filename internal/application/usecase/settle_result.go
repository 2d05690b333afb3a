package usecase

import (
	"context"

	"gamebridge.io/internal/domain/entity"
	"gamebridge.io/internal/domain/port"
	"gamebridge.io/internal/infrastructure/logger"
)

// receiptStatusSuccessful is the receipt status of a successfully executed
// transaction.
const receiptStatusSuccessful = 1

// SettleResultUseCase credits a session with the asset outputs reported by
// the exchange callback, correlated via the uuid bound at validation time.
type SettleResultUseCase struct {
	ledger port.LedgerRepository
	logger logger.Logger
}

// NewSettleResultUseCase creates a new SettleResultUseCase
func NewSettleResultUseCase(ledger port.LedgerRepository, logger logger.Logger) *SettleResultUseCase {
	return &SettleResultUseCase{
		ledger: ledger,
		logger: logger,
	}
}

// Execute resolves the session behind the uuid and applies the outputs.
// A non-success receipt or an empty output list is a logged no-op, not an
// error; an unknown uuid is.
func (uc *SettleResultUseCase) Execute(ctx context.Context, req *entity.SettleResultRequest) error {
	if req.UUID == "" {
		return entity.ErrMissingUUID
	}

	sessionID, err := uc.ledger.ResolveUUID(ctx, req.UUID)
	if err != nil {
		return err
	}

	if uint64(req.Receipt.Status) != receiptStatusSuccessful {
		uc.logger.LogInfo(ctx, "Settlement skipped: receipt not successful",
			"session_id", sessionID,
			"uuid", req.UUID,
			"status", uint64(req.Receipt.Status))
		return nil
	}

	if len(req.Intent.Outputs) == 0 {
		uc.logger.LogInfo(ctx, "Settlement skipped: no outputs",
			"session_id", sessionID,
			"uuid", req.UUID)
		return nil
	}

	movements := make([]entity.AssetMovement, 0, len(req.Intent.Outputs))
	for _, out := range req.Intent.Outputs {
		movements = append(movements, entity.AssetMovement{
			AssetID: out.Asset(),
			Amount:  out.Amount,
		})
	}

	if err := uc.ledger.Credit(ctx, sessionID, movements); err != nil {
		uc.logger.LogError(ctx, "Failed to credit settlement outputs", err,
			"session_id", sessionID,
			"uuid", req.UUID)
		return err
	}

	uc.logger.LogInfo(ctx, "Settlement outputs credited",
		"session_id", sessionID,
		"uuid", req.UUID,
		"outputs", len(movements),
		"tx_hash", req.TxHash.Hex())
	return nil
}
