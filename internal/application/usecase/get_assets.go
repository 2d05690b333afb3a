package usecase

import (
	"context"
	"sort"
	"time"

	"gamebridge.io/internal/domain/entity"
	"gamebridge.io/internal/domain/port"
)

// GetAssetsUseCase handles session balance retrieval
type GetAssetsUseCase struct {
	ledger port.LedgerRepository
}

// NewGetAssetsUseCase creates a new GetAssetsUseCase
func NewGetAssetsUseCase(ledger port.LedgerRepository) *GetAssetsUseCase {
	return &GetAssetsUseCase{
		ledger: ledger,
	}
}

// SessionAssets is the read-endpoint view of a session.
type SessionAssets struct {
	SessionID string                `json:"sessionId"`
	Assets    []entity.AssetBalance `json:"assets"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

// Execute returns the session's balances, creating the session on first
// touch. Assets are sorted by id for a stable response.
func (uc *GetAssetsUseCase) Execute(ctx context.Context, sessionID string) (*SessionAssets, error) {
	session, err := uc.ledger.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	assets := make([]entity.AssetBalance, 0, len(session.Assets))
	for id, balance := range session.Assets {
		assets = append(assets, entity.AssetBalance{ID: id, Balance: balance})
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].ID < assets[j].ID })

	return &SessionAssets{
		SessionID: sessionID,
		Assets:    assets,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}, nil
}
