package repository

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"gamebridge.io/internal/domain/entity"
	"gamebridge.io/internal/domain/port"
	"gamebridge.io/internal/infrastructure/logger"
)

// assetCatalog is the fixed set of assets every new session is seeded with.
var assetCatalog = []string{
	"asset_money",
	"asset_gold",
	"asset_silver",
	"item_gem",
	"item_banana",
	"item_apple",
	"item_fish",
	"item_branch",
	"item_horn",
	"item_maple",
}

// SeedFunc produces the initial balances for a freshly created session.
type SeedFunc func() map[string]string

// defaultSeed seeds asset_money in [1000,5000) and every other catalog
// asset in [500,3000), each drawn independently.
func defaultSeed() map[string]string {
	assets := make(map[string]string, len(assetCatalog))
	for _, id := range assetCatalog {
		low, span := 500, 2500
		if id == "asset_money" {
			low, span = 1000, 4000
		}
		assets[id] = strconv.Itoa(low + rand.Intn(span))
	}
	return assets
}

// sessionState is the mutable per-session record. Its own mutex serializes
// balance mutations so sessions never block each other.
type sessionState struct {
	mu        sync.Mutex
	assets    map[string]string
	createdAt time.Time
	updatedAt time.Time
}

// InMemoryLedger implements the LedgerRepository port. It owns all mutable
// state: the session map, guarded by mu for membership only, and the
// insert-only uuid index guarded by uuidMu.
type InMemoryLedger struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState

	uuidMu   sync.RWMutex
	bindings map[string]string

	seed   SeedFunc
	logger logger.Logger
}

// NewInMemoryLedger creates a ledger with randomized session seeding.
func NewInMemoryLedger(logger logger.Logger) *InMemoryLedger {
	return NewInMemoryLedgerWithSeed(logger, defaultSeed)
}

// NewInMemoryLedgerWithSeed creates a ledger with a custom seed function.
func NewInMemoryLedgerWithSeed(logger logger.Logger, seed SeedFunc) *InMemoryLedger {
	return &InMemoryLedger{
		sessions: make(map[string]*sessionState),
		bindings: make(map[string]string),
		seed:     seed,
		logger:   logger,
	}
}

var _ port.LedgerRepository = (*InMemoryLedger)(nil)

// getOrCreateState returns the live session record, creating and seeding
// it under the write lock so exactly one seed set wins.
func (l *InMemoryLedger) getOrCreateState(ctx context.Context, sessionID string) *sessionState {
	l.mu.RLock()
	state, ok := l.sessions[sessionID]
	l.mu.RUnlock()
	if ok {
		return state
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if state, ok := l.sessions[sessionID]; ok {
		return state
	}

	now := time.Now()
	state = &sessionState{
		assets:    l.seed(),
		createdAt: now,
		updatedAt: now,
	}
	l.sessions[sessionID] = state

	l.logger.LogInfo(ctx, "Session created",
		"session_id", sessionID,
		"assets", len(state.assets))
	return state
}

// GetOrCreate returns a snapshot of the session, seeding it on first touch.
func (l *InMemoryLedger) GetOrCreate(ctx context.Context, sessionID string) (*entity.Session, error) {
	state := l.getOrCreateState(ctx, sessionID)

	state.mu.Lock()
	defer state.mu.Unlock()

	// Copy so callers never observe concurrent mutation
	assets := make(map[string]string, len(state.assets))
	for id, balance := range state.assets {
		assets[id] = balance
	}

	return &entity.Session{
		ID:        sessionID,
		Assets:    assets,
		CreatedAt: state.createdAt,
		UpdatedAt: state.updatedAt,
	}, nil
}

// CheckAndDeduct verifies and decrements every listed balance as one
// atomic step. The staged map is only applied once every entry has
// cleared, so a failing call leaves all balances unchanged.
func (l *InMemoryLedger) CheckAndDeduct(ctx context.Context, sessionID string, movements []entity.AssetMovement) error {
	state := l.getOrCreateState(ctx, sessionID)

	state.mu.Lock()
	defer state.mu.Unlock()

	staged := make(map[string]decimal.Decimal, len(movements))
	for _, m := range movements {
		current, ok := staged[m.AssetID]
		if !ok {
			raw, exists := state.assets[m.AssetID]
			if !exists {
				return fmt.Errorf("%w: %s", entity.ErrAssetNotFound, m.AssetID)
			}
			parsed, err := decimal.NewFromString(raw)
			if err != nil {
				return fmt.Errorf("invalid balance format for asset %s: %w", m.AssetID, err)
			}
			current = parsed
		}

		amount := decimal.NewFromUint64(m.Amount)
		if current.Cmp(amount) < 0 {
			l.logger.LogWarning(ctx, "Deduction rejected",
				"session_id", sessionID,
				"asset", m.AssetID,
				"requested", amount.String(),
				"available", current.String())
			return fmt.Errorf("%w: asset %s requires %s, has %s",
				entity.ErrInsufficientBalance, m.AssetID, amount.String(), current.String())
		}
		staged[m.AssetID] = current.Sub(amount)
	}

	for id, balance := range staged {
		state.assets[id] = balance.String()
	}
	state.updatedAt = time.Now()

	l.logger.LogInfo(ctx, "Balances deducted",
		"session_id", sessionID,
		"movements", len(movements))
	return nil
}

// Credit increments balances, creating entries at the given amount when
// absent. There is no upper bound.
func (l *InMemoryLedger) Credit(ctx context.Context, sessionID string, movements []entity.AssetMovement) error {
	state := l.getOrCreateState(ctx, sessionID)

	state.mu.Lock()
	defer state.mu.Unlock()

	for _, m := range movements {
		amount := decimal.NewFromUint64(m.Amount)

		raw, exists := state.assets[m.AssetID]
		if !exists {
			state.assets[m.AssetID] = amount.String()
			continue
		}

		current, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("invalid balance format for asset %s: %w", m.AssetID, err)
		}
		state.assets[m.AssetID] = current.Add(amount).String()
	}
	state.updatedAt = time.Now()

	l.logger.LogInfo(ctx, "Balances credited",
		"session_id", sessionID,
		"movements", len(movements))
	return nil
}

// BindUUID records the uuid → session correlation, insert-only.
func (l *InMemoryLedger) BindUUID(ctx context.Context, uuid, sessionID string) error {
	l.uuidMu.Lock()
	defer l.uuidMu.Unlock()

	if bound, exists := l.bindings[uuid]; exists {
		if bound == sessionID {
			// Idempotent retry
			return nil
		}
		l.logger.LogWarning(ctx, "Refusing to rebind uuid",
			"uuid", uuid,
			"bound_session", bound,
			"requested_session", sessionID)
		return fmt.Errorf("%w: %s", entity.ErrUUIDAlreadyBound, uuid)
	}

	l.bindings[uuid] = sessionID
	l.logger.LogInfo(ctx, "UUID bound", "uuid", uuid, "session_id", sessionID)
	return nil
}

// ResolveUUID returns the session the uuid was bound to.
func (l *InMemoryLedger) ResolveUUID(ctx context.Context, uuid string) (string, error) {
	l.uuidMu.RLock()
	defer l.uuidMu.RUnlock()

	sessionID, exists := l.bindings[uuid]
	if !exists {
		l.logger.LogWarning(ctx, "UUID not found", "uuid", uuid)
		return "", fmt.Errorf("%w: %s", entity.ErrUUIDNotFound, uuid)
	}
	return sessionID, nil
}
