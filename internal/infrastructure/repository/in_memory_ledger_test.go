package repository

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"gamebridge.io/internal/domain/entity"
	"gamebridge.io/internal/infrastructure/logger"
)

func fixedSeed(assets map[string]string) SeedFunc {
	return func() map[string]string {
		seeded := make(map[string]string, len(assets))
		for id, balance := range assets {
			seeded[id] = balance
		}
		return seeded
	}
}

func TestInMemoryLedger_GetOrCreate(t *testing.T) {
	logger := logger.NewLogger()
	ledger := NewInMemoryLedger(logger)
	ctx := context.Background()

	first, err := ledger.GetOrCreate(ctx, "session-1")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if len(first.Assets) != len(assetCatalog) {
		t.Errorf("seeded assets = %d, want %d", len(first.Assets), len(assetCatalog))
	}
	for _, id := range assetCatalog {
		raw, ok := first.Assets[id]
		if !ok {
			t.Errorf("catalog asset %s not seeded", id)
			continue
		}
		balance, err := strconv.Atoi(raw)
		if err != nil {
			t.Errorf("asset %s balance %q is not an integer", id, raw)
			continue
		}
		low, high := 500, 3000
		if id == "asset_money" {
			low, high = 1000, 5000
		}
		if balance < low || balance >= high {
			t.Errorf("asset %s seeded with %d, want [%d,%d)", id, balance, low, high)
		}
	}

	// Second touch returns the same seed set
	second, err := ledger.GetOrCreate(ctx, "session-1")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	for id, balance := range first.Assets {
		if second.Assets[id] != balance {
			t.Errorf("asset %s changed between touches: %s vs %s", id, balance, second.Assets[id])
		}
	}

	// Snapshot is a copy, not the live map
	second.Assets["asset_money"] = "0"
	third, _ := ledger.GetOrCreate(ctx, "session-1")
	if third.Assets["asset_money"] != first.Assets["asset_money"] {
		t.Error("GetOrCreate() returned the live balance map instead of a copy")
	}
}

func TestInMemoryLedger_GetOrCreate_ConcurrentFirstTouch(t *testing.T) {
	logger := logger.NewLogger()
	ledger := NewInMemoryLedger(logger)
	ctx := context.Background()

	const goroutines = 32
	results := make([]*entity.Session, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := ledger.GetOrCreate(ctx, "session-race")
			if err != nil {
				t.Errorf("GetOrCreate() error = %v", err)
				return
			}
			results[i] = s
		}(i)
	}
	wg.Wait()

	// Exactly one seed set must have won
	for i := 1; i < goroutines; i++ {
		for id, balance := range results[0].Assets {
			if results[i].Assets[id] != balance {
				t.Fatalf("goroutine %d observed a different seed for %s: %s vs %s",
					i, id, results[i].Assets[id], balance)
			}
		}
	}
}

func TestInMemoryLedger_CheckAndDeduct(t *testing.T) {
	logger := logger.NewLogger()
	ctx := context.Background()

	tests := []struct {
		name      string
		seed      map[string]string
		movements []entity.AssetMovement
		wantErr   error
		want      map[string]string
	}{
		{
			name: "single asset deduct",
			seed: map[string]string{"asset_money": "5000"},
			movements: []entity.AssetMovement{
				{Type: "asset", AssetID: "asset_money", Amount: 2000},
			},
			want: map[string]string{"asset_money": "3000"},
		},
		{
			name: "multi asset deduct",
			seed: map[string]string{"asset_money": "5000", "asset_gold": "1000"},
			movements: []entity.AssetMovement{
				{Type: "asset", AssetID: "asset_money", Amount: 1000},
				{Type: "asset", AssetID: "asset_gold", Amount: 500},
			},
			want: map[string]string{"asset_money": "4000", "asset_gold": "500"},
		},
		{
			name: "deduct to exactly zero",
			seed: map[string]string{"asset_money": "5000"},
			movements: []entity.AssetMovement{
				{Type: "asset", AssetID: "asset_money", Amount: 5000},
			},
			want: map[string]string{"asset_money": "0"},
		},
		{
			name: "repeated asset is cumulative",
			seed: map[string]string{"asset_money": "5000"},
			movements: []entity.AssetMovement{
				{Type: "asset", AssetID: "asset_money", Amount: 3000},
				{Type: "asset", AssetID: "asset_money", Amount: 1000},
			},
			want: map[string]string{"asset_money": "1000"},
		},
		{
			name: "insufficient balance",
			seed: map[string]string{"asset_money": "5000"},
			movements: []entity.AssetMovement{
				{Type: "asset", AssetID: "asset_money", Amount: 9000},
			},
			wantErr: entity.ErrInsufficientBalance,
			want:    map[string]string{"asset_money": "5000"},
		},
		{
			name: "repeated asset overdraws cumulatively",
			seed: map[string]string{"asset_money": "5000"},
			movements: []entity.AssetMovement{
				{Type: "asset", AssetID: "asset_money", Amount: 3000},
				{Type: "asset", AssetID: "asset_money", Amount: 3000},
			},
			wantErr: entity.ErrInsufficientBalance,
			want:    map[string]string{"asset_money": "5000"},
		},
		{
			name: "unknown asset",
			seed: map[string]string{"asset_money": "5000"},
			movements: []entity.AssetMovement{
				{Type: "asset", AssetID: "item_unobtainium", Amount: 1},
			},
			wantErr: entity.ErrAssetNotFound,
			want:    map[string]string{"asset_money": "5000"},
		},
		{
			name: "failing entry rolls back the whole batch",
			seed: map[string]string{"asset_money": "5000", "asset_gold": "100"},
			movements: []entity.AssetMovement{
				{Type: "asset", AssetID: "asset_money", Amount: 1000},
				{Type: "asset", AssetID: "asset_gold", Amount: 500},
			},
			wantErr: entity.ErrInsufficientBalance,
			want:    map[string]string{"asset_money": "5000", "asset_gold": "100"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := NewInMemoryLedgerWithSeed(logger, fixedSeed(tt.seed))

			err := ledger.CheckAndDeduct(ctx, "s1", tt.movements)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CheckAndDeduct() error = %v, wantErr %v", err, tt.wantErr)
			}

			session, err := ledger.GetOrCreate(ctx, "s1")
			if err != nil {
				t.Fatalf("GetOrCreate() error = %v", err)
			}
			for id, want := range tt.want {
				if session.Assets[id] != want {
					t.Errorf("asset %s = %s, want %s", id, session.Assets[id], want)
				}
			}
		})
	}
}

func TestInMemoryLedger_Credit(t *testing.T) {
	logger := logger.NewLogger()
	ctx := context.Background()
	ledger := NewInMemoryLedgerWithSeed(logger, fixedSeed(map[string]string{"asset_money": "5000"}))

	// Credit an existing asset
	err := ledger.Credit(ctx, "s1", []entity.AssetMovement{{AssetID: "asset_money", Amount: 1500}})
	if err != nil {
		t.Fatalf("Credit() error = %v", err)
	}
	session, _ := ledger.GetOrCreate(ctx, "s1")
	if session.Assets["asset_money"] != "6500" {
		t.Errorf("asset_money = %s, want 6500", session.Assets["asset_money"])
	}

	// Credit creates a missing asset at the given amount
	err = ledger.Credit(ctx, "s1", []entity.AssetMovement{{AssetID: "item_gem", Amount: 500}})
	if err != nil {
		t.Fatalf("Credit() error = %v", err)
	}
	session, _ = ledger.GetOrCreate(ctx, "s1")
	if session.Assets["item_gem"] != "500" {
		t.Errorf("item_gem = %s, want 500", session.Assets["item_gem"])
	}
}

func TestInMemoryLedger_BindUUID(t *testing.T) {
	logger := logger.NewLogger()
	ctx := context.Background()
	ledger := NewInMemoryLedger(logger)

	if err := ledger.BindUUID(ctx, "uuid-1", "session-a"); err != nil {
		t.Fatalf("BindUUID() error = %v", err)
	}

	// Rebinding the same session is an idempotent success
	if err := ledger.BindUUID(ctx, "uuid-1", "session-a"); err != nil {
		t.Errorf("BindUUID() idempotent rebind error = %v", err)
	}

	// Rebinding a different session must not overwrite
	err := ledger.BindUUID(ctx, "uuid-1", "session-b")
	if !errors.Is(err, entity.ErrUUIDAlreadyBound) {
		t.Errorf("BindUUID() rebind error = %v, want ErrUUIDAlreadyBound", err)
	}

	resolved, err := ledger.ResolveUUID(ctx, "uuid-1")
	if err != nil {
		t.Fatalf("ResolveUUID() error = %v", err)
	}
	if resolved != "session-a" {
		t.Errorf("ResolveUUID() = %s, want session-a (first write wins)", resolved)
	}
}

func TestInMemoryLedger_ResolveUUID_NotFound(t *testing.T) {
	logger := logger.NewLogger()
	ledger := NewInMemoryLedger(logger)

	_, err := ledger.ResolveUUID(context.Background(), "never-bound")
	if !errors.Is(err, entity.ErrUUIDNotFound) {
		t.Errorf("ResolveUUID() error = %v, want ErrUUIDNotFound", err)
	}
}

func TestInMemoryLedger_ConcurrentDeducts(t *testing.T) {
	logger := logger.NewLogger()
	ctx := context.Background()
	ledger := NewInMemoryLedgerWithSeed(logger, fixedSeed(map[string]string{"asset_money": "1000"}))

	// 100 goroutines each try to deduct 100; only 10 can succeed, and the
	// balance must land on exactly zero with no interleaved overdraft.
	const goroutines = 100
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := ledger.CheckAndDeduct(ctx, "s1", []entity.AssetMovement{
				{Type: "asset", AssetID: "asset_money", Amount: 100},
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, entity.ErrInsufficientBalance) {
				t.Errorf("CheckAndDeduct() unexpected error = %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 10 {
		t.Errorf("successful deducts = %d, want 10", succeeded)
	}
	session, _ := ledger.GetOrCreate(ctx, "s1")
	if session.Assets["asset_money"] != "0" {
		t.Errorf("asset_money = %s, want 0", session.Assets["asset_money"])
	}
}

func TestInMemoryLedger_ConcurrentCreditsAcrossSessions(t *testing.T) {
	logger := logger.NewLogger()
	ctx := context.Background()
	ledger := NewInMemoryLedgerWithSeed(logger, fixedSeed(map[string]string{"asset_money": "0"}))

	// Concurrent credits across many sessions; per-session totals must
	// land exactly (no lost updates).
	const perSession = 50
	sessions := []string{"s1", "s2", "s3", "s4"}

	var wg sync.WaitGroup
	for _, sessionID := range sessions {
		for i := 0; i < perSession; i++ {
			wg.Add(1)
			go func(sessionID string) {
				defer wg.Done()
				if err := ledger.Credit(ctx, sessionID, []entity.AssetMovement{
					{AssetID: "asset_money", Amount: 7},
				}); err != nil {
					t.Errorf("Credit() error = %v", err)
				}
			}(sessionID)
		}
	}
	wg.Wait()

	for _, sessionID := range sessions {
		session, _ := ledger.GetOrCreate(ctx, sessionID)
		want := strconv.Itoa(perSession * 7)
		if session.Assets["asset_money"] != want {
			t.Errorf("session %s asset_money = %s, want %s", sessionID, session.Assets["asset_money"], want)
		}
	}
}
