package entity

import "time"

// Session holds per-session asset balances. Balances are kept as decimal
// strings so they survive JSON round-trips without precision loss.
type Session struct {
	ID        string            `json:"session_id"`
	Assets    map[string]string `json:"assets"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// AssetBalance is a single balance entry as exposed on the read endpoint.
type AssetBalance struct {
	ID      string `json:"id"`
	Balance string `json:"balance"`
}
