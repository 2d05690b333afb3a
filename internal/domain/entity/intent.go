package entity

// Intent methods accepted by the bridge.
const (
	MethodMint               = "mint"
	MethodTransfer           = "transfer"
	MethodBurn               = "burn"
	MethodBurnPermit         = "burn-permit"
	MethodTransferFrom       = "transfer-from"
	MethodTransferFromPermit = "transfer-from-permit"
)

// AssetTypeAsset is the only movement type allowed on the consuming side.
const AssetTypeAsset = "asset"

var allowedMethods = map[string]bool{
	MethodMint:               true,
	MethodTransfer:           true,
	MethodBurn:               true,
	MethodBurnPermit:         true,
	MethodTransferFrom:       true,
	MethodTransferFromPermit: true,
}

// AssetMovement is a single asset leg of an intent.
type AssetMovement struct {
	Type    string `json:"type"`
	AssetID string `json:"id"`
	Amount  uint64 `json:"amount"`
}

// Intent is a client-declared asset movement request: a method plus the
// assets it consumes (from) and produces (to).
type Intent struct {
	Method string          `json:"method"`
	From   []AssetMovement `json:"from"`
	To     []AssetMovement `json:"to"`
}

// Validate checks the intent structurally. It never consults balances;
// balance checking happens after structural validation passes.
func (i *Intent) Validate() error {
	if !allowedMethods[i.Method] {
		return ErrMethodNotAllowed
	}

	if i.ConsumesAssets() {
		if len(i.From) == 0 {
			return ErrEmptyFrom
		}
		for _, from := range i.From {
			if from.Type != AssetTypeAsset {
				return ErrInvalidFromType
			}
		}
	}

	return nil
}

// ConsumesAssets reports whether the intent deducts from-assets on the
// session ledger before signing.
func (i *Intent) ConsumesAssets() bool {
	return i.Method == MethodMint || i.Method == MethodTransfer
}
