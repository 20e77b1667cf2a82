package ports

import "github.com/layer-3/clockguard/core"

// Tokenizer converts between clearances and signed tokens
type Tokenizer interface {
	ClearanceToToken(clearance *core.Clearance) (string, error)
	TokenToClearance(token string) (*core.Clearance, error)
}
