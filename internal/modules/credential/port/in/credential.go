package in

import "context"

// TokenLifecycle owns the single bearer token of the process. None of its
// operations fail the caller; storage problems are logged.
type TokenLifecycle interface {
	Load(ctx context.Context)
	Save(ctx context.Context, token string)
	Clear(ctx context.Context)
	Current() string
}
