package out

import (
	"context"

	"punchclock/internal/modules/auth/domain"
)

type Gateway interface {
	Login(ctx context.Context, email, password string) (domain.Grant, error)
	Register(ctx context.Context, name, email, password string) (domain.Grant, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (domain.Identity, error)
}

// Directory is the local account list consulted by offline login.
type Directory interface {
	Authenticate(ctx context.Context, email, password string) (domain.Identity, error)
	Upsert(ctx context.Context, identity domain.Identity, password string) error
}

// SessionResetter drops any cached work-session state owned by the previous identity.
type SessionResetter interface {
	Reset(ctx context.Context)
}
