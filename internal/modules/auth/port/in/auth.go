package in

import (
	"context"

	"punchclock/internal/modules/auth/dto"
)

type Usecase interface {
	Login(ctx context.Context, input dto.LoginInput) (dto.IdentityOutput, error)
	Register(ctx context.Context, input dto.RegisterInput) (dto.IdentityOutput, error)
	Logout(ctx context.Context)
	Restore(ctx context.Context) (dto.IdentityOutput, bool)
	CurrentUser() (dto.IdentityOutput, bool)
	IsAuthenticated() bool
	IsAdmin() bool
	AddDirectoryAccount(ctx context.Context, input dto.DirectoryAccountInput) error
}
