package in

import (
	"context"

	authdto "punchclock/internal/modules/auth/dto"
	authin "punchclock/internal/modules/auth/port/in"
)

type CLIHandler struct {
	usecase authin.Usecase
}

func NewCLIHandler(usecase authin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Login(ctx context.Context, email, password string) (authdto.IdentityOutput, error) {
	return h.usecase.Login(ctx, authdto.LoginInput{Email: email, Password: password})
}

func (h CLIHandler) Register(ctx context.Context, name, email, password string) (authdto.IdentityOutput, error) {
	return h.usecase.Register(ctx, authdto.RegisterInput{Name: name, Email: email, Password: password})
}

func (h CLIHandler) Logout(ctx context.Context) {
	h.usecase.Logout(ctx)
}

func (h CLIHandler) Restore(ctx context.Context) (authdto.IdentityOutput, bool) {
	return h.usecase.Restore(ctx)
}

func (h CLIHandler) WhoAmI() (authdto.IdentityOutput, bool) {
	return h.usecase.CurrentUser()
}

func (h CLIHandler) IsAuthenticated() bool {
	return h.usecase.IsAuthenticated()
}

func (h CLIHandler) IsAdmin() bool {
	return h.usecase.IsAdmin()
}

func (h CLIHandler) AddDirectoryAccount(ctx context.Context, input authdto.DirectoryAccountInput) error {
	return h.usecase.AddDirectoryAccount(ctx, input)
}
