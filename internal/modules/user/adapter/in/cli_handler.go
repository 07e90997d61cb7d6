package in

import (
	"context"

	userdto "punchclock/internal/modules/user/dto"
	userin "punchclock/internal/modules/user/port/in"
)

type CLIHandler struct {
	usecase userin.Usecase
}

func NewCLIHandler(usecase userin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]userdto.UserOutput, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Get(ctx context.Context, id int64) (userdto.UserOutput, error) {
	return h.usecase.Get(ctx, id)
}

func (h CLIHandler) Create(ctx context.Context, name, email, password, role string) (userdto.UserOutput, error) {
	return h.usecase.Create(ctx, userdto.CreateInput{Name: name, Email: email, Password: password, Role: role})
}

func (h CLIHandler) Update(ctx context.Context, input userdto.UpdateInput) (userdto.UserOutput, error) {
	return h.usecase.Update(ctx, input)
}

func (h CLIHandler) Delete(ctx context.Context, id int64) error {
	return h.usecase.Delete(ctx, id)
}

func (h CLIHandler) ChangePassword(ctx context.Context, id int64, current, next string) error {
	return h.usecase.ChangePassword(ctx, userdto.ChangePasswordInput{ID: id, CurrentPassword: current, NewPassword: next})
}

func (h CLIHandler) Stats(ctx context.Context, id int64) (userdto.StatsOutput, error) {
	return h.usecase.Stats(ctx, id)
}
