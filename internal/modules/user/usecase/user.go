package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	authin "punchclock/internal/modules/auth/port/in"
	"punchclock/internal/modules/user/domain"
	"punchclock/internal/modules/user/dto"
	userin "punchclock/internal/modules/user/port/in"
	userout "punchclock/internal/modules/user/port/out"
	apperrors "punchclock/internal/platform/errors"
)

// Interactor checks access locally before any request leaves the process.
type Interactor struct {
	gateway userout.Gateway
	auth    authin.Usecase
}

func NewInteractor(gateway userout.Gateway, auth authin.Usecase) userin.Usecase {
	return &Interactor{gateway: gateway, auth: auth}
}

func (i *Interactor) List(ctx context.Context) ([]dto.UserOutput, error) {
	if err := i.requireAdmin(); err != nil {
		return nil, err
	}
	users, err := i.gateway.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserOutput, 0, len(users))
	for _, u := range users {
		out = append(out, toOutput(u))
	}
	return out, nil
}

func (i *Interactor) Get(ctx context.Context, id int64) (dto.UserOutput, error) {
	if err := i.requireAdmin(); err != nil {
		return dto.UserOutput{}, err
	}
	u, err := i.gateway.Get(ctx, id)
	if err != nil {
		return dto.UserOutput{}, err
	}
	return toOutput(u), nil
}

func (i *Interactor) Create(ctx context.Context, input dto.CreateInput) (dto.UserOutput, error) {
	if err := i.requireAdmin(); err != nil {
		return dto.UserOutput{}, err
	}
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" || email == "" || input.Password == "" {
		return dto.UserOutput{}, fmt.Errorf("%w: name, email and password are required", apperrors.ErrInvalidInput)
	}
	role := domain.RoleUser
	if input.Role != "" {
		if role = domain.NormalizeRole(input.Role); role == "" {
			return dto.UserOutput{}, fmt.Errorf("%w: unknown role %q", apperrors.ErrInvalidInput, input.Role)
		}
	}
	u, err := i.gateway.Create(ctx, domain.User{Name: name, Email: email, Role: role}, input.Password)
	if err != nil {
		return dto.UserOutput{}, err
	}
	return toOutput(u), nil
}

func (i *Interactor) Update(ctx context.Context, input dto.UpdateInput) (dto.UserOutput, error) {
	if err := i.requireAdmin(); err != nil {
		return dto.UserOutput{}, err
	}
	changes := domain.Changes{Name: input.Name, Email: input.Email}
	if input.Role != nil {
		role := domain.NormalizeRole(*input.Role)
		if role == "" {
			return dto.UserOutput{}, fmt.Errorf("%w: unknown role %q", apperrors.ErrInvalidInput, *input.Role)
		}
		changes.Role = &role
	}
	if changes.Empty() {
		return dto.UserOutput{}, fmt.Errorf("%w: nothing to update", apperrors.ErrInvalidInput)
	}
	u, err := i.gateway.Update(ctx, input.ID, changes)
	if err != nil {
		return dto.UserOutput{}, err
	}
	return toOutput(u), nil
}

func (i *Interactor) Delete(ctx context.Context, id int64) error {
	if err := i.requireAdmin(); err != nil {
		return err
	}
	if i.isSelf(id) {
		return fmt.Errorf("%w: cannot delete the signed-in user", apperrors.ErrInvalidInput)
	}
	return i.gateway.Delete(ctx, id)
}

func (i *Interactor) ChangePassword(ctx context.Context, input dto.ChangePasswordInput) error {
	if err := i.requireSelfOrAdmin(input.ID); err != nil {
		return err
	}
	if input.NewPassword == "" {
		return fmt.Errorf("%w: new password is required", apperrors.ErrInvalidInput)
	}
	return i.gateway.ChangePassword(ctx, input.ID, input.CurrentPassword, input.NewPassword)
}

func (i *Interactor) Stats(ctx context.Context, id int64) (dto.StatsOutput, error) {
	if err := i.requireSelfOrAdmin(id); err != nil {
		return dto.StatsOutput{}, err
	}
	s, err := i.gateway.Stats(ctx, id)
	if err != nil {
		return dto.StatsOutput{}, err
	}
	return dto.StatsOutput{
		TotalSessions:          s.TotalSessions,
		TotalHours:             s.TotalHours,
		AverageSessionDuration: s.AverageSessionDuration,
		LastSession:            s.LastSession,
	}, nil
}

func (i *Interactor) requireAdmin() error {
	if !i.auth.IsAuthenticated() {
		return apperrors.ErrNotAuthenticated
	}
	if !i.auth.IsAdmin() {
		return apperrors.ErrForbidden
	}
	return nil
}

func (i *Interactor) requireSelfOrAdmin(id int64) error {
	if !i.auth.IsAuthenticated() {
		return apperrors.ErrNotAuthenticated
	}
	if i.auth.IsAdmin() || i.isSelf(id) {
		return nil
	}
	return apperrors.ErrForbidden
}

func (i *Interactor) isSelf(id int64) bool {
	current, ok := i.auth.CurrentUser()
	return ok && current.ID == strconv.FormatInt(id, 10)
}

func toOutput(u domain.User) dto.UserOutput {
	return dto.UserOutput{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}
