package usecase_test

import (
	"context"
	"errors"
	"testing"

	authdto "punchclock/internal/modules/auth/dto"
	"punchclock/internal/modules/user/domain"
	"punchclock/internal/modules/user/dto"
	"punchclock/internal/modules/user/usecase"
	apperrors "punchclock/internal/platform/errors"
)

type fakeAuth struct {
	identity *authdto.IdentityOutput
}

func (f fakeAuth) Login(context.Context, authdto.LoginInput) (authdto.IdentityOutput, error) {
	return authdto.IdentityOutput{}, nil
}
func (f fakeAuth) Register(context.Context, authdto.RegisterInput) (authdto.IdentityOutput, error) {
	return authdto.IdentityOutput{}, nil
}
func (f fakeAuth) Logout(context.Context) {}
func (f fakeAuth) Restore(context.Context) (authdto.IdentityOutput, bool) {
	return authdto.IdentityOutput{}, false
}
func (f fakeAuth) CurrentUser() (authdto.IdentityOutput, bool) {
	if f.identity == nil {
		return authdto.IdentityOutput{}, false
	}
	return *f.identity, true
}
func (f fakeAuth) IsAuthenticated() bool { return f.identity != nil }
func (f fakeAuth) IsAdmin() bool         { return f.identity != nil && f.identity.Role == "ADMIN" }
func (f fakeAuth) AddDirectoryAccount(context.Context, authdto.DirectoryAccountInput) error {
	return nil
}

type fakeGateway struct {
	calls   int
	created domain.User
	changes domain.Changes
}

func (g *fakeGateway) List(context.Context) ([]domain.User, error) {
	g.calls++
	return []domain.User{{ID: 1, Name: "Admin", Role: domain.RoleAdmin}, {ID: 2, Name: "Joao", Role: domain.RoleUser}}, nil
}
func (g *fakeGateway) Get(_ context.Context, id int64) (domain.User, error) {
	g.calls++
	return domain.User{ID: id}, nil
}
func (g *fakeGateway) Create(_ context.Context, u domain.User, _ string) (domain.User, error) {
	g.calls++
	g.created = u
	u.ID = 10
	return u, nil
}
func (g *fakeGateway) Update(_ context.Context, id int64, c domain.Changes) (domain.User, error) {
	g.calls++
	g.changes = c
	return domain.User{ID: id}, nil
}
func (g *fakeGateway) Delete(context.Context, int64) error { g.calls++; return nil }
func (g *fakeGateway) ChangePassword(context.Context, int64, string, string) error {
	g.calls++
	return nil
}
func (g *fakeGateway) Stats(context.Context, int64) (domain.Stats, error) {
	g.calls++
	return domain.Stats{TotalSessions: 3}, nil
}

var (
	admin = &authdto.IdentityOutput{ID: "1", Role: "ADMIN"}
	joao  = &authdto.IdentityOutput{ID: "2", Role: "USER"}
)

func TestAdminOperationsAreGuardedLocally(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cases := []struct {
		name     string
		identity *authdto.IdentityOutput
		want     error
	}{
		{"anonymous", nil, apperrors.ErrNotAuthenticated},
		{"plain user", joao, apperrors.ErrForbidden},
	}
	for _, tc := range cases {
		gw := &fakeGateway{}
		uc := usecase.NewInteractor(gw, fakeAuth{identity: tc.identity})
		if _, err := uc.List(ctx); !errors.Is(err, tc.want) {
			t.Fatalf("%s list: expected %v, got %v", tc.name, tc.want, err)
		}
		if _, err := uc.Create(ctx, dto.CreateInput{Name: "x", Email: "x@y", Password: "p"}); !errors.Is(err, tc.want) {
			t.Fatalf("%s create: expected %v, got %v", tc.name, tc.want, err)
		}
		if err := uc.Delete(ctx, 3); !errors.Is(err, tc.want) {
			t.Fatalf("%s delete: expected %v, got %v", tc.name, tc.want, err)
		}
		if gw.calls != 0 {
			t.Fatalf("%s: guarded calls must not reach the gateway", tc.name)
		}
	}
}

func TestAdminCreateAndUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gw := &fakeGateway{}
	uc := usecase.NewInteractor(gw, fakeAuth{identity: admin})

	users, err := uc.List(ctx)
	if err != nil || len(users) != 2 {
		t.Fatalf("list: %+v err=%v", users, err)
	}

	out, err := uc.Create(ctx, dto.CreateInput{Name: " Maria ", Email: "Maria@Empresa.com", Password: "123456", Role: "admin"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if out.ID != 10 || gw.created.Email != "maria@empresa.com" || gw.created.Role != domain.RoleAdmin || gw.created.Name != "Maria" {
		t.Fatalf("unexpected create %+v / %+v", out, gw.created)
	}

	if _, err := uc.Create(ctx, dto.CreateInput{Name: "x", Email: "x@y", Password: "p", Role: "boss"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid role rejected, got %v", err)
	}

	name := "Maria Santos"
	if _, err := uc.Update(ctx, dto.UpdateInput{ID: 3, Name: &name}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if gw.changes.Name == nil || *gw.changes.Name != name || gw.changes.Role != nil {
		t.Fatalf("unexpected changes %+v", gw.changes)
	}
	if _, err := uc.Update(ctx, dto.UpdateInput{ID: 3}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected empty update rejected, got %v", err)
	}
	if err := uc.Delete(ctx, 1); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("admin must not delete itself, got %v", err)
	}
}

func TestSelfServiceOperations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gw := &fakeGateway{}
	uc := usecase.NewInteractor(gw, fakeAuth{identity: joao})

	if err := uc.ChangePassword(ctx, dto.ChangePasswordInput{ID: 2, CurrentPassword: "123456", NewPassword: "654321"}); err != nil {
		t.Fatalf("own password change: %v", err)
	}
	if err := uc.ChangePassword(ctx, dto.ChangePasswordInput{ID: 3, NewPassword: "x"}); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for someone else's password, got %v", err)
	}
	stats, err := uc.Stats(ctx, 2)
	if err != nil || stats.TotalSessions != 3 {
		t.Fatalf("own stats: %+v err=%v", stats, err)
	}
	if _, err := uc.Stats(ctx, 1); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for someone else's stats, got %v", err)
	}
}
