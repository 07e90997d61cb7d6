package out

import (
	"context"
	"fmt"
	"net/http"

	"punchclock/internal/modules/user/domain"
	userout "punchclock/internal/modules/user/port/out"
	"punchclock/internal/platform/httpclient"
)

type HTTPGateway struct {
	client httpclient.Doer
}

func NewHTTPGateway(client httpclient.Doer) userout.Gateway {
	return &HTTPGateway{client: client}
}

type createRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (g *HTTPGateway) List(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	if err := g.client.Do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (g *HTTPGateway) Get(ctx context.Context, id int64) (domain.User, error) {
	u := domain.User{}
	if err := g.client.Do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, &u); err != nil {
		return domain.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func (g *HTTPGateway) Create(ctx context.Context, user domain.User, password string) (domain.User, error) {
	body := createRequest{Name: user.Name, Email: user.Email, Password: password, Role: user.Role}
	created := domain.User{}
	if err := g.client.Do(ctx, http.MethodPost, "/users", body, &created); err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (g *HTTPGateway) Update(ctx context.Context, id int64, changes domain.Changes) (domain.User, error) {
	updated := domain.User{}
	if err := g.client.Do(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), changes, &updated); err != nil {
		return domain.User{}, fmt.Errorf("update user %d: %w", id, err)
	}
	return updated, nil
}

func (g *HTTPGateway) Delete(ctx context.Context, id int64) error {
	if err := g.client.Do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}

func (g *HTTPGateway) ChangePassword(ctx context.Context, id int64, currentPassword, newPassword string) error {
	body := passwordRequest{CurrentPassword: currentPassword, NewPassword: newPassword}
	if err := g.client.Do(ctx, http.MethodPut, fmt.Sprintf("/users/%d/password", id), body, nil); err != nil {
		return fmt.Errorf("change password for user %d: %w", id, err)
	}
	return nil
}

func (g *HTTPGateway) Stats(ctx context.Context, id int64) (domain.Stats, error) {
	s := domain.Stats{}
	if err := g.client.Do(ctx, http.MethodGet, fmt.Sprintf("/users/%d/stats", id), nil, &s); err != nil {
		return domain.Stats{}, fmt.Errorf("user %d stats: %w", id, err)
	}
	return s, nil
}
