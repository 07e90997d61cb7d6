package out

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"punchclock/internal/modules/auth/domain"
	authout "punchclock/internal/modules/auth/port/out"
	apperrors "punchclock/internal/platform/errors"
	"punchclock/internal/platform/httpclient"
)

type HTTPGateway struct {
	client httpclient.Doer
}

func NewHTTPGateway(client httpclient.Doer) authout.Gateway {
	return &HTTPGateway{client: client}
}

type wireUser struct {
	ID    flexibleID `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  string     `json:"role"`
}

type wireGrant struct {
	Token string   `json:"token"`
	User  wireUser `json:"user"`
}

func (g *HTTPGateway) Login(ctx context.Context, email, password string) (domain.Grant, error) {
	body := map[string]string{"email": email, "password": password}
	return g.grant(ctx, "/auth/login", body)
}

func (g *HTTPGateway) Register(ctx context.Context, name, email, password string) (domain.Grant, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	return g.grant(ctx, "/auth/register", body)
}

func (g *HTTPGateway) Logout(ctx context.Context) error {
	if err := g.client.Do(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (g *HTTPGateway) Me(ctx context.Context) (domain.Identity, error) {
	user := wireUser{}
	if err := g.client.Do(ctx, http.MethodGet, "/users/me", nil, &user); err != nil {
		return domain.Identity{}, fmt.Errorf("current user: %w", err)
	}
	if user.ID == "" {
		return domain.Identity{}, fmt.Errorf("%w: profile without id", apperrors.ErrRemote)
	}
	return user.identity(), nil
}

func (g *HTTPGateway) grant(ctx context.Context, path string, body any) (domain.Grant, error) {
	out := wireGrant{}
	if err := g.client.Do(ctx, http.MethodPost, path, body, &out); err != nil {
		return domain.Grant{}, fmt.Errorf("%s: %w", strings.TrimPrefix(path, "/"), err)
	}
	if out.Token == "" {
		return domain.Grant{}, fmt.Errorf("%w: %s returned no token", apperrors.ErrRemote, path)
	}
	return domain.Grant{Token: out.Token, Identity: out.User.identity()}, nil
}

func (u wireUser) identity() domain.Identity {
	return domain.Identity{
		ID:    string(u.ID),
		Name:  u.Name,
		Email: u.Email,
		Role:  domain.ParseRole(u.Role),
	}
}

// flexibleID accepts numeric or string identifiers.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*f = flexibleID(n.String())
	return nil
}
