package out_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	authadapter "punchclock/internal/modules/auth/adapter/out"
	"punchclock/internal/modules/auth/domain"
	apperrors "punchclock/internal/platform/errors"
	"punchclock/internal/platform/httpclient"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	r := mux.NewRouter()
	r.HandleFunc("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(req.Body).Decode(&in)
		if in["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"tok-1","user":{"id":42,"name":"Ana","email":"ana@example.com","role":"admin"}}`))
	}).Methods(http.MethodPost)
	r.HandleFunc("/auth/register", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"user":{"id":"u-1","name":"Bo","email":"bo@example.com","role":"USER"}}`))
	}).Methods(http.MethodPost)
	r.HandleFunc("/users/me", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"7","name":"Cy","email":"cy@example.com","role":"USER"}`))
	}).Methods(http.MethodGet)
	r.HandleFunc("/auth/logout", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodPost)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPGatewayLogin(t *testing.T) {
	t.Parallel()
	srv := newServer(t)
	gw := authadapter.NewHTTPGateway(httpclient.New(srv.URL, srv.Client(), nil, nil, nil, nil))

	grant, err := gw.Login(context.Background(), "ana@example.com", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if grant.Token != "tok-1" || grant.Identity.ID != "42" || grant.Identity.Role != domain.RoleAdmin {
		t.Fatalf("unexpected grant %+v", grant)
	}

	_, err = gw.Login(context.Background(), "ana@example.com", "wrong")
	if !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestHTTPGatewayRegisterWithoutTokenFails(t *testing.T) {
	t.Parallel()
	srv := newServer(t)
	gw := authadapter.NewHTTPGateway(httpclient.New(srv.URL, srv.Client(), nil, nil, nil, nil))

	if _, err := gw.Register(context.Background(), "Bo", "bo@example.com", "pw"); !errors.Is(err, apperrors.ErrRemote) {
		t.Fatalf("expected ErrRemote for missing token, got %v", err)
	}
}

func TestHTTPGatewayMeAndLogout(t *testing.T) {
	t.Parallel()
	srv := newServer(t)
	gw := authadapter.NewHTTPGateway(httpclient.New(srv.URL, srv.Client(), nil, nil, nil, nil))

	identity, err := gw.Me(context.Background())
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if identity.ID != "7" || identity.Email != "cy@example.com" || identity.Role != domain.RoleUser {
		t.Fatalf("unexpected identity %+v", identity)
	}
	if err := gw.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
}
