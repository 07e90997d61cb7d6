package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"

	credentialout "punchclock/internal/modules/credential/adapter/out"
	credentialusecase "punchclock/internal/modules/credential/usecase"
	worksessionadapter "punchclock/internal/modules/worksession/adapter/out"
	"punchclock/internal/modules/worksession/usecase"
	apperrors "punchclock/internal/platform/errors"
	"punchclock/internal/platform/httpclient"
)

type remoteSession struct {
	ID          int64            `json:"id"`
	UserID      int64            `json:"userId"`
	StartTime   time.Time        `json:"startTime"`
	EndTime     *time.Time       `json:"endTime,omitempty"`
	TimeRecords []map[string]any `json:"timeRecords"`
}

// punchServer mimics the remote API, including its legacy record names and
// the {data: ...} envelope on start/end.
type punchServer struct {
	mu       sync.Mutex
	token    string
	nextID   int64
	sessions []*remoteSession
}

func (p *punchServer) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			p.mu.Lock()
			want := "Bearer " + p.token
			p.mu.Unlock()
			if req.Header.Get("Authorization") != want {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"invalid token"}`))
				return
			}
			next.ServeHTTP(w, req)
		})
	})
	r.HandleFunc("/sessions/start", p.start).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id:[0-9]+}/end", p.end).Methods(http.MethodPost)
	r.HandleFunc("/sessions/my", p.list).Methods(http.MethodGet)
	r.HandleFunc("/sessions/current", p.current).Methods(http.MethodGet)
	return r
}

func (p *punchServer) openLocked() *remoteSession {
	for _, s := range p.sessions {
		if s.EndTime == nil {
			return s
		}
	}
	return nil
}

func (p *punchServer) start(w http.ResponseWriter, _ *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.openLocked() != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"SESSION_ALREADY_OPEN","error":"session already open"}`))
		return
	}
	now := time.Now().UTC()
	s := &remoteSession{ID: p.nextID, UserID: 1, StartTime: now, TimeRecords: []map[string]any{
		{"id": 1, "sessionId": p.nextID, "recordType": "ENTRADA", "timestamp": now},
	}}
	p.nextID++
	p.sessions = append(p.sessions, s)
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": s})
}

func (p *punchServer) end(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(req)["id"], 10, 64)
	p.mu.Lock()
	defer p.mu.Unlock()
	open := p.openLocked()
	if open == nil || open.ID != id {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"no open session"}}`))
		return
	}
	now := time.Now().UTC()
	open.EndTime = &now
	open.TimeRecords = append(open.TimeRecords, map[string]any{"id": 2, "sessionId": id, "recordType": "SAIDA", "timestamp": now})
	_ = json.NewEncoder(w).Encode(map[string]any{"data": open})
}

func (p *punchServer) list(w http.ResponseWriter, _ *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = json.NewEncoder(w).Encode(p.sessions)
}

func (p *punchServer) current(w http.ResponseWriter, _ *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	open := p.openLocked()
	_ = json.NewEncoder(w).Encode(map[string]any{"hasOpenSession": open != nil, "session": open})
}

func TestEngineOverHTTP(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	remote := &punchServer{token: "tok", nextID: 7}
	srv := httptest.NewServer(remote.router())
	defer srv.Close()

	store := credentialout.NewMemoryStore()
	tokens := credentialusecase.NewTokenManager(store, nil)
	tokens.Save(ctx, "tok")
	client := httpclient.New(srv.URL, srv.Client(), tokens, nil, nil, nil)
	engine := usecase.NewEngine(worksessionadapter.NewHTTPGateway(client), nil, nil, nil, usecase.DefaultCacheWindow, nil, nil)

	if err := engine.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	snap := engine.Snapshot()
	if snap.Current == nil || snap.Current.ID != 7 || snap.Current.Records[0].Type != "ENTRY" {
		t.Fatalf("expected open session 7, got %+v", snap.Current)
	}

	// A second client opened nothing locally but the server still holds session 7.
	other := usecase.NewEngine(worksessionadapter.NewHTTPGateway(client), nil, nil, nil, usecase.DefaultCacheWindow, nil, nil)
	if err := other.Start(ctx); !errors.Is(err, apperrors.ErrSessionAlreadyOpen) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if cur := other.Snapshot().Current; cur == nil || cur.ID != 7 {
		t.Fatalf("conflict should pull session 7 in, got %+v", cur)
	}

	if err := engine.End(ctx); err != nil {
		t.Fatalf("end: %v", err)
	}
	if err := engine.Refresh(ctx, true); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	snap = engine.Snapshot()
	if snap.Current != nil || len(snap.Sessions) != 1 || snap.Sessions[0].EndTime == nil {
		t.Fatalf("expected closed session 7 in history, got %+v", snap)
	}
}

func TestUnauthorizedClearsCredentialAndEmptiesView(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	remote := &punchServer{token: "tok", nextID: 1}
	srv := httptest.NewServer(remote.router())
	defer srv.Close()

	store := credentialout.NewMemoryStore()
	tokens := credentialusecase.NewTokenManager(store, nil)
	tokens.Save(ctx, "tok")
	client := httpclient.New(srv.URL, srv.Client(), tokens, nil, nil, nil)
	engine := usecase.NewEngine(worksessionadapter.NewHTTPGateway(client), nil, nil, nil, usecase.DefaultCacheWindow, nil, nil)

	if err := engine.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	remote.mu.Lock()
	remote.token = "rotated"
	remote.mu.Unlock()

	err := engine.Refresh(ctx, true)
	if !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if tokens.Current() != "" {
		t.Fatalf("401 must clear the in-memory credential")
	}
	if _, ok, _ := store.Get(ctx, "punchclock.token"); ok {
		t.Fatalf("401 must clear the durable credential")
	}
	if snap := engine.Snapshot(); snap.Current != nil || len(snap.Sessions) != 0 {
		t.Fatalf("expected empty view, got %+v", snap)
	}
	if got := httpclient.StatusOf(err); got != http.StatusUnauthorized {
		t.Fatalf("expected 401 status, got %d", got)
	}
}
