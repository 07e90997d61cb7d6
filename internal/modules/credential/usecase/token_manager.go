package usecase

import (
	"context"
	"log/slog"
	"sync"

	"punchclock/internal/modules/credential/domain"
	credentialin "punchclock/internal/modules/credential/port/in"
	credentialout "punchclock/internal/modules/credential/port/out"
	"punchclock/internal/platform/logging"
)

// TokenManager keeps the in-memory token authoritative. The durable copy is
// best effort: memory changes even when the store write fails.
type TokenManager struct {
	store  credentialout.KeyValueStore
	logger *slog.Logger

	mu    sync.RWMutex
	token string
}

func NewTokenManager(store credentialout.KeyValueStore, logger *slog.Logger) credentialin.TokenLifecycle {
	if logger == nil {
		logger = logging.Discard()
	}
	return &TokenManager{store: store, logger: logger}
}

func (m *TokenManager) Load(ctx context.Context) {
	value, ok, err := m.store.Get(ctx, domain.TokenKey)
	if err != nil {
		m.logger.Warn("credential.load.fail", "err", err)
		return
	}
	if !ok || value == "" {
		return
	}
	m.mu.Lock()
	m.token = value
	m.mu.Unlock()
}

func (m *TokenManager) Save(ctx context.Context, token string) {
	if token == "" {
		m.Clear(ctx)
		return
	}
	if err := m.store.Set(ctx, domain.TokenKey, token); err != nil {
		m.logger.Warn("credential.save.fail", "err", err)
	}
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
}

func (m *TokenManager) Clear(ctx context.Context) {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	if err := m.store.Remove(ctx, domain.TokenKey); err != nil {
		m.logger.Warn("credential.clear.fail", "err", err)
	}
}

func (m *TokenManager) Current() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}
