package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"punchclock/internal/modules/auth/domain"
	"punchclock/internal/modules/auth/dto"
	authin "punchclock/internal/modules/auth/port/in"
	authout "punchclock/internal/modules/auth/port/out"
	credentialin "punchclock/internal/modules/credential/port/in"
	apperrors "punchclock/internal/platform/errors"
	"punchclock/internal/platform/httpclient"
	"punchclock/internal/platform/logging"
)

// Manager resolves the single active identity of the process.
type Manager struct {
	gateway   authout.Gateway
	tokens    credentialin.TokenLifecycle
	directory authout.Directory
	sessions  authout.SessionResetter
	// offlineFallback lets a failed remote login match against the local directory.
	offlineFallback bool
	logger          *slog.Logger

	mu       sync.RWMutex
	identity *domain.Identity
	offline  bool
}

func NewManager(
	gateway authout.Gateway,
	tokens credentialin.TokenLifecycle,
	directory authout.Directory,
	sessions authout.SessionResetter,
	offlineFallback bool,
	logger *slog.Logger,
) authin.Usecase {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Manager{
		gateway:         gateway,
		tokens:          tokens,
		directory:       directory,
		sessions:        sessions,
		offlineFallback: offlineFallback,
		logger:          logger,
	}
}

func (m *Manager) Login(ctx context.Context, input dto.LoginInput) (dto.IdentityOutput, error) {
	email := domain.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return dto.IdentityOutput{}, fmt.Errorf("%w: email and password are required", apperrors.ErrInvalidInput)
	}

	grant, err := m.gateway.Login(ctx, email, input.Password)
	if err == nil {
		m.tokens.Save(ctx, grant.Token)
		m.resetSessions(ctx)
		m.setIdentity(grant.Identity, false)
		m.logger.Info("auth.login.ok", "user_id", grant.Identity.ID)
		return toOutput(grant.Identity, false), nil
	}
	m.logger.Warn("auth.login.remote_fail", "email", email, "status", httpclient.StatusOf(err), "err", err)

	if !m.offlineFallback || m.directory == nil {
		return dto.IdentityOutput{}, apperrors.ErrAuthenticationFailed
	}
	identity, dirErr := m.directory.Authenticate(ctx, email, input.Password)
	if dirErr != nil {
		m.logger.Warn("auth.login.offline_fail", "email", email, "err", dirErr)
		return dto.IdentityOutput{}, apperrors.ErrAuthenticationFailed
	}
	m.tokens.Clear(ctx)
	m.resetSessions(ctx)
	m.setIdentity(identity, true)
	m.logger.Warn("auth.login.offline", "user_id", identity.ID)
	return toOutput(identity, true), nil
}

func (m *Manager) Register(ctx context.Context, input dto.RegisterInput) (dto.IdentityOutput, error) {
	name := strings.TrimSpace(input.Name)
	email := domain.NormalizeEmail(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return dto.IdentityOutput{}, fmt.Errorf("%w: name, email and password are required", apperrors.ErrInvalidInput)
	}
	grant, err := m.gateway.Register(ctx, name, email, input.Password)
	if err != nil {
		m.logger.Warn("auth.register.fail", "email", email, "status", httpclient.StatusOf(err), "err", err)
		return dto.IdentityOutput{}, fmt.Errorf("register: %w", err)
	}
	m.tokens.Save(ctx, grant.Token)
	m.resetSessions(ctx)
	m.setIdentity(grant.Identity, false)
	return toOutput(grant.Identity, false), nil
}

// Logout never fails. The remote call is only made while a credential is held.
func (m *Manager) Logout(ctx context.Context) {
	if m.tokens.Current() != "" {
		if err := m.gateway.Logout(ctx); err != nil {
			m.logger.Warn("auth.logout.remote_fail", "err", err)
		}
	}

	m.mu.Lock()
	m.identity = nil
	m.offline = false
	m.mu.Unlock()

	m.resetSessions(ctx)
	m.tokens.Clear(ctx)
}

func (m *Manager) Restore(ctx context.Context) (dto.IdentityOutput, bool) {
	m.tokens.Load(ctx)
	if m.tokens.Current() == "" {
		return dto.IdentityOutput{}, false
	}
	identity, err := m.gateway.Me(ctx)
	if err != nil {
		m.logger.Warn("auth.restore.fail", "status", httpclient.StatusOf(err), "err", err)
		m.tokens.Clear(ctx)
		return dto.IdentityOutput{}, false
	}
	m.setIdentity(identity, false)
	return toOutput(identity, false), true
}

func (m *Manager) CurrentUser() (dto.IdentityOutput, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.identity == nil {
		return dto.IdentityOutput{}, false
	}
	return toOutput(*m.identity, m.offline), true
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity != nil
}

func (m *Manager) IsAdmin() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity != nil && m.identity.IsAdmin()
}

func (m *Manager) AddDirectoryAccount(ctx context.Context, input dto.DirectoryAccountInput) error {
	if m.directory == nil {
		return fmt.Errorf("local directory is not configured")
	}
	email := domain.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return fmt.Errorf("%w: email and password are required", apperrors.ErrInvalidInput)
	}
	identity := domain.Identity{
		ID:    strings.TrimSpace(input.ID),
		Name:  strings.TrimSpace(input.Name),
		Email: email,
		Role:  domain.ParseRole(input.Role),
	}
	if identity.ID == "" {
		identity.ID = email
	}
	return m.directory.Upsert(ctx, identity, input.Password)
}

// resetSessions drops work-session state cached for a previous identity.
func (m *Manager) resetSessions(ctx context.Context) {
	if m.sessions != nil {
		m.sessions.Reset(ctx)
	}
}

func (m *Manager) setIdentity(identity domain.Identity, offline bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identity = &identity
	m.offline = offline
}

func toOutput(identity domain.Identity, offline bool) dto.IdentityOutput {
	return dto.IdentityOutput{
		ID:      identity.ID,
		Name:    identity.Name,
		Email:   identity.Email,
		Role:    string(identity.Role),
		Offline: offline,
	}
}
