package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"punchclock/internal/modules/worksession/domain"
	worksessionout "punchclock/internal/modules/worksession/port/out"
	apperrors "punchclock/internal/platform/errors"
	"punchclock/internal/platform/httpclient"
)

// HTTPGateway is stateless; error classification comes from httpclient.StatusError.
type HTTPGateway struct {
	client httpclient.Doer
}

func NewHTTPGateway(client httpclient.Doer) worksessionout.Gateway {
	return &HTTPGateway{client: client}
}

type currentResponse struct {
	HasOpenSession bool                `json:"hasOpenSession"`
	Session        *domain.WorkSession `json:"session"`
}

func (g *HTTPGateway) Start(ctx context.Context) (domain.WorkSession, error) {
	session := domain.WorkSession{}
	if err := g.call(ctx, http.MethodPost, "/sessions/start", &session); err != nil {
		return domain.WorkSession{}, fmt.Errorf("start: %w", err)
	}
	return session, nil
}

func (g *HTTPGateway) End(ctx context.Context, sessionID int64) (domain.WorkSession, error) {
	session := domain.WorkSession{}
	if err := g.call(ctx, http.MethodPost, fmt.Sprintf("/sessions/%d/end", sessionID), &session); err != nil {
		return domain.WorkSession{}, fmt.Errorf("end: %w", err)
	}
	return session, nil
}

func (g *HTTPGateway) PauseStart(ctx context.Context, sessionID int64) (domain.TimeRecord, error) {
	record := domain.TimeRecord{}
	if err := g.call(ctx, http.MethodPost, fmt.Sprintf("/sessions/%d/pause/start", sessionID), &record); err != nil {
		return domain.TimeRecord{}, fmt.Errorf("pause start: %w", err)
	}
	return record, nil
}

func (g *HTTPGateway) PauseEnd(ctx context.Context, sessionID int64) (domain.TimeRecord, error) {
	record := domain.TimeRecord{}
	if err := g.call(ctx, http.MethodPost, fmt.Sprintf("/sessions/%d/pause/end", sessionID), &record); err != nil {
		return domain.TimeRecord{}, fmt.Errorf("pause end: %w", err)
	}
	return record, nil
}

func (g *HTTPGateway) List(ctx context.Context) ([]domain.WorkSession, error) {
	sessions := []domain.WorkSession{}
	if err := g.call(ctx, http.MethodGet, "/sessions/my", &sessions); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return sessions, nil
}

func (g *HTTPGateway) Current(ctx context.Context) (*domain.WorkSession, error) {
	resp := currentResponse{}
	if err := g.call(ctx, http.MethodGet, "/sessions/current", &resp); err != nil {
		return nil, fmt.Errorf("current: %w", err)
	}
	if !resp.HasOpenSession || resp.Session == nil {
		return nil, nil
	}
	return resp.Session, nil
}

func (g *HTTPGateway) Stats(ctx context.Context) (domain.Stats, error) {
	stats := domain.Stats{}
	if err := g.call(ctx, http.MethodGet, "/sessions/stats", &stats); err != nil {
		return domain.Stats{}, fmt.Errorf("stats: %w", err)
	}
	return stats, nil
}

// call decodes either a bare payload or one wrapped in {"data": ...}.
func (g *HTTPGateway) call(ctx context.Context, method, path string, out any) error {
	var raw json.RawMessage
	if err := g.client.Do(ctx, method, path, nil, &raw); err != nil {
		return err
	}
	payload := unwrapData(raw)
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", apperrors.ErrRemote, path, err)
	}
	return nil
}

func unwrapData(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}
	env := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return trimmed
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return trimmed
	}
	return data
}
