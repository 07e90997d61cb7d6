package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"punchclock/internal/modules/worksession/domain"
	"punchclock/internal/modules/worksession/dto"
	worksessionin "punchclock/internal/modules/worksession/port/in"
	worksessionout "punchclock/internal/modules/worksession/port/out"
	"punchclock/internal/platform/clock"
	apperrors "punchclock/internal/platform/errors"
	"punchclock/internal/platform/logging"
	"punchclock/internal/platform/metrics"
)

const DefaultCacheWindow = 30 * time.Second

// Engine reconciles the local session view with the server. Overlapping
// operations are rejected with ErrBusy, never queued.
type Engine struct {
	gateway worksessionout.Gateway
	store   worksessionout.ViewStore
	notes   worksessionout.NoteWriter
	clock   clock.Clock
	window  time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu      sync.Mutex
	view    domain.View
	pending domain.Transition
	// generation bumps on Reset so a fetch started before it cannot repopulate the view.
	generation uint64
}

func NewEngine(
	gateway worksessionout.Gateway,
	store worksessionout.ViewStore,
	notes worksessionout.NoteWriter,
	clk clock.Clock,
	window time.Duration,
	m *metrics.Metrics,
	logger *slog.Logger,
) worksessionin.Usecase {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	if window < 0 {
		window = DefaultCacheWindow
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Engine{
		gateway: gateway,
		store:   store,
		notes:   notes,
		clock:   clk,
		window:  window,
		metrics: m,
		logger:  logger,
		view:    domain.View{Sessions: []domain.WorkSession{}},
	}
}

// Restore loads the persisted view, keeping its refresh time so the cache
// window spans process runs.
func (e *Engine) Restore(ctx context.Context) {
	if e.store == nil {
		return
	}
	view, ok, err := e.store.Load(ctx)
	if err != nil {
		e.logger.Warn("session.view.load.fail", "err", err)
		return
	}
	if !ok {
		return
	}
	if view.Sessions == nil {
		view.Sessions = []domain.WorkSession{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending == domain.TransitionNone {
		e.view = view
	}
}

func (e *Engine) Refresh(ctx context.Context, force bool) error {
	e.mu.Lock()
	if e.pending != domain.TransitionNone {
		e.mu.Unlock()
		return apperrors.ErrBusy
	}
	started := e.clock.Now()
	if !force && started.Sub(e.view.LastRefresh) < e.window {
		e.mu.Unlock()
		e.metrics.ObserveCacheHit()
		e.logger.Debug("session.refresh.cached", "last_refresh", e.view.LastRefresh)
		return nil
	}
	e.pending = domain.TransitionRefresh
	e.mu.Unlock()
	defer e.finish()

	return e.fetch(ctx, started)
}

func (e *Engine) Start(ctx context.Context) error {
	const op = domain.TransitionStart
	e.mu.Lock()
	if e.pending != domain.TransitionNone {
		e.mu.Unlock()
		e.metrics.ObserveTransition(string(op), "busy")
		return apperrors.ErrBusy
	}
	if e.view.Current != nil {
		e.mu.Unlock()
		e.metrics.ObserveTransition(string(op), "rejected")
		return apperrors.ErrActiveSessionExists
	}
	e.pending = op
	e.mu.Unlock()
	defer e.finish()

	session, err := e.gateway.Start(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionAlreadyOpen) {
			// Stale cache: pull the server's open session in.
			e.metrics.ObserveConflict()
			e.metrics.ObserveTransition(string(op), "conflict")
			e.logger.Info("session.start.conflict")
			e.resync(ctx)
			return fmt.Errorf("start session: %w", err)
		}
		e.metrics.ObserveTransition(string(op), "error")
		e.logger.Warn("session.start.fail", "err", err)
		return fmt.Errorf("start session: %w", err)
	}

	e.metrics.ObserveTransition(string(op), "ok")
	e.logger.Info("session.start.ok", "session_id", session.ID)
	e.resync(ctx)
	return nil
}

func (e *Engine) End(ctx context.Context) error {
	const op = domain.TransitionEnd
	id, err := e.beginOnCurrent(op)
	if err != nil {
		return err
	}
	defer e.finish()

	if _, err := e.gateway.End(ctx, id); err != nil {
		e.metrics.ObserveTransition(string(op), "error")
		e.logger.Warn("session.end.fail", "session_id", id, "err", err)
		// The end may have landed even though the answer was lost.
		e.resync(ctx)
		return fmt.Errorf("end session %d: %w", id, err)
	}

	e.mu.Lock()
	e.view.Current = nil
	e.mu.Unlock()

	e.metrics.ObserveTransition(string(op), "ok")
	e.logger.Info("session.end.ok", "session_id", id)
	e.resync(ctx)
	return nil
}

func (e *Engine) PauseStart(ctx context.Context) error {
	return e.pause(ctx, domain.TransitionPauseStart)
}

func (e *Engine) PauseEnd(ctx context.Context) error {
	return e.pause(ctx, domain.TransitionPauseEnd)
}

func (e *Engine) pause(ctx context.Context, op domain.Transition) error {
	id, err := e.beginOnCurrent(op)
	if err != nil {
		return err
	}
	defer e.finish()

	if op == domain.TransitionPauseStart {
		_, err = e.gateway.PauseStart(ctx, id)
	} else {
		_, err = e.gateway.PauseEnd(ctx, id)
	}
	if err != nil {
		e.metrics.ObserveTransition(string(op), "error")
		e.logger.Warn("session."+string(op)+".fail", "session_id", id, "err", err)
		e.resync(ctx)
		return fmt.Errorf("%s session %d: %w", op, id, err)
	}
	e.metrics.ObserveTransition(string(op), "ok")
	e.resync(ctx)
	return nil
}

// beginOnCurrent claims the gate for an operation on the held open session.
func (e *Engine) beginOnCurrent(op domain.Transition) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending != domain.TransitionNone {
		e.metrics.ObserveTransition(string(op), "busy")
		return 0, apperrors.ErrBusy
	}
	current := e.view.Current
	if current == nil {
		e.metrics.ObserveTransition(string(op), "rejected")
		return 0, apperrors.ErrNoActiveSession
	}
	switch op {
	case domain.TransitionPauseStart:
		if current.IsPaused() {
			e.metrics.ObserveTransition(string(op), "rejected")
			return 0, apperrors.ErrAlreadyPaused
		}
	case domain.TransitionPauseEnd:
		if !current.IsPaused() {
			e.metrics.ObserveTransition(string(op), "rejected")
			return 0, apperrors.ErrNotPaused
		}
	}
	e.pending = op
	return current.ID, nil
}

func (e *Engine) finish() {
	e.mu.Lock()
	e.pending = domain.TransitionNone
	e.mu.Unlock()
}

// resync is the forced refresh that trails every transition; its failure only
// empties the view.
func (e *Engine) resync(ctx context.Context) {
	if err := e.fetch(ctx, e.clock.Now()); err != nil {
		e.logger.Warn("session.resync.fail", "err", err)
	}
}

// fetch pulls list and current concurrently and swaps the whole view. On any
// error the view becomes empty, still stamped with the start time.
func (e *Engine) fetch(ctx context.Context, started time.Time) error {
	e.mu.Lock()
	generation := e.generation
	e.mu.Unlock()

	var (
		sessions []domain.WorkSession
		current  *domain.WorkSession
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := e.gateway.List(gctx)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		sessions = list
		return nil
	})
	g.Go(func() error {
		open, err := e.gateway.Current(gctx)
		if err != nil {
			return fmt.Errorf("current session: %w", err)
		}
		current = open
		return nil
	})
	err := g.Wait()

	next := domain.View{Sessions: []domain.WorkSession{}, LastRefresh: started}
	if err == nil {
		if sessions != nil {
			next.Sessions = sessions
		}
		next.Current = current
	}

	e.mu.Lock()
	if e.generation != generation {
		e.mu.Unlock()
		e.logger.Debug("session.refresh.discarded")
		return err
	}
	e.view = next
	snapshot := e.view.Clone()
	e.mu.Unlock()

	e.persist(ctx, snapshot)
	if err != nil {
		e.metrics.ObserveRefresh("error")
		e.logger.Warn("session.refresh.fail", "err", err)
		return err
	}
	e.metrics.ObserveRefresh("ok")
	e.logger.Debug("session.refresh.ok", "sessions", len(next.Sessions), "open", next.Current != nil)
	return nil
}

func (e *Engine) persist(ctx context.Context, view domain.View) {
	if e.store == nil {
		return
	}
	if err := e.store.Save(ctx, view); err != nil {
		e.logger.Warn("session.view.save.fail", "err", err)
	}
}

func (e *Engine) ClearCurrentSession() {
	e.mu.Lock()
	e.view.Current = nil
	snapshot := e.view.Clone()
	e.mu.Unlock()
	e.persist(context.Background(), snapshot)
}

// Reset forgets everything cached, including the refresh time, so the next
// identity starts from the server.
func (e *Engine) Reset(ctx context.Context) {
	e.mu.Lock()
	e.view = domain.View{Sessions: []domain.WorkSession{}}
	e.generation++
	e.mu.Unlock()
	if e.store == nil {
		return
	}
	if err := e.store.Clear(ctx); err != nil {
		e.logger.Warn("session.view.clear.fail", "err", err)
	}
}

func (e *Engine) TodayRecords() []dto.Record {
	e.mu.Lock()
	sessions := e.view.Clone().Sessions
	e.mu.Unlock()
	return toRecords(domain.TodayRecords(sessions, e.clock.Now()))
}

func (e *Engine) Snapshot() dto.ViewOutput {
	e.mu.Lock()
	view := e.view.Clone()
	pending := e.pending
	e.mu.Unlock()

	out := dto.ViewOutput{
		Phase:       string(domain.PhaseOf(pending, view.Current)),
		Pending:     string(pending),
		Loading:     pending != domain.TransitionNone,
		Sessions:    make([]dto.Session, 0, len(view.Sessions)),
		LastRefresh: view.LastRefresh,
	}
	if view.Current != nil {
		current := toSession(*view.Current)
		out.Current = &current
	}
	for _, s := range view.Sessions {
		out.Sessions = append(out.Sessions, toSession(s))
	}
	return out
}

func (e *Engine) Stats(ctx context.Context) (dto.StatsOutput, error) {
	stats, err := e.gateway.Stats(ctx)
	if err != nil {
		return dto.StatsOutput{}, fmt.Errorf("session stats: %w", err)
	}
	return dto.StatsOutput{
		TotalSessions:          stats.TotalSessions,
		TotalHours:             stats.TotalHours,
		AverageSessionDuration: stats.AverageSessionDuration,
	}, nil
}

// Export writes one note per cached session, the open one included.
func (e *Engine) Export(ctx context.Context, dir string) (dto.ExportOutput, error) {
	if e.notes == nil {
		return dto.ExportOutput{}, fmt.Errorf("note writer is not configured")
	}
	if dir == "" {
		return dto.ExportOutput{}, fmt.Errorf("%w: export directory is required", apperrors.ErrInvalidInput)
	}
	e.mu.Lock()
	view := e.view.Clone()
	e.mu.Unlock()

	sessions := view.Sessions
	if view.Current != nil && !containsSession(sessions, view.Current.ID) {
		sessions = append(sessions, *view.Current)
	}
	out := dto.ExportOutput{Paths: make([]string, 0, len(sessions))}
	for _, s := range sessions {
		path, err := e.notes.Write(ctx, dir, s)
		if err != nil {
			return out, fmt.Errorf("export session %d: %w", s.ID, err)
		}
		out.Paths = append(out.Paths, path)
	}
	return out, nil
}

func containsSession(sessions []domain.WorkSession, id int64) bool {
	for _, s := range sessions {
		if s.ID == id {
			return true
		}
	}
	return false
}

func toSession(s domain.WorkSession) dto.Session {
	return dto.Session{
		ID:         s.ID,
		UserID:     s.UserID,
		StartTime:  s.StartTime,
		EndTime:    s.EndTime,
		TotalHours: s.TotalHours,
		Open:       s.IsOpen(),
		Paused:     s.IsPaused(),
		Records:    toRecords(s.TimeRecords),
	}
}

func toRecords(records []domain.TimeRecord) []dto.Record {
	out := make([]dto.Record, 0, len(records))
	for _, r := range records {
		out = append(out, dto.Record{ID: r.ID, SessionID: r.SessionID, Type: string(r.Type), Timestamp: r.Timestamp})
	}
	return out
}
