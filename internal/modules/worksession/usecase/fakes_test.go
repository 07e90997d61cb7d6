package usecase_test

import (
	"context"
	"sync"
	"time"

	"punchclock/internal/modules/worksession/domain"
	"punchclock/internal/platform/clock"
	apperrors "punchclock/internal/platform/errors"
)

// fakeServer behaves like the remote service: one open session per user.
type fakeServer struct {
	mu    sync.Mutex
	clock *clock.Manual

	nextID   int64
	nextRec  int64
	sessions []domain.WorkSession
	openIdx  int

	calls map[string]int

	startErr   error
	endErr     error
	listErr    error
	currentErr error

	// startGate, when set, blocks Start until closed; startEntered is signalled first.
	startGate    chan struct{}
	startEntered chan struct{}
}

func newFakeServer(clk *clock.Manual, firstID int64) *fakeServer {
	return &fakeServer{clock: clk, nextID: firstID, nextRec: 1, openIdx: -1, calls: map[string]int{}}
}

func (s *fakeServer) count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *fakeServer) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *fakeServer) record(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
}

// openDirectly simulates a session opened from another device.
func (s *fakeServer) openDirectly() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openLocked()
}

func (s *fakeServer) openLocked() int64 {
	now := s.clock.Now()
	id := s.nextID
	s.nextID++
	s.sessions = append(s.sessions, domain.WorkSession{
		ID:          id,
		UserID:      1,
		StartTime:   now,
		CreatedAt:   now,
		TimeRecords: []domain.TimeRecord{s.newRecordLocked(id, domain.RecordEntry, now)},
	})
	s.openIdx = len(s.sessions) - 1
	return id
}

func (s *fakeServer) newRecordLocked(sessionID int64, t domain.RecordType, at time.Time) domain.TimeRecord {
	r := domain.TimeRecord{ID: s.nextRec, SessionID: sessionID, Type: t, Timestamp: at}
	s.nextRec++
	return r
}

func (s *fakeServer) Start(context.Context) (domain.WorkSession, error) {
	s.record("start")
	if s.startEntered != nil {
		s.startEntered <- struct{}{}
	}
	if s.startGate != nil {
		<-s.startGate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startErr != nil {
		return domain.WorkSession{}, s.startErr
	}
	if s.openIdx >= 0 {
		return domain.WorkSession{}, apperrors.ErrSessionAlreadyOpen
	}
	s.openLocked()
	return s.sessions[s.openIdx].Clone(), nil
}

func (s *fakeServer) End(_ context.Context, id int64) (domain.WorkSession, error) {
	s.record("end")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.endErr != nil {
		return domain.WorkSession{}, s.endErr
	}
	if s.openIdx < 0 || s.sessions[s.openIdx].ID != id {
		return domain.WorkSession{}, apperrors.ErrNotFound
	}
	now := s.clock.Now()
	session := &s.sessions[s.openIdx]
	session.EndTime = &now
	hours := now.Sub(session.StartTime).Hours()
	session.TotalHours = &hours
	session.TimeRecords = append(session.TimeRecords, s.newRecordLocked(id, domain.RecordExit, now))
	s.openIdx = -1
	return session.Clone(), nil
}

func (s *fakeServer) pause(id int64, t domain.RecordType) (domain.TimeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openIdx < 0 || s.sessions[s.openIdx].ID != id {
		return domain.TimeRecord{}, apperrors.ErrNotFound
	}
	r := s.newRecordLocked(id, t, s.clock.Now())
	s.sessions[s.openIdx].TimeRecords = append(s.sessions[s.openIdx].TimeRecords, r)
	return r, nil
}

func (s *fakeServer) PauseStart(_ context.Context, id int64) (domain.TimeRecord, error) {
	s.record("pause_start")
	return s.pause(id, domain.RecordPauseStart)
}

func (s *fakeServer) PauseEnd(_ context.Context, id int64) (domain.TimeRecord, error) {
	s.record("pause_end")
	return s.pause(id, domain.RecordPauseEnd)
}

func (s *fakeServer) List(context.Context) ([]domain.WorkSession, error) {
	s.record("list")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]domain.WorkSession, 0, len(s.sessions))
	for i := len(s.sessions) - 1; i >= 0; i-- {
		out = append(out, s.sessions[i].Clone())
	}
	return out, nil
}

func (s *fakeServer) Current(context.Context) (*domain.WorkSession, error) {
	s.record("current")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentErr != nil {
		return nil, s.currentErr
	}
	if s.openIdx < 0 {
		return nil, nil
	}
	open := s.sessions[s.openIdx].Clone()
	return &open, nil
}

func (s *fakeServer) Stats(context.Context) (domain.Stats, error) {
	s.record("stats")
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Stats{TotalSessions: len(s.sessions)}, nil
}

func (s *fakeServer) set(fn func(*fakeServer)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

type memoryViewStore struct {
	mu    sync.Mutex
	view  *domain.View
	saves int
}

func (m *memoryViewStore) Save(_ context.Context, view domain.View) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := view.Clone()
	m.view = &v
	m.saves++
	return nil
}

func (m *memoryViewStore) Load(context.Context) (domain.View, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.view == nil {
		return domain.View{}, false, nil
	}
	return m.view.Clone(), true, nil
}

func (m *memoryViewStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.view = nil
	return nil
}
