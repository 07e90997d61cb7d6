package out

import (
	"context"

	"punchclock/internal/modules/worksession/domain"
)

type Gateway interface {
	Start(ctx context.Context) (domain.WorkSession, error)
	End(ctx context.Context, sessionID int64) (domain.WorkSession, error)
	PauseStart(ctx context.Context, sessionID int64) (domain.TimeRecord, error)
	PauseEnd(ctx context.Context, sessionID int64) (domain.TimeRecord, error)
	List(ctx context.Context) ([]domain.WorkSession, error)
	// Current returns nil when the server holds no open session.
	Current(ctx context.Context) (*domain.WorkSession, error)
	Stats(ctx context.Context) (domain.Stats, error)
}

// ViewStore persists the cached view between process runs.
type ViewStore interface {
	Save(ctx context.Context, view domain.View) error
	Load(ctx context.Context) (domain.View, bool, error)
	Clear(ctx context.Context) error
}

type NoteWriter interface {
	Write(ctx context.Context, dir string, session domain.WorkSession) (string, error)
}
