package in

import (
	"context"

	"punchclock/internal/modules/worksession/dto"
)

type Usecase interface {
	Refresh(ctx context.Context, force bool) error
	Start(ctx context.Context) error
	End(ctx context.Context) error
	PauseStart(ctx context.Context) error
	PauseEnd(ctx context.Context) error
	ClearCurrentSession()
	Reset(ctx context.Context)
	Restore(ctx context.Context)
	TodayRecords() []dto.Record
	Snapshot() dto.ViewOutput
	Stats(ctx context.Context) (dto.StatsOutput, error)
	Export(ctx context.Context, dir string) (dto.ExportOutput, error)
}
