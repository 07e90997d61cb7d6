package in

import (
	"context"

	worksessiondto "punchclock/internal/modules/worksession/dto"
	worksessionin "punchclock/internal/modules/worksession/port/in"
)

type CLIHandler struct {
	usecase worksessionin.Usecase
}

func NewCLIHandler(usecase worksessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Refresh(ctx context.Context, force bool) (worksessiondto.ViewOutput, error) {
	err := h.usecase.Refresh(ctx, force)
	return h.usecase.Snapshot(), err
}

// Start and End report the view after the transition, whether or not it succeeded.
func (h CLIHandler) Start(ctx context.Context) (worksessiondto.ViewOutput, error) {
	err := h.usecase.Start(ctx)
	return h.usecase.Snapshot(), err
}

func (h CLIHandler) End(ctx context.Context) (worksessiondto.ViewOutput, error) {
	err := h.usecase.End(ctx)
	return h.usecase.Snapshot(), err
}

func (h CLIHandler) PauseStart(ctx context.Context) (worksessiondto.ViewOutput, error) {
	err := h.usecase.PauseStart(ctx)
	return h.usecase.Snapshot(), err
}

func (h CLIHandler) PauseEnd(ctx context.Context) (worksessiondto.ViewOutput, error) {
	err := h.usecase.PauseEnd(ctx)
	return h.usecase.Snapshot(), err
}

func (h CLIHandler) Status() worksessiondto.ViewOutput {
	return h.usecase.Snapshot()
}

func (h CLIHandler) Today() []worksessiondto.Record {
	return h.usecase.TodayRecords()
}

func (h CLIHandler) ClearCurrent() {
	h.usecase.ClearCurrentSession()
}

func (h CLIHandler) Stats(ctx context.Context) (worksessiondto.StatsOutput, error) {
	return h.usecase.Stats(ctx)
}

func (h CLIHandler) Export(ctx context.Context, dir string) (worksessiondto.ExportOutput, error) {
	return h.usecase.Export(ctx, dir)
}
