package in

import (
	"context"

	"punchclock/internal/modules/user/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.UserOutput, error)
	Get(ctx context.Context, id int64) (dto.UserOutput, error)
	Create(ctx context.Context, input dto.CreateInput) (dto.UserOutput, error)
	Update(ctx context.Context, input dto.UpdateInput) (dto.UserOutput, error)
	Delete(ctx context.Context, id int64) error
	ChangePassword(ctx context.Context, input dto.ChangePasswordInput) error
	Stats(ctx context.Context, id int64) (dto.StatsOutput, error)
}
