package out

import (
	"context"

	"punchclock/internal/modules/user/domain"
)

type Gateway interface {
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, id int64) (domain.User, error)
	Create(ctx context.Context, user domain.User, password string) (domain.User, error)
	Update(ctx context.Context, id int64, changes domain.Changes) (domain.User, error)
	Delete(ctx context.Context, id int64) error
	ChangePassword(ctx context.Context, id int64, currentPassword, newPassword string) error
	Stats(ctx context.Context, id int64) (domain.Stats, error)
}
