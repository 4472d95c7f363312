package repository

import (
	"context"
	"time"

	"github.com/ucardlabs/ucard-admin/internal/domain/entity"
)

type SystemConfigRepository interface {
	List(ctx context.Context, systemType string) ([]*entity.SystemConfig, error)
	ListSystemTypes(ctx context.Context) ([]string, error)
	Create(ctx context.Context, cfg *entity.SystemConfig) error
	Update(ctx context.Context, id int64, patch SystemConfigPatch) (*entity.SystemConfig, error)
	// Delete возвращает удалённую запись.
	Delete(ctx context.Context, id int64) (*entity.SystemConfig, error)
}

// SystemConfigPatch: nil-поля не меняются.
type SystemConfigPatch struct {
	ConfigValue *string
	Status      *int
	Remark      *string
	Updater     string
	UpdatedAt   time.Time
}

// FlagCache хранит флаг одобрения во внешнем кэше.
type FlagCache interface {
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
