package sysconfig

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ucardlabs/ucard-admin/internal/domain/entity"
	"github.com/ucardlabs/ucard-admin/internal/domain/repository"
	"github.com/ucardlabs/ucard-admin/internal/logger"
	"github.com/ucardlabs/ucard-admin/internal/pkg/apperror"
)

const defaultUpdater = "admin"

type ListOutput struct {
	Items       []*entity.SystemConfig
	SystemTypes []string
}

type CreateInput struct {
	SystemType  string
	ConfigKey   string
	ConfigValue string
	Status      *int
	Remark      *string
	Updater     string
}

type UpdateInput struct {
	ID          int64
	ConfigValue *string
	Status      *int
	Remark      *string
	Updater     string
}

// SystemConfigUseCase управляет t_system_config и держит флаг одобрения
// в Redis в актуальном состоянии. Ошибки Redis только логируются:
// при отсутствии ключа потребители читают значение из базы.
type SystemConfigUseCase struct {
	repo  repository.SystemConfigRepository
	flags repository.FlagCache
	now   func() time.Time
}

// NewSystemConfigUseCase принимает flags == nil, если Redis не настроен.
func NewSystemConfigUseCase(repo repository.SystemConfigRepository, flags repository.FlagCache) *SystemConfigUseCase {
	return &SystemConfigUseCase{repo: repo, flags: flags, now: time.Now}
}

func (uc *SystemConfigUseCase) List(ctx context.Context, systemType string) (*ListOutput, error) {
	items, err := uc.repo.List(ctx, strings.TrimSpace(systemType))
	if err != nil {
		return nil, err
	}
	types, err := uc.repo.ListSystemTypes(ctx)
	if err != nil {
		return nil, err
	}
	return &ListOutput{Items: items, SystemTypes: types}, nil
}

func (uc *SystemConfigUseCase) Create(ctx context.Context, in CreateInput) (*entity.SystemConfig, error) {
	if in.SystemType == "" || in.ConfigKey == "" || in.ConfigValue == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "тип системы, ключ и значение параметра обязательны")
	}

	now := uc.now().UTC()
	cfg := &entity.SystemConfig{
		SystemType:  in.SystemType,
		ConfigKey:   in.ConfigKey,
		ConfigValue: in.ConfigValue,
		Status:      1,
		Updater:     updaterOrDefault(in.Updater),
		Remark:      in.Remark,
		CreatedAt:   &now,
		UpdatedAt:   &now,
	}
	if in.Status != nil {
		cfg.Status = *in.Status
	}

	if err := uc.repo.Create(ctx, cfg); err != nil {
		return nil, err
	}

	if cfg.IsApprovalFlag() {
		uc.syncFlag(ctx, cfg.ConfigKey, cfg.ConfigValue)
	}
	return cfg, nil
}

func (uc *SystemConfigUseCase) Update(ctx context.Context, in UpdateInput) (*entity.SystemConfig, error) {
	if in.ID <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "не указан id параметра")
	}

	cfg, err := uc.repo.Update(ctx, in.ID, repository.SystemConfigPatch{
		ConfigValue: in.ConfigValue,
		Status:      in.Status,
		Remark:      in.Remark,
		Updater:     updaterOrDefault(in.Updater),
		UpdatedAt:   uc.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if cfg.IsApprovalFlag() && in.ConfigValue != nil {
		uc.syncFlag(ctx, cfg.ConfigKey, *in.ConfigValue)
	}
	return cfg, nil
}

func (uc *SystemConfigUseCase) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperror.New(apperror.ErrCodeValidation, "не указан id параметра")
	}

	cfg, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	if cfg.IsApprovalFlag() && uc.flags != nil {
		if err := uc.flags.Delete(ctx, cfg.ConfigKey); err != nil {
			logger.Log.WithError(err).WithField("key", cfg.ConfigKey).Error("sysconfig: не удалось удалить ключ из Redis")
		}
	}
	return nil
}

// syncFlag пишет значение в Redis, а при ошибке удаляет ключ,
// чтобы в кэше не осталось устаревшего значения.
func (uc *SystemConfigUseCase) syncFlag(ctx context.Context, key, value string) {
	if uc.flags == nil {
		logger.Log.WithField("key", key).Warn("sysconfig: Redis не настроен, флаг не синхронизирован")
		return
	}

	log := logger.Log.WithFields(logrus.Fields{"key": key, "value": value})
	if err := uc.flags.Set(ctx, key, value); err != nil {
		log.WithError(err).Error("sysconfig: не удалось записать флаг в Redis, удаляем ключ")
		if err := uc.flags.Delete(ctx, key); err != nil {
			log.WithError(err).Error("sysconfig: не удалось удалить ключ из Redis")
		}
		return
	}
	log.Info("sysconfig: флаг синхронизирован с Redis")
}

func updaterOrDefault(updater string) string {
	if updater = strings.TrimSpace(updater); updater != "" {
		return updater
	}
	return defaultUpdater
}
