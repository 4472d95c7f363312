package persistence

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ucardlabs/ucard-admin/internal/domain/entity"
	"github.com/ucardlabs/ucard-admin/internal/domain/repository"
	"github.com/ucardlabs/ucard-admin/internal/pkg/apperror"
)

const systemConfigColumns = `id, system_type, config_key, config_value, status, updater, remark, created_at, updated_at`

type SystemConfigRepositoryAdapter struct {
	db *sqlx.DB
}

func NewSystemConfigRepositoryAdapter(db *sqlx.DB) *SystemConfigRepositoryAdapter {
	return &SystemConfigRepositoryAdapter{db: db}
}

func (r *SystemConfigRepositoryAdapter) List(ctx context.Context, systemType string) ([]*entity.SystemConfig, error) {
	query := `SELECT ` + systemConfigColumns + ` FROM t_system_config`
	var args []interface{}
	if systemType != "" {
		query += ` WHERE system_type = ?`
		args = append(args, systemType)
	}
	query += ` ORDER BY system_type, config_key`

	var rows []systemConfigRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить системные параметры")
	}
	result := make([]*entity.SystemConfig, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (r *SystemConfigRepositoryAdapter) ListSystemTypes(ctx context.Context) ([]string, error) {
	var types []string
	query := `SELECT DISTINCT system_type FROM t_system_config WHERE system_type IS NOT NULL ORDER BY system_type`
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить типы системных параметров")
	}
	return types, nil
}

func (r *SystemConfigRepositoryAdapter) Create(ctx context.Context, cfg *entity.SystemConfig) error {
	query := `INSERT INTO t_system_config (system_type, config_key, config_value, status, updater, remark, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	args := []interface{}{cfg.SystemType, cfg.ConfigKey, cfg.ConfigValue, cfg.Status, cfg.Updater, cfg.Remark, cfg.CreatedAt, cfg.UpdatedAt}

	// lib/pq не поддерживает LastInsertId.
	if r.db.DriverName() == "postgres" {
		if err := r.db.GetContext(ctx, &cfg.ID, r.db.Rebind(query+` RETURNING id`), args...); err != nil {
			return r.createError(err)
		}
		return nil
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return r.createError(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить id системного параметра")
	}
	cfg.ID = id
	return nil
}

func (r *SystemConfigRepositoryAdapter) createError(err error) error {
	if isUniqueViolation(err) {
		return apperror.New(apperror.ErrCodeConflict, "такой системный параметр уже существует")
	}
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать системный параметр")
}

func (r *SystemConfigRepositoryAdapter) Update(ctx context.Context, id int64, patch repository.SystemConfigPatch) (*entity.SystemConfig, error) {
	sets := []string{"updater = ?", "updated_at = ?"}
	args := []interface{}{patch.Updater, patch.UpdatedAt}
	if patch.ConfigValue != nil {
		sets = append(sets, "config_value = ?")
		args = append(args, *patch.ConfigValue)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}
	if patch.Remark != nil {
		sets = append(sets, "remark = ?")
		args = append(args, *patch.Remark)
	}
	args = append(args, id)

	query := r.db.Rebind(`UPDATE t_system_config SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить системный параметр")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить результат обновления")
	}
	if rows == 0 {
		return nil, apperror.ErrConfigNotFound
	}

	return r.findByID(ctx, id)
}

func (r *SystemConfigRepositoryAdapter) Delete(ctx context.Context, id int64) (*entity.SystemConfig, error) {
	cfg, err := r.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM t_system_config WHERE id = ?`), id); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось удалить системный параметр")
	}
	return cfg, nil
}

func (r *SystemConfigRepositoryAdapter) findByID(ctx context.Context, id int64) (*entity.SystemConfig, error) {
	var row systemConfigRow
	query := r.db.Rebind(`SELECT ` + systemConfigColumns + ` FROM t_system_config WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrConfigNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить системный параметр")
	}
	return row.toEntity(), nil
}

type systemConfigRow struct {
	ID          int64      `db:"id"`
	SystemType  *string    `db:"system_type"`
	ConfigKey   *string    `db:"config_key"`
	ConfigValue *string    `db:"config_value"`
	Status      *int       `db:"status"`
	Updater     *string    `db:"updater"`
	Remark      *string    `db:"remark"`
	CreatedAt   *time.Time `db:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at"`
}

func (c *systemConfigRow) toEntity() *entity.SystemConfig {
	cfg := &entity.SystemConfig{
		ID:          c.ID,
		SystemType:  deref(c.SystemType),
		ConfigKey:   deref(c.ConfigKey),
		ConfigValue: deref(c.ConfigValue),
		Updater:     deref(c.Updater),
		Remark:      c.Remark,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if c.Status != nil {
		cfg.Status = *c.Status
	}
	return cfg
}
