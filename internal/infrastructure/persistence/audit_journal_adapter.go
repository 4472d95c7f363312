package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ucardlabs/ucard-admin/internal/domain/entity"
	"github.com/ucardlabs/ucard-admin/internal/domain/valueobject"
	"github.com/ucardlabs/ucard-admin/internal/pkg/apperror"
)

const (
	pgUniqueViolation   = "23505"
	mysqlDuplicateEntry = 1062
	auditIntentColumns  = `id, submission_id, decision, reason, state, created_at, updated_at`
)

// AuditJournalAdapter хранит намерения аудита в t_kyc_audit_intent.
// Уникальный индекс по submission_id не даёт начать второй аудит той же заявки.
type AuditJournalAdapter struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewAuditJournalAdapter(db *sqlx.DB) *AuditJournalAdapter {
	return &AuditJournalAdapter{db: db, now: time.Now}
}

func (r *AuditJournalAdapter) Begin(ctx context.Context, intent *entity.AuditIntent) error {
	query := r.db.Rebind(`INSERT INTO t_kyc_audit_intent (` + auditIntentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		intent.ID,
		intent.SubmissionID,
		string(intent.Decision),
		intent.Reason,
		string(intent.State),
		intent.CreatedAt,
		intent.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrAuditInProgress
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось записать намерение аудита")
	}
	return nil
}

func (r *AuditJournalAdapter) MarkConfirmed(ctx context.Context, id string) error {
	query := r.db.Rebind(`UPDATE t_kyc_audit_intent SET state = ?, updated_at = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, string(entity.AuditIntentConfirmed), r.now().UTC(), id); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось подтвердить намерение аудита")
	}
	return nil
}

func (r *AuditJournalAdapter) Release(ctx context.Context, id string) error {
	query := r.db.Rebind(`DELETE FROM t_kyc_audit_intent WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось удалить намерение аудита")
	}
	return nil
}

func (r *AuditJournalAdapter) ListByState(ctx context.Context, state entity.AuditIntentState, olderThan time.Time) ([]*entity.AuditIntent, error) {
	var rows []auditIntentRow
	query := r.db.Rebind(`SELECT ` + auditIntentColumns + ` FROM t_kyc_audit_intent
		WHERE state = ? AND created_at <= ? ORDER BY created_at`)
	if err := r.db.SelectContext(ctx, &rows, query, string(state), olderThan); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить намерения аудита")
	}
	result := make([]*entity.AuditIntent, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	return false
}

type auditIntentRow struct {
	ID           string    `db:"id"`
	SubmissionID int64     `db:"submission_id"`
	Decision     string    `db:"decision"`
	Reason       *string   `db:"reason"`
	State        string    `db:"state"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (i *auditIntentRow) toEntity() *entity.AuditIntent {
	return &entity.AuditIntent{
		ID:           i.ID,
		SubmissionID: i.SubmissionID,
		Decision:     valueobject.AuditDecision(i.Decision),
		Reason:       deref(i.Reason),
		State:        entity.AuditIntentState(i.State),
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}
