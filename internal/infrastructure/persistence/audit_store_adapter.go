package persistence

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ucardlabs/ucard-admin/internal/domain/entity"
	"github.com/ucardlabs/ucard-admin/internal/domain/valueobject"
	"github.com/ucardlabs/ucard-admin/internal/pkg/apperror"
)

// AuditStoreAdapter записывает решение аудита в одной транзакции.
type AuditStoreAdapter struct {
	db *sqlx.DB
}

func NewAuditStoreAdapter(db *sqlx.DB) *AuditStoreAdapter {
	return &AuditStoreAdapter{db: db}
}

func (r *AuditStoreAdapter) ApplyDecision(ctx context.Context, o entity.AuditOutcome) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось начать транзакцию")
	}
	defer tx.Rollback()

	// Заявка меняется, только если она всё ещё на проверке.
	var (
		query string
		args  []interface{}
	)
	if o.Decision == valueobject.AuditDecisionReject {
		query = `UPDATE t_kyc_auding SET kyc_status = ?, auding_at = ?, updated_at = ?, reason = ?
			WHERE id = ? AND kyc_status = ?`
		args = []interface{}{int(o.NewStatus), o.AuditedAt, o.AuditedAt, o.Reason, o.SubmissionID, int(valueobject.KycStatusReviewing)}
	} else {
		query = `UPDATE t_kyc_auding SET kyc_status = ?, auding_at = ?, updated_at = ?
			WHERE id = ? AND kyc_status = ?`
		args = []interface{}{int(o.NewStatus), o.AuditedAt, o.AuditedAt, o.SubmissionID, int(valueobject.KycStatusReviewing)}
	}

	result, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить заявку KYC")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить результат обновления")
	}
	if rows != 1 {
		return apperror.ErrStaleSubmission
	}

	if o.CardID != "" {
		_, err = tx.ExecContext(ctx,
			tx.Rebind(`UPDATE t_card_info SET kyc_status = ?, updated_at = ? WHERE card_id = ?`),
			int(o.NewStatus), o.AuditedAt, o.CardID,
		)
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить карту")
		}
	}

	if o.Wallet != "" {
		_, err = tx.ExecContext(ctx,
			tx.Rebind(`UPDATE t_user_info SET kyc_status = ?, updated_at = ? WHERE wallet = ?`),
			int(o.NewStatus), o.AuditedAt, o.Wallet,
		)
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить пользователя")
		}
	}

	if o.IntentID != "" {
		_, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM t_kyc_audit_intent WHERE id = ?`), o.IntentID)
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось закрыть намерение аудита")
		}
	}

	if err := tx.Commit(); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось зафиксировать решение аудита")
	}
	return nil
}
