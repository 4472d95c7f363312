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
	"github.com/ucardlabs/ucard-admin/internal/domain/valueobject"
	"github.com/ucardlabs/ucard-admin/internal/pkg/apperror"
)

const submissionColumns = `id, wallet, card_id, card_bin, card_holder_id, kyc_status, kyc_info_id,
	reason, remark, created_at, auding_at, updated_at`

const detailColumns = `id, wallet, first_name, last_name, email, mobile, mobile_prefix, date_of_birth,
	cert_type, portrait, reverse_side, nationality_country_code, post_code, country, state, city,
	address, remark, created_at, updated_at`

// KycRepositoryAdapter читает заявки из t_kyc_auding и связанные таблицы.
// Запросы пишутся с '?' и переводятся в плейсхолдеры драйвера через Rebind.
type KycRepositoryAdapter struct {
	db *sqlx.DB
}

func NewKycRepositoryAdapter(db *sqlx.DB) *KycRepositoryAdapter {
	return &KycRepositoryAdapter{db: db}
}

func (r *KycRepositoryAdapter) FindSubmission(ctx context.Context, id int64) (*entity.KycSubmission, error) {
	var row submissionRow
	query := r.db.Rebind(`SELECT ` + submissionColumns + ` FROM t_kyc_auding WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrSubmissionNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить заявку KYC")
	}
	return row.toEntity(), nil
}

func (r *KycRepositoryAdapter) FindDetail(ctx context.Context, id int64) (*entity.KycDetail, error) {
	var row detailRow
	query := r.db.Rebind(`SELECT ` + detailColumns + ` FROM t_kyc_info WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrKycDetailNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить данные KYC")
	}
	return row.toEntity(), nil
}

func (r *KycRepositoryAdapter) FindWalletAccountID(ctx context.Context, wallet string) (int64, error) {
	var id int64
	query := r.db.Rebind(`SELECT id FROM t_user_info WHERE wallet = ? ORDER BY id LIMIT 1`)
	if err := r.db.GetContext(ctx, &id, query, wallet); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить пользователя по кошельку")
	}
	return id, nil
}

func (r *KycRepositoryAdapter) ListSubmissions(ctx context.Context, filter repository.SubmissionFilter) ([]*entity.KycSubmission, int, error) {
	where, args := buildSubmissionWhere(filter)

	var total int
	countQuery := r.db.Rebind(`SELECT COUNT(*) FROM t_kyc_auding` + where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать заявки KYC")
	}
	if total == 0 {
		return []*entity.KycSubmission{}, 0, nil
	}

	var rows []submissionRow
	listQuery := r.db.Rebind(`SELECT ` + submissionColumns + ` FROM t_kyc_auding` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)
	listArgs := append(append([]interface{}{}, args...), filter.Limit, filter.Offset)
	if err := r.db.SelectContext(ctx, &rows, listQuery, listArgs...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить заявки KYC")
	}

	result := make([]*entity.KycSubmission, len(rows))
	var detailIDs []int64
	for i := range rows {
		result[i] = rows[i].toEntity()
		if rows[i].KycInfoID != nil {
			detailIDs = append(detailIDs, *rows[i].KycInfoID)
		}
	}

	if len(detailIDs) > 0 {
		details, err := r.findDetails(ctx, detailIDs)
		if err != nil {
			return nil, 0, err
		}
		for _, s := range result {
			if s.KycInfoID != nil {
				s.Detail = details[*s.KycInfoID]
			}
		}
	}

	return result, total, nil
}

// findDetails загружает данные KYC одним запросом.
func (r *KycRepositoryAdapter) findDetails(ctx context.Context, ids []int64) (map[int64]*entity.KycDetail, error) {
	query, args, err := sqlx.In(`SELECT `+detailColumns+` FROM t_kyc_info WHERE id IN (?)`, ids)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось собрать запрос данных KYC")
	}

	var rows []detailRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить данные KYC")
	}

	result := make(map[int64]*entity.KycDetail, len(rows))
	for i := range rows {
		result[rows[i].ID] = rows[i].toEntity()
	}
	return result, nil
}

// likeEscaper экранирует символы шаблона LIKE. Символ '!' одинаково читается
// в литералах Postgres и MySQL, обратная косая черта нет.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func buildSubmissionWhere(filter repository.SubmissionFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if filter.Keyword != "" {
		like := "%" + likeEscaper.Replace(filter.Keyword) + "%"
		conds = append(conds, "(wallet LIKE ? ESCAPE '!' OR card_id LIKE ? ESCAPE '!' OR card_holder_id LIKE ? ESCAPE '!')")
		args = append(args, like, like, like)
	}
	if filter.Status != nil {
		conds = append(conds, "kyc_status = ?")
		args = append(args, int(*filter.Status))
	}
	if filter.StartDate != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conds = append(conds, "created_at <= ?")
		args = append(args, *filter.EndDate)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type submissionRow struct {
	ID           int64      `db:"id"`
	Wallet       *string    `db:"wallet"`
	CardID       *string    `db:"card_id"`
	CardBin      *string    `db:"card_bin"`
	CardHolderID *string    `db:"card_holder_id"`
	KycStatus    *int       `db:"kyc_status"`
	KycInfoID    *int64     `db:"kyc_info_id"`
	Reason       *string    `db:"reason"`
	Remark       *string    `db:"remark"`
	CreatedAt    time.Time  `db:"created_at"`
	AudingAt     *time.Time `db:"auding_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

func (s *submissionRow) toEntity() *entity.KycSubmission {
	sub := &entity.KycSubmission{
		ID:           s.ID,
		Wallet:       deref(s.Wallet),
		CardID:       deref(s.CardID),
		CardBin:      deref(s.CardBin),
		CardHolderID: deref(s.CardHolderID),
		KycInfoID:    s.KycInfoID,
		Reason:       s.Reason,
		Remark:       deref(s.Remark),
		CreatedAt:    s.CreatedAt,
		AuditedAt:    s.AudingAt,
		UpdatedAt:    s.UpdatedAt,
	}
	if s.KycStatus != nil {
		sub.Status = valueobject.KycStatus(*s.KycStatus)
	}
	return sub
}

type detailRow struct {
	ID                     int64      `db:"id"`
	Wallet                 *string    `db:"wallet"`
	FirstName              *string    `db:"first_name"`
	LastName               *string    `db:"last_name"`
	Email                  *string    `db:"email"`
	Mobile                 *string    `db:"mobile"`
	MobilePrefix           *string    `db:"mobile_prefix"`
	DateOfBirth            *time.Time `db:"date_of_birth"`
	CertType               *string    `db:"cert_type"`
	Portrait               *string    `db:"portrait"`
	ReverseSide            *string    `db:"reverse_side"`
	NationalityCountryCode *string    `db:"nationality_country_code"`
	PostCode               *string    `db:"post_code"`
	Country                *string    `db:"country"`
	State                  *string    `db:"state"`
	City                   *string    `db:"city"`
	Address                *string    `db:"address"`
	Remark                 *string    `db:"remark"`
	CreatedAt              time.Time  `db:"created_at"`
	UpdatedAt              time.Time  `db:"updated_at"`
}

func (d *detailRow) toEntity() *entity.KycDetail {
	return &entity.KycDetail{
		ID:                     d.ID,
		Wallet:                 deref(d.Wallet),
		FirstName:              deref(d.FirstName),
		LastName:               deref(d.LastName),
		Email:                  deref(d.Email),
		Mobile:                 deref(d.Mobile),
		MobilePrefix:           deref(d.MobilePrefix),
		DateOfBirth:            d.DateOfBirth,
		CertType:               deref(d.CertType),
		Portrait:               deref(d.Portrait),
		ReverseSide:            deref(d.ReverseSide),
		NationalityCountryCode: deref(d.NationalityCountryCode),
		PostCode:               deref(d.PostCode),
		Country:                deref(d.Country),
		State:                  deref(d.State),
		City:                   deref(d.City),
		Address:                deref(d.Address),
		Remark:                 deref(d.Remark),
		CreatedAt:              d.CreatedAt,
		UpdatedAt:              d.UpdatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
