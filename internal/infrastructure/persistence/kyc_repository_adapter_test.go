package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucardlabs/ucard-admin/internal/domain/repository"
	"github.com/ucardlabs/ucard-admin/internal/domain/valueobject"
	"github.com/ucardlabs/ucard-admin/internal/infrastructure/persistence"
	"github.com/ucardlabs/ucard-admin/internal/pkg/apperror"
)

var submissionCols = []string{
	"id", "wallet", "card_id", "card_bin", "card_holder_id", "kyc_status", "kyc_info_id",
	"reason", "remark", "created_at", "auding_at", "updated_at",
}

var detailCols = []string{
	"id", "wallet", "first_name", "last_name", "email", "mobile", "mobile_prefix", "date_of_birth",
	"cert_type", "portrait", "reverse_side", "nationality_country_code", "post_code", "country", "state", "city",
	"address", "remark", "created_at", "updated_at",
}

func newMockDB(t *testing.T, driver string) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, driver), mock
}

func TestKycRepository_FindSubmission(t *testing.T) {
	db, mock := newMockDB(t, "postgres")
	repo := persistence.NewKycRepositoryAdapter(db)
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM t_kyc_auding WHERE id = \$1`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(submissionCols).
			AddRow(int64(42), "0xAB", "C100", "4111", "H1", int64(2), int64(5), nil, nil, created, nil, created))

	sub, err := repo.FindSubmission(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), sub.ID)
	assert.Equal(t, "0xAB", sub.Wallet)
	assert.Equal(t, "C100", sub.CardID)
	assert.Equal(t, valueobject.KycStatusReviewing, sub.Status)
	require.NotNil(t, sub.KycInfoID)
	assert.Equal(t, int64(5), *sub.KycInfoID)
	assert.Nil(t, sub.Reason)
	assert.Nil(t, sub.AuditedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKycRepository_FindSubmissionNotFound(t *testing.T) {
	db, mock := newMockDB(t, "postgres")
	repo := persistence.NewKycRepositoryAdapter(db)

	mock.ExpectQuery(`FROM t_kyc_auding`).WillReturnRows(sqlmock.NewRows(submissionCols))

	_, err := repo.FindSubmission(context.Background(), 1)
	assert.ErrorIs(t, err, apperror.ErrSubmissionNotFound)
}

func TestKycRepository_FindSubmissionDatabaseError(t *testing.T) {
	db, mock := newMockDB(t, "postgres")
	repo := persistence.NewKycRepositoryAdapter(db)

	mock.ExpectQuery(`FROM t_kyc_auding`).WillReturnError(errors.New("connection reset"))

	_, err := repo.FindSubmission(context.Background(), 1)
	assert.Equal(t, apperror.ErrCodeDatabaseError, apperror.CodeOf(err))
}

func TestKycRepository_FindWalletAccountID(t *testing.T) {
	db, mock := newMockDB(t, "mysql")
	repo := persistence.NewKycRepositoryAdapter(db)

	mock.ExpectQuery(`SELECT id FROM t_user_info WHERE wallet = \?`).
		WithArgs("0xAB").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(77)))
	mock.ExpectQuery(`SELECT id FROM t_user_info`).
		WithArgs("0xCD").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	id, err := repo.FindWalletAccountID(context.Background(), "0xAB")
	require.NoError(t, err)
	assert.Equal(t, int64(77), id)

	id, err = repo.FindWalletAccountID(context.Background(), "0xCD")
	require.NoError(t, err)
	assert.Equal(t, int64(0), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKycRepository_ListSubmissions(t *testing.T) {
	db, mock := newMockDB(t, "postgres")
	repo := persistence.NewKycRepositoryAdapter(db)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	status := valueobject.KycStatusReviewing

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM t_kyc_auding WHERE \(wallet LIKE \$1 ESCAPE '!' OR card_id LIKE \$2 ESCAPE '!' OR card_holder_id LIKE \$3 ESCAPE '!'\) AND kyc_status = \$4`).
		WithArgs("%0xAB%", "%0xAB%", "%0xAB%", 2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`ORDER BY created_at DESC, id DESC LIMIT \$5 OFFSET \$6`).
		WithArgs("%0xAB%", "%0xAB%", "%0xAB%", 2, 20, 0).
		WillReturnRows(sqlmock.NewRows(submissionCols).
			AddRow(int64(2), "0xAB", "C2", nil, nil, int64(2), int64(9), nil, nil, now, nil, now).
			AddRow(int64(1), "0xAB", nil, nil, nil, int64(2), nil, nil, nil, now, nil, now))
	mock.ExpectQuery(`FROM t_kyc_info WHERE id IN \(\$1\)`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(detailCols).
			AddRow(int64(9), "0xAB", "Ivan", "Petrov", nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, now, now))

	items, total, err := repo.ListSubmissions(context.Background(), repository.SubmissionFilter{
		Keyword: "0xAB",
		Status:  &status,
		Limit:   20,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].Detail)
	assert.Equal(t, "Ivan Petrov", items[0].Detail.FullName())
	assert.Nil(t, items[1].Detail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKycRepository_ListSubmissionsEscapesKeyword(t *testing.T) {
	db, mock := newMockDB(t, "mysql")
	repo := persistence.NewKycRepositoryAdapter(db)
	escaped := "%0x!_a!%b!!%"

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM t_kyc_auding WHERE \(wallet LIKE \? ESCAPE '!'`).
		WithArgs(escaped, escaped, escaped).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	items, total, err := repo.ListSubmissions(context.Background(), repository.SubmissionFilter{
		Keyword: "0x_a%b!",
		Limit:   20,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKycRepository_ListSubmissionsEmpty(t *testing.T) {
	db, mock := newMockDB(t, "postgres")
	repo := persistence.NewKycRepositoryAdapter(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM t_kyc_auding$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	items, total, err := repo.ListSubmissions(context.Background(), repository.SubmissionFilter{Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}
