package repository

import (
	"context"
	"time"

	"github.com/ucardlabs/ucard-admin/internal/domain/entity"
	"github.com/ucardlabs/ucard-admin/internal/domain/valueobject"
)

// KycRepository читает заявки и связанные данные.
type KycRepository interface {
	FindSubmission(ctx context.Context, id int64) (*entity.KycSubmission, error)
	FindDetail(ctx context.Context, id int64) (*entity.KycDetail, error)
	// FindWalletAccountID возвращает 0, если пользователь с таким кошельком не найден.
	FindWalletAccountID(ctx context.Context, wallet string) (int64, error)
	ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]*entity.KycSubmission, int, error)
}

type SubmissionFilter struct {
	Keyword   string
	Status    *valueobject.KycStatus
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// AuditStore атомарно записывает подтверждённое решение в заявку,
// карты и пользователя и закрывает намерение аудита.
type AuditStore interface {
	ApplyDecision(ctx context.Context, outcome entity.AuditOutcome) error
}

// AuditJournal хранит незавершённые аудиты.
type AuditJournal interface {
	Begin(ctx context.Context, intent *entity.AuditIntent) error
	MarkConfirmed(ctx context.Context, id string) error
	Release(ctx context.Context, id string) error
	ListByState(ctx context.Context, state entity.AuditIntentState, olderThan time.Time) ([]*entity.AuditIntent, error)
}
