package kyc

import (
	"context"
	"time"

	"github.com/ucardlabs/ucard-admin/internal/domain/entity"
	"github.com/ucardlabs/ucard-admin/internal/domain/repository"
	"github.com/ucardlabs/ucard-admin/internal/domain/valueobject"
)

// StatePropagator записывает подтверждённое решение в заявку и связанные
// с ней карту и пользователя.
type StatePropagator struct {
	store repository.AuditStore
	now   func() time.Time
}

func NewStatePropagator(store repository.AuditStore) *StatePropagator {
	return &StatePropagator{store: store, now: time.Now}
}

func (p *StatePropagator) Propagate(
	ctx context.Context,
	submission *entity.KycSubmission,
	decision valueobject.AuditDecision,
	reason string,
	intentID string,
) (*entity.AuditOutcome, error) {
	outcome := entity.AuditOutcome{
		SubmissionID: submission.ID,
		Decision:     decision,
		NewStatus:    decision.ResultingStatus(),
		AuditedAt:    p.now().UTC(),
		IntentID:     intentID,
	}
	// Без карты или кошелька обновляется только сама заявка.
	if submission.HasCard() {
		outcome.CardID = submission.CardID
	}
	if submission.HasWallet() {
		outcome.Wallet = submission.Wallet
	}
	if decision == valueobject.AuditDecisionReject {
		outcome.Reason = reason
	}

	if err := p.store.ApplyDecision(ctx, outcome); err != nil {
		return nil, err
	}
	return &outcome, nil
}
