package kyc

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ucardlabs/ucard-admin/internal/domain/entity"
	"github.com/ucardlabs/ucard-admin/internal/domain/repository"
	"github.com/ucardlabs/ucard-admin/internal/domain/valueobject"
	"github.com/ucardlabs/ucard-admin/internal/logger"
	"github.com/ucardlabs/ucard-admin/internal/metrics"
	"github.com/ucardlabs/ucard-admin/internal/pkg/apperror"
)

type ReconcileOptions struct {
	// StaleAfter: минимальный возраст намерения для обработки.
	StaleAfter time.Duration
	// ReleaseStale удаляет зависшие pending-намерения. Результат вызова
	// внешнего API для них неизвестен, поэтому только по команде оператора.
	ReleaseStale bool
}

type ReconcileReport struct {
	Resumed int
	Dropped int
	// Conflicts: заявка уже решена локально иначе, чем подтвердило внешнее API.
	Conflicts int
	Failed    int
	Stale     []*entity.AuditIntent
	Released  int
}

// ReconcileUseCase дописывает решения, которые внешнее API подтвердило,
// но которые не успели попасть в базу.
type ReconcileUseCase struct {
	kycRepo    repository.KycRepository
	journal    repository.AuditJournal
	propagator *StatePropagator
	now        func() time.Time
}

func NewReconcileUseCase(kycRepo repository.KycRepository, journal repository.AuditJournal, propagator *StatePropagator) *ReconcileUseCase {
	return &ReconcileUseCase{
		kycRepo:    kycRepo,
		journal:    journal,
		propagator: propagator,
		now:        time.Now,
	}
}

func (uc *ReconcileUseCase) Execute(ctx context.Context, opts ReconcileOptions) (*ReconcileReport, error) {
	cutoff := uc.now().Add(-opts.StaleAfter)
	report := &ReconcileReport{}

	confirmed, err := uc.journal.ListByState(ctx, entity.AuditIntentConfirmed, cutoff)
	if err != nil {
		return nil, err
	}
	metrics.PendingIntents.WithLabelValues(string(entity.AuditIntentConfirmed)).Set(float64(len(confirmed)))

	for _, intent := range confirmed {
		uc.resume(ctx, intent, report)
	}

	pending, err := uc.journal.ListByState(ctx, entity.AuditIntentPending, cutoff)
	if err != nil {
		return nil, err
	}
	metrics.PendingIntents.WithLabelValues(string(entity.AuditIntentPending)).Set(float64(len(pending)))
	report.Stale = pending

	for _, intent := range pending {
		logger.Log.WithFields(logrus.Fields{
			"intent_id":     intent.ID,
			"submission_id": intent.SubmissionID,
			"decision":      string(intent.Decision),
			"created_at":    intent.CreatedAt,
		}).Warn("reconcile: аудит завис до ответа внешнего API, проверьте заявку в ucard-api")

		if !opts.ReleaseStale {
			continue
		}
		if err := uc.journal.Release(ctx, intent.ID); err != nil {
			return report, err
		}
		report.Released++
	}

	return report, nil
}

func (uc *ReconcileUseCase) resume(ctx context.Context, intent *entity.AuditIntent, report *ReconcileReport) {
	log := logger.Log.WithFields(logrus.Fields{
		"intent_id":     intent.ID,
		"submission_id": intent.SubmissionID,
		"decision":      string(intent.Decision),
	})

	submission, err := uc.kycRepo.FindSubmission(ctx, intent.SubmissionID)
	if err != nil && !apperror.IsNotFound(err) {
		log.WithError(err).Error("reconcile: не удалось загрузить заявку")
		report.Failed++
		return
	}

	if submission == nil || submission.Status != valueobject.KycStatusReviewing {
		if err := uc.journal.Release(ctx, intent.ID); err != nil {
			log.WithError(err).Error("reconcile: не удалось удалить намерение")
			report.Failed++
			return
		}
		report.Dropped++
		if submission != nil && submission.Status.IsTerminal() && submission.Status != intent.Decision.ResultingStatus() {
			log.WithField("kyc_status", int(submission.Status)).
				Warn("reconcile: локальное решение расходится с подтверждённым внешним API, намерение удалено")
			report.Conflicts++
			return
		}
		log.Info("reconcile: заявка уже не на проверке, намерение удалено")
		return
	}

	if _, err := uc.propagator.Propagate(ctx, submission, intent.Decision, intent.Reason, intent.ID); err != nil {
		log.WithError(err).Error("reconcile: не удалось записать решение")
		report.Failed++
		return
	}

	log.Info("reconcile: решение записано")
	report.Resumed++
}
