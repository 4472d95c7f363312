package kyc

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ucardlabs/ucard-admin/internal/domain/entity"
	"github.com/ucardlabs/ucard-admin/internal/domain/repository"
	"github.com/ucardlabs/ucard-admin/internal/domain/valueobject"
	"github.com/ucardlabs/ucard-admin/internal/infrastructure/gateway"
	"github.com/ucardlabs/ucard-admin/internal/logger"
	"github.com/ucardlabs/ucard-admin/internal/metrics"
	"github.com/ucardlabs/ucard-admin/internal/pkg/apperror"
)

// ApprovalGateway: API эмитента, которое окончательно принимает решение.
type ApprovalGateway interface {
	Approve(ctx context.Context, req gateway.ApprovalRequest) (*gateway.Response, error)
	Reject(ctx context.Context, req gateway.RejectionRequest) (*gateway.Response, error)
}

// maxReasonLength совпадает с t_kyc_auding.reason VARCHAR(512), считается в символах.
const maxReasonLength = 512

// postGatewayTimeout ограничивает локальные записи после ответа внешнего API.
const postGatewayTimeout = 30 * time.Second

type AuditInput struct {
	SubmissionID string
	Decision     string
	Reason       string
}

type AuditResult struct {
	SubmissionID string
	NewStatus    valueobject.KycStatus
	AuditedAt    time.Time
}

type AuditKycUseCase struct {
	kycRepo    repository.KycRepository
	journal    repository.AuditJournal
	gateway    ApprovalGateway
	propagator *StatePropagator
	now        func() time.Time
}

func NewAuditKycUseCase(
	kycRepo repository.KycRepository,
	journal repository.AuditJournal,
	gw ApprovalGateway,
	propagator *StatePropagator,
) *AuditKycUseCase {
	return &AuditKycUseCase{
		kycRepo:    kycRepo,
		journal:    journal,
		gateway:    gw,
		propagator: propagator,
		now:        time.Now,
	}
}

func (uc *AuditKycUseCase) Execute(ctx context.Context, in AuditInput) (result *AuditResult, err error) {
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = strings.ToLower(string(apperror.CodeOf(err)))
		}
		decisionLabel := in.Decision
		if !valueobject.AuditDecision(in.Decision).IsValid() {
			decisionLabel = "invalid"
		}
		metrics.AuditDecisions.WithLabelValues(decisionLabel, outcome).Inc()
	}()

	rawID := strings.TrimSpace(in.SubmissionID)
	if rawID == "" || in.Decision == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "не указаны обязательные параметры")
	}

	decision, err := valueobject.NewAuditDecision(in.Decision)
	if err != nil {
		return nil, err
	}

	reason := ""
	if decision == valueobject.AuditDecisionReject {
		if strings.TrimSpace(in.Reason) == "" {
			return nil, apperror.New(apperror.ErrCodeValidation, "для отказа необходимо указать причину")
		}
		if utf8.RuneCountInString(in.Reason) > maxReasonLength {
			return nil, apperror.New(apperror.ErrCodeValidation, "причина отказа длиннее 512 символов")
		}
		reason = in.Reason
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный идентификатор заявки")
	}

	submission, err := uc.kycRepo.FindSubmission(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := submission.EnsureReviewable(); err != nil {
		return nil, err
	}

	var approval gateway.ApprovalRequest
	if decision == valueobject.AuditDecisionApprove {
		approval, err = uc.buildApproval(ctx, submission)
		if err != nil {
			return nil, err
		}
	}

	log := logger.Log.WithFields(logrus.Fields{
		"submission_id": submission.ID,
		"decision":      string(decision),
	})

	intent := &entity.AuditIntent{
		ID:           uuid.NewString(),
		SubmissionID: submission.ID,
		Decision:     decision,
		Reason:       reason,
		State:        entity.AuditIntentPending,
		CreatedAt:    uc.now(),
		UpdatedAt:    uc.now(),
	}
	if err := uc.journal.Begin(ctx, intent); err != nil {
		return nil, err
	}
	log = log.WithField("intent_id", intent.ID)

	if decision == valueobject.AuditDecisionApprove {
		_, err = uc.gateway.Approve(ctx, approval)
	} else {
		_, err = uc.gateway.Reject(ctx, gateway.NewRejectionRequest(submission, reason))
	}

	// Решение уже ушло во внешнее API: отмена запроса клиентом не должна
	// оборвать запись результата или снятие намерения.
	postCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), postGatewayTimeout)
	defer cancel()

	if err != nil {
		log.WithError(err).Error("kyc: внешнее API не подтвердило решение")
		if relErr := uc.journal.Release(postCtx, intent.ID); relErr != nil {
			log.WithError(relErr).Warn("kyc: не удалось снять намерение аудита")
		}
		return nil, gatewayError(decision, err)
	}

	if err := uc.journal.MarkConfirmed(postCtx, intent.ID); err != nil {
		// Намерение останется в pending; reconcile сообщит о нём как о зависшем.
		log.WithError(err).Warn("kyc: не удалось отметить намерение как подтверждённое")
	}

	outcome, err := uc.propagator.Propagate(postCtx, submission, decision, reason, intent.ID)
	if err != nil {
		log.WithError(err).Error("kyc: решение подтверждено внешним API, но не записано локально")
		return nil, apperror.Wrap(err, apperror.ErrCodePropagation, "решение принято, но не сохранено; запустите сверку").
			WithDetails(map[string]interface{}{
				"submissionId": rawID,
				"intentId":     intent.ID,
			})
	}

	log.WithField("new_status", int(outcome.NewStatus)).Info("kyc: аудит завершён")

	return &AuditResult{
		SubmissionID: rawID,
		NewStatus:    outcome.NewStatus,
		AuditedAt:    outcome.AuditedAt,
	}, nil
}

// buildApproval загружает данные KYC и по возможности ID пользователя кошелька.
func (uc *AuditKycUseCase) buildApproval(ctx context.Context, submission *entity.KycSubmission) (gateway.ApprovalRequest, error) {
	if submission.KycInfoID == nil {
		return gateway.ApprovalRequest{}, apperror.ErrKycDetailNotFound
	}

	detail, err := uc.kycRepo.FindDetail(ctx, *submission.KycInfoID)
	if err != nil {
		return gateway.ApprovalRequest{}, err
	}

	var walletID int64
	if submission.HasWallet() {
		walletID, err = uc.kycRepo.FindWalletAccountID(ctx, submission.Wallet)
		if err != nil {
			logger.Log.WithError(err).WithField("wallet", submission.Wallet).
				Warn("kyc: не удалось получить wallet_id, отправляем 0")
			walletID = 0
		}
	}

	return gateway.NewApprovalRequest(submission, detail, walletID, uc.now()), nil
}

func gatewayError(decision valueobject.AuditDecision, err error) error {
	action := "одобрения"
	if decision == valueobject.AuditDecisionReject {
		action = "отказа"
	}

	details := map[string]interface{}{"decision": string(decision)}

	var failure *gateway.Failure
	if errors.As(err, &failure) && failure.IsTransport() {
		details["error"] = failure.Message
		return apperror.Wrap(err, apperror.ErrCodeGateway, "сетевая ошибка: нет связи с API "+action).WithDetails(details)
	}
	if failure != nil {
		details["statusCode"] = failure.StatusCode
		details["error"] = failure.Diagnostic
	} else {
		details["error"] = err.Error()
	}
	return apperror.Wrap(err, apperror.ErrCodeGateway, "не удалось вызвать API "+action+", повторите попытку позже").WithDetails(details)
}
