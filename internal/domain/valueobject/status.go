package valueobject

import "github.com/ucardlabs/ucard-admin/internal/pkg/apperror"

// KycStatus общий для заявки, карты и пользователя.
type KycStatus int

const (
	KycStatusNotSubmitted KycStatus = 0
	KycStatusApproved     KycStatus = 1
	KycStatusReviewing    KycStatus = 2
	KycStatusRejected     KycStatus = 3
)

func (s KycStatus) IsValid() bool {
	switch s {
	case KycStatusNotSubmitted, KycStatusApproved, KycStatusReviewing, KycStatusRejected:
		return true
	}
	return false
}

// IsTerminal сообщает, что решение по заявке уже принято.
func (s KycStatus) IsTerminal() bool {
	return s == KycStatusApproved || s == KycStatusRejected
}

func (s KycStatus) Text() string {
	switch s {
	case KycStatusNotSubmitted:
		return "не подана"
	case KycStatusApproved:
		return "одобрена"
	case KycStatusReviewing:
		return "на проверке"
	case KycStatusRejected:
		return "отклонена"
	default:
		return "неизвестно"
	}
}

// KycStatuses перечисляет статусы в порядке отображения в фильтрах.
func KycStatuses() []KycStatus {
	return []KycStatus{KycStatusNotSubmitted, KycStatusApproved, KycStatusReviewing, KycStatusRejected}
}

func NewKycStatus(status int) (KycStatus, error) {
	s := KycStatus(status)
	if !s.IsValid() {
		return 0, apperror.New(apperror.ErrCodeValidation, "некорректный статус KYC")
	}
	return s, nil
}

// AuditDecision: решение администратора по заявке.
type AuditDecision string

const (
	AuditDecisionApprove AuditDecision = "approve"
	AuditDecisionReject  AuditDecision = "reject"
)

func (d AuditDecision) IsValid() bool {
	return d == AuditDecisionApprove || d == AuditDecisionReject
}

// ResultingStatus возвращает статус, в который переводит заявку решение.
func (d AuditDecision) ResultingStatus() KycStatus {
	if d == AuditDecisionApprove {
		return KycStatusApproved
	}
	return KycStatusRejected
}

func NewAuditDecision(decision string) (AuditDecision, error) {
	d := AuditDecision(decision)
	if !d.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректное решение аудита")
	}
	return d, nil
}
