package entity

import (
	"strings"
	"time"

	"github.com/ucardlabs/ucard-admin/internal/domain/valueobject"
	"github.com/ucardlabs/ucard-admin/internal/pkg/apperror"
)

// KycSubmission: одна заявка на KYC-проверку для пары кошелёк/карта.
type KycSubmission struct {
	ID           int64
	Wallet       string
	CardID       string
	CardBin      string
	CardHolderID string
	Status       valueobject.KycStatus
	KycInfoID    *int64
	Reason       *string
	Remark       string
	CreatedAt    time.Time
	AuditedAt    *time.Time
	UpdatedAt    time.Time

	// Detail заполняется только в списках.
	Detail *KycDetail
}

// EnsureReviewable проверяет, что по заявке ещё можно принять решение.
func (s *KycSubmission) EnsureReviewable() error {
	if s.Status != valueobject.KycStatusReviewing {
		return apperror.ErrNotReviewable.WithDetails(map[string]interface{}{
			"kycStatus": int(s.Status),
		})
	}
	return nil
}

func (s *KycSubmission) HasCard() bool {
	return s.CardID != ""
}

func (s *KycSubmission) HasWallet() bool {
	return s.Wallet != ""
}

// KycDetail хранит персональные данные владельца кошелька. Аудит их только читает.
type KycDetail struct {
	ID                     int64
	Wallet                 string
	FirstName              string
	LastName               string
	Email                  string
	Mobile                 string
	MobilePrefix           string
	DateOfBirth            *time.Time
	CertType               string
	Portrait               string
	ReverseSide            string
	NationalityCountryCode string
	PostCode               string
	Country                string
	State                  string
	City                   string
	Address                string
	Remark                 string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (d *KycDetail) FullName() string {
	name := strings.TrimSpace(d.FirstName + " " + d.LastName)
	if name == "" {
		return "не указано"
	}
	return name
}

// AuditOutcome: подтверждённое внешним API решение, которое нужно
// записать в заявку, карты и пользователя.
type AuditOutcome struct {
	SubmissionID int64
	Decision     valueobject.AuditDecision
	NewStatus    valueobject.KycStatus
	Reason       string
	AuditedAt    time.Time
	CardID       string
	Wallet       string
	IntentID     string
}

// AuditIntentState: этап незавершённого аудита.
type AuditIntentState string

const (
	AuditIntentPending   AuditIntentState = "pending"
	AuditIntentConfirmed AuditIntentState = "confirmed"
)

// AuditIntent фиксирует аудит, начатый до вызова внешнего API.
// Строка удаляется вместе с записью результата.
type AuditIntent struct {
	ID           string
	SubmissionID int64
	Decision     valueobject.AuditDecision
	Reason       string
	State        AuditIntentState
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
