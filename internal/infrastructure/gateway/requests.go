package gateway

import (
	"time"

	"github.com/ucardlabs/ucard-admin/internal/domain/entity"
)

// isoMillis совпадает с форматом, который ожидает ucard-api для дат.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

type ApprovalRequest struct {
	Wallet                 string `json:"wallet"`
	WalletID               int64  `json:"wallet_id"`
	KycID                  int64  `json:"kyc_id"`
	FirstName              string `json:"first_name"`
	LastName               string `json:"last_name"`
	Email                  string `json:"email"`
	Mobile                 string `json:"mobile"`
	MobilePrefix           string `json:"mobile_prefix"`
	DateOfBirth            string `json:"date_of_birth"`
	CertType               string `json:"cert_type"`
	Portrait               string `json:"portrait"`
	ReverseSide            string `json:"reverse_side"`
	NationalityCountryCode string `json:"nationality_country_code"`
	PostCode               string `json:"post_code"`
	Country                string `json:"country"`
	State                  string `json:"state"`
	City                   string `json:"city"`
	Address                string `json:"address"`
}

type RejectionRequest struct {
	Wallet string `json:"wallet"`
	KycID  int64  `json:"kyc_id"`
	Reason string `json:"reason"`
}

// NewApprovalRequest собирает тело одобрения. Без даты рождения
// подставляется текущее время: API не принимает пустое поле.
func NewApprovalRequest(sub *entity.KycSubmission, detail *entity.KycDetail, walletID int64, now time.Time) ApprovalRequest {
	dob := now
	if detail.DateOfBirth != nil {
		dob = *detail.DateOfBirth
	}

	return ApprovalRequest{
		Wallet:                 sub.Wallet,
		WalletID:               walletID,
		KycID:                  sub.ID,
		FirstName:              detail.FirstName,
		LastName:               detail.LastName,
		Email:                  detail.Email,
		Mobile:                 detail.Mobile,
		MobilePrefix:           detail.MobilePrefix,
		DateOfBirth:            FormatTime(dob),
		CertType:               detail.CertType,
		Portrait:               detail.Portrait,
		ReverseSide:            detail.ReverseSide,
		NationalityCountryCode: detail.NationalityCountryCode,
		PostCode:               detail.PostCode,
		Country:                detail.Country,
		State:                  detail.State,
		City:                   detail.City,
		Address:                detail.Address,
	}
}

func NewRejectionRequest(sub *entity.KycSubmission, reason string) RejectionRequest {
	return RejectionRequest{
		Wallet: sub.Wallet,
		KycID:  sub.ID,
		Reason: reason,
	}
}

// FormatTime форматирует время в UTC с миллисекундами.
func FormatTime(t time.Time) string {
	return t.UTC().Format(isoMillis)
}
