package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/ucardlabs/ucard-admin/internal/domain/entity"
	"github.com/ucardlabs/ucard-admin/internal/infrastructure/gateway"
	"github.com/ucardlabs/ucard-admin/internal/usecase/kyc"
)

// FlexibleID принимает id и числом, и строкой:
// консоль отдаёт id строкой, внешние скрипты шлют число.
type FlexibleID string

func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("id должен быть числом или строкой")
	}
	*id = FlexibleID(n.String())
	return nil
}

type AuditRequest struct {
	ID     FlexibleID `json:"id"`
	Action string     `json:"action"`
	Reason string     `json:"reason"`
}

type AuditResponse struct {
	SubmissionID string `json:"submissionId"`
	NewStatus    int    `json:"newStatus"`
	AuditedAt    string `json:"auditedAt"`
}

func ToAuditResponse(r *kyc.AuditResult) AuditResponse {
	return AuditResponse{
		SubmissionID: r.SubmissionID,
		NewStatus:    int(r.NewStatus),
		AuditedAt:    gateway.FormatTime(r.AuditedAt),
	}
}

type KycListQuery struct {
	Page          int    `form:"page"`
	Limit         int    `form:"limit"`
	SearchKeyword string `form:"searchKeyword"`
	KycStatus     string `form:"kycStatus"`
	StartDate     string `form:"startDate"`
	EndDate       string `form:"endDate"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type KycListResponse struct {
	List       []KycSubmissionResponse `json:"list"`
	Pagination Pagination              `json:"pagination"`
}

type KycSubmissionResponse struct {
	ID            string             `json:"id"`
	Wallet        string             `json:"wallet"`
	CardID        string             `json:"cardId"`
	CardBin       string             `json:"cardBin"`
	CardHolderID  string             `json:"cardHolderId"`
	KycStatus     int                `json:"kycStatus"`
	KycStatusText string             `json:"kycStatusText"`
	CreatedAt     *string            `json:"createdAt"`
	AudingAt      *string            `json:"audingAt"`
	Reason        string             `json:"reason"`
	UpdatedAt     *string            `json:"updatedAt"`
	Remark        string             `json:"remark"`
	KycInfoID     *int64             `json:"kycInfoId"`
	KycInfo       *KycDetailResponse `json:"kycInfo"`
}

type KycDetailResponse struct {
	ID                     int64   `json:"id"`
	Wallet                 string  `json:"wallet"`
	FirstName              string  `json:"firstName"`
	LastName               string  `json:"lastName"`
	FullName               string  `json:"fullName"`
	Email                  string  `json:"email"`
	Mobile                 string  `json:"mobile"`
	MobilePrefix           string  `json:"mobilePrefix"`
	DateOfBirth            *string `json:"dateOfBirth"`
	CertType               string  `json:"certType"`
	Portrait               string  `json:"portrait"`
	ReverseSide            string  `json:"reverseSide"`
	NationalityCountryCode string  `json:"nationalityCountryCode"`
	PostCode               string  `json:"postCode"`
	Country                string  `json:"country"`
	State                  string  `json:"state"`
	City                   string  `json:"city"`
	Address                string  `json:"address"`
	CreatedAt              *string `json:"createdAt"`
	UpdatedAt              *string `json:"updatedAt"`
	Remark                 string  `json:"remark"`
}

func ToKycListResponse(out *kyc.ListSubmissionsOutput) KycListResponse {
	list := make([]KycSubmissionResponse, len(out.Items))
	for i, s := range out.Items {
		list[i] = ToKycSubmissionResponse(s)
	}
	return KycListResponse{
		List: list,
		Pagination: Pagination{
			Page:       out.Page,
			Limit:      out.Limit,
			Total:      out.Total,
			TotalPages: out.TotalPages,
		},
	}
}

func ToKycSubmissionResponse(s *entity.KycSubmission) KycSubmissionResponse {
	resp := KycSubmissionResponse{
		ID:            formatID(s.ID),
		Wallet:        s.Wallet,
		CardID:        s.CardID,
		CardBin:       s.CardBin,
		CardHolderID:  s.CardHolderID,
		KycStatus:     int(s.Status),
		KycStatusText: s.Status.Text(),
		CreatedAt:     formatTimePtr(&s.CreatedAt),
		AudingAt:      formatTimePtr(s.AuditedAt),
		UpdatedAt:     formatTimePtr(&s.UpdatedAt),
		Remark:        s.Remark,
		KycInfoID:     s.KycInfoID,
	}
	if s.Reason != nil {
		resp.Reason = *s.Reason
	}
	if d := s.Detail; d != nil {
		resp.KycInfo = &KycDetailResponse{
			ID:                     d.ID,
			Wallet:                 d.Wallet,
			FirstName:              d.FirstName,
			LastName:               d.LastName,
			FullName:               d.FullName(),
			Email:                  d.Email,
			Mobile:                 d.Mobile,
			MobilePrefix:           d.MobilePrefix,
			DateOfBirth:            formatTimePtr(d.DateOfBirth),
			CertType:               d.CertType,
			Portrait:               d.Portrait,
			ReverseSide:            d.ReverseSide,
			NationalityCountryCode: d.NationalityCountryCode,
			PostCode:               d.PostCode,
			Country:                d.Country,
			State:                  d.State,
			City:                   d.City,
			Address:                d.Address,
			CreatedAt:              formatTimePtr(&d.CreatedAt),
			UpdatedAt:              formatTimePtr(&d.UpdatedAt),
			Remark:                 d.Remark,
		}
	}
	return resp
}

type KycStatusOption struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

type KycOptionsResponse struct {
	KycStatuses []KycStatusOption `json:"kycStatuses"`
}

func formatTimePtr(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := gateway.FormatTime(*t)
	return &s
}
