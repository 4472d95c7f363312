package handler

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ucardlabs/ucard-admin/internal/domain/valueobject"
	"github.com/ucardlabs/ucard-admin/internal/interface/http/dto"
	"github.com/ucardlabs/ucard-admin/internal/interface/http/response"
	"github.com/ucardlabs/ucard-admin/internal/logger"
	"github.com/ucardlabs/ucard-admin/internal/usecase/kyc"
)

type Auditor interface {
	Execute(ctx context.Context, in kyc.AuditInput) (*kyc.AuditResult, error)
}

type SubmissionLister interface {
	Execute(ctx context.Context, in kyc.ListSubmissionsInput) (*kyc.ListSubmissionsOutput, error)
}

type CardBinFetcher interface {
	Execute(ctx context.Context) (json.RawMessage, error)
}

type KycHandler struct {
	audit    Auditor
	list     SubmissionLister
	cardBins CardBinFetcher
}

func NewKycHandler(audit Auditor, list SubmissionLister, cardBins CardBinFetcher) *KycHandler {
	return &KycHandler{audit: audit, list: list, cardBins: cardBins}
}

// Audit обрабатывает POST /api/kyc-data/audit.
func (h *KycHandler) Audit(c *gin.Context) {
	var req dto.AuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	result, err := h.audit.Execute(c.Request.Context(), kyc.AuditInput{
		SubmissionID: string(req.ID),
		Decision:     req.Action,
		Reason:       req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	logger.Log.WithFields(logrus.Fields{
		"submission_id": result.SubmissionID,
		"decision":      req.Action,
		"admin":         adminUsername(c),
	}).Info("аудит KYC выполнен")

	message := "заявка одобрена"
	if result.NewStatus == valueobject.KycStatusRejected {
		message = "заявка отклонена"
	}
	response.SuccessMessage(c, message, dto.ToAuditResponse(result))
}

// List обрабатывает GET /api/kyc-data.
func (h *KycHandler) List(c *gin.Context) {
	var q dto.KycListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "некорректные параметры запроса")
		return
	}

	out, err := h.list.Execute(c.Request.Context(), kyc.ListSubmissionsInput{
		Page:      q.Page,
		Limit:     q.Limit,
		Keyword:   q.SearchKeyword,
		Status:    q.KycStatus,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToKycListResponse(out))
}

// Options обрабатывает GET /api/kyc-data/options.
func (h *KycHandler) Options(c *gin.Context) {
	statuses := valueobject.KycStatuses()
	options := make([]dto.KycStatusOption, len(statuses))
	for i, s := range statuses {
		options[i] = dto.KycStatusOption{Value: int(s), Label: s.Text()}
	}
	response.Success(c, dto.KycOptionsResponse{KycStatuses: options})
}

// CardBins обрабатывает GET /api/kyc-data/cardbin.
func (h *KycHandler) CardBins(c *gin.Context) {
	body, err := h.cardBins.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, body)
}
