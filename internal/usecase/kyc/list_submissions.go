package kyc

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/ucardlabs/ucard-admin/internal/domain/entity"
	"github.com/ucardlabs/ucard-admin/internal/domain/repository"
	"github.com/ucardlabs/ucard-admin/internal/domain/valueobject"
	"github.com/ucardlabs/ucard-admin/internal/pkg/apperror"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ListSubmissionsInput struct {
	Page      int
	Limit     int
	Keyword   string
	Status    string
	StartDate string
	EndDate   string
}

type ListSubmissionsOutput struct {
	Items      []*entity.KycSubmission
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

type ListSubmissionsUseCase struct {
	kycRepo repository.KycRepository
}

func NewListSubmissionsUseCase(kycRepo repository.KycRepository) *ListSubmissionsUseCase {
	return &ListSubmissionsUseCase{kycRepo: kycRepo}
}

func (uc *ListSubmissionsUseCase) Execute(ctx context.Context, in ListSubmissionsInput) (*ListSubmissionsOutput, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	filter := repository.SubmissionFilter{
		Keyword: strings.TrimSpace(in.Keyword),
		Limit:   limit,
		Offset:  (page - 1) * limit,
	}

	if in.Status != "" {
		status, err := parseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}

	if in.StartDate != "" {
		start, _, err := parseDate(in.StartDate)
		if err != nil {
			return nil, err
		}
		filter.StartDate = &start
	}

	if in.EndDate != "" {
		end, dateOnly, err := parseDate(in.EndDate)
		if err != nil {
			return nil, err
		}
		if dateOnly {
			// Конечная дата включается целиком.
			end = end.Add(24*time.Hour - time.Millisecond)
		}
		filter.EndDate = &end
	}

	items, total, err := uc.kycRepo.ListSubmissions(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &ListSubmissionsOutput{
		Items:      items,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

func parseStatus(raw string) (valueobject.KycStatus, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.New(apperror.ErrCodeValidation, "некорректный статус KYC")
	}
	return valueobject.NewKycStatus(n)
}

// parseDate принимает YYYY-MM-DD или RFC3339.
func parseDate(raw string) (time.Time, bool, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	return time.Time{}, false, apperror.New(apperror.ErrCodeValidation, "некорректный формат даты")
}
