package kyc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucardlabs/ucard-admin/internal/domain/entity"
	"github.com/ucardlabs/ucard-admin/internal/domain/repository"
	"github.com/ucardlabs/ucard-admin/internal/domain/valueobject"
	"github.com/ucardlabs/ucard-admin/internal/pkg/apperror"
)

// filterRecorder запоминает последний фильтр списка.
type filterRecorder struct {
	repository.KycRepository
	filter repository.SubmissionFilter
	total  int
}

func (r *filterRecorder) ListSubmissions(ctx context.Context, filter repository.SubmissionFilter) ([]*entity.KycSubmission, int, error) {
	r.filter = filter
	return nil, r.total, nil
}

func TestListSubmissions_Defaults(t *testing.T) {
	repo := &filterRecorder{total: 41}
	out, err := NewListSubmissionsUseCase(repo).Execute(context.Background(), ListSubmissionsInput{})
	require.NoError(t, err)

	assert.Equal(t, 1, out.Page)
	assert.Equal(t, defaultPageSize, out.Limit)
	assert.Equal(t, 3, out.TotalPages)
	assert.Equal(t, 0, repo.filter.Offset)
	assert.Nil(t, repo.filter.Status)
	assert.Nil(t, repo.filter.StartDate)
}

func TestListSubmissions_Filters(t *testing.T) {
	repo := &filterRecorder{}
	_, err := NewListSubmissionsUseCase(repo).Execute(context.Background(), ListSubmissionsInput{
		Page:      3,
		Limit:     500,
		Keyword:   "  0xAB ",
		Status:    "2",
		StartDate: "2025-01-01",
		EndDate:   "2025-01-31",
	})
	require.NoError(t, err)

	f := repo.filter
	assert.Equal(t, maxPageSize, f.Limit)
	assert.Equal(t, 2*maxPageSize, f.Offset)
	assert.Equal(t, "0xAB", f.Keyword)
	require.NotNil(t, f.Status)
	assert.Equal(t, valueobject.KycStatusReviewing, *f.Status)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *f.StartDate)
	assert.Equal(t, time.Date(2025, 1, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC), *f.EndDate)
}

func TestListSubmissions_InvalidInput(t *testing.T) {
	uc := NewListSubmissionsUseCase(&filterRecorder{})

	_, err := uc.Execute(context.Background(), ListSubmissionsInput{Status: "x"})
	assert.True(t, apperror.IsValidation(err))

	_, err = uc.Execute(context.Background(), ListSubmissionsInput{Status: "9"})
	assert.True(t, apperror.IsValidation(err))

	_, err = uc.Execute(context.Background(), ListSubmissionsInput{StartDate: "01/02/2025"})
	assert.True(t, apperror.IsValidation(err))
}
