package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ucardlabs/ucard-admin/internal/domain/valueobject"
	"github.com/ucardlabs/ucard-admin/internal/pkg/apperror"
)

func TestKycSubmission_EnsureReviewable(t *testing.T) {
	s := &KycSubmission{ID: 1, Status: valueobject.KycStatusReviewing}
	assert.NoError(t, s.EnsureReviewable())

	for _, st := range []valueobject.KycStatus{
		valueobject.KycStatusApproved,
		valueobject.KycStatusRejected,
		valueobject.KycStatusNotSubmitted,
	} {
		s.Status = st
		err := s.EnsureReviewable()
		assert.True(t, apperror.IsInvalidState(err), "status %d", st)
	}
}

func TestKycDetail_FullName(t *testing.T) {
	assert.Equal(t, "Li Wei", (&KycDetail{FirstName: "Li", LastName: "Wei"}).FullName())
	assert.Equal(t, "Wei", (&KycDetail{LastName: "Wei"}).FullName())
	assert.Equal(t, "не указано", (&KycDetail{}).FullName())
}
