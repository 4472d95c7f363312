package kyc_test

import (
	"context"
	"errors"
	"time"

	"github.com/ucardlabs/ucard-admin/internal/domain/entity"
	"github.com/ucardlabs/ucard-admin/internal/domain/repository"
	"github.com/ucardlabs/ucard-admin/internal/domain/valueobject"
	"github.com/ucardlabs/ucard-admin/internal/infrastructure/gateway"
	"github.com/ucardlabs/ucard-admin/internal/pkg/apperror"
)

type cardRecord struct {
	CardID    string
	Status    valueobject.KycStatus
	UpdatedAt time.Time
}

type userAccount struct {
	ID        int64
	Status    valueobject.KycStatus
	UpdatedAt time.Time
}

// fakeStore хранит заявки, карты, пользователей и журнал аудита в памяти.
type fakeStore struct {
	submissions map[int64]*entity.KycSubmission
	details     map[int64]*entity.KycDetail
	cards       []*cardRecord
	users       map[string]*userAccount
	intents     map[string]*entity.AuditIntent

	walletErr error
	applyErr  error

	reads        int
	storeWrites  int
	journalCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		submissions: make(map[int64]*entity.KycSubmission),
		details:     make(map[int64]*entity.KycDetail),
		users:       make(map[string]*userAccount),
		intents:     make(map[string]*entity.AuditIntent),
	}
}

func (f *fakeStore) FindSubmission(ctx context.Context, id int64) (*entity.KycSubmission, error) {
	f.reads++
	s, ok := f.submissions[id]
	if !ok {
		return nil, apperror.ErrSubmissionNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) FindDetail(ctx context.Context, id int64) (*entity.KycDetail, error) {
	f.reads++
	d, ok := f.details[id]
	if !ok {
		return nil, apperror.ErrKycDetailNotFound
	}
	return d, nil
}

func (f *fakeStore) FindWalletAccountID(ctx context.Context, wallet string) (int64, error) {
	f.reads++
	if f.walletErr != nil {
		return 0, f.walletErr
	}
	if u, ok := f.users[wallet]; ok {
		return u.ID, nil
	}
	return 0, nil
}

func (f *fakeStore) ListSubmissions(ctx context.Context, filter repository.SubmissionFilter) ([]*entity.KycSubmission, int, error) {
	f.reads++
	var result []*entity.KycSubmission
	for _, s := range f.submissions {
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		result = append(result, s)
	}
	return result, len(result), nil
}

func (f *fakeStore) ApplyDecision(ctx context.Context, o entity.AuditOutcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.applyErr != nil {
		return f.applyErr
	}
	s, ok := f.submissions[o.SubmissionID]
	if !ok || s.Status != valueobject.KycStatusReviewing {
		return apperror.ErrStaleSubmission
	}

	f.storeWrites++
	s.Status = o.NewStatus
	auditedAt := o.AuditedAt
	s.AuditedAt = &auditedAt
	s.UpdatedAt = o.AuditedAt
	if o.Decision == valueobject.AuditDecisionReject {
		reason := o.Reason
		s.Reason = &reason
	}

	if o.CardID != "" {
		for _, c := range f.cards {
			if c.CardID == o.CardID {
				c.Status = o.NewStatus
				c.UpdatedAt = o.AuditedAt
			}
		}
	}
	if o.Wallet != "" {
		if u, ok := f.users[o.Wallet]; ok {
			u.Status = o.NewStatus
			u.UpdatedAt = o.AuditedAt
		}
	}
	if o.IntentID != "" {
		delete(f.intents, o.IntentID)
	}
	return nil
}

func (f *fakeStore) Begin(ctx context.Context, intent *entity.AuditIntent) error {
	f.journalCalls++
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, existing := range f.intents {
		if existing.SubmissionID == intent.SubmissionID {
			return apperror.ErrAuditInProgress
		}
	}
	cp := *intent
	f.intents[intent.ID] = &cp
	return nil
}

func (f *fakeStore) MarkConfirmed(ctx context.Context, id string) error {
	f.journalCalls++
	if err := ctx.Err(); err != nil {
		return err
	}
	if i, ok := f.intents[id]; ok {
		i.State = entity.AuditIntentConfirmed
	}
	return nil
}

func (f *fakeStore) Release(ctx context.Context, id string) error {
	f.journalCalls++
	if err := ctx.Err(); err != nil {
		return err
	}
	delete(f.intents, id)
	return nil
}

func (f *fakeStore) ListByState(ctx context.Context, state entity.AuditIntentState, olderThan time.Time) ([]*entity.AuditIntent, error) {
	var result []*entity.AuditIntent
	for _, i := range f.intents {
		if i.State == state && !i.CreatedAt.After(olderThan) {
			result = append(result, i)
		}
	}
	return result, nil
}

// fakeGateway запоминает вызовы внешнего API. onCall выполняется внутри вызова.
type fakeGateway struct {
	approvals  []gateway.ApprovalRequest
	rejections []gateway.RejectionRequest
	err        error
	onCall     func()
}

func (g *fakeGateway) Approve(ctx context.Context, req gateway.ApprovalRequest) (*gateway.Response, error) {
	g.approvals = append(g.approvals, req)
	if g.onCall != nil {
		g.onCall()
	}
	if g.err != nil {
		return nil, g.err
	}
	return &gateway.Response{StatusCode: 200, Body: []byte(`{}`)}, nil
}

func (g *fakeGateway) Reject(ctx context.Context, req gateway.RejectionRequest) (*gateway.Response, error) {
	g.rejections = append(g.rejections, req)
	if g.onCall != nil {
		g.onCall()
	}
	if g.err != nil {
		return nil, g.err
	}
	return &gateway.Response{StatusCode: 200, Body: []byte(`{}`)}, nil
}

func (g *fakeGateway) calls() int {
	return len(g.approvals) + len(g.rejections)
}

var errDatabaseDown = errors.New("database is down")

func int64Ptr(v int64) *int64 {
	return &v
}
