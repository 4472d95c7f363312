package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucardlabs/ucard-admin/internal/auth"
	"github.com/ucardlabs/ucard-admin/internal/domain/entity"
	"github.com/ucardlabs/ucard-admin/internal/domain/valueobject"
	"github.com/ucardlabs/ucard-admin/internal/usecase/kyc"
)

const cliSecret = "kycctl-test-secret-0123456789abcdef"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("ADMIN_JWT_SECRET", cliSecret)

	out, err := run(t, "token", "--username", "alice", "--ttl", "1h")
	require.NoError(t, err)

	username, err := auth.NewAdminTokens(cliSecret).Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestTokenCommand_RequiresSecretAndUser(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	t.Setenv("ADMIN_JWT_SECRET", "")
	_, err := run(t, "token", "--username", "alice")
	assert.ErrorContains(t, err, "ADMIN_JWT_SECRET")

	t.Setenv("ADMIN_JWT_SECRET", cliSecret)
	_, err = run(t, "token")
	assert.ErrorContains(t, err, "--username")
}

func TestPrintReport(t *testing.T) {
	var out bytes.Buffer
	printReport(&out, &kyc.ReconcileReport{
		Resumed:   2,
		Dropped:   1,
		Conflicts: 1,
		Stale: []*entity.AuditIntent{{
			SubmissionID: 42,
			Decision:     valueobject.AuditDecisionReject,
			CreatedAt:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		}},
		Released: 1,
	})

	assert.Contains(t, out.String(), "дописано: 2")
	assert.Contains(t, out.String(), "из них с другим решением: 1")
	assert.Contains(t, out.String(), "зависших: 1, удалено: 1")
	assert.Contains(t, out.String(), "заявка 42: reject, создано 2025-01-02T03:04:05Z")
}
