package report_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/fees"
	"github.com/trezcool/darasa/core/report"
	"github.com/trezcool/darasa/core/role"
	"github.com/trezcool/darasa/core/user"
	inmemks "github.com/trezcool/darasa/storage/keyval/inmem"
	testutil "github.com/trezcool/darasa/tests"
)

func newStore(t *testing.T) (*testutil.Backend, *report.Store) {
	t.Helper()
	b := testutil.NewBackend(t)
	usr := b.AddUser(user.User{ID: "u1", Username: "admin", IsActive: true, Roles: []role.Value{role.SchoolAdmin}}, "pwd")
	keys := inmemks.New()
	require.NoError(t, keys.Set(core.KeyAccessToken, b.Token(t, usr)))
	return b, report.NewStore(b.Client(t, keys))
}

func TestStore_fetchEnrollment(t *testing.T) {
	b, s := newStore(t)
	b.AddEnrollment("s1", report.Enrollment{ClassID: "c1", ClassName: "Form 1", Students: 32})
	b.AddEnrollment("s1", report.Enrollment{ClassID: "c2", ClassName: "Form 2", Students: 28})
	ctx := context.Background()

	err := s.FetchEnrollment(ctx, "")
	assert.True(t, core.IsValidationError(err), "missing school id must be guarded locally")

	require.NoError(t, s.FetchEnrollment(ctx, "s1"))
	require.Equal(t, 2, s.Len())
	row, _ := s.Get("c2")
	assert.Equal(t, 28, row.Students)
}

func TestStore_fetchFeesSummary(t *testing.T) {
	b, s := newStore(t)
	b.AddFee(fees.Fee{ID: "f1", SchoolID: "s1", Amount: decimal.RequireFromString("150.50"), Paid: true})
	b.AddFee(fees.Fee{ID: "f2", SchoolID: "s1", Amount: decimal.RequireFromString("99.50"), Paid: true})
	b.AddFee(fees.Fee{ID: "f3", SchoolID: "s1", Amount: decimal.NewFromInt(300)})
	b.AddFee(fees.Fee{ID: "g1", SchoolID: "s2", Amount: decimal.NewFromInt(999), Paid: true})
	ctx := context.Background()

	_, ok := s.FeesSummary()
	assert.False(t, ok, "no summary before the first fetch")

	require.NoError(t, s.FetchFeesSummary(ctx, "s1"))
	summary, ok := s.FeesSummary()
	require.True(t, ok)
	assert.True(t, summary.Collected.Equal(decimal.RequireFromString("250.00")), "Collected = %s", summary.Collected)
	assert.True(t, summary.Outstanding.Equal(decimal.NewFromInt(300)), "Outstanding = %s", summary.Outstanding)
}
