package subject_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/role"
	"github.com/trezcool/darasa/core/subject"
	"github.com/trezcool/darasa/core/user"
	inmemks "github.com/trezcool/darasa/storage/keyval/inmem"
	testutil "github.com/trezcool/darasa/tests"
)

func newStore(t *testing.T) (*testutil.Backend, *subject.Store) {
	t.Helper()
	b := testutil.NewBackend(t)
	usr := b.AddUser(user.User{ID: "u1", Username: "teach", IsActive: true, Roles: []role.Value{role.Teacher}}, "pwd")
	keys := inmemks.New()
	require.NoError(t, keys.Set(core.KeyAccessToken, b.Token(t, usr)))
	return b, subject.NewStore(b.Client(t, keys))
}

func TestStore_fetchBySchool(t *testing.T) {
	b, s := newStore(t)
	b.AddSubject(subject.Subject{ID: "sub1", SchoolID: "s1", Name: "Mathematics", Code: "MTH"})
	b.AddSubject(subject.Subject{ID: "sub2", SchoolID: "s2", Name: "Kiswahili", Code: "KIS"})
	ctx := context.Background()

	err := s.FetchBySchool(ctx, "")
	assert.True(t, core.IsValidationError(err), "missing school id must be guarded locally")

	require.NoError(t, s.FetchBySchool(ctx, "s1"))
	require.Equal(t, 1, s.Len())
	sub, _ := s.Get("sub1")
	assert.Equal(t, "MTH", sub.Code)
}

func TestStore_createUpdateDelete(t *testing.T) {
	_, s := newStore(t)
	ctx := context.Background()

	err := s.Create(ctx, subject.NewSubject{Name: "Physics"})
	assert.True(t, core.IsValidationError(err))

	require.NoError(t, s.Create(ctx, subject.NewSubject{SchoolID: "s1", Name: "Physics", Code: "PHY"}))
	require.Equal(t, 1, s.Len())
	created := s.Items()[0]

	require.NoError(t, s.Update(ctx, created.ID, subject.UpdateSubject{Code: "PHY101"}))
	updated, _ := s.Get(created.ID)
	assert.Equal(t, "PHY101", updated.Code)
	assert.Equal(t, "Physics", updated.Name, "untouched fields survive a partial update")

	require.NoError(t, s.Delete(ctx, created.ID))
	assert.Equal(t, 0, s.Len())
}
