package school_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/role"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/user"
	inmemks "github.com/trezcool/darasa/storage/keyval/inmem"
	testutil "github.com/trezcool/darasa/tests"
)

func newStore(t *testing.T) (*testutil.Backend, *school.Store) {
	t.Helper()
	b := testutil.NewBackend(t)
	usr := b.AddUser(user.User{ID: "u1", Username: "admin", IsActive: true, Roles: []role.Value{role.SuperAdmin}}, "pwd")
	keys := inmemks.New()
	require.NoError(t, keys.Set(core.KeyAccessToken, b.Token(t, usr)))
	return b, school.NewStore(b.Client(t, keys))
}

func TestStore_fetchAll(t *testing.T) {
	b, s := newStore(t)
	b.AddSchool(school.School{ID: "s1", Name: "Hilltop Primary"})
	b.AddSchool(school.School{ID: "s2", Name: "Lakeside Secondary"})

	require.NoError(t, s.FetchAll(context.Background()))
	assert.Equal(t, 2, s.Len())
	sch, ok := s.Get("s2")
	require.True(t, ok)
	assert.Equal(t, "Lakeside Secondary", sch.Name)
}

func TestStore_fetchOne(t *testing.T) {
	b, s := newStore(t)
	b.AddSchool(school.School{ID: "s1", Name: "Hilltop Primary"})
	ctx := context.Background()

	require.NoError(t, s.FetchAll(ctx))

	// a single-record fetch upserts without disturbing the list
	b.AddSchool(school.School{ID: "s2", Name: "Lakeside Secondary"})
	require.NoError(t, s.FetchOne(ctx, "s2"))
	assert.Equal(t, 2, s.Len())

	err := s.FetchOne(ctx, "nope")
	require.Error(t, err)
	assert.Equal(t, "school not found", err.Error())
	assert.Equal(t, 2, s.Len(), "a rejected fetch must not clear cached data")
}

func TestStore_create(t *testing.T) {
	_, s := newStore(t)
	ctx := context.Background()

	err := s.Create(ctx, school.NewSchool{Name: " ", Email: "not-an-email"})
	assert.True(t, core.IsValidationError(err))

	require.NoError(t, s.Create(ctx, school.NewSchool{Name: "Riverbank Academy", Email: "info@riverbank.test"}))
	require.Equal(t, 1, s.Len())
	created := s.Items()[0]
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.IsActive)

	require.NoError(t, s.Update(ctx, created.ID, school.UpdateSchool{Phone: "+254700000000"}))
	updated, _ := s.Get(created.ID)
	assert.Equal(t, "+254700000000", updated.Phone)
	assert.Equal(t, "Riverbank Academy", updated.Name, "untouched fields survive a partial update")
}
