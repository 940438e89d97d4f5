package user_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/role"
	"github.com/trezcool/darasa/core/user"
	inmemks "github.com/trezcool/darasa/storage/keyval/inmem"
	testutil "github.com/trezcool/darasa/tests"
)

func TestStore_fetchPage(t *testing.T) {
	b := testutil.NewBackend(t)
	admin := seedAdmin(b)
	for i := 0; i < 7; i++ {
		b.AddUser(user.User{ID: fmt.Sprintf("x%d", i), Username: fmt.Sprintf("x%d", i), IsActive: true}, "pwd")
	}

	keys := inmemks.New()
	if err := keys.Set(core.KeyAccessToken, b.Token(t, admin)); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	s := user.NewStore(b.Client(t, keys))
	ctx := context.Background()

	if err := s.FetchPage(ctx, 1, 3); err != nil {
		t.Fatalf("FetchPage() failed: %v", err)
	}
	if got := s.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
	want := core.Page{Page: 1, Limit: 3, Total: 8, Pages: 3}
	if got := s.Pagination(); got != want {
		t.Errorf("Pagination() = %+v, want %+v", got, want)
	}

	// paging forward replaces the cached window
	if err := s.FetchPage(ctx, 3, 3); err != nil {
		t.Fatalf("FetchPage() failed: %v", err)
	}
	if got := s.Len(); got != 2 {
		t.Errorf("Len() = %d on the last page, want 2", got)
	}
	if got := s.Pagination().Page; got != 3 {
		t.Errorf("Pagination().Page = %d, want 3", got)
	}
}

func TestStore_create(t *testing.T) {
	b := testutil.NewBackend(t)
	admin := seedAdmin(b)
	keys := inmemks.New()
	if err := keys.Set(core.KeyAccessToken, b.Token(t, admin)); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	s := user.NewStore(b.Client(t, keys))
	ctx := context.Background()

	// a short password never reaches the network
	err := s.Create(ctx, user.NewUser{Name: "New", Username: "new", Email: "new@test.test", Password: "short"})
	if !core.IsValidationError(err) {
		t.Fatalf("Create() error = %v, want validation error", err)
	}

	nu := user.NewUser{
		Name: "New Teacher", Username: "teach", Email: "teach@test.test",
		Password: "longenough1", Roles: []role.Value{role.Teacher},
	}
	if err = s.Create(ctx, nu); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	items := s.Items()
	if len(items) != 1 || items[0].Username != "teach" {
		t.Errorf("Items() = %+v, want the created user", items)
	}
	if !items[0].IsActive {
		t.Error("created user inactive")
	}
}
