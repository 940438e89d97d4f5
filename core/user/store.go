package user

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	"github.com/trezcool/darasa/core"
)

// Store caches the admin-facing user list (distinct from the Session).
type Store struct {
	core.Store[User]

	api core.API

	mu   sync.Mutex
	page core.Page
}

func NewStore(api core.API) *Store {
	return &Store{api: api}
}

// FetchPage fetches one page of users (paginated list endpoint).
func (s *Store) FetchPage(ctx context.Context, page, limit int) error {
	op := s.Begin()
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var users []User
	pg, err := s.api.GetPage(ctx, "/user", query, &users)
	if err != nil {
		op.Reject(err)
		return err
	}
	if op.ResolveList(users) {
		s.mu.Lock()
		s.page = pg
		s.mu.Unlock()
	}
	return nil
}

func (s *Store) Create(ctx context.Context, nu NewUser) error {
	if err := core.CheckStruct(nu); err != nil {
		s.Begin().Reject(err)
		return err
	}
	op := s.Begin()
	var created User
	if err := s.api.Post(ctx, "/user", nu, &created); err != nil {
		op.Reject(err)
		return err
	}
	op.ResolveOne(created)
	return nil
}

func (s *Store) Pagination() core.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}
