package role

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

// Store caches the role records served by the backend.
type Store struct {
	core.Store[Role]

	api core.API
}

func NewStore(api core.API) *Store {
	return &Store{api: api}
}

func (s *Store) FetchAll(ctx context.Context) error {
	op := s.Begin()
	var roles []Role
	if err := s.api.Get(ctx, "/role", nil, &roles); err != nil {
		op.Reject(err)
		return err
	}
	op.ResolveList(roles)
	return nil
}

func (s *Store) Create(ctx context.Context, nr NewRole) error {
	if !Known(nr.Value) {
		err := core.NewValidationError(errors.Errorf("unknown role %q", nr.Value),
			core.FieldError{Field: "value", Error: "unknown role"})
		s.Begin().Reject(err)
		return err
	}
	if err := core.CheckStruct(nr); err != nil {
		s.Begin().Reject(err)
		return err
	}
	op := s.Begin()
	var created Role
	if err := s.api.Post(ctx, "/role", nr, &created); err != nil {
		op.Reject(err)
		return err
	}
	op.ResolveOne(created)
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	op := s.Begin()
	if err := s.api.Delete(ctx, "/role/"+id); err != nil {
		op.Reject(err)
		return err
	}
	op.ResolveDelete(id)
	return nil
}
