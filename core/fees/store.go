package fees

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var ErrNoSchool = errors.New("a school must be selected first")

type Store struct {
	core.Store[Fee]

	api core.API
}

func NewStore(api core.API) *Store {
	return &Store{api: api}
}

func (s *Store) FetchBySchool(ctx context.Context, schoolID string) error {
	if schoolID == "" {
		err := core.NewValidationError(ErrNoSchool, core.FieldError{Field: "school_id", Error: ErrNoSchool.Error()})
		s.Begin().Reject(err)
		return err
	}
	op := s.Begin()
	var list []Fee
	if err := s.api.Get(ctx, "/fees/school/"+schoolID, nil, &list); err != nil {
		op.Reject(err)
		return err
	}
	op.ResolveList(list)
	return nil
}

func (s *Store) Create(ctx context.Context, nf NewFee) error {
	if err := core.CheckStruct(nf); err != nil {
		s.Begin().Reject(err)
		return err
	}
	op := s.Begin()
	var created Fee
	if err := s.api.Post(ctx, "/fees", nf, &created); err != nil {
		op.Reject(err)
		return err
	}
	op.ResolveOne(created)
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	op := s.Begin()
	if err := s.api.Delete(ctx, "/fees/"+id); err != nil {
		op.Reject(err)
		return err
	}
	op.ResolveDelete(id)
	return nil
}

// HeadStore caches the fee-head categories of a school.
type HeadStore struct {
	core.Store[FeeHead]

	api core.API
}

func NewHeadStore(api core.API) *HeadStore {
	return &HeadStore{api: api}
}

func (s *HeadStore) FetchAll(ctx context.Context) error {
	op := s.Begin()
	var heads []FeeHead
	if err := s.api.Get(ctx, "/fee-heads", nil, &heads); err != nil {
		op.Reject(err)
		return err
	}
	op.ResolveList(heads)
	return nil
}

func (s *HeadStore) Create(ctx context.Context, nh NewFeeHead) error {
	if err := core.CheckStruct(nh); err != nil {
		s.Begin().Reject(err)
		return err
	}
	op := s.Begin()
	var created FeeHead
	if err := s.api.Post(ctx, "/fee-heads", nh, &created); err != nil {
		op.Reject(err)
		return err
	}
	op.ResolveOne(created)
	return nil
}
