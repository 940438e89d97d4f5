package subject

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var ErrNoSchool = errors.New("a school must be selected first")

type Store struct {
	core.Store[Subject]

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
	var subjects []Subject
	if err := s.api.Get(ctx, "/subject/school/"+schoolID, nil, &subjects); err != nil {
		op.Reject(err)
		return err
	}
	op.ResolveList(subjects)
	return nil
}

func (s *Store) Create(ctx context.Context, ns NewSubject) error {
	if err := core.CheckStruct(ns); err != nil {
		s.Begin().Reject(err)
		return err
	}
	op := s.Begin()
	var created Subject
	if err := s.api.Post(ctx, "/subject", ns, &created); err != nil {
		op.Reject(err)
		return err
	}
	op.ResolveOne(created)
	return nil
}

func (s *Store) Update(ctx context.Context, id string, us UpdateSubject) error {
	op := s.Begin()
	var updated Subject
	if err := s.api.Patch(ctx, "/subject/"+id, us, &updated); err != nil {
		op.Reject(err)
		return err
	}
	op.ResolveOne(updated)
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	op := s.Begin()
	if err := s.api.Delete(ctx, "/subject/"+id); err != nil {
		op.Reject(err)
		return err
	}
	op.ResolveDelete(id)
	return nil
}
