package school

import (
	"context"

	"github.com/trezcool/darasa/core"
)

type Store struct {
	core.Store[School]

	api core.API
}

func NewStore(api core.API) *Store {
	return &Store{api: api}
}

func (s *Store) FetchAll(ctx context.Context) error {
	op := s.Begin()
	var schools []School
	if err := s.api.Get(ctx, "/school", nil, &schools); err != nil {
		op.Reject(err)
		return err
	}
	op.ResolveList(schools)
	return nil
}

func (s *Store) FetchOne(ctx context.Context, id string) error {
	op := s.Begin()
	var sch School
	if err := s.api.Get(ctx, "/school/"+id, nil, &sch); err != nil {
		op.Reject(err)
		return err
	}
	op.ResolveOne(sch)
	return nil
}

func (s *Store) Create(ctx context.Context, ns NewSchool) error {
	if err := core.CheckStruct(ns); err != nil {
		s.Begin().Reject(err)
		return err
	}
	op := s.Begin()
	var created School
	if err := s.api.Post(ctx, "/school", ns, &created); err != nil {
		op.Reject(err)
		return err
	}
	op.ResolveOne(created)
	return nil
}

func (s *Store) Update(ctx context.Context, id string, us UpdateSchool) error {
	if err := core.CheckStruct(us); err != nil {
		s.Begin().Reject(err)
		return err
	}
	op := s.Begin()
	var updated School
	if err := s.api.Patch(ctx, "/school/"+id, us, &updated); err != nil {
		op.Reject(err)
		return err
	}
	op.ResolveOne(updated)
	return nil
}
