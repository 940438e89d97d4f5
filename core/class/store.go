package class

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var ErrNoSchool = errors.New("a school must be selected first")

type Store struct {
	core.Store[Class]

	api core.API
}

func NewStore(api core.API) *Store {
	return &Store{api: api}
}

// FetchBySchool fetches the classes of one school. The dependent parent id is
// guarded: without it the dispatch rejects locally and never fires.
func (s *Store) FetchBySchool(ctx context.Context, schoolID string) error {
	if schoolID == "" {
		err := core.NewValidationError(ErrNoSchool, core.FieldError{Field: "school_id", Error: ErrNoSchool.Error()})
		s.Begin().Reject(err)
		return err
	}
	op := s.Begin()
	var classes []Class
	if err := s.api.Get(ctx, "/class/school/"+schoolID, nil, &classes); err != nil {
		op.Reject(err)
		return err
	}
	op.ResolveList(classes)
	return nil
}

func (s *Store) Create(ctx context.Context, nc NewClass) error {
	if err := core.CheckStruct(nc); err != nil {
		s.Begin().Reject(err)
		return err
	}
	op := s.Begin()
	var created Class
	if err := s.api.Post(ctx, "/class", nc, &created); err != nil {
		op.Reject(err)
		return err
	}
	op.ResolveOne(created)
	return nil
}

func (s *Store) Update(ctx context.Context, id string, uc UpdateClass) error {
	op := s.Begin()
	var updated Class
	if err := s.api.Patch(ctx, "/class/"+id, uc, &updated); err != nil {
		op.Reject(err)
		return err
	}
	op.ResolveOne(updated)
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	op := s.Begin()
	if err := s.api.Delete(ctx, "/class/"+id); err != nil {
		op.Reject(err)
		return err
	}
	op.ResolveDelete(id)
	return nil
}

// SectionStore caches the flat section list (sections are school-agnostic
// building blocks attached to classes).
type SectionStore struct {
	core.Store[Section]

	api core.API
}

func NewSectionStore(api core.API) *SectionStore {
	return &SectionStore{api: api}
}

func (s *SectionStore) FetchAll(ctx context.Context) error {
	op := s.Begin()
	var sections []Section
	if err := s.api.Get(ctx, "/section", nil, &sections); err != nil {
		op.Reject(err)
		return err
	}
	op.ResolveList(sections)
	return nil
}

func (s *SectionStore) Create(ctx context.Context, ns NewSection) error {
	if err := core.CheckStruct(ns); err != nil {
		s.Begin().Reject(err)
		return err
	}
	op := s.Begin()
	var created Section
	if err := s.api.Post(ctx, "/section", ns, &created); err != nil {
		op.Reject(err)
		return err
	}
	op.ResolveOne(created)
	return nil
}
