// Package report holds the read-only report fetches. Reports are never
// cached across schools; each fetch replaces the previous snapshot.
package report

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/darasa/core"
)

var ErrNoSchool = errors.New("a school must be selected first")

type (
	// FeesSummary is the fee-collection report of one school and year.
	FeesSummary struct {
		SchoolID       string          `json:"school_id"`
		AcademicYearID string          `json:"academic_year_id"`
		Collected      decimal.Decimal `json:"collected"`
		Outstanding    decimal.Decimal `json:"outstanding"`
	}

	// Enrollment is the per-class student headcount of one school.
	Enrollment struct {
		ClassID   string `json:"class_id"`
		ClassName string `json:"class_name"`
		Students  int    `json:"students"`
	}
)

func (e Enrollment) EntityID() string { return e.ClassID }

type Store struct {
	core.Store[Enrollment]

	api core.API

	mu   sync.Mutex
	fees *FeesSummary
}

func NewStore(api core.API) *Store {
	return &Store{api: api}
}

func (s *Store) FetchEnrollment(ctx context.Context, schoolID string) error {
	if schoolID == "" {
		err := core.NewValidationError(ErrNoSchool, core.FieldError{Field: "school_id", Error: ErrNoSchool.Error()})
		s.Begin().Reject(err)
		return err
	}
	op := s.Begin()
	var rows []Enrollment
	if err := s.api.Get(ctx, "/report/enrollment/"+schoolID, nil, &rows); err != nil {
		op.Reject(err)
		return err
	}
	op.ResolveList(rows)
	return nil
}

func (s *Store) FetchFeesSummary(ctx context.Context, schoolID string) error {
	if schoolID == "" {
		err := core.NewValidationError(ErrNoSchool, core.FieldError{Field: "school_id", Error: ErrNoSchool.Error()})
		s.Begin().Reject(err)
		return err
	}
	op := s.Begin()
	var summary FeesSummary
	if err := s.api.Get(ctx, "/report/fees/"+schoolID, nil, &summary); err != nil {
		op.Reject(err)
		return err
	}
	if op.Resolve() {
		s.mu.Lock()
		s.fees = &summary
		s.mu.Unlock()
	}
	return nil
}

func (s *Store) FeesSummary() (FeesSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fees == nil {
		return FeesSummary{}, false
	}
	return *s.fees, true
}
