package academicyear

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	ErrArchived    = errors.New("an archived year cannot be activated")
	ErrNoSchool    = errors.New("a school must be selected first")
	ErrUnknownYear = errors.New("unknown academic year")
)

// Store caches the academic years of the currently browsed school and owns
// the client-only "selected year" pointer: what this browsing session is
// viewing, independently persisted, defaulting to the server-active year.
type Store struct {
	core.Store[Year]

	api  core.API
	keys core.Keystore
	log  core.Logger

	mu       sync.Mutex
	selected *Year
}

func NewStore(api core.API, keys core.Keystore, log core.Logger) *Store {
	return &Store{api: api, keys: keys, log: log}
}

// Hydrate seeds the selected year from the keystore. Bootstrap only.
func (s *Store) Hydrate() {
	var y Year
	ok, err := s.keys.Get(core.KeySelectedAcademicYear, &y)
	if err != nil {
		s.log.Error("hydrating selected year", err)
		return
	}
	if !ok {
		return
	}
	s.mu.Lock()
	s.selected = &y
	s.mu.Unlock()
}

func (s *Store) FetchBySchool(ctx context.Context, schoolID string) error {
	if schoolID == "" {
		err := core.NewValidationError(ErrNoSchool, core.FieldError{Field: "school_id", Error: ErrNoSchool.Error()})
		s.Begin().Reject(err)
		return err
	}
	op := s.Begin()
	var years []Year
	if err := s.api.Get(ctx, "/academicYear/school/"+schoolID, nil, &years); err != nil {
		op.Reject(err)
		return err
	}
	if op.ResolveList(years) {
		s.refreshSelected()
	}
	return nil
}

func (s *Store) Create(ctx context.Context, ny NewYear) error {
	if err := core.CheckStruct(ny); err != nil {
		s.Begin().Reject(err)
		return err
	}
	op := s.Begin()
	var created Year
	if err := s.api.Post(ctx, "/academicYear", ny, &created); err != nil {
		op.Reject(err)
		return err
	}
	op.ResolveOne(created)
	return nil
}

// Activate marks year id active. On a fulfilled settlement every sibling year
// of the same school is marked inactive client-side; this cross-record update
// is optimistic, not authoritative, and is re-verified against the next full
// fetch.
func (s *Store) Activate(ctx context.Context, id string) error {
	if y, ok := s.Get(id); ok && y.Archived {
		err := core.NewValidationError(ErrArchived)
		s.Begin().Reject(err)
		return err
	}
	op := s.Begin()
	var activated Year
	if err := s.api.Post(ctx, "/academicYear/activate/"+id, nil, &activated); err != nil {
		op.Reject(err)
		return err
	}
	activated.IsActive = true
	applied := op.ResolveWith(func(items []Year) []Year {
		var found bool
		for i := range items {
			if items[i].ID == activated.ID {
				items[i] = activated
				found = true
				continue
			}
			if items[i].SchoolID == activated.SchoolID {
				items[i].IsActive = false
			}
		}
		if !found {
			items = append([]Year{activated}, items...)
		}
		return items
	})
	if applied {
		s.refreshSelected()
	}
	return nil
}

// Archive retires year id for good; an archived year never becomes active
// again.
func (s *Store) Archive(ctx context.Context, id string) error {
	op := s.Begin()
	var archived Year
	if err := s.api.Post(ctx, "/academicYear/archive/"+id, nil, &archived); err != nil {
		op.Reject(err)
		return err
	}
	archived.Archived = true
	archived.IsActive = false
	if op.ResolveOne(archived) {
		s.refreshSelected()
	}
	return nil
}

// ActiveYear returns the server-active year of the cached list.
func (s *Store) ActiveYear() (Year, bool) {
	for _, y := range s.Items() {
		if y.IsActive && !y.Archived {
			return y, true
		}
	}
	return Year{}, false
}

// SelectYear points this browsing session at year id and mirrors the choice
// to the keystore, synchronously.
func (s *Store) SelectYear(id string) error {
	y, ok := s.Get(id)
	if !ok {
		return core.NewValidationError(ErrUnknownYear)
	}
	s.mu.Lock()
	s.selected = &y
	s.mu.Unlock()
	s.mirrorSelected(y)
	return nil
}

// SelectedYear returns the explicitly selected year, falling back to the
// server-active year when unset.
func (s *Store) SelectedYear() (Year, bool) {
	s.mu.Lock()
	sel := s.selected
	s.mu.Unlock()
	if sel != nil {
		return *sel, true
	}
	return s.ActiveYear()
}

// ClearSelection drops the explicit selection; SelectedYear falls back to the
// server-active year.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	s.selected = nil
	s.mu.Unlock()
	if err := s.keys.Delete(core.KeySelectedAcademicYear); err != nil {
		s.log.Error("clearing selected year", err)
	}
	if err := s.keys.Delete(core.KeyAcademicYearID); err != nil {
		s.log.Error("clearing selected year id", err)
	}
}

// refreshSelected re-reads the selected year from the freshly fetched list:
// the in-memory value from the latest successful fetch wins over whatever the
// keystore holds, and is re-written to it.
func (s *Store) refreshSelected() {
	s.mu.Lock()
	sel := s.selected
	s.mu.Unlock()
	if sel == nil {
		return
	}
	fresh, ok := s.Get(sel.ID)
	if !ok {
		return
	}
	s.mu.Lock()
	s.selected = &fresh
	s.mu.Unlock()
	s.mirrorSelected(fresh)
}

func (s *Store) mirrorSelected(y Year) {
	if err := s.keys.Set(core.KeySelectedAcademicYear, y); err != nil {
		s.log.Error("mirroring selected year", err)
	}
	if err := s.keys.Set(core.KeyAcademicYearID, y.ID); err != nil {
		s.log.Error("mirroring selected year id", err)
	}
}
