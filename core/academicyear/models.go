package academicyear

import "time"

// Year is an academic year of one school. Exactly one Year per school may be
// active at a time; the backend enforces this and the client mirrors it
// optimistically on activation. Archived years are permanently excluded from
// active candidacy.
type Year struct {
	ID        string    `json:"id"`
	SchoolID  string    `json:"school_id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsActive  bool      `json:"is_active"`
	Archived  bool      `json:"archived"`
}

func (y Year) EntityID() string { return y.ID }

type NewYear struct {
	SchoolID  string    `json:"school_id" validate:"notblank"`
	Name      string    `json:"name" validate:"notblank"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
}
