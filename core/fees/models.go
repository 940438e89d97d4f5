package fees

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeHead is a named charge category (tuition, transport, library, ...).
type FeeHead struct {
	ID       string          `json:"id"`
	SchoolID string          `json:"school_id"`
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
}

func (h FeeHead) EntityID() string { return h.ID }

// Fee is one charge raised against a student for an academic year.
type Fee struct {
	ID             string          `json:"id"`
	SchoolID       string          `json:"school_id"`
	StudentID      string          `json:"student_id"`
	FeeHeadID      string          `json:"fee_head_id"`
	AcademicYearID string          `json:"academic_year_id"`
	Amount         decimal.Decimal `json:"amount"`
	Paid           bool            `json:"paid"`
	DueDate        time.Time       `json:"due_date,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (f Fee) EntityID() string { return f.ID }

type NewFeeHead struct {
	SchoolID string          `json:"school_id" validate:"notblank"`
	Name     string          `json:"name" validate:"notblank"`
	Amount   decimal.Decimal `json:"amount"`
}

type NewFee struct {
	SchoolID       string          `json:"school_id" validate:"notblank"`
	StudentID      string          `json:"student_id" validate:"notblank"`
	FeeHeadID      string          `json:"fee_head_id" validate:"notblank"`
	AcademicYearID string          `json:"academic_year_id" validate:"notblank"`
	Amount         decimal.Decimal `json:"amount"`
	DueDate        time.Time       `json:"due_date,omitempty"`
}
