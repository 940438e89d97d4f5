package subject

type Subject struct {
	ID       string `json:"id"`
	SchoolID string `json:"school_id"`
	ClassID  string `json:"class_id,omitempty"`
	Name     string `json:"name"`
	Code     string `json:"code,omitempty"`
}

func (s Subject) EntityID() string { return s.ID }

type NewSubject struct {
	SchoolID string `json:"school_id" validate:"notblank"`
	ClassID  string `json:"class_id,omitempty"`
	Name     string `json:"name" validate:"notblank"`
	Code     string `json:"code,omitempty"`
}

type UpdateSubject struct {
	Name    string `json:"name,omitempty"`
	Code    string `json:"code,omitempty"`
	ClassID string `json:"class_id,omitempty"`
}
