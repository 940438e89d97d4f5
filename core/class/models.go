package class

// Association is a nested summary of a related record embedded in a Class.
type Association struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Section struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s Section) EntityID() string { return s.ID }

// Class is school-scoped; relationships are embedded as nested summaries.
type Class struct {
	ID       string        `json:"id"`
	SchoolID string        `json:"school_id"`
	Name     string        `json:"name"`
	Sections []Section     `json:"sections,omitempty"`
	Subjects []Association `json:"subjects,omitempty"`
	Teachers []Association `json:"teachers,omitempty"`
}

func (c Class) EntityID() string { return c.ID }

type NewClass struct {
	SchoolID string   `json:"school_id" validate:"notblank"`
	Name     string   `json:"name" validate:"notblank"`
	Sections []string `json:"sections,omitempty"` // section ids
}

type UpdateClass struct {
	Name     string   `json:"name,omitempty"`
	Sections []string `json:"sections,omitempty"`
	Subjects []string `json:"subjects,omitempty"`
	Teachers []string `json:"teachers,omitempty"`
}

type NewSection struct {
	Name string `json:"name" validate:"notblank"`
}
