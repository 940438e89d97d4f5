package role

// Value is the closed set of role identifiers known to the app. Components
// check capabilities through Can instead of comparing display names.
type Value string

const (
	SuperAdmin  Value = "super-admin"
	SchoolAdmin Value = "school-admin"
	Teacher     Value = "teacher"
	Accountant  Value = "accountant"
	Student     Value = "student"
)

var All = []Value{SuperAdmin, SchoolAdmin, Teacher, Accountant, Student}

func Known(v Value) bool {
	for _, known := range All {
		if v == known {
			return true
		}
	}
	return false
}

// Capability is a single permitted action.
type Capability int

const (
	CapManageSchools Capability = iota
	CapManageUsers
	CapManageAcademicYears
	CapManageClasses
	CapManageSubjects
	CapManageFees
	CapManageRoles
	CapViewReports
	CapViewActivityLogs
)

// capabilities is the explicit role -> capability-set lookup.
var capabilities = map[Value][]Capability{
	SuperAdmin: {
		CapManageSchools, CapManageUsers, CapManageAcademicYears, CapManageClasses,
		CapManageSubjects, CapManageFees, CapManageRoles, CapViewReports, CapViewActivityLogs,
	},
	SchoolAdmin: {
		CapManageUsers, CapManageAcademicYears, CapManageClasses, CapManageSubjects,
		CapManageFees, CapViewReports, CapViewActivityLogs,
	},
	Teacher:    {CapManageClasses, CapManageSubjects, CapViewReports},
	Accountant: {CapManageFees, CapViewReports},
	Student:    {},
}

func Can(v Value, c Capability) bool {
	for _, cap := range capabilities[v] {
		if cap == c {
			return true
		}
	}
	return false
}

// Role is a role record as served by the backend.
type Role struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Value    Value  `json:"value"`
	SchoolID string `json:"school_id,omitempty"`
}

func (r Role) EntityID() string { return r.ID }

type NewRole struct {
	Name     string `json:"name" validate:"notblank"`
	Value    Value  `json:"value" validate:"required"`
	SchoolID string `json:"school_id,omitempty"`
}
