package user

import (
	"time"

	"github.com/trezcool/darasa/core/role"
)

type User struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Username  string       `json:"username"`
	Email     string       `json:"email"`
	IsActive  bool         `json:"is_active"`
	SchoolID  string       `json:"school_id,omitempty"`
	Roles     []role.Value `json:"roles"`
	CreatedAt time.Time    `json:"created_at"` // UTC
	UpdatedAt time.Time    `json:"updated_at"` // UTC
	LastLogin time.Time    `json:"last_login"` // UTC
}

func (u User) EntityID() string { return u.ID }

func (u User) HasRole(v role.Value) bool {
	for _, r := range u.Roles {
		if r == v {
			return true
		}
	}
	return false
}

// Can reports whether any of the user's roles grants c.
func (u User) Can(c role.Capability) bool {
	for _, r := range u.Roles {
		if role.Can(r, c) {
			return true
		}
	}
	return false
}

func (u User) IsSuperAdmin() bool { return u.HasRole(role.SuperAdmin) }
func (u User) IsAdmin() bool      { return u.IsSuperAdmin() || u.HasRole(role.SchoolAdmin) }
func (u User) IsTeacher() bool    { return u.HasRole(role.Teacher) }
func (u User) IsStudent() bool    { return u.HasRole(role.Student) }

type NewUser struct {
	Name     string       `json:"name" validate:"notblank"`
	Username string       `json:"username" validate:"notblank"`
	Email    string       `json:"email" validate:"required,email"`
	Password string       `json:"password" validate:"required,min=8"`
	SchoolID string       `json:"school_id,omitempty"`
	Roles    []role.Value `json:"roles"`
}

// Credentials is the login input; both fields are guarded client-side so an
// ill-formed request never reaches the network.
type Credentials struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}
