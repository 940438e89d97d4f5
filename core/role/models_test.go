package role

import "testing"

func TestKnown(t *testing.T) {
	for _, v := range All {
		if !Known(v) {
			t.Errorf("Known(%q) = false", v)
		}
	}
	if Known("principal") {
		t.Error(`Known("principal") = true, want false`)
	}
}

func TestCan(t *testing.T) {
	tests := []struct {
		role Value
		cap  Capability
		want bool
	}{
		{SuperAdmin, CapManageSchools, true},
		{SuperAdmin, CapManageRoles, true},
		{SchoolAdmin, CapManageSchools, false},
		{SchoolAdmin, CapManageUsers, true},
		{Teacher, CapManageClasses, true},
		{Teacher, CapManageFees, false},
		{Accountant, CapManageFees, true},
		{Accountant, CapManageUsers, false},
		{Student, CapViewReports, false},
		{"principal", CapViewReports, false}, // unknown role grants nothing
	}
	for _, tt := range tests {
		if got := Can(tt.role, tt.cap); got != tt.want {
			t.Errorf("Can(%q, %d) = %t, want %t", tt.role, tt.cap, got, tt.want)
		}
	}
}
