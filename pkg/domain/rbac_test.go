package domain

import "testing"

func TestIsRoleAllowed(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		required []Role
		want     bool
	}{
		{"empty requirement allows everyone", RolePatient, nil, true},
		{"matching role", RoleDoctor, []Role{RoleAdmin, RoleDoctor}, true},
		{"non-matching role", RolePatient, []Role{RoleAdmin}, false},
		{"empty role rejected", "", []Role{RoleAdmin}, false},
		{"empty role with empty requirement", "", nil, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRoleAllowed(tc.role, tc.required); got != tc.want {
				t.Errorf("IsRoleAllowed(%q, %v) = %v, want %v", tc.role, tc.required, got, tc.want)
			}
		})
	}
}

func TestAllowedRoutes(t *testing.T) {
	if routes := AllowedRoutes(""); routes != nil {
		t.Errorf("AllowedRoutes(\"\") = %v, want nil", routes)
	}

	patient := AllowedRoutes(RolePatient)
	if len(patient) != 2 {
		t.Fatalf("patient routes = %d, want 2", len(patient))
	}
	if patient[0].Path != "/dashboard" || patient[1].Path != "/patient/appointments" {
		t.Errorf("unexpected patient routes: %+v", patient)
	}

	admin := AllowedRoutes(RoleAdmin)
	for _, route := range admin {
		if route.Path == "/patient/appointments" || route.Path == "/doctor/appointments" {
			t.Errorf("admin should not see %s", route.Path)
		}
	}
	if len(admin) != 8 {
		t.Errorf("admin routes = %d, want 8", len(admin))
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		first, last, email string
		want               string
	}{
		{"Ana", "Ruiz", "ana@hospital.com", "Ana Ruiz"},
		{"Ana", "", "ana@hospital.com", "Ana"},
		{"", "Ruiz", "ana@hospital.com", "Ruiz"},
		{"", "", "ana@hospital.com", "ana@hospital.com"},
	}
	for _, tc := range tests {
		if got := DisplayName(tc.first, tc.last, tc.email); got != tc.want {
			t.Errorf("DisplayName(%q, %q, %q) = %q, want %q", tc.first, tc.last, tc.email, got, tc.want)
		}
	}
}
