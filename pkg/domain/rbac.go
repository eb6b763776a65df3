package domain

// ConsoleRoute is a navigation entry gated by role.
type ConsoleRoute struct {
	Label string
	Path  string
	Roles []Role
}

// ConsoleRoutes is the console navigation table.
var ConsoleRoutes = []ConsoleRoute{
	{Label: "Dashboard", Path: "/dashboard", Roles: []Role{RoleAdmin, RoleDoctor, RolePatient}},
	{Label: "Citas", Path: "/admin/appointments", Roles: []Role{RoleAdmin}},
	{Label: "Pacientes", Path: "/admin/patients", Roles: []Role{RoleAdmin}},
	{Label: "Médicos", Path: "/admin/doctors", Roles: []Role{RoleAdmin}},
	{Label: "Horarios", Path: "/admin/schedules", Roles: []Role{RoleAdmin, RoleDoctor}},
	{Label: "Usuarios", Path: "/admin/users", Roles: []Role{RoleAdmin}},
	{Label: "Agenda", Path: "/doctor/schedule", Roles: []Role{RoleAdmin, RoleDoctor}},
	{Label: "Citas del doctor", Path: "/doctor/appointments", Roles: []Role{RoleDoctor}},
	{Label: "Historias clínicas", Path: "/doctor/records", Roles: []Role{RoleAdmin, RoleDoctor}},
	{Label: "Mis citas", Path: "/patient/appointments", Roles: []Role{RolePatient}},
}

// AllowedRoutes returns the navigation entries visible to a role.
func AllowedRoutes(role Role) []ConsoleRoute {
	if role == "" {
		return nil
	}
	var allowed []ConsoleRoute
	for _, route := range ConsoleRoutes {
		if IsRoleAllowed(role, route.Roles) {
			allowed = append(allowed, route)
		}
	}
	return allowed
}

// IsRoleAllowed reports whether a role satisfies a requirement list.
// An empty requirement list allows everyone.
func IsRoleAllowed(role Role, required []Role) bool {
	if len(required) == 0 {
		return true
	}
	if role == "" {
		return false
	}
	for _, r := range required {
		if r == role {
			return true
		}
	}
	return false
}
