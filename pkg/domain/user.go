package domain

import "strings"

// Role is the closed set of console roles.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleDoctor  Role = "DOCTOR"
	RolePatient Role = "PATIENT"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

// User represents the account as stored by the backend.
type User struct {
	ID        int64
	Email     string
	Role      Role
	FirstName string
	LastName  string
	Active    bool

	// Doctor-only fields
	SpecialtyID int64
	Specialty   string

	// Patient-only fields
	Document string
}

// DisplayName joins first and last name, falling back to the email
// when both are empty.
func (u *User) DisplayName() string {
	return DisplayName(u.FirstName, u.LastName, u.Email)
}

// DisplayName builds the name shown in the console from the wire fields.
func DisplayName(firstName, lastName, email string) string {
	parts := make([]string, 0, 2)
	if firstName != "" {
		parts = append(parts, firstName)
	}
	if lastName != "" {
		parts = append(parts, lastName)
	}
	name := strings.TrimSpace(strings.Join(parts, " "))
	if name == "" {
		return email
	}
	return name
}

// Identity is the authenticated user's profile as known to the client.
type Identity struct {
	ID     int64  `json:"id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}
