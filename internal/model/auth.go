package model

import (
	"fmt"
	"strings"
	"time"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// RegisterRequest creates an account plus, depending on the role, its
// profile. Profile fields are optional at binding time and checked per role
// by Validate.
type RegisterRequest struct {
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required,min=8"`
	Role     RoleName `json:"role" binding:"required,oneof=admin clinician receptionist patient"`

	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Specialty     string     `json:"specialty"`
	ContactNumber string     `json:"contact_number"`
	DateOfBirth   *time.Time `json:"date_of_birth"`
	Gender        string     `json:"gender" binding:"omitempty,oneof=male female other"`
}

// Validate enforces the role-conditional required fields.
func (r *RegisterRequest) Validate() error {
	type check struct {
		field   string
		present bool
	}

	var required []check
	switch r.Role {
	case RoleClinician:
		required = []check{
			{"first_name", r.FirstName != ""},
			{"last_name", r.LastName != ""},
			{"specialty", r.Specialty != ""},
			{"contact_number", r.ContactNumber != ""},
		}
	case RolePatient:
		required = []check{
			{"first_name", r.FirstName != ""},
			{"last_name", r.LastName != ""},
			{"date_of_birth", r.DateOfBirth != nil},
			{"gender", r.Gender != ""},
			{"contact_number", r.ContactNumber != ""},
		}
	default:
		return nil
	}

	var missing []string
	for _, c := range required {
		if !c.present {
			missing = append(missing, c.field)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields for role %s: %s", r.Role, strings.Join(missing, ", "))
	}
	return nil
}

// AuthResponse is returned by /auth/login.
type AuthResponse struct {
	AccessToken string         `json:"access_token"`
	Principal   *PrincipalView `json:"user"`
}
