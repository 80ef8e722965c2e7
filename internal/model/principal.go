package model

import (
	"github.com/google/uuid"
)

// Principal is the resolved, trusted representation of the caller: account
// identity, role, materialized permission set and the role-specific profile
// when one exists. It is produced by the identity resolver and treated as
// read-only afterwards.
type Principal struct {
	AccountID   uuid.UUID         `json:"account_id"`
	Email       string            `json:"email"`
	Role        *Role             `json:"role"`
	Permissions PermissionSet     `json:"-"`
	Clinician   *ClinicianProfile `json:"clinician_profile,omitempty"`
	Patient     *PatientProfile   `json:"patient_profile,omitempty"`
}

// Permitted reports whether the principal may perform an operation gated by
// code. The superuser bypass lives here, on the role capability flag, so no
// call site compares role names.
func (p *Principal) Permitted(code PermissionCode) bool {
	if p.Role != nil && p.Role.HasAllPermissions {
		return true
	}
	return p.Permissions.Has(code)
}

// PrincipalView is the wire shape returned by /auth/me and /auth/login.
type PrincipalView struct {
	AccountID   uuid.UUID         `json:"account_id"`
	Email       string            `json:"email"`
	Role        RoleName          `json:"role"`
	Permissions []PermissionCode  `json:"permissions"`
	Clinician   *ClinicianProfile `json:"clinician_profile,omitempty"`
	Patient     *PatientProfile   `json:"patient_profile,omitempty"`
}

// View materializes the serializable principal shape.
func (p *Principal) View() *PrincipalView {
	v := &PrincipalView{
		AccountID:   p.AccountID,
		Email:       p.Email,
		Permissions: p.Permissions.Codes(),
		Clinician:   p.Clinician,
		Patient:     p.Patient,
	}
	if p.Role != nil {
		v.Role = p.Role.Name
	}
	return v
}
