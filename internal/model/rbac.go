package model

import (
	"sort"

	"github.com/google/uuid"
)

// RoleName is the closed set of roles in this domain.
type RoleName string

const (
	RoleAdmin        RoleName = "admin"
	RoleClinician    RoleName = "clinician"
	RoleReceptionist RoleName = "receptionist"
	RolePatient      RoleName = "patient"
)

// RoleNames lists every seeded role.
var RoleNames = []RoleName{RoleAdmin, RoleClinician, RoleReceptionist, RolePatient}

func (r RoleName) Valid() bool {
	switch r {
	case RoleAdmin, RoleClinician, RoleReceptionist, RolePatient:
		return true
	}
	return false
}

// RequiresProfile reports whether accounts with this role own a
// role-specific profile row.
func (r RoleName) RequiresProfile() bool {
	return r == RoleClinician || r == RolePatient
}

// PermissionCode is an atomic capability checked by the authorization gate.
// The enumeration is data: extending it never touches the gate.
type PermissionCode string

const (
	PermAccountCreate PermissionCode = "account:create"
	PermAccountRead   PermissionCode = "account:read"
	PermAccountUpdate PermissionCode = "account:update"
	PermAccountDelete PermissionCode = "account:delete"

	PermClinicianCreate PermissionCode = "clinician:create"
	PermClinicianRead   PermissionCode = "clinician:read"
	PermClinicianUpdate PermissionCode = "clinician:update"
	PermClinicianDelete PermissionCode = "clinician:delete"

	PermPatientCreate PermissionCode = "patient:create"
	PermPatientRead   PermissionCode = "patient:read"
	PermPatientUpdate PermissionCode = "patient:update"
	PermPatientDelete PermissionCode = "patient:delete"

	PermAppointmentCreate PermissionCode = "appointment:create"
	PermAppointmentRead   PermissionCode = "appointment:read"
	PermAppointmentUpdate PermissionCode = "appointment:update"
	PermAppointmentDelete PermissionCode = "appointment:delete"

	PermRecordCreate PermissionCode = "record:create"
	PermRecordRead   PermissionCode = "record:read"
	PermRecordUpdate PermissionCode = "record:update"
	PermRecordDelete PermissionCode = "record:delete"

	PermStatsRead PermissionCode = "stats:read"

	PermRoleRead   PermissionCode = "role:read"
	PermRoleUpdate PermissionCode = "role:update"
)

// Role is a named category owning zero or more permission grants.
// HasAllPermissions marks the superuser role so that no call site has to
// special-case a role name.
type Role struct {
	Base
	Name              RoleName `db:"name" json:"name"`
	Description       string   `db:"description" json:"description"`
	HasAllPermissions bool     `db:"has_all_permissions" json:"has_all_permissions"`
}

type Permission struct {
	Base
	Code        PermissionCode `db:"code" json:"code"`
	Description string         `db:"description" json:"description"`
}

// RoleGrant links one role to one permission; the (role, permission) pair
// is unique.
type RoleGrant struct {
	Base
	RoleID       uuid.UUID `db:"role_id" json:"role_id"`
	PermissionID uuid.UUID `db:"permission_id" json:"permission_id"`
}

// PermissionSet is the materialized set of codes granted to a principal.
type PermissionSet map[PermissionCode]struct{}

func NewPermissionSet(codes ...PermissionCode) PermissionSet {
	set := make(PermissionSet, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}

func (s PermissionSet) Has(code PermissionCode) bool {
	_, ok := s[code]
	return ok
}

// Codes returns the set as a sorted slice, for stable serialization.
func (s PermissionSet) Codes() []PermissionCode {
	codes := make([]PermissionCode, 0, len(s))
	for c := range s {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
