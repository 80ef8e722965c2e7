package rbac

import (
	"context"
	"fmt"
	"strings"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
)

// allPermissions is the closed, versioned enumeration of capability codes.
// Extending it is a data change; the authorization gate never changes.
var allPermissions = []model.PermissionCode{
	model.PermAccountCreate, model.PermAccountRead, model.PermAccountUpdate, model.PermAccountDelete,
	model.PermClinicianCreate, model.PermClinicianRead, model.PermClinicianUpdate, model.PermClinicianDelete,
	model.PermPatientCreate, model.PermPatientRead, model.PermPatientUpdate, model.PermPatientDelete,
	model.PermAppointmentCreate, model.PermAppointmentRead, model.PermAppointmentUpdate, model.PermAppointmentDelete,
	model.PermRecordCreate, model.PermRecordRead, model.PermRecordUpdate, model.PermRecordDelete,
	model.PermStatsRead,
	model.PermRoleRead, model.PermRoleUpdate,
}

// seedGrants is the startup catalog: role -> granted permission codes. The
// admin role additionally carries has_all_permissions, so its row set here
// only documents the default; request-time checks never consult this table.
// After seeding, grants live in role_grants and are editable at runtime.
var seedGrants = map[model.RoleName][]model.PermissionCode{
	model.RoleAdmin: allPermissions,
	model.RoleClinician: {
		model.PermAppointmentRead,
		model.PermRecordCreate, model.PermRecordRead, model.PermRecordUpdate, model.PermRecordDelete,
		model.PermPatientRead,
	},
	model.RoleReceptionist: {
		model.PermAppointmentCreate, model.PermAppointmentRead,
		model.PermAppointmentUpdate, model.PermAppointmentDelete,
		model.PermPatientRead,
	},
	model.RolePatient: {
		model.PermAppointmentRead,
		model.PermPatientRead,
	},
}

var roleDescriptions = map[model.RoleName]string{
	model.RoleAdmin:        "Full access to every operation",
	model.RoleClinician:    "Treats patients and maintains their records",
	model.RoleReceptionist: "Manages the appointment book",
	model.RolePatient:      "Views own appointments and profile",
}

type Service struct {
	repo repository.RBACRepository
}

func NewService(repo repository.RBACRepository) *Service {
	return &Service{repo: repo}
}

// GrantsOf returns the seed catalog's grant set for a role. It exists only
// to (re)populate role_grants rows; the authoritative permission set at
// request time always comes from the materialized grants.
func (s *Service) GrantsOf(role model.RoleName) []model.PermissionCode {
	return seedGrants[role]
}

// Seed persists roles, permissions and role grants idempotently. Once
// seeded, an administrator can edit grants without a redeploy.
func (s *Service) Seed(ctx context.Context) error {
	roles := make(map[model.RoleName]*model.Role, len(model.RoleNames))
	for _, name := range model.RoleNames {
		role, err := s.repo.EnsureRole(ctx, name, roleDescriptions[name], name == model.RoleAdmin)
		if err != nil {
			return fmt.Errorf("failed to seed role %s: %w", name, err)
		}
		roles[name] = role
	}

	perms := make(map[model.PermissionCode]*model.Permission, len(allPermissions))
	for _, code := range allPermissions {
		perm, err := s.repo.EnsurePermission(ctx, code, describe(code))
		if err != nil {
			return fmt.Errorf("failed to seed permission %s: %w", code, err)
		}
		perms[code] = perm
	}

	for name, codes := range seedGrants {
		for _, code := range codes {
			if err := s.repo.EnsureGrant(ctx, roles[name].ID, perms[code].ID); err != nil {
				return fmt.Errorf("failed to seed grant %s -> %s: %w", name, code, err)
			}
		}
	}
	return nil
}

func (s *Service) ListRoles(ctx context.Context) ([]*model.Role, error) {
	return s.repo.ListRoles(ctx)
}

func (s *Service) ListPermissions(ctx context.Context) ([]*model.Permission, error) {
	return s.repo.ListPermissions(ctx)
}

func (s *Service) ListRoleGrants(ctx context.Context, role model.RoleName) ([]*model.Permission, error) {
	r, err := s.repo.GetRoleByName(ctx, role)
	if err != nil {
		return nil, err
	}
	return s.repo.ListRolePermissions(ctx, r.ID)
}

// Grant adds a permission to a role at runtime; it takes effect on the
// grantee's very next request since principals re-hydrate per request.
func (s *Service) Grant(ctx context.Context, role model.RoleName, code model.PermissionCode) error {
	r, err := s.repo.GetRoleByName(ctx, role)
	if err != nil {
		return err
	}
	perm, err := s.repo.GetPermissionByCode(ctx, code)
	if err != nil {
		return err
	}
	return s.repo.GrantPermission(ctx, r.ID, perm.ID)
}

func (s *Service) Revoke(ctx context.Context, role model.RoleName, code model.PermissionCode) error {
	r, err := s.repo.GetRoleByName(ctx, role)
	if err != nil {
		return err
	}
	perm, err := s.repo.GetPermissionByCode(ctx, code)
	if err != nil {
		return err
	}
	return s.repo.RevokePermission(ctx, r.ID, perm.ID)
}

func describe(code model.PermissionCode) string {
	return strings.ReplaceAll(string(code), ":", " ")
}
