package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	"github.com/clinicore/clinic-api/pkg/auth"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
)

// Resolver turns a bearer credential into a trusted, permission-annotated
// principal. Resolution is read-only and safe under concurrent execution.
type Resolver struct {
	tokens     auth.TokenService
	accounts   repository.AccountRepository
	rbac       repository.RBACRepository
	clinicians repository.ClinicianRepository
	patients   repository.PatientRepository
}

func NewResolver(
	tokens auth.TokenService,
	accounts repository.AccountRepository,
	rbac repository.RBACRepository,
	clinicians repository.ClinicianRepository,
	patients repository.PatientRepository,
) *Resolver {
	return &Resolver{
		tokens:     tokens,
		accounts:   accounts,
		rbac:       rbac,
		clinicians: clinicians,
		patients:   patients,
	}
}

// Resolve verifies the token and hydrates the full principal graph. A token
// whose subject no longer resolves to a live account fails Unauthenticated:
// soft-deleting an account implicitly invalidates its outstanding tokens.
func (r *Resolver) Resolve(ctx context.Context, token string) (*model.Principal, error) {
	subject, err := r.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, apperrors.TokenExpired(err)
		}
		return nil, apperrors.Unauthenticated("", err)
	}

	account, role, err := r.accounts.GetByEmailWithRole(ctx, subject)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthenticated("", err)
		}
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}

	return r.Hydrate(ctx, account, role)
}

// Hydrate materializes the permission set and the role-specific profile.
// Together with the account+role fetch this is a bounded number of
// associative queries; there is never a per-permission round trip, and
// permissions are re-read on every call so grant edits apply on the
// subject's next request.
func (r *Resolver) Hydrate(ctx context.Context, account *model.Account, role *model.Role) (*model.Principal, error) {
	perms, err := r.rbac.ListRolePermissions(ctx, role.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load role permissions: %w", err)
	}

	set := make(model.PermissionSet, len(perms))
	for _, p := range perms {
		set[p.Code] = struct{}{}
	}

	principal := &model.Principal{
		AccountID:   account.ID,
		Email:       account.Email,
		Role:        role,
		Permissions: set,
	}

	switch role.Name {
	case model.RoleClinician:
		profile, err := r.clinicians.GetByAccountID(ctx, account.ID)
		if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to load clinician profile: %w", err)
		}
		principal.Clinician = profile
	case model.RolePatient:
		profile, err := r.patients.GetByAccountID(ctx, account.ID)
		if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to load patient profile: %w", err)
		}
		principal.Patient = profile
	}

	return principal, nil
}
