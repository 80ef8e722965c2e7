package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
)

type rbacRepository struct {
	BaseRepository
}

func NewRBACRepository(base BaseRepository) repository.RBACRepository {
	return &rbacRepository{base}
}

func (r *rbacRepository) GetRoleByName(ctx context.Context, name model.RoleName) (*model.Role, error) {
	query := `SELECT * FROM roles WHERE name = $1 AND is_deleted = FALSE`

	var role model.Role
	if err := r.db.GetContext(ctx, &role, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("role", err)
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return &role, nil
}

func (r *rbacRepository) ListRoles(ctx context.Context) ([]*model.Role, error) {
	query := `SELECT * FROM roles WHERE is_deleted = FALSE ORDER BY name ASC`

	var roles []*model.Role
	if err := r.db.SelectContext(ctx, &roles, query); err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

func (r *rbacRepository) ListPermissions(ctx context.Context) ([]*model.Permission, error) {
	query := `SELECT * FROM permissions WHERE is_deleted = FALSE ORDER BY code ASC`

	var permissions []*model.Permission
	if err := r.db.SelectContext(ctx, &permissions, query); err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	return permissions, nil
}

func (r *rbacRepository) GetPermissionByCode(ctx context.Context, code model.PermissionCode) (*model.Permission, error) {
	query := `SELECT * FROM permissions WHERE code = $1 AND is_deleted = FALSE`

	var permission model.Permission
	if err := r.db.GetContext(ctx, &permission, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("permission", err)
		}
		return nil, fmt.Errorf("failed to get permission: %w", err)
	}
	return &permission, nil
}

// ListRolePermissions resolves the role's full grant set in one joined
// query; the resolver depends on this staying a single round trip.
func (r *rbacRepository) ListRolePermissions(ctx context.Context, roleID uuid.UUID) ([]*model.Permission, error) {
	query := `
		SELECT p.*
		FROM permissions p
		JOIN role_grants rg ON rg.permission_id = p.id
		WHERE rg.role_id = $1 AND p.is_deleted = FALSE AND rg.is_deleted = FALSE
		ORDER BY p.code ASC
	`

	var permissions []*model.Permission
	if err := r.db.SelectContext(ctx, &permissions, query, roleID); err != nil {
		return nil, fmt.Errorf("failed to list role permissions: %w", err)
	}
	return permissions, nil
}

// GrantPermission inserts the grant, or revives the soft-deleted row a
// prior revoke left behind. An already-active grant matches the conflict
// but not the update filter, so zero rows change and the caller gets a
// Conflict instead of a silent no-op.
func (r *rbacRepository) GrantPermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	query := `
		INSERT INTO role_grants (id, role_id, permission_id, created_at, updated_at, is_deleted)
		VALUES ($1, $2, $3, $4, $4, FALSE)
		ON CONFLICT (role_id, permission_id) DO UPDATE
			SET is_deleted = FALSE, updated_at = EXCLUDED.updated_at
			WHERE role_grants.is_deleted = TRUE
	`

	result, err := r.db.ExecContext(ctx, query, uuid.New(), roleID, permissionID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to grant permission: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.Conflict("permission already granted to role", nil)
	}
	return nil
}

func (r *rbacRepository) RevokePermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	query := `
		UPDATE role_grants SET is_deleted = TRUE, updated_at = $1
		WHERE role_id = $2 AND permission_id = $3 AND is_deleted = FALSE
	`

	result, err := r.db.ExecContext(ctx, query, time.Now(), roleID, permissionID)
	if err != nil {
		return fmt.Errorf("failed to revoke permission: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("role grant", nil)
	}
	return nil
}

func (r *rbacRepository) EnsureRole(ctx context.Context, name model.RoleName, description string, hasAll bool) (*model.Role, error) {
	query := `
		INSERT INTO roles (id, name, description, has_all_permissions, created_at, updated_at, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $5, FALSE)
		ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
		RETURNING *
	`

	var role model.Role
	if err := r.db.GetContext(ctx, &role, query, uuid.New(), name, description, hasAll, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to ensure role: %w", err)
	}
	return &role, nil
}

func (r *rbacRepository) EnsurePermission(ctx context.Context, code model.PermissionCode, description string) (*model.Permission, error) {
	query := `
		INSERT INTO permissions (id, code, description, created_at, updated_at, is_deleted)
		VALUES ($1, $2, $3, $4, $4, FALSE)
		ON CONFLICT (code) DO UPDATE SET description = EXCLUDED.description
		RETURNING *
	`

	var permission model.Permission
	if err := r.db.GetContext(ctx, &permission, query, uuid.New(), code, description, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to ensure permission: %w", err)
	}
	return &permission, nil
}

func (r *rbacRepository) EnsureGrant(ctx context.Context, roleID, permissionID uuid.UUID) error {
	query := `
		INSERT INTO role_grants (id, role_id, permission_id, created_at, updated_at, is_deleted)
		VALUES ($1, $2, $3, $4, $4, FALSE)
		ON CONFLICT (role_id, permission_id) DO NOTHING
	`

	if _, err := r.db.ExecContext(ctx, query, uuid.New(), roleID, permissionID, time.Now()); err != nil {
		return fmt.Errorf("failed to ensure grant: %w", err)
	}
	return nil
}
