package rbac

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
)

type seededRole struct {
	role   *model.Role
	hasAll bool
}

type fakeRepo struct {
	repository.RBACRepository
	roles  map[model.RoleName]*seededRole
	perms  map[model.PermissionCode]*model.Permission
	grants map[uuid.UUID]map[uuid.UUID]int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		roles:  make(map[model.RoleName]*seededRole),
		perms:  make(map[model.PermissionCode]*model.Permission),
		grants: make(map[uuid.UUID]map[uuid.UUID]int),
	}
}

func (f *fakeRepo) EnsureRole(ctx context.Context, name model.RoleName, description string, hasAll bool) (*model.Role, error) {
	if existing, ok := f.roles[name]; ok {
		existing.hasAll = hasAll
		return existing.role, nil
	}
	role := &model.Role{
		Base:              model.Base{ID: uuid.New()},
		Name:              name,
		Description:       description,
		HasAllPermissions: hasAll,
	}
	f.roles[name] = &seededRole{role: role, hasAll: hasAll}
	return role, nil
}

func (f *fakeRepo) EnsurePermission(ctx context.Context, code model.PermissionCode, description string) (*model.Permission, error) {
	if existing, ok := f.perms[code]; ok {
		return existing, nil
	}
	perm := &model.Permission{
		Base:        model.Base{ID: uuid.New()},
		Code:        code,
		Description: description,
	}
	f.perms[code] = perm
	return perm, nil
}

func (f *fakeRepo) EnsureGrant(ctx context.Context, roleID, permissionID uuid.UUID) error {
	if f.grants[roleID] == nil {
		f.grants[roleID] = make(map[uuid.UUID]int)
	}
	f.grants[roleID][permissionID]++
	return nil
}

func (f *fakeRepo) GetRoleByName(ctx context.Context, name model.RoleName) (*model.Role, error) {
	if seeded, ok := f.roles[name]; ok {
		return seeded.role, nil
	}
	return nil, apperrors.NotFound("role", nil)
}

func (f *fakeRepo) GetPermissionByCode(ctx context.Context, code model.PermissionCode) (*model.Permission, error) {
	if perm, ok := f.perms[code]; ok {
		return perm, nil
	}
	return nil, apperrors.NotFound("permission", nil)
}

// A revoked grant keeps its map entry at zero, mirroring the soft-deleted
// row the store leaves behind; a later grant revives it.
func (f *fakeRepo) GrantPermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	if f.grants[roleID] == nil {
		f.grants[roleID] = make(map[uuid.UUID]int)
	}
	if f.grants[roleID][permissionID] > 0 {
		return apperrors.Conflict("permission already granted to role", nil)
	}
	f.grants[roleID][permissionID] = 1
	return nil
}

func (f *fakeRepo) RevokePermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	if f.grants[roleID][permissionID] == 0 {
		return apperrors.NotFound("role grant", nil)
	}
	f.grants[roleID][permissionID] = 0
	return nil
}

func (f *fakeRepo) ListRolePermissions(ctx context.Context, roleID uuid.UUID) ([]*model.Permission, error) {
	var out []*model.Permission
	for _, perm := range f.perms {
		if f.grants[roleID][perm.ID] > 0 {
			out = append(out, perm)
		}
	}
	return out, nil
}

func TestSeedCreatesCatalog(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	require.NoError(t, svc.Seed(context.Background()))

	assert.Len(t, repo.roles, len(model.RoleNames))
	assert.Len(t, repo.perms, len(allPermissions))

	// Only the admin role bypasses permission checks.
	for name, seeded := range repo.roles {
		assert.Equal(t, name == model.RoleAdmin, seeded.hasAll, "role %s", name)
	}
}

func TestSeedGrantsMatchCatalog(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	require.NoError(t, svc.Seed(context.Background()))

	for name, codes := range seedGrants {
		roleID := repo.roles[name].role.ID
		assert.Len(t, repo.grants[roleID], len(codes), "role %s", name)
		for _, code := range codes {
			permID := repo.perms[code].ID
			assert.Contains(t, repo.grants[roleID], permID, "role %s missing %s", name, code)
		}
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	require.NoError(t, svc.Seed(context.Background()))
	firstRoles := len(repo.roles)
	firstPerms := len(repo.perms)

	require.NoError(t, svc.Seed(context.Background()))

	assert.Equal(t, firstRoles, len(repo.roles))
	assert.Equal(t, firstPerms, len(repo.perms))
}

func TestClinicianGrantsScopedToCare(t *testing.T) {
	grants := model.NewPermissionSet(seedGrants[model.RoleClinician]...)

	assert.True(t, grants.Has(model.PermRecordCreate))
	assert.True(t, grants.Has(model.PermAppointmentRead))
	assert.True(t, grants.Has(model.PermPatientRead))
	assert.False(t, grants.Has(model.PermAppointmentCreate))
	assert.False(t, grants.Has(model.PermAccountDelete))
}

func TestPatientGrantsReadOnly(t *testing.T) {
	grants := model.NewPermissionSet(seedGrants[model.RolePatient]...)

	assert.True(t, grants.Has(model.PermAppointmentRead))
	assert.True(t, grants.Has(model.PermPatientRead))
	assert.False(t, grants.Has(model.PermRecordRead))
	assert.False(t, grants.Has(model.PermAppointmentCreate))
}

func codesOf(perms []*model.Permission) []model.PermissionCode {
	out := make([]model.PermissionCode, 0, len(perms))
	for _, p := range perms {
		out = append(out, p.Code)
	}
	return out
}

func TestRevokeThenGrantRestoresPermission(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo)
	require.NoError(t, svc.Seed(ctx))

	require.NoError(t, svc.Revoke(ctx, model.RoleClinician, model.PermRecordCreate))
	perms, err := svc.ListRoleGrants(ctx, model.RoleClinician)
	require.NoError(t, err)
	assert.NotContains(t, codesOf(perms), model.PermRecordCreate)

	require.NoError(t, svc.Grant(ctx, model.RoleClinician, model.PermRecordCreate))
	perms, err = svc.ListRoleGrants(ctx, model.RoleClinician)
	require.NoError(t, err)
	assert.Contains(t, codesOf(perms), model.PermRecordCreate)
}

func TestGrantActivePermissionConflicts(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo)
	require.NoError(t, svc.Seed(ctx))

	err := svc.Grant(ctx, model.RoleClinician, model.PermRecordCreate)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestRevokeMissingGrant(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo)
	require.NoError(t, svc.Seed(ctx))

	err := svc.Revoke(ctx, model.RolePatient, model.PermAccountDelete)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "record create", describe(model.PermRecordCreate))
}
