package account

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	"github.com/clinicore/clinic-api/internal/service/identity"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
	"github.com/clinicore/clinic-api/pkg/security"
)

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

type fakeTokens struct{ issued string }

func (f *fakeTokens) Issue(subject string, ttl time.Duration) (string, error) {
	f.issued = subject
	return "signed-token-for-" + subject, nil
}
func (f *fakeTokens) Verify(string) (string, error) { return "", nil }

type fakeAccounts struct {
	repository.AccountRepository
	created   []*model.Account
	createErr error
	byEmail   map[string]*model.Account
	roles     map[string]*model.Role
}

func (f *fakeAccounts) CreateTx(ctx context.Context, tx *sqlx.Tx, account *model.Account) error {
	if f.createErr != nil {
		return f.createErr
	}
	account.ID = uuid.New()
	f.created = append(f.created, account)
	return nil
}

func (f *fakeAccounts) GetByEmailWithRole(ctx context.Context, email string) (*model.Account, *model.Role, error) {
	account, ok := f.byEmail[email]
	if !ok {
		return nil, nil, apperrors.NotFound("account", nil)
	}
	return account, f.roles[email], nil
}

type fakeRBAC struct {
	repository.RBACRepository
	roles map[model.RoleName]*model.Role
}

func (f *fakeRBAC) GetRoleByName(ctx context.Context, name model.RoleName) (*model.Role, error) {
	role, ok := f.roles[name]
	if !ok {
		return nil, apperrors.NotFound("role", nil)
	}
	return role, nil
}

func (f *fakeRBAC) ListRolePermissions(ctx context.Context, roleID uuid.UUID) ([]*model.Permission, error) {
	return []*model.Permission{{Code: model.PermAppointmentRead}}, nil
}

type fakeClinicians struct {
	repository.ClinicianRepository
	created []*model.ClinicianProfile
}

func (f *fakeClinicians) CreateTx(ctx context.Context, tx *sqlx.Tx, profile *model.ClinicianProfile) error {
	profile.ID = uuid.New()
	f.created = append(f.created, profile)
	return nil
}

func (f *fakeClinicians) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*model.ClinicianProfile, error) {
	for _, p := range f.created {
		if p.AccountID == accountID {
			return p, nil
		}
	}
	return nil, apperrors.NotFound("clinician", nil)
}

type fakePatients struct {
	repository.PatientRepository
	created []*model.PatientProfile
}

func (f *fakePatients) CreateTx(ctx context.Context, tx *sqlx.Tx, profile *model.PatientProfile) error {
	profile.ID = uuid.New()
	f.created = append(f.created, profile)
	return nil
}

func (f *fakePatients) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*model.PatientProfile, error) {
	for _, p := range f.created {
		if p.AccountID == accountID {
			return p, nil
		}
	}
	return nil, apperrors.NotFound("patient", nil)
}

type fixture struct {
	accounts   *fakeAccounts
	rbac       *fakeRBAC
	clinicians *fakeClinicians
	patients   *fakePatients
	tokens     *fakeTokens
	hasher     security.PasswordHasher
	svc        *Service
}

func newFixture() *fixture {
	roles := map[model.RoleName]*model.Role{}
	for _, name := range model.RoleNames {
		roles[name] = &model.Role{
			Base:              model.Base{ID: uuid.New()},
			Name:              name,
			HasAllPermissions: name == model.RoleAdmin,
		}
	}

	f := &fixture{
		accounts:   &fakeAccounts{byEmail: map[string]*model.Account{}, roles: map[string]*model.Role{}},
		rbac:       &fakeRBAC{roles: roles},
		clinicians: &fakeClinicians{},
		patients:   &fakePatients{},
		tokens:     &fakeTokens{},
		hasher:     security.NewBcryptHasher(bcrypt.MinCost),
	}
	resolver := identity.NewResolver(f.tokens, f.accounts, f.rbac, f.clinicians, f.patients)
	f.svc = NewService(fakeTx{}, f.accounts, f.rbac, f.clinicians, f.patients, resolver, f.hasher, f.tokens, time.Hour, nil)
	return f
}

func clinicianRequest() *model.RegisterRequest {
	return &model.RegisterRequest{
		Email:         "doc@clinic.test",
		Password:      "password123",
		Role:          model.RoleClinician,
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Specialty:     "cardiology",
		ContactNumber: "555-0100",
	}
}

func TestRegisterClinicianCreatesProfile(t *testing.T) {
	f := newFixture()

	principal, err := f.svc.Register(context.Background(), clinicianRequest())
	require.NoError(t, err)

	require.Len(t, f.accounts.created, 1)
	require.Len(t, f.clinicians.created, 1)
	assert.Equal(t, f.accounts.created[0].ID, f.clinicians.created[0].AccountID)
	require.NotNil(t, principal.Clinician)
	assert.True(t, principal.Permitted(model.PermAppointmentRead))

	// The password is stored hashed, never verbatim.
	assert.NotEqual(t, "password123", f.accounts.created[0].PasswordHash)
	assert.NoError(t, f.hasher.Compare(f.accounts.created[0].PasswordHash, "password123"))
}

func TestRegisterAdminSkipsProfile(t *testing.T) {
	f := newFixture()
	req := &model.RegisterRequest{
		Email:    "admin@clinic.test",
		Password: "password123",
		Role:     model.RoleAdmin,
	}

	principal, err := f.svc.Register(context.Background(), req)
	require.NoError(t, err)

	assert.Len(t, f.accounts.created, 1)
	assert.Empty(t, f.clinicians.created)
	assert.Empty(t, f.patients.created)
	assert.Nil(t, principal.Clinician)
	assert.Nil(t, principal.Patient)
}

func TestRegisterMissingProfileFields(t *testing.T) {
	f := newFixture()
	req := clinicianRequest()
	req.Specialty = ""

	_, err := f.svc.Register(context.Background(), req)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	assert.Empty(t, f.accounts.created)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture()
	f.accounts.createErr = apperrors.Conflict("email already registered", nil)

	_, err := f.svc.Register(context.Background(), clinicianRequest())
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestLoginHappyPath(t *testing.T) {
	f := newFixture()

	hash, err := f.hasher.Hash("password123")
	require.NoError(t, err)
	role := f.rbac.roles[model.RolePatient]
	account := &model.Account{
		Base:         model.Base{ID: uuid.New()},
		Email:        "pat@clinic.test",
		PasswordHash: hash,
		RoleID:       role.ID,
	}
	f.accounts.byEmail[account.Email] = account
	f.accounts.roles[account.Email] = role

	resp, err := f.svc.Login(context.Background(), &model.LoginRequest{
		Email:    account.Email,
		Password: "password123",
	})
	require.NoError(t, err)

	assert.Equal(t, "signed-token-for-pat@clinic.test", resp.AccessToken)
	require.NotNil(t, resp.Principal)
	assert.Equal(t, account.Email, resp.Principal.Email)
	assert.Equal(t, model.RolePatient, resp.Principal.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture()

	hash, _ := f.hasher.Hash("password123")
	role := f.rbac.roles[model.RolePatient]
	f.accounts.byEmail["pat@clinic.test"] = &model.Account{
		Base:         model.Base{ID: uuid.New()},
		Email:        "pat@clinic.test",
		PasswordHash: hash,
		RoleID:       role.ID,
	}
	f.accounts.roles["pat@clinic.test"] = role

	_, err := f.svc.Login(context.Background(), &model.LoginRequest{
		Email:    "pat@clinic.test",
		Password: "wrong-password",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthenticated))
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Login(context.Background(), &model.LoginRequest{
		Email:    "nobody@clinic.test",
		Password: "password123",
	})

	// Unknown account and bad password are indistinguishable to the caller.
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthenticated))
}
