package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	"github.com/clinicore/clinic-api/internal/service/identity"
	"github.com/clinicore/clinic-api/pkg/auth"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
)

type fakeAccounts struct {
	repository.AccountRepository
	account *model.Account
	role    *model.Role
}

func (f *fakeAccounts) GetByEmailWithRole(ctx context.Context, email string) (*model.Account, *model.Role, error) {
	if f.account == nil || f.account.Email != email {
		return nil, nil, apperrors.NotFound("account", nil)
	}
	return f.account, f.role, nil
}

type fakeRBAC struct {
	repository.RBACRepository
	perms []*model.Permission
}

func (f *fakeRBAC) ListRolePermissions(ctx context.Context, roleID uuid.UUID) ([]*model.Permission, error) {
	return f.perms, nil
}

type fakeClinicians struct{ repository.ClinicianRepository }

func (fakeClinicians) GetByAccountID(ctx context.Context, id uuid.UUID) (*model.ClinicianProfile, error) {
	return nil, apperrors.NotFound("clinician", nil)
}

type fakePatients struct{ repository.PatientRepository }

func (fakePatients) GetByAccountID(ctx context.Context, id uuid.UUID) (*model.PatientProfile, error) {
	return nil, apperrors.NotFound("patient", nil)
}

func testRouter(t *testing.T, required model.PermissionCode, perms ...model.PermissionCode) (*gin.Engine, auth.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := auth.NewJWTService("test-secret")
	role := &model.Role{Base: model.Base{ID: uuid.New()}, Name: model.RoleReceptionist}
	account := &model.Account{
		Base:   model.Base{ID: uuid.New()},
		Email:  "desk@clinic.test",
		RoleID: role.ID,
	}

	permRows := make([]*model.Permission, 0, len(perms))
	for _, p := range perms {
		permRows = append(permRows, &model.Permission{Code: p})
	}

	resolver := identity.NewResolver(
		tokens,
		&fakeAccounts{account: account, role: role},
		&fakeRBAC{perms: permRows},
		fakeClinicians{},
		fakePatients{},
	)
	authMW := NewAuthMiddleware(resolver, nil)

	r := gin.New()
	r.GET("/guarded",
		authMW.Authenticate(),
		authMW.RequirePermission(required),
		func(c *gin.Context) {
			principal := PrincipalFromContext(c)
			c.JSON(http.StatusOK, gin.H{"email": principal.Email})
		},
	)
	return r, tokens
}

func doRequest(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticateAndAuthorize(t *testing.T) {
	r, tokens := testRouter(t, model.PermAppointmentRead, model.PermAppointmentRead)

	token, err := tokens.Issue("desk@clinic.test", time.Hour)
	require.NoError(t, err)

	w := doRequest(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "desk@clinic.test")
}

func TestMissingHeader(t *testing.T) {
	r, _ := testRouter(t, model.PermAppointmentRead, model.PermAppointmentRead)

	w := doRequest(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMalformedHeader(t *testing.T) {
	r, _ := testRouter(t, model.PermAppointmentRead, model.PermAppointmentRead)

	w := doRequest(r, "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInvalidToken(t *testing.T) {
	r, _ := testRouter(t, model.PermAppointmentRead, model.PermAppointmentRead)

	w := doRequest(r, "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExpiredTokenStatus(t *testing.T) {
	r, tokens := testRouter(t, model.PermAppointmentRead, model.PermAppointmentRead)

	token, err := tokens.Issue("desk@clinic.test", -time.Minute)
	require.NoError(t, err)

	w := doRequest(r, "Bearer "+token)
	assert.Equal(t, apperrors.StatusTokenExpired, w.Code)
}

func TestMissingPermission(t *testing.T) {
	r, tokens := testRouter(t, model.PermAccountDelete, model.PermAppointmentRead)

	token, err := tokens.Issue("desk@clinic.test", time.Hour)
	require.NoError(t, err)

	w := doRequest(r, "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUnknownSubject(t *testing.T) {
	r, tokens := testRouter(t, model.PermAppointmentRead, model.PermAppointmentRead)

	// Valid signature, but the subject no longer resolves to a live account.
	token, err := tokens.Issue("deleted@clinic.test", time.Hour)
	require.NoError(t, err)

	w := doRequest(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
