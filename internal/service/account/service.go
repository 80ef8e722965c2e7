package account

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	"github.com/clinicore/clinic-api/internal/service/identity"
	"github.com/clinicore/clinic-api/pkg/auth"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
	"github.com/clinicore/clinic-api/pkg/messaging"
	"github.com/clinicore/clinic-api/pkg/security"
)

const eventsTopic = "clinic.events"

type Service struct {
	tx         repository.TxRunner
	accounts   repository.AccountRepository
	rbac       repository.RBACRepository
	clinicians repository.ClinicianRepository
	patients   repository.PatientRepository
	resolver   *identity.Resolver
	hasher     security.PasswordHasher
	tokens     auth.TokenService
	tokenTTL   time.Duration
	broker     messaging.Broker
}

func NewService(
	tx repository.TxRunner,
	accounts repository.AccountRepository,
	rbac repository.RBACRepository,
	clinicians repository.ClinicianRepository,
	patients repository.PatientRepository,
	resolver *identity.Resolver,
	hasher security.PasswordHasher,
	tokens auth.TokenService,
	tokenTTL time.Duration,
	broker messaging.Broker,
) *Service {
	return &Service{
		tx:         tx,
		accounts:   accounts,
		rbac:       rbac,
		clinicians: clinicians,
		patients:   patients,
		resolver:   resolver,
		hasher:     hasher,
		tokens:     tokens,
		tokenTTL:   tokenTTL,
		broker:     broker,
	}
}

// Register creates the account and, when the role requires one, its profile
// inside a single transaction. A duplicate email surfaces as Conflict from
// the store's uniqueness constraint; concurrent registrations are not
// serialized here.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.Principal, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}

	role, err := s.rbac.GetRoleByName(ctx, req.Role)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Validation("invalid role provided", err)
		}
		return nil, fmt.Errorf("failed to look up role: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Validation("invalid password", err)
	}

	account := &model.Account{
		Email:        req.Email,
		PasswordHash: hash,
		RoleID:       role.ID,
	}

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.accounts.CreateTx(ctx, tx, account); err != nil {
			return err
		}

		switch req.Role {
		case model.RoleClinician:
			profile := &model.ClinicianProfile{
				AccountID:     account.ID,
				FirstName:     req.FirstName,
				LastName:      req.LastName,
				Specialty:     req.Specialty,
				ContactNumber: req.ContactNumber,
			}
			return s.clinicians.CreateTx(ctx, tx, profile)
		case model.RolePatient:
			profile := &model.PatientProfile{
				AccountID:     account.ID,
				FirstName:     req.FirstName,
				LastName:      req.LastName,
				DateOfBirth:   *req.DateOfBirth,
				Gender:        req.Gender,
				ContactNumber: req.ContactNumber,
			}
			return s.patients.CreateTx(ctx, tx, profile)
		}
		return nil
	})
	if err != nil {
		if _, ok := apperrors.AsAppError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("failed to register account: %w", err)
	}

	s.publish(ctx, "account.registered", account.Email)

	return s.resolver.Hydrate(ctx, account, role)
}

// Login verifies credentials and issues a bearer token carrying only the
// subject; permissions are deliberately not embedded so grant edits apply
// immediately.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	account, role, err := s.accounts.GetByEmailWithRole(ctx, req.Email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthenticated("invalid credentials", err)
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := s.hasher.Compare(account.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthenticated("invalid credentials", err)
	}

	token, err := s.tokens.Issue(account.Email, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	principal, err := s.resolver.Hydrate(ctx, account, role)
	if err != nil {
		return nil, err
	}

	return &model.AuthResponse{
		AccessToken: token,
		Principal:   principal.View(),
	}, nil
}

func (s *Service) publish(ctx context.Context, eventType, subject string) {
	if s.broker == nil {
		return
	}
	payload, _ := json.Marshal(map[string]string{"email": subject})
	event := &messaging.Event{Type: eventType, Payload: payload}
	if err := s.broker.Publish(ctx, eventsTopic, event); err != nil {
		log.Warn().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}
