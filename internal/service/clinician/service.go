package clinician

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	"github.com/clinicore/clinic-api/internal/service/softdelete"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
	"github.com/clinicore/clinic-api/pkg/security"
)

type Service struct {
	tx           repository.TxRunner
	accounts     repository.AccountRepository
	rbac         repository.RBACRepository
	clinicians   repository.ClinicianRepository
	appointments repository.AppointmentRepository
	records      repository.MedicalRecordRepository
	deleter      *softdelete.Coordinator
	hasher       security.PasswordHasher
}

func NewService(
	tx repository.TxRunner,
	accounts repository.AccountRepository,
	rbac repository.RBACRepository,
	clinicians repository.ClinicianRepository,
	appointments repository.AppointmentRepository,
	records repository.MedicalRecordRepository,
	deleter *softdelete.Coordinator,
	hasher security.PasswordHasher,
) *Service {
	return &Service{
		tx:           tx,
		accounts:     accounts,
		rbac:         rbac,
		clinicians:   clinicians,
		appointments: appointments,
		records:      records,
		deleter:      deleter,
		hasher:       hasher,
	}
}

// Create provisions a clinician account and its profile atomically.
func (s *Service) Create(ctx context.Context, req *model.CreateClinicianRequest) (*model.ClinicianProfile, error) {
	role, err := s.rbac.GetRoleByName(ctx, model.RoleClinician)
	if err != nil {
		return nil, fmt.Errorf("failed to look up clinician role: %w", err)
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
	profile := &model.ClinicianProfile{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Specialty:     req.Specialty,
		ContactNumber: req.ContactNumber,
	}

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.accounts.CreateTx(ctx, tx, account); err != nil {
			return err
		}
		profile.AccountID = account.ID
		return s.clinicians.CreateTx(ctx, tx, profile)
	})
	if err != nil {
		if _, ok := apperrors.AsAppError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create clinician: %w", err)
	}

	return profile, nil
}

// Get returns the profile with its account, appointments and records.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.ClinicianDetail, error) {
	profile, err := s.clinicians.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.Get(ctx, profile.AccountID)
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	appointments, err := s.appointments.ListByClinician(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}

	records, err := s.records.ListByClinician(ctx, profile.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	return &model.ClinicianDetail{
		ClinicianProfile: *profile,
		Account:          account,
		Appointments:     appointments,
		Records:          records,
	}, nil
}

func (s *Service) List(ctx context.Context) ([]*model.ClinicianProfile, error) {
	return s.clinicians.List(ctx)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateClinicianRequest) (*model.ClinicianProfile, error) {
	profile, err := s.clinicians.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		profile.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		profile.LastName = *req.LastName
	}
	if req.Specialty != nil {
		profile.Specialty = *req.Specialty
	}
	if req.ContactNumber != nil {
		profile.ContactNumber = *req.ContactNumber
	}

	if err := s.clinicians.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Delete soft-deletes the profile and cascades to its account. A repeat
// delete of an already-deleted profile reports NotFound from the lookup.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	profile, err := s.clinicians.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.deleter.DeleteClinician(ctx, profile)
}
