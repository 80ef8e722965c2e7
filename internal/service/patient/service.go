package patient

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
	patients     repository.PatientRepository
	appointments repository.AppointmentRepository
	records      repository.MedicalRecordRepository
	deleter      *softdelete.Coordinator
	hasher       security.PasswordHasher
}

func NewService(
	tx repository.TxRunner,
	accounts repository.AccountRepository,
	rbac repository.RBACRepository,
	patients repository.PatientRepository,
	appointments repository.AppointmentRepository,
	records repository.MedicalRecordRepository,
	deleter *softdelete.Coordinator,
	hasher security.PasswordHasher,
) *Service {
	return &Service{
		tx:           tx,
		accounts:     accounts,
		rbac:         rbac,
		patients:     patients,
		appointments: appointments,
		records:      records,
		deleter:      deleter,
		hasher:       hasher,
	}
}

// Create provisions a patient account and its profile atomically.
func (s *Service) Create(ctx context.Context, req *model.CreatePatientRequest) (*model.PatientProfile, error) {
	role, err := s.rbac.GetRoleByName(ctx, model.RolePatient)
	if err != nil {
		return nil, fmt.Errorf("failed to look up patient role: %w", err)
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
	profile := &model.PatientProfile{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		DateOfBirth:   req.DateOfBirth,
		Gender:        req.Gender,
		ContactNumber: req.ContactNumber,
	}

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.accounts.CreateTx(ctx, tx, account); err != nil {
			return err
		}
		profile.AccountID = account.ID
		return s.patients.CreateTx(ctx, tx, profile)
	})
	if err != nil {
		if _, ok := apperrors.AsAppError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	return profile, nil
}

// Get returns the profile with its account, appointments and records.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.PatientDetail, error) {
	profile, err := s.patients.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.Get(ctx, profile.AccountID)
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	appointments, err := s.appointments.ListByPatient(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}

	records, err := s.records.ListByPatient(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	return &model.PatientDetail{
		PatientProfile: *profile,
		Account:        account,
		Appointments:   appointments,
		Records:        records,
	}, nil
}

// List scopes the result to the caller: a clinician sees only patients they
// have live appointments with, everyone else with patient:read sees all.
func (s *Service) List(ctx context.Context, principal *model.Principal) ([]*model.PatientProfile, error) {
	if principal != nil && principal.Clinician != nil {
		return s.patients.ListByClinician(ctx, principal.Clinician.ID)
	}
	return s.patients.List(ctx)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.PatientProfile, error) {
	profile, err := s.patients.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		profile.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		profile.LastName = *req.LastName
	}
	if req.DateOfBirth != nil {
		profile.DateOfBirth = *req.DateOfBirth
	}
	if req.Gender != nil {
		profile.Gender = *req.Gender
	}
	if req.ContactNumber != nil {
		profile.ContactNumber = *req.ContactNumber
	}

	if err := s.patients.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Delete soft-deletes the profile and cascades to its account.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	profile, err := s.patients.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.deleter.DeletePatient(ctx, profile)
}
