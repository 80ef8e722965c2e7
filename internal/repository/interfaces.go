package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clinicore/clinic-api/internal/model"
)

// TxRunner executes a function within a single database transaction; either
// all of the function's writes land, or none do.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

// All repository interfaces in one file. Every read excludes soft-deleted
// rows; the Tx variants run against a caller-supplied transaction.
type (
	AccountRepository interface {
		CreateTx(ctx context.Context, tx *sqlx.Tx, account *model.Account) error
		Get(ctx context.Context, id uuid.UUID) (*model.Account, error)
		// GetByEmailWithRole fetches the account and its role in one
		// associative query.
		GetByEmailWithRole(ctx context.Context, email string) (*model.Account, *model.Role, error)
		SoftDeleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error
	}

	RBACRepository interface {
		GetRoleByName(ctx context.Context, name model.RoleName) (*model.Role, error)
		ListRoles(ctx context.Context) ([]*model.Role, error)
		ListPermissions(ctx context.Context) ([]*model.Permission, error)
		GetPermissionByCode(ctx context.Context, code model.PermissionCode) (*model.Permission, error)
		// ListRolePermissions returns every permission reachable through the
		// role's grants in a single joined query.
		ListRolePermissions(ctx context.Context, roleID uuid.UUID) ([]*model.Permission, error)
		GrantPermission(ctx context.Context, roleID, permissionID uuid.UUID) error
		RevokePermission(ctx context.Context, roleID, permissionID uuid.UUID) error

		// Seed helpers; all idempotent.
		EnsureRole(ctx context.Context, name model.RoleName, description string, hasAll bool) (*model.Role, error)
		EnsurePermission(ctx context.Context, code model.PermissionCode, description string) (*model.Permission, error)
		EnsureGrant(ctx context.Context, roleID, permissionID uuid.UUID) error
	}

	ClinicianRepository interface {
		CreateTx(ctx context.Context, tx *sqlx.Tx, profile *model.ClinicianProfile) error
		Get(ctx context.Context, id uuid.UUID) (*model.ClinicianProfile, error)
		GetByAccountID(ctx context.Context, accountID uuid.UUID) (*model.ClinicianProfile, error)
		List(ctx context.Context) ([]*model.ClinicianProfile, error)
		Update(ctx context.Context, profile *model.ClinicianProfile) error
		SoftDeleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error
		Count(ctx context.Context) (int64, error)
	}

	PatientRepository interface {
		CreateTx(ctx context.Context, tx *sqlx.Tx, profile *model.PatientProfile) error
		Get(ctx context.Context, id uuid.UUID) (*model.PatientProfile, error)
		GetByAccountID(ctx context.Context, accountID uuid.UUID) (*model.PatientProfile, error)
		List(ctx context.Context) ([]*model.PatientProfile, error)
		// ListByClinician returns the patients reachable from a clinician's
		// live appointments.
		ListByClinician(ctx context.Context, clinicianID uuid.UUID) ([]*model.PatientProfile, error)
		Update(ctx context.Context, profile *model.PatientProfile) error
		SoftDeleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error
		Count(ctx context.Context) (int64, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		List(ctx context.Context) ([]*model.Appointment, error)
		ListByClinician(ctx context.Context, clinicianID uuid.UUID) ([]*model.Appointment, error)
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		SoftDelete(ctx context.Context, id uuid.UUID) error
		Count(ctx context.Context) (int64, error)
	}

	MedicalRecordRepository interface {
		Create(ctx context.Context, record *model.MedicalRecord) error
		Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error)
		List(ctx context.Context) ([]*model.MedicalRecord, error)
		// ListByClinician optionally narrows to a single patient.
		ListByClinician(ctx context.Context, clinicianID uuid.UUID, patientID *uuid.UUID) ([]*model.MedicalRecord, error)
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error)
		Update(ctx context.Context, record *model.MedicalRecord) error
		SoftDelete(ctx context.Context, id uuid.UUID) error
		Count(ctx context.Context) (int64, error)
	}
)
