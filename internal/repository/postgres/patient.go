package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
)

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

func (r *patientRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, profile *model.PatientProfile) error {
	query := `
		INSERT INTO patient_profiles (
			id, account_id, first_name, last_name, date_of_birth, gender, contact_number,
			created_at, updated_at, is_deleted
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE)
	`

	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = profile.CreatedAt

	_, err := tx.ExecContext(ctx, query,
		profile.ID,
		profile.AccountID,
		profile.FirstName,
		profile.LastName,
		profile.DateOfBirth,
		profile.Gender,
		profile.ContactNumber,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("account already has a patient profile", err)
		}
		return fmt.Errorf("failed to create patient profile: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.PatientProfile, error) {
	query := `SELECT * FROM patient_profiles WHERE id = $1 AND is_deleted = FALSE`

	var profile model.PatientProfile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &profile, nil
}

func (r *patientRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*model.PatientProfile, error) {
	query := `SELECT * FROM patient_profiles WHERE account_id = $1 AND is_deleted = FALSE`

	var profile model.PatientProfile
	if err := r.db.GetContext(ctx, &profile, query, accountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient by account: %w", err)
	}
	return &profile, nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.PatientProfile, error) {
	query := `SELECT * FROM patient_profiles WHERE is_deleted = FALSE ORDER BY last_name, first_name`

	var profiles []*model.PatientProfile
	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return profiles, nil
}

func (r *patientRepository) ListByClinician(ctx context.Context, clinicianID uuid.UUID) ([]*model.PatientProfile, error) {
	query := `
		SELECT DISTINCT p.*
		FROM patient_profiles p
		JOIN appointments a ON a.patient_id = p.id
		WHERE a.clinician_id = $1 AND a.is_deleted = FALSE AND p.is_deleted = FALSE
	`

	var profiles []*model.PatientProfile
	if err := r.db.SelectContext(ctx, &profiles, query, clinicianID); err != nil {
		return nil, fmt.Errorf("failed to list patients for clinician: %w", err)
	}
	return profiles, nil
}

func (r *patientRepository) Update(ctx context.Context, profile *model.PatientProfile) error {
	query := `
		UPDATE patient_profiles SET
			first_name = $1, last_name = $2, date_of_birth = $3, gender = $4,
			contact_number = $5, updated_at = $6
		WHERE id = $7 AND is_deleted = FALSE
	`

	profile.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query,
		profile.FirstName,
		profile.LastName,
		profile.DateOfBirth,
		profile.Gender,
		profile.ContactNumber,
		profile.UpdatedAt,
		profile.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("patient", nil)
	}
	return nil
}

func (r *patientRepository) SoftDeleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	query := `UPDATE patient_profiles SET is_deleted = TRUE, updated_at = $1 WHERE id = $2`

	if _, err := tx.ExecContext(ctx, query, time.Now(), id); err != nil {
		return fmt.Errorf("failed to soft delete patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Count(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM patient_profiles WHERE is_deleted = FALSE`

	var count int64
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("failed to count patients: %w", err)
	}
	return count, nil
}
