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

type clinicianRepository struct {
	BaseRepository
}

func NewClinicianRepository(base BaseRepository) repository.ClinicianRepository {
	return &clinicianRepository{base}
}

func (r *clinicianRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, profile *model.ClinicianProfile) error {
	query := `
		INSERT INTO clinician_profiles (
			id, account_id, first_name, last_name, specialty, contact_number,
			created_at, updated_at, is_deleted
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE)
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
		profile.Specialty,
		profile.ContactNumber,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("account already has a clinician profile", err)
		}
		return fmt.Errorf("failed to create clinician profile: %w", err)
	}
	return nil
}

func (r *clinicianRepository) Get(ctx context.Context, id uuid.UUID) (*model.ClinicianProfile, error) {
	query := `SELECT * FROM clinician_profiles WHERE id = $1 AND is_deleted = FALSE`

	var profile model.ClinicianProfile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("clinician", err)
		}
		return nil, fmt.Errorf("failed to get clinician: %w", err)
	}
	return &profile, nil
}

func (r *clinicianRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*model.ClinicianProfile, error) {
	query := `SELECT * FROM clinician_profiles WHERE account_id = $1 AND is_deleted = FALSE`

	var profile model.ClinicianProfile
	if err := r.db.GetContext(ctx, &profile, query, accountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("clinician", err)
		}
		return nil, fmt.Errorf("failed to get clinician by account: %w", err)
	}
	return &profile, nil
}

func (r *clinicianRepository) List(ctx context.Context) ([]*model.ClinicianProfile, error) {
	query := `SELECT * FROM clinician_profiles WHERE is_deleted = FALSE ORDER BY last_name, first_name`

	var profiles []*model.ClinicianProfile
	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, fmt.Errorf("failed to list clinicians: %w", err)
	}
	return profiles, nil
}

func (r *clinicianRepository) Update(ctx context.Context, profile *model.ClinicianProfile) error {
	query := `
		UPDATE clinician_profiles SET
			first_name = $1, last_name = $2, specialty = $3, contact_number = $4, updated_at = $5
		WHERE id = $6 AND is_deleted = FALSE
	`

	profile.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query,
		profile.FirstName,
		profile.LastName,
		profile.Specialty,
		profile.ContactNumber,
		profile.UpdatedAt,
		profile.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update clinician: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("clinician", nil)
	}
	return nil
}

func (r *clinicianRepository) SoftDeleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	query := `UPDATE clinician_profiles SET is_deleted = TRUE, updated_at = $1 WHERE id = $2`

	if _, err := tx.ExecContext(ctx, query, time.Now(), id); err != nil {
		return fmt.Errorf("failed to soft delete clinician: %w", err)
	}
	return nil
}

func (r *clinicianRepository) Count(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM clinician_profiles WHERE is_deleted = FALSE`

	var count int64
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("failed to count clinicians: %w", err)
	}
	return count, nil
}
