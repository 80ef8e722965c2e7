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

type medicalRecordRepository struct {
	BaseRepository
}

func NewMedicalRecordRepository(base BaseRepository) repository.MedicalRecordRepository {
	return &medicalRecordRepository{base}
}

func (r *medicalRecordRepository) Create(ctx context.Context, record *model.MedicalRecord) error {
	query := `
		INSERT INTO medical_records (
			id, clinician_id, patient_id, visit_date, diagnosis, treatment, notes,
			created_at, updated_at, is_deleted
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE)
	`

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.ClinicianID,
		record.PatientID,
		record.VisitDate,
		record.Diagnosis,
		record.Treatment,
		record.Notes,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medical record: %w", err)
	}
	return nil
}

func (r *medicalRecordRepository) Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error) {
	query := `SELECT * FROM medical_records WHERE id = $1 AND is_deleted = FALSE`

	var record model.MedicalRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("medical record", err)
		}
		return nil, fmt.Errorf("failed to get medical record: %w", err)
	}
	return &record, nil
}

func (r *medicalRecordRepository) List(ctx context.Context) ([]*model.MedicalRecord, error) {
	query := `SELECT * FROM medical_records WHERE is_deleted = FALSE ORDER BY visit_date DESC`

	var records []*model.MedicalRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("failed to list medical records: %w", err)
	}
	return records, nil
}

func (r *medicalRecordRepository) ListByClinician(ctx context.Context, clinicianID uuid.UUID, patientID *uuid.UUID) ([]*model.MedicalRecord, error) {
	query := `SELECT * FROM medical_records WHERE clinician_id = $1 AND is_deleted = FALSE`
	args := []interface{}{clinicianID}

	if patientID != nil {
		query += ` AND patient_id = $2`
		args = append(args, *patientID)
	}
	query += ` ORDER BY visit_date DESC`

	var records []*model.MedicalRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list clinician medical records: %w", err)
	}
	return records, nil
}

func (r *medicalRecordRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error) {
	query := `SELECT * FROM medical_records WHERE patient_id = $1 AND is_deleted = FALSE ORDER BY visit_date DESC`

	var records []*model.MedicalRecord
	if err := r.db.SelectContext(ctx, &records, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list patient medical records: %w", err)
	}
	return records, nil
}

func (r *medicalRecordRepository) Update(ctx context.Context, record *model.MedicalRecord) error {
	query := `
		UPDATE medical_records SET
			visit_date = $1, diagnosis = $2, treatment = $3, notes = $4, updated_at = $5
		WHERE id = $6 AND is_deleted = FALSE
	`

	record.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query,
		record.VisitDate,
		record.Diagnosis,
		record.Treatment,
		record.Notes,
		record.UpdatedAt,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update medical record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("medical record", nil)
	}
	return nil
}

func (r *medicalRecordRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE medical_records SET is_deleted = TRUE, updated_at = $1 WHERE id = $2`

	if _, err := r.db.ExecContext(ctx, query, time.Now(), id); err != nil {
		return fmt.Errorf("failed to soft delete medical record: %w", err)
	}
	return nil
}

func (r *medicalRecordRepository) Count(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM medical_records WHERE is_deleted = FALSE`

	var count int64
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("failed to count medical records: %w", err)
	}
	return count, nil
}
