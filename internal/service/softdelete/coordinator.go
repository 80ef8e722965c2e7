package softdelete

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	"github.com/clinicore/clinic-api/pkg/messaging"
	"github.com/clinicore/clinic-api/pkg/metrics"
)

const eventsTopic = "clinic.events"

// Coordinator applies logical deletion and propagates it along the defined
// cascade rules. Deletion only ever moves is_deleted false -> true; there is
// no undelete and no physical removal. Repeated deletes are no-ops, which is
// why the flag needs no locking.
//
// The cascade is asymmetric on purpose: deleting a profile deletes its
// owning account, but deleting an account leaves the profile untouched, and
// appointments/records are never cascade-deleted.
type Coordinator struct {
	tx           repository.TxRunner
	accounts     repository.AccountRepository
	clinicians   repository.ClinicianRepository
	patients     repository.PatientRepository
	appointments repository.AppointmentRepository
	records      repository.MedicalRecordRepository
	broker       messaging.Broker
	metrics      *metrics.Metrics
}

func NewCoordinator(
	tx repository.TxRunner,
	accounts repository.AccountRepository,
	clinicians repository.ClinicianRepository,
	patients repository.PatientRepository,
	appointments repository.AppointmentRepository,
	records repository.MedicalRecordRepository,
	broker messaging.Broker,
	m *metrics.Metrics,
) *Coordinator {
	return &Coordinator{
		tx:           tx,
		accounts:     accounts,
		clinicians:   clinicians,
		patients:     patients,
		appointments: appointments,
		records:      records,
		broker:       broker,
		metrics:      m,
	}
}

// DeleteClinician flips the profile and its owning account together; both
// writes commit or neither does.
func (c *Coordinator) DeleteClinician(ctx context.Context, profile *model.ClinicianProfile) error {
	err := c.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := c.clinicians.SoftDeleteTx(ctx, tx, profile.ID); err != nil {
			return err
		}
		return c.accounts.SoftDeleteTx(ctx, tx, profile.AccountID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete clinician: %w", err)
	}

	c.record(ctx, "clinician", profile.ID)
	return nil
}

// DeletePatient flips the profile and its owning account together; both
// writes commit or neither does.
func (c *Coordinator) DeletePatient(ctx context.Context, profile *model.PatientProfile) error {
	err := c.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := c.patients.SoftDeleteTx(ctx, tx, profile.ID); err != nil {
			return err
		}
		return c.accounts.SoftDeleteTx(ctx, tx, profile.AccountID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	c.record(ctx, "patient", profile.ID)
	return nil
}

func (c *Coordinator) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	if err := c.appointments.SoftDelete(ctx, id); err != nil {
		return err
	}
	c.record(ctx, "appointment", id)
	return nil
}

func (c *Coordinator) DeleteMedicalRecord(ctx context.Context, id uuid.UUID) error {
	if err := c.records.SoftDelete(ctx, id); err != nil {
		return err
	}
	c.record(ctx, "medical_record", id)
	return nil
}

// record counts the deletion and publishes a best-effort event; a broker
// failure never fails the operation that already committed.
func (c *Coordinator) record(ctx context.Context, entity string, id uuid.UUID) {
	if c.metrics != nil {
		c.metrics.SoftDeletesTotal.WithLabelValues(entity).Inc()
	}

	if c.broker == nil {
		return
	}
	payload, _ := json.Marshal(map[string]string{"id": id.String()})
	event := &messaging.Event{Type: entity + ".deleted", Payload: payload}
	if err := c.broker.Publish(ctx, eventsTopic, event); err != nil {
		log.Warn().Err(err).Str("entity", entity).Msg("failed to publish delete event")
	}
}
