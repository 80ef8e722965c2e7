package softdelete

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	"github.com/clinicore/clinic-api/pkg/messaging"
)

// fakeTx runs the transactional function directly; a rolled-back tx is
// simulated by the function's error.
type fakeTx struct {
	beginErr error
	runs     int
}

func (f *fakeTx) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if f.beginErr != nil {
		return f.beginErr
	}
	f.runs++
	return fn(nil)
}

type fakeAccounts struct {
	repository.AccountRepository
	deleted []uuid.UUID
	err     error
}

func (f *fakeAccounts) SoftDeleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeClinicians struct {
	repository.ClinicianRepository
	deleted []uuid.UUID
	err     error
}

func (f *fakeClinicians) SoftDeleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakePatients struct {
	repository.PatientRepository
	deleted []uuid.UUID
}

func (f *fakePatients) SoftDeleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeAppointments struct {
	repository.AppointmentRepository
	deleted []uuid.UUID
}

func (f *fakeAppointments) SoftDelete(ctx context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeRecords struct {
	repository.MedicalRecordRepository
	deleted []uuid.UUID
}

func (f *fakeRecords) SoftDelete(ctx context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeBroker struct {
	events []*messaging.Event
	err    error
}

func (f *fakeBroker) Publish(ctx context.Context, topic string, event *messaging.Event) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeBroker) Close() error { return nil }

type fixture struct {
	tx           *fakeTx
	accounts     *fakeAccounts
	clinicians   *fakeClinicians
	patients     *fakePatients
	appointments *fakeAppointments
	records      *fakeRecords
	broker       *fakeBroker
	coordinator  *Coordinator
}

func newFixture() *fixture {
	f := &fixture{
		tx:           &fakeTx{},
		accounts:     &fakeAccounts{},
		clinicians:   &fakeClinicians{},
		patients:     &fakePatients{},
		appointments: &fakeAppointments{},
		records:      &fakeRecords{},
		broker:       &fakeBroker{},
	}
	f.coordinator = NewCoordinator(
		f.tx, f.accounts, f.clinicians, f.patients, f.appointments, f.records, f.broker, nil,
	)
	return f
}

func TestDeleteClinicianCascadesToAccount(t *testing.T) {
	f := newFixture()
	profile := &model.ClinicianProfile{
		Base:      model.Base{ID: uuid.New()},
		AccountID: uuid.New(),
	}

	require.NoError(t, f.coordinator.DeleteClinician(context.Background(), profile))

	assert.Equal(t, []uuid.UUID{profile.ID}, f.clinicians.deleted)
	assert.Equal(t, []uuid.UUID{profile.AccountID}, f.accounts.deleted)
	assert.Equal(t, 1, f.tx.runs)

	require.Len(t, f.broker.events, 1)
	assert.Equal(t, "clinician.deleted", f.broker.events[0].Type)
}

func TestDeletePatientCascadesToAccount(t *testing.T) {
	f := newFixture()
	profile := &model.PatientProfile{
		Base:      model.Base{ID: uuid.New()},
		AccountID: uuid.New(),
	}

	require.NoError(t, f.coordinator.DeletePatient(context.Background(), profile))

	assert.Equal(t, []uuid.UUID{profile.ID}, f.patients.deleted)
	assert.Equal(t, []uuid.UUID{profile.AccountID}, f.accounts.deleted)
}

func TestDeleteClinicianFailureDeletesNothing(t *testing.T) {
	f := newFixture()
	f.clinicians.err = errors.New("write failed")
	profile := &model.ClinicianProfile{
		Base:      model.Base{ID: uuid.New()},
		AccountID: uuid.New(),
	}

	err := f.coordinator.DeleteClinician(context.Background(), profile)
	require.Error(t, err)

	// The profile write failed inside the transaction, so the account write
	// never ran and no event was published.
	assert.Empty(t, f.accounts.deleted)
	assert.Empty(t, f.broker.events)
}

func TestDeleteAppointmentNoCascade(t *testing.T) {
	f := newFixture()
	id := uuid.New()

	require.NoError(t, f.coordinator.DeleteAppointment(context.Background(), id))

	assert.Equal(t, []uuid.UUID{id}, f.appointments.deleted)
	assert.Empty(t, f.clinicians.deleted)
	assert.Empty(t, f.patients.deleted)
	assert.Empty(t, f.accounts.deleted)
	assert.Equal(t, 0, f.tx.runs)
}

func TestDeleteMedicalRecordNoCascade(t *testing.T) {
	f := newFixture()
	id := uuid.New()

	require.NoError(t, f.coordinator.DeleteMedicalRecord(context.Background(), id))

	assert.Equal(t, []uuid.UUID{id}, f.records.deleted)
	assert.Empty(t, f.accounts.deleted)
}

func TestDeleteIsIdempotent(t *testing.T) {
	f := newFixture()
	profile := &model.ClinicianProfile{
		Base:      model.Base{ID: uuid.New()},
		AccountID: uuid.New(),
	}

	require.NoError(t, f.coordinator.DeleteClinician(context.Background(), profile))
	require.NoError(t, f.coordinator.DeleteClinician(context.Background(), profile))

	// The flag only ever moves one way; re-deleting is a harmless no-op at
	// the store layer.
	assert.Len(t, f.clinicians.deleted, 2)
	assert.Equal(t, 2, f.tx.runs)
}

func TestBrokerFailureDoesNotFailDelete(t *testing.T) {
	f := newFixture()
	f.broker.err = errors.New("redis down")

	assert.NoError(t, f.coordinator.DeleteAppointment(context.Background(), uuid.New()))
}

func TestNilBroker(t *testing.T) {
	f := newFixture()
	f.coordinator = NewCoordinator(
		f.tx, f.accounts, f.clinicians, f.patients, f.appointments, f.records, nil, nil,
	)

	assert.NoError(t, f.coordinator.DeleteAppointment(context.Background(), uuid.New()))
}
