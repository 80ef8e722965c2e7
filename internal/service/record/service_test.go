package record

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
)

type fakeRecords struct {
	repository.MedicalRecordRepository
	all             []*model.MedicalRecord
	byClinician     []*model.MedicalRecord
	created         []*model.MedicalRecord
	lastPatientScan *uuid.UUID
}

func (f *fakeRecords) Create(ctx context.Context, r *model.MedicalRecord) error {
	r.ID = uuid.New()
	f.created = append(f.created, r)
	return nil
}

func (f *fakeRecords) List(ctx context.Context) ([]*model.MedicalRecord, error) {
	return f.all, nil
}

func (f *fakeRecords) ListByClinician(ctx context.Context, clinicianID uuid.UUID, patientID *uuid.UUID) ([]*model.MedicalRecord, error) {
	f.lastPatientScan = patientID
	return f.byClinician, nil
}

func (f *fakeRecords) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error) {
	out := make([]*model.MedicalRecord, 0, len(f.all))
	for _, r := range f.all {
		if r.PatientID == patientID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeClinicians struct {
	repository.ClinicianRepository
	known map[uuid.UUID]*model.ClinicianProfile
}

func (f *fakeClinicians) Get(ctx context.Context, id uuid.UUID) (*model.ClinicianProfile, error) {
	if p, ok := f.known[id]; ok {
		return p, nil
	}
	return nil, apperrors.NotFound("clinician", nil)
}

type fakePatients struct {
	repository.PatientRepository
	known map[uuid.UUID]*model.PatientProfile
}

func (f *fakePatients) Get(ctx context.Context, id uuid.UUID) (*model.PatientProfile, error) {
	if p, ok := f.known[id]; ok {
		return p, nil
	}
	return nil, apperrors.NotFound("patient", nil)
}

func newService(records *fakeRecords, clinicianID, patientID uuid.UUID) *Service {
	return NewService(
		records,
		&fakeClinicians{known: map[uuid.UUID]*model.ClinicianProfile{clinicianID: {Base: model.Base{ID: clinicianID}}}},
		&fakePatients{known: map[uuid.UUID]*model.PatientProfile{patientID: {Base: model.Base{ID: patientID}}}},
		nil,
	)
}

func TestCreateAsSelf(t *testing.T) {
	clinicianID := uuid.New()
	patientID := uuid.New()
	records := &fakeRecords{}
	svc := newService(records, clinicianID, patientID)

	caller := &model.Principal{
		Role:      &model.Role{Name: model.RoleClinician},
		Clinician: &model.ClinicianProfile{Base: model.Base{ID: clinicianID}},
	}

	rec, err := svc.Create(context.Background(), caller, &model.CreateMedicalRecordRequest{
		ClinicianID: clinicianID,
		PatientID:   patientID,
		VisitDate:   time.Now(),
		Diagnosis:   "flu",
		Treatment:   "rest",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.Len(t, records.created, 1)
}

func TestCreateForAnotherClinicianForbidden(t *testing.T) {
	clinicianID := uuid.New()
	patientID := uuid.New()
	svc := newService(&fakeRecords{}, clinicianID, patientID)

	caller := &model.Principal{
		Role:      &model.Role{Name: model.RoleClinician},
		Clinician: &model.ClinicianProfile{Base: model.Base{ID: uuid.New()}},
	}

	_, err := svc.Create(context.Background(), caller, &model.CreateMedicalRecordRequest{
		ClinicianID: clinicianID,
		PatientID:   patientID,
		VisitDate:   time.Now(),
		Diagnosis:   "flu",
		Treatment:   "rest",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestCreateByAdminForAnyClinician(t *testing.T) {
	clinicianID := uuid.New()
	patientID := uuid.New()
	records := &fakeRecords{}
	svc := newService(records, clinicianID, patientID)

	admin := &model.Principal{Role: &model.Role{Name: model.RoleAdmin, HasAllPermissions: true}}

	_, err := svc.Create(context.Background(), admin, &model.CreateMedicalRecordRequest{
		ClinicianID: clinicianID,
		PatientID:   patientID,
		VisitDate:   time.Now(),
		Diagnosis:   "flu",
		Treatment:   "rest",
	})
	assert.NoError(t, err)
}

func TestListClinicianScoped(t *testing.T) {
	clinicianID := uuid.New()
	records := &fakeRecords{
		all:         []*model.MedicalRecord{{}, {}, {}},
		byClinician: []*model.MedicalRecord{{}},
	}
	svc := newService(records, clinicianID, uuid.New())

	caller := &model.Principal{
		Role:      &model.Role{Name: model.RoleClinician},
		Clinician: &model.ClinicianProfile{Base: model.Base{ID: clinicianID}},
	}

	got, err := svc.List(context.Background(), caller, nil)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Nil(t, records.lastPatientScan)

	patientID := uuid.New()
	_, err = svc.List(context.Background(), caller, &patientID)
	require.NoError(t, err)
	require.NotNil(t, records.lastPatientScan)
	assert.Equal(t, patientID, *records.lastPatientScan)
}

func TestListAdminFilterByPatient(t *testing.T) {
	patientID := uuid.New()
	records := &fakeRecords{all: []*model.MedicalRecord{
		{PatientID: patientID},
		{PatientID: uuid.New()},
		{PatientID: patientID},
	}}
	svc := newService(records, uuid.New(), patientID)

	admin := &model.Principal{Role: &model.Role{Name: model.RoleAdmin, HasAllPermissions: true}}

	got, err := svc.List(context.Background(), admin, &patientID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
