package dashboard

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/clinicore/clinic-api/internal/repository"
)

const (
	summaryKey = "dashboard:summary"
	summaryTTL = 30 * time.Second
)

// Summary is the aggregate view counted over live rows only.
type Summary struct {
	Clinicians   int64 `json:"clinicians"`
	Patients     int64 `json:"patients"`
	Appointments int64 `json:"appointments"`
	Records      int64 `json:"medical_records"`
}

type Service struct {
	clinicians   repository.ClinicianRepository
	patients     repository.PatientRepository
	appointments repository.AppointmentRepository
	records      repository.MedicalRecordRepository
	cache        *gocache.Cache
}

func NewService(
	clinicians repository.ClinicianRepository,
	patients repository.PatientRepository,
	appointments repository.AppointmentRepository,
	records repository.MedicalRecordRepository,
) *Service {
	return &Service{
		clinicians:   clinicians,
		patients:     patients,
		appointments: appointments,
		records:      records,
		cache:        gocache.New(summaryTTL, 2*summaryTTL),
	}
}

// GetSummary returns entity counts, cached briefly since the dashboard polls
// and exact freshness does not matter.
func (s *Service) GetSummary(ctx context.Context) (*Summary, error) {
	if cached, ok := s.cache.Get(summaryKey); ok {
		return cached.(*Summary), nil
	}

	summary := &Summary{}
	var err error
	if summary.Clinicians, err = s.clinicians.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count clinicians: %w", err)
	}
	if summary.Patients, err = s.patients.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count patients: %w", err)
	}
	if summary.Appointments, err = s.appointments.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count appointments: %w", err)
	}
	if summary.Records, err = s.records.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}

	s.cache.Set(summaryKey, summary, gocache.DefaultExpiration)
	return summary, nil
}
