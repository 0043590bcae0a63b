package patient

import (
	"context"
	"fmt"
	"strings"
)

// Service provides business logic for the patient/report domain.
type Service struct {
	repo Repository
}

// NewService creates a new patient domain service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListPatients(ctx context.Context) ([]*Patient, error) {
	return s.repo.ListPatients(ctx)
}

func (s *Service) GetReportTree(ctx context.Context, reportID string) (*Report, *PatientInfo, error) {
	return s.repo.GetReportTree(ctx, reportID)
}

// SavePatients validates and persists the full aggregate for each patient.
// Sample codes must be unique across patients and report names unique within
// a patient (case-insensitive); violations fail the whole request before any
// write is issued.
func (s *Service) SavePatients(ctx context.Context, patients []*Patient) error {
	seenCodes := make(map[string]string)
	for _, p := range patients {
		if p == nil || p.ID == "" {
			return fmt.Errorf("each patient must have an id")
		}
		if code := p.Info.SampleCode; code != "" {
			if otherID, ok := seenCodes[code]; ok && otherID != p.ID {
				return fmt.Errorf("duplicate sample code %q", code)
			}
			seenCodes[code] = p.ID
			owner, err := s.repo.SampleCodeOwner(ctx, code)
			if err != nil {
				return fmt.Errorf("check sample code %q: %w", code, err)
			}
			if owner != "" && owner != p.ID {
				return fmt.Errorf("sample code %q already belongs to another patient", code)
			}
		}
		if err := validateReportNames(p.Reports); err != nil {
			return err
		}
	}

	for _, p := range patients {
		if err := s.repo.SavePatient(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func validateReportNames(reports []*Report) error {
	names := make(map[string]bool, len(reports))
	for _, r := range reports {
		if r == nil || r.ID == "" {
			return fmt.Errorf("each report must have an id")
		}
		name := strings.ToLower(strings.TrimSpace(r.Name))
		if name == "" {
			continue
		}
		if names[name] {
			return fmt.Errorf("duplicate report name %q", r.Name)
		}
		names[name] = true
	}
	return nil
}

func (s *Service) DeleteReport(ctx context.Context, reportID string) error {
	return s.repo.DeleteReport(ctx, reportID)
}

func (s *Service) DeletePatient(ctx context.Context, patientID string) error {
	return s.repo.DeletePatient(ctx, patientID)
}
