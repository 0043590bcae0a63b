package patient

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type mockRepo struct {
	patients    map[string]*Patient
	sampleCodes map[string]string // sampleCode -> patientID
	saved       []*Patient
	saveErr     error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		patients:    make(map[string]*Patient),
		sampleCodes: make(map[string]string),
	}
}

func (m *mockRepo) ListPatients(_ context.Context) ([]*Patient, error) {
	out := make([]*Patient, 0, len(m.patients))
	for _, p := range m.patients {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockRepo) GetReportTree(_ context.Context, reportID string) (*Report, *PatientInfo, error) {
	for _, p := range m.patients {
		for _, r := range p.Reports {
			if r.ID == reportID {
				return r, &p.Info, nil
			}
		}
	}
	return nil, nil, errors.New("not found")
}

func (m *mockRepo) ReportOwner(_ context.Context, reportID string) (string, error) {
	for _, p := range m.patients {
		for _, r := range p.Reports {
			if r.ID == reportID {
				return p.ID, nil
			}
		}
	}
	return "", errors.New("not found")
}

func (m *mockRepo) SampleCodeOwner(_ context.Context, code string) (string, error) {
	return m.sampleCodes[code], nil
}

func (m *mockRepo) SavePatient(_ context.Context, p *Patient) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.patients[p.ID] = p
	if p.Info.SampleCode != "" {
		m.sampleCodes[p.Info.SampleCode] = p.ID
	}
	m.saved = append(m.saved, p)
	return nil
}

func (m *mockRepo) DeleteReport(_ context.Context, reportID string) error {
	for _, p := range m.patients {
		for i, r := range p.Reports {
			if r.ID == reportID {
				p.Reports = append(p.Reports[:i], p.Reports[i+1:]...)
				return nil
			}
		}
	}
	return errors.New("not found")
}

func (m *mockRepo) DeletePatient(_ context.Context, patientID string) error {
	if _, ok := m.patients[patientID]; !ok {
		return errors.New("not found")
	}
	delete(m.patients, patientID)
	return nil
}

func TestSavePatientsRequiresID(t *testing.T) {
	svc := NewService(newMockRepo())
	p := NewPatient()
	p.ID = ""
	err := svc.SavePatients(context.Background(), []*Patient{p})
	if err == nil {
		t.Fatal("expected error for patient without id")
	}
}

func TestSavePatientsRejectsTakenSampleCode(t *testing.T) {
	repo := newMockRepo()
	repo.sampleCodes["DNL0000000001"] = "other-patient"
	svc := NewService(repo)

	p := NewPatient()
	p.Info.SampleCode = "DNL0000000001"
	err := svc.SavePatients(context.Background(), []*Patient{p})
	if err == nil || !strings.Contains(err.Error(), "sample code") {
		t.Fatalf("err = %v, want sample code conflict", err)
	}
	if len(repo.saved) != 0 {
		t.Error("no patient should be saved on validation failure")
	}
}

func TestSavePatientsAllowsOwnSampleCode(t *testing.T) {
	repo := newMockRepo()
	p := NewPatient()
	p.Info.SampleCode = "DNL0000000001"
	repo.sampleCodes[p.Info.SampleCode] = p.ID
	svc := NewService(repo)

	if err := svc.SavePatients(context.Background(), []*Patient{p}); err != nil {
		t.Fatalf("resaving own sample code failed: %v", err)
	}
}

func TestSavePatientsRejectsDuplicateSampleCodeInBatch(t *testing.T) {
	svc := NewService(newMockRepo())
	a := NewPatient()
	a.Info.SampleCode = "DNL0000000001"
	b := NewPatient()
	b.Info.SampleCode = "DNL0000000001"

	err := svc.SavePatients(context.Background(), []*Patient{a, b})
	if err == nil {
		t.Fatal("expected duplicate sample code error")
	}
}

func TestSavePatientsRejectsDuplicateReportNames(t *testing.T) {
	svc := NewService(newMockRepo())
	p := NewPatient()
	r2 := NewReport()
	p.Reports[0].Name = "Annual Report"
	r2.Name = "annual report" // case-insensitive duplicate
	p.Reports = append(p.Reports, r2)

	err := svc.SavePatients(context.Background(), []*Patient{p})
	if err == nil || !strings.Contains(err.Error(), "report name") {
		t.Fatalf("err = %v, want duplicate report name", err)
	}
}

func TestSavePatientsAllowsEmptyReportNames(t *testing.T) {
	svc := NewService(newMockRepo())
	p := NewPatient()
	p.Reports = append(p.Reports, NewReport()) // both unnamed

	if err := svc.SavePatients(context.Background(), []*Patient{p}); err != nil {
		t.Fatalf("unnamed reports should not conflict: %v", err)
	}
}

func TestSavePatientsPersistsAll(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	a := NewPatient()
	a.Info.SampleCode = "DNL0000000001"
	b := NewPatient()
	b.Info.SampleCode = "DNL0000000002"

	if err := svc.SavePatients(context.Background(), []*Patient{a, b}); err != nil {
		t.Fatalf("SavePatients() error = %v", err)
	}
	if len(repo.saved) != 2 {
		t.Errorf("saved %d patients, want 2", len(repo.saved))
	}
}

func TestDeleteReport(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	p := NewPatient()
	repo.patients[p.ID] = p
	reportID := p.Reports[0].ID

	if err := svc.DeleteReport(context.Background(), reportID); err != nil {
		t.Fatalf("DeleteReport() error = %v", err)
	}
	if len(repo.patients[p.ID].Reports) != 0 {
		t.Error("report not removed")
	}
}
