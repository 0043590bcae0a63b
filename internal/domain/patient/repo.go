package patient

import "context"

// Repository persists the patient/report aggregate. SavePatient applies the
// whole report tree; every report's writes run inside one transaction so a
// failing section never leaves a half-saved report behind.
type Repository interface {
	ListPatients(ctx context.Context) ([]*Patient, error)
	GetReportTree(ctx context.Context, reportID string) (*Report, *PatientInfo, error)
	ReportOwner(ctx context.Context, reportID string) (string, error)
	SampleCodeOwner(ctx context.Context, sampleCode string) (string, error)
	SavePatient(ctx context.Context, p *Patient) error
	DeleteReport(ctx context.Context, reportID string) error
	DeletePatient(ctx context.Context, patientID string) error
}
