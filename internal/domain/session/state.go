// Package session holds the in-memory editing state for one dashboard
// session: the loaded patient list, the selected patient/report pair and the
// active tab. Selection is keyed by stable ids, so deleting entries never
// leaves a dangling index. All mutating methods are copy-on-write: they
// return a new State and leave every untouched patient and report
// referentially unchanged.
package session

import (
	"fmt"

	"github.com/genreport/genreport/internal/domain/patient"
)

// Phase tracks the load lifecycle of a session.
type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	// PhaseEmpty means the store had no patients; the session holds an
	// unsaved scaffold of one patient with one report.
	PhaseEmpty Phase = "empty"
)

// State is an immutable snapshot of the editing session.
type State struct {
	Phase             Phase
	Patients          []*patient.Patient
	SelectedPatientID string
	SelectedReportID  string
	ActiveTab         string
}

// NewState returns a session in the loading phase.
func NewState() *State {
	return &State{Phase: PhaseLoading}
}

// FinishLoad resolves the loading phase. A non-empty patient list moves to
// loaded with the first patient and its first report selected; an empty list
// (or a failed fetch, which callers treat the same way) produces an editable
// scaffold that is not persisted until explicitly saved.
func (s *State) FinishLoad(patients []*patient.Patient) *State {
	next := s.clone()
	if len(patients) == 0 {
		scaffold := patient.NewPatient()
		next.Phase = PhaseEmpty
		next.Patients = []*patient.Patient{scaffold}
		next.SelectedPatientID = scaffold.ID
		next.SelectedReportID = scaffold.Reports[0].ID
		return next
	}
	next.Phase = PhaseLoaded
	next.Patients = patients
	next.SelectedPatientID = patients[0].ID
	next.SelectedReportID = ""
	if len(patients[0].Reports) > 0 {
		next.SelectedReportID = patients[0].Reports[0].ID
	}
	return next
}

// SelectPatient focuses a patient and its first report.
func (s *State) SelectPatient(patientID string) (*State, error) {
	p := s.findPatient(patientID)
	if p == nil {
		return nil, fmt.Errorf("patient %s not in session", patientID)
	}
	next := s.clone()
	next.SelectedPatientID = patientID
	next.SelectedReportID = ""
	if len(p.Reports) > 0 {
		next.SelectedReportID = p.Reports[0].ID
	}
	return next, nil
}

// SelectReport focuses a report of the selected patient.
func (s *State) SelectReport(reportID string) (*State, error) {
	p := s.findPatient(s.SelectedPatientID)
	if p == nil {
		return nil, fmt.Errorf("no patient selected")
	}
	for _, r := range p.Reports {
		if r.ID == reportID {
			next := s.clone()
			next.SelectedReportID = reportID
			return next, nil
		}
	}
	return nil, fmt.Errorf("report %s does not belong to patient %s", reportID, p.ID)
}

// SetActiveTab records the tab restored on reload.
func (s *State) SetActiveTab(tab string) *State {
	next := s.clone()
	next.ActiveTab = tab
	return next
}

// AddPatient appends a new empty patient and selects it.
func (s *State) AddPatient() *State {
	p := patient.NewPatient()
	next := s.clone()
	next.Patients = append(append([]*patient.Patient{}, s.Patients...), p)
	next.SelectedPatientID = p.ID
	next.SelectedReportID = p.Reports[0].ID
	return next
}

// AddReport appends a new empty report to the selected patient and selects it.
func (s *State) AddReport() (*State, error) {
	idx := s.patientIndex(s.SelectedPatientID)
	if idx < 0 {
		return nil, fmt.Errorf("no patient selected")
	}
	r := patient.NewReport()

	next := s.clone()
	next.Patients = copyPatients(s.Patients)
	p := copyPatient(next.Patients[idx])
	p.Reports = append(p.Reports, r)
	next.Patients[idx] = p
	next.SelectedReportID = r.ID
	return next, nil
}

// RemoveReport deletes a report from the selected patient. When the selected
// report is removed, selection falls back to the patient's last remaining
// report.
func (s *State) RemoveReport(reportID string) (*State, error) {
	idx := s.patientIndex(s.SelectedPatientID)
	if idx < 0 {
		return nil, fmt.Errorf("no patient selected")
	}

	next := s.clone()
	next.Patients = copyPatients(s.Patients)
	p := copyPatient(next.Patients[idx])

	reports := make([]*patient.Report, 0, len(p.Reports))
	found := false
	for _, r := range p.Reports {
		if r.ID == reportID {
			found = true
			continue
		}
		reports = append(reports, r)
	}
	if !found {
		return nil, fmt.Errorf("report %s does not belong to patient %s", reportID, p.ID)
	}
	p.Reports = reports
	next.Patients[idx] = p

	if next.SelectedReportID == reportID {
		next.SelectedReportID = ""
		if len(reports) > 0 {
			next.SelectedReportID = reports[len(reports)-1].ID
		}
	}
	return next, nil
}

// RemovePatient deletes a patient. When the selected patient is removed,
// selection falls back to the last remaining patient and its first report.
func (s *State) RemovePatient(patientID string) (*State, error) {
	if s.findPatient(patientID) == nil {
		return nil, fmt.Errorf("patient %s not in session", patientID)
	}

	next := s.clone()
	patients := make([]*patient.Patient, 0, len(s.Patients))
	for _, p := range s.Patients {
		if p.ID != patientID {
			patients = append(patients, p)
		}
	}
	next.Patients = patients

	if next.SelectedPatientID == patientID {
		next.SelectedPatientID = ""
		next.SelectedReportID = ""
		if len(patients) > 0 {
			last := patients[len(patients)-1]
			next.SelectedPatientID = last.ID
			if len(last.Reports) > 0 {
				next.SelectedReportID = last.Reports[0].ID
			}
		}
	}
	return next, nil
}

// SelectedReport returns the focused report, or nil when nothing is selected.
func (s *State) SelectedReport() *patient.Report {
	p := s.findPatient(s.SelectedPatientID)
	if p == nil {
		return nil
	}
	for _, r := range p.Reports {
		if r.ID == s.SelectedReportID {
			return r
		}
	}
	return nil
}

// Apply runs an edit op against the selected report, copying only the path
// from the patients slice down to the touched section. Sibling patients and
// reports keep their identity.
func (s *State) Apply(op EditOp) (*State, error) {
	pIdx := s.patientIndex(s.SelectedPatientID)
	if pIdx < 0 {
		return nil, fmt.Errorf("no patient selected")
	}
	p := s.Patients[pIdx]
	rIdx := -1
	for i, r := range p.Reports {
		if r.ID == s.SelectedReportID {
			rIdx = i
			break
		}
	}
	if rIdx < 0 {
		return nil, fmt.Errorf("no report selected")
	}

	next := s.clone()
	next.Patients = copyPatients(s.Patients)
	pc := copyPatient(p)
	next.Patients[pIdx] = pc
	rc := copyReport(p.Reports[rIdx])
	pc.Reports[rIdx] = rc

	if err := op.apply(rc); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *State) clone() *State {
	c := *s
	return &c
}

func (s *State) findPatient(id string) *patient.Patient {
	if i := s.patientIndex(id); i >= 0 {
		return s.Patients[i]
	}
	return nil
}

func (s *State) patientIndex(id string) int {
	if id == "" {
		return -1
	}
	for i, p := range s.Patients {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func copyPatients(patients []*patient.Patient) []*patient.Patient {
	return append([]*patient.Patient{}, patients...)
}

func copyPatient(p *patient.Patient) *patient.Patient {
	c := *p
	c.Reports = append([]*patient.Report{}, p.Reports...)
	return &c
}

func copyReport(r *patient.Report) *patient.Report {
	c := *r
	return &c
}
