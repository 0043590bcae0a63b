package session

import (
	"fmt"

	"github.com/genreport/genreport/internal/domain/patient"
)

// EditOp is one edit against the selected report. Each operation is its own
// type, so create, update, delete and replace are expressed structurally
// instead of through sentinel values smuggled into a shared callback.
//
// Operations copy the section they touch before mutating it; the report they
// receive is already a shallow copy owned by the new state.
type EditOp interface {
	apply(r *patient.Report) error
}

// SetNutrient creates or updates one nutrient under a nutrition section,
// creating the section on first use.
type SetNutrient struct {
	Section string
	Field   string
	Data    patient.NutrientData
}

func (op SetNutrient) apply(r *patient.Report) error {
	if op.Section == "" || op.Field == "" {
		return fmt.Errorf("section and field are required")
	}
	n := copyNutrition(r.NutritionData)
	if n.Data[op.Section] == nil {
		n.Data[op.Section] = map[string]patient.NutrientData{}
	} else {
		n.Data[op.Section] = copyNutrientMap(n.Data[op.Section])
	}
	n.Data[op.Section][op.Field] = op.Data
	r.NutritionData = n
	return nil
}

// DeleteNutrient removes one nutrient from a section.
type DeleteNutrient struct {
	Section string
	Field   string
}

func (op DeleteNutrient) apply(r *patient.Report) error {
	n := copyNutrition(r.NutritionData)
	fields, ok := n.Data[op.Section]
	if !ok {
		return fmt.Errorf("nutrition section %q does not exist", op.Section)
	}
	fields = copyNutrientMap(fields)
	delete(fields, op.Field)
	n.Data[op.Section] = fields
	r.NutritionData = n
	return nil
}

// InitNutritionSection creates an empty nutrition section.
type InitNutritionSection struct {
	Section string
}

func (op InitNutritionSection) apply(r *patient.Report) error {
	if op.Section == "" {
		return fmt.Errorf("section is required")
	}
	n := copyNutrition(r.NutritionData)
	if _, ok := n.Data[op.Section]; !ok {
		n.Data[op.Section] = map[string]patient.NutrientData{}
	}
	r.NutritionData = n
	return nil
}

// DeleteNutritionSection removes a whole nutrition section with its fields.
type DeleteNutritionSection struct {
	Section string
}

func (op DeleteNutritionSection) apply(r *patient.Report) error {
	n := copyNutrition(r.NutritionData)
	delete(n.Data, op.Section)
	r.NutritionData = n
	return nil
}

// ReplaceNutrition swaps the entire nutrition payload.
type ReplaceNutrition struct {
	Data *patient.NutritionData
}

func (op ReplaceNutrition) apply(r *patient.Report) error {
	if op.Data == nil {
		return fmt.Errorf("replacement nutrition data is required")
	}
	r.NutritionData = op.Data
	return nil
}

// SetSectionEntry creates or updates one entry in a key-discriminated
// section (digestive health, addiction, sleep, allergies).
type SetSectionEntry struct {
	Section SectionKind
	Key     string
	Entry   interface{}
}

// DeleteSectionEntry removes one entry from a key-discriminated section.
type DeleteSectionEntry struct {
	Section SectionKind
	Key     string
}

// SectionKind names a key-discriminated report section.
type SectionKind string

const (
	SectionDigestive SectionKind = "digestiveHealth"
	SectionAddiction SectionKind = "genesAndAddiction"
	SectionSleep     SectionKind = "sleepAndRest"
	SectionAllergies SectionKind = "allergiesAndSensitivity"
)

func (op SetSectionEntry) apply(r *patient.Report) error {
	if op.Key == "" {
		return fmt.Errorf("entry key is required")
	}
	switch op.Section {
	case SectionDigestive:
		entry, ok := op.Entry.(patient.DigestiveHealthEntry)
		if !ok {
			return fmt.Errorf("digestive entry has wrong type %T", op.Entry)
		}
		d := copyDigestive(r.DigestiveHealth)
		d.Data[op.Key] = entry
		r.DigestiveHealth = d
	case SectionAddiction:
		entry, ok := op.Entry.(patient.AddictionEntry)
		if !ok {
			return fmt.Errorf("addiction entry has wrong type %T", op.Entry)
		}
		g := copyAddiction(r.GenesAndAddiction)
		g.Data[op.Key] = entry
		r.GenesAndAddiction = g
	case SectionSleep:
		entry, ok := op.Entry.(patient.SleepEntry)
		if !ok {
			return fmt.Errorf("sleep entry has wrong type %T", op.Entry)
		}
		s := copySleep(r.SleepAndRest)
		s.Data[op.Key] = entry
		r.SleepAndRest = s
	case SectionAllergies:
		entry, ok := op.Entry.(patient.AllergyEntry)
		if !ok {
			return fmt.Errorf("allergy entry has wrong type %T", op.Entry)
		}
		a := copyAllergies(r.AllergiesAndSensitivity)
		a.Data[op.Key] = entry
		r.AllergiesAndSensitivity = a
	default:
		return fmt.Errorf("unknown section %q", op.Section)
	}
	return nil
}

func (op DeleteSectionEntry) apply(r *patient.Report) error {
	switch op.Section {
	case SectionDigestive:
		d := copyDigestive(r.DigestiveHealth)
		delete(d.Data, op.Key)
		r.DigestiveHealth = d
	case SectionAddiction:
		g := copyAddiction(r.GenesAndAddiction)
		delete(g.Data, op.Key)
		r.GenesAndAddiction = g
	case SectionSleep:
		s := copySleep(r.SleepAndRest)
		delete(s.Data, op.Key)
		r.SleepAndRest = s
	case SectionAllergies:
		a := copyAllergies(r.AllergiesAndSensitivity)
		delete(a.Data, op.Key)
		r.AllergiesAndSensitivity = a
	default:
		return fmt.Errorf("unknown section %q", op.Section)
	}
	return nil
}

// SetContent replaces the free-text content section.
type SetContent struct {
	Content patient.ReportContent
}

func (op SetContent) apply(r *patient.Report) error {
	c := op.Content
	r.Content = &c
	return nil
}

// SetSettings replaces the report settings.
type SetSettings struct {
	Settings patient.ReportSettings
}

func (op SetSettings) apply(r *patient.Report) error {
	s := op.Settings
	r.Settings = &s
	return nil
}

// ScoreDietField records the patient's score for one diet field, computing
// level and recommendation from the field's thresholds. Replaces any
// previous result for the same field id.
type ScoreDietField struct {
	Field patient.DietField
	Score int
}

func (op ScoreDietField) apply(r *patient.Report) error {
	result, ok := patient.ScoreField(op.Field, op.Score)
	if !ok {
		return fmt.Errorf("score %d out of range [%d, %d] for field %q",
			op.Score, op.Field.Min, op.Field.Max, op.Field.Label)
	}

	results := append([]patient.DietAnalysisResult{}, r.PatientDietAnalysisResults...)
	replaced := false
	for i, existing := range results {
		if existing.FieldID == result.FieldID {
			result.ID = existing.ID
			results[i] = result
			replaced = true
			break
		}
	}
	if !replaced {
		results = append(results, result)
	}
	r.PatientDietAnalysisResults = results
	return nil
}

func copyNutrition(n *patient.NutritionData) *patient.NutritionData {
	c := patient.NutritionData{Data: map[string]map[string]patient.NutrientData{}}
	if n != nil {
		c.Quote = n.Quote
		c.Description = n.Description
		for k, v := range n.Data {
			c.Data[k] = v
		}
	}
	return &c
}

func copyNutrientMap(m map[string]patient.NutrientData) map[string]patient.NutrientData {
	c := make(map[string]patient.NutrientData, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func copyDigestive(d *patient.DigestiveHealth) *patient.DigestiveHealth {
	c := patient.DigestiveHealth{Data: map[string]patient.DigestiveHealthEntry{}}
	if d != nil {
		c.Quote = d.Quote
		c.Description = d.Description
		for k, v := range d.Data {
			c.Data[k] = v
		}
	}
	return &c
}

func copyAddiction(g *patient.GenesAndAddiction) *patient.GenesAndAddiction {
	c := patient.GenesAndAddiction{Data: map[string]patient.AddictionEntry{}}
	if g != nil {
		c.Quote = g.Quote
		c.Description = g.Description
		for k, v := range g.Data {
			c.Data[k] = v
		}
	}
	return &c
}

func copySleep(s *patient.SleepAndRest) *patient.SleepAndRest {
	c := patient.SleepAndRest{Data: map[string]patient.SleepEntry{}}
	if s != nil {
		c.Quote = s.Quote
		c.Description = s.Description
		for k, v := range s.Data {
			c.Data[k] = v
		}
	}
	return &c
}

func copyAllergies(a *patient.AllergiesAndSensitivity) *patient.AllergiesAndSensitivity {
	c := patient.AllergiesAndSensitivity{Data: map[string]patient.AllergyEntry{}}
	if a != nil {
		c.Quote = a.Quote
		c.Description = a.Description
		c.GeneralAdvice = a.GeneralAdvice
		for k, v := range a.Data {
			c.Data[k] = v
		}
	}
	return &c
}
