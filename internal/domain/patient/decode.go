package patient

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// reportEnvelope splits an incoming report document into per-section raw
// payloads so each section can be decoded on its own. Tags must stay in sync
// with Report.
type reportEnvelope struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Content          json.RawMessage `json:"content"`
	Settings         json.RawMessage `json:"settings"`
	Summaries        json.RawMessage `json:"summaries"`
	MetabolicSummary json.RawMessage `json:"metabolicSummary"`

	DietFieldCategories json.RawMessage `json:"dietFieldCategories"`

	DynamicDietFieldDefinitions json.RawMessage `json:"dynamicDietFieldDefinitions"`
	PatientDietAnalysisResults  json.RawMessage `json:"patientDietAnalysisResults"`

	NutritionData           json.RawMessage `json:"nutritionData"`
	SportsAndFitness        json.RawMessage `json:"sportsAndFitness"`
	LifestyleConditions     json.RawMessage `json:"lifestyleConditions"`
	LifestyleCategoryImages json.RawMessage `json:"lifestyleCategoryImages"`
	MetabolicCore           json.RawMessage `json:"metabolicCore"`
	DigestiveHealth         json.RawMessage `json:"digestiveHealth"`
	GenesAndAddiction       json.RawMessage `json:"genesAndAddiction"`
	SleepAndRest            json.RawMessage `json:"sleepAndRest"`
	AllergiesAndSensitivity json.RawMessage `json:"allergiesAndSensitivity"`
	PreventiveHealth        json.RawMessage `json:"preventiveHealth"`
	FamilyGeneticImpact     json.RawMessage `json:"familyGeneticImpactSection"`
	GenomicAnalysisTable    json.RawMessage `json:"genomicAnalysisTable"`
	HealthSummary           json.RawMessage `json:"healthSummary"`

	GeneTestResults   json.RawMessage `json:"geneTestResults"`
	GeneticCategories json.RawMessage `json:"categories"`
}

// UnmarshalJSON decodes every section independently. A section whose payload
// does not match its shape is logged and left nil, so the save path skips it
// while the well-formed sections of the same report still persist.
func (r *Report) UnmarshalJSON(data []byte) error {
	var env reportEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	r.ID = env.ID
	r.Name = env.Name

	if v := new(ReportContent); decodeSection(env.ID, "content", env.Content, v) {
		r.Content = v
	}
	if v := new(ReportSettings); decodeSection(env.ID, "settings", env.Settings, v) {
		r.Settings = v
	}
	if v := new(ReportSummaries); decodeSection(env.ID, "summaries", env.Summaries, v) {
		r.Summaries = v
	}
	if v := new(MetabolicSummary); decodeSection(env.ID, "metabolicSummary", env.MetabolicSummary, v) {
		r.MetabolicSummary = v
	}

	var cats []string
	if decodeSection(env.ID, "dietFieldCategories", env.DietFieldCategories, &cats) {
		r.DietFieldCategories = cats
	}
	var defs []DietFieldDefinition
	if decodeSection(env.ID, "dynamicDietFieldDefinitions", env.DynamicDietFieldDefinitions, &defs) {
		r.DynamicDietFieldDefinitions = defs
	}
	var results []DietAnalysisResult
	if decodeSection(env.ID, "patientDietAnalysisResults", env.PatientDietAnalysisResults, &results) {
		r.PatientDietAnalysisResults = results
	}

	if v := new(NutritionData); decodeSection(env.ID, "nutritionData", env.NutritionData, v) {
		r.NutritionData = v
	}
	if len(env.SportsAndFitness) > 0 && string(env.SportsAndFitness) != "null" {
		r.SportsAndFitness = env.SportsAndFitness
	}
	if v := new(LifestyleConditions); decodeSection(env.ID, "lifestyleConditions", env.LifestyleConditions, v) {
		r.LifestyleConditions = v
	}
	var images map[string]string
	if decodeSection(env.ID, "lifestyleCategoryImages", env.LifestyleCategoryImages, &images) {
		r.LifestyleCategoryImages = images
	}
	if v := new(MetabolicCore); decodeSection(env.ID, "metabolicCore", env.MetabolicCore, v) {
		r.MetabolicCore = v
	}
	if v := new(DigestiveHealth); decodeSection(env.ID, "digestiveHealth", env.DigestiveHealth, v) {
		r.DigestiveHealth = v
	}
	if v := new(GenesAndAddiction); decodeSection(env.ID, "genesAndAddiction", env.GenesAndAddiction, v) {
		r.GenesAndAddiction = v
	}
	if v := new(SleepAndRest); decodeSection(env.ID, "sleepAndRest", env.SleepAndRest, v) {
		r.SleepAndRest = v
	}
	if v := new(AllergiesAndSensitivity); decodeSection(env.ID, "allergiesAndSensitivity", env.AllergiesAndSensitivity, v) {
		r.AllergiesAndSensitivity = v
	}
	if v := new(PreventiveHealth); decodeSection(env.ID, "preventiveHealth", env.PreventiveHealth, v) {
		r.PreventiveHealth = v
	}
	if v := new(FamilyGeneticImpactSection); decodeSection(env.ID, "familyGeneticImpactSection", env.FamilyGeneticImpact, v) {
		r.FamilyGeneticImpact = v
	}
	if v := new(GenomicAnalysisTable); decodeSection(env.ID, "genomicAnalysisTable", env.GenomicAnalysisTable, v) {
		r.GenomicAnalysisTable = v
	}
	if v := new(HealthSummary); decodeSection(env.ID, "healthSummary", env.HealthSummary, v) {
		r.HealthSummary = v
	}

	var tests []GeneTestResult
	if decodeSection(env.ID, "geneTestResults", env.GeneTestResults, &tests) {
		r.GeneTestResults = tests
	}
	var categories []GeneticCategory
	if decodeSection(env.ID, "categories", env.GeneticCategories, &categories) {
		r.GeneticCategories = categories
	}

	return nil
}

// decodeSection unmarshals one section payload into dst. Absent and null
// payloads report false so the section stays untouched; a mistyped payload is
// logged and dropped the same way, never failing the surrounding report.
func decodeSection(reportID, section string, raw json.RawMessage, dst interface{}) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Warn().Err(err).Str("report_id", reportID).Str("section", section).
			Msg("skipping malformed report section")
		return false
	}
	return true
}
