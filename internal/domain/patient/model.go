// Package patient implements the report compiler's aggregate model: patients,
// their multi-section genetic reports, and the bidirectional mapping between
// the nested shape consumed by the dashboard and the relational rows the
// store persists.
package patient

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Patient is the top-level aggregate: demographic info plus owned reports.
// Deleting a patient cascades to its reports.
type Patient struct {
	ID      string      `json:"id"`
	Info    PatientInfo `json:"info"`
	Reports []*Report   `json:"reports"`
}

// PatientInfo holds the demographic and sample fields shown on every page of
// the rendered report. SampleCode is unique across patients.
type PatientInfo struct {
	Name              string `json:"name"`
	Gender            string `json:"gender"`
	BirthDate         string `json:"birthDate"`
	SampleCode        string `json:"sampleCode"`
	SampleDate        string `json:"sampleDate"`
	ReportDate        string `json:"reportDate"`
	CheckedBy         string `json:"checkedBy"`
	ScientificContent string `json:"scientificContent"`
	Disclaimer        string `json:"disclaimer"`
	Signature1        string `json:"signature1"`
	Signature2        string `json:"signature2"`
}

// Report is one compiled report belonging to a patient. Section pointers are
// nil when a save payload leaves that section untouched; the decoder always
// populates every section so GET responses never carry nulls.
type Report struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`

	Content          *ReportContent    `json:"content,omitempty"`
	Settings         *ReportSettings   `json:"settings,omitempty"`
	Summaries        *ReportSummaries  `json:"summaries,omitempty"`
	MetabolicSummary *MetabolicSummary `json:"metabolicSummary,omitempty"`

	DietFieldCategories []string `json:"dietFieldCategories,omitempty"`

	DynamicDietFieldDefinitions []DietFieldDefinition `json:"dynamicDietFieldDefinitions,omitempty"`
	PatientDietAnalysisResults  []DietAnalysisResult  `json:"patientDietAnalysisResults,omitempty"`

	NutritionData           *NutritionData           `json:"nutritionData,omitempty"`
	SportsAndFitness        json.RawMessage          `json:"sportsAndFitness,omitempty"`
	LifestyleConditions     *LifestyleConditions     `json:"lifestyleConditions,omitempty"`
	LifestyleCategoryImages map[string]string        `json:"lifestyleCategoryImages,omitempty"`
	MetabolicCore           *MetabolicCore           `json:"metabolicCore,omitempty"`
	DigestiveHealth         *DigestiveHealth         `json:"digestiveHealth,omitempty"`
	GenesAndAddiction       *GenesAndAddiction       `json:"genesAndAddiction,omitempty"`
	SleepAndRest            *SleepAndRest            `json:"sleepAndRest,omitempty"`
	AllergiesAndSensitivity *AllergiesAndSensitivity `json:"allergiesAndSensitivity,omitempty"`
	PreventiveHealth        *PreventiveHealth        `json:"preventiveHealth,omitempty"`
	FamilyGeneticImpact     *FamilyGeneticImpactSection `json:"familyGeneticImpactSection,omitempty"`
	GenomicAnalysisTable    *GenomicAnalysisTable    `json:"genomicAnalysisTable,omitempty"`
	HealthSummary           *HealthSummary           `json:"healthSummary,omitempty"`

	GeneTestResults   []GeneTestResult  `json:"geneTestResults,omitempty"`
	GeneticCategories []GeneticCategory `json:"categories,omitempty"`
}

// ReportContent is the free-text section, stored as scalar columns on the
// report row.
type ReportContent struct {
	Introduction          string `json:"introduction"`
	GenomicsExplanation   string `json:"genomicsExplanation"`
	GenesHealthImpact     string `json:"genesHealthImpact"`
	FundamentalsPRS       string `json:"fundamentalsPRS"`
	UtilityDoctors        string `json:"utilityDoctors"`
	MicroarrayExplanation string `json:"microarrayExplanation"`
	MicroarrayData        string `json:"microarrayData"`
}

// ReportSettings holds per-report styling.
type ReportSettings struct {
	Title       string      `json:"title"`
	Subtitle    string      `json:"subtitle"`
	CompanyName string      `json:"companyName"`
	HeaderColor string      `json:"headerColor"`
	AccentColor string      `json:"accentColor"`
	Fonts       ReportFonts `json:"fonts"`
}

type ReportFonts struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Mono      string `json:"mono"`
}

type ReportSummaries struct {
	NutrigenomicsSummary    string `json:"nutrigenomicsSummary"`
	ExerciseGenomicsSummary string `json:"exerciseGenomicsSummary"`
}

type MetabolicSummary struct {
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

// DietFieldDefinition pairs section-level meta text with the configurable
// diet fields. Definition rows are regenerated on every save; only the
// FieldID on each field survives as a stable cross-save identifier.
type DietFieldDefinition struct {
	Meta   DietFieldMeta `json:"meta"`
	Fields []DietField   `json:"fields"`
}

type DietFieldMeta struct {
	Quote       string `json:"quote"`
	Description string `json:"description"`
}

type DietField struct {
	ID                   string `json:"id"`
	Label                string `json:"label"`
	Category             string `json:"category"`
	Min                  int    `json:"min"`
	Max                  int    `json:"max"`
	HighRecommendation   string `json:"highRecommendation"`
	NormalRecommendation string `json:"normalRecommendation"`
	LowRecommendation    string `json:"lowRecommendation"`
}

// DietLevel classifies a diet-analysis score.
type DietLevel string

const (
	DietLevelLow    DietLevel = "LOW"
	DietLevelNormal DietLevel = "NORMAL"
	DietLevelHigh   DietLevel = "HIGH"
)

// DietAnalysisResult records the patient's score against one diet field.
type DietAnalysisResult struct {
	ID              string              `json:"id,omitempty"`
	FieldID         string              `json:"fieldId"`
	Score           int                 `json:"score"`
	Level           DietLevel           `json:"level"`
	Recommendation  string              `json:"recommendation"`
	Recommendations DietRecommendations `json:"recommendations"`
	SelectedLevel   DietLevel           `json:"selectedLevel"`
}

type DietRecommendations struct {
	Low    string `json:"LOW"`
	Normal string `json:"NORMAL"`
	High   string `json:"HIGH"`
}

type NutrientData struct {
	Score        int    `json:"score"`
	HealthImpact string `json:"healthImpact"`
	IntakeLevel  string `json:"intakeLevel"`
	Source       string `json:"source"`
}

// NutritionData maps section name to field name to nutrient details.
type NutritionData struct {
	Quote       string                             `json:"quote"`
	Description string                             `json:"description"`
	Data        map[string]map[string]NutrientData `json:"data"`
}

type HealthConditionStatus struct {
	Status       string   `json:"status"`
	Description  string   `json:"description"`
	Sensitivity  string   `json:"sensitivity"`
	Avoid        []string `json:"avoid"`
	Follow       []string `json:"follow"`
	Consume      []string `json:"consume"`
	Monitor      []string `json:"monitor"`
	AvoidLabel   string   `json:"avoidLabel"`
	FollowLabel  string   `json:"followLabel"`
	ConsumeLabel string   `json:"consumeLabel"`
	MonitorLabel string   `json:"monitorLabel"`
}

// LifestyleConditions keeps category data under an explicit Categories field
// so "quote" and "description" can never collide with a category id.
type LifestyleConditions struct {
	Quote       string                                      `json:"quote"`
	Description string                                      `json:"description"`
	Categories  map[string]map[string]HealthConditionStatus `json:"categories"`
}

type MetabolicGene struct {
	Name     string `json:"name"`
	Genotype string `json:"genotype"`
	Impact   string `json:"impact"`
}

// MetabolicAreaData groups the genes of one metabolic area together with the
// area-level impact and advice text.
type MetabolicAreaData struct {
	Impact string          `json:"impact"`
	Advice string          `json:"advice"`
	Genes  []MetabolicGene `json:"genes"`
}

// MetabolicCore keys area data under an explicit Areas field, mirroring the
// LifestyleConditions layout.
type MetabolicCore struct {
	Quote       string                       `json:"quote"`
	Description string                       `json:"description"`
	Areas       map[string]MetabolicAreaData `json:"areas"`
}

type DigestiveHealthEntry struct {
	Title       string `json:"title"`
	Icon        string `json:"icon"`
	Sensitivity string `json:"sensitivity"`
	Good        string `json:"good"`
	Bad         string `json:"bad"`
}

type DigestiveHealth struct {
	Quote       string                          `json:"quote"`
	Description string                          `json:"description"`
	Data        map[string]DigestiveHealthEntry `json:"data"`
}

type AddictionEntry struct {
	Title           string `json:"title"`
	Icon            string `json:"icon"`
	SensitivityIcon string `json:"sensitivityIcon"`
}

type GenesAndAddiction struct {
	Quote       string                    `json:"quote"`
	Description string                    `json:"description"`
	Data        map[string]AddictionEntry `json:"data"`
}

type SleepEntry struct {
	Title        string `json:"title"`
	Intervention string `json:"intervention"`
	Image        string `json:"image"`
}

type SleepAndRest struct {
	Quote       string                `json:"quote"`
	Description string                `json:"description"`
	Data        map[string]SleepEntry `json:"data"`
}

type AllergyEntry struct {
	Title string `json:"title"`
	Image string `json:"image"`
}

type AllergiesAndSensitivity struct {
	Quote         string                  `json:"quote"`
	Description   string                  `json:"description"`
	GeneralAdvice string                  `json:"generalAdvice"`
	Data          map[string]AllergyEntry `json:"data"`
}

type DiagnosticTests struct {
	HalfYearly []string `json:"halfYearly"`
	Yearly     []string `json:"yearly"`
}

type NutritionalSupplement struct {
	Supplement string `json:"supplement"`
	Needed     bool   `json:"needed"`
}

type PreventiveHealth struct {
	Description            string                  `json:"description"`
	DiagnosticTests        DiagnosticTests         `json:"diagnosticTests"`
	NutritionalSupplements []NutritionalSupplement `json:"nutritionalSupplements"`
}

// FamilyGeneticImpact rows require a non-empty gene, normalAlleles and
// yourResult; rows missing any of those are dropped at save time.
type FamilyGeneticImpact struct {
	ID            string `json:"id,omitempty"`
	Gene          string `json:"gene"`
	NormalAlleles string `json:"normalAlleles"`
	YourResult    string `json:"yourResult"`
	HealthImpact  string `json:"healthImpact"`
}

type FamilyGeneticImpactSection struct {
	Description string                `json:"description"`
	Impacts     []FamilyGeneticImpact `json:"impacts"`
}

type GenomicSubcategory struct {
	Area  string   `json:"area"`
	Trait string   `json:"trait"`
	Genes []string `json:"genes"`
}

type GenomicCategoryGroup struct {
	Category      string               `json:"category"`
	Subcategories []GenomicSubcategory `json:"subcategories"`
}

// GenomicAnalysisTable is 1:1 with a report. Category and subcategory order
// is preserved through explicit position columns.
type GenomicAnalysisTable struct {
	Description string                 `json:"description"`
	Categories  []GenomicCategoryGroup `json:"categories"`
}

type HealthSummaryEntry struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type HealthSummary struct {
	Description string               `json:"description"`
	Data        []HealthSummaryEntry `json:"data"`
}

type GeneTestResult struct {
	GeneCode  string `json:"genecode"`
	GeneName  string `json:"geneName"`
	Variation string `json:"variation"`
	Result    string `json:"result"`
}

// GeneticCategory drives the category pages of the rendered report.
type GeneticCategory struct {
	CategoryID  string   `json:"categoryId"`
	Category    string   `json:"category"`
	ImageURL    string   `json:"imageUrl"`
	Description string   `json:"description"`
	Parameters  []string `json:"parameters"`
	IsActive    bool     `json:"isActive"`
	Order       int      `json:"order"`
}

// NewPatient returns an empty patient with one empty report. The zero values
// here must match exactly what decoding a report with no rows produces, so
// that a fresh save followed by a load shows no diff.
func NewPatient() *Patient {
	return &Patient{
		ID:      uuid.NewString(),
		Info:    PatientInfo{},
		Reports: []*Report{NewReport()},
	}
}

// NewReport returns a report with every section at its zero value.
func NewReport() *Report {
	return &Report{
		ID:               uuid.NewString(),
		Content:          &ReportContent{},
		Settings:         &ReportSettings{},
		Summaries:        &ReportSummaries{},
		MetabolicSummary: &MetabolicSummary{Strengths: []string{}, Weaknesses: []string{}},

		DietFieldCategories:         []string{},
		DynamicDietFieldDefinitions: []DietFieldDefinition{},
		PatientDietAnalysisResults:  []DietAnalysisResult{},

		NutritionData:           &NutritionData{Data: map[string]map[string]NutrientData{}},
		SportsAndFitness:        json.RawMessage(`{}`),
		LifestyleConditions:     &LifestyleConditions{Categories: map[string]map[string]HealthConditionStatus{}},
		LifestyleCategoryImages: map[string]string{},
		MetabolicCore:           &MetabolicCore{Areas: map[string]MetabolicAreaData{}},
		DigestiveHealth:         &DigestiveHealth{Data: map[string]DigestiveHealthEntry{}},
		GenesAndAddiction:       &GenesAndAddiction{Data: map[string]AddictionEntry{}},
		SleepAndRest:            &SleepAndRest{Data: map[string]SleepEntry{}},
		AllergiesAndSensitivity: &AllergiesAndSensitivity{Data: map[string]AllergyEntry{}},
		PreventiveHealth: &PreventiveHealth{
			DiagnosticTests:        DiagnosticTests{HalfYearly: []string{}, Yearly: []string{}},
			NutritionalSupplements: []NutritionalSupplement{},
		},
		FamilyGeneticImpact:  &FamilyGeneticImpactSection{Impacts: []FamilyGeneticImpact{}},
		GenomicAnalysisTable: &GenomicAnalysisTable{Categories: []GenomicCategoryGroup{}},
		HealthSummary:        &HealthSummary{Data: []HealthSummaryEntry{}},

		GeneTestResults:   []GeneTestResult{},
		GeneticCategories: []GeneticCategory{},
	}
}
