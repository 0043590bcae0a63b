package patient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/genreport/genreport/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG creates the Postgres-backed patient repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// reportScalars mirrors the scalar columns on the reports row: content,
// settings, summaries and every section's quote/description pair.
type reportScalars struct {
	id   string
	name string

	content   ReportContent
	settings  ReportSettings
	summaries ReportSummaries

	metabolicStrengths  []string
	metabolicWeaknesses []string
	dietFieldCategories []string
	sportsAndFitness    []byte

	nutritionQuote, nutritionDescription   string
	lifestyleQuote, lifestyleDescription   string
	metabolicQuote, metabolicDescription   string
	digestiveQuote, digestiveDescription   string
	addictionQuote, addictionDescription   string
	sleepQuote, sleepDescription           string
	allergyQuote, allergyDescription       string
	allergyGeneralAdvice                   string
	preventiveDescription                  string
	familyImpactDescription                string
	healthSummaryDescription               string
}

const reportCols = `id, name,
	introduction, genomics_explanation, genes_health_impact, fundamentals_prs,
	utility_doctors, microarray_explanation, microarray_data,
	title, subtitle, company_name, header_color, accent_color,
	primary_font, secondary_font, mono_font,
	nutrigenomics_summary, exercise_genomics_summary,
	metabolic_strengths, metabolic_weaknesses, diet_field_categories,
	sports_and_fitness,
	nutrition_quote, nutrition_description,
	lifestyle_quote, lifestyle_description,
	metabolic_quote, metabolic_description,
	digestive_quote, digestive_description,
	addiction_quote, addiction_description,
	sleep_quote, sleep_description,
	allergy_quote, allergy_description, allergy_general_advice,
	preventive_description, family_impact_description, health_summary_description`

func scanReportScalars(row pgx.Row) (*reportScalars, error) {
	var s reportScalars
	err := row.Scan(&s.id, &s.name,
		&s.content.Introduction, &s.content.GenomicsExplanation, &s.content.GenesHealthImpact,
		&s.content.FundamentalsPRS, &s.content.UtilityDoctors, &s.content.MicroarrayExplanation,
		&s.content.MicroarrayData,
		&s.settings.Title, &s.settings.Subtitle, &s.settings.CompanyName,
		&s.settings.HeaderColor, &s.settings.AccentColor,
		&s.settings.Fonts.Primary, &s.settings.Fonts.Secondary, &s.settings.Fonts.Mono,
		&s.summaries.NutrigenomicsSummary, &s.summaries.ExerciseGenomicsSummary,
		&s.metabolicStrengths, &s.metabolicWeaknesses, &s.dietFieldCategories,
		&s.sportsAndFitness,
		&s.nutritionQuote, &s.nutritionDescription,
		&s.lifestyleQuote, &s.lifestyleDescription,
		&s.metabolicQuote, &s.metabolicDescription,
		&s.digestiveQuote, &s.digestiveDescription,
		&s.addictionQuote, &s.addictionDescription,
		&s.sleepQuote, &s.sleepDescription,
		&s.allergyQuote, &s.allergyDescription, &s.allergyGeneralAdvice,
		&s.preventiveDescription, &s.familyImpactDescription, &s.healthSummaryDescription)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

const patientCols = `id, name, gender, birth_date, sample_code, sample_date,
	report_date, checked_by, scientific_content, disclaimer, signature1, signature2`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Info.Name, &p.Info.Gender, &p.Info.BirthDate,
		&p.Info.SampleCode, &p.Info.SampleDate, &p.Info.ReportDate, &p.Info.CheckedBy,
		&p.Info.ScientificContent, &p.Info.Disclaimer, &p.Info.Signature1, &p.Info.Signature2)
	return &p, err
}

// ---------------------------------------------------------------------------
// Read path
// ---------------------------------------------------------------------------

func (r *repoPG) ListPatients(ctx context.Context) ([]*Patient, error) {
	q := r.conn(ctx)
	rows, err := q.Query(ctx, `SELECT `+patientCols+` FROM patients ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query patients: %w", err)
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, p := range patients {
		reports, err := r.loadReports(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("load reports for patient %s: %w", p.ID, err)
		}
		p.Reports = reports
	}
	if patients == nil {
		patients = []*Patient{}
	}
	return patients, nil
}

func (r *repoPG) GetReportTree(ctx context.Context, reportID string) (*Report, *PatientInfo, error) {
	q := r.conn(ctx)

	var patientID string
	if err := q.QueryRow(ctx, `SELECT patient_id FROM reports WHERE id = $1`, reportID).Scan(&patientID); err != nil {
		return nil, nil, err
	}
	p, err := scanPatient(q.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, patientID))
	if err != nil {
		return nil, nil, err
	}

	scalars, err := scanReportScalars(q.QueryRow(ctx, `SELECT `+reportCols+` FROM reports WHERE id = $1`, reportID))
	if err != nil {
		return nil, nil, err
	}
	report, err := r.assembleReport(ctx, scalars)
	if err != nil {
		return nil, nil, err
	}
	return report, &p.Info, nil
}

func (r *repoPG) ReportOwner(ctx context.Context, reportID string) (string, error) {
	var patientID string
	err := r.conn(ctx).QueryRow(ctx, `SELECT patient_id FROM reports WHERE id = $1`, reportID).Scan(&patientID)
	return patientID, err
}

func (r *repoPG) SampleCodeOwner(ctx context.Context, sampleCode string) (string, error) {
	var id string
	err := r.conn(ctx).QueryRow(ctx, `SELECT id FROM patients WHERE sample_code = $1`, sampleCode).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return id, err
}

func (r *repoPG) loadReports(ctx context.Context, patientID string) ([]*Report, error) {
	q := r.conn(ctx)
	rows, err := q.Query(ctx, `SELECT `+reportCols+` FROM reports WHERE patient_id = $1 ORDER BY created_at`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scalars []*reportScalars
	for rows.Next() {
		s, err := scanReportScalars(rows)
		if err != nil {
			return nil, err
		}
		scalars = append(scalars, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	reports := make([]*Report, 0, len(scalars))
	for _, s := range scalars {
		report, err := r.assembleReport(ctx, s)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// assembleReport reads every section's rows and runs the decoders, producing
// a fully populated report. A section with no rows decodes to its zero value.
func (r *repoPG) assembleReport(ctx context.Context, s *reportScalars) (*Report, error) {
	report := NewReport()
	report.ID = s.id
	report.Name = s.name

	content := s.content
	report.Content = &content
	settings := s.settings
	report.Settings = &settings
	summaries := s.summaries
	report.Summaries = &summaries
	report.MetabolicSummary = &MetabolicSummary{
		Strengths:  emptyIfNil(s.metabolicStrengths),
		Weaknesses: emptyIfNil(s.metabolicWeaknesses),
	}
	report.DietFieldCategories = emptyIfNil(s.dietFieldCategories)
	if len(s.sportsAndFitness) > 0 {
		report.SportsAndFitness = json.RawMessage(s.sportsAndFitness)
	}

	nutritionRows, err := r.nutritionRows(ctx, s.id)
	if err != nil {
		return nil, fmt.Errorf("nutrition rows: %w", err)
	}
	report.NutritionData = decodeNutrition(s.nutritionQuote, s.nutritionDescription, nutritionRows)

	defRows, fieldsByDef, err := r.dietDefinitionRows(ctx, s.id)
	if err != nil {
		return nil, fmt.Errorf("diet definition rows: %w", err)
	}
	report.DynamicDietFieldDefinitions = decodeDietDefinitions(defRows, fieldsByDef)
	if report.DynamicDietFieldDefinitions == nil {
		report.DynamicDietFieldDefinitions = []DietFieldDefinition{}
	}

	analysisRows, err := r.dietAnalysisRows(ctx, s.id)
	if err != nil {
		return nil, fmt.Errorf("diet analysis rows: %w", err)
	}
	report.PatientDietAnalysisResults = decodeDietAnalysis(analysisRows)

	lcRows, err := r.lifestyleConditionRows(ctx, s.id)
	if err != nil {
		return nil, fmt.Errorf("lifestyle condition rows: %w", err)
	}
	report.LifestyleConditions = decodeLifestyleConditions(s.lifestyleQuote, s.lifestyleDescription, lcRows)

	imageRows, err := r.lifestyleImageRows(ctx, s.id)
	if err != nil {
		return nil, fmt.Errorf("lifestyle image rows: %w", err)
	}
	report.LifestyleCategoryImages = decodeLifestyleImages(imageRows)

	metabolicRows, err := r.metabolicRows(ctx, s.id)
	if err != nil {
		return nil, fmt.Errorf("metabolic rows: %w", err)
	}
	report.MetabolicCore = decodeMetabolicCore(s.metabolicQuote, s.metabolicDescription, metabolicRows)

	digestiveRows, err := r.digestiveRows(ctx, s.id)
	if err != nil {
		return nil, fmt.Errorf("digestive rows: %w", err)
	}
	report.DigestiveHealth = decodeDigestive(s.digestiveQuote, s.digestiveDescription, digestiveRows)

	addictionRows, err := r.addictionRows(ctx, s.id)
	if err != nil {
		return nil, fmt.Errorf("addiction rows: %w", err)
	}
	report.GenesAndAddiction = decodeAddiction(s.addictionQuote, s.addictionDescription, addictionRows)

	sleepRows, err := r.sleepRows(ctx, s.id)
	if err != nil {
		return nil, fmt.Errorf("sleep rows: %w", err)
	}
	report.SleepAndRest = decodeSleep(s.sleepQuote, s.sleepDescription, sleepRows)

	allergyRows, err := r.allergyRows(ctx, s.id)
	if err != nil {
		return nil, fmt.Errorf("allergy rows: %w", err)
	}
	report.AllergiesAndSensitivity = decodeAllergies(s.allergyQuote, s.allergyDescription, s.allergyGeneralAdvice, allergyRows)

	testRows, supplementRows, err := r.preventiveRows(ctx, s.id)
	if err != nil {
		return nil, fmt.Errorf("preventive rows: %w", err)
	}
	report.PreventiveHealth = decodePreventive(s.preventiveDescription, testRows, supplementRows)

	impactRows, err := r.familyImpactRows(ctx, s.id)
	if err != nil {
		return nil, fmt.Errorf("family impact rows: %w", err)
	}
	report.FamilyGeneticImpact = decodeFamilyImpacts(s.familyImpactDescription, impactRows)

	table, err := r.genomicTable(ctx, s.id)
	if err != nil {
		return nil, fmt.Errorf("genomic table: %w", err)
	}
	report.GenomicAnalysisTable = table

	summaryRows, err := r.healthSummaryRows(ctx, s.id)
	if err != nil {
		return nil, fmt.Errorf("health summary rows: %w", err)
	}
	report.HealthSummary = decodeHealthSummary(s.healthSummaryDescription, summaryRows)

	geneRows, err := r.geneTestRows(ctx, s.id)
	if err != nil {
		return nil, fmt.Errorf("gene test rows: %w", err)
	}
	report.GeneTestResults = decodeGeneTests(geneRows)

	categoryRows, err := r.geneticCategoryRows(ctx, s.id)
	if err != nil {
		return nil, fmt.Errorf("genetic category rows: %w", err)
	}
	report.GeneticCategories = decodeGeneticCategories(categoryRows)

	return report, nil
}

func (r *repoPG) nutritionRows(ctx context.Context, reportID string) ([]NutritionRow, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, report_id, section, field, score, health_impact, intake_level, source
		FROM nutrition_data WHERE report_id = $1 ORDER BY section, field`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []NutritionRow
	for rows.Next() {
		var n NutritionRow
		if err := rows.Scan(&n.ID, &n.ReportID, &n.Section, &n.Field, &n.Score,
			&n.HealthImpact, &n.IntakeLevel, &n.Source); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *repoPG) dietDefinitionRows(ctx context.Context, reportID string) ([]DietDefinitionRow, map[string][]DietFieldRow, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, report_id, quote, description
		FROM diet_field_definitions WHERE report_id = $1 ORDER BY created_at`, reportID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	var defs []DietDefinitionRow
	for rows.Next() {
		var d DietDefinitionRow
		if err := rows.Scan(&d.ID, &d.ReportID, &d.Quote, &d.Description); err != nil {
			return nil, nil, err
		}
		defs = append(defs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	fieldsByDef := make(map[string][]DietFieldRow)
	fieldRows, err := r.conn(ctx).Query(ctx, `
		SELECT f.id, f.definition_id, f.field_id, f.label, f.category, f.min, f.max,
			f.high_recommendation, f.normal_recommendation, f.low_recommendation
		FROM diet_fields f
		JOIN diet_field_definitions d ON d.id = f.definition_id
		WHERE d.report_id = $1 ORDER BY f.created_at`, reportID)
	if err != nil {
		return nil, nil, err
	}
	defer fieldRows.Close()
	for fieldRows.Next() {
		var f DietFieldRow
		if err := fieldRows.Scan(&f.ID, &f.DefinitionID, &f.FieldID, &f.Label, &f.Category,
			&f.Min, &f.Max, &f.HighRecommendation, &f.NormalRecommendation, &f.LowRecommendation); err != nil {
			return nil, nil, err
		}
		fieldsByDef[f.DefinitionID] = append(fieldsByDef[f.DefinitionID], f)
	}
	return defs, fieldsByDef, fieldRows.Err()
}

func (r *repoPG) dietAnalysisRows(ctx context.Context, reportID string) ([]DietAnalysisRow, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, report_id, field_id, score, level, selected_level, recommendation,
			low_recommendation, normal_recommendation, high_recommendation
		FROM diet_analysis_results WHERE report_id = $1 ORDER BY created_at`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DietAnalysisRow
	for rows.Next() {
		var a DietAnalysisRow
		if err := rows.Scan(&a.ID, &a.ReportID, &a.FieldID, &a.Score, &a.Level, &a.SelectedLevel,
			&a.Recommendation, &a.LowRecommendation, &a.NormalRecommendation, &a.HighRecommendation); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repoPG) lifestyleConditionRows(ctx context.Context, reportID string) ([]LifestyleConditionRow, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, report_id, category_id, condition_name, status, description, sensitivity,
			avoid, follow, consume, monitor, avoid_label, follow_label, consume_label, monitor_label
		FROM lifestyle_conditions WHERE report_id = $1 ORDER BY category_id, condition_name`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LifestyleConditionRow
	for rows.Next() {
		var c LifestyleConditionRow
		if err := rows.Scan(&c.ID, &c.ReportID, &c.CategoryID, &c.ConditionName, &c.Status,
			&c.Description, &c.Sensitivity, &c.Avoid, &c.Follow, &c.Consume, &c.Monitor,
			&c.AvoidLabel, &c.FollowLabel, &c.ConsumeLabel, &c.MonitorLabel); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repoPG) lifestyleImageRows(ctx context.Context, reportID string) ([]LifestyleImageRow, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, report_id, category_id, image_url
		FROM lifestyle_category_images WHERE report_id = $1`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LifestyleImageRow
	for rows.Next() {
		var i LifestyleImageRow
		if err := rows.Scan(&i.ID, &i.ReportID, &i.CategoryID, &i.ImageURL); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *repoPG) metabolicRows(ctx context.Context, reportID string) ([]MetabolicRow, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, report_id, area, gene_name, genotype, impact, area_impact, area_advice
		FROM metabolic_core_data WHERE report_id = $1 ORDER BY created_at`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MetabolicRow
	for rows.Next() {
		var m MetabolicRow
		if err := rows.Scan(&m.ID, &m.ReportID, &m.Area, &m.GeneName, &m.Genotype,
			&m.Impact, &m.AreaImpact, &m.AreaAdvice); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repoPG) digestiveRows(ctx context.Context, reportID string) ([]DigestiveRow, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, report_id, key, title, icon, sensitivity, good, bad
		FROM digestive_health_data WHERE report_id = $1`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DigestiveRow
	for rows.Next() {
		var d DigestiveRow
		if err := rows.Scan(&d.ID, &d.ReportID, &d.Key, &d.Title, &d.Icon,
			&d.Sensitivity, &d.Good, &d.Bad); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *repoPG) addictionRows(ctx context.Context, reportID string) ([]AddictionRow, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, report_id, key, title, icon, sensitivity_icon
		FROM addiction_data WHERE report_id = $1`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AddictionRow
	for rows.Next() {
		var a AddictionRow
		if err := rows.Scan(&a.ID, &a.ReportID, &a.Key, &a.Title, &a.Icon, &a.SensitivityIcon); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repoPG) sleepRows(ctx context.Context, reportID string) ([]SleepRow, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, report_id, key, title, intervention, image
		FROM sleep_data WHERE report_id = $1`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SleepRow
	for rows.Next() {
		var s SleepRow
		if err := rows.Scan(&s.ID, &s.ReportID, &s.Key, &s.Title, &s.Intervention, &s.Image); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repoPG) allergyRows(ctx context.Context, reportID string) ([]AllergyRow, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, report_id, key, title, image
		FROM allergy_data WHERE report_id = $1`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AllergyRow
	for rows.Next() {
		var a AllergyRow
		if err := rows.Scan(&a.ID, &a.ReportID, &a.Key, &a.Title, &a.Image); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repoPG) preventiveRows(ctx context.Context, reportID string) ([]PreventiveTestRow, []SupplementRow, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, report_id, test_name, frequency
		FROM preventive_tests WHERE report_id = $1 ORDER BY created_at`, reportID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	var tests []PreventiveTestRow
	for rows.Next() {
		var t PreventiveTestRow
		if err := rows.Scan(&t.ID, &t.ReportID, &t.TestName, &t.Frequency); err != nil {
			return nil, nil, err
		}
		tests = append(tests, t)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	supRows, err := r.conn(ctx).Query(ctx, `
		SELECT id, report_id, supplement, needed
		FROM nutritional_supplements WHERE report_id = $1 ORDER BY created_at`, reportID)
	if err != nil {
		return nil, nil, err
	}
	defer supRows.Close()
	var supplements []SupplementRow
	for supRows.Next() {
		var s SupplementRow
		if err := supRows.Scan(&s.ID, &s.ReportID, &s.Supplement, &s.Needed); err != nil {
			return nil, nil, err
		}
		supplements = append(supplements, s)
	}
	return tests, supplements, supRows.Err()
}

func (r *repoPG) familyImpactRows(ctx context.Context, reportID string) ([]FamilyImpactRow, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, report_id, gene, normal_alleles, your_result, health_impact
		FROM family_genetic_impacts WHERE report_id = $1 ORDER BY created_at`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []FamilyImpactRow
	for rows.Next() {
		var f FamilyImpactRow
		if err := rows.Scan(&f.ID, &f.ReportID, &f.Gene, &f.NormalAlleles, &f.YourResult, &f.HealthImpact); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *repoPG) genomicTable(ctx context.Context, reportID string) (*GenomicAnalysisTable, error) {
	var tableID, description string
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, description FROM genomic_analysis_tables WHERE report_id = $1`, reportID).
		Scan(&tableID, &description)
	if errors.Is(err, pgx.ErrNoRows) {
		return &GenomicAnalysisTable{Categories: []GenomicCategoryGroup{}}, nil
	}
	if err != nil {
		return nil, err
	}

	catRows, err := r.conn(ctx).Query(ctx, `
		SELECT id, table_id, category, position
		FROM genomic_category_groups WHERE table_id = $1 ORDER BY position`, tableID)
	if err != nil {
		return nil, err
	}
	defer catRows.Close()
	var categories []GenomicCategoryRow
	for catRows.Next() {
		var c GenomicCategoryRow
		if err := catRows.Scan(&c.ID, &c.TableID, &c.Category, &c.Position); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := catRows.Err(); err != nil {
		return nil, err
	}

	subsByCategory := make(map[string][]GenomicSubcategoryRow)
	subRows, err := r.conn(ctx).Query(ctx, `
		SELECT s.id, s.category_id, s.area, s.trait, s.genes, s.position
		FROM genomic_subcategories s
		JOIN genomic_category_groups g ON g.id = s.category_id
		WHERE g.table_id = $1 ORDER BY s.position`, tableID)
	if err != nil {
		return nil, err
	}
	defer subRows.Close()
	for subRows.Next() {
		var sub GenomicSubcategoryRow
		if err := subRows.Scan(&sub.ID, &sub.CategoryID, &sub.Area, &sub.Trait, &sub.Genes, &sub.Position); err != nil {
			return nil, err
		}
		subsByCategory[sub.CategoryID] = append(subsByCategory[sub.CategoryID], sub)
	}
	if err := subRows.Err(); err != nil {
		return nil, err
	}

	return decodeGenomicTable(description, categories, subsByCategory), nil
}

func (r *repoPG) healthSummaryRows(ctx context.Context, reportID string) ([]HealthSummaryRow, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, report_id, title, description
		FROM health_summary_entries WHERE report_id = $1 ORDER BY created_at`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []HealthSummaryRow
	for rows.Next() {
		var h HealthSummaryRow
		if err := rows.Scan(&h.ID, &h.ReportID, &h.Title, &h.Description); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *repoPG) geneTestRows(ctx context.Context, reportID string) ([]GeneTestResultRow, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, report_id, genecode, gene_name, variation, result
		FROM gene_test_results WHERE report_id = $1 ORDER BY created_at`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []GeneTestResultRow
	for rows.Next() {
		var g GeneTestResultRow
		if err := rows.Scan(&g.ID, &g.ReportID, &g.GeneCode, &g.GeneName, &g.Variation, &g.Result); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *repoPG) geneticCategoryRows(ctx context.Context, reportID string) ([]GeneticCategoryRow, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, report_id, category_id, category, image_url, description, parameters, is_active, "order"
		FROM genetic_categories WHERE report_id = $1 ORDER BY "order"`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []GeneticCategoryRow
	for rows.Next() {
		var g GeneticCategoryRow
		if err := rows.Scan(&g.ID, &g.ReportID, &g.CategoryID, &g.Category, &g.ImageURL,
			&g.Description, &g.Parameters, &g.IsActive, &g.Order); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ---------------------------------------------------------------------------
// Write path
// ---------------------------------------------------------------------------

// SavePatient upserts the patient row and then persists each report inside
// its own transaction. Section writes replace the section's rows wholesale;
// nil sections on the report are left untouched.
func (r *repoPG) SavePatient(ctx context.Context, p *Patient) error {
	if err := r.upsertPatient(ctx, p); err != nil {
		return fmt.Errorf("upsert patient %s: %w", p.ID, err)
	}
	for _, report := range p.Reports {
		report := report
		err := db.WithTx(ctx, r.pool, func(ctx context.Context) error {
			return r.saveReport(ctx, p.ID, report)
		})
		if err != nil {
			return fmt.Errorf("save report %s: %w", report.ID, err)
		}
	}
	return nil
}

func (r *repoPG) upsertPatient(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (id, name, gender, birth_date, sample_code, sample_date,
			report_date, checked_by, scientific_content, disclaimer, signature1, signature2)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, gender = EXCLUDED.gender, birth_date = EXCLUDED.birth_date,
			sample_code = EXCLUDED.sample_code, sample_date = EXCLUDED.sample_date,
			report_date = EXCLUDED.report_date, checked_by = EXCLUDED.checked_by,
			scientific_content = EXCLUDED.scientific_content, disclaimer = EXCLUDED.disclaimer,
			signature1 = EXCLUDED.signature1, signature2 = EXCLUDED.signature2,
			updated_at = NOW()`,
		p.ID, p.Info.Name, p.Info.Gender, p.Info.BirthDate, p.Info.SampleCode,
		p.Info.SampleDate, p.Info.ReportDate, p.Info.CheckedBy, p.Info.ScientificContent,
		p.Info.Disclaimer, p.Info.Signature1, p.Info.Signature2)
	return err
}

func (r *repoPG) saveReport(ctx context.Context, patientID string, report *Report) error {
	q := r.conn(ctx)

	_, err := q.Exec(ctx, `
		INSERT INTO reports (id, patient_id, name) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = COALESCE(NULLIF(EXCLUDED.name, ''), reports.name),
			updated_at = NOW()`,
		report.ID, patientID, report.Name)
	if err != nil {
		return fmt.Errorf("upsert report row: %w", err)
	}

	if c := report.Content; c != nil {
		_, err := q.Exec(ctx, `
			UPDATE reports SET introduction=$2, genomics_explanation=$3, genes_health_impact=$4,
				fundamentals_prs=$5, utility_doctors=$6, microarray_explanation=$7, microarray_data=$8
			WHERE id = $1`,
			report.ID, c.Introduction, c.GenomicsExplanation, c.GenesHealthImpact,
			c.FundamentalsPRS, c.UtilityDoctors, c.MicroarrayExplanation, c.MicroarrayData)
		if err != nil {
			return fmt.Errorf("update content: %w", err)
		}
	}

	if s := report.Settings; s != nil {
		_, err := q.Exec(ctx, `
			UPDATE reports SET title=$2, subtitle=$3, company_name=$4, header_color=$5,
				accent_color=$6, primary_font=$7, secondary_font=$8, mono_font=$9
			WHERE id = $1`,
			report.ID, s.Title, s.Subtitle, s.CompanyName, s.HeaderColor,
			s.AccentColor, s.Fonts.Primary, s.Fonts.Secondary, s.Fonts.Mono)
		if err != nil {
			return fmt.Errorf("update settings: %w", err)
		}
	}

	if s := report.Summaries; s != nil {
		_, err := q.Exec(ctx, `
			UPDATE reports SET nutrigenomics_summary=$2, exercise_genomics_summary=$3 WHERE id = $1`,
			report.ID, s.NutrigenomicsSummary, s.ExerciseGenomicsSummary)
		if err != nil {
			return fmt.Errorf("update summaries: %w", err)
		}
	}

	if m := report.MetabolicSummary; m != nil {
		_, err := q.Exec(ctx, `
			UPDATE reports SET metabolic_strengths=$2, metabolic_weaknesses=$3 WHERE id = $1`,
			report.ID, emptyIfNil(m.Strengths), emptyIfNil(m.Weaknesses))
		if err != nil {
			return fmt.Errorf("update metabolic summary: %w", err)
		}
	}

	if report.DietFieldCategories != nil {
		_, err := q.Exec(ctx, `UPDATE reports SET diet_field_categories=$2 WHERE id = $1`,
			report.ID, report.DietFieldCategories)
		if err != nil {
			return fmt.Errorf("update diet field categories: %w", err)
		}
	}

	if len(report.SportsAndFitness) > 0 {
		_, err := q.Exec(ctx, `UPDATE reports SET sports_and_fitness=$2 WHERE id = $1`,
			report.ID, []byte(report.SportsAndFitness))
		if err != nil {
			return fmt.Errorf("update sports and fitness: %w", err)
		}
	}

	if n := report.NutritionData; n != nil {
		if err := r.replaceNutrition(ctx, report.ID, n); err != nil {
			return fmt.Errorf("nutrition: %w", err)
		}
	}
	if report.DynamicDietFieldDefinitions != nil {
		if err := r.replaceDietDefinitions(ctx, report.ID, report.DynamicDietFieldDefinitions); err != nil {
			return fmt.Errorf("diet definitions: %w", err)
		}
	}
	if report.PatientDietAnalysisResults != nil {
		if err := r.replaceDietAnalysis(ctx, report.ID, report.PatientDietAnalysisResults); err != nil {
			return fmt.Errorf("diet analysis: %w", err)
		}
	}
	if lc := report.LifestyleConditions; lc != nil {
		if err := r.replaceLifestyleConditions(ctx, report.ID, lc); err != nil {
			return fmt.Errorf("lifestyle conditions: %w", err)
		}
	}
	if report.LifestyleCategoryImages != nil {
		if err := r.replaceLifestyleImages(ctx, report.ID, report.LifestyleCategoryImages); err != nil {
			return fmt.Errorf("lifestyle images: %w", err)
		}
	}
	if mc := report.MetabolicCore; mc != nil {
		if err := r.replaceMetabolicCore(ctx, report.ID, mc); err != nil {
			return fmt.Errorf("metabolic core: %w", err)
		}
	}
	if d := report.DigestiveHealth; d != nil {
		if err := r.replaceDigestive(ctx, report.ID, d); err != nil {
			return fmt.Errorf("digestive health: %w", err)
		}
	}
	if g := report.GenesAndAddiction; g != nil {
		if err := r.replaceAddiction(ctx, report.ID, g); err != nil {
			return fmt.Errorf("genes and addiction: %w", err)
		}
	}
	if s := report.SleepAndRest; s != nil {
		if err := r.replaceSleep(ctx, report.ID, s); err != nil {
			return fmt.Errorf("sleep and rest: %w", err)
		}
	}
	if a := report.AllergiesAndSensitivity; a != nil {
		if err := r.replaceAllergies(ctx, report.ID, a); err != nil {
			return fmt.Errorf("allergies: %w", err)
		}
	}
	if p := report.PreventiveHealth; p != nil {
		if err := r.replacePreventive(ctx, report.ID, p); err != nil {
			return fmt.Errorf("preventive health: %w", err)
		}
	}
	if f := report.FamilyGeneticImpact; f != nil {
		if err := r.replaceFamilyImpacts(ctx, report.ID, f); err != nil {
			return fmt.Errorf("family genetic impact: %w", err)
		}
	}
	if g := report.GenomicAnalysisTable; g != nil {
		if err := r.replaceGenomicTable(ctx, report.ID, g); err != nil {
			return fmt.Errorf("genomic analysis table: %w", err)
		}
	}
	if h := report.HealthSummary; h != nil {
		if err := r.replaceHealthSummary(ctx, report.ID, h); err != nil {
			return fmt.Errorf("health summary: %w", err)
		}
	}
	if report.GeneTestResults != nil {
		if err := r.replaceGeneTests(ctx, report.ID, report.GeneTestResults); err != nil {
			return fmt.Errorf("gene test results: %w", err)
		}
	}
	if report.GeneticCategories != nil {
		if err := r.replaceGeneticCategories(ctx, report.ID, report.GeneticCategories); err != nil {
			return fmt.Errorf("genetic categories: %w", err)
		}
	}

	return nil
}

func (r *repoPG) replaceNutrition(ctx context.Context, reportID string, n *NutritionData) error {
	q := r.conn(ctx)
	if _, err := q.Exec(ctx, `
		UPDATE reports SET nutrition_quote=$2, nutrition_description=$3 WHERE id = $1`,
		reportID, n.Quote, n.Description); err != nil {
		return err
	}
	if _, err := q.Exec(ctx, `DELETE FROM nutrition_data WHERE report_id = $1`, reportID); err != nil {
		return err
	}
	for _, row := range encodeNutrition(reportID, n) {
		if _, err := q.Exec(ctx, `
			INSERT INTO nutrition_data (id, report_id, section, field, score, health_impact, intake_level, source)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			row.ID, row.ReportID, row.Section, row.Field, row.Score,
			row.HealthImpact, row.IntakeLevel, row.Source); err != nil {
			return err
		}
	}
	return nil
}

// replaceDietDefinitions deletes every definition for the report, which
// cascades to its field rows, then recreates both from the payload.
func (r *repoPG) replaceDietDefinitions(ctx context.Context, reportID string, defs []DietFieldDefinition) error {
	q := r.conn(ctx)
	if _, err := q.Exec(ctx, `DELETE FROM diet_field_definitions WHERE report_id = $1`, reportID); err != nil {
		return err
	}
	defRows, fieldRows := encodeDietDefinitions(reportID, defs)
	for _, d := range defRows {
		if _, err := q.Exec(ctx, `
			INSERT INTO diet_field_definitions (id, report_id, quote, description)
			VALUES ($1,$2,$3,$4)`,
			d.ID, d.ReportID, d.Quote, d.Description); err != nil {
			return err
		}
	}
	for _, f := range fieldRows {
		if _, err := q.Exec(ctx, `
			INSERT INTO diet_fields (id, definition_id, field_id, label, category, min, max,
				high_recommendation, normal_recommendation, low_recommendation)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			f.ID, f.DefinitionID, f.FieldID, f.Label, f.Category, f.Min, f.Max,
			f.HighRecommendation, f.NormalRecommendation, f.LowRecommendation); err != nil {
			return err
		}
	}
	return nil
}

// replaceDietAnalysis looks up the existing row ids by field_id before the
// replace so resaving the same field keeps its id stable.
func (r *repoPG) replaceDietAnalysis(ctx context.Context, reportID string, results []DietAnalysisResult) error {
	q := r.conn(ctx)

	existingIDs := make(map[string]string)
	rows, err := q.Query(ctx, `SELECT id, field_id FROM diet_analysis_results WHERE report_id = $1`, reportID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var id, fieldID string
		if err := rows.Scan(&id, &fieldID); err != nil {
			rows.Close()
			return err
		}
		existingIDs[fieldID] = id
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if _, err := q.Exec(ctx, `DELETE FROM diet_analysis_results WHERE report_id = $1`, reportID); err != nil {
		return err
	}
	for _, row := range encodeDietAnalysis(reportID, results, existingIDs) {
		if _, err := q.Exec(ctx, `
			INSERT INTO diet_analysis_results (id, report_id, field_id, score, level, selected_level,
				recommendation, low_recommendation, normal_recommendation, high_recommendation)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			row.ID, row.ReportID, row.FieldID, row.Score, row.Level, row.SelectedLevel,
			row.Recommendation, row.LowRecommendation, row.NormalRecommendation, row.HighRecommendation); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) replaceLifestyleConditions(ctx context.Context, reportID string, lc *LifestyleConditions) error {
	q := r.conn(ctx)
	if _, err := q.Exec(ctx, `
		UPDATE reports SET lifestyle_quote=$2, lifestyle_description=$3 WHERE id = $1`,
		reportID, lc.Quote, lc.Description); err != nil {
		return err
	}
	if _, err := q.Exec(ctx, `DELETE FROM lifestyle_conditions WHERE report_id = $1`, reportID); err != nil {
		return err
	}
	for _, row := range encodeLifestyleConditions(reportID, lc) {
		if _, err := q.Exec(ctx, `
			INSERT INTO lifestyle_conditions (id, report_id, category_id, condition_name, status,
				description, sensitivity, avoid, follow, consume, monitor,
				avoid_label, follow_label, consume_label, monitor_label)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
			row.ID, row.ReportID, row.CategoryID, row.ConditionName, row.Status,
			row.Description, row.Sensitivity, row.Avoid, row.Follow, row.Consume, row.Monitor,
			row.AvoidLabel, row.FollowLabel, row.ConsumeLabel, row.MonitorLabel); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) replaceLifestyleImages(ctx context.Context, reportID string, images map[string]string) error {
	q := r.conn(ctx)
	if _, err := q.Exec(ctx, `DELETE FROM lifestyle_category_images WHERE report_id = $1`, reportID); err != nil {
		return err
	}
	for _, row := range encodeLifestyleImages(reportID, images) {
		if _, err := q.Exec(ctx, `
			INSERT INTO lifestyle_category_images (id, report_id, category_id, image_url)
			VALUES ($1,$2,$3,$4)`,
			row.ID, row.ReportID, row.CategoryID, row.ImageURL); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) replaceMetabolicCore(ctx context.Context, reportID string, mc *MetabolicCore) error {
	q := r.conn(ctx)
	if _, err := q.Exec(ctx, `
		UPDATE reports SET metabolic_quote=$2, metabolic_description=$3 WHERE id = $1`,
		reportID, mc.Quote, mc.Description); err != nil {
		return err
	}
	if _, err := q.Exec(ctx, `DELETE FROM metabolic_core_data WHERE report_id = $1`, reportID); err != nil {
		return err
	}
	for _, row := range encodeMetabolicCore(reportID, mc) {
		if _, err := q.Exec(ctx, `
			INSERT INTO metabolic_core_data (id, report_id, area, gene_name, genotype, impact, area_impact, area_advice)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			row.ID, row.ReportID, row.Area, row.GeneName, row.Genotype,
			row.Impact, row.AreaImpact, row.AreaAdvice); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) replaceDigestive(ctx context.Context, reportID string, d *DigestiveHealth) error {
	q := r.conn(ctx)
	if _, err := q.Exec(ctx, `
		UPDATE reports SET digestive_quote=$2, digestive_description=$3 WHERE id = $1`,
		reportID, d.Quote, d.Description); err != nil {
		return err
	}
	if _, err := q.Exec(ctx, `DELETE FROM digestive_health_data WHERE report_id = $1`, reportID); err != nil {
		return err
	}
	for _, row := range encodeDigestive(reportID, d) {
		if _, err := q.Exec(ctx, `
			INSERT INTO digestive_health_data (id, report_id, key, title, icon, sensitivity, good, bad)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			row.ID, row.ReportID, row.Key, row.Title, row.Icon,
			row.Sensitivity, row.Good, row.Bad); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) replaceAddiction(ctx context.Context, reportID string, g *GenesAndAddiction) error {
	q := r.conn(ctx)
	if _, err := q.Exec(ctx, `
		UPDATE reports SET addiction_quote=$2, addiction_description=$3 WHERE id = $1`,
		reportID, g.Quote, g.Description); err != nil {
		return err
	}
	if _, err := q.Exec(ctx, `DELETE FROM addiction_data WHERE report_id = $1`, reportID); err != nil {
		return err
	}
	for _, row := range encodeAddiction(reportID, g) {
		if _, err := q.Exec(ctx, `
			INSERT INTO addiction_data (id, report_id, key, title, icon, sensitivity_icon)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			row.ID, row.ReportID, row.Key, row.Title, row.Icon, row.SensitivityIcon); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) replaceSleep(ctx context.Context, reportID string, s *SleepAndRest) error {
	q := r.conn(ctx)
	if _, err := q.Exec(ctx, `
		UPDATE reports SET sleep_quote=$2, sleep_description=$3 WHERE id = $1`,
		reportID, s.Quote, s.Description); err != nil {
		return err
	}
	if _, err := q.Exec(ctx, `DELETE FROM sleep_data WHERE report_id = $1`, reportID); err != nil {
		return err
	}
	for _, row := range encodeSleep(reportID, s) {
		if _, err := q.Exec(ctx, `
			INSERT INTO sleep_data (id, report_id, key, title, intervention, image)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			row.ID, row.ReportID, row.Key, row.Title, row.Intervention, row.Image); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) replaceAllergies(ctx context.Context, reportID string, a *AllergiesAndSensitivity) error {
	q := r.conn(ctx)
	if _, err := q.Exec(ctx, `
		UPDATE reports SET allergy_quote=$2, allergy_description=$3, allergy_general_advice=$4 WHERE id = $1`,
		reportID, a.Quote, a.Description, a.GeneralAdvice); err != nil {
		return err
	}
	if _, err := q.Exec(ctx, `DELETE FROM allergy_data WHERE report_id = $1`, reportID); err != nil {
		return err
	}
	for _, row := range encodeAllergies(reportID, a) {
		if _, err := q.Exec(ctx, `
			INSERT INTO allergy_data (id, report_id, key, title, image)
			VALUES ($1,$2,$3,$4,$5)`,
			row.ID, row.ReportID, row.Key, row.Title, row.Image); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) replacePreventive(ctx context.Context, reportID string, p *PreventiveHealth) error {
	q := r.conn(ctx)
	if _, err := q.Exec(ctx, `
		UPDATE reports SET preventive_description=$2 WHERE id = $1`,
		reportID, p.Description); err != nil {
		return err
	}
	if _, err := q.Exec(ctx, `DELETE FROM preventive_tests WHERE report_id = $1`, reportID); err != nil {
		return err
	}
	for _, row := range encodePreventiveTests(reportID, p.DiagnosticTests) {
		if _, err := q.Exec(ctx, `
			INSERT INTO preventive_tests (id, report_id, test_name, frequency)
			VALUES ($1,$2,$3,$4)`,
			row.ID, row.ReportID, row.TestName, row.Frequency); err != nil {
			return err
		}
	}
	if _, err := q.Exec(ctx, `DELETE FROM nutritional_supplements WHERE report_id = $1`, reportID); err != nil {
		return err
	}
	for _, row := range encodeSupplements(reportID, p.NutritionalSupplements) {
		if _, err := q.Exec(ctx, `
			INSERT INTO nutritional_supplements (id, report_id, supplement, needed)
			VALUES ($1,$2,$3,$4)`,
			row.ID, row.ReportID, row.Supplement, row.Needed); err != nil {
			return err
		}
	}
	return nil
}

// replaceFamilyImpacts updates the description and replaces the impact rows.
// Both run inside the caller's per-report transaction, so either both apply
// or neither does.
func (r *repoPG) replaceFamilyImpacts(ctx context.Context, reportID string, f *FamilyGeneticImpactSection) error {
	q := r.conn(ctx)
	if _, err := q.Exec(ctx, `
		UPDATE reports SET family_impact_description=$2 WHERE id = $1`,
		reportID, f.Description); err != nil {
		return err
	}
	if _, err := q.Exec(ctx, `DELETE FROM family_genetic_impacts WHERE report_id = $1`, reportID); err != nil {
		return err
	}
	for _, row := range encodeFamilyImpacts(reportID, f.Impacts) {
		if _, err := q.Exec(ctx, `
			INSERT INTO family_genetic_impacts (id, report_id, gene, normal_alleles, your_result, health_impact)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			row.ID, row.ReportID, row.Gene, row.NormalAlleles, row.YourResult, row.HealthImpact); err != nil {
			return err
		}
	}
	return nil
}

// replaceGenomicTable upserts the 1:1 table row by report id, then replaces
// the category and subcategory rows scoped to it.
func (r *repoPG) replaceGenomicTable(ctx context.Context, reportID string, g *GenomicAnalysisTable) error {
	q := r.conn(ctx)

	var tableID string
	err := q.QueryRow(ctx, `
		INSERT INTO genomic_analysis_tables (id, report_id, description)
		VALUES (gen_random_uuid()::text, $1, $2)
		ON CONFLICT (report_id) DO UPDATE SET description = EXCLUDED.description
		RETURNING id`,
		reportID, g.Description).Scan(&tableID)
	if err != nil {
		return err
	}

	if _, err := q.Exec(ctx, `
		DELETE FROM genomic_subcategories WHERE category_id IN
			(SELECT id FROM genomic_category_groups WHERE table_id = $1)`, tableID); err != nil {
		return err
	}
	if _, err := q.Exec(ctx, `DELETE FROM genomic_category_groups WHERE table_id = $1`, tableID); err != nil {
		return err
	}

	catRows, subRows := encodeGenomicCategories(tableID, g.Categories)
	for _, cat := range catRows {
		if _, err := q.Exec(ctx, `
			INSERT INTO genomic_category_groups (id, table_id, category, position)
			VALUES ($1,$2,$3,$4)`,
			cat.ID, cat.TableID, cat.Category, cat.Position); err != nil {
			return err
		}
	}
	for _, sub := range subRows {
		if _, err := q.Exec(ctx, `
			INSERT INTO genomic_subcategories (id, category_id, area, trait, genes, position)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			sub.ID, sub.CategoryID, sub.Area, sub.Trait, sub.Genes, sub.Position); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) replaceHealthSummary(ctx context.Context, reportID string, h *HealthSummary) error {
	q := r.conn(ctx)
	if _, err := q.Exec(ctx, `
		UPDATE reports SET health_summary_description=$2 WHERE id = $1`,
		reportID, h.Description); err != nil {
		return err
	}
	if _, err := q.Exec(ctx, `DELETE FROM health_summary_entries WHERE report_id = $1`, reportID); err != nil {
		return err
	}
	for _, row := range encodeHealthSummary(reportID, h.Data) {
		if _, err := q.Exec(ctx, `
			INSERT INTO health_summary_entries (id, report_id, title, description)
			VALUES ($1,$2,$3,$4)`,
			row.ID, row.ReportID, row.Title, row.Description); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) replaceGeneTests(ctx context.Context, reportID string, results []GeneTestResult) error {
	q := r.conn(ctx)
	if _, err := q.Exec(ctx, `DELETE FROM gene_test_results WHERE report_id = $1`, reportID); err != nil {
		return err
	}
	for _, row := range encodeGeneTests(reportID, results) {
		if _, err := q.Exec(ctx, `
			INSERT INTO gene_test_results (id, report_id, genecode, gene_name, variation, result)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			row.ID, row.ReportID, row.GeneCode, row.GeneName, row.Variation, row.Result); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) replaceGeneticCategories(ctx context.Context, reportID string, categories []GeneticCategory) error {
	q := r.conn(ctx)
	if _, err := q.Exec(ctx, `DELETE FROM genetic_categories WHERE report_id = $1`, reportID); err != nil {
		return err
	}
	for _, row := range encodeGeneticCategories(reportID, categories) {
		if _, err := q.Exec(ctx, `
			INSERT INTO genetic_categories (id, report_id, category_id, category, image_url,
				description, parameters, is_active, "order")
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			row.ID, row.ReportID, row.CategoryID, row.Category, row.ImageURL,
			row.Description, row.Parameters, row.IsActive, row.Order); err != nil {
			return err
		}
	}
	return nil
}

// DeleteReport removes the report row; FK cascades clear every section table.
func (r *repoPG) DeleteReport(ctx context.Context, reportID string) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM reports WHERE id = $1`, reportID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeletePatient removes the patient; reports and their section rows cascade.
func (r *repoPG) DeletePatient(ctx context.Context, patientID string) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, patientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
