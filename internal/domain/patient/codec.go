package patient

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Codecs translate between section rows and the nested shapes in model.go.
// Decode groups rows by their discriminator with first-seen-wins
// initialization and defaults every field, so a section with no rows decodes
// to its zero value. Encode flattens the nested shape back to rows, reusing
// supplied ids and synthesizing UUIDs where absent. Map-backed sections are
// encoded in sorted key order so row output is deterministic.

// lifestyle category ids that would collide with the section's own scalar
// fields in the legacy wire shape; never persisted as categories.
var reservedCategoryIDs = map[string]bool{"quote": true, "description": true}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orUUID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// ---------------------------------------------------------------------------
// Nutrition
// ---------------------------------------------------------------------------

func decodeNutrition(quote, description string, rows []NutritionRow) *NutritionData {
	n := &NutritionData{
		Quote:       quote,
		Description: description,
		Data:        make(map[string]map[string]NutrientData, len(rows)),
	}
	for _, row := range rows {
		if n.Data[row.Section] == nil {
			n.Data[row.Section] = map[string]NutrientData{}
		}
		n.Data[row.Section][row.Field] = NutrientData{
			Score:        row.Score,
			HealthImpact: row.HealthImpact,
			IntakeLevel:  row.IntakeLevel,
			Source:       row.Source,
		}
	}
	return n
}

func encodeNutrition(reportID string, n *NutritionData) []NutritionRow {
	var rows []NutritionRow
	for _, section := range sortedKeys(n.Data) {
		fields := n.Data[section]
		for _, field := range sortedKeys(fields) {
			nutrient := fields[field]
			rows = append(rows, NutritionRow{
				ID:           uuid.NewString(),
				ReportID:     reportID,
				Section:      section,
				Field:        field,
				Score:        nutrient.Score,
				HealthImpact: nutrient.HealthImpact,
				IntakeLevel:  nutrient.IntakeLevel,
				Source:       nutrient.Source,
			})
		}
	}
	return rows
}

// ---------------------------------------------------------------------------
// Lifestyle conditions and category images
// ---------------------------------------------------------------------------

func decodeLifestyleConditions(quote, description string, rows []LifestyleConditionRow) *LifestyleConditions {
	lc := &LifestyleConditions{
		Quote:       quote,
		Description: description,
		Categories:  make(map[string]map[string]HealthConditionStatus, len(rows)),
	}
	for _, row := range rows {
		if reservedCategoryIDs[row.CategoryID] {
			continue
		}
		if lc.Categories[row.CategoryID] == nil {
			lc.Categories[row.CategoryID] = map[string]HealthConditionStatus{}
		}
		lc.Categories[row.CategoryID][row.ConditionName] = HealthConditionStatus{
			Status:       row.Status,
			Description:  row.Description,
			Sensitivity:  row.Sensitivity,
			Avoid:        emptyIfNil(row.Avoid),
			Follow:       emptyIfNil(row.Follow),
			Consume:      emptyIfNil(row.Consume),
			Monitor:      emptyIfNil(row.Monitor),
			AvoidLabel:   defaultString(row.AvoidLabel, "AVOID"),
			FollowLabel:  defaultString(row.FollowLabel, "FOLLOW"),
			ConsumeLabel: defaultString(row.ConsumeLabel, "CONSUME"),
			MonitorLabel: defaultString(row.MonitorLabel, "MONITOR"),
		}
	}
	return lc
}

func encodeLifestyleConditions(reportID string, lc *LifestyleConditions) []LifestyleConditionRow {
	var rows []LifestyleConditionRow
	for _, categoryID := range sortedKeys(lc.Categories) {
		if reservedCategoryIDs[categoryID] {
			continue
		}
		conditions := lc.Categories[categoryID]
		for _, name := range sortedKeys(conditions) {
			cond := conditions[name]
			rows = append(rows, LifestyleConditionRow{
				ID:            uuid.NewString(),
				ReportID:      reportID,
				CategoryID:    categoryID,
				ConditionName: name,
				Status:        cond.Status,
				Description:   cond.Description,
				Sensitivity:   defaultString(cond.Sensitivity, "low"),
				Avoid:         emptyIfNil(cond.Avoid),
				Follow:        emptyIfNil(cond.Follow),
				Consume:       emptyIfNil(cond.Consume),
				Monitor:       emptyIfNil(cond.Monitor),
				AvoidLabel:    defaultString(cond.AvoidLabel, "AVOID"),
				FollowLabel:   defaultString(cond.FollowLabel, "FOLLOW"),
				ConsumeLabel:  defaultString(cond.ConsumeLabel, "CONSUME"),
				MonitorLabel:  defaultString(cond.MonitorLabel, "MONITOR"),
			})
		}
	}
	return rows
}

func decodeLifestyleImages(rows []LifestyleImageRow) map[string]string {
	images := make(map[string]string, len(rows))
	for _, row := range rows {
		images[row.CategoryID] = row.ImageURL
	}
	return images
}

func encodeLifestyleImages(reportID string, images map[string]string) []LifestyleImageRow {
	var rows []LifestyleImageRow
	for _, categoryID := range sortedKeys(images) {
		rows = append(rows, LifestyleImageRow{
			ID:         uuid.NewString(),
			ReportID:   reportID,
			CategoryID: categoryID,
			ImageURL:   images[categoryID],
		})
	}
	return rows
}

// ---------------------------------------------------------------------------
// Metabolic core
// ---------------------------------------------------------------------------

// decodeMetabolicCore groups gene rows by area. Area-level impact and advice
// are stored redundantly on every gene row; the first row seen for an area
// wins and duplicates on later rows are ignored.
func decodeMetabolicCore(quote, description string, rows []MetabolicRow) *MetabolicCore {
	mc := &MetabolicCore{
		Quote:       quote,
		Description: description,
		Areas:       make(map[string]MetabolicAreaData, len(rows)),
	}
	for _, row := range rows {
		area, ok := mc.Areas[row.Area]
		if !ok {
			area = MetabolicAreaData{
				Impact: row.AreaImpact,
				Advice: row.AreaAdvice,
				Genes:  []MetabolicGene{},
			}
		}
		area.Genes = append(area.Genes, MetabolicGene{
			Name:     row.GeneName,
			Genotype: row.Genotype,
			Impact:   row.Impact,
		})
		mc.Areas[row.Area] = area
	}
	return mc
}

func encodeMetabolicCore(reportID string, mc *MetabolicCore) []MetabolicRow {
	var rows []MetabolicRow
	for _, areaName := range sortedKeys(mc.Areas) {
		area := mc.Areas[areaName]
		for _, gene := range area.Genes {
			rows = append(rows, MetabolicRow{
				ID:         uuid.NewString(),
				ReportID:   reportID,
				Area:       areaName,
				GeneName:   gene.Name,
				Genotype:   gene.Genotype,
				Impact:     gene.Impact,
				AreaImpact: area.Impact,
				AreaAdvice: area.Advice,
			})
		}
	}
	return rows
}

// ---------------------------------------------------------------------------
// Key-discriminated map sections
// ---------------------------------------------------------------------------

func decodeDigestive(quote, description string, rows []DigestiveRow) *DigestiveHealth {
	d := &DigestiveHealth{
		Quote:       quote,
		Description: description,
		Data:        make(map[string]DigestiveHealthEntry, len(rows)),
	}
	for _, row := range rows {
		d.Data[row.Key] = DigestiveHealthEntry{
			Title:       row.Title,
			Icon:        row.Icon,
			Sensitivity: row.Sensitivity,
			Good:        row.Good,
			Bad:         row.Bad,
		}
	}
	return d
}

func encodeDigestive(reportID string, d *DigestiveHealth) []DigestiveRow {
	var rows []DigestiveRow
	for _, key := range sortedKeys(d.Data) {
		entry := d.Data[key]
		rows = append(rows, DigestiveRow{
			ID:          uuid.NewString(),
			ReportID:    reportID,
			Key:         key,
			Title:       entry.Title,
			Icon:        entry.Icon,
			Sensitivity: entry.Sensitivity,
			Good:        entry.Good,
			Bad:         entry.Bad,
		})
	}
	return rows
}

func decodeAddiction(quote, description string, rows []AddictionRow) *GenesAndAddiction {
	g := &GenesAndAddiction{
		Quote:       quote,
		Description: description,
		Data:        make(map[string]AddictionEntry, len(rows)),
	}
	for _, row := range rows {
		g.Data[row.Key] = AddictionEntry{
			Title:           row.Title,
			Icon:            row.Icon,
			SensitivityIcon: row.SensitivityIcon,
		}
	}
	return g
}

func encodeAddiction(reportID string, g *GenesAndAddiction) []AddictionRow {
	var rows []AddictionRow
	for _, key := range sortedKeys(g.Data) {
		entry := g.Data[key]
		rows = append(rows, AddictionRow{
			ID:              uuid.NewString(),
			ReportID:        reportID,
			Key:             key,
			Title:           entry.Title,
			Icon:            entry.Icon,
			SensitivityIcon: entry.SensitivityIcon,
		})
	}
	return rows
}

func decodeSleep(quote, description string, rows []SleepRow) *SleepAndRest {
	s := &SleepAndRest{
		Quote:       quote,
		Description: description,
		Data:        make(map[string]SleepEntry, len(rows)),
	}
	for _, row := range rows {
		s.Data[row.Key] = SleepEntry{
			Title:        row.Title,
			Intervention: row.Intervention,
			Image:        row.Image,
		}
	}
	return s
}

func encodeSleep(reportID string, s *SleepAndRest) []SleepRow {
	var rows []SleepRow
	for _, key := range sortedKeys(s.Data) {
		entry := s.Data[key]
		rows = append(rows, SleepRow{
			ID:           uuid.NewString(),
			ReportID:     reportID,
			Key:          key,
			Title:        entry.Title,
			Intervention: entry.Intervention,
			Image:        entry.Image,
		})
	}
	return rows
}

func decodeAllergies(quote, description, generalAdvice string, rows []AllergyRow) *AllergiesAndSensitivity {
	a := &AllergiesAndSensitivity{
		Quote:         quote,
		Description:   description,
		GeneralAdvice: generalAdvice,
		Data:          make(map[string]AllergyEntry, len(rows)),
	}
	for _, row := range rows {
		key := row.Key
		if key == "" {
			key = uuid.NewString()
		}
		a.Data[key] = AllergyEntry{Title: row.Title, Image: row.Image}
	}
	return a
}

func encodeAllergies(reportID string, a *AllergiesAndSensitivity) []AllergyRow {
	var rows []AllergyRow
	for _, key := range sortedKeys(a.Data) {
		entry := a.Data[key]
		rows = append(rows, AllergyRow{
			ID:       uuid.NewString(),
			ReportID: reportID,
			Key:      key,
			Title:    entry.Title,
			Image:    entry.Image,
		})
	}
	return rows
}

// ---------------------------------------------------------------------------
// Preventive health
// ---------------------------------------------------------------------------

const (
	frequencyHalfYearly = "halfYearly"
	frequencyYearly     = "yearly"
)

func decodePreventive(description string, tests []PreventiveTestRow, supplements []SupplementRow) *PreventiveHealth {
	p := &PreventiveHealth{
		Description: description,
		DiagnosticTests: DiagnosticTests{
			HalfYearly: []string{},
			Yearly:     []string{},
		},
		NutritionalSupplements: []NutritionalSupplement{},
	}
	for _, t := range tests {
		switch t.Frequency {
		case frequencyHalfYearly:
			p.DiagnosticTests.HalfYearly = append(p.DiagnosticTests.HalfYearly, t.TestName)
		case frequencyYearly:
			p.DiagnosticTests.Yearly = append(p.DiagnosticTests.Yearly, t.TestName)
		}
	}
	for _, s := range supplements {
		p.NutritionalSupplements = append(p.NutritionalSupplements, NutritionalSupplement{
			Supplement: s.Supplement,
			Needed:     s.Needed,
		})
	}
	return p
}

func encodePreventiveTests(reportID string, tests DiagnosticTests) []PreventiveTestRow {
	rows := make([]PreventiveTestRow, 0, len(tests.HalfYearly)+len(tests.Yearly))
	for _, name := range tests.HalfYearly {
		rows = append(rows, PreventiveTestRow{
			ID:        uuid.NewString(),
			ReportID:  reportID,
			TestName:  name,
			Frequency: frequencyHalfYearly,
		})
	}
	for _, name := range tests.Yearly {
		rows = append(rows, PreventiveTestRow{
			ID:        uuid.NewString(),
			ReportID:  reportID,
			TestName:  name,
			Frequency: frequencyYearly,
		})
	}
	return rows
}

func encodeSupplements(reportID string, supplements []NutritionalSupplement) []SupplementRow {
	rows := make([]SupplementRow, 0, len(supplements))
	for _, s := range supplements {
		rows = append(rows, SupplementRow{
			ID:         uuid.NewString(),
			ReportID:   reportID,
			Supplement: s.Supplement,
			Needed:     s.Needed,
		})
	}
	return rows
}

// ---------------------------------------------------------------------------
// Family genetic impact
// ---------------------------------------------------------------------------

func decodeFamilyImpacts(description string, rows []FamilyImpactRow) *FamilyGeneticImpactSection {
	section := &FamilyGeneticImpactSection{
		Description: description,
		Impacts:     make([]FamilyGeneticImpact, 0, len(rows)),
	}
	for _, row := range rows {
		section.Impacts = append(section.Impacts, FamilyGeneticImpact{
			ID:            orUUID(row.ID),
			Gene:          row.Gene,
			NormalAlleles: row.NormalAlleles,
			YourResult:    row.YourResult,
			HealthImpact:  row.HealthImpact,
		})
	}
	return section
}

// encodeFamilyImpacts keeps only impacts with non-empty trimmed gene,
// normalAlleles and yourResult; invalid entries are dropped, not rejected.
func encodeFamilyImpacts(reportID string, impacts []FamilyGeneticImpact) []FamilyImpactRow {
	var rows []FamilyImpactRow
	for _, imp := range impacts {
		gene := strings.TrimSpace(imp.Gene)
		alleles := strings.TrimSpace(imp.NormalAlleles)
		result := strings.TrimSpace(imp.YourResult)
		if gene == "" || alleles == "" || result == "" {
			continue
		}
		rows = append(rows, FamilyImpactRow{
			ID:            orUUID(imp.ID),
			ReportID:      reportID,
			Gene:          gene,
			NormalAlleles: alleles,
			YourResult:    result,
			HealthImpact:  strings.TrimSpace(imp.HealthImpact),
		})
	}
	return rows
}

// ---------------------------------------------------------------------------
// Genomic analysis table
// ---------------------------------------------------------------------------

// decodeGenomicTable expects category rows sorted by position and the
// subcategory rows of each category likewise.
func decodeGenomicTable(description string, categories []GenomicCategoryRow, subsByCategory map[string][]GenomicSubcategoryRow) *GenomicAnalysisTable {
	table := &GenomicAnalysisTable{
		Description: description,
		Categories:  make([]GenomicCategoryGroup, 0, len(categories)),
	}
	for _, cat := range categories {
		group := GenomicCategoryGroup{
			Category:      cat.Category,
			Subcategories: []GenomicSubcategory{},
		}
		for _, sub := range subsByCategory[cat.ID] {
			group.Subcategories = append(group.Subcategories, GenomicSubcategory{
				Area:  sub.Area,
				Trait: sub.Trait,
				Genes: emptyIfNil(sub.Genes),
			})
		}
		table.Categories = append(table.Categories, group)
	}
	return table
}

func encodeGenomicCategories(tableID string, categories []GenomicCategoryGroup) ([]GenomicCategoryRow, []GenomicSubcategoryRow) {
	var catRows []GenomicCategoryRow
	var subRows []GenomicSubcategoryRow
	for i, cat := range categories {
		catRow := GenomicCategoryRow{
			ID:       uuid.NewString(),
			TableID:  tableID,
			Category: cat.Category,
			Position: i,
		}
		catRows = append(catRows, catRow)
		for j, sub := range cat.Subcategories {
			subRows = append(subRows, GenomicSubcategoryRow{
				ID:         uuid.NewString(),
				CategoryID: catRow.ID,
				Area:       sub.Area,
				Trait:      sub.Trait,
				Genes:      emptyIfNil(sub.Genes),
				Position:   j,
			})
		}
	}
	return catRows, subRows
}

// ---------------------------------------------------------------------------
// Health summary, gene tests, genetic categories
// ---------------------------------------------------------------------------

func decodeHealthSummary(description string, rows []HealthSummaryRow) *HealthSummary {
	hs := &HealthSummary{
		Description: description,
		Data:        make([]HealthSummaryEntry, 0, len(rows)),
	}
	for _, row := range rows {
		hs.Data = append(hs.Data, HealthSummaryEntry{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
		})
	}
	return hs
}

func encodeHealthSummary(reportID string, entries []HealthSummaryEntry) []HealthSummaryRow {
	rows := make([]HealthSummaryRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, HealthSummaryRow{
			ID:          orUUID(entry.ID),
			ReportID:    reportID,
			Title:       entry.Title,
			Description: entry.Description,
		})
	}
	return rows
}

func decodeGeneTests(rows []GeneTestResultRow) []GeneTestResult {
	results := make([]GeneTestResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, GeneTestResult{
			GeneCode:  row.GeneCode,
			GeneName:  row.GeneName,
			Variation: row.Variation,
			Result:    row.Result,
		})
	}
	return results
}

func encodeGeneTests(reportID string, results []GeneTestResult) []GeneTestResultRow {
	rows := make([]GeneTestResultRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, GeneTestResultRow{
			ID:        uuid.NewString(),
			ReportID:  reportID,
			GeneCode:  r.GeneCode,
			GeneName:  r.GeneName,
			Variation: r.Variation,
			Result:    r.Result,
		})
	}
	return rows
}

func decodeGeneticCategories(rows []GeneticCategoryRow) []GeneticCategory {
	categories := make([]GeneticCategory, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, GeneticCategory{
			CategoryID:  row.CategoryID,
			Category:    row.Category,
			ImageURL:    row.ImageURL,
			Description: row.Description,
			Parameters:  emptyIfNil(row.Parameters),
			IsActive:    row.IsActive,
			Order:       row.Order,
		})
	}
	return categories
}

func encodeGeneticCategories(reportID string, categories []GeneticCategory) []GeneticCategoryRow {
	rows := make([]GeneticCategoryRow, 0, len(categories))
	for _, cat := range categories {
		rows = append(rows, GeneticCategoryRow{
			ID:          uuid.NewString(),
			ReportID:    reportID,
			CategoryID:  orUUID(cat.CategoryID),
			Category:    cat.Category,
			ImageURL:    cat.ImageURL,
			Description: cat.Description,
			Parameters:  emptyIfNil(cat.Parameters),
			IsActive:    cat.IsActive,
			Order:       cat.Order,
		})
	}
	return rows
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
