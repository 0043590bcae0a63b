package patient

import (
	"reflect"
	"testing"
)

func TestDecodeNutritionEmpty(t *testing.T) {
	n := decodeNutrition("", "", nil)
	if n.Quote != "" || n.Description != "" {
		t.Errorf("quote/description not empty: %+v", n)
	}
	if n.Data == nil || len(n.Data) != 0 {
		t.Errorf("data = %v, want empty non-nil map", n.Data)
	}
}

func TestNutritionRoundTrip(t *testing.T) {
	original := &NutritionData{
		Quote:       "Eat well",
		Description: "Nutrient overview",
		Data: map[string]map[string]NutrientData{
			"vitamins": {
				"vitaminD": {Score: 7, HealthImpact: "bone health", IntakeLevel: "high", Source: "sunlight"},
				"vitaminB": {Score: 4, HealthImpact: "energy", IntakeLevel: "normal", Source: "legumes"},
			},
			"minerals": {
				"iron": {Score: 2, HealthImpact: "anemia risk", IntakeLevel: "low", Source: "spinach"},
			},
		},
	}

	rows := encodeNutrition("r1", original)
	if len(rows) != 3 {
		t.Fatalf("encoded %d rows, want 3", len(rows))
	}
	decoded := decodeNutrition(original.Quote, original.Description, rows)
	if !reflect.DeepEqual(original, decoded) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, original)
	}
}

func TestNutritionDuplicateFieldLastWriteWins(t *testing.T) {
	rows := []NutritionRow{
		{Section: "vitamins", Field: "vitaminD", Score: 1},
		{Section: "vitamins", Field: "vitaminD", Score: 9},
	}
	decoded := decodeNutrition("", "", rows)
	if len(decoded.Data["vitamins"]) != 1 {
		t.Fatalf("got %d fields, want 1", len(decoded.Data["vitamins"]))
	}
	if got := decoded.Data["vitamins"]["vitaminD"].Score; got != 9 {
		t.Errorf("score = %d, want 9 (last write wins)", got)
	}
}

func TestLifestyleConditionsRoundTrip(t *testing.T) {
	original := &LifestyleConditions{
		Quote:       "Lifestyle matters",
		Description: "Per-category conditions",
		Categories: map[string]map[string]HealthConditionStatus{
			"cardiac": {
				"Hypertension": {
					Status: "improvement", Description: "monitor closely", Sensitivity: "high",
					Avoid: []string{"salt"}, Follow: []string{"walking"}, Consume: []string{"greens"},
					Monitor: []string{"bp"}, AvoidLabel: "AVOID", FollowLabel: "FOLLOW",
					ConsumeLabel: "CONSUME", MonitorLabel: "MONITOR",
				},
			},
		},
	}
	rows := encodeLifestyleConditions("r1", original)
	decoded := decodeLifestyleConditions(original.Quote, original.Description, rows)
	if !reflect.DeepEqual(original, decoded) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, original)
	}
}

func TestLifestyleConditionsReservedCategoryIDsExcluded(t *testing.T) {
	rows := []LifestyleConditionRow{
		{CategoryID: "quote", ConditionName: "X"},
		{CategoryID: "description", ConditionName: "Y"},
		{CategoryID: "cardiac", ConditionName: "Hypertension"},
	}
	decoded := decodeLifestyleConditions("q", "d", rows)
	if _, ok := decoded.Categories["quote"]; ok {
		t.Error("reserved category id quote leaked into categories")
	}
	if _, ok := decoded.Categories["description"]; ok {
		t.Error("reserved category id description leaked into categories")
	}
	if len(decoded.Categories) != 1 {
		t.Errorf("got %d categories, want 1", len(decoded.Categories))
	}

	lc := &LifestyleConditions{Categories: map[string]map[string]HealthConditionStatus{
		"quote":   {"X": {}},
		"cardiac": {"Hypertension": {}},
	}}
	encoded := encodeLifestyleConditions("r1", lc)
	for _, row := range encoded {
		if reservedCategoryIDs[row.CategoryID] {
			t.Errorf("reserved category id %q encoded to a row", row.CategoryID)
		}
	}
}

func TestLifestyleConditionDefaultsApplied(t *testing.T) {
	rows := []LifestyleConditionRow{{CategoryID: "cardiac", ConditionName: "Hypertension"}}
	decoded := decodeLifestyleConditions("", "", rows)
	cond := decoded.Categories["cardiac"]["Hypertension"]
	if cond.AvoidLabel != "AVOID" || cond.FollowLabel != "FOLLOW" ||
		cond.ConsumeLabel != "CONSUME" || cond.MonitorLabel != "MONITOR" {
		t.Errorf("label defaults not applied: %+v", cond)
	}
	if cond.Avoid == nil || cond.Follow == nil || cond.Consume == nil || cond.Monitor == nil {
		t.Error("list fields should default to empty slices, not nil")
	}
}

func TestMetabolicCoreAreaCollapse(t *testing.T) {
	rows := []MetabolicRow{
		{Area: "MethylationCycle", GeneName: "MTHFR", Genotype: "CT", Impact: "reduced", AreaImpact: "moderate", AreaAdvice: "Take B12"},
		{Area: "MethylationCycle", GeneName: "MTRR", Genotype: "AG", Impact: "normal", AreaImpact: "moderate", AreaAdvice: "Take B12"},
	}
	decoded := decodeMetabolicCore("", "", rows)
	area, ok := decoded.Areas["MethylationCycle"]
	if !ok {
		t.Fatal("area missing")
	}
	if area.Advice != "Take B12" || area.Impact != "moderate" {
		t.Errorf("area advice/impact = %q/%q", area.Advice, area.Impact)
	}
	if len(area.Genes) != 2 {
		t.Errorf("got %d genes, want 2", len(area.Genes))
	}
}

func TestMetabolicCoreFirstRowWinsForAreaFields(t *testing.T) {
	rows := []MetabolicRow{
		{Area: "Lipids", GeneName: "APOE", AreaImpact: "first", AreaAdvice: "first advice"},
		{Area: "Lipids", GeneName: "LPL", AreaImpact: "second", AreaAdvice: "second advice"},
	}
	decoded := decodeMetabolicCore("", "", rows)
	area := decoded.Areas["Lipids"]
	if area.Impact != "first" || area.Advice != "first advice" {
		t.Errorf("first-seen area fields not preserved: %+v", area)
	}
}

func TestMetabolicCoreRoundTrip(t *testing.T) {
	original := &MetabolicCore{
		Quote:       "q",
		Description: "d",
		Areas: map[string]MetabolicAreaData{
			"MethylationCycle": {
				Impact: "moderate",
				Advice: "Take B12",
				Genes: []MetabolicGene{
					{Name: "MTHFR", Genotype: "CT", Impact: "reduced"},
					{Name: "MTRR", Genotype: "AG", Impact: "normal"},
				},
			},
		},
	}
	rows := encodeMetabolicCore("r1", original)
	decoded := decodeMetabolicCore(original.Quote, original.Description, rows)
	if !reflect.DeepEqual(original, decoded) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, original)
	}
}

func TestKeyedSectionsRoundTrip(t *testing.T) {
	digestive := &DigestiveHealth{
		Quote: "q", Description: "d",
		Data: map[string]DigestiveHealthEntry{
			"gut": {Title: "Gut Health", Icon: "gut.png", Sensitivity: "Low", Good: "fiber", Bad: "fried food"},
		},
	}
	if got := decodeDigestive("q", "d", encodeDigestive("r1", digestive)); !reflect.DeepEqual(digestive, got) {
		t.Errorf("digestive round trip mismatch: %+v", got)
	}

	addiction := &GenesAndAddiction{
		Quote: "q", Description: "d",
		Data: map[string]AddictionEntry{
			"caffeine": {Title: "Caffeine", Icon: "cup.png", SensitivityIcon: "high.png"},
		},
	}
	if got := decodeAddiction("q", "d", encodeAddiction("r1", addiction)); !reflect.DeepEqual(addiction, got) {
		t.Errorf("addiction round trip mismatch: %+v", got)
	}

	sleep := &SleepAndRest{
		Quote: "q", Description: "d",
		Data: map[string]SleepEntry{
			"rem": {Title: "REM", Intervention: "consistent schedule", Image: "moon.png"},
		},
	}
	if got := decodeSleep("q", "d", encodeSleep("r1", sleep)); !reflect.DeepEqual(sleep, got) {
		t.Errorf("sleep round trip mismatch: %+v", got)
	}

	allergies := &AllergiesAndSensitivity{
		Quote: "q", Description: "d", GeneralAdvice: "avoid triggers",
		Data: map[string]AllergyEntry{
			"pollen": {Title: "Pollen", Image: "pollen.png"},
		},
	}
	if got := decodeAllergies("q", "d", "avoid triggers", encodeAllergies("r1", allergies)); !reflect.DeepEqual(allergies, got) {
		t.Errorf("allergies round trip mismatch: %+v", got)
	}
}

func TestKeyedSectionDuplicateKeyLastWriteWins(t *testing.T) {
	rows := []DigestiveRow{
		{Key: "gut", Title: "first"},
		{Key: "gut", Title: "second"},
	}
	decoded := decodeDigestive("", "", rows)
	if len(decoded.Data) != 1 {
		t.Fatalf("got %d entries, want 1", len(decoded.Data))
	}
	if decoded.Data["gut"].Title != "second" {
		t.Errorf("title = %q, want second", decoded.Data["gut"].Title)
	}
}

func TestPreventiveRoundTrip(t *testing.T) {
	original := &PreventiveHealth{
		Description: "screening plan",
		DiagnosticTests: DiagnosticTests{
			HalfYearly: []string{"lipid panel"},
			Yearly:     []string{"full blood count", "vitamin D"},
		},
		NutritionalSupplements: []NutritionalSupplement{
			{Supplement: "Omega-3", Needed: true},
			{Supplement: "Zinc", Needed: false},
		},
	}
	tests := encodePreventiveTests("r1", original.DiagnosticTests)
	supplements := encodeSupplements("r1", original.NutritionalSupplements)
	decoded := decodePreventive(original.Description, tests, supplements)
	if !reflect.DeepEqual(original, decoded) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, original)
	}
}

func TestFamilyImpactValidationFilter(t *testing.T) {
	impacts := []FamilyGeneticImpact{
		{Gene: "BRCA1", NormalAlleles: "GG", YourResult: "GA", HealthImpact: "elevated risk"},
		{Gene: "   ", NormalAlleles: "CC", YourResult: "CT"},
		{Gene: "TP53", NormalAlleles: "", YourResult: "AA"},
		{Gene: "APOE", NormalAlleles: "TT", YourResult: "  "},
	}
	rows := encodeFamilyImpacts("r1", impacts)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1 (invalid rows dropped)", len(rows))
	}
	if rows[0].Gene != "BRCA1" {
		t.Errorf("gene = %q", rows[0].Gene)
	}
}

func TestFamilyImpactTrimsFields(t *testing.T) {
	rows := encodeFamilyImpacts("r1", []FamilyGeneticImpact{
		{Gene: " BRCA1 ", NormalAlleles: " GG ", YourResult: " GA ", HealthImpact: " risk "},
	})
	if len(rows) != 1 {
		t.Fatalf("got %d rows", len(rows))
	}
	row := rows[0]
	if row.Gene != "BRCA1" || row.NormalAlleles != "GG" || row.YourResult != "GA" || row.HealthImpact != "risk" {
		t.Errorf("fields not trimmed: %+v", row)
	}
}

func TestFamilyImpactPreservesSuppliedID(t *testing.T) {
	rows := encodeFamilyImpacts("r1", []FamilyGeneticImpact{
		{ID: "keep-me", Gene: "BRCA1", NormalAlleles: "GG", YourResult: "GA"},
		{Gene: "TP53", NormalAlleles: "CC", YourResult: "CT"},
	})
	if rows[0].ID != "keep-me" {
		t.Errorf("supplied id not preserved: %q", rows[0].ID)
	}
	if rows[1].ID == "" {
		t.Error("missing id not synthesized")
	}
}

func TestGenomicTableRoundTripPreservesOrder(t *testing.T) {
	original := &GenomicAnalysisTable{
		Description: "genomic overview",
		Categories: []GenomicCategoryGroup{
			{Category: "Metabolism", Subcategories: []GenomicSubcategory{
				{Area: "Lipids", Trait: "LDL response", Genes: []string{"APOE", "LDLR"}},
				{Area: "Glucose", Trait: "insulin sensitivity", Genes: []string{"TCF7L2"}},
			}},
			{Category: "Fitness", Subcategories: []GenomicSubcategory{
				{Area: "Endurance", Trait: "VO2 max", Genes: []string{"ACE"}},
			}},
		},
	}

	catRows, subRows := encodeGenomicCategories("t1", original.Categories)
	subsByCategory := make(map[string][]GenomicSubcategoryRow)
	for _, sub := range subRows {
		subsByCategory[sub.CategoryID] = append(subsByCategory[sub.CategoryID], sub)
	}
	decoded := decodeGenomicTable(original.Description, catRows, subsByCategory)
	if !reflect.DeepEqual(original, decoded) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, original)
	}

	for i, cat := range catRows {
		if cat.Position != i {
			t.Errorf("category %d position = %d", i, cat.Position)
		}
	}
}

func TestDietDefinitionsRoundTripIgnoringDefinitionIDs(t *testing.T) {
	original := []DietFieldDefinition{
		{
			Meta: DietFieldMeta{Quote: "diet quote", Description: "diet description"},
			Fields: []DietField{
				{ID: "f-1", Label: "Gluten Sensitivity", Category: "sensitivities", Min: 1, Max: 10,
					HighRecommendation: "C", NormalRecommendation: "B", LowRecommendation: "A"},
			},
		},
	}
	defRows, fieldRows := encodeDietDefinitions("r1", original)
	if len(defRows) != 1 || len(fieldRows) != 1 {
		t.Fatalf("encoded %d defs / %d fields", len(defRows), len(fieldRows))
	}
	if fieldRows[0].FieldID != "f-1" {
		t.Errorf("fieldId not preserved: %q", fieldRows[0].FieldID)
	}

	fieldsByDef := map[string][]DietFieldRow{defRows[0].ID: fieldRows}
	decoded := decodeDietDefinitions(defRows, fieldsByDef)
	if !reflect.DeepEqual(original, decoded) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, original)
	}
}

func TestEncodeDietDefinitionsSynthesizesFieldID(t *testing.T) {
	_, fieldRows := encodeDietDefinitions("r1", []DietFieldDefinition{
		{Fields: []DietField{{Label: "no id"}}},
	})
	if fieldRows[0].FieldID == "" {
		t.Error("fieldId not synthesized for field without id")
	}
}

func TestScoreLevel(t *testing.T) {
	cases := []struct {
		score, min, max int
		want            DietLevel
		ok              bool
	}{
		{2, 1, 10, DietLevelLow, true},
		{3, 1, 10, DietLevelLow, true},
		{4, 1, 10, DietLevelNormal, true},
		{6, 1, 10, DietLevelNormal, true},
		{7, 1, 10, DietLevelHigh, true},
		{10, 1, 10, DietLevelHigh, true},
		{0, 1, 10, "", false},
		{11, 1, 10, "", false},
	}
	for _, tc := range cases {
		got, ok := ScoreLevel(tc.score, tc.min, tc.max)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ScoreLevel(%d, %d, %d) = %q, %v; want %q, %v",
				tc.score, tc.min, tc.max, got, ok, tc.want, tc.ok)
		}
	}
}

func TestScoreFieldLowScorePicksLowRecommendation(t *testing.T) {
	field := DietField{
		ID: "f-1", Label: "Gluten Sensitivity", Min: 1, Max: 10,
		LowRecommendation: "A", NormalRecommendation: "B", HighRecommendation: "C",
	}
	result, ok := ScoreField(field, 2)
	if !ok {
		t.Fatal("score 2 should be in range")
	}
	if result.Level != DietLevelLow {
		t.Errorf("level = %q, want LOW", result.Level)
	}
	if result.Recommendation != "A" {
		t.Errorf("recommendation = %q, want A", result.Recommendation)
	}
	if result.SelectedLevel != DietLevelLow {
		t.Errorf("selectedLevel = %q, want LOW", result.SelectedLevel)
	}
}

func TestEncodeDietAnalysisKeepsExistingIDForFieldID(t *testing.T) {
	existing := map[string]string{"f-1": "row-original"}
	rows := encodeDietAnalysis("r1", []DietAnalysisResult{
		{FieldID: "f-1", Score: 5},
		{FieldID: "f-2", Score: 8},
	}, existing)
	if rows[0].ID != "row-original" {
		t.Errorf("existing id lost: %q", rows[0].ID)
	}
	if rows[1].ID == "" {
		t.Error("new row id not synthesized")
	}
	if rows[0].Level != "NORMAL" || rows[0].SelectedLevel != "NORMAL" {
		t.Errorf("empty levels should default to NORMAL: %+v", rows[0])
	}
}

func TestDietAnalysisRoundTrip(t *testing.T) {
	original := []DietAnalysisResult{{
		ID: "row-1", FieldID: "f-1", Score: 8, Level: DietLevelHigh,
		Recommendation: "C",
		Recommendations: DietRecommendations{Low: "A", Normal: "B", High: "C"},
		SelectedLevel:  DietLevelHigh,
	}}
	rows := encodeDietAnalysis("r1", original, nil)
	decoded := decodeDietAnalysis(rows)
	if !reflect.DeepEqual(original, decoded) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, original)
	}
}

func TestHealthSummaryRoundTrip(t *testing.T) {
	entries := []HealthSummaryEntry{{ID: "e1", Title: "Overall", Description: "good baseline"}}
	rows := encodeHealthSummary("r1", entries)
	if rows[0].ID != "e1" {
		t.Errorf("supplied id lost: %q", rows[0].ID)
	}
	decoded := decodeHealthSummary("summary text", rows)
	if decoded.Description != "summary text" {
		t.Errorf("description = %q", decoded.Description)
	}
	if !reflect.DeepEqual(entries, decoded.Data) {
		t.Errorf("entries mismatch: %+v", decoded.Data)
	}
}

func TestGeneTestsAndCategoriesRoundTrip(t *testing.T) {
	results := []GeneTestResult{{GeneCode: "rs429358", GeneName: "APOE", Variation: "C/T", Result: "CT"}}
	if got := decodeGeneTests(encodeGeneTests("r1", results)); !reflect.DeepEqual(results, got) {
		t.Errorf("gene tests mismatch: %+v", got)
	}

	categories := []GeneticCategory{{
		CategoryID: "cat-1", Category: "Nutrition", ImageURL: "/img/nutrition.png",
		Description: "diet genes", Parameters: []string{"FTO", "MC4R"}, IsActive: true, Order: 1,
	}}
	if got := decodeGeneticCategories(encodeGeneticCategories("r1", categories)); !reflect.DeepEqual(categories, got) {
		t.Errorf("genetic categories mismatch: %+v", got)
	}
}

func TestNewReportMatchesEmptyDecode(t *testing.T) {
	report := NewReport()

	if got := decodeNutrition("", "", nil); !reflect.DeepEqual(report.NutritionData, got) {
		t.Errorf("nutrition zero value mismatch: %+v vs %+v", report.NutritionData, got)
	}
	if got := decodeLifestyleConditions("", "", nil); !reflect.DeepEqual(report.LifestyleConditions, got) {
		t.Errorf("lifestyle zero value mismatch: %+v vs %+v", report.LifestyleConditions, got)
	}
	if got := decodeMetabolicCore("", "", nil); !reflect.DeepEqual(report.MetabolicCore, got) {
		t.Errorf("metabolic zero value mismatch: %+v vs %+v", report.MetabolicCore, got)
	}
	if got := decodeDigestive("", "", nil); !reflect.DeepEqual(report.DigestiveHealth, got) {
		t.Errorf("digestive zero value mismatch: %+v vs %+v", report.DigestiveHealth, got)
	}
	if got := decodeAddiction("", "", nil); !reflect.DeepEqual(report.GenesAndAddiction, got) {
		t.Errorf("addiction zero value mismatch: %+v vs %+v", report.GenesAndAddiction, got)
	}
	if got := decodeSleep("", "", nil); !reflect.DeepEqual(report.SleepAndRest, got) {
		t.Errorf("sleep zero value mismatch: %+v vs %+v", report.SleepAndRest, got)
	}
	if got := decodeAllergies("", "", "", nil); !reflect.DeepEqual(report.AllergiesAndSensitivity, got) {
		t.Errorf("allergies zero value mismatch: %+v vs %+v", report.AllergiesAndSensitivity, got)
	}
	if got := decodePreventive("", nil, nil); !reflect.DeepEqual(report.PreventiveHealth, got) {
		t.Errorf("preventive zero value mismatch: %+v vs %+v", report.PreventiveHealth, got)
	}
	if got := decodeFamilyImpacts("", nil); !reflect.DeepEqual(report.FamilyGeneticImpact, got) {
		t.Errorf("family impact zero value mismatch: %+v vs %+v", report.FamilyGeneticImpact, got)
	}
	if got := decodeHealthSummary("", nil); !reflect.DeepEqual(report.HealthSummary, got) {
		t.Errorf("health summary zero value mismatch: %+v vs %+v", report.HealthSummary, got)
	}
	if got := decodeGeneTests(nil); !reflect.DeepEqual(report.GeneTestResults, got) {
		t.Errorf("gene tests zero value mismatch: %+v vs %+v", report.GeneTestResults, got)
	}
	if got := decodeGeneticCategories(nil); !reflect.DeepEqual(report.GeneticCategories, got) {
		t.Errorf("genetic categories zero value mismatch: %+v vs %+v", report.GeneticCategories, got)
	}
}

func TestNewPatientScaffold(t *testing.T) {
	p := NewPatient()
	if p.ID == "" {
		t.Error("patient id not synthesized")
	}
	if len(p.Reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(p.Reports))
	}
	if p.Reports[0].ID == "" {
		t.Error("report id not synthesized")
	}
}
