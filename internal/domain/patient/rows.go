package patient

// Row types mirror the persisted relational shape of each report section.
// Every child row carries ReportID so a report delete can cascade across all
// section tables. A Key/FieldID/CategoryID discriminator column links a flat
// row back to its position in the nested in-memory map.

type NutritionRow struct {
	ID           string
	ReportID     string
	Section      string
	Field        string
	Score        int
	HealthImpact string
	IntakeLevel  string
	Source       string
}

type DietDefinitionRow struct {
	ID          string
	ReportID    string
	Quote       string
	Description string
}

type DietFieldRow struct {
	ID                   string
	DefinitionID         string
	FieldID              string
	Label                string
	Category             string
	Min                  int
	Max                  int
	HighRecommendation   string
	NormalRecommendation string
	LowRecommendation    string
}

type DietAnalysisRow struct {
	ID                   string
	ReportID             string
	FieldID              string
	Score                int
	Level                string
	SelectedLevel        string
	Recommendation       string
	LowRecommendation    string
	NormalRecommendation string
	HighRecommendation   string
}

type LifestyleConditionRow struct {
	ID            string
	ReportID      string
	CategoryID    string
	ConditionName string
	Status        string
	Description   string
	Sensitivity   string
	Avoid         []string
	Follow        []string
	Consume       []string
	Monitor       []string
	AvoidLabel    string
	FollowLabel   string
	ConsumeLabel  string
	MonitorLabel  string
}

type LifestyleImageRow struct {
	ID         string
	ReportID   string
	CategoryID string
	ImageURL   string
}

type MetabolicRow struct {
	ID         string
	ReportID   string
	Area       string
	GeneName   string
	Genotype   string
	Impact     string
	AreaImpact string
	AreaAdvice string
}

type DigestiveRow struct {
	ID          string
	ReportID    string
	Key         string
	Title       string
	Icon        string
	Sensitivity string
	Good        string
	Bad         string
}

type AddictionRow struct {
	ID              string
	ReportID        string
	Key             string
	Title           string
	Icon            string
	SensitivityIcon string
}

type SleepRow struct {
	ID           string
	ReportID     string
	Key          string
	Title        string
	Intervention string
	Image        string
}

type AllergyRow struct {
	ID       string
	ReportID string
	Key      string
	Title    string
	Image    string
}

type PreventiveTestRow struct {
	ID        string
	ReportID  string
	TestName  string
	Frequency string
}

type SupplementRow struct {
	ID         string
	ReportID   string
	Supplement string
	Needed     bool
}

type FamilyImpactRow struct {
	ID            string
	ReportID      string
	Gene          string
	NormalAlleles string
	YourResult    string
	HealthImpact  string
}

type GenomicCategoryRow struct {
	ID       string
	TableID  string
	Category string
	Position int
}

type GenomicSubcategoryRow struct {
	ID         string
	CategoryID string
	Area       string
	Trait      string
	Genes      []string
	Position   int
}

type HealthSummaryRow struct {
	ID          string
	ReportID    string
	Title       string
	Description string
}

type GeneTestResultRow struct {
	ID        string
	ReportID  string
	GeneCode  string
	GeneName  string
	Variation string
	Result    string
}

type GeneticCategoryRow struct {
	ID          string
	ReportID    string
	CategoryID  string
	Category    string
	ImageURL    string
	Description string
	Parameters  []string
	IsActive    bool
	Order       int
}
