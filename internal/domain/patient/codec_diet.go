package patient

import "github.com/google/uuid"

// Diet field definitions persist as two tables: a definition row carrying the
// section's quote/description and field rows hanging off it. Definition rows
// are deleted and recreated on every save, so externally only the fieldId on
// each field row is stable.

func decodeDietDefinitions(defs []DietDefinitionRow, fieldsByDefinition map[string][]DietFieldRow) []DietFieldDefinition {
	out := make([]DietFieldDefinition, 0, len(defs))
	for _, def := range defs {
		definition := DietFieldDefinition{
			Meta:   DietFieldMeta{Quote: def.Quote, Description: def.Description},
			Fields: []DietField{},
		}
		for _, f := range fieldsByDefinition[def.ID] {
			id := f.FieldID
			if id == "" {
				id = f.ID
			}
			definition.Fields = append(definition.Fields, DietField{
				ID:                   id,
				Label:                f.Label,
				Category:             f.Category,
				Min:                  f.Min,
				Max:                  f.Max,
				HighRecommendation:   f.HighRecommendation,
				NormalRecommendation: f.NormalRecommendation,
				LowRecommendation:    f.LowRecommendation,
			})
		}
		out = append(out, definition)
	}
	return out
}

func encodeDietDefinitions(reportID string, defs []DietFieldDefinition) ([]DietDefinitionRow, []DietFieldRow) {
	var defRows []DietDefinitionRow
	var fieldRows []DietFieldRow
	for _, def := range defs {
		defRow := DietDefinitionRow{
			ID:          uuid.NewString(),
			ReportID:    reportID,
			Quote:       def.Meta.Quote,
			Description: def.Meta.Description,
		}
		defRows = append(defRows, defRow)
		for _, f := range def.Fields {
			fieldRows = append(fieldRows, DietFieldRow{
				ID:                   uuid.NewString(),
				DefinitionID:         defRow.ID,
				FieldID:              orUUID(f.ID),
				Label:                f.Label,
				Category:             f.Category,
				Min:                  f.Min,
				Max:                  f.Max,
				HighRecommendation:   f.HighRecommendation,
				NormalRecommendation: f.NormalRecommendation,
				LowRecommendation:    f.LowRecommendation,
			})
		}
	}
	return defRows, fieldRows
}

func decodeDietAnalysis(rows []DietAnalysisRow) []DietAnalysisResult {
	results := make([]DietAnalysisResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, DietAnalysisResult{
			ID:             row.ID,
			FieldID:        row.FieldID,
			Score:          row.Score,
			Level:          DietLevel(defaultString(row.Level, string(DietLevelNormal))),
			Recommendation: row.Recommendation,
			Recommendations: DietRecommendations{
				Low:    row.LowRecommendation,
				Normal: row.NormalRecommendation,
				High:   row.HighRecommendation,
			},
			SelectedLevel: DietLevel(defaultString(row.SelectedLevel, string(DietLevelNormal))),
		})
	}
	return results
}

// encodeDietAnalysis reuses the id of the existing row for the same fieldId,
// so replacing the rows on save does not churn ids. existingIDs maps fieldId
// to the currently persisted row id.
func encodeDietAnalysis(reportID string, results []DietAnalysisResult, existingIDs map[string]string) []DietAnalysisRow {
	rows := make([]DietAnalysisRow, 0, len(results))
	for _, res := range results {
		id := existingIDs[res.FieldID]
		if id == "" {
			id = res.ID
		}
		rows = append(rows, DietAnalysisRow{
			ID:                   orUUID(id),
			ReportID:             reportID,
			FieldID:              orUUID(res.FieldID),
			Score:                res.Score,
			Level:                string(defaultLevel(res.Level)),
			SelectedLevel:        string(defaultLevel(res.SelectedLevel)),
			Recommendation:       res.Recommendation,
			LowRecommendation:    res.Recommendations.Low,
			NormalRecommendation: res.Recommendations.Normal,
			HighRecommendation:   res.Recommendations.High,
		})
	}
	return rows
}

func defaultLevel(l DietLevel) DietLevel {
	if l == "" {
		return DietLevelNormal
	}
	return l
}

// ScoreLevel classifies a diet score. Scores outside the field's [min, max]
// range are invalid; within range, 3 and below reads LOW and 7 and above
// reads HIGH.
func ScoreLevel(score, min, max int) (DietLevel, bool) {
	if score < min || score > max {
		return "", false
	}
	switch {
	case score <= 3:
		return DietLevelLow, true
	case score >= 7:
		return DietLevelHigh, true
	default:
		return DietLevelNormal, true
	}
}

// ScoreField builds the analysis result for one scored field. The second
// return is false when the score is out of range for the field.
func ScoreField(field DietField, score int) (DietAnalysisResult, bool) {
	level, ok := ScoreLevel(score, field.Min, field.Max)
	if !ok {
		return DietAnalysisResult{}, false
	}
	recs := DietRecommendations{
		Low:    field.LowRecommendation,
		Normal: field.NormalRecommendation,
		High:   field.HighRecommendation,
	}
	return DietAnalysisResult{
		FieldID:         field.ID,
		Score:           score,
		Level:           level,
		Recommendation:  recs.ForLevel(level),
		Recommendations: recs,
		SelectedLevel:   level,
	}, true
}

// ForLevel returns the recommendation text matching a level.
func (r DietRecommendations) ForLevel(level DietLevel) string {
	switch level {
	case DietLevelLow:
		return r.Low
	case DietLevelHigh:
		return r.High
	default:
		return r.Normal
	}
}
