package registry

import "github.com/autonomax/registryx/internal/rowstore"

// Summary holds frequency counts over all project rows.
type Summary struct {
	Families   map[string]int `json:"families"   yaml:"families"`
	Channels   map[string]int `json:"channels"   yaml:"channels"`
	Categories map[string]int `json:"categories" yaml:"categories"`
	Status     map[string]int `json:"status"     yaml:"status"`
	Completion map[string]int `json:"completion" yaml:"completion"`
	Total      int            `json:"total"      yaml:"total"`
}

// Summarize counts rows by family, channel, category, status and completion
// bucket. Blank channel, category and status values count as "unspecified".
func Summarize(rows []rowstore.Row) Summary {
	summary := Summary{
		Families:   map[string]int{},
		Channels:   map[string]int{},
		Categories: map[string]int{},
		Status:     map[string]int{},
		Completion: map[string]int{},
		Total:      len(rows),
	}

	for _, row := range rows {
		summary.Families[string(ClassifyFamily(row.Get(FieldName)))]++
		summary.Channels[orUnspecified(row.Get(FieldChannel))]++
		summary.Categories[orUnspecified(row.Get(FieldCategory))]++
		summary.Status[orUnspecified(row.Get(FieldStatus))]++
		summary.Completion[string(ClassifyCompletion(row.Get(FieldPercentComplete)))]++
	}

	return summary
}

func orUnspecified(value string) string {
	if value == "" {
		return Unspecified
	}

	return value
}
