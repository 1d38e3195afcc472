// Package projection derives display-ready views from the record collection.
package projection

import "github.com/MarcoPoloResearchLab/roster/internal/users"

// AgeCategory classifies a record by age.
type AgeCategory string

const (
	AgeCategoryMinor  AgeCategory = "minor"
	AgeCategoryYoung  AgeCategory = "young"
	AgeCategoryAdult  AgeCategory = "adult"
	AgeCategorySenior AgeCategory = "senior"
)

const (
	youngFrom  = 18
	adultFrom  = 30
	seniorFrom = 60
)

// EmptyMessage is shown in place of the list when there are no records.
const EmptyMessage = "No users found"

// CategorizeAge maps an age onto its category.
func CategorizeAge(age int) AgeCategory {
	switch {
	case age < youngFrom:
		return AgeCategoryMinor
	case age < adultFrom:
		return AgeCategoryYoung
	case age < seniorFrom:
		return AgeCategoryAdult
	default:
		return AgeCategorySenior
	}
}

// DisplayRecord is a read-only record enriched with its age category.
type DisplayRecord struct {
	users.UserRecord
	AgeCategory AgeCategory `json:"age_category"`
}

// Project maps records onto display records, preserving order. It never mutates its input.
func Project(records []users.UserRecord) []DisplayRecord {
	display := make([]DisplayRecord, 0, len(records))
	for _, record := range records {
		display = append(display, DisplayRecord{
			UserRecord:  record,
			AgeCategory: CategorizeAge(record.Age),
		})
	}
	return display
}

// View is what the presentation layer renders.
type View struct {
	Records      []DisplayRecord `json:"records"`
	Total        int             `json:"total"`
	NewCount     int             `json:"new_count"`
	Empty        bool            `json:"empty"`
	EmptyMessage string          `json:"empty_message,omitempty"`
}

// BuildView projects records and fills in the dashboard counters.
func BuildView(records []users.UserRecord, newCount int) View {
	view := View{
		Records:  Project(records),
		Total:    len(records),
		NewCount: newCount,
	}
	if view.Total == 0 {
		view.Empty = true
		view.EmptyMessage = EmptyMessage
	}
	return view
}

// EmptyView is the view shown before the first load and after a failed fetch.
func EmptyView(newCount int) View {
	return BuildView(nil, newCount)
}
