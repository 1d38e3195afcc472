package projection

import (
	"reflect"
	"testing"

	"github.com/MarcoPoloResearchLab/roster/internal/users"
)

func TestCategorizeAgeBoundaries(t *testing.T) {
	testCases := []struct {
		age  int
		want AgeCategory
	}{
		{age: 0, want: AgeCategoryMinor},
		{age: 17, want: AgeCategoryMinor},
		{age: 18, want: AgeCategoryYoung},
		{age: 29, want: AgeCategoryYoung},
		{age: 30, want: AgeCategoryAdult},
		{age: 59, want: AgeCategoryAdult},
		{age: 60, want: AgeCategorySenior},
		{age: 101, want: AgeCategorySenior},
	}
	for _, testCase := range testCases {
		if got := CategorizeAge(testCase.age); got != testCase.want {
			t.Fatalf("age %d: expected %s, got %s", testCase.age, testCase.want, got)
		}
	}
}

func TestProjectIsPure(t *testing.T) {
	records := []users.UserRecord{
		{ID: "1", Fields: users.Fields{Name: "Jordi Pujol", Age: 34, Email: "jordi.pujol@exemple.cat"}},
		{ID: "2", Fields: users.Fields{Name: "Anna Martí", Age: 27, Email: "anna.marti@gmail.com"}},
	}
	original := append([]users.UserRecord(nil), records...)

	first := Project(records)
	second := Project(records)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected equal projections, got %+v and %+v", first, second)
	}
	if !reflect.DeepEqual(records, original) {
		t.Fatalf("projection mutated its input")
	}
	if first[0].AgeCategory != AgeCategoryAdult || first[1].AgeCategory != AgeCategoryYoung {
		t.Fatalf("unexpected categories %+v", first)
	}
	if first[0].ID != "1" || first[1].ID != "2" {
		t.Fatalf("expected order preserved, got %+v", first)
	}
}

func TestBuildViewEmptyState(t *testing.T) {
	view := BuildView(nil, 0)
	if !view.Empty || view.EmptyMessage != EmptyMessage {
		t.Fatalf("expected empty state, got %+v", view)
	}
	if view.Records == nil || len(view.Records) != 0 {
		t.Fatalf("expected empty, non-nil records, got %#v", view.Records)
	}

	populated := BuildView([]users.UserRecord{{ID: "1", Fields: users.Fields{Name: "A", Age: 61, Email: "a@x"}}}, 1)
	if populated.Empty || populated.EmptyMessage != "" {
		t.Fatalf("did not expect empty state, got %+v", populated)
	}
	if populated.Total != 1 || populated.NewCount != 1 {
		t.Fatalf("unexpected counters %+v", populated)
	}
	if populated.Records[0].AgeCategory != AgeCategorySenior {
		t.Fatalf("unexpected category %s", populated.Records[0].AgeCategory)
	}
}
