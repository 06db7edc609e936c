package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"generator/internal/model"
)

func TestSheetRecognizer_Cohort(t *testing.T) {
	t.Parallel()

	r := NewSheetRecognizer(DefaultRules())
	expect := map[string]model.Cohort{
		"改善前主機":   model.CohortBaseline,
		"改善後水泵":   model.CohortImproved,
		"改善前後對照表": model.CohortBaseline,
		"電費資料":    model.CohortStandalone,
	}
	for name, want := range expect {
		if got := r.Cohort(name); got != want {
			t.Fatalf("Cohort(%s)=%s, want %s", name, got, want)
		}
	}
}

func TestSheetRecognizer_SortWeight(t *testing.T) {
	t.Parallel()

	r := NewSheetRecognizer(DefaultRules())
	expect := map[string]int{
		"改善前冰水主機":        1,
		"Before Chiller": 1,
		"改善前Pump":        2,
		"改善前冰水泵":         2,
		"改善前冷卻水塔":        3,
		"改善前照明":          4,
	}
	for name, want := range expect {
		if got := r.SortWeight(name); got != want {
			t.Fatalf("SortWeight(%s)=%d, want %d", name, got, want)
		}
	}
}

func TestSheetRecognizer_SortSheetsIsStable(t *testing.T) {
	t.Parallel()

	r := NewSheetRecognizer(DefaultRules())
	sheets := []model.Sheet{
		{Name: "改善前照明A"},
		{Name: "改善前水塔"},
		{Name: "改善前泵"},
		{Name: "改善前主機"},
		{Name: "改善前照明B"},
		{Name: "改善前主機2"},
	}
	r.SortSheets(sheets)

	got := make([]string, 0, len(sheets))
	for _, s := range sheets {
		got = append(got, s.Name)
	}
	want := []string{"改善前主機", "改善前主機2", "改善前泵", "改善前水塔", "改善前照明A", "改善前照明B"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSheetRecognizer_EquipmentKinds(t *testing.T) {
	t.Parallel()

	r := NewSheetRecognizer(DefaultRules())
	if !r.IsChiller("改善後冰水機") || !r.IsChiller("Baseline CHILLER") {
		t.Fatalf("expected chiller sheets")
	}
	if r.IsChiller("改善後水泵") {
		t.Fatalf("pump sheet is not a chiller sheet")
	}
	if !r.IsPump("Chilled Water PUMP") || !r.IsPump("改善前冷卻水泵") {
		t.Fatalf("expected pump sheets")
	}
}
