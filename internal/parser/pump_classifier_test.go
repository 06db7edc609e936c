package parser

import (
	"testing"

	"generator/internal/model"
)

func TestPumpClassifier_Priority(t *testing.T) {
	t.Parallel()

	c := NewPumpClassifier(DefaultRules())
	cases := []struct {
		name, no string
		want     model.PumpCategory
	}{
		{"冰水泵1", "CHP-1", model.PumpChilled},
		{"冷卻水泵", "CWP-1", model.PumpCooling},
		{"區域泵", "ZP-1", model.PumpZone},
		{"熱水泵", "HWP-1", model.PumpOther},
		{"冰水區域泵", "chp-2", model.PumpZone},
		{"泵X", "cwp-3", model.PumpCooling},
		{"冷卻冰水泵", "P-9", model.PumpCooling},
		{"Pump", "", model.PumpOther},
	}
	for _, tc := range cases {
		rec := model.RecordOf(model.FieldName, tc.name, model.FieldNo, tc.no)
		if got := c.Category(rec); got != tc.want {
			t.Fatalf("Category(%s, %s)=%s, want %s", tc.name, tc.no, got, tc.want)
		}
	}
}

func TestPumpClassifier_IsPartition(t *testing.T) {
	t.Parallel()

	records := []*model.Record{
		model.RecordOf(model.FieldName, "冰水泵", model.FieldNo, "CHP-1"),
		model.RecordOf(model.FieldName, "冷卻水泵", model.FieldNo, "CWP-1"),
		model.RecordOf(model.FieldName, "區域泵", model.FieldNo, "ZP-1"),
		model.RecordOf(model.FieldName, "熱水泵", model.FieldNo, "HWP-1"),
		model.RecordOf(model.FieldName, "冰水泵2", model.FieldNo, "CHP-2"),
	}

	groups := NewPumpClassifier(DefaultRules()).Classify(records)
	if groups.Len() != len(records) {
		t.Fatalf("partition size=%d, want %d", groups.Len(), len(records))
	}

	seen := make(map[*model.Record]int)
	for _, cat := range PumpCategories {
		for _, rec := range groups.Get(cat) {
			seen[rec]++
		}
	}
	for i, rec := range records {
		if seen[rec] != 1 {
			t.Fatalf("record %d appears %d times", i, seen[rec])
		}
	}
	if len(groups.Chilled) != 2 || len(groups.Cooling) != 1 || len(groups.Zone) != 1 || len(groups.Other) != 1 {
		t.Fatalf("unexpected group sizes: %d %d %d %d", len(groups.Chilled), len(groups.Cooling), len(groups.Zone), len(groups.Other))
	}
}

func TestPumpClassifier_EmptyInputYieldsEmptyGroups(t *testing.T) {
	t.Parallel()

	groups := NewPumpClassifier(DefaultRules()).Classify(nil)
	for _, cat := range PumpCategories {
		if g := groups.Get(cat); g == nil || len(g) != 0 {
			t.Fatalf("category %s should be an empty, non-nil slice", cat)
		}
	}
}
