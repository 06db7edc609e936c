package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"generator/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "data", "generator.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGenerationLifecycle(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	if err := s.CreateGeneration("g-1", "data.xlsx", []string{"a.docx", "b.docx"}); err != nil {
		t.Fatalf("CreateGeneration: %v", err)
	}

	g, err := s.GetGeneration("g-1")
	if err != nil {
		t.Fatalf("GetGeneration: %v", err)
	}
	if g.Status != model.GenerationProcessing || g.CompletedAt != nil {
		t.Fatalf("unexpected pending generation: %+v", g)
	}
	if diff := cmp.Diff([]string{"a.docx", "b.docx"}, g.Templates); diff != "" {
		t.Fatalf("templates mismatch (-want +got):\n%s", diff)
	}

	if err := s.FinishGeneration("g-1", 4, 3, 1, 12, model.GenerationCompleted, "", ""); err != nil {
		t.Fatalf("FinishGeneration: %v", err)
	}
	g, err = s.GetGeneration("g-1")
	if err != nil {
		t.Fatalf("GetGeneration: %v", err)
	}
	if g.Status != model.GenerationCompleted || g.TotalSheets != 4 || g.ImportedSheets != 3 || g.SkippedSheets != 1 || g.ContextKeys != 12 {
		t.Fatalf("unexpected finished generation: %+v", g)
	}
	if g.CompletedAt == nil {
		t.Fatalf("completed_at not set")
	}
}

func TestFinishUnknownGeneration(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	err := s.FinishGeneration("missing", 0, 0, 0, 0, model.GenerationFailed, "render", "boom")
	if !errors.Is(err, ErrGenerationNotFound) {
		t.Fatalf("err=%v, want ErrGenerationNotFound", err)
	}
	if _, err := s.GetGeneration("missing"); !errors.Is(err, ErrGenerationNotFound) {
		t.Fatalf("err=%v, want ErrGenerationNotFound", err)
	}
}

func TestListGenerationsNewestFirst(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for _, id := range []string{"first", "second", "third"} {
		if err := s.CreateGeneration(id, id+".xlsx", nil); err != nil {
			t.Fatalf("CreateGeneration(%s): %v", id, err)
		}
	}
	if err := s.FinishGeneration("second", 1, 0, 1, 0, model.GenerationFailed, "data parse", "bad sheet"); err != nil {
		t.Fatalf("FinishGeneration: %v", err)
	}

	list, err := s.ListGenerations(2)
	if err != nil {
		t.Fatalf("ListGenerations: %v", err)
	}
	var ids []string
	for _, g := range list {
		ids = append(ids, g.ID)
	}
	if diff := cmp.Diff([]string{"third", "second"}, ids); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if list[1].ErrorStage != "data parse" || list[1].ErrorMessage != "bad sheet" {
		t.Fatalf("unexpected failure fields: %+v", list[1])
	}
	if list[0].Templates == nil || len(list[0].Templates) != 0 {
		t.Fatalf("templates=%v, want empty list", list[0].Templates)
	}
}

func TestSheetLogs(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	if err := s.CreateGeneration("g-2", "data.xlsx", []string{"r.docx"}); err != nil {
		t.Fatalf("CreateGeneration: %v", err)
	}
	logs := []model.SheetLog{
		{GenerationID: "g-2", Position: 1, SheetName: "改善前主機", Status: "imported", Kind: "equipment", Cohort: "baseline", Weight: 1, Records: 2},
		{GenerationID: "g-2", Position: 0, SheetName: "變數", Status: "variables", Records: 5},
		{GenerationID: "g-2", Position: 2, SheetName: "空白", Status: "skipped", Reason: "no table found"},
	}
	if err := s.InsertSheetLogs(logs); err != nil {
		t.Fatalf("InsertSheetLogs: %v", err)
	}

	got, err := s.ListSheetLogs("g-2")
	if err != nil {
		t.Fatalf("ListSheetLogs: %v", err)
	}
	want := []model.SheetLog{logs[1], logs[0], logs[2]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("logs mismatch (-want +got):\n%s", diff)
	}
}

func TestSheetLogsRequireGeneration(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	err := s.InsertSheetLogs([]model.SheetLog{{GenerationID: "nope", SheetName: "x", Status: "skipped"}})
	if err == nil {
		t.Fatalf("expected foreign key violation")
	}
}

func TestReopenKeepsGenerations(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "generator.db")

	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.CreateGeneration("g-1", "data.xlsx", []string{"a.docx"}); err != nil {
		t.Fatalf("CreateGeneration: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	if _, err := reopened.GetGeneration("g-1"); err != nil {
		t.Fatalf("GetGeneration after reopen: %v", err)
	}
}
