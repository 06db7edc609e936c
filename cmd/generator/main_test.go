package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"generator/internal/config"
	"generator/internal/render/docxtest"
	"generator/internal/workbook"
)

func writeFixtures(t *testing.T) (dir, excel, tpl string) {
	t.Helper()
	dir = t.TempDir()

	wb, err := workbook.FromGrids(
		workbook.Grid{Name: "變數", Rows: [][]string{{"project", "示範案"}}},
		workbook.Grid{Name: "改善後泵", Rows: [][]string{{"名稱", "編號"}, {"冷卻水泵", "CWP-1"}}},
	)
	if err != nil {
		t.Fatalf("FromGrids: %v", err)
	}
	defer wb.Close()
	data, err := wb.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	excel = filepath.Join(dir, "data.xlsx")
	if err := os.WriteFile(excel, data, 0644); err != nil {
		t.Fatalf("write excel: %v", err)
	}

	tpl = filepath.Join(dir, "報告.docx")
	doc := docxtest.Build(
		docxtest.Paragraph("{{ project }}"),
		docxtest.Table(
			docxtest.Row("{%tr for p in 改善後泵_冷卻 %}"),
			docxtest.Row("{{ p.name }}", "{{ p.pm }}"),
			docxtest.Row("{%tr endfor %}"),
		),
	)
	if err := os.WriteFile(tpl, doc, 0644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	return dir, excel, tpl
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerateCommand(t *testing.T) {
	dir, excel, tpl := writeFixtures(t)
	outDir := filepath.Join(dir, "out")
	cfg := filepath.Join(dir, "absent.toml")

	if _, err := run(t, "--config", cfg, "generate", "--excel", excel, "--template", tpl, "--out", outDir); err != nil {
		t.Fatalf("generate: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "Result_報告.docx"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	paragraphs, err := docxtest.Paragraphs(data)
	if err != nil {
		t.Fatalf("Paragraphs: %v", err)
	}
	want := []string{"示範案", "冷卻水泵", "PM1"}
	if len(paragraphs) != len(want) {
		t.Fatalf("paragraphs=%q, want %q", paragraphs, want)
	}
	for i := range want {
		if paragraphs[i] != want[i] {
			t.Fatalf("paragraphs=%q, want %q", paragraphs, want)
		}
	}
}

func TestInspectCommand(t *testing.T) {
	dir, excel, _ := writeFixtures(t)

	out, err := run(t, "--config", filepath.Join(dir, "absent.toml"), "inspect", "--excel", excel)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}

	var ctx map[string]json.RawMessage
	if err := json.Unmarshal([]byte(out), &ctx); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	for _, key := range []string{"project", "改善後泵", "改善後泵_冰水", "改善後泵_冷卻", "改善後泵_區域", "改善後泵_其他"} {
		if _, ok := ctx[key]; !ok {
			t.Fatalf("missing key %s in %s", key, out)
		}
	}
}

func TestGenerateRequiresFlags(t *testing.T) {
	dir, excel, _ := writeFixtures(t)

	if _, err := run(t, "--config", filepath.Join(dir, "absent.toml"), "generate", "--excel", excel); err == nil {
		t.Fatalf("expected missing --template error")
	}
}

func TestBadConfigFails(t *testing.T) {
	dir, excel, _ := writeFixtures(t)
	cfg := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfg, []byte("[rules]\nbefore_marker = \"A\"\nafter_marker = \"A\"\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := run(t, "--config", cfg, "inspect", "--excel", excel); err == nil {
		t.Fatalf("expected config error")
	}
}

func TestConfigInitCommand(t *testing.T) {
	t.Setenv("GENERATOR_DATA_DIR", "")
	t.Setenv("GENERATOR_PORT", "")
	cfg := filepath.Join(t.TempDir(), "config.toml")

	out, err := run(t, "--config", cfg, "config", "init")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !bytes.Contains([]byte(out), []byte(cfg)) {
		t.Fatalf("output %q does not mention %s", out, cfg)
	}

	loaded, info, err := config.Load(cfg)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !info.Found || loaded.Server.Port != config.DefaultConfig().Server.Port {
		t.Fatalf("unexpected config %+v (info=%+v)", loaded.Server, info)
	}

	if _, err := run(t, "--config", cfg, "config", "init"); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	if _, err := run(t, "--config", cfg, "config", "init", "--force"); err != nil {
		t.Fatalf("config init --force: %v", err)
	}
}
