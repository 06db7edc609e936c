package render_test

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"generator/internal/model"
	"generator/internal/render"
	"generator/internal/render/docxtest"
)

func renderParagraphs(t *testing.T, ctx *model.Context, body ...string) []string {
	t.Helper()
	out, err := render.Render(docxtest.Build(body...), ctx)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	paragraphs, err := docxtest.Paragraphs(out)
	if err != nil {
		t.Fatalf("Paragraphs: %v", err)
	}
	return paragraphs
}

func TestRenderScalars(t *testing.T) {
	t.Parallel()

	ctx := model.NewContext()
	ctx.SetScalar("project", "節能 & 改善")
	ctx.SetScalar("total_kwh", "1,234")

	got := renderParagraphs(t, ctx,
		docxtest.Paragraph("項目：{{ project }}"),
		docxtest.Runs("總電量 {{ total", "_kwh", " }} 度"),
		docxtest.Paragraph("缺少：[{{ missing }}]"),
		docxtest.Paragraph("普通文字"),
	)
	want := []string{"項目：節能 & 改善", "總電量 1,234 度", "缺少：[]", "普通文字"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("paragraphs mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderRowLoop(t *testing.T) {
	t.Parallel()

	ctx := model.NewContext()
	ctx.SetScalar("title", "主機清單")
	ctx.SetTable("改善前主機", []*model.Record{
		model.RecordOf("name", "主機A", "no", "CH-1", "pm", "PM1"),
		model.RecordOf("name", "主機B", "no", "CH-2", "pm", "PM2"),
	})

	got := renderParagraphs(t, ctx,
		docxtest.Paragraph("{{ title }}"),
		docxtest.Table(
			docxtest.Row("名稱", "編號", "儀表"),
			docxtest.Row("{%tr for item in 改善前主機 %}", "", ""),
			docxtest.Row("{{ item.name }}", "{{ item['no'] }}", "{{ item.pm }}"),
			docxtest.Row("{%tr endfor %}", "", ""),
		),
		docxtest.Paragraph("完"),
	)
	want := []string{"主機清單", "名稱", "編號", "儀表", "主機A", "CH-1", "PM1", "主機B", "CH-2", "PM2", "完"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("paragraphs mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderEmptyOrMissingTable(t *testing.T) {
	t.Parallel()

	ctx := model.NewContext()
	ctx.SetTable("改善後泵_冰水", nil)

	for _, key := range []string{"改善後泵_冰水", "不存在"} {
		got := renderParagraphs(t, ctx, docxtest.Table(
			docxtest.Row("名稱"),
			docxtest.Row("{%tr for p in "+key+" %}"),
			docxtest.Row("{{ p.name }}"),
			docxtest.Row("{%tr endfor %}"),
		))
		if diff := cmp.Diff([]string{"名稱"}, got); diff != "" {
			t.Fatalf("%s: paragraphs mismatch (-want +got):\n%s", key, diff)
		}
	}
}

func TestRenderLoopVariableOutsideLoop(t *testing.T) {
	t.Parallel()

	got := renderParagraphs(t, model.NewContext(), docxtest.Paragraph("[{{ item.name }}]"))
	if diff := cmp.Diff([]string{"[]"}, got); diff != "" {
		t.Fatalf("paragraphs mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderTemplateErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body []string
		want error
	}{
		{
			name: "missing endfor",
			body: []string{docxtest.Table(docxtest.Row("{%tr for item in x %}"), docxtest.Row("{{ item.a }}"))},
			want: render.ErrUnbalancedLoop,
		},
		{
			name: "stray endfor",
			body: []string{docxtest.Table(docxtest.Row("{%tr endfor %}"))},
			want: render.ErrUnbalancedLoop,
		},
		{
			name: "loop outside table",
			body: []string{docxtest.Paragraph("{%tr for item in x %}"), docxtest.Paragraph("{%tr endfor %}")},
			want: render.ErrLoopOutsideRow,
		},
		{
			name: "nested loop",
			body: []string{docxtest.Table(
				docxtest.Row("{%tr for a in x %}"),
				docxtest.Row("{%tr for b in y %}"),
				docxtest.Row("{%tr endfor %}"),
				docxtest.Row("{%tr endfor %}"),
			)},
			want: render.ErrNestedLoop,
		},
		{
			name: "unsupported tag",
			body: []string{docxtest.Paragraph("{% if x %}yes{% endif %}")},
			want: render.ErrUnsupportedTag,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := render.Render(docxtest.Build(tt.body...), model.NewContext())
			if !errors.Is(err, tt.want) {
				t.Fatalf("err=%v, want %v", err, tt.want)
			}
		})
	}
}

func TestRenderRejectsNonDocx(t *testing.T) {
	t.Parallel()

	if _, err := render.Render([]byte("plain text"), model.NewContext()); !errors.Is(err, render.ErrNotDocx) {
		t.Fatalf("err=%v, want ErrNotDocx", err)
	}

	emptyZip := &bytes.Buffer{}
	if err := zip.NewWriter(emptyZip).Close(); err != nil {
		t.Fatalf("zip: %v", err)
	}
	if _, err := render.Render(emptyZip.Bytes(), model.NewContext()); !errors.Is(err, render.ErrNotDocx) {
		t.Fatalf("err=%v, want ErrNotDocx", err)
	}
}

func TestOutputName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"報告.docx":             "Result_報告.docx",
		"dir/sub/report.docx": "Result_report.docx",
		`C:\temp\report.docx`: "Result_report.docx",
		"":                    "Result_template.docx",
	}
	for in, want := range cases {
		if got := render.OutputName(in); got != want {
			t.Fatalf("OutputName(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestBundle(t *testing.T) {
	t.Parallel()

	data, err := render.Bundle([]render.Output{
		{Name: "Result_a.docx", Data: []byte("A")},
		{Name: "Result_b.docx", Data: []byte("B")},
		{Name: "Result_a.docx", Data: []byte("A2")},
	})
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}

	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}
	var names []string
	for _, f := range archive.File {
		names = append(names, f.Name)
	}
	want := []string{"Result_a.docx", "Result_b.docx", "Result_a(2).docx"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestBundleAvoidsGeneratedNameCollision(t *testing.T) {
	t.Parallel()

	data, err := render.Bundle([]render.Output{
		{Name: "a.docx", Data: []byte("1")},
		{Name: "a.docx", Data: []byte("2")},
		{Name: "a(2).docx", Data: []byte("3")},
		{Name: "a.docx", Data: []byte("4")},
	})
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}

	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}
	var names []string
	for _, f := range archive.File {
		names = append(names, f.Name)
	}
	want := []string{"a.docx", "a(2).docx", "a(2)(2).docx", "a(3).docx"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}
