package report

import (
	"errors"
	"fmt"

	"generator/internal/model"
	"generator/internal/parser"
)

// DefaultVariableSheet 单一变量页的默认名称
const DefaultVariableSheet = "變數"

// Spreadsheet 表格输入：按原顺序给出 sheet 名称，以及某个 sheet 的原始文本网格
type Spreadsheet interface {
	SheetNames() []string
	Rows(sheet string) ([][]string, error)
}

// SheetStatus 单个 sheet 的处理结果
type SheetStatus string

const (
	SheetVariables SheetStatus = "variables"
	SheetImported  SheetStatus = "imported"
	SheetSkipped   SheetStatus = "skipped"
)

// SheetResult sheet 诊断信息
type SheetResult struct {
	SheetName string           `json:"sheetName"`
	Status    SheetStatus      `json:"status"`
	Kind      parser.TableKind `json:"kind,omitempty"`
	Cohort    model.Cohort     `json:"cohort,omitempty"`
	Weight    int              `json:"weight,omitempty"`
	Records   int              `json:"records"`
	Pump      bool             `json:"pump,omitempty"`
	Reason    string           `json:"reason,omitempty"`
}

// BuildReport 一次构建的诊断报告
type BuildReport struct {
	VariableSheet string                    `json:"variableSheet"`
	Variables     int                       `json:"variables"`
	Sheets        []SheetResult             `json:"sheets"`
	Counters      map[model.Cohort]Counters `json:"counters"`
}

// Imported 写入上下文的 sheet 数
func (r *BuildReport) Imported() int {
	n := 0
	for _, s := range r.Sheets {
		if s.Status == SheetImported {
			n++
		}
	}
	return n
}

// Skipped 被跳过的 sheet 数
func (r *BuildReport) Skipped() int {
	n := 0
	for _, s := range r.Sheets {
		if s.Status == SheetSkipped {
			n++
		}
	}
	return n
}

// ErrNoSheets 工作簿没有任何 sheet
var ErrNoSheets = errors.New("workbook has no sheets")

// Builder 报告上下文构建器
// 无内部可变状态，可被多个请求并发复用；计数器和上下文每次 Build 重新分配
type Builder struct {
	rules         *parser.Rules
	formatter     *parser.Formatter
	extractor     *parser.TableExtractor
	recognizer    *parser.SheetRecognizer
	pumps         *parser.PumpClassifier
	labeler       *Labeler
	variableSheet string
}

// Option 构建器选项
type Option func(*Builder)

// WithVariableSheet 指定变量页名称（不存在时退回第一个 sheet）
func WithVariableSheet(name string) Option {
	return func(b *Builder) {
		if name != "" {
			b.variableSheet = name
		}
	}
}

// NewBuilder 创建构建器；rules 为 nil 时使用内置规则
func NewBuilder(rules *parser.Rules, opts ...Option) *Builder {
	if rules == nil {
		rules = parser.DefaultRules()
	}
	formatter := parser.NewFormatter(rules)
	recognizer := parser.NewSheetRecognizer(rules)
	b := &Builder{
		rules:         rules,
		formatter:     formatter,
		extractor:     parser.NewTableExtractor(rules, formatter),
		recognizer:    recognizer,
		pumps:         parser.NewPumpClassifier(rules),
		labeler:       NewLabeler(recognizer),
		variableSheet: DefaultVariableSheet,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build 将整个工作簿转换为报告上下文
func (b *Builder) Build(book Spreadsheet) (*model.Context, *BuildReport, error) {
	names := book.SheetNames()
	if len(names) == 0 {
		return nil, nil, ErrNoSheets
	}

	ctx := model.NewContext()
	report := &BuildReport{
		Sheets:   make([]SheetResult, 0, len(names)),
		Counters: make(map[model.Cohort]Counters),
	}

	varSheet := b.pickVariableSheet(names)
	report.VariableSheet = varSheet
	n, err := b.loadVariables(book, varSheet, ctx)
	if err != nil {
		return nil, nil, err
	}
	report.Variables = n
	report.Sheets = append(report.Sheets, SheetResult{
		SheetName: varSheet,
		Status:    SheetVariables,
		Records:   n,
	})

	groups := map[model.Cohort][]model.Sheet{}

	for _, name := range names {
		if name == varSheet {
			continue
		}

		result := SheetResult{
			SheetName: name,
			Cohort:    b.recognizer.Cohort(name),
			Weight:    b.recognizer.SortWeight(name),
			Pump:      b.recognizer.IsPump(name),
		}

		grid, err := book.Rows(name)
		if err != nil {
			result.Status = SheetSkipped
			result.Reason = fmt.Sprintf("read sheet: %v", err)
			report.Sheets = append(report.Sheets, result)
			continue
		}

		table := b.extractor.Extract(grid)
		result.Kind = table.Kind
		if table.Empty() {
			result.Status = SheetSkipped
			result.Reason = table.SkipReason
			report.Sheets = append(report.Sheets, result)
			continue
		}

		result.Status = SheetImported
		result.Records = len(table.Records)
		report.Sheets = append(report.Sheets, result)

		sheet := model.Sheet{Name: name, Records: table.Records}
		if result.Cohort == model.CohortStandalone {
			b.writeSheet(ctx, sheet)
			continue
		}
		groups[result.Cohort] = append(groups[result.Cohort], sheet)
	}

	for _, cohort := range []model.Cohort{model.CohortBaseline, model.CohortImproved} {
		sheets := groups[cohort]
		if len(sheets) == 0 {
			continue
		}
		b.recognizer.SortSheets(sheets)
		report.Counters[cohort] = b.labeler.Label(sheets)
		for _, sheet := range sheets {
			b.writeSheet(ctx, sheet)
		}
	}

	return ctx, report, nil
}

// pickVariableSheet 变量页：指定名称存在时使用它，否则使用第一个 sheet
func (b *Builder) pickVariableSheet(names []string) string {
	for _, name := range names {
		if name == b.variableSheet {
			return name
		}
	}
	return names[0]
}

// loadVariables 读取变量页：A 栏为键，B 栏为值
func (b *Builder) loadVariables(book Spreadsheet, sheet string, ctx *model.Context) (int, error) {
	rows, err := book.Rows(sheet)
	if err != nil {
		return 0, fmt.Errorf("read variable sheet %q: %w", sheet, err)
	}

	count := 0
	for _, row := range rows {
		if len(row) == 0 || b.rules.CleanText(row[0]) == "" {
			continue
		}
		key := parser.NormalizeColumnName(row[0])
		value := ""
		if len(row) > 1 {
			value = row[1]
		}
		ctx.SetScalar(key, b.formatter.FormatVariable(value, key).Text)
		count++
	}
	return count, nil
}

// writeSheet 写入 sheet 记录；水泵类 sheet 额外写入四个分类键
func (b *Builder) writeSheet(ctx *model.Context, sheet model.Sheet) {
	ctx.SetTable(sheet.Name, sheet.Records)
	if !b.recognizer.IsPump(sheet.Name) {
		return
	}
	groups := b.pumps.Classify(sheet.Records)
	for _, cat := range parser.PumpCategories {
		ctx.SetTable(b.rules.PumpKey(sheet.Name, cat), groups.Get(cat))
	}
}
