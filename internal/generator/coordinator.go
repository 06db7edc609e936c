package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"generator/internal/logging"
	"generator/internal/model"
	"generator/internal/render"
	"generator/internal/report"
	"generator/internal/workbook"
)

const (
	DocxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ZipContentType  = "application/zip"

	// ArchiveName 多模板时打包文件名
	ArchiveName = "Reports.zip"
)

// ErrNoTemplates 没有提供任何模板
var ErrNoTemplates = errors.New("at least one template is required")

// Recorder 生成记录落库（诊断模式）
type Recorder interface {
	CreateGeneration(id, workbook string, templates []string) error
	FinishGeneration(id string, totalSheets, importedSheets, skippedSheets, contextKeys int, status model.GenerationStatus, errorStage, errorMessage string) error
	InsertSheetLogs(logs []model.SheetLog) error
}

// Template 上传的模板
type Template struct {
	Name string
	Data []byte
}

// Request 一次报告生成请求
type Request struct {
	WorkbookName string
	Workbook     []byte
	Templates    []Template
}

// Result 生成结果
// 单模板时 Data 为渲染后的 docx；多模板时为 zip
type Result struct {
	ID          string
	Context     *model.Context
	Report      *report.BuildReport
	Outputs     []render.Output
	FileName    string
	ContentType string
	Data        []byte
	Duration    time.Duration
}

// Coordinator 报告生成协调器
type Coordinator struct {
	builder  *report.Builder
	recorder Recorder
	logger   *zap.Logger
	newID    func() string
}

// Option 协调器选项
type Option func(*Coordinator)

// WithRecorder 记录每次生成；nil 表示关闭诊断
func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) { c.recorder = r }
}

// WithLogger 设置日志
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) { c.logger = logging.OrNop(l) }
}

// WithIDGenerator 替换生成 ID 的函数
func WithIDGenerator(fn func() string) Option {
	return func(c *Coordinator) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// NewCoordinator 创建协调器
func NewCoordinator(builder *report.Builder, opts ...Option) *Coordinator {
	if builder == nil {
		builder = report.NewBuilder(nil)
	}
	c := &Coordinator{
		builder: builder,
		logger:  zap.NewNop(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BuildContext 解析工作簿并构建报告上下文
// 失败时返回 parse 阶段的 StageError
func (c *Coordinator) BuildContext(name string, data []byte) (*model.Context, *report.BuildReport, error) {
	book, err := workbook.OpenBytes(data)
	if err != nil {
		return nil, nil, model.NewStageError(model.StageParse, name, err)
	}
	defer book.Close()

	ctx, rep, err := c.builder.Build(book)
	if err != nil {
		return nil, nil, model.NewStageError(model.StageParse, name, err)
	}

	for _, s := range rep.Sheets {
		if s.Status == report.SheetSkipped {
			c.logger.Debug("sheet skipped",
				zap.String("workbook", name),
				zap.String("sheet", s.SheetName),
				zap.String("reason", s.Reason))
		}
	}
	return ctx, rep, nil
}

// Generate 执行一次完整的报告生成：解析 → 构建上下文 → 逐个模板渲染 → 打包
func (c *Coordinator) Generate(ctx context.Context, req Request) (*Result, error) {
	if len(req.Templates) == 0 {
		return nil, ErrNoTemplates
	}

	start := time.Now()
	id := c.newID()
	names := make([]string, 0, len(req.Templates))
	for _, t := range req.Templates {
		names = append(names, t.Name)
	}

	logger := c.logger.With(zap.String("generation", id), zap.String("workbook", req.WorkbookName))
	logger.Info("generation started", zap.Int("templates", len(names)))
	c.record(logger, func(r Recorder) error { return r.CreateGeneration(id, req.WorkbookName, names) })

	reportCtx, rep, err := c.BuildContext(req.WorkbookName, req.Workbook)
	if err != nil {
		c.fail(logger, id, nil, nil, err)
		return nil, err
	}
	c.recordSheets(logger, id, rep)
	logger.Debug("context built",
		zap.Int("keys", reportCtx.Len()),
		zap.Int("imported", rep.Imported()),
		zap.Int("skipped", rep.Skipped()))

	outputs := make([]render.Output, 0, len(req.Templates))
	for _, t := range req.Templates {
		if err := ctx.Err(); err != nil {
			c.fail(logger, id, reportCtx, rep, err)
			return nil, err
		}
		data, err := render.Render(t.Data, reportCtx)
		if err != nil {
			stageErr := model.NewStageError(model.StageRender, t.Name, err)
			c.fail(logger, id, reportCtx, rep, stageErr)
			return nil, stageErr
		}
		outputs = append(outputs, render.Output{Name: render.OutputName(t.Name), Data: data})
	}

	result := &Result{
		ID:      id,
		Context: reportCtx,
		Report:  rep,
		Outputs: outputs,
	}
	if len(outputs) == 1 {
		result.FileName = outputs[0].Name
		result.ContentType = DocxContentType
		result.Data = outputs[0].Data
	} else {
		archive, err := render.Bundle(outputs)
		if err != nil {
			err = fmt.Errorf("package outputs: %w", err)
			c.fail(logger, id, reportCtx, rep, err)
			return nil, err
		}
		result.FileName = ArchiveName
		result.ContentType = ZipContentType
		result.Data = archive
	}
	result.Duration = time.Since(start)

	c.record(logger, func(r Recorder) error {
		return r.FinishGeneration(id, len(rep.Sheets), rep.Imported(), rep.Skipped(), reportCtx.Len(), model.GenerationCompleted, "", "")
	})
	logger.Info("generation completed",
		zap.String("file", result.FileName),
		zap.Int("bytes", len(result.Data)),
		zap.Duration("duration", result.Duration))
	return result, nil
}

func (c *Coordinator) fail(logger *zap.Logger, id string, reportCtx *model.Context, rep *report.BuildReport, err error) {
	stage := ""
	var stageErr *model.StageError
	if errors.As(err, &stageErr) {
		stage = stageErr.Stage.Describe()
	}
	logger.Error("generation failed", zap.String("stage", stage), zap.Error(err))

	total, imported, skipped, keys := 0, 0, 0, 0
	if rep != nil {
		total, imported, skipped = len(rep.Sheets), rep.Imported(), rep.Skipped()
	}
	if reportCtx != nil {
		keys = reportCtx.Len()
	}
	c.record(logger, func(r Recorder) error {
		return r.FinishGeneration(id, total, imported, skipped, keys, model.GenerationFailed, stage, err.Error())
	})
}

func (c *Coordinator) recordSheets(logger *zap.Logger, id string, rep *report.BuildReport) {
	c.record(logger, func(r Recorder) error { return r.InsertSheetLogs(SheetLogs(id, rep)) })
}

// record 落库失败只记日志，不影响生成结果
func (c *Coordinator) record(logger *zap.Logger, fn func(Recorder) error) {
	if c.recorder == nil {
		return
	}
	if err := fn(c.recorder); err != nil {
		logger.Warn("failed to record generation", zap.Error(err))
	}
}

// SheetLogs 把构建报告转换为可落库的 sheet 记录
func SheetLogs(id string, rep *report.BuildReport) []model.SheetLog {
	if rep == nil {
		return nil
	}
	logs := make([]model.SheetLog, 0, len(rep.Sheets))
	for i, s := range rep.Sheets {
		logs = append(logs, model.SheetLog{
			GenerationID: id,
			Position:     i,
			SheetName:    s.SheetName,
			Status:       string(s.Status),
			Kind:         string(s.Kind),
			Cohort:       string(s.Cohort),
			Weight:       s.Weight,
			Records:      s.Records,
			Reason:       s.Reason,
		})
	}
	return logs
}
