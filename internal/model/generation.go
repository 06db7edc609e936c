package model

import "time"

// GenerationStatus 一次报告生成的状态
type GenerationStatus string

const (
	GenerationProcessing GenerationStatus = "processing"
	GenerationCompleted  GenerationStatus = "completed"
	GenerationFailed     GenerationStatus = "failed"
)

// Generation 报告生成记录（诊断模式下落库）
type Generation struct {
	ID             string           `json:"id"`
	Workbook       string           `json:"workbook"`
	Templates      []string         `json:"templates"`
	Status         GenerationStatus `json:"status"`
	TotalSheets    int              `json:"totalSheets"`
	ImportedSheets int              `json:"importedSheets"`
	SkippedSheets  int              `json:"skippedSheets"`
	ContextKeys    int              `json:"contextKeys"`
	ErrorStage     string           `json:"errorStage,omitempty"`
	ErrorMessage   string           `json:"errorMessage,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	CompletedAt    *time.Time       `json:"completedAt,omitempty"`
}

// SheetLog 单个 sheet 的处理结果
type SheetLog struct {
	GenerationID string `json:"generationId"`
	Position     int    `json:"position"`
	SheetName    string `json:"sheetName"`
	Status       string `json:"status"`
	Kind         string `json:"kind,omitempty"`
	Cohort       string `json:"cohort,omitempty"`
	Weight       int    `json:"weight"`
	Records      int    `json:"records"`
	Reason       string `json:"reason,omitempty"`
}
