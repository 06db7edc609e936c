package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"generator/internal/model"
)

// ErrGenerationNotFound 生成记录不存在
var ErrGenerationNotFound = errors.New("generation not found")

// CreateGeneration 创建生成记录，状态为 processing
func (s *Store) CreateGeneration(id, workbook string, templates []string) error {
	_, err := s.db.Exec(`
		INSERT INTO generations (id, workbook, templates_json, status)
		VALUES (?, ?, ?, ?)
	`, id, workbook, BuildTemplatesJSON(templates), model.GenerationProcessing)
	if err != nil {
		return fmt.Errorf("failed to create generation: %w", err)
	}
	return nil
}

// FinishGeneration 完成生成记录更新
func (s *Store) FinishGeneration(id string, totalSheets, importedSheets, skippedSheets, contextKeys int, status model.GenerationStatus, errorStage, errorMessage string) error {
	res, err := s.db.Exec(`
		UPDATE generations SET
			total_sheets = ?,
			imported_sheets = ?,
			skipped_sheets = ?,
			context_keys = ?,
			status = ?,
			error_stage = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, totalSheets, importedSheets, skippedSheets, contextKeys, status, errorStage, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update generation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrGenerationNotFound, id)
	}
	return nil
}

// InsertSheetLogs 批量写入 sheet 处理结果
func (s *Store) InsertSheetLogs(logs []model.SheetLog) error {
	if len(logs) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.Prepare(`
		INSERT INTO sheet_results (
			generation_id, position, sheet_name, status,
			kind, cohort, weight, records, reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare sheet_results insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range logs {
		if _, err := stmt.Exec(
			l.GenerationID, l.Position, l.SheetName, l.Status,
			l.Kind, l.Cohort, l.Weight, l.Records, l.Reason,
		); err != nil {
			return fmt.Errorf("failed to insert sheet_results %s: %w", l.SheetName, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sheet_results: %w", err)
	}
	return nil
}

const generationColumns = `
	id, workbook, templates_json, status,
	total_sheets, imported_sheets, skipped_sheets, context_keys,
	error_stage, error_message, created_at, completed_at`

// GetGeneration 按 ID 查询生成记录
func (s *Store) GetGeneration(id string) (*model.Generation, error) {
	row := s.db.QueryRow(`SELECT `+generationColumns+` FROM generations WHERE id = ?`, id)
	g, err := scanGeneration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrGenerationNotFound, id)
		}
		return nil, err
	}
	return g, nil
}

// ListGenerations 最近的生成记录，新的在前
func (s *Store) ListGenerations(limit int) ([]model.Generation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`SELECT `+generationColumns+`
		FROM generations
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	defer rows.Close()

	result := make([]model.Generation, 0, limit)
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *g)
	}
	return result, rows.Err()
}

// ListSheetLogs 查询某次生成的 sheet 处理结果（按工作簿顺序）
func (s *Store) ListSheetLogs(generationID string) ([]model.SheetLog, error) {
	rows, err := s.db.Query(`
		SELECT generation_id, position, sheet_name, status, kind, cohort, weight, records, reason
		FROM sheet_results
		WHERE generation_id = ?
		ORDER BY position ASC
	`, generationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sheet_results: %w", err)
	}
	defer rows.Close()

	var logs []model.SheetLog
	for rows.Next() {
		var l model.SheetLog
		if err := rows.Scan(&l.GenerationID, &l.Position, &l.SheetName, &l.Status, &l.Kind, &l.Cohort, &l.Weight, &l.Records, &l.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan sheet_results: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGeneration(row scanner) (*model.Generation, error) {
	var (
		g             model.Generation
		templatesJSON string
		status        string
		completedAt   sql.NullTime
	)
	if err := row.Scan(
		&g.ID, &g.Workbook, &templatesJSON, &status,
		&g.TotalSheets, &g.ImportedSheets, &g.SkippedSheets, &g.ContextKeys,
		&g.ErrorStage, &g.ErrorMessage, &g.CreatedAt, &completedAt,
	); err != nil {
		return nil, err
	}
	g.Status = model.GenerationStatus(status)
	if err := json.Unmarshal([]byte(templatesJSON), &g.Templates); err != nil {
		g.Templates = nil
	}
	if completedAt.Valid {
		t := completedAt.Time
		g.CompletedAt = &t
	}
	return &g, nil
}

// BuildTemplatesJSON 将模板名序列化为 JSON
func BuildTemplatesJSON(templates []string) string {
	if templates == nil {
		templates = []string{}
	}
	b, err := json.Marshal(templates)
	if err != nil {
		return "[]"
	}
	return string(b)
}
