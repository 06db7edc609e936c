package workbook

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Workbook 上传的 Excel 工作簿（只读）
type Workbook struct {
	file *excelize.File

	date1904   *bool        // 工作簿日期基准，首次需要时读取
	dateStyles map[int]bool // 样式 ID 是否为日期格式
}

// Open 从数据流打开工作簿
func Open(reader io.Reader) (*Workbook, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	return &Workbook{file: file}, nil
}

// OpenBytes 从内存数据打开工作簿
func OpenBytes(data []byte) (*Workbook, error) {
	return Open(bytes.NewReader(data))
}

// OpenFile 从路径打开工作簿
func OpenFile(path string) (*Workbook, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel %s: %w", path, err)
	}
	return &Workbook{file: file}, nil
}

// SheetNames 按工作簿顺序返回 sheet 名称
func (w *Workbook) SheetNames() []string {
	if w == nil || w.file == nil {
		return nil
	}
	return w.file.GetSheetList()
}

// Rows 读取 sheet 的原始文本网格
// 数值单元格使用原始值，避免千分位、百分比等显示格式改变文本；
// 日期/时间格式的单元格转为 "2006-01-02 15:04:05" 文本
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	if w == nil || w.file == nil {
		return nil, errors.New("no file loaded")
	}
	rows, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if err := w.convertDates(sheet, rows); err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

// Close 释放工作簿占用的临时资源
func (w *Workbook) Close() error {
	if w == nil || w.file == nil {
		return nil
	}
	return w.file.Close()
}

// Grid 一个 sheet 的内容
type Grid struct {
	Name string
	Rows [][]string
}

// FromGrids 用文本网格生成工作簿，所有单元格以字符串写入
func FromGrids(grids ...Grid) (*Workbook, error) {
	if len(grids) == 0 {
		return nil, errors.New("at least one sheet is required")
	}

	file := excelize.NewFile()
	if err := file.SetSheetName("Sheet1", grids[0].Name); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("rename first sheet: %w", err)
	}
	for _, g := range grids[1:] {
		if _, err := file.NewSheet(g.Name); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("create sheet %s: %w", g.Name, err)
		}
	}

	for _, g := range grids {
		for r, row := range g.Rows {
			for c, value := range row {
				if value == "" {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					_ = file.Close()
					return nil, err
				}
				if err := file.SetCellStr(g.Name, cell, value); err != nil {
					_ = file.Close()
					return nil, fmt.Errorf("write %s!%s: %w", g.Name, cell, err)
				}
			}
		}
	}
	file.SetActiveSheet(0)
	return &Workbook{file: file}, nil
}

// Bytes 序列化为 xlsx
func (w *Workbook) Bytes() ([]byte, error) {
	if w == nil || w.file == nil {
		return nil, errors.New("no file loaded")
	}
	buf, err := w.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
