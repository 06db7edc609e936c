package workbook

import (
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	dateTimeLayout = "2006-01-02 15:04:05"
	timeLayout     = "15:04:05"
)

// convertDates 把日期格式单元格的序列值改写为日期文本
func (w *Workbook) convertDates(sheet string, rows [][]string) error {
	for r, row := range rows {
		for c, value := range row {
			serial, err := strconv.ParseFloat(value, 64)
			if err != nil || serial < 0 {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			isDate, err := w.isDateCell(sheet, cell)
			if err != nil {
				return err
			}
			if !isDate {
				continue
			}
			cellType, err := w.file.GetCellType(sheet, cell)
			if err != nil {
				return err
			}
			if cellType == excelize.CellTypeSharedString || cellType == excelize.CellTypeInlineString {
				continue
			}
			text, err := w.formatSerial(serial)
			if err != nil {
				return err
			}
			row[c] = text
		}
	}
	return nil
}

func (w *Workbook) isDateCell(sheet, cell string) (bool, error) {
	styleID, err := w.file.GetCellStyle(sheet, cell)
	if err != nil {
		return false, err
	}
	if styleID == 0 {
		return false, nil
	}
	if w.dateStyles == nil {
		w.dateStyles = make(map[int]bool)
	}
	if isDate, ok := w.dateStyles[styleID]; ok {
		return isDate, nil
	}
	style, err := w.file.GetStyle(styleID)
	if err != nil {
		return false, err
	}
	isDate := isDateNumFmt(style.NumFmt)
	if style.CustomNumFmt != nil {
		isDate = isDateFormatCode(*style.CustomNumFmt)
	}
	w.dateStyles[styleID] = isDate
	return isDate, nil
}

// formatSerial 小于 1 的序列值只有时间部分
func (w *Workbook) formatSerial(serial float64) (string, error) {
	if w.date1904 == nil {
		props, err := w.file.GetWorkbookProps()
		if err != nil {
			return "", err
		}
		use1904 := props.Date1904 != nil && *props.Date1904
		w.date1904 = &use1904
	}
	t, err := excelize.ExcelDateToTime(serial, *w.date1904)
	if err != nil {
		return "", err
	}
	if serial < 1 {
		return t.Format(timeLayout), nil
	}
	return t.Format(dateTimeLayout), nil
}

// isDateNumFmt 内置日期/时间格式 ID（含中日韩与泰文语言格式）
func isDateNumFmt(id int) bool {
	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58,
		id >= 71 && id <= 81:
		return true
	}
	return false
}

// isDateFormatCode 自定义格式去掉引号文本、转义字符、占位/填充字符和方括号段后仍含日期时间记号
func isDateFormatCode(code string) bool {
	if strings.EqualFold(code, "general") {
		return false
	}
	var b strings.Builder
	quoted, bracket, escaped := false, false, false
	for _, r := range code {
		switch {
		case escaped:
			escaped = false
		case quoted:
			quoted = r != '"'
		case bracket:
			if r == ']' {
				bracket = false
			}
		case r == '\\', r == '_', r == '*':
			escaped = true
		case r == '"':
			quoted = true
		case r == '[':
			bracket = true
		default:
			b.WriteRune(r)
		}
	}
	// 只看第一段（正数格式）
	first, _, _ := strings.Cut(b.String(), ";")
	return strings.ContainsAny(strings.ToLower(first), "ymdhs")
}
