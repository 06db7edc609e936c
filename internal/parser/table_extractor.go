package parser

import (
	"strings"

	"generator/internal/model"
)

// TableExtractor 表格抽取器：定位表头、判断表格类型并产出记录
type TableExtractor struct {
	rules     *Rules
	formatter *Formatter
}

// NewTableExtractor 创建表格抽取器
func NewTableExtractor(rules *Rules, formatter *Formatter) *TableExtractor {
	return &TableExtractor{rules: rules, formatter: formatter}
}

// column 表头中保留下来的列
type column struct {
	index int
	name  string
}

// Extract 从原始单元格网格中抽取记录
func (e *TableExtractor) Extract(grid [][]string) Table {
	headerRow, kind := e.findHeaderRow(grid)
	if headerRow < 0 {
		return Table{
			Kind:       TableNone,
			HeaderRow:  -1,
			SkipReason: "no non-blank row in header scan window",
		}
	}

	data := grid[headerRow+1:]
	columns := e.resolveColumns(grid[headerRow], data)

	table := Table{
		Kind:      kind,
		HeaderRow: headerRow,
		Columns:   make([]string, 0, len(columns)),
	}
	for _, col := range columns {
		table.Columns = append(table.Columns, col.name)
	}

	if kind == TableEquipment {
		nameCol, noCol, ok := e.mapEquipmentColumns(columns)
		if ok {
			table.NameColumn = nameCol.name
			table.NoColumn = noCol.name
			table.Records = e.equipmentRecords(data, columns, nameCol, noCol)
		} else {
			// 名称/编号列无法同时确定，按普通表格处理
			table.Kind = TableGeneral
			table.Records = e.generalRecords(data, columns)
		}
	} else {
		table.Records = e.generalRecords(data, columns)
	}

	if len(table.Records) == 0 {
		table.SkipReason = "no data rows"
	}
	return table
}

// findHeaderRow 在前 N 行中寻找表头
// 同时含有名称标记与编号标记的行视为设备表表头；否则取第一个非空行作为普通表表头
func (e *TableExtractor) findHeaderRow(grid [][]string) (int, TableKind) {
	limit := e.rules.HeaderScanRows
	if limit <= 0 || limit > len(grid) {
		limit = len(grid)
	}

	for i := 0; i < limit; i++ {
		parts := make([]string, 0, len(grid[i]))
		for _, cell := range grid[i] {
			if c := e.rules.CleanText(cell); c != "" {
				parts = append(parts, c)
			}
		}
		joined := strings.Join(parts, " ")
		if ContainsAnyFold(joined, e.rules.NameMarkers) && ContainsAnyFold(joined, e.rules.NoMarkers) {
			return i, TableEquipment
		}
	}

	for i := 0; i < limit; i++ {
		if !e.rules.rowIsBlank(grid[i]) {
			return i, TableGeneral
		}
	}
	return -1, TableNone
}

// resolveColumns 取表头中非空的列，并剔除数据全空的列
func (e *TableExtractor) resolveColumns(header []string, data [][]string) []column {
	columns := make([]column, 0, len(header))
	for idx, cell := range header {
		name := NormalizeColumnName(cell)
		if e.rules.CleanText(name) == "" {
			continue
		}
		hasData := false
		for _, row := range data {
			if e.rules.CleanText(cellAt(row, idx)) != "" {
				hasData = true
				break
			}
		}
		if !hasData {
			continue
		}
		columns = append(columns, column{index: idx, name: name})
	}
	return columns
}

// mapEquipmentColumns 确定名称列与编号列，各自首个命中生效
func (e *TableExtractor) mapEquipmentColumns(columns []column) (nameCol, noCol column, ok bool) {
	var hasName, hasNo bool
	for _, col := range columns {
		if !hasName && (EqualsAnyFold(col.name, e.rules.NameMarkers) || ContainsAnyFold(col.name, e.rules.NameMarkers)) {
			nameCol, hasName = col, true
		}
		if !hasNo && (EqualsAnyFold(col.name, e.rules.NoMarkers) || ContainsAnyFold(col.name, e.rules.NoMarkers)) {
			noCol, hasNo = col, true
		}
	}
	return nameCol, noCol, hasName && hasNo
}

// equipmentRecords 设备表：丢弃名称或编号为空的行、以及重复出现的表头行
func (e *TableExtractor) equipmentRecords(data [][]string, columns []column, nameCol, noCol column) []*model.Record {
	records := make([]*model.Record, 0, len(data))
	for _, row := range data {
		name := e.rules.CleanText(cellAt(row, nameCol.index))
		no := e.rules.CleanText(cellAt(row, noCol.index))
		if name == "" || no == "" {
			continue
		}
		if ContainsAnyFold(name, e.rules.HeaderReject) {
			continue
		}

		rec := model.NewRecord()
		for _, col := range columns {
			rec.Set(col.name, e.formatter.FormatTable(cellAt(row, col.index), col.name).Text)
		}
		rec.Set(model.FieldName, name)
		rec.Set(model.FieldNo, no)
		records = append(records, rec)
	}
	return records
}

// generalRecords 普通表：丢弃整行为空的行
func (e *TableExtractor) generalRecords(data [][]string, columns []column) []*model.Record {
	records := make([]*model.Record, 0, len(data))
	for _, row := range data {
		blank := true
		for _, col := range columns {
			if e.rules.CleanText(cellAt(row, col.index)) != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}

		rec := model.NewRecord()
		for _, col := range columns {
			rec.Set(col.name, e.formatter.FormatTable(cellAt(row, col.index), col.name).Text)
		}
		records = append(records, rec)
	}
	return records
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
