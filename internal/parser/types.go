package parser

import "generator/internal/model"

// TableKind 工作表的表格类型
type TableKind string

const (
	TableNone      TableKind = "none"      // 没有任何非空行
	TableEquipment TableKind = "equipment" // 同时具备名称列与编号列的设备表
	TableGeneral   TableKind = "general"   // 普通表格
)

// Table 表格抽取结果
type Table struct {
	Kind       TableKind       `json:"kind"`
	HeaderRow  int             `json:"headerRow"` // 0 起算；未找到时为 -1
	Columns    []string        `json:"columns"`
	NameColumn string          `json:"nameColumn,omitempty"`
	NoColumn   string          `json:"noColumn,omitempty"`
	Records    []*model.Record `json:"-"`
	SkipReason string          `json:"skipReason,omitempty"`
}

// Empty 是否没有可用记录（此类 sheet 不写入报告上下文）
func (t Table) Empty() bool {
	return len(t.Records) == 0
}

// FormatResult 单元格格式化结果
// Numeric 为 true 表示按数值规则重排；false 表示原样透传清洗后的文本
type FormatResult struct {
	Text    string
	Numeric bool
}

// PumpGroups 水泵四分类结果，四个集合互不相交且覆盖全部记录
type PumpGroups struct {
	Chilled []*model.Record
	Cooling []*model.Record
	Zone    []*model.Record
	Other   []*model.Record
}

// Get 按分类取集合
func (g PumpGroups) Get(category model.PumpCategory) []*model.Record {
	switch category {
	case model.PumpChilled:
		return g.Chilled
	case model.PumpCooling:
		return g.Cooling
	case model.PumpZone:
		return g.Zone
	default:
		return g.Other
	}
}

// Len 全部记录数
func (g PumpGroups) Len() int {
	return len(g.Chilled) + len(g.Cooling) + len(g.Zone) + len(g.Other)
}
