package parser

import (
	"sort"

	"generator/internal/model"
)

// SheetRecognizer 根据 sheet 名称判断分组、设备类型与排序权重
type SheetRecognizer struct {
	rules *Rules
}

// NewSheetRecognizer 创建识别器
func NewSheetRecognizer(rules *Rules) *SheetRecognizer {
	return &SheetRecognizer{rules: rules}
}

// Cohort 判断改善前/改善后分组；两个标记都含有时归入改善前
func (r *SheetRecognizer) Cohort(sheetName string) model.Cohort {
	switch {
	case ContainsAnyFold(sheetName, []string{r.rules.BeforeMarker}):
		return model.CohortBaseline
	case ContainsAnyFold(sheetName, []string{r.rules.AfterMarker}):
		return model.CohortImproved
	default:
		return model.CohortStandalone
	}
}

// SortWeight 设备类型排序权重：主机 1，水泵 2，水塔 3，其他 4
func (r *SheetRecognizer) SortWeight(sheetName string) int {
	folded := FoldKey(sheetName)
	for _, w := range r.rules.SortWeights {
		if w.Keyword != "" && ContainsAny(folded, []string{FoldKey(w.Keyword)}) {
			return w.Weight
		}
	}
	return r.rules.DefaultWeight
}

// IsChiller 是否主机类 sheet（参与流量计/温度计编号）
func (r *SheetRecognizer) IsChiller(sheetName string) bool {
	return ContainsAnyFold(sheetName, r.rules.ChillerSheet)
}

// IsPump 是否水泵类 sheet（参与水泵四分类）
func (r *SheetRecognizer) IsPump(sheetName string) bool {
	return ContainsAnyFold(sheetName, r.rules.PumpSheet)
}

// SortSheets 按设备类型权重稳定排序，同权重保持原有顺序
func (r *SheetRecognizer) SortSheets(sheets []model.Sheet) {
	sort.SliceStable(sheets, func(i, j int) bool {
		return r.SortWeight(sheets[i].Name) < r.SortWeight(sheets[j].Name)
	})
}
