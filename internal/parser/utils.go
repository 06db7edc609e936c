package parser

import (
	"strings"

	"golang.org/x/text/width"
)

// FoldKey 匹配用的规范化：全角转半角并转小写
// 只用于比较，不改变写入记录的列名与值
func FoldKey(text string) string {
	return strings.ToLower(width.Fold.String(text))
}

// NormalizeColumnName 规范化列名：只去除首尾空白
func NormalizeColumnName(name string) string {
	return strings.TrimSpace(name)
}

// ContainsAny 检查字符串是否包含任意一个关键词
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// ContainsAnyFold 不区分大小写/全半角的 ContainsAny
func ContainsAnyFold(text string, keywords []string) bool {
	folded := FoldKey(text)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(folded, FoldKey(kw)) {
			return true
		}
	}
	return false
}

// EqualsAnyFold 不区分大小写/全半角的全等匹配
func EqualsAnyFold(text string, keywords []string) bool {
	folded := FoldKey(text)
	for _, kw := range keywords {
		if folded == FoldKey(kw) {
			return true
		}
	}
	return false
}

// CleanText 单元格清洗：去除首尾空白，空值标记（nan/none/nat）视为空串
func (r *Rules) CleanText(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	for _, m := range r.BlankMarkers {
		if lower == m {
			return ""
		}
	}
	return s
}

// rowIsBlank 整行是否为空
func (r *Rules) rowIsBlank(row []string) bool {
	for _, cell := range row {
		if r.CleanText(cell) != "" {
			return false
		}
	}
	return true
}
