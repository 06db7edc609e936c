package parser

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/width"
)

// decimalPattern 可接受的十进制数字文本（不接受 inf/nan/十六进制）
// 数字之间允许单个下划线分组，如 1_000
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+(_\d+)*(\.(\d+(_\d+)*)?)?|\.\d+(_\d+)*)([eE][+-]?\d+(_\d+)*)?$`)

// numberStyle 数值输出方式
type numberStyle int

const (
	styleKeepDecimals numberStyle = iota // 千分位 + 保留原始小数
	styleFixed                           // 千分位 + 固定小数位
)

// formatRule 变量格式化规则，按顺序匹配，首个命中生效
type formatRule struct {
	name     string
	match    func(key string) bool
	style    numberStyle
	decimals int
}

// Formatter 单元格值格式化器
type Formatter struct {
	rules         *Rules
	variableRules []formatRule
}

// NewFormatter 创建格式化器
func NewFormatter(rules *Rules) *Formatter {
	f := &Formatter{rules: rules}
	f.variableRules = []formatRule{
		{
			name: "reserved_prefix",
			match: func(key string) bool {
				return rules.ReservedPrefix != "" && strings.HasPrefix(key, strings.ToLower(rules.ReservedPrefix))
			},
			style: styleKeepDecimals,
		},
		{
			name:     "decimal_2",
			match:    func(key string) bool { return ContainsAny(key, lowerAll(rules.Decimal2)) },
			style:    styleFixed,
			decimals: 2,
		},
		{
			name:     "decimal_1",
			match:    func(key string) bool { return ContainsAny(key, lowerAll(rules.Decimal1)) },
			style:    styleFixed,
			decimals: 1,
		},
		{
			name:     "integer",
			match:    func(string) bool { return true },
			style:    styleFixed,
			decimals: 0,
		},
	}
	return f
}

// FormatVariable 变量页的值格式化（完整规则表）
func (f *Formatter) FormatVariable(raw, key string) FormatResult {
	text := f.rules.CleanText(raw)
	if text == "" {
		return FormatResult{}
	}
	if ContainsAny(text, f.rules.NonNumericMarkers) {
		return FormatResult{Text: text}
	}
	// 仅允许开头一个负号，其余位置的 "-" 多半是日期（2024-01-01），不做数值处理
	if strings.Contains(text[1:], "-") {
		return FormatResult{Text: text}
	}

	numText := width.Fold.String(text)
	value, ok := parseDecimal(numText)
	if !ok {
		return FormatResult{Text: text}
	}
	numText = strings.ReplaceAll(numText, "_", "")

	keyLower := strings.ToLower(key)
	for _, rule := range f.variableRules {
		if !rule.match(keyLower) {
			continue
		}
		switch rule.style {
		case styleKeepDecimals:
			out, ok := keepDecimals(numText, value)
			if !ok {
				return FormatResult{Text: text}
			}
			return FormatResult{Text: out, Numeric: true}
		default:
			return FormatResult{Text: formatFixed(value, rule.decimals), Numeric: true}
		}
	}
	return FormatResult{Text: text}
}

// FormatTable 表格单元格格式化：只有能源/费用相关列做千分位，其余列原样输出
func (f *Formatter) FormatTable(raw, column string) FormatResult {
	text := f.rules.CleanText(raw)
	if text == "" {
		return FormatResult{}
	}
	if !ContainsAny(strings.ToLower(column), lowerAll(f.rules.TableNumeric)) {
		return FormatResult{Text: text}
	}

	value, ok := parseDecimal(width.Fold.String(strings.ReplaceAll(text, ",", "")))
	if !ok {
		return FormatResult{Text: text}
	}
	if value == math.Trunc(value) {
		return FormatResult{Text: groupInteger(strconv.FormatFloat(value, 'f', 0, 64)), Numeric: true}
	}
	return FormatResult{Text: formatFixed(value, 2), Numeric: true}
}

// parseDecimal 解析十进制数字文本
func parseDecimal(text string) (float64, bool) {
	if !decimalPattern.MatchString(text) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// keepDecimals 整数部分加千分位，小数部分原样保留
func keepDecimals(text string, value float64) (string, bool) {
	if strings.ContainsAny(text, "eE") {
		text = strconv.FormatFloat(value, 'f', -1, 64)
	}
	intPart, fracPart, hasDot := strings.Cut(text, ".")
	if !hasDot {
		return groupInteger(strconv.FormatFloat(math.Trunc(value), 'f', 0, 64)), true
	}
	sign := ""
	switch {
	case strings.HasPrefix(intPart, "-"):
		sign, intPart = "-", intPart[1:]
	case strings.HasPrefix(intPart, "+"):
		intPart = intPart[1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	return sign + groupInteger(intPart) + "." + fracPart, true
}

// formatFixed 固定小数位输出，四舍五入（远离零）作用于数值的最短十进制表示
func formatFixed(value float64, decimals int) string {
	text := strconv.FormatFloat(value, 'f', -1, 64)
	negative := strings.HasPrefix(text, "-")
	text = strings.TrimPrefix(text, "-")

	intPart, fracPart, _ := strings.Cut(text, ".")
	if len(fracPart) <= decimals {
		fracPart += strings.Repeat("0", decimals-len(fracPart))
	} else {
		roundUp := fracPart[decimals] >= '5'
		digits := intPart + fracPart[:decimals]
		if roundUp {
			digits = incrementDigits(digits)
		}
		intPart = digits[:len(digits)-decimals]
		fracPart = digits[len(digits)-decimals:]
	}

	out := groupInteger(intPart)
	if decimals > 0 {
		out += "." + fracPart
	}
	if negative {
		out = "-" + out
	}
	return out
}

// incrementDigits 十进制数字串加一（带进位）
func incrementDigits(digits string) string {
	b := []byte(digits)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < '9' {
			b[i]++
			return string(b)
		}
		b[i] = '0'
	}
	return "1" + string(b)
}

// groupInteger 整数文本加千分位
func groupInteger(digits string) string {
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return digits
	}
	return humanize.BigComma(n)
}

func lowerAll(keywords []string) []string {
	out := make([]string, len(keywords))
	for i, kw := range keywords {
		out[i] = strings.ToLower(kw)
	}
	return out
}
