package parser

import "generator/internal/model"

// DefaultHeaderScanRows 表头最多在前 20 行中寻找
const DefaultHeaderScanRows = 20

// WeightRule 设备类型排序权重（数字越小越前）
type WeightRule struct {
	Keyword string
	Weight  int
}

// PumpRule 水泵分类规则：编号包含任一代码，或名称包含任一标记，即归入该分类
type PumpRule struct {
	Category    model.PumpCategory
	Codes       []string
	NameMarkers []string
}

// Rules 关键字规则表
// 识别、排序、格式化用到的全部关键字都集中在这里，各组件只读不写
type Rules struct {
	// 表格识别
	NameMarkers    []string // 名称列标记
	NoMarkers      []string // 编号列标记
	HeaderReject   []string // 名称单元格再次出现这些词时视为重复表头
	HeaderScanRows int

	// 单元格清洗
	BlankMarkers []string // 视为空值的文本（不区分大小写）

	// 变量格式化
	NonNumericMarkers []string // 含有这些子串的值一律原样输出（区分大小写）
	ReservedPrefix    string   // 键以此开头：保留原始小数位
	Decimal2          []string // 两位小数
	Decimal1          []string // 一位小数

	// 表格格式化：仅这些列做千分位处理
	TableNumeric []string

	// 分组与排序
	BeforeMarker  string
	AfterMarker   string
	SortWeights   []WeightRule
	DefaultWeight int

	// 编号与水泵
	ChillerSheet []string
	PumpSheet    []string
	PumpRules    []PumpRule
	PumpSuffixes map[model.PumpCategory]string
}

// DefaultRules 内置规则
func DefaultRules() *Rules {
	return &Rules{
		NameMarkers:    []string{"名稱", "name", "設備名稱"},
		NoMarkers:      []string{"no", "編號", "設備編號", "冰水主機代號"},
		HeaderReject:   []string{"名稱", "equipment", "name"},
		HeaderScanRows: DefaultHeaderScanRows,

		BlankMarkers: []string{"nan", "none", "nat"},

		NonNumericMarkers: []string{"~", "CH", "CWP", "HP", "/", "New", "new"},
		ReservedPrefix:    "me_",
		Decimal2:          []string{"_rate", "elec_", "new_cop_std", "new_eff_std"},
		Decimal1:          []string{"_year"},

		TableNumeric: []string{"kwh", "elecost", "eleccostperkwh"},

		BeforeMarker: "改善前",
		AfterMarker:  "改善後",
		SortWeights: []WeightRule{
			{Keyword: "chiller", Weight: 1},
			{Keyword: "主機", Weight: 1},
			{Keyword: "pump", Weight: 2},
			{Keyword: "泵", Weight: 2},
			{Keyword: "tower", Weight: 3},
			{Keyword: "水塔", Weight: 3},
		},
		DefaultWeight: 4,

		ChillerSheet: []string{"主機", "chiller", "冰水機"},
		PumpSheet:    []string{"泵", "pump"},
		PumpRules: []PumpRule{
			{Category: model.PumpZone, Codes: []string{"ZP"}, NameMarkers: []string{"區域"}},
			{Category: model.PumpCooling, Codes: []string{"CWP"}, NameMarkers: []string{"冷卻"}},
			{Category: model.PumpChilled, Codes: []string{"CHP"}, NameMarkers: []string{"冰水"}},
		},
		PumpSuffixes: map[model.PumpCategory]string{
			model.PumpChilled: "_冰水",
			model.PumpCooling: "_冷卻",
			model.PumpZone:    "_區域",
			model.PumpOther:   "_其他",
		},
	}
}

// PumpKey 水泵分类在报告上下文中的键
func (r *Rules) PumpKey(sheetName string, category model.PumpCategory) string {
	return sheetName + r.PumpSuffixes[category]
}

// PumpCategories 上下文中固定输出的四个水泵分类（顺序固定）
var PumpCategories = []model.PumpCategory{
	model.PumpChilled,
	model.PumpCooling,
	model.PumpZone,
	model.PumpOther,
}
