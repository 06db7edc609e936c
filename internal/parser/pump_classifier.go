package parser

import (
	"strings"

	"generator/internal/model"
)

// PumpClassifier 水泵四分类：区域、冷却、冰水、其他
type PumpClassifier struct {
	rules *Rules
}

// NewPumpClassifier 创建水泵分类器
func NewPumpClassifier(rules *Rules) *PumpClassifier {
	return &PumpClassifier{rules: rules}
}

// Category 单条记录的分类，按规则顺序首个命中生效
func (c *PumpClassifier) Category(rec *model.Record) model.PumpCategory {
	no := strings.ToUpper(rec.Get(model.FieldNo))
	name := rec.Get(model.FieldName)
	for _, rule := range c.rules.PumpRules {
		if ContainsAny(no, upperAll(rule.Codes)) || ContainsAny(name, rule.NameMarkers) {
			return rule.Category
		}
	}
	return model.PumpOther
}

// Classify 将记录划分到四个互不相交的集合，不修改记录本身
func (c *PumpClassifier) Classify(records []*model.Record) PumpGroups {
	groups := PumpGroups{
		Chilled: []*model.Record{},
		Cooling: []*model.Record{},
		Zone:    []*model.Record{},
		Other:   []*model.Record{},
	}
	for _, rec := range records {
		switch c.Category(rec) {
		case model.PumpZone:
			groups.Zone = append(groups.Zone, rec)
		case model.PumpCooling:
			groups.Cooling = append(groups.Cooling, rec)
		case model.PumpChilled:
			groups.Chilled = append(groups.Chilled, rec)
		default:
			groups.Other = append(groups.Other, rec)
		}
	}
	return groups
}

func upperAll(keywords []string) []string {
	out := make([]string, len(keywords))
	for i, kw := range keywords {
		out[i] = strings.ToUpper(kw)
	}
	return out
}
