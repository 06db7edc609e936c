package config

import (
	"fmt"

	"generator/internal/model"
	"generator/internal/parser"
)

// RulesConfig 关键字规则覆盖；留空的项沿用内置规则
type RulesConfig struct {
	Names             []string       `toml:"names"`
	Nos               []string       `toml:"nos"`
	HeaderReject      []string       `toml:"header_reject"`
	HeaderScanRows    int            `toml:"header_scan_rows"`
	NonNumericMarkers []string       `toml:"non_numeric_markers"`
	ReservedPrefix    string         `toml:"reserved_prefix"`
	Decimal2          []string       `toml:"decimal2"`
	Decimal1          []string       `toml:"decimal1"`
	TableNumeric      []string       `toml:"table_numeric"`
	BeforeMarker      string         `toml:"before_marker"`
	AfterMarker       string         `toml:"after_marker"`
	ChillerSheet      []string       `toml:"chiller_sheet"`
	PumpSheet         []string       `toml:"pump_sheet"`
	SortWeights       []WeightConfig `toml:"sort_weights"`
	DefaultWeight     int            `toml:"default_weight"`
	Pumps             []PumpConfig   `toml:"pumps"`
}

// WeightConfig 排序权重
type WeightConfig struct {
	Keyword string `toml:"keyword"`
	Weight  int    `toml:"weight"`
}

// PumpConfig 水泵分类规则，按出现顺序匹配
type PumpConfig struct {
	Category string   `toml:"category"`
	Codes    []string `toml:"codes"`
	Markers  []string `toml:"markers"`
}

// Apply 在 base 之上应用覆盖，base 为 nil 时基于内置规则
// 返回新的规则表，不修改 base
func (c RulesConfig) Apply(base *parser.Rules) (*parser.Rules, error) {
	rules := parser.DefaultRules()
	if base != nil {
		copied := *base
		rules = &copied
	}

	overrideList(&rules.NameMarkers, c.Names)
	overrideList(&rules.NoMarkers, c.Nos)
	overrideList(&rules.HeaderReject, c.HeaderReject)
	overrideList(&rules.NonNumericMarkers, c.NonNumericMarkers)
	overrideList(&rules.Decimal2, c.Decimal2)
	overrideList(&rules.Decimal1, c.Decimal1)
	overrideList(&rules.TableNumeric, c.TableNumeric)
	overrideList(&rules.ChillerSheet, c.ChillerSheet)
	overrideList(&rules.PumpSheet, c.PumpSheet)
	overrideString(&rules.ReservedPrefix, c.ReservedPrefix)
	overrideString(&rules.BeforeMarker, c.BeforeMarker)
	overrideString(&rules.AfterMarker, c.AfterMarker)

	if c.HeaderScanRows < 0 {
		return nil, fmt.Errorf("invalid rules.header_scan_rows %d", c.HeaderScanRows)
	}
	if c.HeaderScanRows > 0 {
		rules.HeaderScanRows = c.HeaderScanRows
	}
	if c.DefaultWeight > 0 {
		rules.DefaultWeight = c.DefaultWeight
	}

	if len(c.SortWeights) > 0 {
		weights := make([]parser.WeightRule, 0, len(c.SortWeights))
		for _, w := range c.SortWeights {
			if w.Keyword == "" {
				return nil, fmt.Errorf("rules.sort_weights: empty keyword")
			}
			weights = append(weights, parser.WeightRule{Keyword: w.Keyword, Weight: w.Weight})
		}
		rules.SortWeights = weights
	}

	if len(c.Pumps) > 0 {
		pumps := make([]parser.PumpRule, 0, len(c.Pumps))
		for _, p := range c.Pumps {
			category := model.PumpCategory(p.Category)
			switch category {
			case model.PumpChilled, model.PumpCooling, model.PumpZone:
			default:
				return nil, fmt.Errorf("rules.pumps: unknown category %q", p.Category)
			}
			pumps = append(pumps, parser.PumpRule{
				Category:    category,
				Codes:       append([]string(nil), p.Codes...),
				NameMarkers: append([]string(nil), p.Markers...),
			})
		}
		rules.PumpRules = pumps
	}

	if rules.BeforeMarker == rules.AfterMarker {
		return nil, fmt.Errorf("rules: before_marker and after_marker must differ")
	}
	return rules, nil
}

func overrideList(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = append([]string(nil), src...)
	}
}

func overrideString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}
