package report

import (
	"fmt"

	"generator/internal/model"
	"generator/internal/parser"
)

// Counters 单个分组内的仪表编号计数器：测点 PM、流量计 FM、温度计 T
// 每次分组编号都从 1 开始，不跨分组、不跨请求共享
type Counters struct {
	PM int `json:"pm"`
	FM int `json:"fm"`
	T  int `json:"t"`
}

// NewCounters 初始计数器
func NewCounters() Counters {
	return Counters{PM: 1, FM: 1, T: 1}
}

func (c *Counters) nextPM() string {
	label := fmt.Sprintf("PM%d", c.PM)
	c.PM++
	return label
}

func (c *Counters) nextFM() string {
	label := fmt.Sprintf("FM%d", c.FM)
	c.FM++
	return label
}

// nextTPair 一对温度计（出水、进水）
func (c *Counters) nextTPair() (out, in string) {
	out = fmt.Sprintf("T%d", c.T)
	in = fmt.Sprintf("T%d", c.T+1)
	c.T += 2
	return out, in
}

// Labeler 跨 sheet 仪表编号
type Labeler struct {
	recognizer *parser.SheetRecognizer
}

// NewLabeler 创建编号器
func NewLabeler(recognizer *parser.SheetRecognizer) *Labeler {
	return &Labeler{recognizer: recognizer}
}

// Label 对一个已排序分组内的全部记录写入编号，返回编号结束后的计数器
//
// 顺序：
//  1. 所有 sheet 的所有记录依次分配测点 PM
//  2. 主机类 sheet 的记录依次分配冰水侧流量计与温度计对
//  3. 同样顺序再分配冷却水侧流量计与温度计对，计数接续第 2 步
func (l *Labeler) Label(sheets []model.Sheet) Counters {
	counters := NewCounters()

	for _, sheet := range sheets {
		for _, rec := range sheet.Records {
			rec.Set(model.FieldPM, counters.nextPM())
		}
	}

	chillers := make([]model.Sheet, 0, len(sheets))
	for _, sheet := range sheets {
		if l.recognizer.IsChiller(sheet.Name) {
			chillers = append(chillers, sheet)
		}
	}

	for _, sheet := range chillers {
		for _, rec := range sheet.Records {
			rec.Set(model.FieldEvapFM, counters.nextFM())
			out, in := counters.nextTPair()
			rec.Set(model.FieldEvapTOut, out)
			rec.Set(model.FieldEvapTIn, in)
		}
	}

	for _, sheet := range chillers {
		for _, rec := range sheet.Records {
			rec.Set(model.FieldCondFM, counters.nextFM())
			out, in := counters.nextTPair()
			rec.Set(model.FieldCondTOut, out)
			rec.Set(model.FieldCondTIn, in)
		}
	}

	return counters
}
