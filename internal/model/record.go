package model

import (
	"bytes"
	"encoding/json"
)

// 保留字段：设备表的名称/编号，以及跨表编号阶段写入的仪表编号
const (
	FieldName     = "name"
	FieldNo       = "no"
	FieldPM       = "pm"
	FieldEvapFM   = "evap_fm"
	FieldEvapTOut = "evap_t_out"
	FieldEvapTIn  = "evap_t_in"
	FieldCondFM   = "cond_fm"
	FieldCondTOut = "cond_t_out"
	FieldCondTIn  = "cond_t_in"
)

// Record 表格中的一行：列名 -> 展示文本
// 列集合随 sheet 变化（开放 schema），键保持首次写入的顺序，重复写入后者覆盖前者
type Record struct {
	keys   []string
	values map[string]string
}

// NewRecord 创建空记录
func NewRecord() *Record {
	return &Record{values: make(map[string]string)}
}

// RecordOf 按 key, value, key, value... 顺序构建记录（奇数个参数时忽略最后一个）
func RecordOf(pairs ...string) *Record {
	r := NewRecord()
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i], pairs[i+1])
	}
	return r
}

// Set 写入字段
func (r *Record) Set(key, value string) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get 读取字段，不存在时返回空串
func (r *Record) Get(key string) string {
	return r.values[key]
}

// Lookup 读取字段并报告是否存在
func (r *Record) Lookup(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys 按写入顺序返回列名
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len 字段数量
func (r *Record) Len() int {
	return len(r.keys)
}

// Map 返回字段的普通 map 副本（供模板渲染使用）
func (r *Record) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// MarshalJSON 按列顺序输出
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Sheet 一个工作表解析后的记录序列
type Sheet struct {
	Name    string
	Records []*Record
}
