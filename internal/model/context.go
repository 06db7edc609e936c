package model

import (
	"bytes"
	"encoding/json"
)

// Context 报告上下文：交给模板渲染的扁平映射
// 键为变量名、sheet 名或 "sheet名_分类"；值为标量文本或记录序列
type Context struct {
	keys    []string
	scalars map[string]string
	tables  map[string][]*Record
}

// NewContext 创建空上下文
func NewContext() *Context {
	return &Context{
		scalars: make(map[string]string),
		tables:  make(map[string][]*Record),
	}
}

func (c *Context) touch(key string) {
	_, s := c.scalars[key]
	_, t := c.tables[key]
	if !s && !t {
		c.keys = append(c.keys, key)
	}
}

// SetScalar 写入标量值（同名键被覆盖）
func (c *Context) SetScalar(key, value string) {
	c.touch(key)
	delete(c.tables, key)
	c.scalars[key] = value
}

// SetTable 写入记录序列（同名键被覆盖）；nil 会被规范化为空序列
func (c *Context) SetTable(key string, records []*Record) {
	c.touch(key)
	delete(c.scalars, key)
	if records == nil {
		records = []*Record{}
	}
	c.tables[key] = records
}

// Scalar 读取标量
func (c *Context) Scalar(key string) (string, bool) {
	v, ok := c.scalars[key]
	return v, ok
}

// Table 读取记录序列
func (c *Context) Table(key string) ([]*Record, bool) {
	v, ok := c.tables[key]
	return v, ok
}

// Has 键是否存在
func (c *Context) Has(key string) bool {
	_, s := c.scalars[key]
	_, t := c.tables[key]
	return s || t
}

// Keys 按写入顺序返回全部键
func (c *Context) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Len 键数量
func (c *Context) Len() int {
	return len(c.keys)
}

// MarshalJSON 按写入顺序输出；标量为字符串，表格为对象数组
func (c *Context) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		var vb []byte
		if records, ok := c.tables[k]; ok {
			vb, err = json.Marshal(records)
		} else {
			vb, err = json.Marshal(c.scalars[k])
		}
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
