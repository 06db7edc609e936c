package render

import (
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"generator/internal/model"
)

var (
	// ErrUnbalancedLoop 行循环缺少配对的 for / endfor
	ErrUnbalancedLoop = errors.New("unbalanced row loop")
	// ErrNestedLoop 行循环内不允许再嵌套行循环
	ErrNestedLoop = errors.New("nested row loops are not supported")
	// ErrLoopOutsideRow 行循环标签不在表格行内
	ErrLoopOutsideRow = errors.New("row loop tag is not inside a table row")
	// ErrUnsupportedTag 不支持的模板标签
	ErrUnsupportedTag = errors.New("unsupported template tag")
)

var (
	paragraphPattern   = regexp.MustCompile(`(?s)<w:p(?:\s[^>]*)?>.*?</w:p>`)
	textPattern        = regexp.MustCompile(`(?s)<w:t(?:\s[^>]*)?>(.*?)</w:t>|<w:t(?:\s[^>]*)?/>`)
	placeholderPattern = regexp.MustCompile(`(?s)\{\{\s*(.*?)\s*\}\}`)
	forPattern         = regexp.MustCompile(`\{%-?\s*tr\s+for\s+([^\s%]+)\s+in\s+([^\s%]+)\s*-?%\}`)
	endforPattern      = regexp.MustCompile(`\{%-?\s*tr\s+endfor\s*-?%\}`)
	tagPattern         = regexp.MustCompile(`(?s)\{%.*?%\}`)
	dottedPattern      = regexp.MustCompile(`^([^\s.\[]+)\.([^\s]+)$`)
	indexPattern       = regexp.MustCompile(`^([^\s.\[]+)\[\s*['"](.+?)['"]\s*\]$`)
)

var quoteFolder = strings.NewReplacer("‘", "'", "’", "'", "“", `"`, "”", `"`)

// mergePart 对单个 XML 部件执行合并
func mergePart(doc string, ctx *model.Context) (string, error) {
	doc = normalizeRuns(doc)

	doc, err := expandLoops(doc, ctx)
	if err != nil {
		return "", err
	}

	if tag := tagPattern.FindString(doc); tag != "" {
		if endforPattern.MatchString(tag) {
			return "", fmt.Errorf("%w: %s without matching for", ErrUnbalancedLoop, html.UnescapeString(tag))
		}
		return "", fmt.Errorf("%w: %s", ErrUnsupportedTag, html.UnescapeString(tag))
	}

	return substitute(doc, func(name, field string, hasField bool) (string, bool) {
		if hasField {
			return "", true
		}
		value, _ := ctx.Scalar(name)
		return value, true
	}), nil
}

// normalizeRuns 把含模板标签的段落文字合并到第一个 w:t
// Word 常把 "{{ key }}" 拆到多个 run 中
func normalizeRuns(doc string) string {
	return paragraphPattern.ReplaceAllStringFunc(doc, func(paragraph string) string {
		matches := textPattern.FindAllStringSubmatchIndex(paragraph, -1)
		if len(matches) < 2 {
			return paragraph
		}

		var joined strings.Builder
		for _, m := range matches {
			if m[2] >= 0 {
				joined.WriteString(paragraph[m[2]:m[3]])
			}
		}
		text := joined.String()
		if !strings.Contains(text, "{{") && !strings.Contains(text, "{%") {
			return paragraph
		}

		var out strings.Builder
		last := 0
		for i, m := range matches {
			out.WriteString(paragraph[last:m[0]])
			if i == 0 {
				out.WriteString(`<w:t xml:space="preserve">`)
				out.WriteString(text)
				out.WriteString(`</w:t>`)
			} else {
				out.WriteString(`<w:t></w:t>`)
			}
			last = m[1]
		}
		out.WriteString(paragraph[last:])
		return out.String()
	})
}

// expandLoops 展开 {%tr for item in KEY %} ... {%tr endfor %} 行循环
// 标签所在的行整体删除，中间的行按表格记录逐条复制
func expandLoops(doc string, ctx *model.Context) (string, error) {
	for {
		loc := forPattern.FindStringSubmatchIndex(doc)
		if loc == nil {
			return doc, nil
		}
		itemVar := doc[loc[2]:loc[3]]
		key := html.UnescapeString(doc[loc[4]:loc[5]])

		openStart, openEnd, ok := enclosingRow(doc, loc[0])
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrLoopOutsideRow, doc[loc[0]:loc[1]])
		}

		endLoc := endforPattern.FindStringIndex(doc[openEnd:])
		if endLoc == nil {
			return "", fmt.Errorf("%w: for %s in %s has no endfor", ErrUnbalancedLoop, itemVar, key)
		}
		endPos := openEnd + endLoc[0]
		closeStart, closeEnd, ok := enclosingRow(doc, endPos)
		if !ok {
			return "", fmt.Errorf("%w: endfor of %s", ErrLoopOutsideRow, key)
		}
		if closeStart < openEnd {
			return "", fmt.Errorf("%w: for and endfor of %s share a row", ErrUnbalancedLoop, key)
		}

		body := doc[openEnd:closeStart]
		if forPattern.MatchString(body) {
			return "", fmt.Errorf("%w: inside loop over %s", ErrNestedLoop, key)
		}

		records, _ := ctx.Table(key)
		var expanded strings.Builder
		for _, rec := range records {
			expanded.WriteString(substitute(body, func(name, field string, hasField bool) (string, bool) {
				if name != itemVar || !hasField {
					return "", false
				}
				return rec.Get(field), true
			}))
		}

		doc = doc[:openStart] + expanded.String() + doc[closeEnd:]
	}
}

// enclosingRow 返回包含 pos 的 <w:tr> 行的起止位置
func enclosingRow(doc string, pos int) (int, int, bool) {
	start := -1
	for search := pos; search > 0; {
		idx := strings.LastIndex(doc[:search], "<w:tr")
		if idx < 0 {
			break
		}
		next := idx + len("<w:tr")
		if next < len(doc) && (doc[next] == '>' || doc[next] == ' ') {
			start = idx
			break
		}
		search = idx
	}
	if start < 0 {
		return 0, 0, false
	}
	if strings.Contains(doc[start:pos], "</w:tr>") {
		return 0, 0, false
	}

	end := strings.Index(doc[pos:], "</w:tr>")
	if end < 0 {
		return 0, 0, false
	}
	return start, pos + end + len("</w:tr>"), true
}

// resolver 解析占位符；返回 false 表示保留原样
type resolver func(name, field string, hasField bool) (string, bool)

// substitute 替换 {{ ... }} 占位符，值做 XML 转义
func substitute(doc string, resolve resolver) string {
	return placeholderPattern.ReplaceAllStringFunc(doc, func(match string) string {
		sub := placeholderPattern.FindStringSubmatch(match)
		name, field, hasField := parseExpr(sub[1])
		value, ok := resolve(name, field, hasField)
		if !ok {
			return match
		}
		return escapeText(value)
	})
}

// parseExpr 支持 key、item.field、item['field'] 三种写法
func parseExpr(expr string) (string, string, bool) {
	expr = strings.TrimSpace(quoteFolder.Replace(html.UnescapeString(expr)))
	if m := indexPattern.FindStringSubmatch(expr); m != nil {
		return m[1], m[2], true
	}
	if m := dottedPattern.FindStringSubmatch(expr); m != nil {
		return m[1], m[2], true
	}
	return expr, "", false
}

func escapeText(value string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(value)); err != nil {
		return ""
	}
	return b.String()
}
