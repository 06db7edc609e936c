// Package docxtest 构造和读取最小 docx，供测试使用
package docxtest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const (
	relationshipContent = `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

	contentTypes = `<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`
)

// Paragraph 单 run 段落
func Paragraph(text string) string {
	return Runs(text)
}

// Runs 每段文字一个 run 的段落，用来模拟 Word 拆分占位符
func Runs(parts ...string) string {
	var b strings.Builder
	b.WriteString(`<w:p>`)
	for _, part := range parts {
		b.WriteString(`<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">`)
		_ = xml.EscapeText(&b, []byte(part))
		b.WriteString(`</w:t></w:r>`)
	}
	b.WriteString(`</w:p>`)
	return b.String()
}

// Row 表格行，每个单元格一个段落
func Row(cells ...string) string {
	var b strings.Builder
	b.WriteString(`<w:tr><w:trPr><w:cantSplit/></w:trPr>`)
	for _, cell := range cells {
		b.WriteString(`<w:tc><w:tcPr><w:tcW w:w="2000" w:type="dxa"/></w:tcPr>`)
		b.WriteString(Paragraph(cell))
		b.WriteString(`</w:tc>`)
	}
	b.WriteString(`</w:tr>`)
	return b.String()
}

// Table 表格
func Table(rows ...string) string {
	return `<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/></w:tblPr>` + strings.Join(rows, "") + `</w:tbl>`
}

// Build 用 body 内容生成 docx
func Build(body ...string) []byte {
	var document strings.Builder
	document.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	document.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, part := range body {
		document.WriteString(part)
	}
	document.WriteString(`</w:body></w:document>`)

	buffer := &bytes.Buffer{}
	archive := zip.NewWriter(buffer)
	files := []struct{ name, content string }{
		{"[Content_Types].xml", contentTypes},
		{"_rels/.rels", relationshipContent},
		{"word/document.xml", document.String()},
	}
	for _, f := range files {
		w, err := archive.Create(f.name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(f.content)); err != nil {
			panic(err)
		}
	}
	if err := archive.Close(); err != nil {
		panic(err)
	}
	return buffer.Bytes()
}

// Paragraphs 读取 document.xml 中每个段落的纯文本（空段落忽略）
func Paragraphs(data []byte) ([]string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("docx_open: %w", err)
	}
	var documentFile *zip.File
	for _, file := range archive.File {
		if file.Name == "word/document.xml" {
			documentFile = file
			break
		}
	}
	if documentFile == nil {
		return nil, fmt.Errorf("docx_document_missing")
	}
	rc, err := documentFile.Open()
	if err != nil {
		return nil, fmt.Errorf("docx_read: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var paragraphs []string
	var builder strings.Builder
	inText := false
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("docx_decode: %w", err)
		}
		switch tok := token.(type) {
		case xml.StartElement:
			switch tok.Name.Local {
			case "p":
				builder.Reset()
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch tok.Name.Local {
			case "p":
				if text := builder.String(); text != "" {
					paragraphs = append(paragraphs, text)
				}
				builder.Reset()
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				builder.Write(tok)
			}
		}
	}
	return paragraphs, nil
}
