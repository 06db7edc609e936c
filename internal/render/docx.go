package render

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"generator/internal/model"
)

// ErrNotDocx 模板不是有效的 docx
var ErrNotDocx = errors.New("template is not a docx document")

var mergeablePart = regexp.MustCompile(`^word/(document|header\d*|footer\d*|footnotes|endnotes)\.xml$`)

// Render 用报告上下文合并 docx 模板，返回合并后的文档
func Render(template []byte, ctx *model.Context) ([]byte, error) {
	if ctx == nil {
		ctx = model.NewContext()
	}
	archive, err := zip.NewReader(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDocx, err)
	}

	hasDocument := false
	for _, file := range archive.File {
		if file.Name == "word/document.xml" {
			hasDocument = true
			break
		}
	}
	if !hasDocument {
		return nil, fmt.Errorf("%w: word/document.xml missing", ErrNotDocx)
	}

	buffer := &bytes.Buffer{}
	writer := zip.NewWriter(buffer)
	for _, file := range archive.File {
		if !mergeablePart.MatchString(file.Name) {
			if err := writer.Copy(file); err != nil {
				return nil, fmt.Errorf("copy %s: %w", file.Name, err)
			}
			continue
		}

		content, err := readZipFile(file)
		if err != nil {
			return nil, err
		}
		merged, err := mergePart(string(content), ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file.Name, err)
		}

		header := file.FileHeader
		entry, err := writer.CreateHeader(&header)
		if err != nil {
			return nil, fmt.Errorf("docx_zip_entry: %w", err)
		}
		if _, err := entry.Write([]byte(merged)); err != nil {
			return nil, fmt.Errorf("docx_zip_write: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("docx_close: %w", err)
	}
	return buffer.Bytes(), nil
}

// maxPartSize 单个可合并部件解压后的上限
const maxPartSize = 32 << 20

func readZipFile(file *zip.File) ([]byte, error) {
	return readZipFileLimit(file, maxPartSize)
}

func readZipFileLimit(file *zip.File, limit int64) ([]byte, error) {
	if file.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrNotDocx, file.Name, limit)
	}
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("docx_read %s: %w", file.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("docx_read %s: %w", file.Name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrNotDocx, file.Name, limit)
	}
	return data, nil
}

// Output 一份渲染结果
type Output struct {
	Name string
	Data []byte
}

// OutputName 渲染结果的文件名：Result_<模板文件名>
func OutputName(templateName string) string {
	base := path.Base(strings.ReplaceAll(templateName, `\`, "/"))
	if base == "." || base == "/" || base == "" {
		base = "template.docx"
	}
	return "Result_" + base
}

// Bundle 把多份结果打包为 zip
func Bundle(outputs []Output) ([]byte, error) {
	buffer := &bytes.Buffer{}
	archive := zip.NewWriter(buffer)
	seen := make(map[string]int, len(outputs))
	for _, out := range outputs {
		name := uniqueName(out.Name, seen)
		writer, err := archive.Create(name)
		if err != nil {
			return nil, fmt.Errorf("bundle entry %s: %w", name, err)
		}
		if _, err := writer.Write(out.Data); err != nil {
			return nil, fmt.Errorf("bundle write %s: %w", name, err)
		}
	}
	if err := archive.Close(); err != nil {
		return nil, fmt.Errorf("bundle close: %w", err)
	}
	return buffer.Bytes(), nil
}

// uniqueName 同名模板追加序号，避免 zip 内重名
func uniqueName(name string, seen map[string]int) string {
	candidate := name
	ext := path.Ext(name)
	for seen[candidate] > 0 {
		seen[name]++
		candidate = fmt.Sprintf("%s(%d)%s", strings.TrimSuffix(name, ext), seen[name], ext)
	}
	seen[candidate]++
	return candidate
}
