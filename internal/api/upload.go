package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"path/filepath"
	"strings"
)

type uploadedFile struct {
	name string
	data []byte
}

// readUpload 读取上传文件，超过 limit 字节时报错
func readUpload(header *multipart.FileHeader, limit int64) (uploadedFile, error) {
	if header.Size > limit {
		return uploadedFile{}, fmt.Errorf("文件 %s 超过大小限制 (%d MB)", header.Filename, limit>>20)
	}
	f, err := header.Open()
	if err != nil {
		return uploadedFile{}, fmt.Errorf("读取文件 %s 失败: %w", header.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return uploadedFile{}, fmt.Errorf("读取文件 %s 失败: %w", header.Filename, err)
	}
	if int64(len(data)) > limit {
		return uploadedFile{}, fmt.Errorf("文件 %s 超过大小限制 (%d MB)", header.Filename, limit>>20)
	}
	return uploadedFile{name: filepath.Base(header.Filename), data: data}, nil
}

// contentDisposition 附件下载头；非 ASCII 文件名放在 filename*
func contentDisposition(fileName string) string {
	fallback := asciiFallback(fileName)
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", fallback, url.PathEscape(fileName))
}

func asciiFallback(name string) string {
	ext := filepath.Ext(name)
	var b strings.Builder
	for _, r := range strings.TrimSuffix(name, ext) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		}
	}
	base := b.String()
	if base == "" || base == "Result_" {
		base = "report"
	}
	return base + ext
}
