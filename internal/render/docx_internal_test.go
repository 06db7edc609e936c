package render

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestReadZipFileLimit(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	for name, body := range map[string]string{
		"word/small.xml": strings.Repeat("a", 16),
		"word/large.xml": strings.Repeat("a", 17),
	} {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if _, err := entry.Write([]byte(body)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	archive, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}

	for _, file := range archive.File {
		data, err := readZipFileLimit(file, 16)
		switch file.Name {
		case "word/small.xml":
			if err != nil || len(data) != 16 {
				t.Fatalf("small part: len=%d err=%v", len(data), err)
			}
		case "word/large.xml":
			if !errors.Is(err, ErrNotDocx) {
				t.Fatalf("large part: err=%v, want ErrNotDocx", err)
			}
		}
	}
}
