package export

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"restack/internal/convert"
)

func TestWriteZip_RoundTrip(t *testing.T) {
	files := []convert.ConvertedFile{
		{Path: "src/main.py", Content: "print('hi')"},
		{Path: "/requirements.txt", Content: "flask\n"},
		{Path: "", Content: "dropped"},
	}

	var buf bytes.Buffer
	if err := WriteZip(&buf, files); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(zr.File))
	}

	got := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		got[f.Name] = string(data)
	}
	if got["src/main.py"] != "print('hi')" {
		t.Fatalf("unexpected content: %q", got["src/main.py"])
	}
	if got["requirements.txt"] != "flask\n" {
		t.Fatalf("leading slash not stripped: %v", got)
	}
}

func TestWriteZip_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteZip(&buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(zr.File) != 0 {
		t.Fatalf("expected empty archive, got %d entries", len(zr.File))
	}
}
