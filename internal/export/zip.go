package export

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"restack/internal/convert"
)

// WriteZip streams the converted files as a ZIP archive. Paths are
// normalized to forward slashes with no leading slash so the archive
// unpacks into a clean tree.
func WriteZip(w io.Writer, files []convert.ConvertedFile) error {
	zw := zip.NewWriter(w)
	for _, f := range files {
		name := strings.TrimPrefix(strings.ReplaceAll(f.Path, "\\", "/"), "/")
		if name == "" {
			continue
		}
		fw, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("zip entry %s: %w", name, err)
		}
		if _, err := io.WriteString(fw, f.Content); err != nil {
			return fmt.Errorf("zip entry %s: %w", name, err)
		}
	}
	return zw.Close()
}
