// Package csvio writes the entity export to disk and turns an import CSV
// into normalized rows for the backend.
package csvio

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// ExportFileName is the file the export is written to.
const ExportFileName = "Clients.csv"

// BOM is the UTF-8 byte order mark prepended to exports so spreadsheet
// tools detect the encoding.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteExport writes data to dir/Clients.csv with exactly one leading BOM
// and returns the path. The file is replaced atomically.
func WriteExport(dir string, data []byte) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, ExportFileName)
	if err := writeAtomic(path, append(append([]byte(nil), BOM...), bytes.TrimPrefix(data, BOM)...)); err != nil {
		return "", err
	}
	return path, nil
}

// writeAtomic writes data using the temp-file, fsync, rename pattern.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	if _, err := w.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing export: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
