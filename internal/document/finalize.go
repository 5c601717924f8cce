package document

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Finalize saves the workbook to dest through a temp file in the same
// directory and an atomic rename. Only a successful Finalize closes the
// workbook; afterwards every mutating call returns ErrDocumentAlreadyFinalized.
func (w *Workbook) Finalize(dest string) error {
	if w.done {
		return ErrDocumentAlreadyFinalized
	}
	if !strings.EqualFold(filepath.Ext(dest), ".xlsx") {
		return fmt.Errorf("%w: %q must end in .xlsx", ErrInvalidDestination, dest)
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".resightings-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()

	bw := bufio.NewWriterSize(tmp, 64*1024)
	if err := w.file.Write(bw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("flush workbook: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("sync workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close workbook: %w", err)
	}
	_ = os.Chmod(tmpPath, 0o644)
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename workbook: %w", err)
	}

	w.done = true
	return w.file.Close()
}

// Abort discards the workbook without writing anything to disk.
func (w *Workbook) Abort() error {
	if w.done {
		return ErrDocumentAlreadyFinalized
	}
	w.done = true
	return w.file.Close()
}
