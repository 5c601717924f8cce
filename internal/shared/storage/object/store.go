package object

import (
	"context"
	"io"
)

// ContentTypeXLSX is the media type stored alongside published workbooks.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ObjectStore publishes finished workbooks and reads them back for download.
type ObjectStore interface {
	Save(ctx context.Context, runID string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}

// Key returns the storage key for a run's workbook.
func Key(runID, fileName string) string {
	return runID + "/" + fileName
}
