// Package document lays resighting rows out in an xlsx workbook and saves it
// exactly once.
package document

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"resighting-export/internal/render"
	"resighting-export/internal/schema"
)

var (
	// ErrDocumentAlreadyFinalized indicates a write, finalize or abort after the
	// workbook was already finalized or aborted.
	ErrDocumentAlreadyFinalized = errors.New("document already finalized")

	// ErrInvalidDestination indicates a destination path without an .xlsx extension.
	ErrInvalidDestination = errors.New("invalid destination")
)

const (
	defaultSheetName        = "Resightings"
	defaultImageColumnWidth = 45
	defaultColumnWidth      = 12
	defaultRowHeight        = 30
	imagePaddingPoints      = 6
	maxRowHeight            = 409
	pointsPerPixel          = 0.75
)

// Options controls layout. Zero fields take the defaults above.
type Options struct {
	SheetName        string
	ImageColumnWidth float64
	ColumnWidth      float64
	DefaultRowHeight float64
}

// Cell is one rendered value bound for a schema column of the next row.
type Cell struct {
	Column  int
	Payload render.Payload
}

// Workbook is an in-memory export document. It is not safe for concurrent use.
type Workbook struct {
	file    *excelize.File
	schema  *schema.Schema
	opts    Options
	sheet   string
	nextRow int
	rows    int
	done    bool
}

// New creates a workbook with the header row, column widths and column style
// for s already applied.
func New(s *schema.Schema, opts Options) (*Workbook, error) {
	if s == nil {
		return nil, errors.New("schema is required")
	}
	opts = withDefaults(opts)

	f := excelize.NewFile()
	wb := &Workbook{file: f, schema: s, opts: opts, sheet: opts.SheetName, nextRow: 2}

	if err := f.SetSheetName(f.GetSheetName(0), wb.sheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	if err := wb.layoutColumns(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return wb, nil
}

func withDefaults(opts Options) Options {
	if opts.SheetName == "" {
		opts.SheetName = defaultSheetName
	}
	if opts.ImageColumnWidth <= 0 {
		opts.ImageColumnWidth = defaultImageColumnWidth
	}
	if opts.ColumnWidth <= 0 {
		opts.ColumnWidth = defaultColumnWidth
	}
	if opts.DefaultRowHeight <= 0 {
		opts.DefaultRowHeight = defaultRowHeight
	}
	return opts
}

func (w *Workbook) layoutColumns() error {
	style, err := w.file.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal:  "center",
			Vertical:    "center",
			WrapText:    true,
			ShrinkToFit: true,
		},
	})
	if err != nil {
		return fmt.Errorf("column style: %w", err)
	}
	header, err := w.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for _, field := range w.schema.Fields() {
		col, err := excelize.ColumnNumberToName(field.Column + 1)
		if err != nil {
			return err
		}
		width := w.opts.ColumnWidth
		if field.Kind == schema.KindImage {
			width = w.opts.ImageColumnWidth
		}
		if err := w.file.SetColWidth(w.sheet, col, col, width); err != nil {
			return fmt.Errorf("width column %s: %w", col, err)
		}
		if err := w.file.SetColStyle(w.sheet, col, style); err != nil {
			return fmt.Errorf("style column %s: %w", col, err)
		}
		cell := col + "1"
		if err := w.file.SetCellValue(w.sheet, cell, field.Name); err != nil {
			return fmt.Errorf("header %s: %w", cell, err)
		}
		if err := w.file.SetCellStyle(w.sheet, cell, cell, header); err != nil {
			return fmt.Errorf("header style %s: %w", cell, err)
		}
	}
	return nil
}

// AppendRow writes cells into the next data row and sizes the row to its
// tallest picture. It returns the 1-based spreadsheet row number.
func (w *Workbook) AppendRow(cells []Cell) (int, error) {
	if w.done {
		return 0, ErrDocumentAlreadyFinalized
	}
	row := w.nextRow

	height := w.opts.DefaultRowHeight
	for _, c := range cells {
		if c.Column < 0 || c.Column >= w.schema.Len() {
			return 0, fmt.Errorf("row %d: column %d outside schema %s", row, c.Column, w.schema.Version())
		}
		name, err := excelize.CoordinatesToCellName(c.Column+1, row)
		if err != nil {
			return 0, err
		}
		if img := c.Payload.Image; img != nil {
			if err := w.addPicture(name, img); err != nil {
				return 0, err
			}
			height = max(height, imageRowHeight(img.Height))
			continue
		}
		if err := w.file.SetCellValue(w.sheet, name, c.Payload.Value); err != nil {
			return 0, fmt.Errorf("set %s: %w", name, err)
		}
	}
	if err := w.file.SetRowHeight(w.sheet, row, height); err != nil {
		return 0, fmt.Errorf("row %d height: %w", row, err)
	}

	w.nextRow++
	w.rows++
	return row, nil
}

func (w *Workbook) addPicture(cell string, img *render.Image) error {
	err := w.file.AddPictureFromBytes(w.sheet, cell, &excelize.Picture{
		Extension: img.Extension(),
		File:      img.Data,
		Format: &excelize.GraphicOptions{
			OffsetX:         2,
			OffsetY:         2,
			LockAspectRatio: true,
		},
	})
	if err != nil {
		return fmt.Errorf("picture %s: %w", cell, err)
	}
	return nil
}

func imageRowHeight(px int) float64 {
	h := float64(px)*pointsPerPixel + imagePaddingPoints
	return min(h, maxRowHeight)
}

// Rows returns the number of data rows written.
func (w *Workbook) Rows() int { return w.rows }

// Sheet returns the worksheet name.
func (w *Workbook) Sheet() string { return w.sheet }
