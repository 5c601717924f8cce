package document

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"resighting-export/internal/render"
	"resighting-export/internal/schema"
)

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New("test", []schema.Field{
		{Name: "TagImage", Column: 0, Kind: schema.KindImage},
		{Name: "AnimalType", Column: 1, Kind: schema.KindText},
		{Name: "Timestamp", Column: 2, Kind: schema.KindTimestampEpoch},
	})
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}
	return s
}

func testImage(t *testing.T, w, h int) *render.Image {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return &render.Image{Data: buf.Bytes(), Format: "png", Width: w, Height: h}
}

func openResult(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestWorkbookLayout(t *testing.T) {
	wb, err := New(testSchema(t), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	row, err := wb.AppendRow([]Cell{
		{Column: 0, Payload: render.Payload{Image: testImage(t, 300, 200)}},
		{Column: 1, Payload: render.Payload{Value: "Harbor seal"}},
		{Column: 2, Payload: render.Payload{Value: "11/14/2023 22:13:20"}},
	})
	if err != nil || row != 2 {
		t.Fatalf("AppendRow = %d, %v", row, err)
	}
	row, err = wb.AppendRow([]Cell{{Column: 1, Payload: render.Payload{Value: "Sea lion"}}})
	if err != nil || row != 3 {
		t.Fatalf("AppendRow = %d, %v", row, err)
	}

	dest := filepath.Join(t.TempDir(), "out", "resightings.xlsx")
	if err := wb.Finalize(dest); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if wb.Rows() != 2 {
		t.Fatalf("Rows = %d", wb.Rows())
	}

	f := openResult(t, dest)
	sheet := wb.Sheet()
	for cell, want := range map[string]string{
		"A1": "TagImage", "B1": "AnimalType", "C1": "Timestamp",
		"A2": "", "B2": "Harbor seal", "C2": "11/14/2023 22:13:20",
		"B3": "Sea lion", "C3": "",
	} {
		got, err := f.GetCellValue(sheet, cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", cell, err)
		}
		if got != want {
			t.Fatalf("%s = %q, want %q", cell, got, want)
		}
	}

	if w, _ := f.GetColWidth(sheet, "A"); w != defaultImageColumnWidth {
		t.Fatalf("image column width = %v", w)
	}
	if w, _ := f.GetColWidth(sheet, "B"); w != defaultColumnWidth {
		t.Fatalf("text column width = %v", w)
	}
	if h, _ := f.GetRowHeight(sheet, 2); h != 200*pointsPerPixel+imagePaddingPoints {
		t.Fatalf("image row height = %v", h)
	}
	if h, _ := f.GetRowHeight(sheet, 3); h != defaultRowHeight {
		t.Fatalf("plain row height = %v", h)
	}

	pics, err := f.GetPictures(sheet, "A2")
	if err != nil {
		t.Fatalf("GetPictures: %v", err)
	}
	if len(pics) != 1 || pics[0].Extension != ".png" {
		t.Fatalf("pictures at A2 = %d", len(pics))
	}
}

func TestRowHeightFollowsTallestImage(t *testing.T) {
	s, err := schema.New("two", []schema.Field{
		{Name: "SituationImage", Column: 0, Kind: schema.KindImage},
		{Name: "TagImage", Column: 1, Kind: schema.KindImage},
	})
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}
	wb, err := New(s, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := wb.AppendRow([]Cell{
		{Column: 0, Payload: render.Payload{Image: testImage(t, 300, 100)}},
		{Column: 1, Payload: render.Payload{Image: testImage(t, 150, 300)}},
	}); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	dest := filepath.Join(t.TempDir(), "tall.xlsx")
	if err := wb.Finalize(dest); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if h, _ := openResult(t, dest).GetRowHeight(wb.Sheet(), 2); h != 300*pointsPerPixel+imagePaddingPoints {
		t.Fatalf("row height = %v", h)
	}
}

func TestFinalizeOnce(t *testing.T) {
	wb, err := New(testSchema(t), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	dir := t.TempDir()
	dest := filepath.Join(dir, "once.xlsx")
	if err := wb.Finalize(dest); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if err := wb.Finalize(dest); !errors.Is(err, ErrDocumentAlreadyFinalized) {
		t.Fatalf("second Finalize error = %v", err)
	}
	if _, err := wb.AppendRow(nil); !errors.Is(err, ErrDocumentAlreadyFinalized) {
		t.Fatalf("AppendRow after Finalize error = %v", err)
	}
	if err := wb.Abort(); !errors.Is(err, ErrDocumentAlreadyFinalized) {
		t.Fatalf("Abort after Finalize error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "once.xlsx" {
		t.Fatalf("unexpected files: %v", entries)
	}
}

func TestFinalizeRejectsNonXLSX(t *testing.T) {
	wb, err := New(testSchema(t), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer wb.Abort()

	dest := filepath.Join(t.TempDir(), "out.csv")
	if err := wb.Finalize(dest); !errors.Is(err, ErrInvalidDestination) {
		t.Fatalf("Finalize error = %v", err)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("destination should not exist: %v", err)
	}
}

func TestAbortWritesNothing(t *testing.T) {
	wb, err := New(testSchema(t), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := wb.AppendRow([]Cell{{Column: 1, Payload: render.Payload{Value: "x"}}}); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	if err := wb.Abort(); err != nil {
		t.Fatalf("Abort: %v", err)
	}
	dest := filepath.Join(t.TempDir(), "aborted.xlsx")
	if err := wb.Finalize(dest); !errors.Is(err, ErrDocumentAlreadyFinalized) {
		t.Fatalf("Finalize after Abort error = %v", err)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("destination should not exist: %v", err)
	}
}

func TestAppendRowRejectsUnknownColumn(t *testing.T) {
	wb, err := New(testSchema(t), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer wb.Abort()
	if _, err := wb.AppendRow([]Cell{{Column: 3}}); err == nil {
		t.Fatalf("expected error for column outside schema")
	}
}
