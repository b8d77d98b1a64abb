package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"product-export/models"
)

// DetailWriter writes detail rows to a brand-new CSV file, one row per
// product, flushing every flushEvery rows. The header is written once at
// open; header state never leaves the writer.
type DetailWriter struct {
	file       *os.File
	writer     *csv.Writer
	flushEvery int
	pending    int
}

// NewDetailWriter creates the output file and writes the header row.
func NewDetailWriter(filename string, flushEvery int) (*DetailWriter, error) {
	if flushEvery <= 0 {
		flushEvery = 1
	}
	f, writer, err := createCSV(filename, models.DetailHeader())
	if err != nil {
		return nil, err
	}
	return &DetailWriter{
		file:       f,
		writer:     writer,
		flushEvery: flushEvery,
	}, nil
}

// Write appends one row, flushing when the pending count reaches the
// configured interval.
func (dw *DetailWriter) Write(row *models.DetailRow) error {
	if err := dw.writer.Write(row.Record()); err != nil {
		return fmt.Errorf("write csv record: %w", err)
	}
	dw.pending++
	if dw.pending >= dw.flushEvery {
		dw.writer.Flush()
		if err := dw.writer.Error(); err != nil {
			return fmt.Errorf("flush csv records: %w", err)
		}
		dw.pending = 0
	}
	return nil
}

// Close flushes and closes the file handle.
func (dw *DetailWriter) Close() error {
	dw.writer.Flush()
	if err := dw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return dw.file.Close()
}

// Validate ensures the file has content besides the header.
func (dw *DetailWriter) Validate() error {
	return validateFile(dw.file)
}

// SearchWriter writes search rows to a CSV file that is overwritten once at
// construction and appended to for the rest of the run, across all keywords
// and pages. The header is written exactly once, at open.
type SearchWriter struct {
	file   *os.File
	writer *csv.Writer
}

// NewSearchWriter truncates the output file and writes the header row.
func NewSearchWriter(filename string) (*SearchWriter, error) {
	f, writer, err := createCSV(filename, models.SearchHeader())
	if err != nil {
		return nil, err
	}
	return &SearchWriter{
		file:   f,
		writer: writer,
	}, nil
}

// Write appends a batch of rows and flushes them to disk.
func (sw *SearchWriter) Write(rows []*models.SearchRow) error {
	for _, row := range rows {
		if err := sw.writer.Write(row.Record()); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	sw.writer.Flush()
	if err := sw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close flushes and closes the file handle.
func (sw *SearchWriter) Close() error {
	sw.writer.Flush()
	if err := sw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return sw.file.Close()
}

// Validate ensures the file has content besides the header.
func (sw *SearchWriter) Validate() error {
	return validateFile(sw.file)
}

func createCSV(filename string, header []string) (*os.File, *csv.Writer, error) {
	if err := ensureDir(filename); err != nil {
		return nil, nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("create csv file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("flush csv header: %w", err)
	}
	return f, writer, nil
}

func validateFile(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat csv file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("csv file is empty")
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
