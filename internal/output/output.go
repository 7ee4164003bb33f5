// Package output writes a generated dataset as four table files.
package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gyeh/claimgen/internal/model"
)

// Format selects the on-disk table encoding.
type Format string

const (
	CSV     Format = "csv"
	CSVGzip Format = "csv.gz"
	Parquet Format = "parquet"
	XLSX    Format = "xlsx"
)

// Formats lists every supported format.
var Formats = []Format{CSV, CSVGzip, Parquet, XLSX}

// WorkbookName is the single file written in XLSX format.
const WorkbookName = "claims.xlsx"

// ParseFormat resolves a --format value.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	names := make([]string, len(Formats))
	for i, known := range Formats {
		names[i] = string(known)
	}
	return "", fmt.Errorf("unknown format %q (want one of %s)", s, strings.Join(names, ", "))
}

// Ext is the file extension for per-table formats.
func (f Format) Ext() string {
	return "." + string(f)
}

// TablePath is where table name is written in dir for format f.
func TablePath(dir string, f Format, name string) string {
	if f == XLSX {
		return filepath.Join(dir, WorkbookName)
	}
	return filepath.Join(dir, name+f.Ext())
}

// TablePaths lists the files WriteAll produces in dir for format f, in
// table order.
func TablePaths(dir string, f Format) []string {
	if f == XLSX {
		return []string{TablePath(dir, f, "")}
	}
	paths := make([]string, len(model.TableNames))
	for i, name := range model.TableNames {
		paths[i] = TablePath(dir, f, name)
	}
	return paths
}

// WriteAll writes every table of ds into dir, creating dir if needed, and
// returns the paths written. Each file is rendered fully in memory and then
// written in a single create-write-close.
func WriteAll(dir string, format Format, ds *model.Dataset) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	if format == XLSX {
		data, err := renderWorkbook(ds.Tables())
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", WorkbookName, err)
		}
		path := TablePath(dir, format, "")
		if err := writeFile(path, data); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	var paths []string
	for _, t := range ds.Tables() {
		var (
			data []byte
			err  error
		)
		switch format {
		case CSV:
			data, err = renderCSV(t)
		case CSVGzip:
			data, err = renderCSVGzip(t)
		case Parquet:
			data, err = renderParquet(t.Name, ds)
		default:
			return nil, fmt.Errorf("unknown format %q", format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", t.Name, err)
		}
		path := TablePath(dir, format, t.Name)
		if err := writeFile(path, data); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// renderCSV writes a header plus one record per row, CRLF-terminated.
func renderCSV(t model.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	if err := w.Write(t.Columns); err != nil {
		return nil, err
	}
	if err := w.WriteAll(t.Records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
