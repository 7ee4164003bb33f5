package output

import (
	"bytes"
	"fmt"

	"github.com/klauspost/pgzip"
	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"

	"github.com/gyeh/claimgen/internal/model"
)

func renderCSVGzip(t model.Table) ([]byte, error) {
	raw, err := renderCSV(t)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	zw := pgzip.NewWriter(&buf)
	zw.Name = t.Name + CSV.Ext()
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("gzip close: %w", err)
	}
	return buf.Bytes(), nil
}

func renderParquet(name string, ds *model.Dataset) ([]byte, error) {
	switch name {
	case model.TableEnrollment:
		rows := make([]model.EnrollmentParquet, len(ds.Enrollment))
		for i := range ds.Enrollment {
			rows[i] = ds.Enrollment[i].Parquet()
		}
		return encodeParquet(rows)
	case model.TableMedicalClaims:
		rows := make([]model.MedicalClaimParquet, len(ds.MedicalClaims))
		for i := range ds.MedicalClaims {
			rows[i] = ds.MedicalClaims[i].Parquet()
		}
		return encodeParquet(rows)
	case model.TablePharmacyClaims:
		rows := make([]model.PharmacyClaimParquet, len(ds.PharmacyClaims))
		for i := range ds.PharmacyClaims {
			rows[i] = ds.PharmacyClaims[i].Parquet()
		}
		return encodeParquet(rows)
	case model.TableSupplemental:
		rows := make([]model.SupplementalParquet, len(ds.Supplemental))
		for i := range ds.Supplemental {
			rows[i] = ds.Supplemental[i].Parquet()
		}
		return encodeParquet(rows)
	}
	return nil, fmt.Errorf("unknown table %q", name)
}

func encodeParquet[T any](rows []T) ([]byte, error) {
	var buf bytes.Buffer
	w := parquet.NewGenericWriter[T](&buf, parquet.Compression(&parquet.Snappy))
	if len(rows) > 0 {
		if _, err := w.Write(rows); err != nil {
			return nil, fmt.Errorf("write parquet rows: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

// renderWorkbook builds one sheet per table with a bold, frozen header row.
func renderWorkbook(tables []model.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", t.Name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", t.Name, err)
		}
		if err := writeSheet(f, t, header); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", t.Name, err)
		}
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, t model.Table, headerStyle int) error {
	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
		return fmt.Errorf("header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(t.Columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(t.Name, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for r, rec := range t.Records {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		row := make([]any, len(rec))
		for i, v := range rec {
			row[i] = v
		}
		if err := f.SetSheetRow(t.Name, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", r+1, err)
		}
	}

	return f.SetPanes(t.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
