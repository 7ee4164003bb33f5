package parquetread

import (
	"fmt"
	"io"

	"github.com/gyeh/claimgen/internal/model"
	"github.com/gyeh/claimgen/internal/output"
)

const readBatchSize = 1024

// TableFile describes one Parquet table file in an output directory.
type TableFile struct {
	Table   string
	Path    string
	NumRows int64
}

// Inspect opens each of the four table files in dir, validates its schema,
// and reports its row count.
func Inspect(dir string) ([]TableFile, error) {
	files := make([]TableFile, 0, len(model.TableNames))
	for _, name := range model.TableNames {
		path := output.TablePath(dir, output.Parquet, name)
		var (
			n   int64
			err error
		)
		switch name {
		case model.TableEnrollment:
			n, err = inspect[model.EnrollmentParquet](name, path)
		case model.TableMedicalClaims:
			n, err = inspect[model.MedicalClaimParquet](name, path)
		case model.TablePharmacyClaims:
			n, err = inspect[model.PharmacyClaimParquet](name, path)
		case model.TableSupplemental:
			n, err = inspect[model.SupplementalParquet](name, path)
		}
		if err != nil {
			return nil, err
		}
		files = append(files, TableFile{Table: name, Path: path, NumRows: n})
	}
	return files, nil
}

func inspect[T any](table, path string) (int64, error) {
	r, err := Open[T](path)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", table, err)
	}
	defer r.Close()
	if err := ValidateSchema(table, r.Schema()); err != nil {
		return 0, err
	}
	return r.NumRows(), nil
}

// ReadDataset reads the four Parquet tables in dir back into a Dataset and
// checks its cross-table invariants.
func ReadDataset(dir string) (*model.Dataset, error) {
	var (
		ds  model.Dataset
		err error
	)
	path := func(name string) string { return output.TablePath(dir, output.Parquet, name) }

	if ds.Enrollment, err = ReadTable(model.TableEnrollment, path(model.TableEnrollment),
		(*model.EnrollmentParquet).Enrollment); err != nil {
		return nil, err
	}
	if ds.MedicalClaims, err = ReadTable(model.TableMedicalClaims, path(model.TableMedicalClaims),
		(*model.MedicalClaimParquet).MedicalClaim); err != nil {
		return nil, err
	}
	if ds.PharmacyClaims, err = ReadTable(model.TablePharmacyClaims, path(model.TablePharmacyClaims),
		(*model.PharmacyClaimParquet).PharmacyClaim); err != nil {
		return nil, err
	}
	if ds.Supplemental, err = ReadTable(model.TableSupplemental, path(model.TableSupplemental),
		(*model.SupplementalParquet).Supplemental); err != nil {
		return nil, err
	}

	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("dataset in %s: %w", dir, err)
	}
	return &ds, nil
}

// ReadTable streams every row of a Parquet table file, converting each with
// convert. Conversion errors carry the 1-based row number.
func ReadTable[P any, R any](table, path string, convert func(*P) (R, error)) ([]R, error) {
	r, err := Open[P](path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", table, err)
	}
	defer r.Close()

	if err := ValidateSchema(table, r.Schema()); err != nil {
		return nil, err
	}

	out := make([]R, 0, r.NumRows())
	buf := make([]P, readBatchSize)
	var rowNum int64
	for {
		n, readErr := r.Read(buf)
		for i := 0; i < n; i++ {
			rowNum++
			row, err := convert(&buf[i])
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", table, rowNum, err)
			}
			out = append(out, row)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("%s at row %d: %w", table, rowNum, readErr)
		}
	}
	return out, nil
}
