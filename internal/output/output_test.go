package output

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/pgzip"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/gyeh/claimgen/internal/catalog"
	"github.com/gyeh/claimgen/internal/codemap"
	"github.com/gyeh/claimgen/internal/model"
	"github.com/gyeh/claimgen/internal/synth"
)

func generate(t *testing.T, seed int64) *model.Dataset {
	t.Helper()
	cat, err := catalog.Load("../../testdata/scenarios.json")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	opts := synth.DefaultOptions()
	opts.Members = 60
	opts.Seed = seed
	g, err := synth.New(opts, cat, codemap.Default(), zerolog.Nop())
	if err != nil {
		t.Fatalf("synth.New: %v", err)
	}
	res, err := g.Run(nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res.Dataset
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"csv", "CSV", " csv.gz ", "parquet", "xlsx"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q): %v", s, err)
		}
	}
	if _, err := ParseFormat("json"); err == nil {
		t.Error("expected error for json")
	}
}

func TestWriteAll_CSV(t *testing.T) {
	ds := generate(t, 1)
	dir := t.TempDir()

	paths, err := WriteAll(dir, CSV, ds)
	if err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if len(paths) != 4 {
		t.Fatalf("expected 4 files, got %v", paths)
	}

	counts := ds.RowCounts()
	for _, tbl := range ds.Tables() {
		data, err := os.ReadFile(filepath.Join(dir, tbl.Name+".csv"))
		if err != nil {
			t.Fatalf("read %s: %v", tbl.Name, err)
		}
		if !bytes.Contains(data, []byte("\r\n")) {
			t.Errorf("%s: expected CRLF line endings", tbl.Name)
		}
		recs, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
		if err != nil {
			t.Fatalf("parse %s: %v", tbl.Name, err)
		}
		if strings.Join(recs[0], ",") != strings.Join(tbl.Columns, ",") {
			t.Errorf("%s: header %v", tbl.Name, recs[0])
		}
		if int64(len(recs)-1) != counts[tbl.Name] {
			t.Errorf("%s: %d data rows, want %d", tbl.Name, len(recs)-1, counts[tbl.Name])
		}
	}

	data, _ := os.ReadFile(filepath.Join(dir, "enrollment.csv"))
	first := strings.SplitN(string(data), "\r\n", 2)[0]
	if first != "MemberID,Gender,DOB,PlanID,EnrollmentStart,EnrollmentEnd,MetalLevel,Market" {
		t.Errorf("enrollment header = %q", first)
	}
}

func TestWriteAll_SameSeedSameBytes(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	if _, err := WriteAll(a, CSV, generate(t, 5)); err != nil {
		t.Fatal(err)
	}
	if _, err := WriteAll(b, CSV, generate(t, 5)); err != nil {
		t.Fatal(err)
	}
	for _, name := range model.TableNames {
		x, _ := os.ReadFile(filepath.Join(a, name+".csv"))
		y, _ := os.ReadFile(filepath.Join(b, name+".csv"))
		if !bytes.Equal(x, y) {
			t.Errorf("%s differs between runs with the same seed", name)
		}
	}
}

func TestWriteAll_CSVGzip(t *testing.T) {
	ds := generate(t, 2)
	dir := t.TempDir()
	if _, err := WriteAll(dir, CSVGzip, ds); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	want, err := renderCSV(ds.Tables()[1])
	if err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(dir, "medicalclaims.csv.gz"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zr, err := pgzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	got, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Error("decompressed table does not match plain CSV")
	}
}

func TestWriteAll_Parquet(t *testing.T) {
	ds := generate(t, 3)
	dir := t.TempDir()
	if _, err := WriteAll(dir, Parquet, ds); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}

	rows, err := parquet.ReadFile[model.MedicalClaimParquet](filepath.Join(dir, "medicalclaims.parquet"))
	if err != nil {
		t.Fatalf("read parquet: %v", err)
	}
	if len(rows) != len(ds.MedicalClaims) {
		t.Fatalf("%d rows, want %d", len(rows), len(ds.MedicalClaims))
	}
	for i := range rows {
		mc, err := rows[i].MedicalClaim()
		if err != nil {
			t.Fatalf("row %d: %v", i, err)
		}
		got, want := strings.Join(mc.Record(), ","), strings.Join(ds.MedicalClaims[i].Record(), ",")
		if got != want {
			t.Fatalf("row %d: %s != %s", i, got, want)
		}
	}
}

func TestWriteAll_EmptyTables(t *testing.T) {
	ds := &model.Dataset{}
	dir := t.TempDir()
	if _, err := WriteAll(dir, Parquet, ds); err != nil {
		t.Fatalf("parquet: %v", err)
	}
	if _, err := WriteAll(dir, CSV, ds); err != nil {
		t.Fatalf("csv: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "supplemental.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "MemberID,ClaimID,DX,AddDeleteFlag\r\n" {
		t.Errorf("empty table = %q", data)
	}
}

func TestWriteAll_XLSX(t *testing.T) {
	ds := generate(t, 4)
	dir := t.TempDir()
	paths, err := WriteAll(dir, XLSX, ds)
	if err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != WorkbookName {
		t.Fatalf("paths = %v", paths)
	}

	f, err := excelize.OpenFile(paths[0])
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); strings.Join(got, ",") != strings.Join(model.TableNames, ",") {
		t.Errorf("sheets = %v", got)
	}
	rows, err := f.GetRows(model.TableEnrollment)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != len(ds.Enrollment)+1 {
		t.Errorf("enrollment sheet has %d rows, want %d", len(rows), len(ds.Enrollment)+1)
	}
	if rows[1][0] != ds.Enrollment[0].MemberID {
		t.Errorf("first member = %q", rows[1][0])
	}
}

func TestWriteAll_UnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := WriteAll(filepath.Join(blocker, "out"), CSV, &model.Dataset{}); err == nil {
		t.Error("expected error writing under a regular file")
	}
}

func TestTablePaths_MatchWriteAll(t *testing.T) {
	ds := generate(t, 4)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "enrollment.csv"), []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, f := range []Format{Parquet, XLSX} {
		written, err := WriteAll(dir, f, ds)
		if err != nil {
			t.Fatalf("%s: WriteAll: %v", f, err)
		}
		listed := TablePaths(dir, f)
		if strings.Join(listed, "|") != strings.Join(written, "|") {
			t.Errorf("%s: TablePaths = %v, WriteAll wrote %v", f, listed, written)
		}
		for _, p := range listed {
			if filepath.Base(p) == "enrollment.csv" {
				t.Errorf("%s: stale file listed", f)
			}
		}
	}
}
