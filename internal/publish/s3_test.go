package publish

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
	failOn  string
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	key := aws.ToString(in.Key)
	if key == f.failOn {
		return nil, errors.New("access denied")
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+key] = data
	f.types[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func newFake() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func writeFiles(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("data:"+n), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestUploadFiles(t *testing.T) {
	dir := writeFiles(t, "medicalclaims.csv", "enrollment.csv")
	fake := newFake()
	u := NewWithClient(fake, "bucket", zerolog.Nop())

	paths := []string{filepath.Join(dir, "enrollment.csv"), filepath.Join(dir, "medicalclaims.csv")}
	keys, err := u.UploadFiles(context.Background(), paths, "/runs/seed-0/")
	if err != nil {
		t.Fatalf("UploadFiles: %v", err)
	}
	want := []string{"runs/seed-0/enrollment.csv", "runs/seed-0/medicalclaims.csv"}
	if len(keys) != len(want) || keys[0] != want[0] || keys[1] != want[1] {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	if got := string(fake.objects["bucket/runs/seed-0/enrollment.csv"]); got != "data:enrollment.csv" {
		t.Errorf("uploaded body = %q", got)
	}
	if fake.types[want[0]] != "text/csv" {
		t.Errorf("content type = %q", fake.types[want[0]])
	}
}

func TestUploadFiles_SkipsUnlistedFiles(t *testing.T) {
	dir := writeFiles(t, "enrollment.csv", "README.md",
		"enrollment.parquet", "medicalclaims.parquet", "pharmacyclaims.parquet", "supplemental.parquet")
	fake := newFake()
	u := NewWithClient(fake, "bucket", zerolog.Nop())

	var paths []string
	for _, name := range []string{"enrollment", "medicalclaims", "pharmacyclaims", "supplemental"} {
		paths = append(paths, filepath.Join(dir, name+".parquet"))
	}
	keys, err := u.UploadFiles(context.Background(), paths, "run")
	if err != nil {
		t.Fatalf("UploadFiles: %v", err)
	}
	if len(keys) != 4 || len(fake.objects) != 4 {
		t.Fatalf("keys = %v, objects = %d", keys, len(fake.objects))
	}
	for _, stale := range []string{"bucket/run/enrollment.csv", "bucket/run/README.md"} {
		if _, ok := fake.objects[stale]; ok {
			t.Errorf("%s was uploaded", stale)
		}
	}
}

func TestUploadFiles_MissingFile(t *testing.T) {
	dir := writeFiles(t, "enrollment.csv")
	fake := newFake()
	u := NewWithClient(fake, "bucket", zerolog.Nop())

	paths := []string{filepath.Join(dir, "enrollment.csv"), filepath.Join(dir, "medicalclaims.csv")}
	if _, err := u.UploadFiles(context.Background(), paths, ""); err == nil {
		t.Fatal("expected error for missing file")
	}
	if len(fake.objects) != 0 {
		t.Errorf("uploaded %d objects before failing", len(fake.objects))
	}
	if _, err := u.UploadFiles(context.Background(), []string{filepath.Join(dir, "nested")}, ""); err == nil {
		t.Error("expected error for a directory")
	}
}

func TestUploadFiles_Error(t *testing.T) {
	dir := writeFiles(t, "a.parquet", "b.parquet")
	fake := newFake()
	fake.failOn = "b.parquet"
	u := NewWithClient(fake, "bucket", zerolog.Nop())

	paths := []string{filepath.Join(dir, "a.parquet"), filepath.Join(dir, "b.parquet")}
	keys, err := u.UploadFiles(context.Background(), paths, "")
	if err == nil {
		t.Fatal("expected upload error")
	}
	if len(keys) != 1 || keys[0] != "a.parquet" {
		t.Errorf("keys before failure = %v", keys)
	}
}

func TestContentType(t *testing.T) {
	cases := map[string]string{
		"x.csv":     "text/csv",
		"x.csv.gz":  "application/gzip",
		"x.parquet": "application/vnd.apache.parquet",
		"x.xlsx":    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"x.bin":     "application/octet-stream",
	}
	for name, want := range cases {
		if got := ContentType(name); got != want {
			t.Errorf("ContentType(%s) = %s, want %s", name, got, want)
		}
	}
}
