package model

import "time"

// GenerateSummary captures metrics from a single generation run.
type GenerateSummary struct {
	Seed                 int64
	Members              int
	Years                []int
	Scenarios            int
	CatalogSHA256        string
	MemberYears          int64
	MemberYearsWithClaim int64
	RowsByTable          map[string]int64
	DurationGenerate     time.Duration
	DurationWrite        time.Duration
	DurationTotal        time.Duration
}

// LoadSummary captures metrics from loading one output directory into Postgres.
type LoadSummary struct {
	Dir           string
	DatasetSHA256 string
	LoadBatchID   string
	AlreadyLoaded bool
	RowsRead      map[string]int64
	RowsCopied    map[string]int64
	DurationRead  time.Duration
	DurationCopy  time.Duration
	DurationTotal time.Duration
}
