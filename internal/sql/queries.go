package sql

import (
	"embed"
)

//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/register_batch.sql
var RegisterBatch string

//go:embed queries/lookup_loaded_batch.sql
var LookupLoadedBatch string

//go:embed queries/complete_batch.sql
var CompleteBatch string

//go:embed queries/delete_batch.sql
var DeleteBatch string

//go:embed queries/analyze_claims.sql
var AnalyzeClaims string

//go:embed queries/count_batch_rows.sql
var CountBatchRows string
