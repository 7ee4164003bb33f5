package parquetread

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/claimgen/internal/model"
)

// ValidateSchema checks that the Parquet schema carries every column the
// named table requires.
func ValidateSchema(table string, schema *parquet.Schema) error {
	required, ok := model.RequiredParquetColumns[table]
	if !ok {
		return fmt.Errorf("unknown table %q", table)
	}

	columns := make(map[string]bool)
	for _, field := range schema.Fields() {
		columns[strings.ToLower(field.Name())] = true
	}

	var missing []string
	for _, col := range required {
		if !columns[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: missing required columns: %s", table, strings.Join(missing, ", "))
	}
	return nil
}
