package exitcode

const (
	Success         = 0
	UsageError      = 1
	CatalogError    = 2
	WriteError      = 3
	ValidationError = 4
	DBConnError     = 5
	CopyError       = 6
	PublishError    = 7
)
