package logging

// Field names shared by every component so import runs can be filtered
// by file, run or row.
const (
	FieldFile        = "file_path"
	FieldRunID       = "run_id"
	FieldRow         = "row"
	FieldField       = "field"
	FieldCategory    = "category"
	FieldProfile     = "profile"
	FieldEncoding    = "encoding"
	FieldReason      = "reason"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
	FieldCount       = "count"
	FieldImported    = "imported"
	FieldDuplicates  = "duplicates"
	FieldErrors      = "errors"
	FieldFiltered    = "filtered"
	FieldWriteErrors = "write_errors"
	FieldMapping     = "mapping"
	FieldDatabase    = "database"
)
