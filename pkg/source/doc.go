// Package source reads tabular input files for bulk import.
//
// Supported formats are CSV (any delimiter) and XLSX, each optionally
// compressed with zstd (".csv.zst", ".xlsx.zst"). The first row holds the
// column headers in the form
//
//	name (TYPE) *
//
// where the type is optional and defaults to TEXT, and a trailing "*" marks
// a key column. Key columns become the conflict keys of the replace
// strategy. Cells are converted to Go values according to the column type,
// so that the adapters render them as typed SQL literals.
package source
