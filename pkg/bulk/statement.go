package bulk

import (
	"fmt"
	"strings"
)

// BuildStatement joins batch with commas and wraps it in prefix and suffix.
// Neither prefix nor suffix is inspected.
func BuildStatement(prefix, suffix string, batch Batch) string {
	var b strings.Builder
	b.Grow(BatchSize(batch, len(prefix)+len(suffix)))
	b.WriteString(prefix)
	for i, f := range batch {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(f)
	}
	b.WriteString(suffix)
	return b.String()
}

// UpsertSpec selects which columns are overwritten when an inserted row
// collides with an existing one. It is implemented by ColumnList,
// ColumnMapping and RawClause only.
type UpsertSpec interface {
	upsertSpec()
}

// ColumnList overwrites each listed column with the incoming value.
type ColumnList []string

// ColumnPair assigns the incoming value of Source to Target.
type ColumnPair struct {
	Target string
	Source string
}

// ColumnMapping overwrites Target columns with incoming values of Source
// columns, in slice order.
type ColumnMapping []ColumnPair

// RawClause is used verbatim as the body of the conflict-update clause.
type RawClause string

func (ColumnList) upsertSpec()    {}
func (ColumnMapping) upsertSpec() {}
func (RawClause) upsertSpec()     {}

// BuildUpsertClause renders spec as "table.col=VALUES(col),...".
// Column names are used as given; quoting is the caller's job.
func BuildUpsertClause(table string, spec UpsertSpec) (string, error) {
	parts := make([]string, 0, 8)
	switch s := spec.(type) {
	case ColumnList:
		for _, col := range s {
			parts = append(parts, fmt.Sprintf("%s.%s=VALUES(%s)", table, col, col))
		}
	case ColumnMapping:
		for _, p := range s {
			parts = append(parts, fmt.Sprintf("%s.%s=VALUES(%s)", table, p.Target, p.Source))
		}
	case RawClause:
		if s == "" {
			return "", fmt.Errorf("%w: empty raw upsert clause", ErrInvalidSpec)
		}
		return string(s), nil
	default:
		return "", fmt.Errorf("%w: unsupported upsert spec %T", ErrInvalidSpec, spec)
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("%w: upsert spec names no columns", ErrInvalidSpec)
	}
	return strings.Join(parts, ","), nil
}
