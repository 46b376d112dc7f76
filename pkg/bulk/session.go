package bulk

import (
	"context"
	"fmt"
	"strings"
)

// Session executes statements on one server session and exposes the feedback
// the server left for the last statement. Implementations are not expected to
// be safe for concurrent use.
type Session interface {
	// Exec runs one statement. The returned value is opaque to the importer
	// and collected into Result.RawResults when non-nil.
	Exec(ctx context.Context, query string) (any, error)

	// LastInsertID returns the first id generated by the last Exec.
	LastInsertID(ctx context.Context) (int64, error)

	// AffectedRows returns the affected-row count of the last Exec.
	AffectedRows(ctx context.Context) (int64, error)

	// MaxPacketSize returns the largest statement the server accepts, in
	// bytes. 0 means unbounded.
	MaxPacketSize(ctx context.Context) (int, error)

	// BeginNested opens a transaction scope. Inside an ongoing transaction it
	// must behave like a savepoint so that the scope can be rolled back alone.
	BeginNested(ctx context.Context) (Scope, error)
}

// Scope is an all-or-nothing boundary opened by Session.BeginNested.
type Scope interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Dialect holds the server specific bits of statement assembly.
type Dialect struct {
	Name string

	// QueryOverhead is added to every statement size on top of prefix and
	// suffix.
	QueryOverhead int

	// IgnoreModifier is inserted after the leading INSERT keyword when
	// duplicates are ignored.
	IgnoreModifier string

	// UpsertKeyword introduces the conflict-update clause. Empty means the
	// dialect has no such clause.
	UpsertKeyword string
}

// MySQL is the dialect of MySQL and MariaDB servers.
var MySQL = Dialect{
	Name:           "mysql",
	QueryOverhead:  8,
	IgnoreModifier: "IGNORE",
	UpsertKeyword:  " ON DUPLICATE KEY UPDATE ",
}

const insertKeyword = "INSERT"

// withIgnore turns "INSERT INTO t ..." into "INSERT IGNORE INTO t ...".
func (d Dialect) withIgnore(prefix string) (string, error) {
	if d.IgnoreModifier == "" {
		return "", fmt.Errorf("%w: %s cannot ignore duplicates", ErrInvalidSpec, d.Name)
	}
	trimmed := strings.TrimLeft(prefix, " \t\r\n")
	if len(trimmed) < len(insertKeyword) || !strings.EqualFold(trimmed[:len(insertKeyword)], insertKeyword) {
		return "", fmt.Errorf("%w: ignore modifier needs an INSERT prefix", ErrInvalidSpec)
	}
	return trimmed[:len(insertKeyword)] + " " + d.IgnoreModifier + trimmed[len(insertKeyword):], nil
}

// withUpsert appends the conflict-update clause to suffix.
func (d Dialect) withUpsert(table, suffix string, spec UpsertSpec) (string, error) {
	if d.UpsertKeyword == "" {
		return "", fmt.Errorf("%w: %s has no upsert clause", ErrInvalidSpec, d.Name)
	}
	clause, err := BuildUpsertClause(table, spec)
	if err != nil {
		return "", err
	}
	return suffix + d.UpsertKeyword + clause, nil
}
