package bulk

// RowFragment is one serialized value tuple, e.g. "(1,'a')".
// Its byte length is len(fragment).
type RowFragment = string

// Batch is a contiguous, ordered run of fragments sent as one statement.
type Batch []RowFragment

// Request describes one import.
//
// Prefix and Suffix are opaque: "INSERT INTO t (a,b) VALUES " and "" for
// instance. Table is only used to qualify columns of the upsert clause.
type Request struct {
	Table     string
	Prefix    string
	Suffix    string
	Fragments []RowFragment
	Options   Options
}

// Options tune a single import.
type Options struct {
	// ForceSingleStatement sends all fragments in one statement regardless
	// of the packet budget.
	ForceSingleStatement bool

	// IgnoreDuplicates adds the dialect's ignore modifier to the prefix.
	// Generated ids are not reconstructed in this mode.
	IgnoreDuplicates bool

	// Upsert enables the conflict-update clause. Mutually exclusive with
	// IgnoreDuplicates.
	Upsert UpsertSpec

	// SkipGeneratedIDs disables id reconstruction, for tables without an
	// auto-increment key.
	SkipGeneratedIDs bool
}

// Result of a successful import.
type Result struct {
	// FailedInstances is always empty: failures surface as an error.
	FailedInstances []any

	StatementsExecuted int

	// GeneratedIDs holds the ids of newly inserted rows in insertion order.
	GeneratedIDs []int64

	// RawResults collects whatever Session.Exec returned, one per statement.
	RawResults []any
}
