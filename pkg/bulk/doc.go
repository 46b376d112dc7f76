// Package bulk inserts many rows into one table through a single logical
// operation.
//
// Rows arrive as already serialized value tuples (RowFragment). The package
// splits them into statements that never exceed the server's maximum packet
// size, runs those statements atomically inside one transaction scope and
// rebuilds the list of auto-increment ids the server generated, although the
// server only reports the first id and an affected-row count per statement.
//
// The pieces are:
//
//	Pack               greedy byte-budget packing of fragments into batches
//	BuildStatement     prefix + "f1,f2,..." + suffix
//	BuildUpsertClause  ON DUPLICATE KEY UPDATE body from an UpsertSpec
//	Reconstruct        contiguous id range from (first id, rows, affected)
//	Importer           orchestration on top of a Session collaborator
//
// # Generated ids
//
// Reconstruct assumes that every row of one statement received a consecutive
// id attributed to the session that ran it. For MySQL/InnoDB this holds with
// innodb_autoinc_lock_mode 0 or 1 ("traditional" and "consecutive"). Under
// mode 2 ("interleaved") concurrent sessions may interleave allocations and
// the reconstructed ids can be wrong; the importer cannot detect every such
// case, it only fails on feedback that is arithmetically impossible.
//
// It also assumes that an inserted row counts 1 and an upserted row counts 2
// in the affected-row count. Rows skipped by INSERT IGNORE count 0, so ids are
// not reconstructed when Options.IgnoreDuplicates is set. An upsert that sets
// a row to its current values counts 0 as well, which breaks the arithmetic;
// imports that may rewrite identical rows should set Options.SkipGeneratedIDs.
//
// # Concurrency
//
// An Importer and its Session serve one import at a time. Batches run strictly
// in order and the feedback of a statement is read before the next statement
// is sent.
package bulk
