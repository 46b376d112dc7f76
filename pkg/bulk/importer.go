package bulk

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/zeebo/xxh3"
)

// Importer runs imports on one Session.
type Importer struct {
	session Session
	dialect Dialect
	logger  zerolog.Logger

	// maxPacket caches Session.MaxPacketSize for the lifetime of the importer.
	maxPacket       int
	maxPacketLoaded bool
}

// Option configures an Importer.
type Option func(*Importer)

// WithDialect replaces the default MySQL dialect.
func WithDialect(d Dialect) Option {
	return func(im *Importer) {
		im.dialect = d
	}
}

// WithLogger sets the logger used for per-statement debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(im *Importer) {
		im.logger = l
	}
}

// WithMaxPacketSize pins the packet budget instead of asking the session.
// Non-positive values are ignored.
func WithMaxPacketSize(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.maxPacket = n
			im.maxPacketLoaded = true
		}
	}
}

// NewImporter creates an Importer on top of session.
func NewImporter(session Session, opts ...Option) *Importer {
	im := &Importer{
		session: session,
		dialect: MySQL,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Import inserts req.Fragments into the database.
//
// When everything fits into one statement (or the budget is unbounded, or
// ForceSingleStatement is set) a single statement is sent. Otherwise the
// fragments are packed into batches. Batches, and a single statement whose
// ids are reconstructed, run inside one scope from Session.BeginNested; a
// failure of any statement or of its feedback rolls back the whole import.
//
// On error the result is nil: there is no partial success.
func (im *Importer) Import(ctx context.Context, req Request) (*Result, error) {
	if len(req.Fragments) == 0 {
		return nil, fmt.Errorf("%w: no rows to import", ErrInvalidSpec)
	}
	prefix, suffix, err := im.statementParts(req)
	if err != nil {
		return nil, err
	}

	maxBytes, err := im.maxPacketSize(ctx)
	if err != nil {
		return nil, fmt.Errorf("bulk: max packet size: %w", err)
	}
	budget := SizeBudget{
		ReservedOverhead: len(prefix) + len(suffix) + im.dialect.QueryOverhead,
		MaxBytes:         maxBytes,
	}

	imp := &importRun{
		Importer: im,
		prefix:   prefix,
		suffix:   suffix,
		trackIDs: !req.Options.IgnoreDuplicates && !req.Options.SkipGeneratedIDs,
		result:   &Result{},
		log: im.logger.With().
			Str("table", req.Table).
			Int("max_packet", maxBytes).
			Logger(),
	}
	start := time.Now()

	if req.Options.ForceSingleStatement || budget.Fits(Batch(req.Fragments)) {
		if err := imp.execSingle(ctx, Batch(req.Fragments)); err != nil {
			return nil, err
		}
	} else if err := imp.execBatches(ctx, budget, Pack(req.Fragments, budget)); err != nil {
		return nil, err
	}

	imp.log.Info().
		Int("rows", len(req.Fragments)).
		Int("statements", imp.result.StatementsExecuted).
		Int("generated_ids", len(imp.result.GeneratedIDs)).
		Dur("elapsed", time.Since(start)).
		Msg("bulk import done")
	return imp.result, nil
}

func (im *Importer) statementParts(req Request) (prefix, suffix string, err error) {
	prefix, suffix = req.Prefix, req.Suffix
	if req.Options.IgnoreDuplicates && req.Options.Upsert != nil {
		return "", "", fmt.Errorf("%w: ignore duplicates and upsert are mutually exclusive", ErrInvalidSpec)
	}
	if req.Options.IgnoreDuplicates {
		if prefix, err = im.dialect.withIgnore(prefix); err != nil {
			return "", "", err
		}
	}
	if req.Options.Upsert != nil {
		if suffix, err = im.dialect.withUpsert(req.Table, suffix, req.Options.Upsert); err != nil {
			return "", "", err
		}
	}
	return prefix, suffix, nil
}

func (im *Importer) maxPacketSize(ctx context.Context) (int, error) {
	if im.maxPacketLoaded {
		return im.maxPacket, nil
	}
	n, err := im.session.MaxPacketSize(ctx)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative max packet size %d", ErrInconsistentFeedback, n)
	}
	im.maxPacket, im.maxPacketLoaded = n, true
	return n, nil
}

// importRun carries the state of one Import call.
type importRun struct {
	*Importer
	prefix   string
	suffix   string
	trackIDs bool
	result   *Result
	log      zerolog.Logger
}

// execSingle sends all rows as one statement. The statement is atomic on its
// own, but when ids are tracked the feedback is read afterwards and may turn
// out inconsistent, so the statement then runs inside a scope as well.
func (r *importRun) execSingle(ctx context.Context, batch Batch) error {
	if !r.trackIDs {
		return r.exec(ctx, batch)
	}
	return r.inScope(ctx, func() error {
		return r.exec(ctx, batch)
	})
}

func (r *importRun) execBatches(ctx context.Context, budget SizeBudget, batches []Batch) error {
	row := 0
	for _, b := range batches {
		if !budget.Fits(b) {
			return fmt.Errorf("%w: row %d needs %d bytes, limit is %d",
				ErrPackingInfeasible, row+1, BatchSize(b, budget.ReservedOverhead), budget.MaxBytes)
		}
		row += len(b)
	}

	r.log.Debug().Int("batches", len(batches)).Msg("bulk import split into batches")
	return r.inScope(ctx, func() error {
		for _, b := range batches {
			if err := r.exec(ctx, b); err != nil {
				return err
			}
		}
		return nil
	})
}

// inScope runs fn inside one Session.BeginNested scope. Any error or panic
// from fn rolls the scope back.
func (r *importRun) inScope(ctx context.Context, fn func() error) (err error) {
	scope, err := r.session.BeginNested(ctx)
	if err != nil {
		return fmt.Errorf("bulk: begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = scope.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
		if err != nil {
			if rbErr := scope.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
				err = errors.Join(err, fmt.Errorf("bulk: rollback: %w", rbErr))
			}
		}
	}()

	if err = fn(); err != nil {
		return err
	}
	if err = scope.Commit(ctx); err != nil {
		return fmt.Errorf("bulk: commit: %w", err)
	}
	return nil
}

// exec sends one statement and consumes its feedback before returning.
func (r *importRun) exec(ctx context.Context, batch Batch) error {
	n := r.result.StatementsExecuted + 1
	stmt := BuildStatement(r.prefix, r.suffix, batch)

	r.log.Debug().
		Int("statement", n).
		Int("rows", len(batch)).
		Int("bytes", len(stmt)).
		Str("stmt_hash", strconv.FormatUint(xxh3.HashString(stmt), 16)).
		Msg("executing bulk insert")

	raw, err := r.session.Exec(ctx, stmt)
	if err != nil {
		return &StatementError{Statement: n, Err: err}
	}
	r.result.StatementsExecuted = n
	if raw != nil {
		r.result.RawResults = append(r.result.RawResults, raw)
	}
	if !r.trackIDs {
		return nil
	}

	first, err := r.session.LastInsertID(ctx)
	if err != nil {
		return fmt.Errorf("bulk: statement %d: last insert id: %w", n, err)
	}
	affected, err := r.session.AffectedRows(ctx)
	if err != nil {
		return fmt.Errorf("bulk: statement %d: affected rows: %w", n, err)
	}
	ids, err := Reconstruct(first, int64(len(batch)), affected)
	if err != nil {
		return fmt.Errorf("bulk: statement %d: %w", n, err)
	}

	// Ids of later statements must continue the sequence of earlier ones.
	if prev := r.result.GeneratedIDs; len(prev) > 0 && len(ids) > 0 && ids[0] <= prev[len(prev)-1] {
		return fmt.Errorf("bulk: statement %d: %w: first id %d does not follow %d",
			n, ErrInconsistentFeedback, ids[0], prev[len(prev)-1])
	}
	r.result.GeneratedIDs = append(r.result.GeneratedIDs, ids...)
	return nil
}
