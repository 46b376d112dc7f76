package bulk

// SizeBudget bounds the byte size of one statement.
// MaxBytes == 0 means the server reported no limit.
type SizeBudget struct {
	ReservedOverhead int
	MaxBytes         int
}

// Unbounded reports whether the budget imposes no limit.
func (b SizeBudget) Unbounded() bool {
	return b.MaxBytes == 0
}

// Fits reports whether batch can be sent as one statement within the budget.
func (b SizeBudget) Fits(batch Batch) bool {
	return b.Unbounded() || BatchSize(batch, b.ReservedOverhead) <= b.MaxBytes
}

// BatchSize returns the serialized size of batch: overhead, every fragment
// and one separator between neighbours.
func BatchSize(batch Batch, overhead int) int {
	size := overhead
	for i, f := range batch {
		if i > 0 {
			size++
		}
		size += len(f)
	}
	return size
}

// Pack partitions fragments, in order, into batches that fit budget.
//
// The scan is greedy: a fragment joins the current batch if the running total
// stays within MaxBytes, otherwise the batch is closed and a new one starts
// with it. A fragment too large to fit even alone is still emitted as its own
// batch; callers decide whether to send it (see SizeBudget.Fits).
// With an unbounded budget everything ends up in one batch.
func Pack(fragments []RowFragment, budget SizeBudget) []Batch {
	if len(fragments) == 0 {
		return nil
	}
	if budget.Unbounded() {
		return []Batch{append(Batch(nil), fragments...)}
	}

	var (
		batches []Batch
		current Batch
		total   = budget.ReservedOverhead
	)
	for _, f := range fragments {
		cost := len(f)
		if len(current) > 0 {
			cost++ // separator
		}
		if len(current) == 0 || total+cost <= budget.MaxBytes {
			current = append(current, f)
			total += cost
			continue
		}
		batches = append(batches, current)
		current = Batch{f}
		total = budget.ReservedOverhead + len(f)
	}
	return append(batches, current)
}
