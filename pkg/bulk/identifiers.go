package bulk

import "fmt"

// Reconstruct returns the ids generated by one INSERT statement.
//
// The server reports the first generated id and an affected-row count in
// which a fresh row counts 1 and a row updated through the upsert clause
// counts 2. Assuming no row counted 0 (ignored), the number of new rows is
//
//	inserted = 2*requested - affected
//
// and, with consecutive id allocation, their ids are
// firstID .. firstID+inserted-1.
//
// Feedback that no combination of inserts and updates can produce is
// reported as ErrInconsistentFeedback instead of being clamped.
func Reconstruct(firstID, requested, affected int64) ([]int64, error) {
	if requested < 0 || affected < 0 {
		return nil, fmt.Errorf("%w: negative counts (requested=%d affected=%d)",
			ErrInconsistentFeedback, requested, affected)
	}

	inserted := 2*requested - affected
	switch {
	case inserted < 0:
		return nil, fmt.Errorf("%w: affected rows %d exceed twice the %d requested",
			ErrInconsistentFeedback, affected, requested)
	case inserted > requested:
		return nil, fmt.Errorf("%w: %d affected rows for %d requested imply skipped rows",
			ErrInconsistentFeedback, affected, requested)
	case inserted == 0:
		return []int64{}, nil
	case firstID <= 0:
		return nil, fmt.Errorf("%w: %d rows inserted but first id is %d",
			ErrInconsistentFeedback, inserted, firstID)
	}

	ids := make([]int64, inserted)
	for i := range ids {
		ids[i] = firstID + int64(i)
	}
	return ids, nil
}
