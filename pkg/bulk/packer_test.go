package bulk

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fragments returns n distinct fragments of exactly size bytes.
func fragments(n, size int) []RowFragment {
	out := make([]RowFragment, n)
	for i := range out {
		out[i] = fmt.Sprintf("(%0*d)", size-2, i)
	}
	return out
}

func flatten(batches []Batch) []RowFragment {
	var out []RowFragment
	for _, b := range batches {
		out = append(out, b...)
	}
	return out
}

func TestPack_Unbounded(t *testing.T) {
	in := fragments(20, 30)
	batches := Pack(in, SizeBudget{ReservedOverhead: 100, MaxBytes: 0})

	require.Len(t, batches, 1)
	assert.Equal(t, in, []RowFragment(batches[0]))
}

func TestPack_TwoPerBatch(t *testing.T) {
	in := fragments(10, 50)
	budget := SizeBudget{ReservedOverhead: 8, MaxBytes: 120}

	batches := Pack(in, budget)

	require.Len(t, batches, 5)
	for i, b := range batches {
		assert.Len(t, b, 2, "batch %d", i)
		assert.Equal(t, 109, BatchSize(b, budget.ReservedOverhead))
		assert.True(t, budget.Fits(b))
	}
	assert.Equal(t, in, flatten(batches))
}

func TestPack_ExactFit(t *testing.T) {
	// 8 + 50 + 1 + 50 = 109, a limit of exactly 109 still takes two
	in := fragments(4, 50)
	batches := Pack(in, SizeBudget{ReservedOverhead: 8, MaxBytes: 109})
	require.Len(t, batches, 2)

	batches = Pack(in, SizeBudget{ReservedOverhead: 8, MaxBytes: 108})
	require.Len(t, batches, 4)
}

func TestPack_OversizedFragmentStandsAlone(t *testing.T) {
	in := []RowFragment{"(1)", "(" + strings.Repeat("a", 200) + ")", "(3)", "(4)"}
	budget := SizeBudget{ReservedOverhead: 10, MaxBytes: 50}

	batches := Pack(in, budget)

	require.Len(t, batches, 3)
	assert.Equal(t, Batch{"(1)"}, batches[0])
	assert.Equal(t, Batch{in[1]}, batches[1])
	assert.False(t, budget.Fits(batches[1]))
	assert.Equal(t, Batch{"(3)", "(4)"}, batches[2])
}

func TestPack_OversizedFirstFragment(t *testing.T) {
	in := []RowFragment{"(" + strings.Repeat("a", 200) + ")", "(2)"}
	batches := Pack(in, SizeBudget{ReservedOverhead: 10, MaxBytes: 50})

	require.Len(t, batches, 2)
	for _, b := range batches {
		assert.NotEmpty(t, b)
	}
}

func TestPack_CompletenessAndBound(t *testing.T) {
	var in []RowFragment
	for i := 0; i < 300; i++ {
		in = append(in, fmt.Sprintf("(%d,'%s')", i, strings.Repeat("v", i%37)))
	}

	for _, max := range []int{0, 60, 61, 64, 100, 257, 1024, 1 << 20} {
		budget := SizeBudget{ReservedOverhead: 20, MaxBytes: max}
		batches := Pack(in, budget)

		assert.Equal(t, in, flatten(batches), "max=%d", max)
		for _, b := range batches {
			require.NotEmpty(t, b)
			if len(b) > 1 {
				assert.True(t, budget.Fits(b), "max=%d size=%d", max, BatchSize(b, 20))
			}
		}
	}
}

func TestPack_Deterministic(t *testing.T) {
	in := fragments(57, 23)
	budget := SizeBudget{ReservedOverhead: 31, MaxBytes: 200}

	assert.Equal(t, Pack(in, budget), Pack(in, budget))
}

func TestPack_Empty(t *testing.T) {
	assert.Nil(t, Pack(nil, SizeBudget{MaxBytes: 10}))
}

func TestBatchSize(t *testing.T) {
	assert.Equal(t, 5, BatchSize(nil, 5))
	assert.Equal(t, 5+3, BatchSize(Batch{"(1)"}, 5))
	assert.Equal(t, 5+3+1+3, BatchSize(Batch{"(1)", "(2)"}, 5))
}
