package fanout

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestAll_PreservesInputOrder(t *testing.T) {
	t.Parallel()

	inputs := []int{30, 10, 20}
	got, err := All(context.Background(), inputs, func(_ context.Context, ms int) (int, error) {
		time.Sleep(time.Duration(ms) * time.Millisecond)
		return ms * 2, nil
	})
	require.NoError(t, err)
	require.Equal(t, []int{60, 20, 40}, got)
}

func TestAll_EmptyInput(t *testing.T) {
	t.Parallel()

	got, err := All(context.Background(), []int(nil), func(context.Context, int) (int, error) {
		t.Fatal("fn must not be called")
		return 0, nil
	})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestAll_FirstErrorAndAllTasksRun(t *testing.T) {
	t.Parallel()

	errSlow := errors.New("slow failure")
	errFast := errors.New("fast failure")
	var finished atomic.Int32

	_, err := All(context.Background(), []int{1, 2, 3, 4, 5}, func(_ context.Context, n int) (int, error) {
		defer finished.Add(1)
		switch n {
		case 2:
			time.Sleep(50 * time.Millisecond)
			return 0, errSlow
		case 4:
			return 0, errFast
		}
		time.Sleep(20 * time.Millisecond)
		return n, nil
	})

	require.ErrorIs(t, err, errFast)
	require.NotErrorIs(t, err, errSlow)
	require.Equal(t, int32(5), finished.Load(), "every issued task settles before the join returns")
}

func TestEach(t *testing.T) {
	t.Parallel()

	var sum atomic.Int64
	err := Each(context.Background(), []int64{1, 2, 3}, func(_ context.Context, n int64) error {
		sum.Add(n)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, int64(6), sum.Load())
}

func TestUnique_KeepsFirstSeenOrder(t *testing.T) {
	t.Parallel()

	require.Equal(t, []int64{3, 1, 2}, Unique([]int64{3, 1, 3, 2, 1}))
	require.Empty(t, Unique([]int64{}))
}

func TestProduct(t *testing.T) {
	t.Parallel()

	pairs := Product([]string{"a", "b"}, []int{1, 2, 3})
	require.Len(t, pairs, 6)
	require.Equal(t, Pair[string, int]{First: "a", Second: 1}, pairs[0])
	require.Equal(t, Pair[string, int]{First: "b", Second: 3}, pairs[5])
	require.Empty(t, Product([]string{}, []int{1}))
}

// Property: len(FlattenAll(inputs)) == sum(len(response_i))
func TestFlattenAll_LengthIsSumOfResponses(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("flattened length equals the sum of per-entity lengths", prop.ForAll(
		func(sizes []uint8) bool {
			want := 0
			for _, s := range sizes {
				want += int(s % 16)
			}
			got, err := FlattenAll(context.Background(), sizes, func(_ context.Context, s uint8) ([]int, error) {
				return make([]int, int(s%16)), nil
			})
			return err == nil && len(got) == want
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.TestingRun(t)
}

// Property: Flatten keeps every element of entity i before those of entity i+1
func TestFlattenAll_ConcatenatesInInputOrder(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("results are grouped by input position", prop.ForAll(
		func(sizes []uint8) bool {
			inputs := make([]int, len(sizes))
			for i := range sizes {
				inputs[i] = i
			}
			got, err := FlattenAll(context.Background(), inputs, func(_ context.Context, i int) ([]int, error) {
				out := make([]int, int(sizes[i]%8))
				for j := range out {
					out[j] = i
				}
				return out, nil
			})
			if err != nil {
				return false
			}
			for j := 1; j < len(got); j++ {
				if got[j] < got[j-1] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.TestingRun(t)
}
