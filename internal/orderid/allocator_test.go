package orderid

import (
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

type poolRecorder struct {
	mu   sync.Mutex
	last int
	hits int
}

func (r *poolRecorder) PoolSize(remaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = remaining
	r.hits++
}

func TestAllocatorDistinctAndExhausts(t *testing.T) {
	a, err := New(3, WithRand(rand.New(rand.NewPCG(1, 2))))
	require.NoError(t, err)

	seen := make(map[int]struct{})
	for i := 0; i < 3; i++ {
		id, err := a.Allocate()
		require.NoError(t, err)
		require.GreaterOrEqual(t, id, 1)
		require.LessOrEqual(t, id, 3)
		seen[id] = struct{}{}
	}
	require.Len(t, seen, 3)

	_, err = a.Allocate()
	require.ErrorIs(t, err, domain.ErrPoolExhausted)
	require.Equal(t, domain.ErrorKindPoolExhausted, domain.KindOf(err))
	require.Zero(t, a.Remaining())
}

func TestAllocatorConcurrentCallersNeverShareID(t *testing.T) {
	const capacity = 1000
	a, err := New(capacity)
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int]int)
	)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				id, err := a.Allocate()
				if err != nil {
					return
				}
				mu.Lock()
				seen[id]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, capacity)
	for id, n := range seen {
		require.Equalf(t, 1, n, "id %d issued %d times", id, n)
	}
}

func TestAllocatorExclude(t *testing.T) {
	a, err := New(5, WithExclude(1, 3, 5, 42))
	require.NoError(t, err)
	require.Equal(t, 2, a.Remaining())
	require.Equal(t, 5, a.Capacity())

	got := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		id, err := a.Allocate()
		require.NoError(t, err)
		got = append(got, id)
	}
	require.ElementsMatch(t, []int{2, 4}, got)
}

func TestAllocatorObserverAndNext(t *testing.T) {
	rec := &poolRecorder{}
	a, err := New(2, WithObserver(rec))
	require.NoError(t, err)
	require.Equal(t, 2, rec.last)

	id, err := a.Next()
	require.NoError(t, err)
	require.Contains(t, []string{"1", "2"}, id)
	require.Equal(t, 1, rec.last)
	require.Equal(t, 2, rec.hits)
}

func TestNewRejectsNonPositiveCapacity(t *testing.T) {
	_, err := New(0)
	require.Error(t, err)
}

func TestAllocatorCapacityFiveFailsOnSixthCall(t *testing.T) {
	a, err := New(5)
	require.NoError(t, err)

	seen := make(map[int]struct{}, 5)
	for i := 0; i < 5; i++ {
		id, err := a.Allocate()
		require.NoError(t, err)
		seen[id] = struct{}{}
	}
	require.Len(t, seen, 5)

	_, err = a.Allocate()
	require.ErrorIs(t, err, domain.ErrPoolExhausted)
}
