package ulid

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateString(t *testing.T) {
	before := time.Now().Truncate(time.Millisecond)
	s := GenerateString()
	require.Len(t, s, 26)

	at, err := Time(s)
	require.NoError(t, err)
	assert.False(t, at.Before(before))

	_, err = Time("not-a-ulid")
	assert.Error(t, err)
}

func TestSourceIsMonotonicWithinMillisecond(t *testing.T) {
	src := NewSource(nil)
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	prev := src.At(at)
	assert.Equal(t, at, time.UnixMilli(int64(prev.Time())).UTC())
	for i := 0; i < 10; i++ {
		next := src.At(at)
		require.Positive(t, next.Compare(prev))
		prev = next
	}
}

func TestConcurrentGenerateIsUnique(t *testing.T) {
	const workers, perWorker = 8, 100

	ids := make(chan string, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ids <- GenerateString()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{}, workers*perWorker)
	for id := range ids {
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, workers*perWorker)
}
