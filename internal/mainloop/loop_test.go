package mainloop

import (
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
)

func TestLoop_RunsTasksInOrder(t *testing.T) {
	l := New()
	defer l.Close()

	var got []int
	for i := range 100 {
		l.Post(func() { got = append(got, i) })
	}
	l.Flush()

	want := make([]int, 100)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, got)
}

func TestLoop_TasksNeverOverlap(t *testing.T) {
	l := New()
	defer l.Close()

	var running, overlaps atomic.Int32
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				l.Post(func() {
					if running.Add(1) > 1 {
						overlaps.Add(1)
					}
					running.Add(-1)
				})
			}
		}()
	}
	wg.Wait()
	l.Flush()

	assert.Zero(t, overlaps.Load())
}

func TestLoop_PostDoesNotRunInline(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := New()
		defer l.Close()

		block := make(chan struct{})
		l.Post(func() { <-block })

		ran := false
		l.Post(func() { ran = true })
		synctest.Wait()
		assert.False(t, ran, "second task waits behind the first")

		close(block)
		l.Flush()
		assert.True(t, ran)
	})
}

func TestLoop_Close_DrainsQueue(t *testing.T) {
	l := New()
	block := make(chan struct{})
	l.Post(func() { <-block })

	var count atomic.Int32
	for range 10 {
		l.Post(func() { count.Add(1) })
	}
	close(block)
	l.Close()

	assert.Equal(t, int32(10), count.Load())
	select {
	case <-l.Done():
	default:
		t.Fatal("Done not closed after Close")
	}
}

func TestLoop_Close_Idempotent(t *testing.T) {
	l := New()
	l.Close()
	assert.NotPanics(t, l.Close)
}

func TestLoop_PostAfterClose_Dropped(t *testing.T) {
	l := New()
	l.Close()

	ran := false
	l.Post(func() { ran = true })
	l.Flush()

	assert.False(t, ran)
}

func TestLoop_SurvivesPanickingTask(t *testing.T) {
	l := New()
	defer l.Close()

	l.Post(func() { panic("listener bug") })
	ran := false
	l.Post(func() { ran = true })
	l.Flush()

	assert.True(t, ran)
}
