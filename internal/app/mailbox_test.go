package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailbox_PutTake(t *testing.T) {
	m := NewMailbox[int](nil)

	assert.False(t, m.Put(1))

	v, ok := m.Take(context.Background())
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestMailbox_DropsOldest(t *testing.T) {
	var dropped []int
	m := NewMailbox(func(v int) { dropped = append(dropped, v) })

	m.Put(1)
	m.Put(2)
	assert.True(t, m.Put(3))

	v, ok := m.Take(context.Background())
	require.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, []int{1, 2}, dropped)
}

func TestMailbox_TakeWaits(t *testing.T) {
	m := NewMailbox[string](nil)

	got := make(chan string, 1)
	go func() {
		v, _ := m.Take(context.Background())
		got <- v
	}()

	time.Sleep(10 * time.Millisecond)
	m.Put("frame")

	select {
	case v := <-got:
		assert.Equal(t, "frame", v)
	case <-time.After(time.Second):
		t.Fatal("Take did not return after Put")
	}
}

func TestMailbox_TakeCancelled(t *testing.T) {
	m := NewMailbox[int](nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, ok := m.Take(ctx)
	assert.False(t, ok)
}

func TestMailbox_Close(t *testing.T) {
	var dropped []int
	m := NewMailbox(func(v int) { dropped = append(dropped, v) })

	m.Put(7)
	m.Close()
	m.Close()

	_, ok := m.Take(context.Background())
	assert.False(t, ok)
	assert.Equal(t, []int{7}, dropped)

	assert.True(t, m.Put(8))
	assert.Equal(t, []int{7, 8}, dropped)
}

func TestMailbox_CloseWakesTake(t *testing.T) {
	m := NewMailbox[int](nil)

	done := make(chan bool, 1)
	go func() {
		_, ok := m.Take(context.Background())
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	m.Close()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Close did not wake Take")
	}
}

func TestMailbox_ConcurrentProducer(t *testing.T) {
	var mu sync.Mutex
	drops := 0
	m := NewMailbox(func(int) {
		mu.Lock()
		drops++
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	taken := make(chan int, 1000)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			v, ok := m.Take(ctx)
			if !ok {
				return
			}
			taken <- v
		}
	}()

	const n = 500
	for i := 1; i <= n; i++ {
		m.Put(i)
	}
	m.Close()
	wg.Wait()
	close(taken)

	last, received := 0, 0
	for v := range taken {
		assert.Greater(t, v, last, "values must arrive in order")
		last = v
		received++
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, n, received+drops)
}
