package telemetry_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hob/internal/adapters/telemetry"
)

type collector struct {
	mu     sync.Mutex
	data   []byte
	chunks int
}

func (c *collector) flush(p []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = append(c.data, p...)
	c.chunks++
}

func (c *collector) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(c.data)
}

func TestBatchProcessor_FlushOnSize(t *testing.T) {
	var c collector
	bp := telemetry.NewBatchProcessor(5, time.Hour, c.flush)
	defer func() { _ = bp.Close() }()

	_, err := bp.Write([]byte("123"))
	require.NoError(t, err)
	assert.Empty(t, c.String())

	_, err = bp.Write([]byte("456"))
	require.NoError(t, err)
	assert.Equal(t, "123456", c.String())
}

func TestBatchProcessor_FlushOnTime(t *testing.T) {
	var c collector
	bp := telemetry.NewBatchProcessor(100, 20*time.Millisecond, c.flush)
	defer func() { _ = bp.Close() }()

	_, err := bp.Write([]byte("tick"))
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return c.String() == "tick" }, time.Second, 5*time.Millisecond)
}

func TestBatchProcessor_Flush(t *testing.T) {
	var c collector
	bp := telemetry.NewBatchProcessor(100, time.Hour, c.flush)
	defer func() { _ = bp.Close() }()

	bp.Flush()
	assert.Zero(t, c.chunks, "empty buffers are not flushed")

	_, err := bp.Write([]byte("hello"))
	require.NoError(t, err)
	bp.Flush()
	assert.Equal(t, "hello", c.String())
}

func TestBatchProcessor_Close(t *testing.T) {
	var c collector
	bp := telemetry.NewBatchProcessor(100, time.Hour, c.flush)

	_, err := bp.Write([]byte("pending"))
	require.NoError(t, err)
	require.NoError(t, bp.Close())
	assert.Equal(t, "pending", c.String())
	require.NoError(t, bp.Close())

	_, err = bp.Write([]byte("late"))
	require.ErrorIs(t, err, telemetry.ErrBatcherClosed)
}

func TestBatchProcessor_Concurrent(t *testing.T) {
	var c collector
	bp := telemetry.NewBatchProcessor(16, 5*time.Millisecond, c.flush)

	const workers, writes = 8, 200
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range writes {
				_, _ = bp.Write([]byte("x"))
				if j%25 == 0 {
					bp.Flush()
				}
			}
		}()
	}
	wg.Wait()
	require.NoError(t, bp.Close())

	assert.Len(t, c.String(), workers*writes)
}
