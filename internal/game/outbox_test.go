package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxPreservesOrder(t *testing.T) {
	t.Parallel()

	b := newOutbox[int]()
	// Producers never block, even with nobody reading.
	for i := 0; i < 1000; i++ {
		b.push(i)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = b.run(ctx) }()

	for i := 0; i < 1000; i++ {
		select {
		case v := <-b.out:
			require.Equal(t, i, v)
		case <-time.After(waitTimeout):
			t.Fatalf("timed out at item %d", i)
		}
	}

	b.push(1000)
	assert.Equal(t, 1000, <-b.out)
}

func TestOutboxClosesOnCancel(t *testing.T) {
	t.Parallel()

	b := newOutbox[string]()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- b.run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(waitTimeout):
		t.Fatal("pump did not stop")
	}

	_, open := <-b.out
	assert.False(t, open)
}

func TestOutboxDrainsAfterClose(t *testing.T) {
	t.Parallel()

	b := newOutbox[int]()
	for i := 0; i < 3; i++ {
		b.push(i)
	}
	b.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = b.run(ctx) }()

	var got []int
	for v := range b.out {
		got = append(got, v)
	}
	assert.Equal(t, []int{0, 1, 2}, got)
}
