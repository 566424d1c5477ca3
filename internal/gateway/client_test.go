package gateway

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClient_AllowSignalMinimumInterval(t *testing.T) {
	c := &Client{}

	assert.True(t, c.allowSignal(candidateInterval), "first signal always passes")
	assert.False(t, c.allowSignal(candidateInterval), "immediate repeat is rejected")

	// A rejected attempt must not push the window forward.
	c.lastSignal = time.Now().Add(-candidateInterval)
	assert.True(t, c.allowSignal(candidateInterval))
}

func TestClient_AllowSignalSharedWindow(t *testing.T) {
	c := &Client{}

	assert.True(t, c.allowSignal(offerInterval))
	// One timestamp gates every signal class, so a fresh offer blocks a
	// candidate sent right behind it.
	assert.False(t, c.allowSignal(candidateInterval))
}

func TestClient_EnqueueAfterCloseDropsMessage(t *testing.T) {
	c := &Client{send: make(chan []byte, 1)}
	c.closeSend()

	assert.NotPanics(t, func() { c.enqueue([]byte("late")) })

	// Double close is a no-op.
	assert.NotPanics(t, c.closeSend)
}

func TestClient_ConcurrentEnqueueAndClose(t *testing.T) {
	c := &Client{send: make(chan []byte, 4)}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.enqueue([]byte("m"))
			}
		}()
	}
	c.closeSend()
	wg.Wait()
}

func TestClient_EnqueueNeverBlocks(t *testing.T) {
	c := &Client{send: make(chan []byte, 2)}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			c.enqueue([]byte("m"))
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on a full send buffer")
	}
	assert.Len(t, c.send, 2, "overflow is dropped, not queued")
}
