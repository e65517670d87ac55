package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish_NilHubIsNoop(t *testing.T) {
	var h *Hub
	assert.NotPanics(t, func() { h.Publish(Event{Type: "stock_update"}) })
}

func TestPublish_QueuesJSON(t *testing.T) {
	h := NewHub()
	h.Publish(Event{Type: "stock_update", Action: "stock_added", Data: map[string]int{"quantity": 150}})

	require.Len(t, h.Broadcast, 1)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(<-h.Broadcast, &got))
	assert.Equal(t, "stock_update", got["type"])
	assert.Equal(t, "stock_added", got["action"])
	assert.NotEmpty(t, got["at"])
}

func TestPublish_DropsWhenFull(t *testing.T) {
	h := NewHub()
	for i := 0; i < cap(h.Broadcast)+10; i++ {
		h.Publish(Event{Type: "offer_update"})
	}
	assert.Equal(t, cap(h.Broadcast), len(h.Broadcast))
}

func TestStoppedHub_DoesNotBlockHandlers(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	finished := make(chan bool, 1)
	go func() {
		joined := h.join(nil)
		h.leave(nil)
		finished <- joined
	}()

	select {
	case joined := <-finished:
		assert.False(t, joined)
	case <-time.After(time.Second):
		t.Fatal("handler blocked on a stopped hub")
	}
}
