package handlers_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"github.com/marketdash/market-dashboard/handlers"
	"github.com/marketdash/market-dashboard/services"
)

func TestStateFeedPushesDocuments(t *testing.T) {
	orderView := &fakeOrderView{state: services.OrderViewState{Side: "BUY"}}
	tradeView := &fakeTradeView{}

	server := handlers.NewServer(orderView, tradeView, &testServerCredentials{}, &testServerLogger{})
	testServer := httptest.NewServer(server.Routes())
	defer testServer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(testServer.URL, "http") + "/api/ws"
	connection, _, err := websocket.Dial(ctx, wsURL, nil)
	require.Nil(t, err)
	defer connection.Close(websocket.StatusNormalClosure, "")

	var document struct {
		Orders struct {
			Side string `json:"side"`
		} `json:"orders"`
		Trades struct {
			Pending bool `json:"pending"`
		} `json:"trades"`
	}

	// current state arrives right after the upgrade
	_, message, err := connection.Read(ctx)
	require.Nil(t, err)
	require.Nil(t, json.Unmarshal(message, &document))
	assert.Equal(t, "BUY", document.Orders.Side)

	// a change broadcast reaches the subscriber
	orderView.mu.Lock()
	orderView.state.Side = "SELL"
	orderView.mu.Unlock()
	server.BroadcastState()

	_, message, err = connection.Read(ctx)
	require.Nil(t, err)
	require.Nil(t, json.Unmarshal(message, &document))
	assert.Equal(t, "SELL", document.Orders.Side)
}

func TestHubDropsSlowSubscriber(t *testing.T) {
	hub := handlers.NewHub()

	messages := hub.Subscribe()

	// fill the buffer and push one more
	for i := 0; i < 16; i++ {
		hub.Broadcast([]byte("state"))
	}

	drained := 0
	for range messages {
		drained++
	}
	assert.LessOrEqual(t, drained, 8, "overflowing subscriber is closed, not blocked on")
}
