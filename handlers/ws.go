package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"nhooyr.io/websocket"
)

// Hub fans state documents out to websocket subscribers. A subscriber that
// cannot keep up has its buffer overrun and gets dropped.
type Hub struct {
	mu          sync.Mutex
	subscribers map[chan []byte]struct{}
}

func NewHub() *Hub {
	return &Hub{subscribers: map[chan []byte]struct{}{}}
}

func (hub *Hub) Subscribe() chan []byte {
	messages := make(chan []byte, 8)

	hub.mu.Lock()
	hub.subscribers[messages] = struct{}{}
	hub.mu.Unlock()

	return messages
}

func (hub *Hub) Unsubscribe(messages chan []byte) {
	hub.mu.Lock()
	delete(hub.subscribers, messages)
	hub.mu.Unlock()
}

func (hub *Hub) Broadcast(message []byte) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	for messages := range hub.subscribers {
		select {
		case messages <- message:
		default:
			delete(hub.subscribers, messages)
			close(messages)
		}
	}
}

// stateFeed upgrades the connection and streams state documents until the
// client goes away. The current state is pushed immediately so a page
// reconnecting does not wait for the next change.
func (server *Server) stateFeed(w http.ResponseWriter, r *http.Request) {
	connection, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		server.logger.Errorf("websocket accept: %v", err)
		return
	}
	defer connection.Close(websocket.StatusNormalClosure, "")

	messages := server.hub.Subscribe()
	defer server.hub.Unsubscribe(messages)

	ctx := r.Context()

	initial, err := json.Marshal(server.stateDocument())
	if err != nil {
		server.logger.Errorf("marshal state document: %v", err)
		return
	}
	if err := connection.Write(ctx, websocket.MessageText, initial); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case message, ok := <-messages:
			if !ok {
				return
			}
			if err := connection.Write(ctx, websocket.MessageText, message); err != nil {
				return
			}
		}
	}
}
