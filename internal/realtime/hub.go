// Package realtime fans lightweight change events out to connected
// clients. Delivery is at-most-once and best-effort: disconnected
// clients get nothing and must resync fully when they return.
package realtime

// Hub owns the set of connected clients and broadcasts messages to all
// of them.
type Hub struct {
	clients map[*Client]bool

	// Outbound messages to broadcast to all clients
	broadcast chan []byte

	register   chan *Client
	unregister chan *Client

	done chan struct{}
}

// NewHub creates a new hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until Stop is called
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				h.drop(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer, drop it rather than block the fan-out
					h.drop(client)
				}
			}
		}
	}
}

// Stop shuts down the hub and closes every connection
func (h *Hub) Stop() {
	close(h.done)
}

// Broadcast queues a message for every connected client
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	_ = client.conn.Close()
}
