package realtime

import "context"

type message struct {
	bandID string
	data   []byte
}

// Hub owns the connected clients, grouped by band, and fans messages out
// to the clients of one band.
type Hub struct {
	rooms map[string]map[*Client]bool

	broadcast  chan message
	register   chan *Client
	unregister chan *Client
	count      chan chan map[string]int
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan chan map[string]int),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, room := range h.rooms {
				for c := range room {
					h.drop(c)
				}
			}
			return

		case c := <-h.register:
			room, ok := h.rooms[c.bandID]
			if !ok {
				room = make(map[*Client]bool)
				h.rooms[c.bandID] = room
			}
			room[c] = true

		case c := <-h.unregister:
			h.drop(c)

		case m := <-h.broadcast:
			for c := range h.rooms[m.bandID] {
				select {
				case c.send <- m.data:
				default:
					h.drop(c)
				}
			}

		case reply := <-h.count:
			out := make(map[string]int, len(h.rooms))
			for id, room := range h.rooms {
				out[id] = len(room)
			}
			reply <- out
		}
	}
}

// Broadcast queues data for every client connected to bandID.
func (h *Hub) Broadcast(bandID string, data []byte) {
	select {
	case h.broadcast <- message{bandID: bandID, data: data}:
	case <-h.done:
	}
}

// Clients reports the number of connected clients per band.
func (h *Hub) Clients() map[string]int {
	reply := make(chan map[string]int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return map[string]int{}
	}
}

func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) drop(c *Client) {
	room, ok := h.rooms[c.bandID]
	if !ok || !room[c] {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, c.bandID)
	}
	close(c.send)
	_ = c.conn.Close()
}
