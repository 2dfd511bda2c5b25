// Package realtime fans band events out to websocket clients. Mutations
// publish on a per-band redis channel; every bandhub instance subscribes to
// all band channels and forwards each message to its locally connected
// members of that band.
package realtime

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	hub      *Hub
	rdb      *redis.Client
	upgrader websocket.Upgrader
}

// NewServer accepts websocket handshakes from allowedOrigin. An empty or
// "*" origin accepts any.
func NewServer(hub *Hub, rdb *redis.Client, allowedOrigin string) *Server {
	return &Server{
		hub: hub,
		rdb: rdb,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" || allowedOrigin == "*" {
					return true
				}
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
	}
}

// RunRedisSubscriber pattern-subscribes to every band channel and forwards
// messages into the hub until ctx is done.
func (s *Server) RunRedisSubscriber(ctx context.Context) error {
	sub := s.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			bandID, ok := bandFromChannel(msg.Channel)
			if !ok {
				continue
			}
			s.hub.Broadcast(bandID, []byte(msg.Payload))
		}
	}
}

// Clients reports the connections attached through this server's hub,
// per band.
func (s *Server) Clients() map[string]int {
	return s.hub.Clients()
}

// ServeBand upgrades the request and attaches the connection to bandID.
// Callers check membership before calling it.
func (s *Server) ServeBand(w http.ResponseWriter, r *http.Request, bandID, uid string) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("realtime: ws upgrade: %v", err)
		return
	}

	c := &Client{
		hub:    s.hub,
		conn:   conn,
		bandID: bandID,
		uid:    uid,
		send:   make(chan []byte, sendBuffer),
	}

	welcome := map[string]any{
		"type":   "welcome",
		"bandId": bandID,
		"uid":    uid,
		"now":    time.Now().UTC().Format(time.RFC3339Nano),
	}
	if b, err := json.Marshal(welcome); err == nil {
		c.send <- b
	}

	if !s.hub.add(c) {
		_ = conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}
