package realtime

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "bandhub:band:"

// Channel returns the redis channel for a band's events.
func Channel(bandID string) string {
	return channelPrefix + bandID
}

func bandFromChannel(ch string) (string, bool) {
	if !strings.HasPrefix(ch, channelPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(ch, channelPrefix)
	return id, id != ""
}

// Event is the message delivered to websocket clients.
type Event struct {
	Type    string    `json:"type"`
	BandID  string    `json:"bandId"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

// Publisher pushes band events to redis. A nil Publisher, or one without a
// client, drops events silently.
type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

// Publish never fails the caller; errors are logged.
func (p *Publisher) Publish(ctx context.Context, bandID, typ string, payload any) {
	if p == nil || p.rdb == nil {
		return
	}
	b, err := json.Marshal(Event{
		Type:    typ,
		BandID:  bandID,
		Payload: payload,
		At:      time.Now().UTC(),
	})
	if err != nil {
		log.Printf("realtime: marshal %s: %v", typ, err)
		return
	}
	if err := p.rdb.Publish(ctx, Channel(bandID), b).Err(); err != nil {
		log.Printf("realtime: publish %s: %v", typ, err)
	}
}
