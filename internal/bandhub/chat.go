package bandhub

import (
	"context"
	"log"
	"regexp"
	"strings"

	"github.com/LMSBAND/bandhub/internal/identity"
)

const (
	evChannelCreated = "chat.channel_created"
	evChannelDeleted = "chat.channel_deleted"
	evChatMessage    = "chat.message"

	// messageHistory is how many of a channel's most recent messages are
	// returned.
	messageHistory = 200
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// channelName turns "#Set List Ideas" into "set-list-ideas".
func channelName(raw string) string {
	name := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(raw), "#"))
	return strings.ToLower(whitespaceRun.ReplaceAllString(name, "-"))
}

func (s *Service) CreateChannel(ctx context.Context, bandID string, caller identity.Identity, name string) (*Channel, error) {
	if _, err := s.requireMember(ctx, bandID, caller); err != nil {
		return nil, err
	}
	name = channelName(name)
	if name == "" {
		return nil, invalid("name is required")
	}

	ch := &Channel{
		ID:        s.newID(),
		BandID:    bandID,
		Name:      name,
		CreatedBy: caller.UID,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateChannel(ctx, ch); err != nil {
		log.Printf("bandhub: create channel: %v", err)
		return nil, err
	}
	s.pub.Publish(ctx, bandID, evChannelCreated, ch)
	return ch, nil
}

// ListChannels orders by name.
func (s *Service) ListChannels(ctx context.Context, bandID string, caller identity.Identity) ([]Channel, error) {
	if _, err := s.requireMember(ctx, bandID, caller); err != nil {
		return nil, err
	}
	out, err := s.store.ListChannels(ctx, bandID)
	if err != nil {
		log.Printf("bandhub: list channels %s: %v", bandID, err)
		return nil, err
	}
	return out, nil
}

// DeleteChannel removes the channel together with its messages. Any member
// may delete any channel.
func (s *Service) DeleteChannel(ctx context.Context, bandID, channelID string, caller identity.Identity) error {
	if _, err := s.requireMember(ctx, bandID, caller); err != nil {
		return err
	}
	if err := s.store.DeleteChannel(ctx, bandID, channelID); err != nil {
		log.Printf("bandhub: delete channel %s: %v", channelID, err)
		return err
	}
	s.pub.Publish(ctx, bandID, evChannelDeleted, map[string]string{"id": channelID})
	return nil
}

// PostMessage stores text trimmed, under caller's display name snapshot.
func (s *Service) PostMessage(ctx context.Context, bandID, channelID string, caller identity.Identity, text string) (*Message, error) {
	if _, err := s.requireMember(ctx, bandID, caller); err != nil {
		return nil, err
	}
	if _, err := s.store.LoadChannel(ctx, bandID, channelID); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("text is required")
	}

	m := &Message{
		ID:                s.newID(),
		ChannelID:         channelID,
		Text:              text,
		AuthorUID:         caller.UID,
		AuthorDisplayName: caller.SnapshotName(),
		CreatedAt:         s.now(),
	}
	if err := s.store.CreateMessage(ctx, bandID, m); err != nil {
		log.Printf("bandhub: post message %s: %v", channelID, err)
		return nil, err
	}
	s.pub.Publish(ctx, bandID, evChatMessage, m)
	return m, nil
}

// ListMessages returns the channel's most recent messages, oldest first.
func (s *Service) ListMessages(ctx context.Context, bandID, channelID string, caller identity.Identity) ([]Message, error) {
	if _, err := s.requireMember(ctx, bandID, caller); err != nil {
		return nil, err
	}
	if _, err := s.store.LoadChannel(ctx, bandID, channelID); err != nil {
		return nil, err
	}
	out, err := s.store.ListMessages(ctx, bandID, channelID, messageHistory)
	if err != nil {
		log.Printf("bandhub: list messages %s: %v", channelID, err)
		return nil, err
	}
	return out, nil
}
