package bandhub

import (
	"context"
	"log"
	"strings"

	"github.com/LMSBAND/bandhub/internal/identity"
)

const (
	evEventCreated = "event.created"
	evEventUpdated = "event.updated"
	evEventRSVP    = "event.rsvp"
)

func (in *EventInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return invalid("title is required")
	}
	if in.Start == "" || in.End == "" {
		return invalid("start and end are required")
	}
	if in.Type == "" {
		in.Type = defaultEventType
	}
	if in.LinkedMedia == nil {
		in.LinkedMedia = []string{}
	}
	return nil
}

// CreateEvent records the creator as going.
func (s *Service) CreateEvent(ctx context.Context, bandID string, caller identity.Identity, in EventInput) (*Event, error) {
	if _, err := s.requireMember(ctx, bandID, caller); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	ev := &Event{
		ID:          s.newID(),
		BandID:      bandID,
		Title:       in.Title,
		Type:        in.Type,
		Start:       in.Start,
		End:         in.End,
		Location:    in.Location,
		Description: in.Description,
		LinkedMedia: in.LinkedMedia,
		RSVP:        map[string]string{caller.UID: rsvpGoing},
		CreatedBy:   caller.UID,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateEvent(ctx, ev); err != nil {
		log.Printf("bandhub: create event: %v", err)
		return nil, err
	}
	s.pub.Publish(ctx, bandID, evEventCreated, ev)
	return ev, nil
}

// ListEvents orders by start.
func (s *Service) ListEvents(ctx context.Context, bandID string, caller identity.Identity) ([]Event, error) {
	if _, err := s.requireMember(ctx, bandID, caller); err != nil {
		return nil, err
	}
	out, err := s.store.ListEvents(ctx, bandID)
	if err != nil {
		log.Printf("bandhub: list events %s: %v", bandID, err)
		return nil, err
	}
	return out, nil
}

// UpdateEvent replaces every editable field.
func (s *Service) UpdateEvent(ctx context.Context, bandID, eventID string, caller identity.Identity, in EventInput) error {
	if _, err := s.requireMember(ctx, bandID, caller); err != nil {
		return err
	}
	if err := in.normalize(); err != nil {
		return err
	}
	if err := s.store.UpdateEvent(ctx, bandID, eventID, in); err != nil {
		log.Printf("bandhub: update event %s: %v", eventID, err)
		return err
	}
	s.pub.Publish(ctx, bandID, evEventUpdated, map[string]any{"id": eventID, "event": in})
	return nil
}

func (s *Service) RSVP(ctx context.Context, bandID, eventID string, caller identity.Identity, status string) error {
	if _, err := s.requireMember(ctx, bandID, caller); err != nil {
		return err
	}
	if !validRSVP(status) {
		return invalid("status must be going, maybe or not_going")
	}
	if err := s.store.SetRSVP(ctx, bandID, eventID, caller.UID, status); err != nil {
		log.Printf("bandhub: rsvp %s: %v", eventID, err)
		return err
	}
	s.pub.Publish(ctx, bandID, evEventRSVP, map[string]string{"id": eventID, "uid": caller.UID, "status": status})
	return nil
}
