package bandhub

import (
	"context"
	"sort"
	"sync"
	"time"
)

// memStore is an in-memory Store. Counter updates happen under the lock,
// which makes them atomic the same way the SQL increments are.
type memStore struct {
	mu       sync.Mutex
	bands    map[string]*Band
	media    map[MediaRef]*Media
	comments map[CommentRef]*Comment
	replies  map[CommentRef][]Reply
	events   map[string]*Event
	channels map[string]*Channel
	messages map[string][]Message
}

func newMemStore() *memStore {
	return &memStore{
		bands:    map[string]*Band{},
		media:    map[MediaRef]*Media{},
		comments: map[CommentRef]*Comment{},
		replies:  map[CommentRef][]Reply{},
		events:   map[string]*Event{},
		channels: map[string]*Channel{},
		messages: map[string][]Message{},
	}
}

func copyBand(b *Band) *Band {
	out := *b
	out.Members = make(map[string]Membership, len(b.Members))
	for k, v := range b.Members {
		out.Members[k] = v
	}
	return &out
}

func (s *memStore) CreateBand(_ context.Context, b *Band, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bands[b.ID] = copyBand(b)
	return nil
}

func (s *memStore) LoadBand(_ context.Context, id string) (*Band, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bands[id]
	if !ok {
		return nil, notFound("band not found")
	}
	return copyBand(b), nil
}

func (s *memStore) FindBandByInviteCode(_ context.Context, code string) (*Band, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *Band
	for _, b := range s.bands {
		if b.InviteCode != code {
			continue
		}
		if found == nil || b.CreatedAt.Before(found.CreatedAt) {
			found = b
		}
	}
	if found == nil {
		return nil, notFound("invalid invite code")
	}
	return copyBand(found), nil
}

func (s *memStore) ListBandsForUser(_ context.Context, uid string) ([]Band, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Band{}
	for _, b := range s.bands {
		if b.isMember(uid) {
			out = append(out, *copyBand(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) UpsertMember(_ context.Context, bandID, uid string, m Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bands[bandID]
	if !ok {
		return notFound("band not found")
	}
	b.Members[uid] = m
	return nil
}

func (s *memStore) SetInviteCode(_ context.Context, bandID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bands[bandID]
	if !ok {
		return notFound("band not found")
	}
	b.InviteCode = code
	return nil
}

func (s *memStore) CreateMedia(_ context.Context, m *Media) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.media[MediaRef{BandID: m.BandID, MediaID: m.ID}] = &cp
	return nil
}

func (s *memStore) LoadMedia(_ context.Context, ref MediaRef) (*Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.media[ref]
	if !ok {
		return nil, notFound("media not found")
	}
	cp := *m
	return &cp, nil
}

func (s *memStore) ListMedia(_ context.Context, bandID, mediaType string) ([]Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Media{}
	for ref, m := range s.media {
		if ref.BandID != bandID || (mediaType != "" && m.Type != mediaType) {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (s *memStore) UpdateMedia(_ context.Context, ref MediaRef, patch MediaPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.media[ref]
	if !ok {
		return notFound("media not found")
	}
	if patch.Name != nil {
		m.Name = *patch.Name
	}
	if patch.Tags != nil {
		m.Tags = append([]string{}, (*patch.Tags)...)
	}
	if patch.Project != nil {
		p := *patch.Project
		m.Project = &p
	}
	return nil
}

func (s *memStore) DeleteMedia(_ context.Context, ref MediaRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.media[ref]; !ok {
		return notFound("media not found")
	}
	delete(s.media, ref)
	return nil
}

func (s *memStore) AddCommentCount(_ context.Context, ref MediaRef, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.media[ref]
	if !ok {
		return notFound("media not found")
	}
	m.CommentCount += delta
	return nil
}

func (s *memStore) CreateComment(_ context.Context, ref MediaRef, c *Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.comments[CommentRef{BandID: ref.BandID, MediaID: ref.MediaID, CommentID: c.ID}] = &cp
	return nil
}

func (s *memStore) LoadComment(_ context.Context, ref CommentRef) (*Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[ref]
	if !ok {
		return nil, notFound("comment not found")
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) ListComments(_ context.Context, ref MediaRef) ([]Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Comment{}
	for k, c := range s.comments {
		if k.media() == ref {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *memStore) UpdateComment(_ context.Context, ref CommentRef, patch CommentPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[ref]
	if !ok {
		return notFound("comment not found")
	}
	if patch.Resolved != nil {
		c.Resolved = *patch.Resolved
	}
	if patch.Text != nil {
		c.Text = *patch.Text
	}
	return nil
}

func (s *memStore) DeleteComment(_ context.Context, ref CommentRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[ref]; !ok {
		return notFound("comment not found")
	}
	delete(s.comments, ref)
	return nil
}

func (s *memStore) AddReplyCount(_ context.Context, ref CommentRef, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[ref]
	if !ok {
		return notFound("comment not found")
	}
	c.ReplyCount += delta
	return nil
}

func (s *memStore) CreateReply(_ context.Context, ref CommentRef, r *Reply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[ref] = append(s.replies[ref], *r)
	return nil
}

func (s *memStore) ListReplies(_ context.Context, ref CommentRef) ([]Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]Reply{}, s.replies[ref]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) CreateEvent(_ context.Context, ev *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *ev
	cp.RSVP = map[string]string{}
	for k, v := range ev.RSVP {
		cp.RSVP[k] = v
	}
	s.events[ev.ID] = &cp
	return nil
}

func (s *memStore) ListEvents(_ context.Context, bandID string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Event{}
	for _, ev := range s.events {
		if ev.BandID == bandID {
			out = append(out, *ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

func (s *memStore) UpdateEvent(_ context.Context, bandID, eventID string, in EventInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[eventID]
	if !ok || ev.BandID != bandID {
		return notFound("event not found")
	}
	ev.Title, ev.Type, ev.Start, ev.End = in.Title, in.Type, in.Start, in.End
	ev.Location, ev.Description, ev.LinkedMedia = in.Location, in.Description, in.LinkedMedia
	return nil
}

func (s *memStore) SetRSVP(_ context.Context, bandID, eventID, uid, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[eventID]
	if !ok || ev.BandID != bandID {
		return notFound("event not found")
	}
	ev.RSVP[uid] = status
	return nil
}

func (s *memStore) CreateChannel(_ context.Context, ch *Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *ch
	s.channels[ch.ID] = &cp
	return nil
}

func (s *memStore) LoadChannel(_ context.Context, bandID, channelID string) (*Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.channels[channelID]
	if !ok || ch.BandID != bandID {
		return nil, notFound("channel not found")
	}
	cp := *ch
	return &cp, nil
}

func (s *memStore) ListChannels(_ context.Context, bandID string) ([]Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Channel{}
	for _, ch := range s.channels {
		if ch.BandID == bandID {
			out = append(out, *ch)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *memStore) DeleteChannel(_ context.Context, bandID, channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.channels[channelID]
	if !ok || ch.BandID != bandID {
		return notFound("channel not found")
	}
	delete(s.channels, channelID)
	delete(s.messages, channelID)
	return nil
}

func (s *memStore) CreateMessage(_ context.Context, _ string, m *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[m.ChannelID] = append(s.messages[m.ChannelID], *m)
	return nil
}

func (s *memStore) ListMessages(_ context.Context, _, channelID string, limit int) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]Message{}, s.messages[channelID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// memBlobs is an in-memory blob.Store.
type memBlobs struct {
	mu        sync.Mutex
	objects   map[string][]byte
	putErr    error
	deleteErr error
	deleted   []string
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: map[string][]byte{}}
}

func (b *memBlobs) Put(_ context.Context, data []byte, path, _ string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.putErr != nil {
		return "", b.putErr
	}
	b.objects[path] = data
	return path, nil
}

func (b *memBlobs) SignedURL(_ context.Context, path string, ttl time.Duration) (string, error) {
	return "https://blobs.test/" + path + "?ttl=" + ttl.String(), nil
}

func (b *memBlobs) Delete(_ context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, path)
	if b.deleteErr != nil {
		return b.deleteErr
	}
	delete(b.objects, path)
	return nil
}

type published struct {
	BandID string
	Type   string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(_ context.Context, bandID, typ string, _ any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{BandID: bandID, Type: typ})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
