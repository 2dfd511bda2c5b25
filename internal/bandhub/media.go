package bandhub

import (
	"context"
	"log"
	"strings"

	"github.com/LMSBAND/bandhub/internal/identity"
)

const (
	evMediaUploaded = "media.uploaded"
	evMediaUpdated  = "media.updated"
	evMediaDeleted  = "media.deleted"

	defaultMimeType = "application/octet-stream"
)

type classifyRule struct {
	match    func(mimeType string) bool
	category string
}

func hasPrefix(p string) func(string) bool {
	return func(s string) bool { return strings.HasPrefix(s, p) }
}

// Rules are tried in order; the first match wins.
var classifyRules = []classifyRule{
	{hasPrefix("audio/"), mediaAudio},
	{hasPrefix("video/"), mediaVideo},
	{hasPrefix("image/"), mediaImage},
	{hasPrefix("application/pdf"), mediaPDF},
}

func classify(mimeType string) string {
	for _, r := range classifyRules {
		if r.match(mimeType) {
			return r.category
		}
	}
	return mediaOther
}

// Upload is the file handed over by the transport.
type Upload struct {
	Filename string
	MimeType string
	Data     []byte
}

// Upload stores the bytes first and the metadata second. A failed metadata
// write leaves an orphaned blob behind; metadata never points at a blob that
// was not stored. A missing band is NotFound, like every other band-scoped
// call, and nothing is written.
func (s *Service) Upload(ctx context.Context, bandID string, caller identity.Identity, up Upload) (*UploadResult, error) {
	if _, err := s.requireMember(ctx, bandID, caller); err != nil {
		return nil, err
	}

	mimeType := up.MimeType
	if mimeType == "" {
		mimeType = defaultMimeType
	}
	fileID := s.newID()
	name := up.Filename
	if name == "" {
		name = fileID
	}
	category := classify(mimeType)

	path := "bands/" + bandID + "/media/" + fileID + "/" + name
	stored, err := s.blobs.Put(ctx, up.Data, path, mimeType)
	if err != nil {
		log.Printf("bandhub: upload blob %s: %v", path, err)
		return nil, upstream("blob storage error", err)
	}

	m := &Media{
		ID:         fileID,
		BandID:     bandID,
		Name:       name,
		Type:       category,
		MimeType:   mimeType,
		BlobPath:   stored,
		Size:       int64(len(up.Data)),
		Tags:       []string{},
		UploadedBy: caller.UID,
		UploadedAt: s.now(),
	}
	if category == mediaAudio {
		dur, peaks := s.extract(up.Data, s.peaks)
		m.Duration = &dur
		m.Peaks = peaks
	}

	if err := s.store.CreateMedia(ctx, m); err != nil {
		log.Printf("bandhub: create media %s: %v", m.ID, err)
		return nil, err
	}

	res := &UploadResult{MediaID: m.ID, Name: m.Name, Type: m.Type}
	s.pub.Publish(ctx, bandID, evMediaUploaded, res)
	return res, nil
}

// ListMedia returns the band's media newest first, without peaks. An empty
// mediaType or tag does not filter.
func (s *Service) ListMedia(ctx context.Context, bandID string, caller identity.Identity, mediaType, tag string) ([]Media, error) {
	if _, err := s.requireMember(ctx, bandID, caller); err != nil {
		return nil, err
	}
	items, err := s.store.ListMedia(ctx, bandID, mediaType)
	if err != nil {
		log.Printf("bandhub: list media %s: %v", bandID, err)
		return nil, err
	}

	out := make([]Media, 0, len(items))
	for _, m := range items {
		if tag != "" && !m.hasTag(tag) {
			continue
		}
		m.Peaks = nil
		out = append(out, m)
	}
	return out, nil
}

func (s *Service) GetMedia(ctx context.Context, ref MediaRef, caller identity.Identity) (*Media, error) {
	if _, err := s.requireMember(ctx, ref.BandID, caller); err != nil {
		return nil, err
	}
	return s.store.LoadMedia(ctx, ref)
}

// AudioURL issues a signed read URL for the media's blob.
func (s *Service) AudioURL(ctx context.Context, ref MediaRef, caller identity.Identity) (string, error) {
	m, err := s.GetMedia(ctx, ref, caller)
	if err != nil {
		return "", err
	}
	url, err := s.blobs.SignedURL(ctx, m.BlobPath, s.signedURLTTL)
	if err != nil {
		log.Printf("bandhub: sign url %s: %v", m.BlobPath, err)
		return "", upstream("blob storage error", err)
	}
	return url, nil
}

// UpdateMedia merges only the fields present in patch. Any member may edit
// any media.
func (s *Service) UpdateMedia(ctx context.Context, ref MediaRef, caller identity.Identity, patch MediaPatch) error {
	if _, err := s.GetMedia(ctx, ref, caller); err != nil {
		return err
	}
	if patch.empty() {
		return nil
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return invalid("name must not be empty")
	}
	if patch.Tags != nil {
		tags := dedupeTags(*patch.Tags)
		patch.Tags = &tags
	}
	if err := s.store.UpdateMedia(ctx, ref, patch); err != nil {
		log.Printf("bandhub: update media %s: %v", ref.MediaID, err)
		return err
	}
	s.pub.Publish(ctx, ref.BandID, evMediaUpdated, map[string]any{"id": ref.MediaID, "patch": patch})
	return nil
}

// dedupeTags keeps the first occurrence of each tag, in order.
func dedupeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// DeleteMedia removes the blob, then the record. A failed blob delete is
// logged and does not stop the record from being deleted.
func (s *Service) DeleteMedia(ctx context.Context, ref MediaRef, caller identity.Identity) error {
	m, err := s.GetMedia(ctx, ref, caller)
	if err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, m.BlobPath); err != nil {
		log.Printf("bandhub: delete blob %s (ignored): %v", m.BlobPath, err)
	}
	if err := s.store.DeleteMedia(ctx, ref); err != nil {
		log.Printf("bandhub: delete media %s: %v", ref.MediaID, err)
		return err
	}
	s.pub.Publish(ctx, ref.BandID, evMediaDeleted, map[string]string{"id": ref.MediaID})
	return nil
}
