package bandhub

import (
	"context"
	"log"
	"strings"

	"github.com/LMSBAND/bandhub/internal/identity"
)

const (
	evCommentCreated = "comment.created"
	evCommentUpdated = "comment.updated"
	evCommentDeleted = "comment.deleted"
	evReplyCreated   = "reply.created"
)

// CreateComment requires the media to exist and bumps its commentCount by
// one with an atomic increment. A failed increment is reported but the
// comment is not rolled back.
func (s *Service) CreateComment(ctx context.Context, ref MediaRef, caller identity.Identity, timestamp float64, text string) (*Comment, error) {
	if _, err := s.GetMedia(ctx, ref, caller); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, invalid("text is required")
	}
	if timestamp < 0 {
		return nil, invalid("timestamp must not be negative")
	}

	c := &Comment{
		ID:                s.newID(),
		MediaID:           ref.MediaID,
		Timestamp:         timestamp,
		Text:              text,
		AuthorUID:         caller.UID,
		AuthorDisplayName: caller.SnapshotName(),
		CreatedAt:         s.now(),
	}
	if err := s.store.CreateComment(ctx, ref, c); err != nil {
		log.Printf("bandhub: create comment: %v", err)
		return nil, err
	}
	if err := s.store.AddCommentCount(ctx, ref, 1); err != nil {
		log.Printf("bandhub: increment comment count %s: %v", ref.MediaID, err)
		return nil, err
	}

	s.pub.Publish(ctx, ref.BandID, evCommentCreated, c)
	return c, nil
}

// ListComments orders by media timestamp.
func (s *Service) ListComments(ctx context.Context, ref MediaRef, caller identity.Identity) ([]Comment, error) {
	if _, err := s.requireMember(ctx, ref.BandID, caller); err != nil {
		return nil, err
	}
	out, err := s.store.ListComments(ctx, ref)
	if err != nil {
		log.Printf("bandhub: list comments %s: %v", ref.MediaID, err)
		return nil, err
	}
	return out, nil
}

// UpdateComment lets any member resolve or edit any comment.
func (s *Service) UpdateComment(ctx context.Context, ref CommentRef, caller identity.Identity, patch CommentPatch) error {
	if _, err := s.requireMember(ctx, ref.BandID, caller); err != nil {
		return err
	}
	if _, err := s.store.LoadComment(ctx, ref); err != nil {
		return err
	}
	if patch.empty() {
		return nil
	}
	if patch.Text != nil && strings.TrimSpace(*patch.Text) == "" {
		return invalid("text must not be empty")
	}
	if err := s.store.UpdateComment(ctx, ref, patch); err != nil {
		log.Printf("bandhub: update comment %s: %v", ref.CommentID, err)
		return err
	}
	s.pub.Publish(ctx, ref.BandID, evCommentUpdated, map[string]any{"id": ref.CommentID, "mediaId": ref.MediaID, "patch": patch})
	return nil
}

// DeleteComment is allowed for the author only. It decrements the parent
// commentCount and leaves the comment's replies in place.
func (s *Service) DeleteComment(ctx context.Context, ref CommentRef, caller identity.Identity) error {
	if _, err := s.requireMember(ctx, ref.BandID, caller); err != nil {
		return err
	}
	c, err := s.store.LoadComment(ctx, ref)
	if err != nil {
		return err
	}
	if c.AuthorUID != caller.UID {
		return forbidden("can only delete your own comments")
	}

	if err := s.store.DeleteComment(ctx, ref); err != nil {
		log.Printf("bandhub: delete comment %s: %v", ref.CommentID, err)
		return err
	}
	if err := s.store.AddCommentCount(ctx, ref.media(), -1); err != nil {
		log.Printf("bandhub: decrement comment count %s: %v", ref.MediaID, err)
		return err
	}

	s.pub.Publish(ctx, ref.BandID, evCommentDeleted, map[string]string{"id": ref.CommentID, "mediaId": ref.MediaID})
	return nil
}

// AddReply requires the comment to exist and bumps its replyCount by one.
func (s *Service) AddReply(ctx context.Context, ref CommentRef, caller identity.Identity, text string) (*Reply, error) {
	if _, err := s.requireMember(ctx, ref.BandID, caller); err != nil {
		return nil, err
	}
	if _, err := s.store.LoadComment(ctx, ref); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, invalid("text is required")
	}

	r := &Reply{
		ID:                s.newID(),
		CommentID:         ref.CommentID,
		Text:              text,
		AuthorUID:         caller.UID,
		AuthorDisplayName: caller.SnapshotName(),
		CreatedAt:         s.now(),
	}
	if err := s.store.CreateReply(ctx, ref, r); err != nil {
		log.Printf("bandhub: create reply: %v", err)
		return nil, err
	}
	if err := s.store.AddReplyCount(ctx, ref, 1); err != nil {
		log.Printf("bandhub: increment reply count %s: %v", ref.CommentID, err)
		return nil, err
	}

	s.pub.Publish(ctx, ref.BandID, evReplyCreated, map[string]any{"mediaId": ref.MediaID, "reply": r})
	return r, nil
}

// ListReplies does not require the comment to still exist, so replies of a
// deleted comment remain readable under its id.
func (s *Service) ListReplies(ctx context.Context, ref CommentRef, caller identity.Identity) ([]Reply, error) {
	if _, err := s.requireMember(ctx, ref.BandID, caller); err != nil {
		return nil, err
	}
	out, err := s.store.ListReplies(ctx, ref)
	if err != nil {
		log.Printf("bandhub: list replies %s: %v", ref.CommentID, err)
		return nil, err
	}
	return out, nil
}
