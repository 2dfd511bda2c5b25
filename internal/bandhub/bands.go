package bandhub

import (
	"context"
	"log"
	"strings"

	"github.com/LMSBAND/bandhub/internal/identity"
)

const (
	evBandJoined          = "band.joined"
	evBandInviteRefreshed = "band.invite_refreshed"
)

// CreateBand installs caller as the band's only admin.
func (s *Service) CreateBand(ctx context.Context, caller identity.Identity, name string) (*Band, error) {
	if caller.UID == "" {
		return nil, unauthenticated()
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name is required")
	}
	code, err := s.inviteCode()
	if err != nil {
		log.Printf("bandhub: invite code: %v", err)
		return nil, upstream("invite code generation failed", err)
	}

	now := s.now()
	b := &Band{
		ID:         s.newID(),
		Name:       name,
		CreatedBy:  caller.UID,
		CreatedAt:  now,
		InviteCode: code,
		Members: map[string]Membership{
			caller.UID: {Role: roleAdmin, DisplayName: caller.SnapshotName(), JoinedAt: now},
		},
	}
	if err := s.store.CreateBand(ctx, b, caller.UID); err != nil {
		log.Printf("bandhub: create band: %v", err)
		return nil, err
	}
	return b, nil
}

func (s *Service) GetBand(ctx context.Context, bandID string, caller identity.Identity) (*Band, error) {
	return s.requireMember(ctx, bandID, caller)
}

// ListBands returns the bands caller belongs to, newest first.
func (s *Service) ListBands(ctx context.Context, caller identity.Identity) ([]Band, error) {
	if caller.UID == "" {
		return nil, unauthenticated()
	}
	bands, err := s.store.ListBandsForUser(ctx, caller.UID)
	if err != nil {
		log.Printf("bandhub: list bands: %v", err)
		return nil, err
	}
	return bands, nil
}

// JoinBand matches code case-insensitively and writes caller's membership
// with role "member". An existing membership, admin included, is
// overwritten.
func (s *Service) JoinBand(ctx context.Context, caller identity.Identity, code string) (*Band, error) {
	if caller.UID == "" {
		return nil, unauthenticated()
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, notFound("invalid invite code")
	}

	b, err := s.store.FindBandByInviteCode(ctx, code)
	if err != nil {
		return nil, err
	}

	m := Membership{Role: roleMember, DisplayName: caller.SnapshotName(), JoinedAt: s.now()}
	if err := s.store.UpsertMember(ctx, b.ID, caller.UID, m); err != nil {
		log.Printf("bandhub: join band %s: %v", b.ID, err)
		return nil, err
	}
	if b.Members == nil {
		b.Members = map[string]Membership{}
	}
	b.Members[caller.UID] = m

	s.pub.Publish(ctx, b.ID, evBandJoined, map[string]any{"uid": caller.UID, "member": m})
	return b, nil
}

// RefreshInvite replaces the band's invite code. Concurrent refreshes are
// not serialized; the last write wins.
func (s *Service) RefreshInvite(ctx context.Context, bandID string, caller identity.Identity) (string, error) {
	if _, err := s.requireAdmin(ctx, bandID, caller, "refresh invite codes"); err != nil {
		return "", err
	}
	code, err := s.inviteCode()
	if err != nil {
		log.Printf("bandhub: invite code: %v", err)
		return "", upstream("invite code generation failed", err)
	}
	if err := s.store.SetInviteCode(ctx, bandID, code); err != nil {
		log.Printf("bandhub: refresh invite %s: %v", bandID, err)
		return "", err
	}
	s.pub.Publish(ctx, bandID, evBandInviteRefreshed, nil)
	return code, nil
}
