package bandhub

import (
	"context"

	"github.com/LMSBAND/bandhub/internal/identity"
)

// requireMember loads the band and checks that caller holds a membership.
// An absent band is NotFound; a non-member is Forbidden.
func (s *Service) requireMember(ctx context.Context, bandID string, caller identity.Identity) (*Band, error) {
	if caller.UID == "" {
		return nil, unauthenticated()
	}
	b, err := s.store.LoadBand(ctx, bandID)
	if err != nil {
		return nil, err
	}
	if !b.isMember(caller.UID) {
		return nil, forbidden("not a member of this band")
	}
	return b, nil
}

func (s *Service) requireAdmin(ctx context.Context, bandID string, caller identity.Identity, action string) (*Band, error) {
	b, err := s.requireMember(ctx, bandID, caller)
	if err != nil {
		return nil, err
	}
	if !b.isAdmin(caller.UID) {
		return nil, forbidden("only admins can " + action)
	}
	return b, nil
}
