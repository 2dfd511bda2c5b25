package bandhub

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/skip2/go-qrcode"

	"github.com/LMSBAND/bandhub/internal/identity"
)

const (
	inviteAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	inviteCodeLen  = 6
	inviteQRSize   = 256
)

// newInviteCode draws each character uniformly from inviteAlphabet.
func newInviteCode() (string, error) {
	max := big.NewInt(int64(len(inviteAlphabet)))
	buf := make([]byte, inviteCodeLen)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("invite code: %w", err)
		}
		buf[i] = inviteAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// InviteQR renders the band's current invite code as a PNG. Admins only,
// like refreshing the code.
func (s *Service) InviteQR(ctx context.Context, bandID string, caller identity.Identity) ([]byte, error) {
	b, err := s.requireAdmin(ctx, bandID, caller, "share invite codes")
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(b.InviteCode, qrcode.Medium, inviteQRSize)
	if err != nil {
		return nil, fmt.Errorf("invite qr: %w", err)
	}
	return png, nil
}
