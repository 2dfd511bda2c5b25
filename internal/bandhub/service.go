// Package bandhub implements bands, their media library, timestamped
// comment threads and the band calendar, together with the membership rules
// that guard all of them and the HTTP surface on top.
package bandhub

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/LMSBAND/bandhub/internal/blob"
	"github.com/LMSBAND/bandhub/internal/waveform"
)

// Publisher receives a notification after every successful mutation.
// Implementations must not block the caller for long and never fail it.
type Publisher interface {
	Publish(ctx context.Context, bandID, typ string, payload any)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, string, any) {}

type Options struct {
	// SignedURLTTL is how long an issued audio URL stays valid.
	SignedURLTTL time.Duration
	// Peaks is the number of waveform peaks stored per audio upload.
	Peaks int
}

const defaultSignedURLTTL = 60 * time.Minute

// Service holds the injected store, blob store and publisher. It keeps no
// other state and is safe for concurrent use.
type Service struct {
	store Store
	blobs blob.Store
	pub   Publisher

	signedURLTTL time.Duration
	peaks        int

	now        func() time.Time
	newID      func() string
	inviteCode func() (string, error)
	extract    func(data []byte, n int) (float64, []float64)
}

func NewService(store Store, blobs blob.Store, pub Publisher, opts Options) *Service {
	if pub == nil {
		pub = noopPublisher{}
	}
	if opts.SignedURLTTL <= 0 {
		opts.SignedURLTTL = defaultSignedURLTTL
	}
	if opts.Peaks <= 0 {
		opts.Peaks = waveform.DefaultPeaks
	}
	return &Service{
		store:        store,
		blobs:        blobs,
		pub:          pub,
		signedURLTTL: opts.SignedURLTTL,
		peaks:        opts.Peaks,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
		inviteCode:   newInviteCode,
		extract:      waveform.Extract,
	}
}
