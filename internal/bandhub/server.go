package bandhub

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/LMSBAND/bandhub/internal/identity"
)

const defaultMaxUploadBytes = 200 << 20

// Realtime attaches a verified band member's websocket to the band's feed.
type Realtime interface {
	ServeBand(w http.ResponseWriter, r *http.Request, bandID, uid string)
	// Clients reports connected sockets per band.
	Clients() map[string]int
}

type ServerOptions struct {
	MaxUploadBytes    int64
	CORSAllowedOrigin string
}

type Server struct {
	svc      *Service
	verifier identity.Verifier
	rt       Realtime
	opts     ServerOptions
}

// NewServer builds the HTTP surface. rt may be nil, in which case the
// websocket route answers 503.
func NewServer(svc *Service, verifier identity.Verifier, rt Realtime, opts ServerOptions) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	return &Server{svc: svc, verifier: verifier, rt: rt, opts: opts}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}
	r.Use(corsMiddleware(s.opts.CORSAllowedOrigin))

	r.Get("/api/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware(s.verifier))

		r.Route("/api/bands", func(r chi.Router) {
			r.Post("/", s.handleCreateBand)
			r.Get("/", s.handleListBands)
			r.Post("/join", s.handleJoinBand)

			r.Route("/{bandId}", func(r chi.Router) {
				r.Get("/", s.handleGetBand)
				r.Post("/invite", s.handleRefreshInvite)
				r.Get("/invite/qr", s.handleInviteQR)
				r.Get("/ws", s.handleWS)

				r.Route("/media", func(r chi.Router) {
					r.Post("/upload", s.handleUpload)
					r.Get("/", s.handleListMedia)

					r.Route("/{mediaId}", func(r chi.Router) {
						r.Get("/", s.handleGetMedia)
						r.Patch("/", s.handleUpdateMedia)
						r.Delete("/", s.handleDeleteMedia)
						r.Get("/audio-url", s.handleAudioURL)

						r.Route("/comments", func(r chi.Router) {
							r.Post("/", s.handleCreateComment)
							r.Get("/", s.handleListComments)
							r.Patch("/{commentId}", s.handleUpdateComment)
							r.Delete("/{commentId}", s.handleDeleteComment)
							r.Post("/{commentId}/replies", s.handleAddReply)
							r.Get("/{commentId}/replies", s.handleListReplies)
						})
					})
				})

				r.Route("/channels", func(r chi.Router) {
					r.Post("/", s.handleCreateChannel)
					r.Get("/", s.handleListChannels)
					r.Delete("/{channelId}", s.handleDeleteChannel)
					r.Post("/{channelId}/messages", s.handlePostMessage)
					r.Get("/{channelId}/messages", s.handleListMessages)
				})

				r.Route("/events", func(r chi.Router) {
					r.Post("/", s.handleCreateEvent)
					r.Get("/", s.handleListEvents)
					r.Patch("/{eventId}", s.handleUpdateEvent)
					r.Post("/{eventId}/rsvp", s.handleRSVP)
				})
			})
		})
	})

	return r
}

// handleHealth reports realtime totals only; band ids stay private.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":  "ok",
		"service": "bandhub",
	}
	if s.rt != nil {
		clients := s.rt.Clients()
		total := 0
		for _, n := range clients {
			total += n
		}
		body["realtime"] = map[string]int{"bands": len(clients), "connections": total}
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.rt == nil {
		writeError(w, http.StatusServiceUnavailable, "realtime is disabled")
		return
	}
	bandID := chi.URLParam(r, "bandId")
	id := caller(r)
	if _, err := s.svc.GetBand(r.Context(), bandID, id); err != nil {
		writeOpError(w, r, err)
		return
	}
	s.rt.ServeBand(w, r, bandID, id.UID)
}
