package bandhub

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type rsvpRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var in EventInput
	if err := decodeJSON(r, &in); err != nil {
		writeOpError(w, r, err)
		return
	}
	ev, err := s.svc.CreateEvent(r.Context(), chi.URLParam(r, "bandId"), caller(r), in)
	if err != nil {
		writeOpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.ListEvents(r.Context(), chi.URLParam(r, "bandId"), caller(r))
	if err != nil {
		writeOpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var in EventInput
	if err := decodeJSON(r, &in); err != nil {
		writeOpError(w, r, err)
		return
	}
	err := s.svc.UpdateEvent(r.Context(), chi.URLParam(r, "bandId"), chi.URLParam(r, "eventId"), caller(r), in)
	if err != nil {
		writeOpError(w, r, err)
		return
	}
	writeOK(w)
}

func (s *Server) handleRSVP(w http.ResponseWriter, r *http.Request) {
	var body rsvpRequest
	if err := decodeJSON(r, &body); err != nil {
		writeOpError(w, r, err)
		return
	}
	err := s.svc.RSVP(r.Context(), chi.URLParam(r, "bandId"), chi.URLParam(r, "eventId"), caller(r), body.Status)
	if err != nil {
		writeOpError(w, r, err)
		return
	}
	writeOK(w)
}
