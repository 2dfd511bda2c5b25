package bandhub

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type channelRequest struct {
	Name string `json:"name"`
}

type messageRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleCreateChannel(w http.ResponseWriter, r *http.Request) {
	var body channelRequest
	if err := decodeJSON(r, &body); err != nil {
		writeOpError(w, r, err)
		return
	}
	ch, err := s.svc.CreateChannel(r.Context(), chi.URLParam(r, "bandId"), caller(r), body.Name)
	if err != nil {
		writeOpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ch)
}

func (s *Server) handleListChannels(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.ListChannels(r.Context(), chi.URLParam(r, "bandId"), caller(r))
	if err != nil {
		writeOpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteChannel(w http.ResponseWriter, r *http.Request) {
	err := s.svc.DeleteChannel(r.Context(), chi.URLParam(r, "bandId"), chi.URLParam(r, "channelId"), caller(r))
	if err != nil {
		writeOpError(w, r, err)
		return
	}
	writeOK(w)
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var body messageRequest
	if err := decodeJSON(r, &body); err != nil {
		writeOpError(w, r, err)
		return
	}
	m, err := s.svc.PostMessage(r.Context(), chi.URLParam(r, "bandId"), chi.URLParam(r, "channelId"), caller(r), body.Text)
	if err != nil {
		writeOpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.ListMessages(r.Context(), chi.URLParam(r, "bandId"), chi.URLParam(r, "channelId"), caller(r))
	if err != nil {
		writeOpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
