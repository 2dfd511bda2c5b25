package bandhub

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type createBandRequest struct {
	Name string `json:"name"`
}

type joinBandRequest struct {
	InviteCode string `json:"invite_code"`
}

func (s *Server) handleCreateBand(w http.ResponseWriter, r *http.Request) {
	var body createBandRequest
	if err := decodeJSON(r, &body); err != nil {
		writeOpError(w, r, err)
		return
	}
	b, err := s.svc.CreateBand(r.Context(), caller(r), body.Name)
	if err != nil {
		writeOpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleListBands(w http.ResponseWriter, r *http.Request) {
	bands, err := s.svc.ListBands(r.Context(), caller(r))
	if err != nil {
		writeOpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bands)
}

func (s *Server) handleGetBand(w http.ResponseWriter, r *http.Request) {
	b, err := s.svc.GetBand(r.Context(), chi.URLParam(r, "bandId"), caller(r))
	if err != nil {
		writeOpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleJoinBand(w http.ResponseWriter, r *http.Request) {
	var body joinBandRequest
	if err := decodeJSON(r, &body); err != nil {
		writeOpError(w, r, err)
		return
	}
	b, err := s.svc.JoinBand(r.Context(), caller(r), body.InviteCode)
	if err != nil {
		writeOpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": b.ID, "name": b.Name})
}

func (s *Server) handleRefreshInvite(w http.ResponseWriter, r *http.Request) {
	code, err := s.svc.RefreshInvite(r.Context(), chi.URLParam(r, "bandId"), caller(r))
	if err != nil {
		writeOpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"invite_code": code})
}

func (s *Server) handleInviteQR(w http.ResponseWriter, r *http.Request) {
	png, err := s.svc.InviteQR(r.Context(), chi.URLParam(r, "bandId"), caller(r))
	if err != nil {
		writeOpError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
