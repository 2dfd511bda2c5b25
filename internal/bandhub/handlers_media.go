package bandhub

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Form parts beyond this stay on disk while parsing.
const multipartMemory = 32 << 20

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read file")
		return
	}

	res, err := s.svc.Upload(r.Context(), chi.URLParam(r, "bandId"), caller(r), Upload{
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Data:     data,
	})
	if err != nil {
		writeOpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleListMedia(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := s.svc.ListMedia(r.Context(), chi.URLParam(r, "bandId"), caller(r), q.Get("type"), q.Get("tag"))
	if err != nil {
		writeOpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetMedia(w http.ResponseWriter, r *http.Request) {
	m, err := s.svc.GetMedia(r.Context(), mediaRef(r), caller(r))
	if err != nil {
		writeOpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleAudioURL(w http.ResponseWriter, r *http.Request) {
	url, err := s.svc.AudioURL(r.Context(), mediaRef(r), caller(r))
	if err != nil {
		writeOpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) handleUpdateMedia(w http.ResponseWriter, r *http.Request) {
	var patch MediaPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeOpError(w, r, err)
		return
	}
	if err := s.svc.UpdateMedia(r.Context(), mediaRef(r), caller(r), patch); err != nil {
		writeOpError(w, r, err)
		return
	}
	writeOK(w)
}

func (s *Server) handleDeleteMedia(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteMedia(r.Context(), mediaRef(r), caller(r)); err != nil {
		writeOpError(w, r, err)
		return
	}
	writeOK(w)
}
