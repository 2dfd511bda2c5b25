package bandhub

import "net/http"

type createCommentRequest struct {
	Timestamp *float64 `json:"timestamp"`
	Text      string   `json:"text"`
}

type replyRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var body createCommentRequest
	if err := decodeJSON(r, &body); err != nil {
		writeOpError(w, r, err)
		return
	}
	if body.Timestamp == nil {
		writeError(w, http.StatusBadRequest, "timestamp is required")
		return
	}
	c, err := s.svc.CreateComment(r.Context(), mediaRef(r), caller(r), *body.Timestamp, body.Text)
	if err != nil {
		writeOpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.ListComments(r.Context(), mediaRef(r), caller(r))
	if err != nil {
		writeOpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	var patch CommentPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeOpError(w, r, err)
		return
	}
	if err := s.svc.UpdateComment(r.Context(), commentRef(r), caller(r), patch); err != nil {
		writeOpError(w, r, err)
		return
	}
	writeOK(w)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteComment(r.Context(), commentRef(r), caller(r)); err != nil {
		writeOpError(w, r, err)
		return
	}
	writeOK(w)
}

func (s *Server) handleAddReply(w http.ResponseWriter, r *http.Request) {
	var body replyRequest
	if err := decodeJSON(r, &body); err != nil {
		writeOpError(w, r, err)
		return
	}
	reply, err := s.svc.AddReply(r.Context(), commentRef(r), caller(r), body.Text)
	if err != nil {
		writeOpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reply)
}

func (s *Server) handleListReplies(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.ListReplies(r.Context(), commentRef(r), caller(r))
	if err != nil {
		writeOpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
