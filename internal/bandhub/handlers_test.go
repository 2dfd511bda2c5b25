package bandhub

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LMSBAND/bandhub/internal/identity"
)

type fakeRealtime struct {
	bandID, uid string
	clients     map[string]int
}

func (f *fakeRealtime) ServeBand(w http.ResponseWriter, _ *http.Request, bandID, uid string) {
	f.bandID, f.uid = bandID, uid
	w.WriteHeader(http.StatusSwitchingProtocols)
}

func (f *fakeRealtime) Clients() map[string]int { return f.clients }

func setupServer(t *testing.T, rt Realtime, opts ServerOptions) (http.Handler, *fixture) {
	t.Helper()
	f := newFixture(t)
	srv := NewServer(f.svc, identity.HeaderVerifier{}, rt, opts)
	return srv.Router(), f
}

func do(t *testing.T, h http.Handler, method, path, uid string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if uid != "" {
		req.Header.Set("X-User-Id", uid)
		req.Header.Set("X-User-Name", strings.ToUpper(uid))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func doJSON(t *testing.T, h http.Handler, method, path, uid, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	return do(t, h, method, path, uid, r, "application/json")
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	decodeBody(t, w, &body)
	return body["error"]
}

func multipartFile(t *testing.T, field, filename, mimeType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHandleHealth(t *testing.T) {
	h, _ := setupServer(t, nil, ServerOptions{})

	w := doJSON(t, h, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"bandhub"}`, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandleHealth_RealtimeTotals(t *testing.T) {
	rt := &fakeRealtime{clients: map[string]int{"b1": 2, "b2": 1}}
	h, _ := setupServer(t, rt, ServerOptions{})

	w := doJSON(t, h, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"bandhub","realtime":{"bands":2,"connections":3}}`, w.Body.String())
}

func TestRoutesRequireIdentity(t *testing.T) {
	h, _ := setupServer(t, nil, ServerOptions{})

	for _, path := range []string{"/api/bands", "/api/bands/b1", "/api/bands/b1/media", "/api/bands/b1/events"} {
		w := doJSON(t, h, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestCORSPreflight(t *testing.T) {
	h, _ := setupServer(t, nil, ServerOptions{CORSAllowedOrigin: "https://app.example.com"})

	w := doJSON(t, h, http.MethodOptions, "/api/bands", "", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestHandleBands(t *testing.T) {
	h, f := setupServer(t, nil, ServerOptions{})
	f.svc.inviteCode = func() (string, error) { return "AB12CD", nil }

	t.Run("Create", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPost, "/api/bands", "u1", `{"name":"The Sound"}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var b Band
		decodeBody(t, w, &b)
		assert.Equal(t, "The Sound", b.Name)
		assert.Equal(t, "AB12CD", b.InviteCode)
		assert.Equal(t, roleAdmin, b.Members["u1"].Role)
		assert.Equal(t, "U1", b.Members["u1"].DisplayName)
	})

	bands, err := f.svc.ListBands(context.Background(), u1)
	require.NoError(t, err)
	require.Len(t, bands, 1)
	bandID := bands[0].ID

	t.Run("CreateMissingName", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPost, "/api/bands", "u1", `{"name":""}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "name is required", errorMessage(t, w))
	})

	t.Run("UnknownField", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPost, "/api/bands", "u1", `{"name":"x","genre":"punk"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("EmptyBody", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPost, "/api/bands", "u1", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "request body is required", errorMessage(t, w))
	})

	t.Run("GetAsNonMember", func(t *testing.T) {
		w := doJSON(t, h, http.MethodGet, "/api/bands/"+bandID, "u2", "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "not a member of this band", errorMessage(t, w))
	})

	t.Run("GetMissing", func(t *testing.T) {
		w := doJSON(t, h, http.MethodGet, "/api/bands/nope", "u1", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Join", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPost, "/api/bands/join", "u2", `{"invite_code":"ab12cd"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `{"id":"`+bandID+`","name":"The Sound"}`, w.Body.String())

		w = doJSON(t, h, http.MethodGet, "/api/bands/"+bandID, "u2", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("JoinInvalidCode", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPost, "/api/bands/join", "u3", `{"invite_code":"ZZZZZZ"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "invalid invite code", errorMessage(t, w))
	})

	t.Run("ListOnlyOwnBands", func(t *testing.T) {
		w := doJSON(t, h, http.MethodGet, "/api/bands", "u3", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("RefreshInvite", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPost, "/api/bands/"+bandID+"/invite", "u2", "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "only admins can refresh invite codes", errorMessage(t, w))

		f.svc.inviteCode = func() (string, error) { return "NEW123", nil }
		w = doJSON(t, h, http.MethodPost, "/api/bands/"+bandID+"/invite", "u1", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"invite_code":"NEW123"}`, w.Body.String())
	})

	t.Run("InviteQR", func(t *testing.T) {
		w := doJSON(t, h, http.MethodGet, "/api/bands/"+bandID+"/invite/qr", "u1", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
	})
}

func TestHandleMedia(t *testing.T) {
	h, f := setupServer(t, nil, ServerOptions{})
	b := f.band(t, u1, "The Sound", "AB12CD")
	base := "/api/bands/" + b.ID + "/media"

	body, ct := multipartFile(t, "file", "take.wav", "audio/wav", silentWAV(t, 1, 8000))
	w := do(t, h, http.MethodPost, base+"/upload", "u1", body, ct)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var res UploadResult
	decodeBody(t, w, &res)
	assert.Equal(t, "take.wav", res.Name)
	assert.Equal(t, mediaAudio, res.Type)
	item := base + "/" + res.MediaID

	t.Run("UploadMissingFile", func(t *testing.T) {
		body, ct := multipartFile(t, "other", "take.wav", "audio/wav", []byte("x"))
		w := do(t, h, http.MethodPost, base+"/upload", "u1", body, ct)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("UploadNonMember", func(t *testing.T) {
		body, ct := multipartFile(t, "file", "x.png", "image/png", []byte("x"))
		w := do(t, h, http.MethodPost, base+"/upload", "u2", body, ct)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("ListOmitsPeaks", func(t *testing.T) {
		w := doJSON(t, h, http.MethodGet, base+"?type=audio", "u1", "")
		require.Equal(t, http.StatusOK, w.Code)
		var items []map[string]any
		decodeBody(t, w, &items)
		require.Len(t, items, 1)
		assert.NotContains(t, items[0], "peaks")
		assert.Contains(t, items[0], "duration")
	})

	t.Run("GetKeepsPeaks", func(t *testing.T) {
		w := doJSON(t, h, http.MethodGet, item, "u1", "")
		require.Equal(t, http.StatusOK, w.Code)
		var m Media
		decodeBody(t, w, &m)
		assert.Len(t, m.Peaks, 800)
	})

	t.Run("AudioURL", func(t *testing.T) {
		w := doJSON(t, h, http.MethodGet, item+"/audio-url", "u1", "")
		require.Equal(t, http.StatusOK, w.Code)
		var out map[string]string
		decodeBody(t, w, &out)
		assert.Contains(t, out["url"], "take.wav")
	})

	t.Run("Patch", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPatch, item, "u1", `{"tags":["demo"]}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ok":true}`, w.Body.String())

		w = doJSON(t, h, http.MethodPatch, item, "u1", `{"type":"video"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code, "type is not patchable")

		w = doJSON(t, h, http.MethodGet, base+"?tag=demo", "u1", "")
		var items []Media
		decodeBody(t, w, &items)
		assert.Len(t, items, 1)
	})

	t.Run("PatchMissing", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPatch, base+"/nope", "u1", `{"name":"x"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("UpstreamErrorHidesCause", func(t *testing.T) {
		f.blobs.putErr = assert.AnError
		defer func() { f.blobs.putErr = nil }()
		body, ct := multipartFile(t, "file", "x.png", "image/png", []byte("x"))
		w := do(t, h, http.MethodPost, base+"/upload", "u1", body, ct)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, "blob storage error", errorMessage(t, w))
	})

	t.Run("Delete", func(t *testing.T) {
		w := doJSON(t, h, http.MethodDelete, item, "u1", "")
		require.Equal(t, http.StatusOK, w.Code)
		w = doJSON(t, h, http.MethodGet, item, "u1", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleUpload_TooLarge(t *testing.T) {
	h, f := setupServer(t, nil, ServerOptions{MaxUploadBytes: 1024})
	b := f.band(t, u1, "The Sound", "AB12CD")

	body, ct := multipartFile(t, "file", "big.bin", "application/octet-stream", bytes.Repeat([]byte("x"), 4096))
	w := do(t, h, http.MethodPost, "/api/bands/"+b.ID+"/media/upload", "u1", body, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestHandleComments(t *testing.T) {
	h, f := setupServer(t, nil, ServerOptions{})
	b := f.band(t, u1, "The Sound", "AB12CD")
	f.join(t, u2, "AB12CD")
	m := f.upload(t, b.ID, u1, "song.mp3", "audio/mpeg", []byte("a"))
	base := "/api/bands/" + b.ID + "/media/" + m.MediaID + "/comments"

	w := doJSON(t, h, http.MethodPost, base, "u1", `{"timestamp":12.5,"text":"bass is late"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var c Comment
	decodeBody(t, w, &c)
	assert.Equal(t, "U1", c.AuthorDisplayName)
	assert.Equal(t, 1, commentCount(t, f, m))

	t.Run("MissingTimestamp", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPost, base, "u1", `{"text":"x"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "timestamp is required", errorMessage(t, w))
	})

	t.Run("List", func(t *testing.T) {
		w := doJSON(t, h, http.MethodGet, base, "u2", "")
		require.Equal(t, http.StatusOK, w.Code)
		var out []map[string]any
		decodeBody(t, w, &out)
		require.Len(t, out, 1)
		assert.Equal(t, "U1", out[0]["author"])
	})

	t.Run("ResolveByOtherMember", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPatch, base+"/"+c.ID, "u2", `{"resolved":true}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Replies", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPost, base+"/"+c.ID+"/replies", "u2", `{"text":"agreed"}`)
		require.Equal(t, http.StatusCreated, w.Code)
		w = doJSON(t, h, http.MethodGet, base+"/"+c.ID+"/replies", "u1", "")
		require.Equal(t, http.StatusOK, w.Code)
		var out []Reply
		decodeBody(t, w, &out)
		assert.Len(t, out, 1)
	})

	t.Run("DeleteByNonAuthor", func(t *testing.T) {
		w := doJSON(t, h, http.MethodDelete, base+"/"+c.ID, "u2", "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "can only delete your own comments", errorMessage(t, w))
	})

	t.Run("DeleteByAuthor", func(t *testing.T) {
		w := doJSON(t, h, http.MethodDelete, base+"/"+c.ID, "u1", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, commentCount(t, f, m))
	})
}

func TestHandleEvents(t *testing.T) {
	h, f := setupServer(t, nil, ServerOptions{})
	b := f.band(t, u1, "The Sound", "AB12CD")
	base := "/api/bands/" + b.ID + "/events"

	w := doJSON(t, h, http.MethodPost, base, "u1",
		`{"title":"Gig","start":"2025-05-02T20:00:00Z","end":"2025-05-02T23:00:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var ev Event
	decodeBody(t, w, &ev)
	assert.Equal(t, "other", ev.Type)
	assert.Equal(t, rsvpGoing, ev.RSVP["u1"])

	w = doJSON(t, h, http.MethodPost, base+"/"+ev.ID+"/rsvp", "u1", `{"status":"not_going"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, h, http.MethodPost, base+"/"+ev.ID+"/rsvp", "u1", `{"status":"yes"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, http.MethodPatch, base+"/"+ev.ID, "u1",
		`{"title":"Gig","type":"gig","start":"2025-05-02T20:00:00Z","end":"2025-05-02T23:30:00Z","linked_media":["m1"]}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, http.MethodGet, base, "u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var out []Event
	decodeBody(t, w, &out)
	require.Len(t, out, 1)
	assert.Equal(t, "gig", out[0].Type)
	assert.Equal(t, rsvpNotGoing, out[0].RSVP["u1"])
}

func TestHandleChat(t *testing.T) {
	h, f := setupServer(t, nil, ServerOptions{})
	b := f.band(t, u1, "The Sound", "AB12CD")
	base := "/api/bands/" + b.ID + "/channels"

	w := doJSON(t, h, http.MethodPost, base, "u1", `{"name":"#Gear Talk"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var ch Channel
	decodeBody(t, w, &ch)
	assert.Equal(t, "gear-talk", ch.Name)

	w = doJSON(t, h, http.MethodPost, base, "u1", `{"name":"#"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, http.MethodPost, base+"/"+ch.ID+"/messages", "u1", `{"text":"new pedal"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var m Message
	decodeBody(t, w, &m)
	assert.Equal(t, "U1", m.AuthorDisplayName)

	w = doJSON(t, h, http.MethodGet, base+"/"+ch.ID+"/messages", "u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var msgs []Message
	decodeBody(t, w, &msgs)
	require.Len(t, msgs, 1)
	assert.Equal(t, "new pedal", msgs[0].Text)

	w = doJSON(t, h, http.MethodGet, base, "u2", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, h, http.MethodDelete, base+"/"+ch.ID, "u1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	w = doJSON(t, h, http.MethodGet, base+"/"+ch.ID+"/messages", "u1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "channel not found", errorMessage(t, w))

	w = doJSON(t, h, http.MethodGet, base, "u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestHandleWS(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		h, f := setupServer(t, nil, ServerOptions{})
		b := f.band(t, u1, "The Sound", "AB12CD")
		w := doJSON(t, h, http.MethodGet, "/api/bands/"+b.ID+"/ws", "u1", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("MembersOnly", func(t *testing.T) {
		rt := &fakeRealtime{}
		h, f := setupServer(t, rt, ServerOptions{})
		b := f.band(t, u1, "The Sound", "AB12CD")

		w := doJSON(t, h, http.MethodGet, "/api/bands/"+b.ID+"/ws", "u2", "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, rt.uid)

		w = doJSON(t, h, http.MethodGet, "/api/bands/"+b.ID+"/ws", "u1", "")
		assert.Equal(t, http.StatusSwitchingProtocols, w.Code)
		assert.Equal(t, b.ID, rt.bandID)
		assert.Equal(t, "u1", rt.uid)
	})
}
