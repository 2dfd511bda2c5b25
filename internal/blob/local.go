package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"net/url"
	"os"
	pathpkg "path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

// LocalStore keeps blobs on disk under root and serves them itself.
// Signed URLs carry an HS256 token whose subject is the object path.
type LocalStore struct {
	root    string
	baseURL string
	secret  []byte
}

func NewLocalStore(root, baseURL string, secret []byte) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blob dir: %w", err)
	}
	return &LocalStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
	}, nil
}

func (s *LocalStore) abs(p string) (string, error) {
	clean := pathpkg.Clean("/" + p)
	if clean == "/" {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.root, filepath.FromSlash(clean[1:])), nil
}

func (s *LocalStore) Put(ctx context.Context, data []byte, path, contentType string) (string, error) {
	dst, err := s.abs(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("blob mkdir: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("blob write: %w", err)
	}
	return path, nil
}

func (s *LocalStore) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	if _, err := s.abs(path); err != nil {
		return "", err
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   path,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("blob sign: %w", err)
	}

	segs := strings.Split(path, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return s.baseURL + "/blobs/" + strings.Join(segs, "/") + "?token=" + url.QueryEscape(tok), nil
}

func (s *LocalStore) Delete(ctx context.Context, path string) error {
	dst, err := s.abs(path)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("blob delete: %w", err)
	}
	return nil
}

// Router serves GET /blobs/* for URLs produced by SignedURL. The token,
// not the URL path, decides which object is read.
func (s *LocalStore) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/blobs/*", s.handleDownload)
	return r
}

func (s *LocalStore) handleDownload(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("token")
	if raw == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		http.Error(w, "invalid or expired link", http.StatusForbidden)
		return
	}

	src, err := s.abs(claims.Subject)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}
	data, err := os.ReadFile(src)
	if errors.Is(err, fs.ErrNotExist) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("blob: read %s: %v", claims.Subject, err)
		http.Error(w, "read error", http.StatusInternalServerError)
		return
	}
	http.ServeContent(w, r, pathpkg.Base(claims.Subject), time.Time{}, bytes.NewReader(data))
}
