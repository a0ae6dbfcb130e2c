// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/waypoint/internal/auth"
	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/locations"
	"github.com/tomtom215/waypoint/internal/mapview"
	"github.com/tomtom215/waypoint/internal/photoday"
	ws "github.com/tomtom215/waypoint/internal/websocket"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testUser     = "admin"
	testPassword = "correct-horse-battery-staple"
	testOrigin   = "http://localhost:3000"
)

const testDataset = `{"locations": [
  {"id": "paris", "name": "Paris", "country": "France", "latitude": 48.8566, "longitude": 2.3522,
   "albums": ["europe-2024"],
   "photos": [{"id": "p-1", "url": "paris/1.jpg", "caption": "Seine"}, {"id": "p-2", "url": "paris/2.jpg"}]},
  {"id": "versailles", "name": "Versailles", "country": "France", "latitude": 48.8049, "longitude": 2.1204,
   "photo_count": 4},
  {"id": "kyoto", "name": "Kyoto", "country": "Japan", "latitude": 35.0116, "longitude": 135.7681,
   "photos": [{"id": "k-1", "url": "kyoto/1.jpg"}]}
]}`

type staticSource struct {
	data string
	err  error
}

func (s *staticSource) Kind() string { return "static" }

func (s *staticSource) Fetch(context.Context) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte(s.data), nil
}

type testEnv struct {
	handler *Handler
	router  http.Handler
	store   *locations.Store
	source  *staticSource
	jwt     *auth.JWTManager
}

type envOptions struct {
	authMode   string
	skipLoad   bool
	middleware *ChiMiddlewareConfig
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()
	if opts.authMode == "" {
		opts.authMode = "jwt"
	}
	if opts.middleware == nil {
		opts.middleware = DefaultChiMiddlewareConfig()
		opts.middleware.RateLimitDisabled = true
	}

	src := &staticSource{data: testDataset}
	store := locations.NewStore(src)
	if !opts.skipLoad {
		if _, err := store.Reload(context.Background()); err != nil {
			t.Fatalf("Reload() error = %v", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	cfg := &config.Config{Security: config.SecurityConfig{
		AuthMode:       opts.authMode,
		JWTSecret:      testSecret,
		SessionTimeout: time.Hour,
		AdminUsername:  testUser,
		AdminPassword:  string(hash),
		CORSOrigins:    []string{testOrigin},
	}}

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	admin, err := auth.NewAdminAuthenticator(cfg.Security.AdminUsername, cfg.Security.AdminPassword)
	if err != nil {
		t.Fatalf("NewAdminAuthenticator() error = %v", err)
	}

	h := NewHandler(Deps{
		Store:  store,
		Maps:   mapview.New(store, nil, nil),
		Picker: photoday.NewPicker(store, nil, 30),
		Hub:    ws.NewHub(),
		Config: cfg,
		JWT:    jwtManager,
		Admin:  admin,
	})
	h.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }

	authMW := auth.NewMiddleware(jwtManager, cfg.Security.AuthMode, WriteError)
	router := NewRouter(h, authMW, NewChiMiddleware(opts.middleware)).Setup()

	return &testEnv{handler: h, router: router, store: store, source: src, jwt: jwtManager}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func (e *testEnv) do(t *testing.T, method, target string, body interface{}, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("Marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var env envelope
	if ct := rec.Header().Get("Content-Type"); len(ct) >= 16 && ct[:16] == "application/json" {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: invalid envelope %q: %v", method, target, rec.Body.String(), err)
		}
	}
	return rec, env
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	token, _, err := e.jwt.GenerateToken(testUser, auth.RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	return token
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, want, rec.Body.String())
	}
}

func expectErrorCode(t *testing.T, env envelope, want string) {
	t.Helper()
	if env.Success || env.Error == nil {
		t.Fatalf("expected error envelope, got %+v", env)
	}
	if env.Error.Code != want {
		t.Errorf("error code = %q, want %q (%s)", env.Error.Code, want, env.Error.Message)
	}
}
