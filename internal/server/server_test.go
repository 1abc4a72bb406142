// server_test.go
//
// Session-authenticated data service for the Runway AI pageant training application
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of runway.
// runway is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// runway is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with runway.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/runway/internal/config"
	"github.com/localnerve/runway/internal/database"
	"github.com/localnerve/runway/internal/logging"
	"github.com/localnerve/runway/internal/models"
	"github.com/localnerve/runway/internal/storage"
	"github.com/localnerve/runway/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testServer struct {
	app   *fiber.App
	store *storage.Storage
	db    *gorm.DB
}

func newTestServer(t *testing.T, configure ...func(*config.Config)) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))

	log := logging.Discard()
	store, err := storage.New(db, storage.WithSessionGC(0), storage.WithLogger(log))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := &config.Config{
		PublicDir:    filepath.Join(t.TempDir(), "missing"),
		DBType:       "sqlite",
		SessionTTL:   time.Hour,
		SessionStore: "database",
	}
	for _, fn := range configure {
		fn(cfg)
	}
	app, err := New(Deps{
		Config:  cfg,
		Store:   store,
		Log:     log,
		Metrics: prometheus.NewRegistry(),
		Now: func() time.Time {
			return time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Shutdown() })

	return &testServer{app: app, store: store, db: db}
}

// do sends a request, forwarding the session cookie when one is given
func (ts *testServer) do(t *testing.T, method, path string, body interface{}, cookie *http.Cookie) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatalf("response carried no %s cookie", SessionCookieName)
	return nil
}

func decode(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

// register creates an account and returns its session cookie
func (ts *testServer) register(t *testing.T, username string) *http.Cookie {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/api/register", map[string]string{
		"username": username,
		"password": "correct horse battery",
		"email":    username + "@example.com",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return sessionCookie(t, resp)
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t)

	cookie := ts.register(t, "miss-ohio")

	resp := ts.do(t, http.MethodGet, "/api/user", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var user map[string]interface{}
	decode(t, resp, &user)
	assert.Equal(t, "miss-ohio", user["username"])
	assert.EqualValues(t, 0, user["recordingsCount"])
	assert.NotContains(t, user, "password")

	resp = ts.do(t, http.MethodPost, "/api/logout", nil, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/user", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "Unauthorized", string(raw))

	// logging back in issues a fresh session
	resp = ts.do(t, http.MethodPost, "/api/login", map[string]string{
		"username": "miss-ohio",
		"password": "correct horse battery",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fresh := sessionCookie(t, resp)
	assert.NotEqual(t, cookie.Value, fresh.Value)

	resp = ts.do(t, http.MethodGet, "/api/user", nil, fresh)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "miss-utah")

	for _, creds := range []map[string]string{
		{"username": "miss-utah", "password": "wrong"},
		{"username": "nobody", "password": "correct horse battery"},
	} {
		resp := ts.do(t, http.MethodPost, "/api/login", creds, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		var env utils.ErrorResponseStruct
		decode(t, resp, &env)
		assert.False(t, env.Ok)
		assert.Equal(t, "Invalid username or password", env.Error)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "miss-iowa")

	resp := ts.do(t, http.MethodPost, "/api/register", map[string]string{
		"username": "miss-iowa",
		"password": "another password",
	}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var env utils.ErrorResponseStruct
	decode(t, resp, &env)
	assert.Equal(t, "Username already exists", env.Error)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	ts := newTestServer(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/user"},
		{http.MethodGet, "/api/profile"},
		{http.MethodPost, "/api/profile"},
		{http.MethodGet, "/api/recordings"},
		{http.MethodDelete, "/api/recordings/1"},
		{http.MethodPost, "/api/practice"},
		{http.MethodGet, "/api/pageants"},
		{http.MethodGet, "/api/tracking-settings"},
		{http.MethodPost, "/api/analyze-response"},
	} {
		resp := ts.do(t, route.method, route.path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", route.method, route.path)
	}
}

func TestRecordingsAreIsolatedPerUser(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bob")

	resp := ts.do(t, http.MethodPost, "/api/recordings", map[string]string{"fileUrl": "https://cdn.example.com/walk.mp4"}, alice)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var rec models.Recording
	decode(t, resp, &rec)
	assert.Equal(t, "Untitled Recording", rec.Title)

	resp = ts.do(t, http.MethodGet, "/api/recordings", nil, bob)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bobs []models.Recording
	decode(t, resp, &bobs)
	assert.Empty(t, bobs)

	resp = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/recordings/%d", rec.ID), nil, bob)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/recordings", nil, alice)
	var alices []models.Recording
	decode(t, resp, &alices)
	require.Len(t, alices, 1)

	resp = ts.do(t, http.MethodGet, "/api/user", nil, alice)
	var user models.User
	decode(t, resp, &user)
	assert.EqualValues(t, 1, user.RecordingsCount)

	resp = ts.do(t, http.MethodDelete, "/api/recordings/abc", nil, alice)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/recordings/%d", rec.ID), nil, alice)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProfileCreateThenUpdate(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.register(t, "miss-texas")

	resp := ts.do(t, http.MethodGet, "/api/profile", nil, cookie)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/profile", map[string]interface{}{
		"goal":          "Win state",
		"galleryImages": "https://cdn.example.com/a.jpg",
	}, cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.UserProfile
	decode(t, resp, &created)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg"}, []string(created.GalleryImages))

	resp = ts.do(t, http.MethodPost, "/api/profile", map[string]interface{}{
		"goalDueDate": "2026-09-01",
	}, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.UserProfile
	decode(t, resp, &updated)
	assert.Equal(t, created.ID, updated.ID)
	require.NotNil(t, updated.Goal)
	assert.Equal(t, "Win state", *updated.Goal)
	require.NotNil(t, updated.GoalDueDate)
	assert.Equal(t, 2026, updated.GoalDueDate.Year())
}

func TestPractice(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.register(t, "miss-maine")

	resp := ts.do(t, http.MethodPost, "/api/practice", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var user models.User
	decode(t, resp, &user)
	require.NotNil(t, user.LastPracticeDate)
	assert.Equal(t, time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC), user.LastPracticeDate.UTC())
}

func TestPageants(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.register(t, "miss-nevada")

	resp := ts.do(t, http.MethodPost, "/api/pageants", map[string]string{
		"name":     "Miss Nevada",
		"location": "Reno",
	}, cookie)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var env utils.ErrorResponseStruct
	decode(t, resp, &env)
	assert.Equal(t, "Invalid date", env.Error)

	resp = ts.do(t, http.MethodPost, "/api/pageants", map[string]string{
		"name":     "Miss Nevada",
		"location": "Reno",
		"date":     "not a date",
	}, cookie)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	env = utils.ErrorResponseStruct{}
	decode(t, resp, &env)
	assert.Equal(t, "Invalid date", env.Error)

	resp = ts.do(t, http.MethodPost, "/api/pageants", map[string]string{
		"name":     "Miss Nevada",
		"location": "Reno",
		"date":     "2026-07-12",
	}, cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = ts.do(t, http.MethodDelete, "/api/pageants/9999", nil, cookie)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	env = utils.ErrorResponseStruct{}
	decode(t, resp, &env)
	assert.Equal(t, "Pageant not found", env.Error)

	resp = ts.do(t, http.MethodGet, "/api/pageants", nil, cookie)
	var pageants []models.UpcomingPageant
	decode(t, resp, &pageants)
	assert.Len(t, pageants, 1)
}

func TestEarlyAccessAndGuide(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/early-access", map[string]string{"email": "Fan@Example.com"}, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = ts.do(t, http.MethodPost, "/api/early-access", map[string]string{"email": "fan@example.com"}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = ts.do(t, http.MethodPost, "/api/early-access", map[string]string{"email": "not-an-email"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/early-access", nil, nil)
	var signups []models.EarlyAccessSignup
	decode(t, resp, &signups)
	require.Len(t, signups, 1)
	assert.Equal(t, "fan@example.com", signups[0].Email)

	resp = ts.do(t, http.MethodPost, "/api/send-guide", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// no mailer configured: the visitor still gets a friendly 200
	resp = ts.do(t, http.MethodPost, "/api/send-guide", map[string]string{"email": "not-an-email"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var msg utils.MessageResponseStruct
	decode(t, resp, &msg)
	assert.Equal(t, "Email sending soon. Excited to have you here!", msg.Message)

	records, err := ts.store.GetEmailRecords(context.Background())
	require.NoError(t, err)
	statuses := map[models.EmailStatus]int{}
	for _, r := range records {
		statuses[r.Status]++
	}
	assert.Equal(t, map[models.EmailStatus]int{models.EmailRequested: 1, models.EmailSkipped: 1}, statuses)
}

func TestReferenceMoves(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/reference-moves/7", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/reference-moves/seven", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	move := map[string]interface{}{
		"moveId":      "7",
		"name":        "Half turn",
		"category":    "Walk",
		"imageUrl":    "https://cdn.example.com/turn.png",
		"jointAngles": map[string]float64{"leftElbow": 92.5},
	}
	resp = ts.do(t, http.MethodPost, "/api/reference-moves", move, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	move["name"] = "Half turn (slow)"
	resp = ts.do(t, http.MethodPost, "/api/reference-moves", move, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/reference-moves/7", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got models.ReferenceMove
	decode(t, resp, &got)
	assert.Equal(t, "Half turn (slow)", got.Name)
	assert.Equal(t, 92.5, got.JointAngles.Data()["leftElbow"])

	resp = ts.do(t, http.MethodGet, "/api/reference-moves", nil, nil)
	var all []models.ReferenceMove
	decode(t, resp, &all)
	assert.Len(t, all, 1)
}

func TestCoachWithoutProvider(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/ai-chat", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/ai-chat", map[string]string{"message": "How do I walk?"}, nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestStorageFailureAnswers500(t *testing.T) {
	ts := newTestServer(t)

	sqlDB, err := ts.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	resp := ts.do(t, http.MethodGet, "/api/early-access", nil, nil)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var env utils.ErrorResponseStruct
	decode(t, resp, &env)
	assert.False(t, env.Ok)
	assert.Equal(t, http.StatusInternalServerError, env.Status)
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/health", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/nope", nil, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	var env utils.ErrorResponseStruct
	decode(t, resp, &env)
	assert.Equal(t, utils.ErrorTypeNotFound, env.Type)

	resp = ts.do(t, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGuideRequestsAreThrottled(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) { cfg.RateLimitPerMinute = 1 })

	body := map[string]string{"email": "fan@example.com"}
	resp := ts.do(t, http.MethodPost, "/api/send-guide", body, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/send-guide", body, nil)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	var env utils.ErrorResponseStruct
	decode(t, resp, &env)
	assert.Equal(t, "rateLimit", env.Type)
}
