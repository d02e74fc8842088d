package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	stdsync "sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiflow/studiflow/internal/assistant"
	"github.com/studiflow/studiflow/internal/model"
	"github.com/studiflow/studiflow/internal/store"
	syncctl "github.com/studiflow/studiflow/internal/sync"
)

// memLocal is an in-memory LocalStore for handler tests.
type memLocal struct {
	st *model.AppState
}

func (m *memLocal) Load() (*model.AppState, error) {
	if m.st == nil {
		return nil, model.ErrNotFound
	}
	return m.st, nil
}
func (m *memLocal) Save(st *model.AppState) error { m.st = st; return nil }
func (m *memLocal) Clear() error                  { m.st = nil; return nil }

// scriptedProvider returns a canned assistant response.
type scriptedProvider struct {
	resp *assistant.Response
	err  error
}

func (s *scriptedProvider) Generate(ctx context.Context, req assistant.Request) (*assistant.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

// memRemote is an in-memory RemoteStore whose subscriptions honor the
// caller's context, matching the real driver's lifetime rules.
type memRemote struct {
	mu   stdsync.Mutex
	docs map[string]*model.AppState
	subs map[string]memRemoteSub
}

type memRemoteSub struct {
	ctx context.Context
	fn  store.ChangeFunc
}

func newMemRemote() *memRemote {
	return &memRemote{docs: map[string]*model.AppState{}, subs: map[string]memRemoteSub{}}
}

func (m *memRemote) Save(ctx context.Context, userID string, st *model.AppState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[userID] = st
	return nil
}

func (m *memRemote) Load(ctx context.Context, userID string) (*model.AppState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.docs[userID]
	if !ok {
		return nil, model.ErrNotFound
	}
	return st, nil
}

func (m *memRemote) Subscribe(ctx context.Context, userID string, fn store.ChangeFunc) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.subs[userID] = memRemoteSub{ctx: subCtx, fn: fn}
	m.mu.Unlock()
	return func() {
		cancel()
		m.mu.Lock()
		delete(m.subs, userID)
		m.mu.Unlock()
	}, nil
}

// push simulates a remote change; false when no live subscription exists.
func (m *memRemote) push(userID string, st *model.AppState) bool {
	m.mu.Lock()
	sub, ok := m.subs[userID]
	m.mu.Unlock()
	if !ok || sub.ctx.Err() != nil {
		return false
	}
	sub.fn(st)
	return true
}

func newTestServer(t *testing.T, p assistant.Provider) *httptest.Server {
	return newTestServerWithRemote(t, p, nil)
}

func newTestServerWithRemote(t *testing.T, p assistant.Provider, remote store.RemoteStore) *httptest.Server {
	t.Helper()
	log := zerolog.Nop()
	ctrl := syncctl.New(context.Background(), &memLocal{}, remote, log)
	interp := assistant.New(p, log)
	h := NewHandler(ctrl, interp, func() bool { return true }, log)
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, payload any) (*http.Response, map[string]any) {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req, err := http.NewRequest(method, url, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	if resp.ContentLength != 0 && resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&decoded)
	}
	return resp, decoded
}

func TestGetStateReturnsSeed(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{resp: &assistant.Response{Text: "ok"}})

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/state", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	user := body["user"].(map[string]any)
	assert.Equal(t, "Student Pro", user["name"])
	assert.Len(t, body["subjects"], 4)
}

func TestCreateLogLifecycle(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/logs", map[string]any{
		"type":            "Study",
		"title":           "Linear algebra",
		"subjectId":       "sub_math",
		"durationMinutes": 40,
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Linear algebra", body["title"])
	assert.Equal(t, float64(40), body["durationMinutes"])
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, "user_1", body["userId"])

	resp, state := doJSON(t, http.MethodGet, srv.URL+"/api/state", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, state["logs"], 1)
}

func TestCreateLogDerivesDurationFromEndTime(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{})
	start := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/logs", map[string]any{
		"type":      "Sleep",
		"startTime": start.Format(time.RFC3339),
		"endTime":   start.Add(8 * time.Hour).Format(time.RFC3339),
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(480), body["durationMinutes"])
	assert.Equal(t, "Sleep", body["title"], "title defaults to the activity type")
}

func TestCreateLogRejectsMissingTypeAndDuration(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{})

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/logs", map[string]any{"title": "x", "durationMinutes": 10})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/logs", map[string]any{"type": "Study", "title": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateTimerLog(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/logs/timer", map[string]any{
		"subjectId":       "sub_physics",
		"durationMinutes": 25,
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Studied Physics", body["title"])
	assert.Equal(t, "sub_physics", body["subjectId"])
}

func TestScheduleLifecycle(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/schedules", map[string]any{
		"subjectId": "sub_math",
		"day":       "Monday",
		"startTime": "09:00",
		"endTime":   "10:30",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Math", body["title"], "title falls back to the subject name")
	assert.Equal(t, "Study", body["type"])
	id := body["id"].(string)

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/schedules/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Deleting again stays a 204 no-op.
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/schedules/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestCreateScheduleValidation(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{})

	cases := []map[string]any{
		{"title": "X", "day": "Someday", "startTime": "09:00", "endTime": "10:00"},
		{"title": "X", "day": "Monday", "startTime": "9am", "endTime": "10:00"},
		{"day": "Monday", "startTime": "09:00", "endTime": "10:00"}, // no title, no subject
	}
	for _, payload := range cases {
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/schedules", payload)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "payload %v", payload)
	}
}

func TestSubjectLifecycle(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/subjects", map[string]any{
		"name": "Biology", "color": "#22c55e",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := body["id"].(string)

	resp, body = doJSON(t, http.MethodPatch, srv.URL+"/api/subjects/"+id, map[string]any{
		"name": "Molecular Biology", "color": "#16a34a",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Molecular Biology", body["name"])

	// Deletion without confirmation is refused.
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/subjects/"+id, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/subjects/"+id+"?confirm=true", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, state := doJSON(t, http.MethodGet, srv.URL+"/api/state", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, state["subjects"], 4)
}

func TestUpdateSubjectUnknownIDIs404(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{})
	resp, _ := doJSON(t, http.MethodPatch, srv.URL+"/api/subjects/sub_missing", map[string]any{
		"name": "X", "color": "#ffffff",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateUserField(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{})

	resp, body := doJSON(t, http.MethodPatch, srv.URL+"/api/user", map[string]any{
		"field": "dailyGoalHours", "value": 7.5,
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 7.5, body["dailyGoalHours"])
}

func TestChatAppliesCommandAndSummaryReflectsIt(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{resp: &assistant.Response{
		Text: "Logged 30 minutes of Math. Great work!",
		Calls: []assistant.FunctionCall{{
			Name: "logActivity",
			Args: map[string]any{"type": "Study", "title": "Math session", "durationMinutes": float64(30)},
		}},
	}})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/chat", map[string]any{
		"message": "I studied Math for 30 minutes",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Logged 30 minutes of Math. Great work!", body["reply"])

	state := body["state"].(map[string]any)
	logs := state["logs"].([]any)
	require.Len(t, logs, 1)
	log := logs[0].(map[string]any)
	assert.Equal(t, "sub_math", log["subjectId"])
	assert.Equal(t, float64(30), log["durationMinutes"])

	resp, summary := doJSON(t, http.MethodGet, srv.URL+"/api/analytics/summary", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(30), summary["totalMinutesToday"])
	totals := summary["subjectTotals"].([]any)
	require.Len(t, totals, 1)
	assert.Equal(t, "Math", totals[0].(map[string]any)["name"])
}

func TestChatProviderFailureReturnsApology(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{err: fmt.Errorf("provider down")})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/chat", map[string]any{"message": "hi"})

	require.Equal(t, http.StatusOK, resp.StatusCode, "assistant failures degrade, they do not error")
	assert.Equal(t, assistant.Apology, body["reply"])
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{})
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/chat", map[string]any{"message": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestIdentityWithoutRemoteBackendConflicts(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{})

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/identity", map[string]any{"userId": "u42"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body := doJSON(t, http.MethodDelete, srv.URL+"/api/identity", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "local", body["mode"])
}

func TestIdentitySubscriptionOutlivesTheRequest(t *testing.T) {
	remote := newMemRemote()
	srv := newTestServerWithRemote(t, &scriptedProvider{}, remote)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/identity", map[string]any{"userId": "u42"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "remote", body["mode"])

	// The identity request is long finished; a push from another session
	// must still replace the state.
	pushed := model.DefaultState()
	pushed.User.Name = "From Another Session"
	require.True(t, remote.push("u42", pushed), "subscription must still be live")

	resp, state := doJSON(t, http.MethodGet, srv.URL+"/api/state", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "From Another Session", state["user"].(map[string]any)["name"])
}

func TestResetStateReturnsSeed(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{})

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/subjects", map[string]any{
		"name": "Biology", "color": "#22c55e",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, http.MethodDelete, srv.URL+"/api/state", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["subjects"], 4)
	assert.Equal(t, "Student Pro", body["user"].(map[string]any)["name"])
	assert.Empty(t, body["logs"])

	resp, state := doJSON(t, http.MethodGet, srv.URL+"/api/state", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, state["subjects"], 4)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{})
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}
