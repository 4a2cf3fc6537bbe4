package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolscout-core/server/internal/agent/model"
	errx "github.com/toolscout-core/server/internal/core/error"
)

type fakeEngine struct {
	gotReq  model.ChatRequest
	gotMeta model.RequestMeta
	panics  bool
}

func (f *fakeEngine) Handle(_ context.Context, req model.ChatRequest, meta model.RequestMeta) (model.Envelope, int) {
	if f.panics {
		panic("boom")
	}
	f.gotReq, f.gotMeta = req, meta
	return model.Envelope{Response: "ok", TraceID: meta.TraceID, Tier: model.TierDescriptor{Name: "GUEST"}}, http.StatusOK
}

func (f *fakeEngine) Reject(meta model.RequestMeta, appErr *errx.AppError) (model.Envelope, int) {
	return model.Envelope{Response: appErr.Message, TraceID: meta.TraceID, Code: string(appErr.Code)}, errx.StatusOf(appErr.Code)
}

func newTestServer(engine ChatEngine) *Server {
	gin.SetMode(gin.TestMode)
	return New(engine, model.ServerConfig{Addr: "127.0.0.1:0", SessionCookie: "sid", ShutdownTimeout: time.Second})
}

func do(s *Server, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) model.Envelope {
	t.Helper()
	var env model.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestChatForwardsRequestAndMeta(t *testing.T) {
	eng := &fakeEngine{}
	w := do(newTestServer(eng), http.MethodPost, "/api/chat",
		`{"message":"이미지 툴 추천해줘","template":"compare","toolsOnly":true,"kbMode":"db"}`,
		&http.Cookie{Name: "sid", Value: "session-1"})

	assert.Equal(t, http.StatusOK, w.Code)
	traceID := w.Header().Get(TraceHeader)
	require.NotEmpty(t, traceID)
	assert.Equal(t, traceID, decode(t, w).TraceID)

	assert.Equal(t, "이미지 툴 추천해줘", eng.gotReq.Message)
	assert.Equal(t, "compare", eng.gotReq.Template)
	assert.True(t, eng.gotReq.ToolsOnly)
	assert.Equal(t, model.KBModeDB, eng.gotReq.KBMode)
	assert.Equal(t, "session-1", eng.gotMeta.SessionID)
	assert.NotEmpty(t, eng.gotMeta.ClientKey)
}

func TestChatRejectsMalformedBody(t *testing.T) {
	w := do(newTestServer(&fakeEngine{}), http.MethodPost, "/api/chat", `{"message":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Equal(t, string(errx.CodeInputInvalid), env.Code)
	assert.Equal(t, w.Header().Get(TraceHeader), env.TraceID)
	assert.NotEmpty(t, env.TraceID)
}

func TestPanicReturnsInternalEnvelope(t *testing.T) {
	w := do(newTestServer(&fakeEngine{panics: true}), http.MethodPost, "/api/chat", `{"message":"hi"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decode(t, w)
	assert.Equal(t, string(errx.CodeInternal), env.Code)
	assert.Equal(t, errx.SystemErrorMessage, env.Response)
	assert.NotContains(t, env.Response, "boom")
	assert.NotEmpty(t, w.Header().Get(TraceHeader))
}

func TestTraceIDsAreUnique(t *testing.T) {
	s := newTestServer(&fakeEngine{})
	a := do(s, http.MethodGet, "/healthz", "").Header().Get(TraceHeader)
	b := do(s, http.MethodGet, "/healthz", "").Header().Get(TraceHeader)
	assert.NotEqual(t, a, b)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(&fakeEngine{})

	w := do(s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "toolscout_")
}

func TestRunStopsOnCancel(t *testing.T) {
	s := newTestServer(&fakeEngine{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
