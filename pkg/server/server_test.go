package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudo-god/AI-Receptionist/pkg/agent"
	"github.com/sudo-god/AI-Receptionist/pkg/inference/engine"
	"github.com/sudo-god/AI-Receptionist/pkg/supervisor"
)

type fakeTurns struct {
	reply   agent.Reply
	err     error
	session string
	text    string
	resets  []string
}

func (f *fakeTurns) Handle(ctx context.Context, sessionID string, text string) (agent.Reply, error) {
	f.session = sessionID
	f.text = text
	return f.reply, f.err
}

func (f *fakeTurns) Reset(ctx context.Context, sessionID string) error {
	f.resets = append(f.resets, sessionID)
	return f.err
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestChat(t *testing.T) {
	f := &fakeTurns{reply: agent.Reply{Text: "Client b@x.com not found, please create a client first", Suspended: true}}
	rec := do(t, NewHandler(f), http.MethodPost, "/chat", `{"message":"book b@x.com","account_id":"acct-1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acct-1", f.session)
	assert.Equal(t, "book b@x.com", f.text)
	assert.Equal(t, map[string]interface{}{
		"response":       "Client b@x.com not found, please create a client first",
		"is_interrupted": true,
	}, decodeBody(t, rec))
}

func TestChatRejectsBadRequests(t *testing.T) {
	h := NewHandler(&fakeTurns{})

	rec := do(t, h, http.MethodGet, "/chat", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Invalid request method", decodeBody(t, rec)["error"])

	rec = do(t, h, http.MethodPost, "/chat", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON", decodeBody(t, rec)["error"])

	rec = do(t, h, http.MethodPost, "/chat", `{"message":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatRejectsOversizedBody(t *testing.T) {
	f := &fakeTurns{}
	body := `{"account_id":"acct-1","message":"` + strings.Repeat("a", MaxRequestBytes) + `"}`
	rec := do(t, NewHandler(f), http.MethodPost, "/chat", body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "Request body too large", decodeBody(t, rec)["error"])
	assert.Empty(t, f.session)
}

func TestChatHidesCollaboratorErrors(t *testing.T) {
	f := &fakeTurns{err: engine.Unavailable("openai", errors.New("secret upstream detail"))}
	rec := do(t, NewHandler(f), http.MethodPost, "/chat", `{"message":"hi","account_id":"acct-1"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret upstream detail")
	assert.Equal(t, unavailableMessage, decodeBody(t, rec)["error"])
}

func TestChatProtocolViolationIsConflict(t *testing.T) {
	f := &fakeTurns{err: supervisor.ErrSessionSuspended}
	rec := do(t, NewHandler(f), http.MethodPost, "/chat", `{"message":"hi","account_id":"acct-1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestReset(t *testing.T) {
	f := &fakeTurns{}
	h := NewHandler(f)

	rec := do(t, h, http.MethodPost, "/reset", `{"account_id":"acct-1"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"acct-1"}, f.resets)

	rec = do(t, h, http.MethodPost, "/reset", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := do(t, NewHandler(&fakeTurns{}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
