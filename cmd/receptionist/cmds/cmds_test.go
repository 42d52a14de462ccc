package cmds

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudo-god/AI-Receptionist/pkg/agent"
	"github.com/sudo-god/AI-Receptionist/pkg/config"
	"github.com/sudo-god/AI-Receptionist/pkg/inference/engine/enginetest"
	"github.com/sudo-god/AI-Receptionist/pkg/mail"
	"github.com/sudo-god/AI-Receptionist/pkg/store"
	"github.com/sudo-god/AI-Receptionist/pkg/supervisor"
	"github.com/sudo-god/AI-Receptionist/pkg/toolbox"
)

func testConfig() *config.Config {
	cfg := &config.Config{
		Store: config.StoreConfig{Driver: config.DriverMemory},
		Agent: config.AgentConfig{MaxClarificationAttempts: 3, DefaultAgent: agent.ReceptionistAgent},
	}
	cfg.Google.TimeZone = "UTC"
	cfg.Google.EventDuration = time.Hour
	return cfg
}

func seededStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	f, err := LoadFixture(filepath.Join("testdata", "fixture.yaml"))
	require.NoError(t, err)
	s := store.NewMemoryStore()
	require.NoError(t, f.Apply(context.Background(), s))
	return s
}

func TestLoadFixture(t *testing.T) {
	s := seededStore(t)

	a, ok := s.Account("demo")
	require.True(t, ok)
	assert.Len(t, a.Clients, 1)
	assert.Len(t, a.Jobs, 2)
	assert.Len(t, a.Inquiries, 1)

	info, err := s.FindBusinessInfo(context.Background(), "demo", "pricing")
	require.NoError(t, err)
	require.Len(t, info, 1)
	assert.Equal(t, "Call-out fee is 80 dollars", info[0].Content)
}

func TestLoadFixtureRequiresAccountID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("accounts:\n  - clients: []\n"), 0o600))
	_, err := LoadFixture(path)
	assert.Error(t, err)
}

func TestNewStoreMemory(t *testing.T) {
	s, err := NewStore(context.Background(), testConfig())
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryStore{}, s)
}

func TestChatSession(t *testing.T) {
	s := seededStore(t)
	rec := &mail.Recorder{}
	model := enginetest.New().
		Call(enginetest.Call(supervisor.RouteTool, map[string]any{"agent": agent.ReceptionistAgent})).
		Call(enginetest.Call(toolbox.BookJobTool, map[string]any{
			"title": "Repair", "client_email": "b@x.com", "start_time": "2030-01-01 09:00",
		})).
		Text("Bob is now a client and booked for 9am.")
	helper := enginetest.New().
		Call(enginetest.Call(toolbox.CrudClientTool, map[string]any{
			"operation": "create", "client_email": "b@x.com", "client_name": "Bob",
		}))

	ctx := context.Background()
	app, err := NewApp(ctx, testConfig(), WithEngines(model, helper), WithStore(s), WithSender(rec))
	require.NoError(t, err)
	defer func() { _ = app.Close(ctx) }()

	in := strings.NewReader("book a repair for b@x.com at 9\nyes, create Bob\nexit\n")
	var out bytes.Buffer
	require.NoError(t, runChat(ctx, app.Supervisor, "demo", in, &out))

	assert.Contains(t, out.String(), "Client b@x.com not found, please create a client first\n(awaiting your answer)")
	assert.Contains(t, out.String(), "Bob is now a client and booked for 9am.")

	booked, err := s.Slots(ctx, "demo", store.BookingJobs, true)
	require.NoError(t, err)
	require.Len(t, booked, 1)
	assert.Equal(t, "b@x.com", booked[0].ClientEmail)
	assert.Len(t, rec.CreatedEvents(), 1)
	assert.Equal(t, 0, model.Remaining())
}

func TestChatResetAndErrors(t *testing.T) {
	s := seededStore(t)
	model := enginetest.New().
		Call(enginetest.Call(supervisor.RouteTool, map[string]any{"agent": agent.ReceptionistAgent})).
		Call(enginetest.Call(toolbox.BookJobTool, map[string]any{
			"title": "Repair", "client_email": "b@x.com", "start_time": "2030-01-01 09:00",
		}))

	ctx := context.Background()
	app, err := NewApp(ctx, testConfig(), WithEngines(model, enginetest.New()), WithStore(s), WithSender(&mail.Recorder{}))
	require.NoError(t, err)
	defer func() { _ = app.Close(ctx) }()

	in := strings.NewReader("book b@x.com\n/reset\nhello\n")
	var out bytes.Buffer
	require.NoError(t, runChat(ctx, app.Supervisor, "demo", in, &out))

	assert.Contains(t, out.String(), "(pending question discarded)")
	// the scripted model has nothing left for the last message
	assert.Contains(t, out.String(), "Sorry, something went wrong, please try again.")

	sess, err := s.LoadSession(ctx, "demo")
	require.NoError(t, err)
	assert.False(t, sess.IsSuspended())
}
