package plugins

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"minicloud/pkg/apitest"
	"minicloud/pkg/client"
	"minicloud/pkg/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) (*Manager, *apitest.Server, *notify.Recorder) {
	t.Helper()
	srv := apitest.New(t)
	rec := &notify.Recorder{}
	m := New(srv.Client(srv.Token(srv.UserID(apitest.AdminUsername))), WithNotifier(rec))
	require.NoError(t, m.Load(context.Background()))
	srv.ResetCounts()
	return m, srv, rec
}

func TestManager_Load(t *testing.T) {
	m, _, _ := newManager(t)

	list := m.Plugins()
	require.Len(t, list, 3)
	assert.Equal(t, []string{"audit_log", "file_filter", "upload_limit"}, []string{list[0].Name, list[1].Name, list[2].Name})

	audit, ok := list[0].Settings.(Unknown)
	require.True(t, ok)
	assert.JSONEq(t, `{"retention_days":30,"events":["login","delete"]}`, string(audit.Raw))
	assert.False(t, list[0].Enabled)

	assert.Equal(t, BlockedExtensions{Extensions: apitest.DefaultBlockedExtensions}, list[1].Settings)
	assert.Equal(t, MaxFileSize{Limit: apitest.DefaultMaxFileSize}, list[2].Settings)
}

func TestManager_LoadRequiresAdmin(t *testing.T) {
	srv := apitest.New(t)
	uid := srv.AddUser("bob", "Secret1!", "user")
	rec := &notify.Recorder{}
	m := New(srv.Client(srv.Token(uid)), WithNotifier(rec))

	require.Error(t, m.Load(context.Background()))
	assert.Equal(t, []string{"Access denied"}, rec.Messages(notify.LevelError))
}

func TestManager_Policy(t *testing.T) {
	m, _, _ := newManager(t)
	ctx := context.Background()

	assert.Equal(t, UploadPolicy{
		MaxFileSize:       apitest.DefaultMaxFileSize,
		BlockedExtensions: apitest.DefaultBlockedExtensions,
	}, m.Policy())

	require.NoError(t, m.SetEnabled(ctx, FileFilter, false))
	require.NoError(t, m.SetEnabled(ctx, UploadLimit, false))
	assert.Equal(t, UploadPolicy{}, m.Policy())
}

func TestManager_SetEnabled(t *testing.T) {
	m, srv, rec := newManager(t)
	ctx := context.Background()

	require.NoError(t, m.SetEnabled(ctx, "audit_log", true))

	p, ok := m.Plugin("audit_log")
	require.True(t, ok)
	assert.True(t, p.Enabled)
	assert.Equal(t, 1, srv.Requests(http.MethodPut, "/admin/plugins/{name}"))
	assert.Equal(t, []string{"Plugin audit_log updated"}, rec.Messages(notify.LevelSuccess))

	// The change is stored server side.
	require.NoError(t, m.Load(ctx))
	p, _ = m.Plugin("audit_log")
	assert.True(t, p.Enabled)
}

func TestManager_UpdateSettings(t *testing.T) {
	m, _, _ := newManager(t)
	ctx := context.Background()

	limit, err := Parse(UploadLimit, "10MB")
	require.NoError(t, err)
	require.NoError(t, m.UpdateSettings(ctx, UploadLimit, limit))

	require.NoError(t, m.UpdateSettings(ctx, FileFilter, BlockedExtensions{Extensions: []string{"EXE", "bat", ".exe"}}))

	require.NoError(t, m.Load(ctx))
	p, _ := m.Plugin(UploadLimit)
	assert.Equal(t, MaxFileSize{Limit: 10_000_000}, p.Settings)
	p, _ = m.Plugin(FileFilter)
	assert.Equal(t, BlockedExtensions{Extensions: []string{".exe", ".bat"}}, p.Settings)
}

func TestManager_UnknownSettingsRoundTrip(t *testing.T) {
	m, _, _ := newManager(t)
	ctx := context.Background()

	raw := `{"retention_days":7,"events":["login"],"sink":{"kind":"syslog","port":514}}`
	require.NoError(t, m.UpdateSettings(ctx, "audit_log", Unknown{Raw: json.RawMessage(raw)}))
	require.NoError(t, m.Load(ctx))

	p, _ := m.Plugin("audit_log")
	got, ok := p.Settings.(Unknown)
	require.True(t, ok)
	assert.JSONEq(t, raw, string(got.Raw))
}

func TestManager_RejectsBeforeSending(t *testing.T) {
	tests := []struct {
		name     string
		plugin   string
		settings Settings
		want     error
	}{
		{"limit on the filter", FileFilter, MaxFileSize{Limit: 10}, ErrWrongSettings},
		{"filter on the limit", UploadLimit, BlockedExtensions{}, ErrWrongSettings},
		{"zero limit", UploadLimit, MaxFileSize{}, ErrInvalidSettings},
		{"array payload", "audit_log", Unknown{Raw: json.RawMessage(`[1,2]`)}, ErrInvalidSettings},
		{"malformed payload", "audit_log", Unknown{Raw: json.RawMessage(`{"a":`)}, ErrInvalidSettings},
		{"raw payload of the wrong shape", UploadLimit, Unknown{Raw: json.RawMessage(`{"max_file_size":"big"}`)}, ErrInvalidSettings},
		{"nil settings", "audit_log", nil, ErrInvalidSettings},
		{"unknown plugin", "missing", Unknown{Raw: json.RawMessage(`{}`)}, ErrUnknownPlugin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, srv, _ := newManager(t)

			err := m.UpdateSettings(context.Background(), tt.plugin, tt.settings)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, srv.TotalRequests())
		})
	}
}

func TestManager_UndecodableSettingsKeptVerbatim(t *testing.T) {
	m := New(nil)

	// A newer backend may add fields the typed form does not know about.
	raw := `{"blocked_extensions":[".exe"],"mode":"strict"}`
	p := m.fromRecord(client.PluginRecord{Name: FileFilter, Enabled: true, Settings: json.RawMessage(raw)})

	got, ok := p.Settings.(Unknown)
	require.True(t, ok)
	assert.JSONEq(t, raw, string(got.Raw))
	assert.True(t, p.Enabled)
}
