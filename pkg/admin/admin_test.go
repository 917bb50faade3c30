package admin

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"minicloud/pkg/apitest"
	"minicloud/pkg/auth"
	"minicloud/pkg/client"
	"minicloud/pkg/notify"
	"minicloud/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	srv     *apitest.Server
	rec     *notify.Recorder
	superID string
	adminID string
	bobID   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := apitest.New(t)
	return &fixture{
		srv:     srv,
		rec:     &notify.Recorder{},
		superID: srv.UserID(apitest.AdminUsername),
		adminID: srv.AddUser("carol", "Secret1!", types.RoleAdmin),
		bobID:   srv.AddUser("bob", "Secret1!", types.RoleUser),
	}
}

// panel signs in as actorID; the actor is super admin only if it is the seeded account.
func (f *fixture) panel(t *testing.T, actorID string, opts ...Option) *Panel {
	t.Helper()
	actor := types.User{ID: actorID, Role: types.RoleAdmin, IsSuperAdmin: actorID == f.superID}
	opts = append([]Option{WithNotifier(f.rec)}, opts...)
	p := New(f.srv.Client(f.srv.Token(actorID)), actor, opts...)
	require.NoError(t, p.Load(context.Background()))
	f.srv.ResetCounts()
	return p
}

func TestPanel_LoadAndSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bob := f.srv.Client(f.srv.Token(f.bobID))
	_, err := bob.CreateFolder(ctx, "docs", nil)
	require.NoError(t, err)
	_, err = bob.UploadFile(ctx, client.UploadRequest{Name: "a.txt", Content: strings.NewReader("12345")})
	require.NoError(t, err)

	p := f.panel(t, f.superID)

	users := p.Users()
	require.Len(t, users, 3)
	assert.Equal(t, []string{"admin", "carol", "bob"}, []string{users[0].Username, users[1].Username, users[2].Username})
	assert.True(t, users[0].IsSuperAdmin)

	assert.Equal(t, Summary{Users: 3, Admins: 2, Files: 1, Folders: 1, Storage: 5}, p.Summary())
}

func TestPanel_LoadFailure(t *testing.T) {
	f := newFixture(t)
	p := New(f.srv.Client(f.srv.Token(f.bobID)), types.User{ID: f.bobID}, WithNotifier(f.rec))

	err := p.Load(context.Background())
	require.Error(t, err)
	assert.True(t, client.IsStatus(err, http.StatusForbidden))
	assert.Len(t, f.rec.Messages(notify.LevelError), 1)
	assert.Empty(t, p.Users())
}

func TestPanel_ChangeRoleReloads(t *testing.T) {
	f := newFixture(t)
	p := f.panel(t, f.superID)

	require.NoError(t, p.ChangeRole(context.Background(), f.bobID, true))

	bob, ok := p.User(f.bobID)
	require.True(t, ok)
	assert.True(t, bob.IsAdmin())
	assert.Equal(t, 3, p.Summary().Admins)
	assert.Equal(t, 1, f.srv.Requests(http.MethodPost, "/admin/change-role"))
	assert.Equal(t, 1, f.srv.Requests(http.MethodGet, "/admin/users"))
	assert.Equal(t, []string{"Role of bob changed to admin"}, f.rec.Messages(notify.LevelSuccess))
}

func TestPanel_GuardsSendNothing(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		actorID func(*fixture) string
		action  func(*testing.T, *Panel, *fixture) error
		want    error
	}{
		{
			name:    "super admin role is fixed",
			actorID: func(f *fixture) string { return f.superID },
			action:  func(_ *testing.T, p *Panel, f *fixture) error { return p.ChangeRole(ctx, f.superID, false) },
			want:    ErrSuperAdmin,
		},
		{
			name:    "super admin password is fixed",
			actorID: func(f *fixture) string { return f.adminID },
			action:  func(_ *testing.T, p *Panel, f *fixture) error { return p.ChangePassword(ctx, f.superID, "Another1!") },
			want:    ErrSuperAdmin,
		},
		{
			name:    "plain admin cannot demote another admin",
			actorID: func(f *fixture) string { return f.adminID },
			action: func(t *testing.T, p *Panel, f *fixture) error {
				other := f.srv.AddUser("dave", "Secret1!", types.RoleAdmin)
				require.NoError(t, p.Load(ctx))
				f.srv.ResetCounts()
				return p.ChangeRole(ctx, other, false)
			},
			want: ErrRequiresSuper,
		},
		{
			name:    "nobody deletes themself",
			actorID: func(f *fixture) string { return f.adminID },
			action:  func(_ *testing.T, p *Panel, f *fixture) error { return p.DeleteUser(ctx, f.adminID) },
			want:    ErrSelfDelete,
		},
		{
			name:    "unknown user",
			actorID: func(f *fixture) string { return f.superID },
			action:  func(_ *testing.T, p *Panel, f *fixture) error { return p.ChangeRole(ctx, "missing", true) },
			want:    ErrUnknownUser,
		},
		{
			name:    "weak password",
			actorID: func(f *fixture) string { return f.superID },
			action:  func(_ *testing.T, p *Panel, f *fixture) error { return p.ChangePassword(ctx, f.bobID, "weak") },
			want:    auth.ErrWeakPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			p := f.panel(t, tt.actorID(f))

			err := tt.action(t, p, f)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, f.srv.TotalRequests())
			assert.Len(t, f.rec.Messages(notify.LevelError), 1)
		})
	}
}

func TestPanel_PlainAdminManagesUsers(t *testing.T) {
	f := newFixture(t)
	p := f.panel(t, f.adminID)

	require.NoError(t, p.ChangeRole(context.Background(), f.bobID, true))
	bob, _ := p.User(f.bobID)
	assert.True(t, bob.IsAdmin())
}

func TestPanel_ChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.panel(t, f.superID)

	require.NoError(t, p.ChangePassword(ctx, f.bobID, "NewSecret1!"))

	anon := f.srv.Client("")
	_, err := anon.Login(ctx, "bob", "NewSecret1!")
	require.NoError(t, err)
	_, err = anon.Login(ctx, "bob", "Secret1!")
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, []string{"Password of bob changed"}, f.rec.Messages(notify.LevelSuccess))
}

func TestPanel_DeleteUserNeedsConfirmation(t *testing.T) {
	f := newFixture(t)
	p := f.panel(t, f.superID)

	err := p.DeleteUser(context.Background(), f.bobID)
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Zero(t, f.srv.TotalRequests())
}

func TestPanel_DeleteUser(t *testing.T) {
	f := newFixture(t)
	var asked []string
	p := f.panel(t, f.superID, WithConfirmer(func(u types.AdminUser) bool {
		asked = append(asked, u.Username)
		return true
	}))

	require.NoError(t, p.DeleteUser(context.Background(), f.bobID))

	assert.Equal(t, []string{"bob"}, asked)
	_, ok := p.User(f.bobID)
	assert.False(t, ok)
	assert.Equal(t, 2, p.Summary().Users)
	assert.Equal(t, 1, f.srv.Requests(http.MethodDelete, "/admin/delete-user/{id}"))
}

func TestPanel_ServerRejectionIsReported(t *testing.T) {
	f := newFixture(t)
	// The actor claims super admin rights its token does not carry.
	actor := types.User{ID: f.adminID, Role: types.RoleAdmin, IsSuperAdmin: true}
	p := New(f.srv.Client(f.srv.Token(f.adminID)), actor, WithNotifier(f.rec))
	ctx := context.Background()
	require.NoError(t, p.Load(ctx))

	other := f.srv.AddUser("dave", "Secret1!", types.RoleAdmin)
	require.NoError(t, p.Load(ctx))

	err := p.ChangeRole(ctx, other, false)
	require.True(t, client.IsStatus(err, http.StatusForbidden))
	assert.Equal(t, []string{"Only super admin can modify admin users"}, f.rec.Messages(notify.LevelError))
}

func TestSummarize(t *testing.T) {
	users := []types.AdminUser{
		{User: types.User{Role: types.RoleAdmin}, FileCount: 2, FolderCount: 1, StorageUsed: 100},
		{User: types.User{Role: types.RoleUser}, FileCount: 3, StorageUsed: 50},
	}
	assert.Equal(t, Summary{Users: 2, Admins: 1, Files: 5, Folders: 1, Storage: 150}, Summarize(users))
	assert.Equal(t, Summary{}, Summarize(nil))
}
