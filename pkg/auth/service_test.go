package auth

import (
	"context"
	"net/http"
	"testing"

	"minicloud/pkg/client"
	"minicloud/pkg/session"
	"minicloud/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	users     map[string]string
	calls     []string
	lastEmail string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{users: map[string]string{"alice": "Secret1!"}}
}

func (f *fakeAPI) Login(_ context.Context, username, password string) (*client.LoginResponse, error) {
	f.calls = append(f.calls, "login")
	if f.users[username] != password {
		return nil, &client.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}
	}
	return &client.LoginResponse{
		Token: "token-" + username,
		User:  types.User{ID: "id-" + username, Username: username, Role: types.RoleUser, Language: "de"},
	}, nil
}

func (f *fakeAPI) Register(_ context.Context, username, email, password string) (*client.RegisterResponse, error) {
	f.calls = append(f.calls, "register")
	if _, ok := f.users[username]; ok {
		return nil, &client.APIError{StatusCode: http.StatusBadRequest, Message: "Username already exists"}
	}
	f.users[username] = password
	f.lastEmail = email
	return &client.RegisterResponse{Message: "ok", UserID: "id-" + username}, nil
}

func (f *fakeAPI) ChangePassword(_ context.Context, current, next string) error {
	f.calls = append(f.calls, "change-password")
	if f.users["alice"] != current {
		return &client.APIError{StatusCode: http.StatusBadRequest, Message: "Current password is incorrect"}
	}
	f.users["alice"] = next
	return nil
}

func newTestService() (*Service, *fakeAPI, *session.Store) {
	api := newFakeAPI()
	store := session.NewStore(session.NewMemoryStorage())
	return NewService(api, store, nil), api, store
}

func TestService_Login(t *testing.T) {
	svc, _, store := newTestService()

	sess, err := svc.Login(context.Background(), " alice ", "Secret1!")
	require.NoError(t, err)
	assert.Equal(t, "token-alice", sess.Token)

	stored, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, sess, stored)
	assert.Equal(t, "de", store.Language())
}

func TestService_LoginFailureKeepsSignedOut(t *testing.T) {
	svc, _, store := newTestService()

	_, err := svc.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", client.Message(err, "fallback"))

	_, ok := store.Current()
	assert.False(t, ok)
}

func TestService_LoginValidation(t *testing.T) {
	svc, api, _ := newTestService()

	_, err := svc.Login(context.Background(), "  ", "x")
	assert.ErrorIs(t, err, ErrEmptyUsername)
	_, err = svc.Login(context.Background(), "alice", "")
	assert.ErrorIs(t, err, ErrEmptyPassword)
	assert.Empty(t, api.calls)
}

func TestService_Register(t *testing.T) {
	svc, api, store := newTestService()

	sess, err := svc.Register(context.Background(), RegisterInput{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "Bobpass1!",
		Confirm:  "Bobpass1!",
	})
	require.NoError(t, err)
	assert.Equal(t, "token-bob", sess.Token)
	assert.Equal(t, []string{"register", "login"}, api.calls)
	assert.Equal(t, "bob@example.com", api.lastEmail)
	assert.Equal(t, "token-bob", store.Token())
}

func TestService_RegisterValidationSendsNothing(t *testing.T) {
	tests := []struct {
		name  string
		input RegisterInput
		want  error
	}{
		{"empty username", RegisterInput{Email: "a@b.c", Password: "Abcdef1!", Confirm: "Abcdef1!"}, ErrEmptyUsername},
		{"bad email", RegisterInput{Username: "a", Email: "nope", Password: "Abcdef1!", Confirm: "Abcdef1!"}, ErrInvalidEmail},
		{"weak password", RegisterInput{Username: "a", Email: "a@b.c", Password: "abc", Confirm: "abc"}, ErrWeakPassword},
		{"mismatch", RegisterInput{Username: "a", Email: "a@b.c", Password: "Abcdef1!", Confirm: "Abcdef1"}, ErrPasswordMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, api, _ := newTestService()
			_, err := svc.Register(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, api.calls)
		})
	}
}

func TestService_Logout(t *testing.T) {
	svc, _, store := newTestService()
	_, err := svc.Login(context.Background(), "alice", "Secret1!")
	require.NoError(t, err)

	require.NoError(t, svc.Logout())
	_, ok := store.Current()
	assert.False(t, ok)
}

func TestService_ChangePassword(t *testing.T) {
	svc, api, _ := newTestService()

	assert.ErrorIs(t, svc.ChangePassword(context.Background(), "Secret1!", "Newpass1!", "Newpass1!"), ErrNotSignedIn)

	_, err := svc.Login(context.Background(), "alice", "Secret1!")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(context.Background(), "Secret1!", "weak", "weak"), ErrWeakPassword)
	assert.ErrorIs(t, svc.ChangePassword(context.Background(), "Secret1!", "Newpass1!", "Newpass2!"), ErrPasswordMismatch)
	assert.Equal(t, []string{"login"}, api.calls)

	require.NoError(t, svc.ChangePassword(context.Background(), "Secret1!", "Newpass1!", "Newpass1!"))
	assert.Equal(t, "Newpass1!", api.users["alice"])
}
