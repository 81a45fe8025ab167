package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ownerUser = User{
	ID:        "u-1",
	FirstName: "Olive",
	LastName:  "Owner",
	Email:     "olive@example.com",
	Role:      RoleOwner,
}

func TestMe(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api"+PathMe, r.URL.Path)
		assert.Equal(t, "Bearer abc123", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"user": ownerUser})
	}, "abc123")

	user, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ownerUser, *user)
}

func TestMe_MissingUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	}, "abc123")

	_, err := client.Me(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindServer, KindOf(err))
}

func TestMe_Forbidden(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]any{"message": "Token expired"})
	}, "stale")

	_, err := client.Me(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Token expired", MessageOf(err))
	assert.Equal(t, KindInvalidCredentials, KindOf(err))
}

func TestLogin(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api"+PathLogin, r.URL.Path)

		var req LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, LoginRequest{Email: "olive@example.com", Password: "secret"}, req)

		writeJSON(w, http.StatusOK, map[string]any{"user": ownerUser, "token": "abc123"})
	}, "")

	resp, err := client.Login(context.Background(), "olive@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "abc123", resp.Token)
	assert.Equal(t, RoleOwner, resp.User.Role)
}

func TestLogin_IncompleteResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"user": ownerUser})
	}, "")

	_, err := client.Login(context.Background(), "olive@example.com", "secret")
	require.Error(t, err)
	assert.Equal(t, KindServer, KindOf(err))
}

func TestRegister(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api"+PathRegister, r.URL.Path)

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{
			"firstName": "Tess",
			"lastName":  "Tenant",
			"email":     "tess@example.com",
			"password":  "secret",
			"role":      "tenant",
		}, body)

		writeJSON(w, http.StatusCreated, map[string]any{
			"user":  User{ID: "u-2", FirstName: "Tess", LastName: "Tenant", Email: "tess@example.com", Role: RoleTenant},
			"token": "tok-2",
		})
	}, "")

	resp, err := client.Register(context.Background(), RegisterRequest{
		FirstName: "Tess",
		LastName:  "Tenant",
		Email:     "tess@example.com",
		Password:  "secret",
		Role:      RoleTenant,
	})
	require.NoError(t, err)
	assert.Equal(t, "tok-2", resp.Token)
	assert.Equal(t, "u-2", resp.User.ID)
}

func TestLogout(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api"+PathLogout, r.URL.Path)
		assert.Equal(t, "Bearer abc123", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"message": "Logged out"})
	}, "abc123")

	require.NoError(t, client.Logout(context.Background()))
	assert.True(t, called)
}

func TestRole_Valid(t *testing.T) {
	for _, r := range Roles {
		assert.True(t, r.Valid(), string(r))
	}
	assert.False(t, Role("guest").Valid())
	assert.False(t, Role("").Valid())
}

func TestUser_FullName(t *testing.T) {
	assert.Equal(t, "Olive Owner", ownerUser.FullName())
	assert.Equal(t, "Olive", User{FirstName: "Olive"}.FullName())
	assert.Equal(t, "Owner", User{LastName: "Owner"}.FullName())
}
