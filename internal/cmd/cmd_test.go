package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/leasehold/internal/api"
	"github.com/felixgeelhaar/leasehold/internal/errors"
	"github.com/felixgeelhaar/leasehold/internal/exitcode"
	"github.com/felixgeelhaar/leasehold/internal/tokenstore"
)

var owner = api.User{ID: "u-2", FirstName: "Olive", LastName: "Owner", Email: "olive@example.com", Role: api.RoleOwner}

// testEnv isolates a CLI run: a fake backend, a temp HOME and token file,
// and prompts disabled.
type testEnv struct {
	tokenFile string
	store     *tokenstore.FileStore
}

func newTestEnv(t *testing.T, handler http.HandlerFunc) *testEnv {
	t.Helper()
	home := t.TempDir()
	tokenFile := filepath.Join(home, "state", "auth.json")

	t.Setenv("HOME", home)
	t.Setenv("CI", "true")
	t.Setenv("LEASEHOLD_AUTH_TOKEN_FILE", tokenFile)

	if handler != nil {
		server := httptest.NewServer(handler)
		t.Cleanup(server.Close)
		t.Setenv("LEASEHOLD_API_BASE_URL", server.URL)
	}

	return &testEnv{tokenFile: tokenFile, store: tokenstore.NewFileStore(tokenFile)}
}

func (e *testEnv) token(t *testing.T) string {
	t.Helper()
	token, err := e.store.Get()
	require.NoError(t, err)
	return token
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--no-color"}, args...))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
		if c.Name() == "auth" {
			for _, sub := range c.Commands() {
				names["auth "+sub.Name()] = true
			}
		}
	}

	for _, want := range []string{"auth", "auth login", "auth register", "auth logout", "auth status", "route", "api", "config", "version"} {
		assert.True(t, names[want], "missing command %q", want)
	}

	for _, flag := range []string{"config", "api-url", "log-level", "format", "no-color"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "missing flag --%s", flag)
	}
}

func TestRoute(t *testing.T) {
	newTestEnv(t, nil)

	tests := map[string]string{
		"tenant": "/tenant",
		"owner":  "/owner",
		"admin":  "/admin",
		"guest":  "/",
	}
	for role, want := range tests {
		t.Run(role, func(t *testing.T) {
			out, _, err := runCLI(t, "route", role)
			require.NoError(t, err)
			assert.Equal(t, want+"\n", out)
		})
	}
}

func TestRoute_RequiresRole(t *testing.T) {
	newTestEnv(t, nil)

	_, _, err := runCLI(t, "route")
	require.Error(t, err)
	assert.Equal(t, exitcode.UsageError, exitcode.DetermineExitCode(err))
}

func TestAuthLogin_Success(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, api.PathLogin, r.URL.Path)
		var body api.LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, api.LoginRequest{Email: "olive@example.com", Password: "secret"}, body)
		writeJSON(w, http.StatusOK, map[string]any{"user": owner, "token": "abc123"})
	})

	out, _, err := runCLI(t, "auth", "login", "--email", "olive@example.com", "--password", "secret")
	require.NoError(t, err)

	assert.Contains(t, out, "Logged in as Olive Owner (owner)")
	assert.Contains(t, out, "Dashboard: /owner")
	assert.NotContains(t, out, "abc123")
	assert.Equal(t, "abc123", env.token(t))
}

func TestAuthLogin_JSON(t *testing.T) {
	newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"user": owner, "token": "abc123"})
	})

	out, _, err := runCLI(t, "--format", "json", "auth", "login", "--email", "olive@example.com", "--password", "secret")
	require.NoError(t, err)

	var got signedInView
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Success)
	assert.Equal(t, "/owner", got.RedirectTo)
	assert.Equal(t, "olive@example.com", got.User.Email)
}

func TestAuthLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
	})

	_, _, err := runCLI(t, "auth", "login", "--email", "a@b.com", "--password", "wrong")
	require.Error(t, err)

	assert.Contains(t, err.Error(), "Invalid credentials")
	assert.Equal(t, exitcode.AuthError, exitcode.DetermineExitCode(err))
	assert.Empty(t, env.token(t))
}

func TestAuthLogin_MissingPassword(t *testing.T) {
	newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})

	_, _, err := runCLI(t, "auth", "login", "--email", "a@b.com")

	var lerr *errors.LeaseholdError
	require.True(t, stderrors.As(err, &lerr))
	assert.Equal(t, errors.ErrCodeAuthMissingField, lerr.Code)
	assert.Equal(t, exitcode.UsageError, exitcode.DetermineExitCode(err))
}

func TestAuthLogin_Unreachable(t *testing.T) {
	newTestEnv(t, nil)
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	_, _, err := runCLI(t, "--api-url", server.URL, "auth", "login", "--email", "a@b.com", "--password", "pw")
	require.Error(t, err)
	assert.Equal(t, exitcode.NetworkError, exitcode.DetermineExitCode(err))
}

func TestAuthRegister_Success(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, api.PathRegister, r.URL.Path)
		var body api.RegisterRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, api.RoleOwner, body.Role)
		assert.Equal(t, "Olive", body.FirstName)
		writeJSON(w, http.StatusCreated, map[string]any{"user": owner, "token": "reg-token"})
	})

	out, _, err := runCLI(t, "auth", "register",
		"--first-name", "Olive", "--last-name", "Owner",
		"--email", "olive@example.com", "--password", "pw", "--role", "Owner")
	require.NoError(t, err)

	assert.Contains(t, out, "Registered as Olive Owner (owner)")
	assert.Equal(t, "reg-token", env.token(t))
}

func TestAuthRegister_UnknownRole(t *testing.T) {
	newTestEnv(t, nil)

	_, _, err := runCLI(t, "auth", "register", "--role", "landlord")

	var lerr *errors.LeaseholdError
	require.True(t, stderrors.As(err, &lerr))
	assert.Equal(t, errors.ErrCodeAuthUnknownRole, lerr.Code)
}

func TestAuthRegister_MissingField(t *testing.T) {
	newTestEnv(t, nil)

	_, _, err := runCLI(t, "auth", "register", "--first-name", "Olive", "--email", "olive@example.com", "--password", "pw", "--role", "owner")

	var lerr *errors.LeaseholdError
	require.True(t, stderrors.As(err, &lerr))
	assert.Contains(t, lerr.Message, "--last-name")
}

func TestAuthRegister_Conflict(t *testing.T) {
	newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "Email already registered"})
	})

	_, _, err := runCLI(t, "auth", "register",
		"--first-name", "Olive", "--last-name", "Owner",
		"--email", "olive@example.com", "--password", "pw", "--role", "owner")

	var lerr *errors.LeaseholdError
	require.True(t, stderrors.As(err, &lerr))
	assert.Equal(t, errors.ErrCodeAuthRegistrationFailed, lerr.Code)
	assert.Contains(t, lerr.Message, "Email already registered")
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   owner.ID,
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestAuthStatus_Authenticated(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	var token string
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, api.PathMe, r.URL.Path)
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"user": owner})
	})
	token = signedToken(t, exp)
	require.NoError(t, env.store.Set(token))

	out, _, err := runCLI(t, "auth", "status", "--format", "json")
	require.NoError(t, err)
	assert.NotContains(t, out, token)

	var got statusView
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "authenticated", got.Status)
	assert.True(t, got.Authenticated)
	assert.Equal(t, "olive@example.com", got.User.Email)
	assert.Equal(t, "/owner", got.Dashboard)
	require.NotNil(t, got.Token)
	assert.Equal(t, "jwt", got.Token.Format)
	assert.Equal(t, owner.ID, got.Token.Subject)
	require.NotNil(t, got.Token.ExpiresAt)
	assert.True(t, exp.Equal(*got.Token.ExpiresAt))
	assert.False(t, got.Token.Expired)
	assert.Nil(t, got.Notice)
}

func TestAuthStatus_Text(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"user": owner})
	})
	require.NoError(t, env.store.Set("opaque-token"))

	out, _, err := runCLI(t, "auth", "status")
	require.NoError(t, err)

	assert.Contains(t, out, "Status:")
	assert.Contains(t, out, "authenticated")
	assert.Contains(t, out, "Olive Owner")
	assert.Contains(t, out, "opaque")
	assert.NotContains(t, out, "opaque-token")
}

func TestAuthStatus_StaleToken(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "Token expired"})
	})
	require.NoError(t, env.store.Set("stale"))

	out, _, err := runCLI(t, "auth", "status", "--format", "yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "status: anonymous")
	assert.Contains(t, out, "authenticated: false")
	assert.Contains(t, out, "code: AUTH-004")
	assert.Empty(t, env.token(t))
}

func TestAuthStatus_NotLoggedIn(t *testing.T) {
	newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})

	out, _, err := runCLI(t, "auth", "status", "--format", "json")
	require.NoError(t, err)

	var got statusView
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "anonymous", got.Status)
	require.NotNil(t, got.Notice)
	assert.Equal(t, string(errors.ErrCodeAuthRequired), got.Notice.Code)

	out, _, err = runCLI(t, "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "[AUTH-001] not logged in")
}

func TestAuthLogout(t *testing.T) {
	var logoutCalls, meCalls int
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case api.PathMe:
			meCalls++
			w.WriteHeader(http.StatusServiceUnavailable)
		case api.PathLogout:
			logoutCalls++
			assert.Equal(t, "Bearer abc123", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusNoContent)
		}
	})
	require.NoError(t, env.store.Set("abc123"))

	out, _, err := runCLI(t, "auth", "logout")
	require.NoError(t, err)

	assert.Contains(t, out, "Logged out")
	assert.Equal(t, 1, logoutCalls)
	assert.Zero(t, meCalls, "logout does not revalidate the token it discards")
	assert.Empty(t, env.token(t))
}

func TestAuthLogin_ReplacesStoredTokenWithoutRevalidating(t *testing.T) {
	var paths []string
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"user": owner, "token": "new-token"})
	})
	require.NoError(t, env.store.Set("old-token"))

	_, _, err := runCLI(t, "auth", "login", "--email", "olive@example.com", "--password", "secret")
	require.NoError(t, err)

	assert.Equal(t, []string{api.PathLogin}, paths)
	assert.Equal(t, "new-token", env.token(t))
}

func TestAuthLogout_ServerDown(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, env.store.Set("abc123"))
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	out, _, err := runCLI(t, "--api-url", server.URL, "auth", "logout")
	require.NoError(t, err)

	assert.Contains(t, out, "Logged out")
	assert.Empty(t, env.token(t))
}

func TestAPI(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == api.PathMe:
			writeJSON(w, http.StatusOK, map[string]any{"user": owner})
		case r.URL.Path == "/properties" && r.Method == http.MethodGet:
			assert.Equal(t, "Bearer abc123", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, []map[string]string{{"id": "p-1"}})
		case r.URL.Path == "/bookings" && r.Method == http.MethodPost:
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "p-1", body["propertyId"])
			w.WriteHeader(http.StatusCreated)
		default:
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
		}
	})
	require.NoError(t, env.store.Set("abc123"))

	out, _, err := runCLI(t, "api", "get", "/properties")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"p-1"}]`, out)

	out, _, err = runCLI(t, "api", "POST", "/bookings", "--data", `{"propertyId":"p-1"}`)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, _, err = runCLI(t, "api", "GET", "/missing")
	var apiErr *api.Error
	require.True(t, stderrors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Not found", apiErr.Message)
}

func TestAPI_InvalidInput(t *testing.T) {
	newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})

	tests := [][]string{
		{"api", "TRACE", "/x"},
		{"api", "POST", "/x", "--data", "{not json"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, _, err := runCLI(t, args...)
			require.Error(t, err)
			assert.Equal(t, exitcode.UsageError, exitcode.DetermineExitCode(err))
		})
	}
}

func TestVersion(t *testing.T) {
	newTestEnv(t, nil)

	out, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "leasehold "), out)

	out, _, err = runCLI(t, "--format", "json", "version")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info["goVersion"])
}

func TestInvalidConfig(t *testing.T) {
	newTestEnv(t, nil)
	t.Setenv("LEASEHOLD_API_BASE_URL", "not a url")

	_, _, err := runCLI(t, "route", "owner")

	var lerr *errors.LeaseholdError
	require.True(t, stderrors.As(err, &lerr))
	assert.Equal(t, errors.ErrCodeConfigInvalid, lerr.Code)
}

func TestDebugLogsNeverContainToken(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"user": owner, "token": "super-secret-token"})
	})

	_, stderr, err := runCLI(t, "--log-level", "debug", "auth", "login", "--email", "olive@example.com", "--password", "hunter2")
	require.NoError(t, err)

	assert.Contains(t, stderr, "login succeeded")
	assert.NotContains(t, stderr, "super-secret-token")
	assert.NotContains(t, stderr, "hunter2")
	assert.Equal(t, "super-secret-token", env.token(t))
}

func TestConfigView(t *testing.T) {
	env := newTestEnv(t, nil)
	t.Setenv("LEASEHOLD_API_BASE_URL", "https://rentals.example.com/api")

	out, _, err := runCLI(t, "config", "view")
	require.NoError(t, err)

	assert.Contains(t, out, "Configuration file: (none, using defaults)")
	assert.Contains(t, out, "base_url: https://rentals.example.com/api")
	assert.Contains(t, out, "timeout: 30s")
	assert.Contains(t, out, "token_file: "+env.tokenFile)
}

func TestConfigPath(t *testing.T) {
	newTestEnv(t, nil)
	home := t.TempDir()
	t.Setenv("HOME", home)

	out, _, err := runCLI(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".leasehold", "config.yaml")+"\n", out)
}
