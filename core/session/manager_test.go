package session_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/restokit/core/credential"
	"github.com/dmitrymomot/restokit/core/gateway"
	"github.com/dmitrymomot/restokit/core/session"
)

// fakeBackend routes auth endpoints to per-test handlers.
type fakeBackend struct {
	*httptest.Server
	routes map[string]http.HandlerFunc
	calls  sync.Map // path -> *atomic.Int64
}

func newFakeBackend(t *testing.T, routes map[string]http.HandlerFunc) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{routes: routes}
	fb.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counter, _ := fb.calls.LoadOrStore(r.URL.Path, &atomic.Int64{})
		counter.(*atomic.Int64).Add(1)
		if h, ok := fb.routes[r.URL.Path]; ok {
			h(w, r)
			return
		}
		writeJSON(w, http.StatusNotFound, `{"message":"Not Found"}`)
	}))
	t.Cleanup(fb.Close)
	return fb
}

func (fb *fakeBackend) count(path string) int64 {
	v, ok := fb.calls.Load(path)
	if !ok {
		return 0
	}
	return v.(*atomic.Int64).Load()
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, body)
	}
}

type recorder struct {
	mu     sync.Mutex
	states []session.State
}

func (r *recorder) listen(st session.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, st)
}

func (r *recorder) all() []session.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]session.State(nil), r.states...)
}

func setup(t *testing.T, routes map[string]http.HandlerFunc) (*session.Manager, *gateway.Gateway, *fakeBackend, credential.Store) {
	t.Helper()
	fb := newFakeBackend(t, routes)
	store := credential.NewMemoryStore()
	gw, err := gateway.New(fb.URL, gateway.WithStore(store))
	require.NoError(t, err)
	return session.NewManager(gw), gw, fb, store
}

const loginOK = `{"api_key":"k1","user":{"name":"A","email":"user@example.com","roles":["ROLE_USER"],"is_active":true}}`

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("success installs credential and notifies once", func(t *testing.T) {
		t.Parallel()

		var body map[string]string
		m, gw, _, store := setup(t, map[string]http.HandlerFunc{
			"/auth/login": func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewDecoder(r.Body).Decode(&body)
				writeJSON(w, http.StatusOK, loginOK)
			},
		})
		rec := &recorder{}
		m.AddListener(rec.listen)

		resp, err := m.Login(t.Context(), "  User@Example.com ")
		require.NoError(t, err)

		assert.Equal(t, "user@example.com", body["email"])
		assert.Equal(t, "k1", resp.APIKey)
		assert.Equal(t, "k1", gw.Credential())
		assert.True(t, m.IsAuthenticated())
		require.NotNil(t, m.User())
		assert.Equal(t, "A", m.User().Name)

		stored, err := store.Load(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "k1", stored)

		states := rec.all()
		require.Len(t, states, 1)
		assert.True(t, states[0].IsAuthenticated)
		assert.Equal(t, "A", states[0].User.Name)
	})

	t.Run("missing api key fails and clears", func(t *testing.T) {
		t.Parallel()

		m, gw, _, _ := setup(t, map[string]http.HandlerFunc{
			"/auth/login": respond(http.StatusOK, `{"user":{"name":"A"}}`),
		})
		gw.SetCredential(t.Context(), "old")
		rec := &recorder{}
		m.AddListener(rec.listen)

		_, err := m.Login(t.Context(), "user@example.com")
		require.Error(t, err)
		assert.Equal(t, "no API key received from server", err.Error())
		assert.ErrorIs(t, err, session.ErrNoCredentialIssued)

		assert.False(t, gw.HasValidCredential())
		assert.False(t, m.IsAuthenticated())
		assert.Nil(t, m.User())
		states := rec.all()
		require.Len(t, states, 1)
		assert.False(t, states[0].IsAuthenticated)
	})

	t.Run("backend message is propagated", func(t *testing.T) {
		t.Parallel()

		m, _, _, _ := setup(t, map[string]http.HandlerFunc{
			"/auth/login": respond(http.StatusBadRequest, `{"error":"user not found"}`),
		})

		_, err := m.Login(t.Context(), "user@example.com")
		require.ErrorIs(t, err, gateway.ErrRequestFailed)
		assert.Equal(t, "user not found", err.Error())
	})

	t.Run("unauthorized notifies once", func(t *testing.T) {
		t.Parallel()

		var logins atomic.Int64
		m, gw, _, _ := setup(t, map[string]http.HandlerFunc{
			"/auth/login": func(w http.ResponseWriter, r *http.Request) {
				if logins.Add(1) == 1 {
					writeJSON(w, http.StatusOK, loginOK)
					return
				}
				writeJSON(w, http.StatusUnauthorized, `{"error":"account locked"}`)
			},
		})
		_, err := m.Login(t.Context(), "user@example.com")
		require.NoError(t, err)

		rec := &recorder{}
		m.AddListener(rec.listen)

		_, err = m.Login(t.Context(), "user@example.com")
		require.ErrorIs(t, err, gateway.ErrUnauthorized)
		assert.False(t, gw.HasValidCredential())
		assert.False(t, m.IsAuthenticated())

		states := rec.all()
		require.Len(t, states, 1)
		assert.False(t, states[0].IsAuthenticated)
	})

	t.Run("unauthorized from anonymous still notifies", func(t *testing.T) {
		t.Parallel()

		m, _, _, _ := setup(t, map[string]http.HandlerFunc{
			"/auth/login": respond(http.StatusUnauthorized, `{"error":"account locked"}`),
		})
		rec := &recorder{}
		m.AddListener(rec.listen)

		_, err := m.Login(t.Context(), "user@example.com")
		require.ErrorIs(t, err, gateway.ErrUnauthorized)
		require.Len(t, rec.all(), 1)
	})

	t.Run("invalid email fails without network", func(t *testing.T) {
		t.Parallel()

		m, _, fb, _ := setup(t, nil)
		rec := &recorder{}
		m.AddListener(rec.listen)

		for _, email := range []string{"", "not-an-email"} {
			_, err := m.Login(t.Context(), email)
			require.ErrorIs(t, err, gateway.ErrValidation, email)
		}
		assert.Zero(t, fb.count("/auth/login"))
		assert.Len(t, rec.all(), 2)
	})

	t.Run("connection failure", func(t *testing.T) {
		t.Parallel()

		m, _, fb, _ := setup(t, nil)
		fb.Close()

		_, err := m.Login(t.Context(), "user@example.com")
		require.ErrorIs(t, err, gateway.ErrConnection)
		assert.False(t, m.IsAuthenticated())
	})
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		var body map[string]any
		m, gw, _, _ := setup(t, map[string]http.HandlerFunc{
			"/auth/register": func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewDecoder(r.Body).Decode(&body)
				writeJSON(w, http.StatusCreated, `{"api_key":"k-new","user":{"name":"Ana","email":"ana@example.com","roles":["ROLE_ADMIN"]}}`)
			},
		})

		resp, err := m.Register(t.Context(), session.RegisterInput{
			Email: " ANA@example.com",
			Name:  "  Ana  ",
			Roles: []string{" role_admin "},
		})
		require.NoError(t, err)
		assert.Equal(t, "k-new", resp.APIKey)
		assert.Equal(t, "k-new", gw.Credential())
		assert.True(t, m.User().IsAdmin())

		assert.Equal(t, "ana@example.com", body["email"])
		assert.Equal(t, "Ana", body["name"])
		assert.Equal(t, []any{"ROLE_ADMIN"}, body["roles"])
	})

	t.Run("validation details", func(t *testing.T) {
		t.Parallel()

		m, _, fb, _ := setup(t, nil)
		_, err := m.Register(t.Context(), session.RegisterInput{Email: "bad"})
		require.ErrorIs(t, err, gateway.ErrValidation)

		var gwErr *gateway.Error
		require.ErrorAs(t, err, &gwErr)
		assert.Contains(t, gwErr.Details, "email: must be a valid email address")
		assert.Contains(t, gwErr.Details, "name: field is required")
		assert.Zero(t, fb.count("/auth/register"))
	})

	t.Run("backend details", func(t *testing.T) {
		t.Parallel()

		m, _, _, _ := setup(t, map[string]http.HandlerFunc{
			"/auth/register": respond(http.StatusBadRequest, `{"details":["email already taken","name too short"]}`),
		})
		_, err := m.Register(t.Context(), session.RegisterInput{Email: "a@example.com", Name: "A"})
		require.Error(t, err)
		assert.Equal(t, "email already taken, name too short", err.Error())
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()

	t.Run("clears state even when the backend fails", func(t *testing.T) {
		t.Parallel()

		m, gw, fb, store := setup(t, map[string]http.HandlerFunc{
			"/auth/login":  respond(http.StatusOK, loginOK),
			"/auth/logout": respond(http.StatusInternalServerError, `{"message":"boom"}`),
		})
		_, err := m.Login(t.Context(), "user@example.com")
		require.NoError(t, err)

		rec := &recorder{}
		m.AddListener(rec.listen)

		m.Logout(t.Context())

		assert.Equal(t, int64(1), fb.count("/auth/logout"))
		assert.False(t, gw.HasValidCredential())
		assert.False(t, m.IsAuthenticated())
		assert.Nil(t, m.User())
		_, err = store.Load(t.Context())
		assert.ErrorIs(t, err, credential.ErrNotFound)

		states := rec.all()
		require.NotEmpty(t, states)
		assert.False(t, states[len(states)-1].IsAuthenticated)
	})

	t.Run("clears state when the backend is unreachable", func(t *testing.T) {
		t.Parallel()

		m, gw, fb, _ := setup(t, map[string]http.HandlerFunc{
			"/auth/login": respond(http.StatusOK, loginOK),
		})
		_, err := m.Login(t.Context(), "user@example.com")
		require.NoError(t, err)
		fb.Close()

		m.Logout(t.Context())
		assert.Equal(t, session.State{}, m.State())
		assert.False(t, gw.HasValidCredential())
	})
}

func TestCurrentUser(t *testing.T) {
	t.Parallel()

	t.Run("404 returns cached identity without error", func(t *testing.T) {
		t.Parallel()

		m, _, _, _ := setup(t, nil) // every route answers 404
		user, err := m.CurrentUser(t.Context())
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("fetches and caches identity", func(t *testing.T) {
		t.Parallel()

		m, gw, fb, _ := setup(t, map[string]http.HandlerFunc{
			"/auth/me": respond(http.StatusOK, `{"user":{"name":"B","email":"b@example.com"}}`),
		})
		gw.SetCredential(t.Context(), "k1")
		rec := &recorder{}
		m.AddListener(rec.listen)

		user, err := m.CurrentUser(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "B", user.Name)
		assert.True(t, m.IsAuthenticated())

		_, err = m.CurrentUser(t.Context())
		require.NoError(t, err)
		assert.Equal(t, int64(1), fb.count("/auth/me"))
		assert.Len(t, rec.all(), 1)
	})

	t.Run("missing user field fails and clears", func(t *testing.T) {
		t.Parallel()

		m, gw, _, _ := setup(t, map[string]http.HandlerFunc{
			"/auth/me": respond(http.StatusOK, `{"status":"ok"}`),
		})
		gw.SetCredential(t.Context(), "k1")

		_, err := m.CurrentUser(t.Context())
		require.Error(t, err)
		assert.Equal(t, "could not retrieve user information", err.Error())
		assert.ErrorIs(t, err, session.ErrMissingUser)
		assert.False(t, gw.HasValidCredential())
	})

	t.Run("server error clears and propagates", func(t *testing.T) {
		t.Parallel()

		m, gw, _, _ := setup(t, map[string]http.HandlerFunc{
			"/auth/me": respond(http.StatusInternalServerError, `{"message":"database down"}`),
		})
		gw.SetCredential(t.Context(), "k1")
		rec := &recorder{}
		m.AddListener(rec.listen)

		_, err := m.CurrentUser(t.Context())
		require.ErrorIs(t, err, gateway.ErrRequestFailed)
		assert.Equal(t, "database down", err.Error())
		assert.False(t, gw.HasValidCredential())
		assert.Len(t, rec.all(), 1)
	})
}

func TestCheckAuth(t *testing.T) {
	t.Parallel()

	t.Run("authenticated session short-circuits", func(t *testing.T) {
		t.Parallel()

		m, _, fb, _ := setup(t, map[string]http.HandlerFunc{
			"/auth/login": respond(http.StatusOK, loginOK),
		})
		_, err := m.Login(t.Context(), "user@example.com")
		require.NoError(t, err)

		assert.True(t, m.CheckAuth(t.Context()))
		assert.Zero(t, fb.count("/auth/me"))
	})

	t.Run("404 with stored credential counts as authenticated", func(t *testing.T) {
		t.Parallel()

		m, gw, _, _ := setup(t, nil)
		gw.SetCredential(t.Context(), "k1")
		assert.True(t, m.CheckAuth(t.Context()))
	})

	t.Run("404 without credential still succeeds", func(t *testing.T) {
		t.Parallel()

		m, gw, _, _ := setup(t, nil)
		assert.True(t, m.CheckAuth(t.Context()))
		assert.False(t, gw.HasValidCredential())
		assert.Nil(t, m.User())
	})

	t.Run("errors become false", func(t *testing.T) {
		t.Parallel()

		m, gw, _, _ := setup(t, map[string]http.HandlerFunc{
			"/auth/me": respond(http.StatusUnauthorized, `{"error":"expired"}`),
		})
		gw.SetCredential(t.Context(), "expired")
		assert.False(t, m.CheckAuth(t.Context()))
		assert.False(t, gw.HasValidCredential())
	})
}

func TestRefreshCredential(t *testing.T) {
	t.Parallel()

	t.Run("installs new credential without notifying", func(t *testing.T) {
		t.Parallel()

		m, gw, _, _ := setup(t, map[string]http.HandlerFunc{
			"/auth/login":           respond(http.StatusOK, loginOK),
			"/auth/refresh-api-key": respond(http.StatusOK, `{"api_key":"k2","message":"refreshed"}`),
		})
		_, err := m.Login(t.Context(), "user@example.com")
		require.NoError(t, err)

		rec := &recorder{}
		m.AddListener(rec.listen)

		resp, err := m.RefreshCredential(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "refreshed", resp.Message)
		assert.Equal(t, "k2", gw.Credential())
		assert.True(t, m.IsAuthenticated())
		assert.Empty(t, rec.all())
	})

	t.Run("failure keeps backend message", func(t *testing.T) {
		t.Parallel()

		m, gw, _, _ := setup(t, map[string]http.HandlerFunc{
			"/auth/refresh-api-key": respond(http.StatusForbidden, `{"message":"refresh disabled"}`),
		})
		gw.SetCredential(t.Context(), "k1")

		_, err := m.RefreshCredential(t.Context())
		require.Error(t, err)
		assert.Equal(t, "refresh disabled", err.Error())
		assert.Equal(t, "k1", gw.Credential())
	})
}

func TestGatewayUnauthorizedEndsSession(t *testing.T) {
	t.Parallel()

	m, gw, _, _ := setup(t, map[string]http.HandlerFunc{
		"/auth/login": respond(http.StatusOK, loginOK),
		"/restaurants": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, `{"error":"revoked"}`)
		},
	})
	_, err := m.Login(t.Context(), "user@example.com")
	require.NoError(t, err)

	rec := &recorder{}
	m.AddListener(rec.listen)

	_, err = gw.Get(t.Context(), "/restaurants", nil)
	require.ErrorIs(t, err, gateway.ErrUnauthorized)

	assert.False(t, m.IsAuthenticated())
	assert.Nil(t, m.User())
	states := rec.all()
	require.Len(t, states, 1)
	assert.False(t, states[0].IsAuthenticated)
}

func TestTestConnection(t *testing.T) {
	t.Parallel()

	t.Run("reachable", func(t *testing.T) {
		t.Parallel()
		m, _, _, _ := setup(t, map[string]http.HandlerFunc{
			"/auth/me": respond(http.StatusOK, `{"user":{"name":"A"}}`),
		})
		status := m.TestConnection(t.Context())
		assert.True(t, status.Success)
		assert.JSONEq(t, `{"user":{"name":"A"}}`, string(status.Data))
	})

	t.Run("unreachable", func(t *testing.T) {
		t.Parallel()
		m, _, fb, _ := setup(t, nil)
		fb.Close()
		status := m.TestConnection(t.Context())
		assert.False(t, status.Success)
		assert.Equal(t, "connection error: verify that the server is running", status.Error)
	})
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	fb := newFakeBackend(t, map[string]http.HandlerFunc{
		"/v2/login": respond(http.StatusOK, loginOK),
	})
	gw, err := gateway.New(fb.URL)
	require.NoError(t, err)

	m := session.NewFromConfig(gw, session.Config{LoginPath: "/v2/login"})
	_, err = m.Login(t.Context(), "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), fb.count("/v2/login"))
	assert.Equal(t, "/auth/me", session.Config{}.Paths().Me)
}
