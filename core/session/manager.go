package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/restokit/core/credential"
	"github.com/dmitrymomot/restokit/core/gateway"
	"github.com/dmitrymomot/restokit/core/logger"
	"github.com/dmitrymomot/restokit/core/sanitizer"
	"github.com/dmitrymomot/restokit/core/validator"
)

// Gateway is the subset of *gateway.Gateway the Manager depends on.
type Gateway interface {
	Get(ctx context.Context, path string, query gateway.Query) (json.RawMessage, error)
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
	SetCredential(ctx context.Context, token string)
	HasValidCredential() bool
	OnUnauthorized(fn func())
}

// Manager owns the authenticated identity and drives the credential lifecycle.
// The session is either Anonymous or Authenticated. Every transition is
// delivered to listeners in registration order. Safe for concurrent use.
type Manager struct {
	gw    Gateway
	log   *slog.Logger
	paths Paths

	mu            sync.RWMutex
	user          *User
	authenticated bool
	// ended counts sessions closed by the gateway's 401 hook.
	ended uint64

	listeners registry
}

// NewManager creates a Manager on top of gw and subscribes to its 401 handling,
// so a rejected credential anywhere moves the session to Anonymous.
func NewManager(gw Gateway, opts ...Option) *Manager {
	m := &Manager{
		gw:    gw,
		log:   logger.Nop(),
		paths: DefaultPaths(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(logger.Component("session"))
	gw.OnUnauthorized(m.handleUnauthorized)
	return m
}

// Login authenticates by email. On success the issued credential is installed
// on the gateway before listeners are notified. Any failure clears the
// credential and identity, notifies listeners and returns the backend message.
func (m *Manager) Login(ctx context.Context, email string) (*AuthResponse, error) {
	email = sanitizer.NormalizeEmail(email)

	rules := []validator.Rule{validator.Required("email", email)}
	if email != "" {
		rules = append(rules, validator.ValidEmail("email", email))
	}
	if err := validator.Apply(rules...); err != nil {
		m.reset(ctx)
		return nil, validationError(err)
	}

	ended := m.endedCount()
	raw, err := m.gw.Post(ctx, m.paths.Login, map[string]string{"email": email})
	return m.authenticate(ctx, "login", ended, raw, err, msgLoginFailed)
}

// Register creates an account and authenticates with the issued credential.
// Success and failure handling match Login.
func (m *Manager) Register(ctx context.Context, in RegisterInput) (*AuthResponse, error) {
	if err := sanitizer.SanitizeStruct(&in); err != nil {
		return nil, err
	}
	if err := validator.ValidateStruct(&in); err != nil {
		m.reset(ctx)
		return nil, validationError(err)
	}

	ended := m.endedCount()
	raw, err := m.gw.Post(ctx, m.paths.Register, in)
	return m.authenticate(ctx, "register", ended, raw, err, msgRegisterFailed)
}

func (m *Manager) authenticate(ctx context.Context, action string, ended uint64, raw json.RawMessage, err error, fallback string) (*AuthResponse, error) {
	if err != nil {
		m.log.WarnContext(ctx, "authentication failed", logger.Action(action), logger.Error(err))
		// A 401 already went through handleUnauthorized; notify only if it did not.
		if !errors.Is(err, gateway.ErrUnauthorized) || m.endedCount() == ended {
			m.reset(ctx)
		}
		return nil, failure(err, fallback)
	}

	resp, err := gateway.Decode[AuthResponse](raw)
	if err != nil {
		m.reset(ctx)
		return nil, gateway.WithMessage(err, fallback)
	}

	token := credential.Normalize(resp.APIKey)
	if token == "" {
		m.log.WarnContext(ctx, "authentication response without credential", logger.Action(action))
		m.reset(ctx)
		return nil, gateway.WithMessage(ErrNoCredentialIssued, msgNoAPIKey)
	}

	m.gw.SetCredential(ctx, token)
	m.transition(resp.User, true)

	m.log.InfoContext(ctx, "authenticated",
		logger.Action(action),
		logger.Email(emailOf(resp.User)),
		logger.Secret("credential", token),
	)
	return &resp, nil
}

// Logout tells the backend and always clears local state, even when the call fails.
func (m *Manager) Logout(ctx context.Context) {
	if _, err := m.gw.Post(ctx, m.paths.Logout, nil); err != nil {
		m.log.WarnContext(ctx, "backend logout failed", logger.Error(err))
	}
	m.reset(ctx)
	m.log.InfoContext(ctx, "logged out")
}

// CurrentUser returns the cached identity, or confirms it with the backend.
// A 404 from the identity endpoint is not an error: the cached identity (possibly
// nil) is returned. Other failures clear the session and are returned.
func (m *Manager) CurrentUser(ctx context.Context) (*User, error) {
	if u := m.User(); u != nil {
		return u, nil
	}

	raw, err := m.gw.Get(ctx, m.paths.Me, nil)
	if err != nil {
		if gateway.IsNotFound(err) {
			m.log.DebugContext(ctx, "identity endpoint unavailable, using local state")
			return m.User(), nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		m.reset(ctx)
		return nil, failure(err, msgCurrentUserFailed)
	}

	body, err := gateway.Decode[struct {
		User *User `json:"user"`
	}](raw)
	if err != nil || body.User == nil {
		m.reset(ctx)
		return nil, gateway.WithMessage(errors.Join(ErrMissingUser, err), msgUserInfo)
	}

	m.transition(body.User, true)
	return body.User.Clone(), nil
}

// CheckAuth reports whether CurrentUser succeeded. A 404 on the identity
// endpoint counts as success. Errors are logged, not returned.
func (m *Manager) CheckAuth(ctx context.Context) bool {
	if m.IsAuthenticated() && m.User() != nil {
		return true
	}

	if _, err := m.CurrentUser(ctx); err != nil {
		m.log.DebugContext(ctx, "no active session", logger.Error(err))
		return false
	}
	return true
}

// RefreshCredential asks the backend for a new credential and installs it.
// The authentication state does not change and listeners are not notified.
func (m *Manager) RefreshCredential(ctx context.Context) (*AuthResponse, error) {
	raw, err := m.gw.Post(ctx, m.paths.Refresh, nil)
	if err != nil {
		return nil, failure(err, msgRefreshFailed)
	}

	resp, err := gateway.Decode[AuthResponse](raw)
	if err != nil {
		return nil, gateway.WithMessage(err, msgRefreshFailed)
	}

	if token := credential.Normalize(resp.APIKey); token != "" {
		m.gw.SetCredential(ctx, token)
		m.log.InfoContext(ctx, "credential refreshed", logger.Secret("credential", token))
	}
	return &resp, nil
}

// TestConnection probes the identity endpoint and reports the outcome.
func (m *Manager) TestConnection(ctx context.Context) ConnectionStatus {
	raw, err := m.gw.Get(ctx, m.paths.Me, nil)
	if err != nil {
		return ConnectionStatus{Error: err.Error()}
	}
	return ConnectionStatus{Success: true, Data: raw}
}

// AddListener registers fn and returns the ID used to remove it.
func (m *Manager) AddListener(fn Listener) ListenerID {
	id := m.listeners.add(fn)
	m.log.Debug("listener added", logger.Count("listeners", m.listeners.len()))
	return id
}

// RemoveListener unregisters id. It reports whether the listener was registered.
// Removing during a notification does not affect the notification in progress.
func (m *Manager) RemoveListener(id ListenerID) bool {
	return m.listeners.remove(id)
}

// State returns a snapshot of the session.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return State{User: m.user.Clone(), IsAuthenticated: m.authenticated}
}

// User returns a copy of the cached identity, or nil.
func (m *Manager) User() *User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user.Clone()
}

// IsAuthenticated reports the authentication flag.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authenticated
}

// reset clears credential and identity, then notifies.
func (m *Manager) reset(ctx context.Context) {
	m.gw.SetCredential(ctx, "")
	m.transition(nil, false)
}

// handleUnauthorized runs after the gateway already cleared the credential.
func (m *Manager) handleUnauthorized() {
	m.mu.Lock()
	if m.user == nil && !m.authenticated {
		m.mu.Unlock()
		return
	}
	m.user = nil
	m.authenticated = false
	m.ended++
	st := State{}
	m.mu.Unlock()

	m.log.Info("session ended by backend")
	m.notify(st)
}

func (m *Manager) endedCount() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ended
}

func (m *Manager) transition(user *User, authenticated bool) {
	m.mu.Lock()
	m.user = user.Clone()
	m.authenticated = authenticated
	st := State{User: m.user.Clone(), IsAuthenticated: authenticated}
	m.mu.Unlock()

	m.notify(st)
}

// notify runs listeners outside the lock over a snapshot. A panicking
// listener is logged and does not stop the others.
func (m *Manager) notify(st State) {
	for _, e := range m.listeners.snapshot() {
		func() {
			defer func() {
				if r := recover(); r != nil {
					m.log.Error("listener panicked", slog.Any("panic", r), slog.String("listener", string(e.id)))
				}
			}()
			e.fn(st)
		}()
	}
}

// failure keeps gateway errors as they are and gives anything else the fallback message.
func failure(err error, fallback string) error {
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		return err
	}
	return gateway.WithMessage(err, fallback)
}

func validationError(err error) error {
	errs := validator.ExtractValidationErrors(err)
	return gateway.NewValidationError(err.Error(), errs.Messages()...)
}

func emailOf(u *User) string {
	if u == nil {
		return ""
	}
	return u.Email
}
