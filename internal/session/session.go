// Package session is the client-side authentication session: who the current
// user is, whether a request is in flight, and what the last failure was.
//
// A Session is mutated only through Restore, Login, Register, Logout and
// ClearError. Every mutation goes through Reduce, and subscribers are told
// about each new State.
//
// Overlapping operations follow "latest issued wins": each operation takes a
// generation number when it starts, and a completion whose generation is no
// longer current is dropped without touching state or the token store.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/felixgeelhaar/leasehold/internal/api"
	"github.com/felixgeelhaar/leasehold/internal/log"
	"github.com/felixgeelhaar/leasehold/internal/tokenstore"
)

// SupersededMessage is reported to the caller of an operation whose result
// was dropped because a newer one was issued.
const SupersededMessage = "superseded by a newer request"

// Authenticator is the backend the session talks to. *api.Client satisfies it.
type Authenticator interface {
	Me(ctx context.Context) (*api.User, error)
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error)
	Logout(ctx context.Context) error
}

// Result is what Login and Register hand back to their caller.
type Result struct {
	Success    bool     `json:"success" yaml:"success"`
	RedirectTo string   `json:"redirectTo,omitempty" yaml:"redirectTo,omitempty"`
	Error      string   `json:"error,omitempty" yaml:"error,omitempty"`
	Kind       api.Kind `json:"kind,omitempty" yaml:"kind,omitempty"`
}

type subscriber struct {
	id int
	fn func(State)
}

// notification is one applied transition waiting to be delivered.
type notification struct {
	state State
	subs  []subscriber
}

// Session holds the process-wide authentication state.
type Session struct {
	auth   Authenticator
	tokens tokenstore.Store
	logger *log.Logger

	mu          sync.Mutex
	state       State
	generation  uint64
	subscribers []subscriber
	nextSubID   int

	// pending holds transitions not yet delivered. While delivering is set,
	// one goroutine owns delivery and drains pending in order.
	pending    []notification
	delivering bool
}

// New creates an anonymous Session. It does not read the token store;
// call Restore for that.
func New(auth Authenticator, tokens tokenstore.Store, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Session{
		auth:   auth,
		tokens: tokens,
		logger: logger.With("component", "session"),
		state:  Initial(),
	}
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyState(s.state)
}

// Subscribe registers fn to be called with every new State. Calls are made
// without the session lock held, one at a time, in the order transitions were
// applied, so the last State a subscriber sees is always the current one.
// When transitions race, a call may run on the goroutine of another operation
// that is already delivering. The returned func removes the subscription.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subscribers {
				if sub.id == id {
					s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

// Restore revalidates a stored token. With no stored token it does nothing.
// A rejected or unreachable token is cleared from the store and the session
// ends anonymous with no error set. A canceled restore leaves the stored
// token in place.
func (s *Session) Restore(ctx context.Context) {
	token, err := s.tokens.Get()
	if err != nil {
		s.logger.WithError(err).WarnContext(ctx, "stored token unreadable, discarding it")
		s.clearStoredToken()
		return
	}
	if token == "" {
		return
	}

	gen := s.begin()
	user, err := s.auth.Me(ctx)

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	if err != nil {
		kind := api.KindOf(err)
		if kind != api.KindCanceled {
			s.clearStoredTokenLocked()
		}
		s.logger.DebugContext(ctx, "session restore failed", "kind", kind.String(), "error", err.Error())
		s.applyLocked(RestoreFailed{})
		return
	}
	s.logger.DebugContext(ctx, "session restored", "user_id", user.ID, "role", string(user.Role))
	s.applyLocked(AuthSucceeded{User: user, Token: token})
}

// Login authenticates with email and password. It never returns a Go error:
// failures are reported in the Result and recorded in State.Error.
//
// Callers should not issue a second Login while State.Loading is set. If they
// do, only the most recently issued one takes effect.
func (s *Session) Login(ctx context.Context, email, password string) Result {
	gen := s.begin()

	if strings.TrimSpace(email) == "" || password == "" {
		return s.fail(gen, "email and password are required", api.KindValidation)
	}

	resp, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.logger.InfoContext(ctx, "login failed", "kind", api.KindOf(err).String())
		return s.fail(gen, api.MessageOf(err), api.KindOf(err))
	}
	return s.succeed(ctx, gen, resp, "login")
}

// Register creates an account and, on success, behaves exactly like a
// successful Login.
func (s *Session) Register(ctx context.Context, req api.RegisterRequest) Result {
	gen := s.begin()

	if missing := missingRegisterField(req); missing != "" {
		return s.fail(gen, missing+" is required", api.KindValidation)
	}

	resp, err := s.auth.Register(ctx, req)
	if err != nil {
		s.logger.InfoContext(ctx, "registration failed", "kind", api.KindOf(err).String())
		return s.fail(gen, api.MessageOf(err), api.KindOf(err))
	}
	return s.succeed(ctx, gen, resp, "registration")
}

// Logout invalidates the session on the server when it can and always resets
// the local session. Server failures are logged and swallowed.
//
// Logout always settles last: any operation still in flight when it
// completes is superseded, including ones issued after Logout started.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()

	token, err := s.tokens.Get()
	if err != nil {
		s.logger.WithError(err).WarnContext(ctx, "stored token unreadable during logout")
	}
	if token != "" {
		if err := s.auth.Logout(ctx); err != nil {
			s.logger.WarnContext(ctx, "server logout failed", "kind", api.KindOf(err).String(), "error", err.Error())
		}
	}

	s.mu.Lock()
	s.generation++
	s.clearStoredTokenLocked()
	s.logger.DebugContext(ctx, "logged out")
	s.applyLocked(LoggedOut{})
}

// ClearError drops the last error. It does nothing when no error is set.
func (s *Session) ClearError() {
	s.mu.Lock()
	if s.state.Error == "" {
		s.mu.Unlock()
		return
	}
	s.applyLocked(ErrorCleared{})
}

// begin starts a new generation and marks the session as loading.
func (s *Session) begin() uint64 {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.applyLocked(AuthStarted{})
	return gen
}

func (s *Session) fail(gen uint64, message string, kind api.Kind) Result {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return superseded()
	}
	s.applyLocked(AuthFailed{Message: message, Kind: kind})
	return Result{Success: false, Error: message, Kind: kind}
}

func (s *Session) succeed(ctx context.Context, gen uint64, resp *api.AuthResponse, op string) Result {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return superseded()
	}

	if resp == nil || resp.User == nil || resp.Token == "" {
		s.applyLocked(AuthFailed{Message: api.DefaultMessage, Kind: api.KindServer})
		return Result{Success: false, Error: api.DefaultMessage, Kind: api.KindServer}
	}

	if err := s.tokens.Set(resp.Token); err != nil {
		s.logger.WithError(err).ErrorContext(ctx, op+" succeeded but the token could not be saved")
		msg := "failed to save session"
		s.applyLocked(AuthFailed{Message: msg, Kind: api.KindUnknown})
		return Result{Success: false, Error: msg, Kind: api.KindUnknown}
	}

	s.logger.InfoContext(ctx, op+" succeeded", "user_id", resp.User.ID, "role", string(resp.User.Role))
	s.applyLocked(AuthSucceeded{User: resp.User, Token: resp.Token})
	return Result{Success: true, RedirectTo: DashboardRoute(resp.User.Role)}
}

// applyLocked reduces e into the state, releases the lock and notifies
// subscribers. s.mu must be held on entry and is released on return.
//
// Transitions are queued under s.mu. If another goroutine is already
// delivering, it picks the new one up after the ones before it; otherwise
// this goroutine drains the queue itself.
func (s *Session) applyLocked(e Event) {
	s.state = Reduce(s.state, e)
	subs := make([]subscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	s.pending = append(s.pending, notification{state: copyState(s.state), subs: subs})
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true

	for len(s.pending) > 0 {
		n := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		for _, sub := range n.subs {
			sub.fn(copyState(n.state))
		}

		s.mu.Lock()
	}
	s.pending = nil
	s.delivering = false
	s.mu.Unlock()
}

func (s *Session) clearStoredToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearStoredTokenLocked()
}

func (s *Session) clearStoredTokenLocked() {
	if err := s.tokens.Clear(); err != nil {
		s.logger.WithError(err).Warn("failed to clear stored token")
	}
}

func superseded() Result {
	return Result{Success: false, Error: SupersededMessage, Kind: api.KindSuperseded}
}

func missingRegisterField(req api.RegisterRequest) string {
	switch {
	case strings.TrimSpace(req.FirstName) == "":
		return "firstName"
	case strings.TrimSpace(req.LastName) == "":
		return "lastName"
	case strings.TrimSpace(req.Email) == "":
		return "email"
	case req.Password == "":
		return "password"
	case req.Role == "":
		return "role"
	}
	return ""
}

func copyState(st State) State {
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}
