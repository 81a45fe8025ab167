package session

import "github.com/felixgeelhaar/leasehold/internal/api"

// State is a snapshot of the session. Readers always get a copy.
//
// Token is excluded from every encoding so that rendering or logging a State
// can never leak the credential.
type State struct {
	User            *api.User `json:"user" yaml:"user"`
	Token           string    `json:"-" yaml:"-"`
	IsAuthenticated bool      `json:"isAuthenticated" yaml:"isAuthenticated"`
	Loading         bool      `json:"loading" yaml:"loading"`
	Error           string    `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorKind       api.Kind  `json:"errorKind,omitempty" yaml:"errorKind,omitempty"`
}

// Initial is the anonymous state a session starts in and returns to on logout.
func Initial() State {
	return State{}
}

// Status names the state machine node a State sits in.
func (s State) Status() string {
	switch {
	case s.Loading:
		return "authenticating"
	case s.IsAuthenticated:
		return "authenticated"
	case s.Error != "":
		return "anonymous-with-error"
	default:
		return "anonymous"
	}
}

// Event is one of the transitions below. The set is closed.
type Event interface {
	event()
}

// AuthStarted marks a login, register or restore as in flight.
type AuthStarted struct{}

// AuthSucceeded settles an attempt with an identified user.
type AuthSucceeded struct {
	User  *api.User
	Token string
}

// AuthFailed settles a login or register attempt with a visible error.
type AuthFailed struct {
	Message string
	Kind    api.Kind
}

// RestoreFailed settles a restore silently.
type RestoreFailed struct{}

// LoggedOut returns to the initial state.
type LoggedOut struct{}

// ErrorCleared drops the last error and keeps everything else.
type ErrorCleared struct{}

func (AuthStarted) event()   {}
func (AuthSucceeded) event() {}
func (AuthFailed) event()    {}
func (RestoreFailed) event() {}
func (LoggedOut) event()     {}
func (ErrorCleared) event()  {}

// Reduce applies e to s and returns the next state. It has no side effects.
func Reduce(s State, e Event) State {
	switch ev := e.(type) {
	case AuthStarted:
		s.Loading = true
		s.Error = ""
		s.ErrorKind = api.KindUnknown
		return s

	case AuthSucceeded:
		if ev.User == nil {
			return Reduce(s, AuthFailed{Message: api.DefaultMessage, Kind: api.KindServer})
		}
		user := *ev.User
		return State{
			User:            &user,
			Token:           ev.Token,
			IsAuthenticated: true,
		}

	case AuthFailed:
		msg := ev.Message
		if msg == "" {
			msg = api.DefaultMessage
		}
		return State{
			Error:     msg,
			ErrorKind: ev.Kind,
		}

	case RestoreFailed, LoggedOut:
		return Initial()

	case ErrorCleared:
		s.Error = ""
		s.ErrorKind = api.KindUnknown
		return s

	default:
		return s
	}
}
