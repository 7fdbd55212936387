package flow

import (
	"errors"
	"time"
)

type State string

const (
	StateIdle            State = "idle"
	StateAuthorizing     State = "authorizing"
	StateCallbackPending State = "callback_pending"
	StateAuthenticated   State = "authenticated"
	StateError           State = "error"
	StateAborted         State = "aborted"
)

// Error codes recorded on flows that end in StateError.
const (
	ErrorCodeInvalidState   = "invalid_state"
	ErrorCodeInvalidRequest = "invalid_request"
	ErrorCodeAccessDenied   = "access_denied"
)

var (
	ErrFlowNotFound      = errors.New("flow not found")
	ErrInvalidState      = errors.New("state parameter mismatch")
	ErrInvalidRequest    = errors.New("invalid authorization request")
	ErrIllegalTransition = errors.New("illegal flow transition")
)

// Flow is one authorization attempt. All fields are captured explicitly at
// each step; nothing about the attempt lives in handler closures.
type Flow struct {
	ID                  string
	State               State
	CSRFState           string
	CodeChallenge       string
	CodeChallengeMethod string
	AuthCode            string
	UserID              string
	ErrorCode           string
	ErrorDescription    string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (f *Flow) Terminal() bool {
	switch f.State {
	case StateAuthenticated, StateError, StateAborted:
		return true
	default:
		return false
	}
}

var transitions = map[State][]State{
	StateIdle:            {StateAuthorizing},
	StateAuthorizing:     {StateCallbackPending, StateAborted, StateError},
	StateCallbackPending: {StateAuthenticated, StateAborted, StateError},
}

// transition enforces the machine. Terminal states have no exits.
func (f *Flow) transition(to State, now time.Time) error {
	for _, next := range transitions[f.State] {
		if next == to {
			f.State = to
			f.UpdatedAt = now
			return nil
		}
	}
	return ErrIllegalTransition
}

func cloneFlow(f *Flow) *Flow {
	if f == nil {
		return nil
	}
	cp := *f
	return &cp
}
