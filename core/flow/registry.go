package flow

import (
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"clipper-mock/core/ids"
	"clipper-mock/core/utils"
)

// Registry tracks authorization flows for one mock provider instance.
// Like the entity store, it is an explicit object: tests build their own
// and never share flows through package state.
type Registry struct {
	mu     sync.Mutex
	byID   map[string]*Flow
	byCode map[string]string
	now    func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[string]*Flow),
		byCode: make(map[string]string),
		now:    time.Now,
	}
}

// Begin captures the client's CSRF state and PKCE parameters and moves the
// new flow to authorizing.
func (r *Registry) Begin(csrfState, codeChallenge, challengeMethod string) (*Flow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now().UTC()
	f := &Flow{
		ID:                  ids.New(),
		State:               StateIdle,
		CSRFState:           strings.TrimSpace(csrfState),
		CodeChallenge:       strings.TrimSpace(codeChallenge),
		CodeChallengeMethod: strings.ToUpper(strings.TrimSpace(challengeMethod)),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := f.transition(StateAuthorizing, now); err != nil {
		return nil, err
	}
	r.byID[f.ID] = f
	return cloneFlow(f), nil
}

// IssueCode binds the authenticated subject to the flow, mints the
// authorization code, and moves to callback_pending.
func (r *Registry) IssueCode(flowID, userID string) (*Flow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.byID[flowID]
	if !ok {
		return nil, ErrFlowNotFound
	}
	if err := f.transition(StateCallbackPending, r.now().UTC()); err != nil {
		return nil, err
	}
	code, err := generateAuthCode()
	if err != nil {
		return nil, err
	}
	f.AuthCode = code
	f.UserID = userID
	r.byCode[code] = f.ID
	return cloneFlow(f), nil
}

// Complete validates the callback parameters against the stored flow.
// Checks run in order: code lookup, CSRF state, PKCE verifier presence.
// A failed check moves the flow to error and the failure sticks; codes are
// single-use.
func (r *Registry) Complete(code, state, codeVerifier string) (*Flow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now().UTC()
	flowID, ok := r.byCode[strings.TrimSpace(code)]
	if !ok {
		return nil, ErrInvalidRequest
	}
	f := r.byID[flowID]
	if f == nil {
		return nil, ErrInvalidRequest
	}
	if f.State != StateCallbackPending {
		// Terminal flows never come back; treat reuse as a bad request.
		return cloneFlow(f), ErrInvalidRequest
	}
	if strings.TrimSpace(state) != f.CSRFState {
		f.ErrorCode = ErrorCodeInvalidState
		f.ErrorDescription = "state parameter does not match the authorization request"
		_ = f.transition(StateError, now)
		return cloneFlow(f), ErrInvalidState
	}
	if f.CodeChallenge != "" && f.CodeChallengeMethod == "S256" && strings.TrimSpace(codeVerifier) == "" {
		f.ErrorCode = ErrorCodeInvalidRequest
		f.ErrorDescription = "code_verifier is required for S256 authorization requests"
		_ = f.transition(StateError, now)
		return cloneFlow(f), ErrInvalidRequest
	}
	if err := f.transition(StateAuthenticated, now); err != nil {
		return cloneFlow(f), err
	}
	return cloneFlow(f), nil
}

// Abort marks the flow user-canceled. Aborting a terminal flow fails.
func (r *Registry) Abort(flowID, description string) (*Flow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.byID[flowID]
	if !ok {
		return nil, ErrFlowNotFound
	}
	if err := f.transition(StateAborted, r.now().UTC()); err != nil {
		return cloneFlow(f), err
	}
	f.ErrorCode = ErrorCodeAccessDenied
	f.ErrorDescription = description
	return cloneFlow(f), nil
}

// Fail moves the flow to error with the given provider error code.
func (r *Registry) Fail(flowID, errorCode, description string) (*Flow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.byID[flowID]
	if !ok {
		return nil, ErrFlowNotFound
	}
	if err := f.transition(StateError, r.now().UTC()); err != nil {
		return cloneFlow(f), err
	}
	f.ErrorCode = errorCode
	f.ErrorDescription = description
	return cloneFlow(f), nil
}

func (r *Registry) Get(flowID string) (*Flow, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.byID[flowID]
	if !ok {
		return nil, false
	}
	return cloneFlow(f), true
}

func (r *Registry) FindByCode(code string) (*Flow, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byCode[strings.TrimSpace(code)]
	if !ok {
		return nil, false
	}
	return cloneFlow(r.byID[id]), true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// PruneStale drops flows not updated since the cutoff and returns how many
// were removed.
func (r *Registry) PruneStale(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, f := range r.byID {
		if f.UpdatedAt.Before(cutoff) {
			if f.AuthCode != "" {
				delete(r.byCode, f.AuthCode)
			}
			delete(r.byID, id)
			removed++
		}
	}
	return removed
}

func generateAuthCode() (string, error) {
	buf, err := utils.RandBytes(16)
	if err != nil {
		return "", err
	}
	return "mock_" + hex.EncodeToString(buf), nil
}
