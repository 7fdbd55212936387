// Package intercept substitutes synthetic responses for real HTTP calls.
// A Router holds ordered rules keyed by URL glob and method; a Transport
// plugs the router into any http.Client as its RoundTripper. Requests a
// rule fulfills never leave the process; aborted requests surface to the
// client as transport-level failures.
package intercept

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

var (
	ErrPatternOverlap = errors.New("intercept pattern overlaps an existing rule")
	ErrRouteAborted   = errors.New("request aborted by intercept rule")
)

// Response is a synthetic reply fulfilled in place of the real call.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
	Header      http.Header
	// Delay is waited out before the response is produced, simulating
	// network latency. Request-context cancellation interrupts it.
	Delay time.Duration
}

// Outcome is what a handler decides for one intercepted request.
type Outcome interface{ isOutcome() }

type FulfillOutcome struct{ Response Response }

// AbortOutcome fails the request at the transport level. A non-zero Delay
// simulates a timeout rather than an immediate connection failure.
type AbortOutcome struct{ Delay time.Duration }

// PassthroughOutcome lets the real call proceed on the base transport.
type PassthroughOutcome struct{}

func (FulfillOutcome) isOutcome()     {}
func (AbortOutcome) isOutcome()       {}
func (PassthroughOutcome) isOutcome() {}

// HandlerFunc decides the outcome for a matched request. Handlers must not
// retain the request past their return.
type HandlerFunc func(r *http.Request) Outcome

type rule struct {
	pattern *Pattern
	method  string
	handler HandlerFunc
	hits    int
}

// Router matches intercepted requests against registered rules. Rules are
// evaluated in registration order, but registration rejects same-method
// pattern overlap outright, so order never decides a match.
type Router struct {
	mu    sync.Mutex
	rules []*rule
}

func NewRouter() *Router {
	return &Router{}
}

// Handle registers a rule. Method may be empty to match every method; an
// empty-method rule overlaps any method. Registration fails with
// ErrPatternOverlap when an existing rule could claim the same URL.
func (rt *Router) Handle(pattern, method string, handler HandlerFunc) error {
	if handler == nil {
		return errors.New("nil intercept handler")
	}
	p, err := CompilePattern(pattern)
	if err != nil {
		return err
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	rt.mu.Lock()
	defer rt.mu.Unlock()
	for _, existing := range rt.rules {
		if !methodsCollide(existing.method, method) {
			continue
		}
		if existing.pattern.Overlaps(p) {
			return fmt.Errorf("%w: %q vs %q", ErrPatternOverlap, pattern, existing.pattern)
		}
	}
	rt.rules = append(rt.rules, &rule{pattern: p, method: method, handler: handler})
	return nil
}

// Fulfill registers a rule answering every match with the same response.
func (rt *Router) Fulfill(pattern, method string, resp Response) error {
	return rt.Handle(pattern, method, func(*http.Request) Outcome {
		return FulfillOutcome{Response: resp}
	})
}

// Abort registers a rule that fails every match at the transport level,
// the analogue of a connection failure or a closed OAuth popup.
func (rt *Router) Abort(pattern, method string) error {
	return rt.Handle(pattern, method, func(*http.Request) Outcome {
		return AbortOutcome{}
	})
}

// AbortAfter is Abort with a delay, simulating a timeout.
func (rt *Router) AbortAfter(pattern, method string, delay time.Duration) error {
	return rt.Handle(pattern, method, func(*http.Request) Outcome {
		return AbortOutcome{Delay: delay}
	})
}

// Passthrough registers a rule that explicitly lets matches through to the
// base transport, still counting hits for assertions.
func (rt *Router) Passthrough(pattern, method string) error {
	return rt.Handle(pattern, method, func(*http.Request) Outcome {
		return PassthroughOutcome{}
	})
}

// Clear removes all rules registered under the exact pattern string.
// Clearing an unknown pattern is a no-op.
func (rt *Router) Clear(pattern string) {
	pattern = strings.TrimSpace(pattern)
	rt.mu.Lock()
	defer rt.mu.Unlock()
	kept := rt.rules[:0]
	for _, r := range rt.rules {
		if r.pattern.String() != pattern {
			kept = append(kept, r)
		}
	}
	rt.rules = kept
}

func (rt *Router) ClearAll() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.rules = nil
}

// Hits reports how many requests the rule for pattern has matched.
func (rt *Router) Hits(pattern string) int {
	pattern = strings.TrimSpace(pattern)
	rt.mu.Lock()
	defer rt.mu.Unlock()
	total := 0
	for _, r := range rt.rules {
		if r.pattern.String() == pattern {
			total += r.hits
		}
	}
	return total
}

func (rt *Router) Len() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return len(rt.rules)
}

// decide runs the first matching rule's handler; ok is false when no rule
// matched and the request should proceed untouched.
func (rt *Router) decide(req *http.Request) (Outcome, bool) {
	url := req.URL.String()
	rt.mu.Lock()
	var matched *rule
	for _, r := range rt.rules {
		if r.method != "" && r.method != req.Method {
			continue
		}
		if r.pattern.Matches(url) {
			r.hits++
			matched = r
			break
		}
	}
	rt.mu.Unlock()
	if matched == nil {
		return nil, false
	}
	return matched.handler(req), true
}

func methodsCollide(a, b string) bool {
	return a == "" || b == "" || a == b
}
