package intercept

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Transport is an http.RoundTripper that consults a Router before letting
// any request reach the network. Install it on a client (or a browsing
// context) to stand a mock backend in for the real one.
type Transport struct {
	Router *Router
	// Base handles passthrough and unmatched requests. Nil means
	// http.DefaultTransport.
	Base http.RoundTripper
}

func NewTransport(router *Router) *Transport {
	return &Transport{Router: router}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t == nil || t.Router == nil {
		return t.base().RoundTrip(req)
	}
	outcome, ok := t.Router.decide(req)
	if !ok {
		return t.base().RoundTrip(req)
	}
	switch o := outcome.(type) {
	case FulfillOutcome:
		if err := waitDelay(req, o.Response.Delay); err != nil {
			return nil, err
		}
		return synthesize(req, o.Response), nil
	case AbortOutcome:
		if err := waitDelay(req, o.Delay); err != nil {
			return nil, err
		}
		// Surfaces to http.Client callers as a *url.Error wrapping
		// ErrRouteAborted, same shape as a real connection failure.
		return nil, ErrRouteAborted
	case PassthroughOutcome:
		return t.base().RoundTrip(req)
	default:
		return nil, fmt.Errorf("unknown intercept outcome %T", outcome)
	}
}

func (t *Transport) base() http.RoundTripper {
	if t != nil && t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func synthesize(req *http.Request, resp Response) *http.Response {
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	header := http.Header{}
	for k, vs := range resp.Header {
		for _, v := range vs {
			header.Add(k, v)
		}
	}
	if resp.ContentType != "" {
		header.Set("Content-Type", resp.ContentType)
	}
	body := resp.Body
	if body == nil {
		body = []byte{}
	}
	return &http.Response{
		StatusCode:    status,
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

func waitDelay(req *http.Request, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-req.Context().Done():
		return req.Context().Err()
	case <-timer.C:
		return nil
	}
}
