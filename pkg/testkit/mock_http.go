// Package testkit scripts upstream HTTP responses for tests.
//
//	mt := testkit.NewMockTransport().
//	    Once(http.MethodPost, linkURL, 400, `{}`).
//	    On(http.MethodPost, linkURL, 200, `{"store_id":"store_99"}`)
//	svc := services.NewStoreLinker(linkURL, mt.Client(), 0)
//	...
//	mt.AssertAllCalled(t)
package testkit

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// RecordedCall is one request seen by the transport.
type RecordedCall struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

type mockStep struct {
	method    string
	prefix    string
	status    int
	body      string
	once      bool
	callCount int
}

// MockTransport implements http.RoundTripper. Steps are matched in
// registration order by method and URL prefix; a step registered with Once
// is skipped after it has answered one call.
type MockTransport struct {
	mu    sync.Mutex
	steps []*mockStep
	calls []RecordedCall
}

func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// On answers every matching request with status and body.
func (mt *MockTransport) On(method, urlPrefix string, status int, body string) *MockTransport {
	return mt.add(method, urlPrefix, status, body, false)
}

// Once answers the first matching request only.
func (mt *MockTransport) Once(method, urlPrefix string, status int, body string) *MockTransport {
	return mt.add(method, urlPrefix, status, body, true)
}

func (mt *MockTransport) add(method, urlPrefix string, status int, body string, once bool) *MockTransport {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.steps = append(mt.steps, &mockStep{
		method: method,
		prefix: urlPrefix,
		status: status,
		body:   body,
		once:   once,
	})
	return mt
}

// Client returns an *http.Client that sends through this transport.
func (mt *MockTransport) Client() *http.Client {
	return &http.Client{Transport: mt}
}

func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.calls = append(mt.calls, RecordedCall{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header.Clone(),
		Body:   body,
	})

	for _, step := range mt.steps {
		if step.method != "" && step.method != req.Method {
			continue
		}
		if !strings.HasPrefix(req.URL.String(), step.prefix) {
			continue
		}
		if step.once && step.callCount > 0 {
			continue
		}
		step.callCount++
		return &http.Response{
			StatusCode: step.status,
			Status:     fmt.Sprintf("%d %s", step.status, http.StatusText(step.status)),
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(bytes.NewReader([]byte(step.body))),
			Request:    req,
		}, nil
	}

	return nil, fmt.Errorf("testkit: unexpected outgoing call %s %s", req.Method, req.URL)
}

// Calls returns a copy of every request seen so far.
func (mt *MockTransport) Calls() []RecordedCall {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return append([]RecordedCall(nil), mt.calls...)
}

// LastCall returns the most recent request. It fails the test when none was made.
func (mt *MockTransport) LastCall(t *testing.T) RecordedCall {
	t.Helper()
	calls := mt.Calls()
	if !assert.NotEmpty(t, calls, "no outgoing calls recorded") {
		return RecordedCall{}
	}
	return calls[len(calls)-1]
}

// AssertAllCalled fails the test for every step that never answered.
func (mt *MockTransport) AssertAllCalled(t *testing.T) {
	t.Helper()
	mt.mu.Lock()
	defer mt.mu.Unlock()
	for _, step := range mt.steps {
		assert.NotZero(t, step.callCount, "mock %s %s was never called", step.method, step.prefix)
	}
}
