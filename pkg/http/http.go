// Package http is a small fluent client for the upstream APIs the dashboard
// talks to (identity provider, store linking, order API).
//
//	resp, err := http.Get(ordersURL).
//	    Query("store_id", storeID).
//	    Bearer(token).
//	    Service("orders").
//	    WithContext(ctx).
//	    Send()
//	if err != nil { ... }           // transport failure
//	if err := resp.Throw(); err != nil { ... } // *HTTPError on non-2xx
//
// Each request is sent once; failures are returned to the caller.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	gohttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yuimaru-ship/storefront/pkg/logger"
	"github.com/yuimaru-ship/storefront/pkg/metrics"
	"github.com/yuimaru-ship/storefront/pkg/reqid"
)

var defaultTransport = &gohttp.Transport{
	Proxy:               gohttp.ProxyFromEnvironment,
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 20,
	IdleConnTimeout:     90 * time.Second,
}

// DefaultClient is shared by every request that does not call Client.
// Tests may swap its Transport and restore it with ResetTransport.
var DefaultClient = &gohttp.Client{Transport: defaultTransport}

func ResetTransport() {
	DefaultClient.Transport = defaultTransport
}

// HTTPError is returned for any non-2xx upstream response.
type HTTPError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http error! status: %d", e.Status)
	}
	return fmt.Sprintf("http error! status: %d, response: %s", e.Status, e.Body)
}

// ------------------- Request -------------------

type Request struct {
	method  string
	url     string
	query   url.Values
	headers map[string]string
	body    interface{}
	client  *gohttp.Client
	service string
	timeout time.Duration
	ctx     context.Context
}

func Get(target string) *Request  { return newRequest(gohttp.MethodGet, target) }
func Post(target string) *Request { return newRequest(gohttp.MethodPost, target) }

func newRequest(method, target string) *Request {
	return &Request{
		method:  method,
		url:     target,
		query:   url.Values{},
		headers: map[string]string{"Accept": "application/json"},
		client:  DefaultClient,
		service: "upstream",
		ctx:     context.Background(),
	}
}

func (r *Request) Header(key, value string) *Request {
	r.headers[key] = value
	return r
}

// Bearer sets Authorization: Bearer <token>. An empty token is a no-op so
// callers can pass through an optional session token.
func (r *Request) Bearer(token string) *Request {
	if token == "" {
		return r
	}
	return r.Header("Authorization", "Bearer "+token)
}

func (r *Request) Query(key, value string) *Request {
	r.query.Set(key, value)
	return r
}

// Body sets the request body: url.Values are form-encoded, string and
// []byte are sent raw, anything else is marshalled to JSON.
func (r *Request) Body(v interface{}) *Request {
	r.body = v
	return r
}

// Client overrides the *http.Client used to send the request.
func (r *Request) Client(c *gohttp.Client) *Request {
	if c != nil {
		r.client = c
	}
	return r
}

// Service names the upstream for metrics and logs.
func (r *Request) Service(name string) *Request {
	r.service = name
	return r
}

// Timeout bounds the request. Zero means no bound beyond the context.
func (r *Request) Timeout(d time.Duration) *Request {
	r.timeout = d
	return r
}

func (r *Request) WithContext(ctx context.Context) *Request {
	if ctx != nil {
		r.ctx = ctx
	}
	return r
}

// ------------------- Send -------------------

func (r *Request) Send() (*Response, error) {
	return r.do()
}

func (r *Request) fullURL() string {
	if len(r.query) == 0 {
		return r.url
	}
	sep := "?"
	if strings.Contains(r.url, "?") {
		sep = "&"
	}
	return r.url + sep + r.query.Encode()
}

func (r *Request) do() (*Response, error) {
	body, ct, err := r.buildBody()
	if err != nil {
		return nil, err
	}

	ctx := r.ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	target := r.fullURL()
	req, err := gohttp.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("http: build request: %w", err)
	}

	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	if id := reqid.FromCtx(r.ctx); id != "" {
		req.Header.Set(reqid.Header, id)
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		metrics.ObserveUpstream(r.service, 0, start)
		return nil, fmt.Errorf("http: %s %s: %w", r.method, r.url, err)
	}
	defer resp.Body.Close()
	metrics.ObserveUpstream(r.service, resp.StatusCode, start)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("http: read body: %w", err)
	}

	logger.WithCtx(r.ctx).Debug("upstream call",
		"service", r.service,
		"method", r.method,
		"url", r.url,
		"status", resp.StatusCode,
		"duration", time.Since(start).String(),
	)

	return &Response{
		Method:     r.method,
		URL:        r.url,
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Raw:        raw,
	}, nil
}

func (r *Request) buildBody() (io.Reader, string, error) {
	if r.body == nil {
		return nil, "", nil
	}
	switch v := r.body.(type) {
	case url.Values:
		return strings.NewReader(v.Encode()), "application/x-www-form-urlencoded", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	case []byte:
		return bytes.NewReader(v), "application/octet-stream", nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("http: marshal body: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil
	}
}

// ------------------- Response -------------------

type Response struct {
	Method     string
	URL        string
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
}

func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) JSON(dest interface{}) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}

func (r *Response) Text() string {
	return string(r.Raw)
}

// Throw returns *HTTPError when the status is not 2xx.
func (r *Response) Throw() error {
	if r.OK() {
		return nil
	}
	return &HTTPError{Method: r.Method, URL: r.URL, Status: r.StatusCode, Body: string(r.Raw)}
}
