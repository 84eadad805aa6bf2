// Package inventory talks to the ISS inventory backend and, when it cannot,
// fabricates structurally plausible stand-in responses.
package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"iss-assistant-backend/internal/observability"
)

const DefaultBaseURL = "http://localhost:8000"

// ErrNoEndpoint is wrapped by the DispatchError returned for a blank endpoint.
var ErrNoEndpoint = errors.New("endpoint is required")

// DispatchError reports a failed backend call. StatusCode is zero when the
// request never produced a response.
type DispatchError struct {
	Endpoint   string
	Method     string
	StatusCode int
	Body       string
	Err        error
}

func (e *DispatchError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("backend %s %s failed with status %d: %s", e.Method, e.Endpoint, e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("backend %s %s failed: %v", e.Method, e.Endpoint, e.Err)
	default:
		return fmt.Sprintf("backend %s %s failed", e.Method, e.Endpoint)
	}
}

func (e *DispatchError) Unwrap() error { return e.Err }

// Dispatcher performs exactly one HTTP request per call. It never retries.
type Dispatcher struct {
	httpClient *http.Client
	baseURL    string
	log        zerolog.Logger
}

func NewDispatcher(baseURL string, timeout time.Duration) *Dispatcher {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		log:        observability.Component("dispatcher"),
	}
}

// WithHTTPClient swaps the transport, mostly for tests.
func (d *Dispatcher) WithHTTPClient(c *http.Client) *Dispatcher {
	d.httpClient = c
	return d
}

func (d *Dispatcher) BaseURL() string { return d.baseURL }

// Ping reports whether the backend answers HTTP at all; any status counts.
func (d *Dispatcher) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// Dispatch calls the backend. GET and DELETE carry params on the query
// string; other methods send payload as a JSON body. A 2xx JSON body is
// decoded into a generic value, a non-JSON body is returned as a string and
// an empty body yields nil.
func (d *Dispatcher) Dispatch(ctx context.Context, endpoint, method string, params, payload map[string]any) (any, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}
	if strings.TrimSpace(endpoint) == "" {
		observability.RecordDispatch(otherRoute, ErrNoEndpoint)
		return nil, &DispatchError{Method: method, Err: ErrNoEndpoint}
	}

	out, err := d.dispatch(ctx, endpoint, method, params, payload)
	observability.RecordDispatch(routeLabel(endpoint), err)
	if err != nil {
		d.log.Warn().Err(err).Str("endpoint", endpoint).Str("method", method).Msg("backend dispatch failed")
		return nil, err
	}
	return out, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, endpoint, method string, params, payload map[string]any) (any, error) {
	fail := func(status int, body string, err error) error {
		return &DispatchError{Endpoint: endpoint, Method: method, StatusCode: status, Body: body, Err: err}
	}

	u, err := url.Parse(d.baseURL + "/" + strings.TrimLeft(endpoint, "/"))
	if err != nil {
		return nil, fail(0, "", fmt.Errorf("invalid endpoint: %w", err))
	}

	var body io.Reader
	switch method {
	case http.MethodGet, http.MethodDelete, http.MethodHead:
		q := u.Query()
		encodeParams(q, params)
		u.RawQuery = q.Encode()
	default:
		if payload == nil {
			payload = map[string]any{}
		}
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fail(0, "", fmt.Errorf("encode payload: %w", err))
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fail(0, "", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fail(0, "", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fail(resp.StatusCode, strings.TrimSpace(string(b)), nil)
	}
	if err != nil {
		return nil, fail(0, "", fmt.Errorf("read body: %w", err))
	}
	return decodeBody(b), nil
}

func decodeBody(b []byte) any {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return string(b)
	}
	return v
}

// encodeParams adds params to q in key order, skipping nil values.
func encodeParams(q url.Values, params map[string]any) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := params[k]
		if v == nil {
			continue
		}
		if list, ok := v.([]any); ok {
			for _, item := range list {
				if item != nil {
					q.Add(k, formatParam(item))
				}
			}
			continue
		}
		q.Set(k, formatParam(v))
	}
}

func formatParam(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
