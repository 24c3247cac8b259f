package kv

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/bigdatacesga/registry/pkg/log"
	"github.com/bigdatacesga/registry/pkg/metrics"
)

// kvEntry mirrors the wire shape of a Consul-KV-style backend: GET returns
// an array of entries, each value base64-encoded.
type kvEntry struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

// HTTPGateway talks to a hierarchical KV store over HTTP, shaped like
// http://<host>:<port>/v1/kv/<key> (spec §6). Calls go through a circuit
// breaker and a bounded retry loop so a flapping backend fails fast instead
// of blocking every goroutine in a bulk write.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker
	retries int
}

// NewHTTPGateway constructs a gateway against baseURL, e.g.
// "http://127.0.0.1:8500/v1/kv".
func NewHTTPGateway(baseURL string) *HTTPGateway {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "kv-gateway",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})
	return &HTTPGateway{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		cb:      cb,
		retries: 3,
	}
}

func (g *HTTPGateway) url(key string, query string) string {
	u := g.baseURL + "/" + strings.TrimPrefix(key, "/")
	if query != "" {
		u += "?" + query
	}
	return u
}

func (g *HTTPGateway) do(ctx context.Context, method, rawURL string, body []byte) (*http.Response, error) {
	result, err := g.cb.Execute(func() (interface{}, error) {
		return g.doWithRetry(ctx, method, rawURL, body)
	})
	if err != nil {
		return nil, err
	}
	return result.(*http.Response), nil
}

func (g *HTTPGateway) doWithRetry(ctx context.Context, method, rawURL string, body []byte) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= g.retries; attempt++ {
		if attempt > 0 {
			log.WithComponent("kv").Warn().
				Str("method", method).Str("url", rawURL).Int("attempt", attempt).
				Msg("retrying kv request")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff(attempt)):
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
		if err != nil {
			return nil, err
		}
		resp, err := g.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("kv: backend returned %d", resp.StatusCode)
			continue
		}
		return resp, nil
	}
	return nil, fmt.Errorf("kv: request failed after %d attempts: %w", g.retries+1, lastErr)
}

func backoff(attempt int) time.Duration {
	d := time.Duration(attempt*attempt) * 50 * time.Millisecond
	if d > 2*time.Second {
		return 2 * time.Second
	}
	return d
}

// Get implements Gateway.
func (g *HTTPGateway) Get(ctx context.Context, key string) (value string, err error) {
	defer func() { metrics.ObserveKVCall("get", err) }()

	resp, err := g.do(ctx, http.MethodGet, g.url(key, ""), nil)
	if err != nil {
		return "", fmt.Errorf("kv get %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		err = ErrNotFound
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("kv get %s: unexpected status %d", key, resp.StatusCode)
		return "", err
	}

	var entries []kvEntry
	if err = json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return "", fmt.Errorf("kv get %s: decode: %w", key, err)
	}
	if len(entries) == 0 {
		err = ErrNotFound
		return "", err
	}
	decoded, err := base64.StdEncoding.DecodeString(entries[0].Value)
	if err != nil {
		return "", fmt.Errorf("kv get %s: decode value: %w", key, err)
	}
	return string(decoded), nil
}

// Set implements Gateway.
func (g *HTTPGateway) Set(ctx context.Context, key, value string) (err error) {
	defer func() { metrics.ObserveKVCall("set", err) }()

	resp, err := g.do(ctx, http.MethodPut, g.url(key, ""), []byte(value))
	if err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("kv set %s: unexpected status %d", key, resp.StatusCode)
		return err
	}
	return nil
}

// Delete implements Gateway.
func (g *HTTPGateway) Delete(ctx context.Context, key string, recursive bool) (err error) {
	defer func() { metrics.ObserveKVCall("delete", err) }()

	q := ""
	if recursive {
		q = "recurse"
	}
	resp, err := g.do(ctx, http.MethodDelete, g.url(key, q), nil)
	if err != nil {
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("kv delete %s: unexpected status %d", key, resp.StatusCode)
		return err
	}
	return nil
}

// Recurse implements Gateway.
func (g *HTTPGateway) Recurse(ctx context.Context, prefix string) (out map[string]string, err error) {
	defer func() { metrics.ObserveKVCall("recurse", err) }()

	resp, err := g.do(ctx, http.MethodGet, g.url(prefix, "recurse"), nil)
	if err != nil {
		return nil, fmt.Errorf("kv recurse %s: %w", prefix, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		err = ErrNotFound
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("kv recurse %s: unexpected status %d", prefix, resp.StatusCode)
		return nil, err
	}

	var entries []kvEntry
	if err = json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("kv recurse %s: decode: %w", prefix, err)
	}
	if len(entries) == 0 {
		err = ErrNotFound
		return nil, err
	}

	out = make(map[string]string, len(entries))
	for _, e := range entries {
		decoded, derr := base64.StdEncoding.DecodeString(e.Value)
		if derr != nil {
			err = fmt.Errorf("kv recurse %s: decode value for %s: %w", prefix, e.Key, derr)
			return nil, err
		}
		out[e.Key] = string(decoded)
	}
	return out, nil
}
