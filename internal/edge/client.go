// Package edge invokes Supabase edge functions (payment-order creation,
// payment verification, SMS and email dispatch). The supabase-go client does
// not expose a functions API, so this is a small dedicated HTTP client with
// client-side rate limiting and retry on transient failures.
package edge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/joshua-takyi/tripbay/internal/observability"
)

var (
	ErrUnauthorized = errors.New("edge: unauthorized")
	ErrNotFound     = errors.New("edge: function not found")
	ErrRemote       = errors.New("edge: remote error")
)

type Client struct {
	base string
	key  string
	hc   *http.Client
	rl   *rate.Limiter
}

// New builds a client for base, typically "<supabase-url>/functions/v1".
func New(base, anonKey string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("edge base URL is required")
	}
	if rps <= 0 {
		rps = 10
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		key:  anonKey,
		hc:   &http.Client{Timeout: 20 * time.Second},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// Invoke POSTs payload to the named function and decodes the JSON response
// into out (out may be nil when the body is irrelevant). Retries on 429 and
// transient 5xx. A response that fails to decode is a transport error, never
// a partial result.
func (c *Client) Invoke(ctx context.Context, name string, payload any, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %v", name, err)
	}
	url := c.base + "/" + name

	start := time.Now()
	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if c.key != "" {
			req.Header.Set("Authorization", "Bearer "+c.key)
			req.Header.Set("apikey", c.key)
		}

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}

		status := resp.StatusCode
		switch {
		case status == http.StatusOK || status == http.StatusCreated:
			defer resp.Body.Close()
			observability.ObserveExternal(name, status, time.Since(start))
			if out == nil {
				io.Copy(io.Discard, resp.Body)
				return nil
			}
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("failed to decode %s response: %v", name, err)
			}
			return nil

		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			drain(resp)
			observability.ObserveExternal(name, status, time.Since(start))
			return ErrUnauthorized

		case status == http.StatusNotFound:
			drain(resp)
			observability.ObserveExternal(name, status, time.Since(start))
			return ErrNotFound

		case status == http.StatusTooManyRequests || status >= 500:
			drain(resp)
			lastErr = fmt.Errorf("%w: %s returned %d", ErrRemote, name, status)
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			observability.ObserveExternal(name, status, time.Since(start))
			return lastErr

		default:
			msg := readError(resp)
			observability.ObserveExternal(name, status, time.Since(start))
			return fmt.Errorf("%w: %s returned %d: %s", ErrRemote, name, status, msg)
		}
	}

	return lastErr
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func readError(resp *http.Response) string {
	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(b, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return strings.TrimSpace(string(b))
}

func backoff(attempt int) time.Duration {
	base := time.Duration(1<<attempt) * 250 * time.Millisecond
	jitter := time.Duration(rand.Int63n(int64(base / 2)))
	return base + jitter
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
