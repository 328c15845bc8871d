// Package probe provides readiness waiters for services brought up by the
// engine. The engine itself never blocks on readiness; callers that need it
// layer these waiters on top.
package probe

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

const pollInterval = 1 * time.Second

// WaitForPort blocks until a TCP connection to host:port succeeds, polling
// once per second. It fails when the timeout elapses or the context is
// cancelled first.
func WaitForPort(ctx context.Context, host string, port int, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	dialer := &net.Dialer{Timeout: pollInterval}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			conn.Close()
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s: %w", addr, ctx.Err())
		case <-ticker.C:
		}
	}
}

// WaitForHTTP blocks until a GET of the URL returns a 2xx status, polling
// once per second. Connection errors and non-2xx responses both count as not
// ready.
func WaitForHTTP(ctx context.Context, url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := &http.Client{Timeout: pollInterval}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if ready(ctx, client, url) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s: %w", url, ctx.Err())
		case <-ticker.C:
		}
	}
}

func ready(ctx context.Context, client *http.Client, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
