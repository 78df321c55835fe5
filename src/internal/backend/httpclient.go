// FILE: asynclog/src/internal/backend/httpclient.go
package backend

import (
	"context"
	"fmt"
	"time"

	"asynclog/src/internal/core"
	"asynclog/src/internal/version"

	"github.com/valyala/fasthttp"
)

// newHTTPClient builds the fasthttp client shared by the cloud backends.
func newHTTPClient() *fasthttp.Client {
	return &fasthttp.Client{
		MaxConnsPerHost:     10,
		MaxIdleConnDuration: 10 * time.Second,
		ReadTimeout:         core.DefaultSendTimeout,
		WriteTimeout:        core.DefaultSendTimeout,
	}
}

// postJSON performs a JSON POST honoring both the context deadline and
// context cancellation. It returns the response status and a copy of the
// response body; transport failures are mapped to ErrUnavailable.
func postJSON(ctx context.Context, client *fasthttp.Client, url string, headers map[string]string, body []byte) (int, []byte, error) {
	deadline := time.Now().Add(core.DefaultSendTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	type httpResult struct {
		status int
		body   []byte
		err    error
	}

	// fasthttp has no context plumbing; the request runs in its own
	// goroutine which owns the pooled request/response objects, so an
	// early return on cancellation never races their release.
	resultCh := make(chan httpResult, 1)
	go func() {
		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(url)
		req.Header.SetMethod(fasthttp.MethodPost)
		req.Header.SetContentType("application/json")
		req.Header.Set("User-Agent", fmt.Sprintf("asynclog/%s", version.Short()))
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		req.SetBody(body)

		if err := client.DoDeadline(req, resp, deadline); err != nil {
			resultCh <- httpResult{err: err}
			return
		}

		respBody := make([]byte, len(resp.Body()))
		copy(respBody, resp.Body())
		resultCh <- httpResult{status: resp.StatusCode(), body: respBody}
	}()

	select {
	case result := <-resultCh:
		if result.err != nil {
			return 0, nil, fmt.Errorf("%w: request failed: %w", ErrUnavailable, result.err)
		}
		return result.status, result.body, nil
	case <-ctx.Done():
		return 0, nil, fmt.Errorf("%w: request abandoned: %w", ErrUnavailable, ctx.Err())
	}
}

// bearerHeader resolves a token from creds into an Authorization header.
// Token failures count as authentication failures.
func bearerHeader(ctx context.Context, creds Credentials) (map[string]string, error) {
	if creds == nil {
		return map[string]string{}, nil
	}

	token, err := creds.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: token acquisition: %w", ErrAuth, err)
	}
	if token == "" {
		return map[string]string{}, nil
	}

	return map[string]string{"Authorization": "Bearer " + token}, nil
}
