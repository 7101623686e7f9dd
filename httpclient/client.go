package httpclient

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/avast/retry-go"

	"github.com/go-srpc/srpc/errorsbp"
)

// Do sends req with cfg's redirect and retry policy (§7): a round trip
// returning a transport-level error is attempted up to cfg.RetryMax times
// in total; a
// 3xx response with a Location header is replayed against that location up
// to cfg.RedirectMax times, downgrading the method to GET for 301/302/303
// (HEAD is preserved) and preserving it for 307/308. req.Body, when
// non-nil, is buffered up front so every replay can resend it.
func Do(client *http.Client, req *http.Request, cfg HTTPClientConfig) (*http.Response, error) {
	body, err := bufferBody(req)
	if err != nil {
		return nil, err
	}

	// Redirects are replayed by the loop below, so the client hands every
	// 3xx response back unfollowed.
	noFollow := *client
	noFollow.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	client = &noFollow

	var resp *http.Response
	redirects := 0

	err = retry.Do(
		func() error {
			r := req.Clone(req.Context())
			r.Body = body()

			var rtErr error
			resp, rtErr = client.Do(r)
			if rtErr != nil {
				return rtErr
			}
			return nil
		},
		retry.Attempts(uint(cfg.retryMax())),
	)
	if err != nil {
		var retryErr retry.Error
		if errors.As(err, &retryErr) {
			var batch errorsbp.Batch
			batch.Add(retryErr.WrappedErrors()...)
			return nil, batch.Compile()
		}
		return nil, err
	}

	for redirects < cfg.redirectMax() && isRedirect(resp.StatusCode) {
		loc := resp.Header.Get("Location")
		if loc == "" {
			break
		}
		target, err := resp.Request.URL.Parse(loc)
		if err != nil {
			return resp, err
		}
		next, err := http.NewRequestWithContext(req.Context(), downgradeMethod(req.Method, resp.StatusCode), target.String(), body())
		if err != nil {
			return resp, err
		}
		next.Header = req.Header.Clone()

		resp, err = client.Do(next)
		if err != nil {
			return nil, err
		}
		req = next
		redirects++
	}

	return resp, nil
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}

// downgradeMethod implements §7's redirect method table: 301/302/303
// downgrade to GET (HEAD stays HEAD); 307/308 preserve the original method.
func downgradeMethod(method string, statusCode int) string {
	switch statusCode {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther:
		if method == http.MethodHead {
			return http.MethodHead
		}
		return http.MethodGet
	default:
		return method
	}
}

// bufferBody drains req.Body (if any) into memory and returns a factory
// that produces a fresh io.ReadCloser over those bytes for each attempt —
// required because both the retry loop and the redirect replay need to
// resend the same body.
func bufferBody(req *http.Request) (func() io.ReadCloser, error) {
	if req.Body == nil {
		return func() io.ReadCloser { return nil }, nil
	}
	b, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	req.Body.Close()
	return func() io.ReadCloser {
		return io.NopCloser(bytes.NewReader(b))
	}, nil
}
