// Package httpclient carries the configuration knobs and redirect/retry
// policy for the HTTP-tunneled transports (§6, §7): the core codecs
// (srpcx/brpcx/trpcx/thriftx's http.go files) only render and parse a single
// request/response; a caller wanting the server-level timeouts or the
// client-level redirect/retry behavior the spec describes uses this package
// around them.
package httpclient

import "time"

// ServerConfig holds the server-side knobs from §6.
type ServerConfig struct {
	MaxConnections      int
	PeerResponseTimeout time.Duration
	ReceiveTimeout      time.Duration
	KeepAliveTimeout    time.Duration
	// RequestSizeLimit bounds a single inbound frame; 0 uses the 2 GiB - 1
	// default every wire-frame codec's Decoder already falls back to.
	RequestSizeLimit int
	SSLAcceptTimeout time.Duration
}

// ClientConfig holds the client-side knobs from §6, common to every
// transport's TCP client.
type ClientConfig struct {
	SendTimeout      time.Duration
	ReceiveTimeout   time.Duration
	WatchTimeout     time.Duration
	KeepAliveTimeout time.Duration
	RetryMax         int
}

// DefaultKeepAlive and MaxHTTPKeepAlive are the HTTP client's two
// keep-alive defaults from §6: the connection is recycled after
// DefaultKeepAlive unless the caller raises it, but never past
// MaxHTTPKeepAlive.
const (
	DefaultKeepAlive = 60_000 * time.Millisecond
	MaxHTTPKeepAlive = 300_000 * time.Millisecond
)

// HTTPClientConfig adds the HTTP-tunnel-specific knobs from §6 on top of
// ClientConfig.
type HTTPClientConfig struct {
	ClientConfig

	// RedirectMax bounds how many 3xx redirects Do will follow. <= 0 uses
	// DefaultRedirectMax.
	RedirectMax int
	// RetryMax bounds how many attempts in total Do makes for a request whose
	// round trip returns a transport-level error. <= 0 uses DefaultRetryMax.
	RetryMax int
}

// DefaultRedirectMax and DefaultRetryMax are the HTTP client's defaults
// from §6.
const (
	DefaultRedirectMax = 2
	DefaultRetryMax    = 5
)

func (c HTTPClientConfig) redirectMax() int {
	if c.RedirectMax <= 0 {
		return DefaultRedirectMax
	}
	return c.RedirectMax
}

func (c HTTPClientConfig) retryMax() int {
	if c.RetryMax <= 0 {
		return DefaultRetryMax
	}
	return c.RetryMax
}

// EffectiveKeepAlive clamps d to [0, MaxHTTPKeepAlive], defaulting to
// DefaultKeepAlive when d is zero.
func EffectiveKeepAlive(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultKeepAlive
	}
	if d > MaxHTTPKeepAlive {
		return MaxHTTPKeepAlive
	}
	return d
}
