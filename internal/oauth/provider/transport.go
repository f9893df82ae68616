package provider

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// Transport abstracts the HTTP round trip so the retry policy can swap the
// standard client for the pinned-IP fallback without changing request
// semantics, and so both paths are unit-testable without real DNS.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// Resolver is the direct DNS lookup used by the fallback path.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

type systemResolver struct{}

func (systemResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	return net.DefaultResolver.LookupHost(ctx, host)
}

// standardTransport is the normal path: plain http.Client with a timeout.
type standardTransport struct {
	client *http.Client
}

func newStandardTransport(timeout time.Duration) *standardTransport {
	return &standardTransport{client: &http.Client{Timeout: timeout}}
}

func (t *standardTransport) Do(req *http.Request) (*http.Response, error) {
	return t.client.Do(req)
}

// pinnedTransport dials a fixed IP instead of resolving the request host,
// while leaving the URL (and therefore the Host header and TLS server name)
// untouched. Escape hatch for environments with a broken or slow default
// resolver: the request on the wire is identical to the standard path.
type pinnedTransport struct {
	client *http.Client
}

func newPinnedTransport(ip string, timeout time.Duration) *pinnedTransport {
	dialer := &net.Dialer{Timeout: timeout}
	inner := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			_, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, err
			}
			return dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
		},
		ForceAttemptHTTP2: true,
	}
	return &pinnedTransport{client: &http.Client{Timeout: timeout, Transport: inner}}
}

func (t *pinnedTransport) Do(req *http.Request) (*http.Response, error) {
	return t.client.Do(req)
}

// isDNSError reports whether err is (or wraps) a name-resolution failure.
func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
