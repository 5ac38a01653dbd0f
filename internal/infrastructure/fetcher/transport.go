package fetcher

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

// NewClient builds the HTTP client used for pages and images. With
// fingerprint set, https requests present a browser TLS ClientHello.
// A proxy always uses standard TLS because uTLS cannot tunnel through CONNECT.
func NewClient(timeout time.Duration, fingerprint bool, proxy string) *http.Client {
	dialer := &net.Dialer{Timeout: timeout}
	h1 := &http.Transport{DialContext: dialer.DialContext}

	if proxy != "" {
		if proxyURL, err := url.Parse(proxy); err == nil {
			h1.Proxy = http.ProxyURL(proxyURL)
		}
		return &http.Client{Timeout: timeout, Transport: h1}
	}
	if !fingerprint {
		return &http.Client{Timeout: timeout, Transport: h1}
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &browserTransport{
			dialer: dialer,
			h1:     h1,
			h2:     &http2.Transport{},
		},
	}
}

// utlsConn exposes the ConnectionState net/http2 expects.
type utlsConn struct {
	*utls.UConn
}

func (c *utlsConn) ConnectionState() tls.ConnectionState {
	cs := c.UConn.ConnectionState()
	return tls.ConnectionState{
		Version:                    cs.Version,
		HandshakeComplete:          cs.HandshakeComplete,
		CipherSuite:                cs.CipherSuite,
		NegotiatedProtocol:         cs.NegotiatedProtocol,
		NegotiatedProtocolIsMutual: cs.NegotiatedProtocolIsMutual,
		ServerName:                 cs.ServerName,
		PeerCertificates:           cs.PeerCertificates,
		VerifiedChains:             cs.VerifiedChains,
		OCSPResponse:               cs.OCSPResponse,
		TLSUnique:                  cs.TLSUnique,
	}
}

type browserTransport struct {
	dialer *net.Dialer
	h1     *http.Transport
	h2     *http2.Transport
}

func (bt *browserTransport) dialUTLS(ctx context.Context, addr string) (net.Conn, string, error) {
	conn, err := bt.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, "", err
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	tlsConn := utls.UClient(conn, &utls.Config{ServerName: host}, utls.HelloChrome_Auto)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = conn.Close()
		return nil, "", err
	}
	return &utlsConn{tlsConn}, tlsConn.ConnectionState().NegotiatedProtocol, nil
}

func (bt *browserTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return bt.h1.RoundTrip(req)
	}

	addr := req.URL.Host
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, "443")
	}

	conn, alpn, err := bt.dialUTLS(req.Context(), addr)
	if err != nil {
		return nil, err
	}

	if alpn == "h2" {
		cc, err := bt.h2.NewClientConn(conn)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		return cc.RoundTrip(req)
	}

	// one-shot transport around the already negotiated connection
	t := &http.Transport{
		DialTLSContext: func(context.Context, string, string) (net.Conn, error) {
			return conn, nil
		},
	}
	return t.RoundTrip(req)
}
