package xhttp

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/garrettladley/folio/internal/xcontext"
)

// GetRequestIP returns the client address resolved by the ClientIP
// middleware, or the connection peer when none was resolved.
func GetRequestIP(r *http.Request) string {
	if ip, ok := xcontext.GetClientIP(r.Context()); ok {
		return ip
	}
	return stripPort(r.RemoteAddr)
}

// ClientIPResolver attributes a request to a client address. X-Forwarded-For
// is only read when the connection peer is a trusted proxy, and then the
// right-most hop that is not itself a trusted proxy wins. Entries to the left
// of that hop are client-supplied and ignored.
type ClientIPResolver struct {
	trusted []netip.Prefix
}

func NewClientIPResolver(trusted []netip.Prefix) *ClientIPResolver {
	return &ClientIPResolver{trusted: trusted}
}

func (c *ClientIPResolver) Resolve(r *http.Request) string {
	peer := stripPort(r.RemoteAddr)
	if !c.isTrusted(peer) {
		return peer
	}

	hops := r.Header.Values(XForwardedFor)
	var entries []string
	for _, h := range hops {
		for entry := range strings.SplitSeq(h, ",") {
			if entry = strings.TrimSpace(entry); entry != "" {
				entries = append(entries, stripPort(entry))
			}
		}
	}

	for i := len(entries) - 1; i >= 0; i-- {
		if !c.isTrusted(entries[i]) {
			return entries[i]
		}
	}
	if len(entries) > 0 {
		return entries[0]
	}
	return peer
}

func (c *ClientIPResolver) isTrusted(ip string) bool {
	if len(c.trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range c.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ParseTrustedProxies accepts bare addresses and CIDR ranges.
func ParseTrustedProxies(values []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if strings.Contains(v, "/") {
			prefix, err := netip.ParsePrefix(v)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", v, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(v)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", v, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func stripPort(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
