// Package validate gates URLs before they ever reach the resolver: scheme and
// hostname sanity, a mutable domain blocklist, and rejection of private or
// loopback address literals (SSRF). The blocklist is in-memory only.
package validate

import (
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrInvalidURL — the URL does not parse or lacks an http(s) hostname.
	ErrInvalidURL = errors.New("validate: invalid url")
	// ErrBlockedHost — the host or one of its parent domains is blocklisted.
	ErrBlockedHost = errors.New("validate: blocked host")
	// ErrPrivateAddress — the host targets a private, loopback, or link-local
	// address.
	ErrPrivateAddress = errors.New("validate: private address")
)

// Validator holds the mutable blocklist and applies all checks.
// All methods are safe for concurrent use.
type Validator struct {
	mu      sync.RWMutex
	blocked map[string]struct{}
}

// New builds a Validator seeded with the given blocked domains.
func New(seed ...string) *Validator {
	v := &Validator{blocked: make(map[string]struct{}, len(seed))}
	for _, d := range seed {
		if d = normalizeHost(d); d != "" {
			v.blocked[d] = struct{}{}
		}
	}
	return v
}

// normalizeHost returns the canonical host: lowercase, trailing dot stripped.
func normalizeHost(host string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
}

// Check returns nil when rawURL may be fetched, or one of ErrInvalidURL,
// ErrBlockedHost, ErrPrivateAddress describing why not.
func (v *Validator) Check(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	host := normalizeHost(u.Hostname())
	if host == "" {
		return fmt.Errorf("%w: missing hostname", ErrInvalidURL)
	}

	if host == "localhost" {
		return fmt.Errorf("%w: %s", ErrPrivateAddress, host)
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		if addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() ||
			addr.IsLinkLocalMulticast() || addr.IsUnspecified() {
			return fmt.Errorf("%w: %s", ErrPrivateAddress, host)
		}
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	for bad := range v.blocked {
		if host == bad || strings.HasSuffix(host, "."+bad) {
			return fmt.Errorf("%w: %s (matches %s)", ErrBlockedHost, host, bad)
		}
	}
	return nil
}

// Add puts domain on the blocklist. Returns false if it was already present
// or empty after normalization.
func (v *Validator) Add(domain string) bool {
	d := normalizeHost(domain)
	if d == "" {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.blocked[d]; ok {
		return false
	}
	v.blocked[d] = struct{}{}
	return true
}

// Remove deletes domain from the blocklist. Returns false if absent.
func (v *Validator) Remove(domain string) bool {
	d := normalizeHost(domain)
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.blocked[d]; !ok {
		return false
	}
	delete(v.blocked, d)
	return true
}

// List returns the blocked domains in sorted order.
func (v *Validator) List() []string {
	v.mu.RLock()
	out := make([]string, 0, len(v.blocked))
	for d := range v.blocked {
		out = append(out, d)
	}
	v.mu.RUnlock()
	sort.Strings(out)
	return out
}
