// Package diag implements the optional DNS-leak check that runs after a
// switch. It inspects the local resolver stub, the tunnel-assigned DNS
// servers and search domain, and probes the tunnel DNS directly. Results
// are informational: diagnostics never block or fail a switch.
package diag

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/nejeja/geoswitch/internal/platform"
)

// Result represents a single diagnostic outcome.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// OK reports whether every result passed.
func OK(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// DNSCheck inspects the system resolver configuration for DNS leaks.
type DNSCheck struct {
	resolvConf   string
	expectedStub string
	run          platform.Runner
	logger       *slog.Logger
}

// NewDNSCheck creates a check against the standard resolv.conf and the
// systemd-resolved stub address.
func NewDNSCheck(logger *slog.Logger) *DNSCheck {
	return &DNSCheck{
		resolvConf:   platform.ResolvConf,
		expectedStub: platform.StubResolver,
		run:          platform.Run,
		logger:       logger,
	}
}

// Run performs the full check: stub configuration, tunnel DNS presence,
// catch-all search domain, and a live probe of the tunnel DNS server.
func (c *DNSCheck) Run(ctx context.Context) []Result {
	var nameservers []string
	if data, err := os.ReadFile(c.resolvConf); err == nil {
		nameservers = ParseNameservers(string(data))
	}

	dnsOut, err := c.run(ctx, platform.ResolvectlBinary, "dns")
	if err != nil {
		c.logger.Debug("resolvectl dns failed", "error", err)
	}
	domainOut, err := c.run(ctx, platform.ResolvectlBinary, "domain")
	if err != nil {
		c.logger.Debug("resolvectl domain failed", "error", err)
	}

	results := Evaluate(c.expectedStub, nameservers, dnsOut, domainOut)

	if servers := TunnelServers(dnsOut); len(servers) > 0 {
		results = append(results, probeServer(ctx, servers[0]))
	}
	return results
}

// ParseNameservers extracts nameserver addresses from resolv.conf
// content.
func ParseNameservers(data string) []string {
	var out []string
	for _, line := range strings.Split(data, "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) >= 2 && fields[0] == "nameserver" {
			out = append(out, fields[1])
		}
	}
	return out
}

// tunnelLink reports whether a resolvectl link name belongs to a tunnel
// interface.
func tunnelLink(name string) bool {
	for _, prefix := range []string{"tun", "wg", "proton"} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// TunnelServers extracts DNS server addresses assigned to tunnel links
// from `resolvectl dns` output. Lines look like:
//
//	Link 4 (tun0): 10.8.0.1
func TunnelServers(out string) []string {
	var servers []string
	for _, line := range strings.Split(out, "\n") {
		name, rest, ok := splitLink(line)
		if !ok || !tunnelLink(name) {
			continue
		}
		servers = append(servers, strings.Fields(rest)...)
	}
	return servers
}

// tunnelDomains extracts search domains assigned to tunnel links from
// `resolvectl domain` output.
func tunnelDomains(out string) []string {
	var domains []string
	for _, line := range strings.Split(out, "\n") {
		name, rest, ok := splitLink(line)
		if !ok || !tunnelLink(name) {
			continue
		}
		domains = append(domains, strings.Fields(rest)...)
	}
	return domains
}

// splitLink parses one "Link N (iface): values" line into the interface
// name and the value part.
func splitLink(line string) (name, rest string, ok bool) {
	open := strings.Index(line, "(")
	end := strings.Index(line, "):")
	if open < 0 || end < open {
		return "", "", false
	}
	return line[open+1 : end], strings.TrimSpace(line[end+2:]), true
}

// Evaluate is the pure core of the DNS-leak check. It passes only when
// the stub resolver is the expected loopback, a tunnel link has a DNS
// server assigned, and a tunnel link carries the catch-all root domain
// (meaning all lookups are routed into the tunnel).
func Evaluate(expectedStub string, nameservers []string, dnsOut, domainOut string) []Result {
	var results []Result

	stub := Result{Name: "resolver stub"}
	switch {
	case len(nameservers) == 0:
		stub.Detail = "no nameserver entries in resolv.conf"
	case nameservers[0] != expectedStub:
		stub.Detail = "stub is " + nameservers[0] + ", expected " + expectedStub
	default:
		stub.Passed = true
		stub.Detail = "stub is " + expectedStub
	}
	results = append(results, stub)

	tunDNS := Result{Name: "tunnel dns"}
	if servers := TunnelServers(dnsOut); len(servers) > 0 {
		tunDNS.Passed = true
		tunDNS.Detail = "tunnel dns " + strings.Join(servers, " ")
	} else {
		tunDNS.Detail = "no dns server assigned to a tunnel link"
	}
	results = append(results, tunDNS)

	domain := Result{Name: "search domain"}
	domains := tunnelDomains(domainOut)
	if hasCatchAll(domains) {
		domain.Passed = true
		domain.Detail = "catch-all root on tunnel link"
	} else {
		domain.Detail = "tunnel domains: " + strings.Join(domains, " ")
	}
	results = append(results, domain)

	return results
}

func hasCatchAll(domains []string) bool {
	for _, d := range domains {
		if d == platform.CatchAllDomain {
			return true
		}
	}
	return false
}
