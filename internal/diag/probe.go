package diag

import (
	"context"
	"strings"
	"time"

	"codeberg.org/miekg/dns"
)

const probeTimeout = 3 * time.Second

// probeServer confirms the tunnel DNS server actually answers queries,
// so "assigned but dead" does not pass silently.
func probeServer(ctx context.Context, server string) Result {
	r := Result{Name: "tunnel dns probe"}
	if !strings.Contains(server, ":") {
		server += ":53"
	}

	msg := dns.NewMsg("example.com.", dns.TypeA)
	if msg == nil {
		r.Detail = "failed to build query"
		return r
	}

	client := dns.NewClient()
	client.ReadTimeout = probeTimeout
	client.WriteTimeout = probeTimeout

	resp, _, err := client.Exchange(ctx, msg, "udp", server)
	if err != nil {
		r.Detail = "no answer from " + server
		return r
	}
	if resp.Rcode != dns.RcodeSuccess {
		r.Detail = server + " answered rcode " + dns.RcodeToString[resp.Rcode]
		return r
	}
	r.Passed = true
	r.Detail = server + " answers queries"
	return r
}
