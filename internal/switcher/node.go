package switcher

import (
	"errors"
	"path/filepath"

	"github.com/nejeja/geoswitch/internal/config"
)

// ErrUnknownNode is returned when a node identifier is not in the table.
// The check runs before any backend is touched.
var ErrUnknownNode = errors.New("unknown node")

// BackendKind selects which tunnel mechanism a node uses.
type BackendKind string

const (
	BackendManaged BackendKind = "proton"
	BackendProcess BackendKind = "openvpn"
	BackendKernel  BackendKind = "wireguard"
)

// Node is one named VPN egress point: a backend, its connection target,
// and the set of observed countries that count as a successful switch.
// Nodes are immutable; the table below is the complete set.
type Node struct {
	ID      string
	Backend BackendKind

	// Target is backend-specific: an .ovpn file name for process nodes,
	// a wg interface name for kernel nodes, a country code for managed
	// nodes.
	Target string

	// Allowed lists country names/codes accepted during verification.
	// More than one entry when a city-level endpoint is known to report
	// a neighbouring metro country.
	Allowed []string

	// Restricted marks the node whose egress may block verification
	// traffic; it supports the skip-verify policy.
	Restricted bool
}

// nodes is the static node table. Process-node targets are file names
// resolved against the configured ovpn directory by Table.
var nodes = []Node{
	{ID: "vpn-eu-1", Backend: BackendProcess, Target: "cz-prg.ovpn", Allowed: []string{"Czechia", "Czech Republic"}},
	{ID: "vpn-us-1", Backend: BackendProcess, Target: "us-nyc.ovpn", Allowed: []string{"United States"}},
	{ID: "vpn-br-1", Backend: BackendProcess, Target: "br-sao.ovpn", Allowed: []string{"Brazil"}},
	{ID: "vpn-cn-1", Backend: BackendKernel, Target: "wg-sg", Allowed: []string{"Singapore", "Malaysia"}},
	{ID: "vpn-ir-1", Backend: BackendKernel, Target: "wg-ae", Allowed: []string{"United Arab Emirates", "Emirates"}},
	{ID: "vpn-ru-1", Backend: BackendManaged, Target: "RU", Allowed: []string{"Russia"}, Restricted: true},
}

// Table returns the node table with process-node targets resolved to
// absolute config paths.
func Table(cfg *config.Config) []Node {
	out := make([]Node, len(nodes))
	copy(out, nodes)
	for i := range out {
		if out[i].Backend == BackendProcess {
			out[i].Target = filepath.Join(cfg.Tunnel.OVPNDir, out[i].Target)
		}
	}
	return out
}

// Lookup finds a node by id.
func Lookup(table []Node, id string) (Node, bool) {
	for _, n := range table {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// KernelInterfaces returns every wg interface name appearing in the
// table. The kernel backend tears all of them down on disconnect.
func KernelInterfaces(table []Node) []string {
	var out []string
	for _, n := range table {
		if n.Backend == BackendKernel {
			out = append(out, n.Target)
		}
	}
	return out
}
