package platform

const (
	// Base directories.
	ConfigDir = "/etc/geoswitch"

	// Config files.
	ConfigFile = ConfigDir + "/config.yaml"

	// Tunnel artifacts.
	DefaultOVPNDir         = ConfigDir + "/ovpn"
	DefaultCredentialsFile = ConfigDir + "/ovpn/credentials.txt"

	// DNS diagnostics.
	ResolvConf       = "/etc/resolv.conf"
	StubResolver     = "127.0.0.53"
	CatchAllDomain   = "~."
	ResolvectlBinary = "resolvectl"

	// External binaries.
	ManagedPlaneBinary = "protonvpn-cli"
	OpenVPNBinary      = "openvpn"
	WGQuickBinary      = "wg-quick"
	SudoBinary         = "sudo"
)
