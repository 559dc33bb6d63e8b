package config

import (
	"time"

	"github.com/nejeja/geoswitch/internal/platform"
)

// Config is the top-level application configuration.
type Config struct {
	Tunnel     TunnelConfig     `yaml:"tunnel"`
	Verify     VerifyConfig     `yaml:"verify"`
	Geo        GeoConfig        `yaml:"geo"`
	Restricted RestrictedConfig `yaml:"restricted"`

	DNSCheck bool   `yaml:"dns_check"`
	LogLevel string `yaml:"log_level"`
}

// TunnelConfig holds locations of tunnel artifacts and the managed
// control-plane binary.
type TunnelConfig struct {
	OVPNDir         string `yaml:"ovpn_dir"`
	CredentialsFile string `yaml:"credentials_file"`
	PlaneBinary     string `yaml:"plane_binary"`
}

// VerifyConfig holds settle and verification polling settings.
// Intervals are expressed in seconds so the YAML matches the environment
// override surface (VERIFY_INTERVAL_S and friends take fractional seconds).
type VerifyConfig struct {
	SettleSeconds        float64 `yaml:"settle_s"`
	Tries                int     `yaml:"tries"`
	IntervalSeconds      float64 `yaml:"interval_s"`
	PlaneTries           int     `yaml:"plane_tries"`
	PlaneIntervalSeconds float64 `yaml:"plane_interval_s"`
}

// GeoConfig holds HTTP settings for the geolocation providers.
type GeoConfig struct {
	TimeoutSeconds    float64 `yaml:"http_timeout_s"`
	Retries           int     `yaml:"http_retries"`
	RetryDelaySeconds float64 `yaml:"http_retry_delay_s"`
}

// RestrictedConfig holds the skip-verify policy for the restricted node.
// Verification traffic may itself be blocked from that egress, so the
// switch can be told to wait passively instead of gating on country match.
type RestrictedConfig struct {
	SkipVerify         bool    `yaml:"skip_verify"`
	PassiveWaitSeconds float64 `yaml:"passive_wait_s"`
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// SettleDelay returns the post-connect settle delay as a time.Duration.
func (v VerifyConfig) SettleDelay() time.Duration { return seconds(v.SettleSeconds) }

// Interval returns the verification poll interval as a time.Duration.
func (v VerifyConfig) Interval() time.Duration { return seconds(v.IntervalSeconds) }

// PlaneInterval returns the control-plane status poll interval.
func (v VerifyConfig) PlaneInterval() time.Duration { return seconds(v.PlaneIntervalSeconds) }

// Timeout returns the per-request HTTP timeout.
func (g GeoConfig) Timeout() time.Duration { return seconds(g.TimeoutSeconds) }

// RetryDelay returns the fixed delay between HTTP retries.
func (g GeoConfig) RetryDelay() time.Duration { return seconds(g.RetryDelaySeconds) }

// PassiveWait returns the skip-verify passive wait duration.
func (r RestrictedConfig) PassiveWait() time.Duration { return seconds(r.PassiveWaitSeconds) }

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Tunnel: TunnelConfig{
			OVPNDir:         platform.DefaultOVPNDir,
			CredentialsFile: platform.DefaultCredentialsFile,
			PlaneBinary:     platform.ManagedPlaneBinary,
		},
		Verify: VerifyConfig{
			SettleSeconds:        3,
			Tries:                10,
			IntervalSeconds:      2,
			PlaneTries:           10,
			PlaneIntervalSeconds: 2,
		},
		Geo: GeoConfig{
			TimeoutSeconds:    3,
			Retries:           2,
			RetryDelaySeconds: 1,
		},
		Restricted: RestrictedConfig{
			SkipVerify:         false,
			PassiveWaitSeconds: 12,
		},
		LogLevel: "info",
	}
}
