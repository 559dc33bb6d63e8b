package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/nejeja/geoswitch/internal/platform"
)

// Load reads the config from disk and applies environment overrides.
// If the file doesn't exist, defaults are used.
func Load() (*Config, error) {
	return loadFrom(platform.ConfigFile)
}

func loadFrom(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnv(&cfg)
	return &cfg, nil
}

// applyEnv overlays the environment override surface onto cfg. Every
// variable is optional; unset or malformed values leave the config value
// untouched.
func applyEnv(cfg *Config) {
	envSeconds("SETTLE_S", &cfg.Verify.SettleSeconds)
	envInt("VERIFY_TRIES", &cfg.Verify.Tries)
	envSeconds("VERIFY_INTERVAL_S", &cfg.Verify.IntervalSeconds)
	envInt("PLANE_TRIES", &cfg.Verify.PlaneTries)
	envSeconds("PLANE_INTERVAL_S", &cfg.Verify.PlaneIntervalSeconds)

	envSeconds("GEO_HTTP_TIMEOUT_S", &cfg.Geo.TimeoutSeconds)
	envInt("GEO_HTTP_RETRIES", &cfg.Geo.Retries)
	envSeconds("GEO_HTTP_RETRY_DELAY_S", &cfg.Geo.RetryDelaySeconds)

	envBool("DNS_CHECK", &cfg.DNSCheck)
	envBool("RU_SKIP_VERIFY", &cfg.Restricted.SkipVerify)
	envSeconds("RU_WAIT_S", &cfg.Restricted.PassiveWaitSeconds)
}

func envInt(name string, dst *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return
	}
	*dst = n
}

func envSeconds(name string, dst *float64) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return
	}
	*dst = f
}

func envBool(name string, dst *bool) {
	switch os.Getenv(name) {
	case "1", "true", "yes", "on":
		*dst = true
	case "0", "false", "no", "off":
		*dst = false
	}
}
