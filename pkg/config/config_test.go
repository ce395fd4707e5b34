package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const validYAML = `
app: WebTheory
environments:
  staging:
    rate_limit_per_ip: 2000
    enable_geo_blocking: false
    blocked_countries: []
    enable_managed_rules: true
    alert_emails: []
    enable_detailed_monitoring: false
    service:
      cpu: 512
      memory_mib: 1024
      container_port: 3000
      desired_count: 1
      min_count: 1
      max_count: 2
      requests_per_target: 500
  production:
    rate_limit_per_ip: 1000
    enable_geo_blocking: true
    blocked_countries: [CN, RU]
    enable_managed_rules: true
    alert_emails: [oncall@example.com]
    enable_detailed_monitoring: true
    service:
      cpu: 1024
      memory_mib: 2048
      container_port: 3000
      desired_count: 2
      min_count: 2
      max_count: 6
      requests_per_target: 1000
    domain:
      zone_name: example.com
      record_name: app
`

func TestParse_Valid(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)
	require.Equal(t, "WebTheory", cfg.App)

	prod, err := cfg.Environment("production")
	require.NoError(t, err)
	require.True(t, prod.EnableGeoBlocking)
	require.Equal(t, []string{"CN", "RU"}, prod.BlockedCountries)
	require.Equal(t, 1000, prod.RateLimitPerIP)
	require.NotNil(t, prod.Domain)
	require.Equal(t, "example.com", prod.Domain.ZoneName)

	_, err = cfg.Environment("qa")
	require.Error(t, err)
}

func TestLoad_ReadsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "deploy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Environments, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`
app: WebTheory
environments:
  staging:
    rate_limit_per_ip: 2000
    enable_geoblocking: true
    service:
      cpu: 256
      memory_mib: 512
      container_port: 3000
      desired_count: 1
      min_count: 1
      max_count: 1
`))
	require.Error(t, err)
}

func TestValidate_Failures(t *testing.T) {
	t.Parallel()

	base := func() *Config {
		cfg, err := Parse([]byte(validYAML))
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty app", func(c *Config) { c.App = " " }},
		{"no environments", func(c *Config) { c.Environments = nil }},
		{"rate limit too low", func(c *Config) {
			env := c.Environments["staging"]
			env.RateLimitPerIP = 50
			c.Environments["staging"] = env
		}},
		{"bad country code", func(c *Config) {
			env := c.Environments["production"]
			env.BlockedCountries = []string{"China"}
			c.Environments["production"] = env
		}},
		{"bad email", func(c *Config) {
			env := c.Environments["production"]
			env.AlertEmails = []string{"oncall"}
			c.Environments["production"] = env
		}},
		{"desired outside bounds", func(c *Config) {
			env := c.Environments["staging"]
			env.Service.DesiredCount = 5
			c.Environments["staging"] = env
		}},
		{"domain without zone", func(c *Config) {
			env := c.Environments["production"]
			env.Domain = &DomainConfig{RecordName: "app"}
			c.Environments["production"] = env
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base()
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
