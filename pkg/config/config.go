// Package config loads and validates per-environment deployment configuration.
//
// Configuration carries only operator-tunable inputs (rate limits, feature
// toggles, alert recipients, service sizing). Alarm thresholds are not
// configuration: they are part of the monitoring policy tables and change
// through code review, not through a deploy-time file.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// WAF rejects rate-based rule limits below this value.
const minRateLimitPerIP = 100

var countryCode = regexp.MustCompile(`^[A-Z]{2}$`)

// ServiceConfig sizes the Fargate service for one environment.
type ServiceConfig struct {
	CPU               int `yaml:"cpu"`
	MemoryMiB         int `yaml:"memory_mib"`
	ContainerPort     int `yaml:"container_port"`
	DesiredCount      int `yaml:"desired_count"`
	MinCount          int `yaml:"min_count"`
	MaxCount          int `yaml:"max_count"`
	RequestsPerTarget int `yaml:"requests_per_target"`
}

// DomainConfig points the environment at a Route53 hosted zone.
type DomainConfig struct {
	ZoneName   string `yaml:"zone_name"`
	RecordName string `yaml:"record_name"`
}

// EnvironmentConfig is the full set of tunables for one environment.
type EnvironmentConfig struct {
	RateLimitPerIP           int           `yaml:"rate_limit_per_ip"`
	EnableGeoBlocking        bool          `yaml:"enable_geo_blocking"`
	BlockedCountries         []string      `yaml:"blocked_countries"`
	EnableManagedRules       bool          `yaml:"enable_managed_rules"`
	AlertEmails              []string      `yaml:"alert_emails"`
	EnableDetailedMonitoring bool          `yaml:"enable_detailed_monitoring"`
	Service                  ServiceConfig `yaml:"service"`
	Domain                   *DomainConfig `yaml:"domain"`
}

// Config is the root deployment configuration document.
type Config struct {
	App          string                       `yaml:"app"`
	Environments map[string]EnvironmentConfig `yaml:"environments"`
}

// Load reads and validates a configuration file.
//
// Unknown keys are rejected: a typo in a threshold toggle should fail the
// synthesis, not silently fall back to the zero value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates raw configuration bytes.
func Parse(data []byte) (*Config, error) {
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)

	var cfg Config
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field invariants for every environment.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.App) == "" {
		return fmt.Errorf("config: app name is required")
	}
	if len(c.Environments) == 0 {
		return fmt.Errorf("config: at least one environment is required")
	}

	for name, env := range c.Environments {
		if err := env.validate(); err != nil {
			return fmt.Errorf("config: environment %q: %w", name, err)
		}
	}
	return nil
}

// Environment returns the configuration for one environment by name.
func (c *Config) Environment(name string) (EnvironmentConfig, error) {
	env, ok := c.Environments[name]
	if !ok {
		return EnvironmentConfig{}, fmt.Errorf("config: environment %q is not configured", name)
	}
	return env, nil
}

func (e EnvironmentConfig) validate() error {
	if e.RateLimitPerIP < minRateLimitPerIP {
		return fmt.Errorf("rate_limit_per_ip must be at least %d, got %d", minRateLimitPerIP, e.RateLimitPerIP)
	}
	for _, cc := range e.BlockedCountries {
		if !countryCode.MatchString(cc) {
			return fmt.Errorf("blocked_countries entry %q is not an ISO 3166-1 alpha-2 code", cc)
		}
	}
	for _, addr := range e.AlertEmails {
		if !strings.Contains(addr, "@") {
			return fmt.Errorf("alert_emails entry %q is not an email address", addr)
		}
	}
	if err := e.Service.validate(); err != nil {
		return fmt.Errorf("service: %w", err)
	}
	if e.Domain != nil {
		if strings.TrimSpace(e.Domain.ZoneName) == "" {
			return fmt.Errorf("domain.zone_name is required when domain is set")
		}
	}
	return nil
}

func (s ServiceConfig) validate() error {
	if s.CPU <= 0 || s.MemoryMiB <= 0 {
		return fmt.Errorf("cpu and memory_mib must be positive")
	}
	if s.ContainerPort <= 0 || s.ContainerPort > 65535 {
		return fmt.Errorf("container_port %d is out of range", s.ContainerPort)
	}
	if s.DesiredCount <= 0 {
		return fmt.Errorf("desired_count must be positive")
	}
	if s.MinCount <= 0 || s.MaxCount < s.MinCount {
		return fmt.Errorf("autoscaling bounds are invalid: min=%d max=%d", s.MinCount, s.MaxCount)
	}
	if s.DesiredCount < s.MinCount || s.DesiredCount > s.MaxCount {
		return fmt.Errorf("desired_count %d is outside [%d, %d]", s.DesiredCount, s.MinCount, s.MaxCount)
	}
	return nil
}
