package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/layer-3/clockguard/core"
	"gopkg.in/yaml.v3"
)

// AppName tags log lines and event sources
const AppName = "clockguard"

// Config is populated from the environment; defaults live in the struct tags.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR,default=:3000"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	// Empty selects the in-memory store and in-process events
	RedisURL  string `env:"REDIS_URL"`
	KeyPrefix string `env:"CAPTCHA_KEY_PREFIX,default=clockguard:session:"`

	DefaultDifficulty string        `env:"CAPTCHA_DEFAULT_DIFFICULTY,default=medium"`
	PolicyFile        string        `env:"CAPTCHA_POLICY_FILE"`
	SweepInterval     time.Duration `env:"CAPTCHA_SWEEP_INTERVAL,default=1m"`
	SweepTimeout      time.Duration `env:"CAPTCHA_SWEEP_TIMEOUT,default=10s"`
	Retention         time.Duration `env:"CAPTCHA_RETENTION,default=30s"`

	// PEM encoded EC private key; an ephemeral key is generated when empty
	ClearanceKeyFile string        `env:"CLEARANCE_KEY_FILE"`
	ClearanceTTL     time.Duration `env:"CLEARANCE_TTL,default=10m"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS,default=*"`
}

// Load decodes the environment into a Config
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}
	if cfg.SweepInterval <= 0 {
		return nil, fmt.Errorf("CAPTCHA_SWEEP_INTERVAL must be positive, got %s", cfg.SweepInterval)
	}
	if cfg.Retention < 0 {
		return nil, fmt.Errorf("CAPTCHA_RETENTION must not be negative, got %s", cfg.Retention)
	}
	return &cfg, nil
}

// Difficulty returns the parsed default difficulty
func (c *Config) Difficulty() (core.Difficulty, error) {
	return core.ParseDifficulty(c.DefaultDifficulty)
}

// Policy returns the default policy, overridden by PolicyFile when set
func (c *Config) Policy() (core.Policy, error) {
	if c.PolicyFile == "" {
		return core.DefaultPolicy(), nil
	}
	data, err := os.ReadFile(c.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return ParsePolicy(data)
}

type policyFile struct {
	Levels map[string]levelOverride `yaml:"levels"`
}

type levelOverride struct {
	ToleranceMinutes *int   `yaml:"tolerance_minutes"`
	TTL              string `yaml:"ttl"`
	Attempts         *int   `yaml:"attempts"`
	Noise            string `yaml:"noise"`
}

// ParsePolicy overlays a YAML document on the default policy:
//
//	levels:
//	  hard:
//	    tolerance_minutes: 0
//	    ttl: 90s
//	    attempts: 1
//	    noise: heavy
func ParsePolicy(data []byte) (core.Policy, error) {
	var pf policyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidPolicy, err)
	}

	policy := core.DefaultPolicy()
	for name, override := range pf.Levels {
		d, err := core.ParseDifficulty(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrInvalidPolicy, err)
		}
		level := policy[d]
		if override.ToleranceMinutes != nil {
			level.ToleranceMinutes = *override.ToleranceMinutes
		}
		if override.Attempts != nil {
			level.Attempts = *override.Attempts
		}
		if override.TTL != "" {
			ttl, err := time.ParseDuration(override.TTL)
			if err != nil {
				return nil, fmt.Errorf("%w: %s ttl: %w", core.ErrInvalidPolicy, name, err)
			}
			level.TTL = ttl
		}
		if override.Noise != "" {
			noise, err := core.ParseNoise(override.Noise)
			if err != nil {
				return nil, err
			}
			level.Noise = noise
		}
		policy[d] = level
	}

	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return policy, nil
}
