// Package config loads and validates the toolkit configuration.
//
// Configuration is an explicit struct constructed once and handed to each
// provisioner; nothing is read from the environment at import time. The
// environment is consulted only inside LoadFile, as a fallback for fields
// the YAML file leaves empty.
package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultRegion is used when neither the config file nor the environment
// names an AWS region.
const DefaultRegion = "us-west-2"

// DefaultSSHUser is the administrative login on the launch template's AMI.
const DefaultSSHUser = "ubuntu"

// DefaultPolicyName is the shared managed policy attached to every
// student account.
const DefaultPolicyName = "EC2OnlyAccess"

// Config holds the application configuration.
type Config struct {
	AWS      AWSConfig      `mapstructure:"aws" yaml:"aws"`
	Canvas   CanvasConfig   `mapstructure:"canvas" yaml:"canvas"`
	Compute  ComputeConfig  `mapstructure:"compute" yaml:"compute"`
	Identity IdentityConfig `mapstructure:"identity" yaml:"identity"`
}

// AWSConfig selects the AWS account, region, and credentials.
type AWSConfig struct {
	Region  string `mapstructure:"region" yaml:"region"`
	Profile string `mapstructure:"profile" yaml:"profile"`

	// AccessKey/SecretKey override the default credential chain when set.
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
}

// CanvasConfig selects the roster source.
type CanvasConfig struct {
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	Token    string `mapstructure:"token" yaml:"token"`
}

// ComputeConfig describes how student instances are launched and configured.
type ComputeConfig struct {
	// LaunchTemplate is an EC2 launch template name or ID ("lt-..." is
	// treated as an ID). The template owns the AMI, instance type, key
	// pair, and security group choices.
	LaunchTemplate string `mapstructure:"launch_template" yaml:"launch_template"`

	// AdminKeyPath points at the instructor PEM private key used to SSH
	// into fresh instances.
	AdminKeyPath string `mapstructure:"admin_key_path" yaml:"admin_key_path"`

	// SSHUser is the login the launch template's AMI provides.
	SSHUser string `mapstructure:"ssh_user" yaml:"ssh_user"`
}

// IdentityConfig describes the shared access policy for student accounts.
type IdentityConfig struct {
	PolicyName     string `mapstructure:"policy_name" yaml:"policy_name"`
	PasswordLength int    `mapstructure:"password_length" yaml:"password_length"`
}

// ValidationError reports missing required configuration. It is fatal and
// raised before any cloud call is made.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Msg)
}

// LoadFile reads and parses the configuration from a YAML file, applying
// environment fallbacks and defaults. Pass an empty path to configure from
// environment and defaults alone.
func LoadFile(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		// #nosec G304
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		var rawConfig map[string]interface{}
		if err := yaml.Unmarshal(data, &rawConfig); err != nil {
			return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
		}

		if err := mapstructure.Decode(rawConfig, &cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}

	applyFallbacks(&cfg)
	return &cfg, nil
}

// applyFallbacks fills empty fields from the environment, then from defaults.
func applyFallbacks(cfg *Config) {
	if cfg.AWS.Region == "" {
		cfg.AWS.Region = os.Getenv("AWS_REGION")
	}
	if cfg.AWS.Region == "" {
		cfg.AWS.Region = os.Getenv("AWS_DEFAULT_REGION")
	}
	if cfg.AWS.Region == "" {
		cfg.AWS.Region = DefaultRegion
	}

	if cfg.Canvas.Token == "" {
		cfg.Canvas.Token = os.Getenv("CANVAS_TOKEN")
	}
	if cfg.Canvas.Endpoint == "" {
		cfg.Canvas.Endpoint = os.Getenv("CANVAS_ENDPOINT")
	}

	if cfg.Compute.SSHUser == "" {
		cfg.Compute.SSHUser = DefaultSSHUser
	}
	if cfg.Identity.PolicyName == "" {
		cfg.Identity.PolicyName = DefaultPolicyName
	}
}

// ValidateRoster checks the fields every roster-driven workflow needs.
func (c *Config) ValidateRoster() error {
	if c.Canvas.Token == "" {
		return &ValidationError{Field: "canvas.token", Msg: "Canvas API token is required (or set CANVAS_TOKEN)"}
	}
	if c.Canvas.Endpoint == "" {
		return &ValidationError{Field: "canvas.endpoint", Msg: "Canvas endpoint URL is required (or set CANVAS_ENDPOINT)"}
	}
	return nil
}

// ValidateCompute checks the fields the compute workflows need.
func (c *Config) ValidateCompute() error {
	if c.Compute.LaunchTemplate == "" {
		return &ValidationError{Field: "compute.launch_template", Msg: "launch template name or ID is required"}
	}
	if c.Compute.AdminKeyPath == "" {
		return &ValidationError{Field: "compute.admin_key_path", Msg: "instructor private key path is required"}
	}
	if _, err := os.Stat(c.Compute.AdminKeyPath); err != nil {
		return &ValidationError{Field: "compute.admin_key_path", Msg: fmt.Sprintf("cannot read %s", c.Compute.AdminKeyPath)}
	}
	return nil
}
