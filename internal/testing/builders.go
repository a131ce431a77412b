package testing

import (
	"github.com/shanep/canvas-tools/internal/config"
)

// ConfigBuilder provides a fluent interface for constructing test configs.
// Each method returns a new builder (immutable) for chaining.
type ConfigBuilder struct {
	cfg config.Config
}

// NewConfigBuilder creates a new ConfigBuilder with sensible defaults.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		cfg: config.Config{
			AWS: config.AWSConfig{
				Region: "us-west-2",
			},
			Canvas: config.CanvasConfig{
				Endpoint: "https://canvas.example.edu/api/v1",
				Token:    "test-token",
			},
			Compute: config.ComputeConfig{
				LaunchTemplate: "cs452",
				SSHUser:        "ubuntu",
			},
			Identity: config.IdentityConfig{
				PolicyName:     "EC2OnlyAccess",
				PasswordLength: 12,
			},
		},
	}
}

// WithRegion sets the AWS region.
func (b *ConfigBuilder) WithRegion(region string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.AWS.Region = region
	return newBuilder
}

// WithLaunchTemplate sets the launch template name or id.
func (b *ConfigBuilder) WithLaunchTemplate(template string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Compute.LaunchTemplate = template
	return newBuilder
}

// WithAdminKeyPath sets the instructor private key path.
func (b *ConfigBuilder) WithAdminKeyPath(path string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Compute.AdminKeyPath = path
	return newBuilder
}

// WithCanvas sets the roster endpoint and token.
func (b *ConfigBuilder) WithCanvas(endpoint, token string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Canvas = config.CanvasConfig{Endpoint: endpoint, Token: token}
	return newBuilder
}

// WithPolicyName sets the managed policy name.
func (b *ConfigBuilder) WithPolicyName(name string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Identity.PolicyName = name
	return newBuilder
}

// Build returns the constructed config.
func (b *ConfigBuilder) Build() config.Config {
	return b.cfg
}

func (b *ConfigBuilder) clone() *ConfigBuilder {
	return &ConfigBuilder{cfg: b.cfg}
}
