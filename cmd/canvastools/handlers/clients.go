// Package handlers implements command execution for the canvastools CLI.
//
// Handlers load configuration, construct AWS and Canvas clients, drive the
// fleet orchestrator, and render results. Construction goes through factory
// variables so tests can swap in mocks.
package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awsec2 "github.com/aws/aws-sdk-go-v2/service/ec2"
	awsiam "github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/shanep/canvas-tools/internal/config"
	"github.com/shanep/canvas-tools/internal/platform/ec2"
	"github.com/shanep/canvas-tools/internal/platform/iam"
	"github.com/shanep/canvas-tools/internal/provisioning"
	"github.com/shanep/canvas-tools/internal/provisioning/compute"
	"github.com/shanep/canvas-tools/internal/provisioning/fleet"
	"github.com/shanep/canvas-tools/internal/provisioning/identity"
	"github.com/shanep/canvas-tools/internal/roster"
)

// fleetAPI is the orchestrator surface handlers drive. fleet.Orchestrator
// satisfies it; tests substitute a mock.
type fleetAPI interface {
	ProvisionCompute(ctx context.Context, courseID string) ([]provisioning.Result, error)
	ProvisionIdentities(ctx context.Context, courseID string) ([]provisioning.Result, error)
	RotateCredentials(ctx context.Context, courseID string) ([]provisioning.Result, error)
	UpdateAccessPolicies(ctx context.Context, courseID string) ([]provisioning.Result, error)
	TerminateCompute(ctx context.Context, courseID string) ([]provisioning.Result, error)
	RemoveIdentities(ctx context.Context, courseID string) ([]provisioning.Result, error)
	RunLaunchCheck(ctx context.Context, sshUser string) (*fleet.CheckReport, error)
	CleanupChecks(ctx context.Context) ([]provisioning.Result, error)
}

// deps bundles the constructed clients a handler needs.
type deps struct {
	cfg      *config.Config
	fleet    fleetAPI
	identity iam.API
	compute  ec2.API
}

// Factory function variables - can be replaced in tests.
var (
	loadConfig = config.LoadFile
	newDeps    = buildDeps
)

// buildDeps constructs the AWS clients, the Canvas roster client, and the
// orchestrator for a loaded configuration.
func buildDeps(ctx context.Context, cfg *config.Config) (*deps, error) {
	awsCfg, err := buildAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	ec2Client := ec2.NewClient(awsec2.NewFromConfig(awsCfg))
	iamClient := iam.NewClient(awsiam.NewFromConfig(awsCfg), sts.NewFromConfig(awsCfg))
	timeouts := config.LoadTimeouts()

	var adminKey []byte
	if cfg.Compute.AdminKeyPath != "" {
		adminKey, err = os.ReadFile(cfg.Compute.AdminKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read admin key: %w", err)
		}
	}

	computeProv := compute.NewProvisioner(
		ec2Client, cfg.Compute.LaunchTemplate, adminKey, cfg.Compute.SSHUser, timeouts)
	identityProv := identity.NewProvisioner(
		iamClient, cfg.Identity.PolicyName, cfg.AWS.Region, cfg.Identity.PasswordLength)
	source := roster.NewClient(cfg.Canvas.Endpoint, cfg.Canvas.Token)

	orchestrator := fleet.NewOrchestrator(source, computeProv, identityProv, provisioning.NewConsoleObserver())

	return &deps{
		cfg:      cfg,
		fleet:    orchestrator,
		identity: iamClient,
		compute:  ec2Client,
	}, nil
}

// buildAWSConfig resolves region, profile, and static credentials from the
// loaded configuration, falling back to the SDK's default chain.
func buildAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWS.Region),
	}
	if cfg.AWS.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.AWS.Profile))
	}
	if cfg.AWS.AccessKey != "" && cfg.AWS.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWS.AccessKey, cfg.AWS.SecretKey, "")))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}
