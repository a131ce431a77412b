package handlers

import (
	"context"
	"fmt"
	"log"
)

// ProvisionUsers handles the users provision command.
//
// It creates one IAM user per student on the roster, attaches the shared
// access policy to each new user, and optionally writes the generated
// credentials (CSV plus per-student email bodies) to outDir.
func ProvisionUsers(ctx context.Context, configPath, courseID, outDir string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateRoster(); err != nil {
		return err
	}

	d, err := newDeps(ctx, cfg)
	if err != nil {
		return err
	}

	log.Printf("Provisioning IAM users for course %s", courseID)
	results, err := d.fleet.ProvisionIdentities(ctx, courseID)
	if err != nil {
		return err
	}

	fmt.Print(renderResults("users provision", results))

	if outDir != "" {
		signInURL, err := d.identity.SignInURL(ctx)
		if err != nil {
			log.Printf("Warning: could not resolve sign-in URL: %v", err)
		}
		if err := writeCredentialArtifacts(outDir, cfg, signInURL, results); err != nil {
			return err
		}
		log.Printf("Wrote credentials to %s", outDir)
	}
	return nil
}

// RemoveUsers handles the users remove command.
func RemoveUsers(ctx context.Context, configPath, courseID string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateRoster(); err != nil {
		return err
	}

	d, err := newDeps(ctx, cfg)
	if err != nil {
		return err
	}

	log.Printf("Removing IAM users for course %s", courseID)
	results, err := d.fleet.RemoveIdentities(ctx, courseID)
	if err != nil {
		return err
	}

	fmt.Print(renderResults("users remove", results))
	return nil
}

// RotateUsers handles the users rotate command.
func RotateUsers(ctx context.Context, configPath, courseID, outDir string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateRoster(); err != nil {
		return err
	}

	d, err := newDeps(ctx, cfg)
	if err != nil {
		return err
	}

	log.Printf("Rotating credentials for course %s", courseID)
	results, err := d.fleet.RotateCredentials(ctx, courseID)
	if err != nil {
		return err
	}

	fmt.Print(renderResults("users rotate", results))

	if outDir != "" {
		signInURL, err := d.identity.SignInURL(ctx)
		if err != nil {
			log.Printf("Warning: could not resolve sign-in URL: %v", err)
		}
		if err := writeCredentialArtifacts(outDir, cfg, signInURL, results); err != nil {
			return err
		}
		log.Printf("Wrote credentials to %s", outDir)
	}
	return nil
}

// UpdateUserPolicies handles the users update-policy command.
func UpdateUserPolicies(ctx context.Context, configPath, courseID string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateRoster(); err != nil {
		return err
	}

	d, err := newDeps(ctx, cfg)
	if err != nil {
		return err
	}

	log.Printf("Updating access policy for course %s", courseID)
	results, err := d.fleet.UpdateAccessPolicies(ctx, courseID)
	if err != nil {
		return err
	}

	fmt.Print(renderResults("users update-policy", results))
	return nil
}
