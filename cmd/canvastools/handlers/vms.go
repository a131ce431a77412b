package handlers

import (
	"context"
	"fmt"
	"log"
)

// LaunchVMs handles the vms launch command.
//
// It launches one instance per student on the roster, configures SSH
// access on each, and optionally writes per-student connection material
// (script and document) plus a results CSV to outDir.
func LaunchVMs(ctx context.Context, configPath, courseID, outDir string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateRoster(); err != nil {
		return err
	}
	if err := cfg.ValidateCompute(); err != nil {
		return err
	}

	d, err := newDeps(ctx, cfg)
	if err != nil {
		return err
	}

	log.Printf("Launching instances for course %s from template %s", courseID, cfg.Compute.LaunchTemplate)
	results, err := d.fleet.ProvisionCompute(ctx, courseID)
	if err != nil {
		// Partial results still get rendered so the failure can be attributed.
		fmt.Print(renderResults("vms launch", results))
		return err
	}

	fmt.Print(renderResults("vms launch", results))

	if outDir != "" {
		if err := writeLaunchArtifacts(outDir, cfg.Compute.SSHUser, results); err != nil {
			return err
		}
		log.Printf("Wrote connection material to %s", outDir)
	}
	return nil
}

// TerminateVMs handles the vms terminate command.
func TerminateVMs(ctx context.Context, configPath, courseID string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	d, err := newDeps(ctx, cfg)
	if err != nil {
		return err
	}

	log.Printf("Terminating instances for course %s", courseID)
	results, err := d.fleet.TerminateCompute(ctx, courseID)
	if err != nil {
		fmt.Print(renderResults("vms terminate", results))
		return err
	}

	fmt.Print(renderResults("vms terminate", results))
	return nil
}

// CheckLaunch handles the vms check command.
func CheckLaunch(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateCompute(); err != nil {
		return err
	}

	d, err := newDeps(ctx, cfg)
	if err != nil {
		return err
	}

	log.Printf("Running launch check with template %s", cfg.Compute.LaunchTemplate)
	report, err := d.fleet.RunLaunchCheck(ctx, cfg.Compute.SSHUser)
	if err != nil {
		return err
	}

	fmt.Print(renderCheckReport(report))
	return nil
}

// CleanupChecks handles the vms cleanup-check command.
func CleanupChecks(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	d, err := newDeps(ctx, cfg)
	if err != nil {
		return err
	}

	results, err := d.fleet.CleanupChecks(ctx)
	if err != nil {
		fmt.Print(renderResults("vms cleanup-check", results))
		return err
	}

	fmt.Print(renderResults("vms cleanup-check", results))
	return nil
}

// ListTemplates handles the vms templates command.
func ListTemplates(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	d, err := newDeps(ctx, cfg)
	if err != nil {
		return err
	}

	templates, err := d.compute.ListLaunchTemplates(ctx)
	if err != nil {
		return err
	}

	if len(templates) == 0 {
		fmt.Println("No launch templates found.")
		return nil
	}
	for _, t := range templates {
		fmt.Printf("%-24s %s\n", t.ID, t.Name)
	}
	return nil
}
