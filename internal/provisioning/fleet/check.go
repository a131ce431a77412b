package fleet

import (
	"context"
	"fmt"
	"strings"

	"github.com/shanep/canvas-tools/internal/platform/ec2"
	"github.com/shanep/canvas-tools/internal/provisioning"
)

// checkMarker is echoed by the probe command so the output proves the
// command ran on the target host.
const checkMarker = "hello-from-canvastools"

// CheckReport is the outcome of an end-to-end launch check.
type CheckReport struct {
	InstanceID string
	PublicIP   string
	User       string
	Output     string
	PrivateKey string
	Status     provisioning.Status
	Err        string
}

// RunLaunchCheck exercises the full launch path with a single throwaway
// instance: launch, wait for running, install a generated key over the
// administrative channel, then log in with that key and run a probe
// command. The instance is tagged for later cleanup and is not terminated
// here, so a failed check can be inspected.
func (o *Orchestrator) RunLaunchCheck(ctx context.Context, sshUser string) (*CheckReport, error) {
	report := &CheckReport{User: sshUser, Status: provisioning.StatusError}

	keys, err := o.compute.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	report.PrivateKey = string(keys.PrivateKey)

	o.observer.Progress(1, 4, "Launching test instance...")
	id, err := o.compute.Launch(ctx, "testuser", map[string]string{ec2.TagCheck: "true"})
	if err != nil {
		return nil, err
	}
	report.InstanceID = id

	o.observer.Progress(2, 4, "Waiting for instance to start...")
	addrs, err := o.compute.WaitUntilRunning(ctx, []string{id})
	if err != nil {
		report.Err = err.Error()
		return report, nil
	}
	addr := addrs[id]
	if addr == "" {
		report.Err = "no public address"
		return report, nil
	}
	report.PublicIP = addr

	o.observer.Progress(3, 4, fmt.Sprintf("Installing test key via administrative SSH (%s)...", addr))
	if err := o.compute.ConfigureRemoteAccess(ctx, addr, keys.PublicKey); err != nil {
		report.Err = "setup failed: " + err.Error()
		return report, nil
	}

	o.observer.Progress(4, 4, "Logging in with generated key and running test command...")
	command := fmt.Sprintf("echo %s && whoami", checkMarker)
	output, err := o.compute.VerifyAccess(ctx, addr, keys.PrivateKey, command)
	if err != nil {
		report.Err = "login with generated key failed: " + err.Error()
		return report, nil
	}
	report.Output = strings.TrimSpace(output)

	if !strings.Contains(report.Output, checkMarker) {
		report.Err = fmt.Sprintf("unexpected output: %q", report.Output)
		return report, nil
	}

	report.Status = provisioning.StatusPassed
	return report, nil
}

// CleanupChecks terminates every instance left behind by launch checks.
func (o *Orchestrator) CleanupChecks(ctx context.Context) ([]provisioning.Result, error) {
	o.observer.Progress(0, 0, "Finding check instances...")

	instances, err := o.compute.FindChecks(ctx)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		o.observer.Progress(0, 0, "No check instances found.")
		return nil, nil
	}

	o.observer.Progress(0, len(instances),
		fmt.Sprintf("Found %d check instance(s). Terminating...", len(instances)))

	ids := make([]string, 0, len(instances))
	for _, inst := range instances {
		ids = append(ids, inst.ID)
	}

	results := make([]provisioning.Result, 0, len(instances))
	if err := o.compute.Terminate(ctx, ids); err != nil {
		for _, inst := range instances {
			r := provisioning.Errorf("", inst.Name, err.Error())
			r.InstanceID = inst.ID
			results = append(results, r)
		}
		return results, err
	}

	for _, inst := range instances {
		results = append(results, provisioning.Result{
			Account:    inst.Name,
			InstanceID: inst.ID,
			Status:     provisioning.StatusTerminated,
		})
	}

	o.observer.Progress(len(instances), len(instances), "All check instances terminated!")
	return results, nil
}
