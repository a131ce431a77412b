// Package fleet drives a course roster through the compute and identity
// provisioners, isolating per-student failures and reporting progress.
//
// Workflows always return a complete per-student result list, even when
// some entries failed: callers must inspect each result's status rather
// than assume success from a nil error. Batch-level failures (roster
// fetch, the running-state checkpoint) additionally return an error after
// the partial results collected so far.
package fleet

import (
	"context"
	"fmt"

	"github.com/shanep/canvas-tools/internal/platform/ec2"
	"github.com/shanep/canvas-tools/internal/provisioning"
	"github.com/shanep/canvas-tools/internal/roster"
	"github.com/shanep/canvas-tools/internal/util/keygen"
)

// Compute is the instance-lifecycle surface consumed by the orchestrator.
type Compute interface {
	GenerateKeyPair() (*keygen.KeyPair, error)
	Launch(ctx context.Context, account string, tags map[string]string) (string, error)
	WaitUntilRunning(ctx context.Context, ids []string) (map[string]string, error)
	ConfigureRemoteAccess(ctx context.Context, host string, publicKey []byte) error
	VerifyAccess(ctx context.Context, host string, privateKey []byte, command string) (string, error)
	FindByCourse(ctx context.Context, courseID string) ([]ec2.Instance, error)
	FindChecks(ctx context.Context) ([]ec2.Instance, error)
	Terminate(ctx context.Context, ids []string) error
}

// Identity is the account-lifecycle surface consumed by the orchestrator.
type Identity interface {
	CreateAccount(ctx context.Context, email string) provisioning.Result
	EnsureAccessPolicy(ctx context.Context) (string, error)
	AttachPolicy(ctx context.Context, account, policyARN string) error
	RotateCredential(ctx context.Context, email string) provisioning.Result
	RemoveAccount(ctx context.Context, email string) provisioning.Result
	SignInURL(ctx context.Context) (string, error)
}

// Orchestrator runs roster-wide workflows.
type Orchestrator struct {
	roster   roster.Source
	compute  Compute
	identity Identity
	observer provisioning.Observer
}

// NewOrchestrator creates an orchestrator. A nil observer discards
// progress updates.
func NewOrchestrator(source roster.Source, compute Compute, identity Identity, observer provisioning.Observer) *Orchestrator {
	if observer == nil {
		observer = provisioning.NopObserver{}
	}
	return &Orchestrator{
		roster:   source,
		compute:  compute,
		identity: identity,
		observer: observer,
	}
}

// fetchRoster loads the course roster, reporting progress around the call.
func (o *Orchestrator) fetchRoster(ctx context.Context, courseID string) ([]roster.Student, error) {
	o.observer.Progress(0, 0, "Fetching students from Canvas...")
	students, err := o.roster.GetStudents(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roster: %w", err)
	}
	o.observer.Progress(0, len(students), fmt.Sprintf("Found %d students.", len(students)))
	return students, nil
}

// skipNoEmail records a roster entry without an email address. No cloud
// call is made for these entries.
func skipNoEmail(s roster.Student) provisioning.Result {
	return provisioning.Skipped(fmt.Sprintf("user_%d", s.ID), "", "no email")
}

// hasEligible reports whether any roster entry has an email address and
// therefore needs provider calls at all.
func hasEligible(students []roster.Student) bool {
	for _, s := range students {
		if s.Email != "" {
			return true
		}
	}
	return false
}

// pendingLaunch tracks an instance between the launch and configure phases.
type pendingLaunch struct {
	email   string
	account string
	id      string
	keys    *keygen.KeyPair
}

// ProvisionCompute launches one instance per student, waits for the whole
// batch to reach running, then configures key-based access on each. Launch
// and configure failures are isolated per student; the batch wait is a
// checkpoint whose failure marks every pending entry and is returned.
func (o *Orchestrator) ProvisionCompute(ctx context.Context, courseID string) ([]provisioning.Result, error) {
	students, err := o.fetchRoster(ctx, courseID)
	if err != nil {
		return nil, err
	}

	total := len(students)
	results := make([]provisioning.Result, 0, total)
	var pending []pendingLaunch

	for i, s := range students {
		if s.Email == "" {
			o.observer.Progress(i+1, total, fmt.Sprintf("Skipping student %d (no email)", s.ID))
			results = append(results, skipNoEmail(s))
			continue
		}

		account := provisioning.AccountName(s.Email)
		o.observer.Progress(i+1, total, fmt.Sprintf("Launching instance for %s...", account))

		keys, err := o.compute.GenerateKeyPair()
		if err != nil {
			results = append(results, provisioning.Errorf(s.Email, account, err.Error()))
			continue
		}
		id, err := o.compute.Launch(ctx, account, map[string]string{
			ec2.TagCourse:  courseID,
			ec2.TagStudent: account,
		})
		if err != nil {
			results = append(results, provisioning.Errorf(s.Email, account, err.Error()))
			continue
		}
		pending = append(pending, pendingLaunch{email: s.Email, account: account, id: id, keys: keys})
	}

	if len(pending) == 0 {
		o.observer.Progress(total, total, "No instances to configure.")
		return results, nil
	}

	o.observer.Progress(0, len(pending), "Waiting for instances to start...")
	ids := make([]string, 0, len(pending))
	for _, m := range pending {
		ids = append(ids, m.id)
	}

	addrs, err := o.compute.WaitUntilRunning(ctx, ids)
	if err != nil {
		for _, m := range pending {
			r := provisioning.Errorf(m.email, m.account, err.Error())
			r.InstanceID = m.id
			results = append(results, r)
		}
		return results, err
	}

	for i, m := range pending {
		addr := addrs[m.id]
		if addr == "" {
			r := provisioning.Errorf(m.email, m.account, "no public address")
			r.InstanceID = m.id
			results = append(results, r)
			continue
		}

		o.observer.Progress(i+1, len(pending), fmt.Sprintf("Configuring %s on %s...", m.account, addr))

		if err := o.compute.ConfigureRemoteAccess(ctx, addr, m.keys.PublicKey); err != nil {
			r := provisioning.Errorf(m.email, m.account, err.Error())
			r.InstanceID = m.id
			r.PublicIP = addr
			results = append(results, r)
			continue
		}

		results = append(results, provisioning.Result{
			Email:      m.email,
			Account:    m.account,
			InstanceID: m.id,
			PublicIP:   addr,
			PrivateKey: string(m.keys.PrivateKey),
			PublicKey:  string(m.keys.PublicKey),
			Status:     provisioning.StatusLaunched,
		})
	}

	o.observer.Progress(len(pending), len(pending), "All instances configured!")
	return results, nil
}

// ProvisionIdentities creates one account per student and attaches the
// shared access policy to each newly created account. The policy is
// ensured once up front; a failure there aborts before any account call.
func (o *Orchestrator) ProvisionIdentities(ctx context.Context, courseID string) ([]provisioning.Result, error) {
	students, err := o.fetchRoster(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, nil
	}

	var policyARN string
	if hasEligible(students) {
		policyARN, err = o.identity.EnsureAccessPolicy(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to ensure access policy: %w", err)
		}
	}

	total := len(students)
	results := make([]provisioning.Result, 0, total)

	for i, s := range students {
		if s.Email == "" {
			o.observer.Progress(i+1, total, fmt.Sprintf("Skipping student %d (no email)", s.ID))
			results = append(results, skipNoEmail(s))
			continue
		}

		account := provisioning.AccountName(s.Email)
		o.observer.Progress(i+1, total, fmt.Sprintf("Creating account: %s", account))

		result := o.identity.CreateAccount(ctx, s.Email)
		if result.Status == provisioning.StatusCreated {
			if err := o.identity.AttachPolicy(ctx, account, policyARN); err != nil {
				result = provisioning.Errorf(s.Email, account, "policy attach failed: "+err.Error())
			}
		}
		results = append(results, result)
	}

	o.observer.Progress(total, total, "Provisioning complete!")
	return results, nil
}

// RotateCredentials replaces the console password of every student account
// on the roster. Missing accounts are reported as skipped.
func (o *Orchestrator) RotateCredentials(ctx context.Context, courseID string) ([]provisioning.Result, error) {
	students, err := o.fetchRoster(ctx, courseID)
	if err != nil {
		return nil, err
	}

	total := len(students)
	results := make([]provisioning.Result, 0, total)

	for i, s := range students {
		if s.Email == "" {
			o.observer.Progress(i+1, total, fmt.Sprintf("Skipping student %d (no email)", s.ID))
			results = append(results, skipNoEmail(s))
			continue
		}

		account := provisioning.AccountName(s.Email)
		o.observer.Progress(i+1, total, fmt.Sprintf("Rotating credential: %s", account))
		results = append(results, o.identity.RotateCredential(ctx, s.Email))
	}

	o.observer.Progress(total, total, "Rotation complete!")
	return results, nil
}

// UpdateAccessPolicies publishes the current policy document as the new
// default version and re-attaches it to every student account, migrating
// any account still carrying the legacy inline policy.
func (o *Orchestrator) UpdateAccessPolicies(ctx context.Context, courseID string) ([]provisioning.Result, error) {
	students, err := o.fetchRoster(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, nil
	}

	var policyARN string
	if hasEligible(students) {
		policyARN, err = o.identity.EnsureAccessPolicy(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to ensure access policy: %w", err)
		}
	}

	total := len(students)
	results := make([]provisioning.Result, 0, total)

	for i, s := range students {
		if s.Email == "" {
			o.observer.Progress(i+1, total, fmt.Sprintf("Skipping student %d (no email)", s.ID))
			results = append(results, skipNoEmail(s))
			continue
		}

		account := provisioning.AccountName(s.Email)
		o.observer.Progress(i+1, total, fmt.Sprintf("Updating policy for %s", account))

		if err := o.identity.AttachPolicy(ctx, account, policyARN); err != nil {
			results = append(results, provisioning.Errorf(s.Email, account, err.Error()))
			continue
		}
		results = append(results, provisioning.Result{
			Email:   s.Email,
			Account: account,
			Status:  provisioning.StatusUpdated,
		})
	}

	o.observer.Progress(total, total, "Policy update complete!")
	return results, nil
}

// TerminateCompute discovers the course's instances by tag and terminates
// them, waiting for the whole group to reach the terminated state.
func (o *Orchestrator) TerminateCompute(ctx context.Context, courseID string) ([]provisioning.Result, error) {
	o.observer.Progress(0, 0, "Finding instances for course...")

	instances, err := o.compute.FindByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		o.observer.Progress(0, 0, "No instances found for this course.")
		return nil, nil
	}

	o.observer.Progress(0, len(instances), fmt.Sprintf("Found %d instances. Terminating...", len(instances)))

	ids := make([]string, 0, len(instances))
	for _, inst := range instances {
		ids = append(ids, inst.ID)
	}

	results := make([]provisioning.Result, 0, len(instances))
	if err := o.compute.Terminate(ctx, ids); err != nil {
		for _, inst := range instances {
			r := provisioning.Errorf("", inst.Student, err.Error())
			r.InstanceID = inst.ID
			results = append(results, r)
		}
		return results, err
	}

	for _, inst := range instances {
		results = append(results, provisioning.Result{
			Account:    inst.Student,
			InstanceID: inst.ID,
			Status:     provisioning.StatusTerminated,
		})
	}

	o.observer.Progress(len(instances), len(instances), "All instances terminated!")
	return results, nil
}

// RemoveIdentities tears down every student account on the roster.
func (o *Orchestrator) RemoveIdentities(ctx context.Context, courseID string) ([]provisioning.Result, error) {
	students, err := o.fetchRoster(ctx, courseID)
	if err != nil {
		return nil, err
	}

	total := len(students)
	results := make([]provisioning.Result, 0, total)

	for i, s := range students {
		if s.Email == "" {
			o.observer.Progress(i+1, total, fmt.Sprintf("Skipping student %d (no email)", s.ID))
			results = append(results, skipNoEmail(s))
			continue
		}

		account := provisioning.AccountName(s.Email)
		o.observer.Progress(i+1, total, fmt.Sprintf("Removing account: %s", account))
		results = append(results, o.identity.RemoveAccount(ctx, s.Email))
	}

	o.observer.Progress(total, total, "Removal complete!")
	return results, nil
}
