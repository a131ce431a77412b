// Package compute provisions student EC2 instances.
//
// Instances are launched from a launch template, tagged with the course id
// and the student's account name, polled until running, then configured for
// key-based SSH access. The tag pair is the durable identity: nothing here
// caches instance ids between runs.
package compute

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shanep/canvas-tools/internal/config"
	"github.com/shanep/canvas-tools/internal/platform/ec2"
	"github.com/shanep/canvas-tools/internal/platform/ssh"
	"github.com/shanep/canvas-tools/internal/util/keygen"
	"github.com/shanep/canvas-tools/internal/util/retry"
)

// errNotReady marks a poll iteration where some instances have not reached
// the target state yet.
var errNotReady = errors.New("instances not in target state yet")

// TimeoutError reports that a state wait exhausted its budget. It covers
// the whole batch: a partially-running batch cannot be attributed to
// individual students without another roster pass.
type TimeoutError struct {
	Op      string
	Budget  time.Duration
	Pending []string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for instances to reach %s (pending: %s)",
		e.Budget, e.Op, strings.Join(e.Pending, ", "))
}

// IsTimeout reports whether err is a state-wait timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// Remote executes one command on a remote host.
type Remote interface {
	Execute(ctx context.Context, command string) (string, error)
}

// remoteFactory builds a Remote for a host. Swapped in tests.
type remoteFactory func(host string) (Remote, error)

// Provisioner creates, polls, configures, discovers, and terminates
// student instances.
type Provisioner struct {
	api      ec2.API
	template string
	adminKey []byte
	sshUser  string
	timeouts *config.Timeouts

	newRemote remoteFactory
}

// NewProvisioner creates a compute provisioner. adminKey is the instructor
// PEM private key used for the remote-configuration channel.
func NewProvisioner(api ec2.API, template string, adminKey []byte, sshUser string, timeouts *config.Timeouts) *Provisioner {
	p := &Provisioner{
		api:      api,
		template: template,
		adminKey: adminKey,
		sshUser:  sshUser,
		timeouts: timeouts,
	}
	p.newRemote = p.dialRemote
	return p
}

// GenerateKeyPair produces a fresh student SSH key pair.
func (p *Provisioner) GenerateKeyPair() (*keygen.KeyPair, error) {
	return keygen.GenerateRSAKeyPair(keygen.DefaultBits)
}

// Launch requests one instance from the launch template, named after the
// student account and carrying the given tags. Returns the instance id.
func (p *Provisioner) Launch(ctx context.Context, account string, tags map[string]string) (string, error) {
	return p.api.LaunchInstance(ctx, ec2.LaunchOpts{
		Template: p.template,
		NameTag:  account + "-vm",
		Tags:     tags,
	})
}

// WaitUntilRunning polls until every instance is running, then returns a
// map of instance id to public address. On budget exhaustion it fails with
// a TimeoutError for the whole batch.
func (p *Provisioner) WaitUntilRunning(ctx context.Context, ids []string) (map[string]string, error) {
	addrs := make(map[string]string, len(ids))
	var pending []string

	poll := func() error {
		instances, err := p.api.DescribeInstances(ctx, ids)
		if err != nil {
			return describeResult(err)
		}

		pending = pending[:0]
		for _, inst := range instances {
			if inst.State != ec2.StateRunning {
				pending = append(pending, inst.ID)
				continue
			}
			if inst.PublicIP != "" {
				addrs[inst.ID] = inst.PublicIP
			}
		}
		if len(pending) > 0 {
			return errNotReady
		}
		return nil
	}

	attempts := int(p.timeouts.InstanceWait / p.timeouts.InstancePoll)
	err := retry.WithFixedInterval(ctx, poll, p.timeouts.InstancePoll, attempts)
	if err != nil {
		if errors.Is(err, errNotReady) {
			return nil, &TimeoutError{Op: ec2.StateRunning, Budget: p.timeouts.InstanceWait, Pending: pending}
		}
		return nil, err
	}
	return addrs, nil
}

// ConfigureRemoteAccess connects to host as the administrative user and
// appends the student public key to the login account's authorized keys.
// The connection is retried until the SSH budget is spent; the remote
// command runs once and a command failure is terminal.
func (p *Provisioner) ConfigureRemoteAccess(ctx context.Context, host string, publicKey []byte) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeouts.SSHWait)
	defer cancel()

	remote, err := p.newRemote(host)
	if err != nil {
		return err
	}

	key := strings.TrimSpace(string(publicKey))
	command := fmt.Sprintf("echo '%s' >> ~/.ssh/authorized_keys", key)

	_, err = remote.Execute(ctx, command)
	return err
}

// VerifyAccess connects to host with the given private key and runs a
// probe command, returning its output. Used by the launch check.
func (p *Provisioner) VerifyAccess(ctx context.Context, host string, privateKey []byte, command string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeouts.SSHWait)
	defer cancel()

	client, err := ssh.NewClient(&ssh.Config{
		Host:        host,
		User:        p.sshUser,
		PrivateKey:  privateKey,
		DialTimeout: p.timeouts.SSHDial,
		MaxRetries:  p.sshAttempts(),
	})
	if err != nil {
		return "", err
	}
	return client.Execute(ctx, command)
}

// FindByCourse returns all live instances tagged with the course id.
func (p *Provisioner) FindByCourse(ctx context.Context, courseID string) ([]ec2.Instance, error) {
	return p.api.FindInstancesByTag(ctx, ec2.TagCourse, courseID)
}

// FindChecks returns all live instances created by launch checks.
func (p *Provisioner) FindChecks(ctx context.Context) ([]ec2.Instance, error) {
	return p.api.FindInstancesByTag(ctx, ec2.TagCheck, "true")
}

// Terminate requests termination and polls until every instance reports
// terminated, failing with a TimeoutError on budget exhaustion.
func (p *Provisioner) Terminate(ctx context.Context, ids []string) error {
	if err := p.api.TerminateInstances(ctx, ids); err != nil {
		return err
	}

	var pending []string
	poll := func() error {
		instances, err := p.api.DescribeInstances(ctx, ids)
		if err != nil {
			return describeResult(err)
		}
		pending = pending[:0]
		for _, inst := range instances {
			if inst.State != ec2.StateTerminated {
				pending = append(pending, inst.ID)
			}
		}
		if len(pending) > 0 {
			return errNotReady
		}
		return nil
	}

	attempts := int(p.timeouts.TerminateWait / p.timeouts.TerminatePoll)
	err := retry.WithFixedInterval(ctx, poll, p.timeouts.TerminatePoll, attempts)
	if err != nil {
		if errors.Is(err, errNotReady) {
			return &TimeoutError{Op: ec2.StateTerminated, Budget: p.timeouts.TerminateWait, Pending: pending}
		}
		return err
	}
	return nil
}

// describeResult classifies a DescribeInstances failure for the state
// polls. Freshly launched ids are invisible to describe calls for a short
// window, so unknown-id errors are retried like a not-ready state, as is
// rate limiting. Anything else aborts the wait.
func describeResult(err error) error {
	if ec2.IsNotFound(err) || ec2.IsThrottled(err) {
		return err
	}
	return retry.Fatal(err)
}

// dialRemote is the production remoteFactory: an SSH client authenticated
// with the instructor key.
func (p *Provisioner) dialRemote(host string) (Remote, error) {
	return ssh.NewClient(&ssh.Config{
		Host:        host,
		User:        p.sshUser,
		PrivateKey:  p.adminKey,
		DialTimeout: p.timeouts.SSHDial,
		MaxRetries:  p.sshAttempts(),
	})
}

// sshAttempts derives the connection attempt budget from the SSH wait
// budget and the default retry delay.
func (p *Provisioner) sshAttempts() int {
	attempts := int(p.timeouts.SSHWait / (5 * time.Second))
	if attempts < 1 {
		attempts = 1
	}
	return attempts
}
