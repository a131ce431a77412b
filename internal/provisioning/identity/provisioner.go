// Package identity provisions restricted IAM accounts for students.
//
// Each student gets a console login with a mandatory first-login password
// reset and the shared region-restricted EC2 policy. The policy is one
// managed document attached to every account, so updating it propagates
// without touching individual users.
package identity

import (
	"context"
	"time"

	"github.com/shanep/canvas-tools/internal/platform/iam"
	"github.com/shanep/canvas-tools/internal/provisioning"
	"github.com/shanep/canvas-tools/internal/util/password"
)

// maxPolicyVersions is the provider's stored-version ceiling per managed
// policy.
const maxPolicyVersions = 5

// Provisioner creates, rotates, and removes student accounts and manages
// the shared access policy.
type Provisioner struct {
	api         iam.API
	policyName  string
	region      string
	passwordLen int
}

// NewProvisioner creates an identity provisioner. The region restricts the
// generated access policy.
func NewProvisioner(api iam.API, policyName, region string, passwordLen int) *Provisioner {
	return &Provisioner{
		api:         api,
		policyName:  policyName,
		region:      region,
		passwordLen: passwordLen,
	}
}

// CreateAccount creates the account derived from email with a fresh console
// password that must be reset at first login. An existing account is
// reported as skipped, not an error, so re-running over a roster is safe.
func (p *Provisioner) CreateAccount(ctx context.Context, email string) provisioning.Result {
	account := provisioning.AccountName(email)

	if err := p.api.CreateUser(ctx, account); err != nil {
		if iam.IsAlreadyExists(err) {
			return provisioning.Skipped(email, account, "already exists")
		}
		return provisioning.Errorf(email, account, err.Error())
	}

	pw, err := password.Generate(p.passwordLen)
	if err != nil {
		return provisioning.Errorf(email, account, err.Error())
	}
	if err := p.api.CreateLoginProfile(ctx, account, pw, true); err != nil {
		return provisioning.Errorf(email, account, err.Error())
	}

	return provisioning.Result{
		Email:    email,
		Account:  account,
		Password: pw,
		Status:   provisioning.StatusCreated,
	}
}

// EnsureAccessPolicy creates the shared managed policy, or publishes the
// current document as a new default version when the policy already
// exists. At the stored-version ceiling the oldest non-default version is
// deleted first. Returns the policy ARN.
//
// Note: there is no lock around the version window, so two orchestrator
// runs against the same account can race on which old version gets pruned.
func (p *Provisioner) EnsureAccessPolicy(ctx context.Context) (string, error) {
	doc, err := accessPolicyDocument(p.region)
	if err != nil {
		return "", err
	}

	arn, err := p.api.CreatePolicy(ctx, p.policyName, doc)
	if err == nil {
		return arn, nil
	}
	if !iam.IsAlreadyExists(err) {
		return "", err
	}

	accountID, err := p.api.AccountID(ctx)
	if err != nil {
		return "", err
	}
	arn = iam.PolicyARN(accountID, p.policyName)

	versions, err := p.api.ListPolicyVersions(ctx, arn)
	if err != nil {
		return "", err
	}
	if len(versions) >= maxPolicyVersions {
		if victim := oldestNonDefault(versions); victim != "" {
			if err := p.api.DeletePolicyVersion(ctx, arn, victim); err != nil {
				return "", err
			}
		}
	}

	if err := p.api.CreatePolicyVersion(ctx, arn, doc, true); err != nil {
		return "", err
	}
	return arn, nil
}

// oldestNonDefault picks the deletion victim: the non-default version with
// the earliest creation date.
func oldestNonDefault(versions []iam.PolicyVersion) string {
	victim := ""
	var victimDate time.Time
	for _, v := range versions {
		if v.IsDefault {
			continue
		}
		if victim == "" || v.CreateDate.Before(victimDate) {
			victim = v.ID
			victimDate = v.CreateDate
		}
	}
	return victim
}

// AttachPolicy attaches the shared managed policy to the account and
// removes any legacy inline policy of the same name, migrating older
// accounts onto the managed document.
func (p *Provisioner) AttachPolicy(ctx context.Context, account, policyARN string) error {
	if err := p.api.AttachUserPolicy(ctx, account, policyARN); err != nil {
		return err
	}
	if err := p.api.DeleteInlinePolicy(ctx, account, p.policyName); err != nil && !iam.IsNotFound(err) {
		return err
	}
	return nil
}

// RotateCredential replaces the account's console password, creating the
// login profile if the account never had one. A missing account is
// reported as skipped.
func (p *Provisioner) RotateCredential(ctx context.Context, email string) provisioning.Result {
	account := provisioning.AccountName(email)

	pw, err := password.Generate(p.passwordLen)
	if err != nil {
		return provisioning.Errorf(email, account, err.Error())
	}

	err = p.api.UpdateLoginProfile(ctx, account, pw, true)
	if iam.IsNotFound(err) {
		err = p.api.CreateLoginProfile(ctx, account, pw, true)
		if iam.IsNotFound(err) {
			return provisioning.Skipped(email, account, "user not found")
		}
	}
	if err != nil {
		return provisioning.Errorf(email, account, err.Error())
	}

	return provisioning.Result{
		Email:    email,
		Account:  account,
		Password: pw,
		Status:   provisioning.StatusRotated,
	}
}

// RemoveAccount tears down the account derived from email: login profile,
// inline policies, managed policy attachments, access keys, then the
// account itself. Every sub-step tolerates missing resources so a
// partially-removed account can be retried to completion. A missing
// account is reported as skipped.
func (p *Provisioner) RemoveAccount(ctx context.Context, email string) provisioning.Result {
	account := provisioning.AccountName(email)

	if err := p.api.DeleteLoginProfile(ctx, account); err != nil && !iam.IsNotFound(err) {
		return provisioning.Errorf(email, account, err.Error())
	}

	// Sub-resource cleanup is best effort: the final DeleteUser is the
	// authoritative failure point and retries pick up whatever was left.
	if names, err := p.api.ListInlinePolicies(ctx, account); err == nil {
		for _, name := range names {
			_ = p.api.DeleteInlinePolicy(ctx, account, name)
		}
	}
	if arns, err := p.api.ListAttachedPolicies(ctx, account); err == nil {
		for _, arn := range arns {
			_ = p.api.DetachUserPolicy(ctx, account, arn)
		}
	}
	if keys, err := p.api.ListAccessKeys(ctx, account); err == nil {
		for _, keyID := range keys {
			_ = p.api.DeleteAccessKey(ctx, account, keyID)
		}
	}

	if err := p.api.DeleteUser(ctx, account); err != nil {
		if iam.IsNotFound(err) {
			return provisioning.Skipped(email, account, "user not found")
		}
		return provisioning.Errorf(email, account, err.Error())
	}

	return provisioning.Result{
		Email:   email,
		Account: account,
		Status:  provisioning.StatusDeleted,
	}
}

// SignInURL returns the console sign-in URL for credential handouts.
func (p *Provisioner) SignInURL(ctx context.Context) (string, error) {
	return p.api.SignInURL(ctx)
}
