// Package iam provides a wrapper around the AWS IAM and STS APIs.
package iam

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsiam "github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// PolicyVersion is a stored version of a managed policy document.
type PolicyVersion struct {
	ID         string
	IsDefault  bool
	CreateDate time.Time
}

// API defines the interface for account and policy management.
type API interface {
	CreateUser(ctx context.Context, name string) error
	DeleteUser(ctx context.Context, name string) error

	CreateLoginProfile(ctx context.Context, name, password string, resetRequired bool) error
	UpdateLoginProfile(ctx context.Context, name, password string, resetRequired bool) error
	DeleteLoginProfile(ctx context.Context, name string) error

	ListInlinePolicies(ctx context.Context, name string) ([]string, error)
	DeleteInlinePolicy(ctx context.Context, name, policyName string) error

	ListAttachedPolicies(ctx context.Context, name string) ([]string, error)
	AttachUserPolicy(ctx context.Context, name, policyARN string) error
	DetachUserPolicy(ctx context.Context, name, policyARN string) error

	ListAccessKeys(ctx context.Context, name string) ([]string, error)
	DeleteAccessKey(ctx context.Context, name, keyID string) error

	CreatePolicy(ctx context.Context, policyName, document string) (string, error)
	CreatePolicyVersion(ctx context.Context, policyARN, document string, setDefault bool) error
	ListPolicyVersions(ctx context.Context, policyARN string) ([]PolicyVersion, error)
	DeletePolicyVersion(ctx context.Context, policyARN, versionID string) error

	AccountID(ctx context.Context) (string, error)
	SignInURL(ctx context.Context) (string, error)
}

// Client implements API against the real IAM and STS services.
type Client struct {
	iam *awsiam.Client
	sts *sts.Client

	accountID string
	signInURL string
}

// NewClient wraps SDK IAM and STS clients.
func NewClient(iamClient *awsiam.Client, stsClient *sts.Client) *Client {
	return &Client{iam: iamClient, sts: stsClient}
}

// CreateUser implements API.
func (c *Client) CreateUser(ctx context.Context, name string) error {
	_, err := c.iam.CreateUser(ctx, &awsiam.CreateUserInput{
		UserName: aws.String(name),
	})
	if err != nil {
		return wrapAPIError("create user", err)
	}
	return nil
}

// DeleteUser implements API.
func (c *Client) DeleteUser(ctx context.Context, name string) error {
	_, err := c.iam.DeleteUser(ctx, &awsiam.DeleteUserInput{
		UserName: aws.String(name),
	})
	if err != nil {
		return wrapAPIError("delete user", err)
	}
	return nil
}

// CreateLoginProfile implements API.
func (c *Client) CreateLoginProfile(ctx context.Context, name, password string, resetRequired bool) error {
	_, err := c.iam.CreateLoginProfile(ctx, &awsiam.CreateLoginProfileInput{
		UserName:              aws.String(name),
		Password:              aws.String(password),
		PasswordResetRequired: resetRequired,
	})
	if err != nil {
		return wrapAPIError("create login profile", err)
	}
	return nil
}

// UpdateLoginProfile implements API.
func (c *Client) UpdateLoginProfile(ctx context.Context, name, password string, resetRequired bool) error {
	_, err := c.iam.UpdateLoginProfile(ctx, &awsiam.UpdateLoginProfileInput{
		UserName:              aws.String(name),
		Password:              aws.String(password),
		PasswordResetRequired: aws.Bool(resetRequired),
	})
	if err != nil {
		return wrapAPIError("update login profile", err)
	}
	return nil
}

// DeleteLoginProfile implements API.
func (c *Client) DeleteLoginProfile(ctx context.Context, name string) error {
	_, err := c.iam.DeleteLoginProfile(ctx, &awsiam.DeleteLoginProfileInput{
		UserName: aws.String(name),
	})
	if err != nil {
		return wrapAPIError("delete login profile", err)
	}
	return nil
}

// ListInlinePolicies implements API.
func (c *Client) ListInlinePolicies(ctx context.Context, name string) ([]string, error) {
	out, err := c.iam.ListUserPolicies(ctx, &awsiam.ListUserPoliciesInput{
		UserName: aws.String(name),
	})
	if err != nil {
		return nil, wrapAPIError("list inline policies", err)
	}
	return out.PolicyNames, nil
}

// DeleteInlinePolicy implements API.
func (c *Client) DeleteInlinePolicy(ctx context.Context, name, policyName string) error {
	_, err := c.iam.DeleteUserPolicy(ctx, &awsiam.DeleteUserPolicyInput{
		UserName:   aws.String(name),
		PolicyName: aws.String(policyName),
	})
	if err != nil {
		return wrapAPIError("delete inline policy", err)
	}
	return nil
}

// ListAttachedPolicies implements API, returning attached policy ARNs.
func (c *Client) ListAttachedPolicies(ctx context.Context, name string) ([]string, error) {
	out, err := c.iam.ListAttachedUserPolicies(ctx, &awsiam.ListAttachedUserPoliciesInput{
		UserName: aws.String(name),
	})
	if err != nil {
		return nil, wrapAPIError("list attached policies", err)
	}
	arns := make([]string, 0, len(out.AttachedPolicies))
	for _, p := range out.AttachedPolicies {
		arns = append(arns, aws.ToString(p.PolicyArn))
	}
	return arns, nil
}

// AttachUserPolicy implements API.
func (c *Client) AttachUserPolicy(ctx context.Context, name, policyARN string) error {
	_, err := c.iam.AttachUserPolicy(ctx, &awsiam.AttachUserPolicyInput{
		UserName:  aws.String(name),
		PolicyArn: aws.String(policyARN),
	})
	if err != nil {
		return wrapAPIError("attach user policy", err)
	}
	return nil
}

// DetachUserPolicy implements API.
func (c *Client) DetachUserPolicy(ctx context.Context, name, policyARN string) error {
	_, err := c.iam.DetachUserPolicy(ctx, &awsiam.DetachUserPolicyInput{
		UserName:  aws.String(name),
		PolicyArn: aws.String(policyARN),
	})
	if err != nil {
		return wrapAPIError("detach user policy", err)
	}
	return nil
}

// ListAccessKeys implements API, returning access key ids.
func (c *Client) ListAccessKeys(ctx context.Context, name string) ([]string, error) {
	out, err := c.iam.ListAccessKeys(ctx, &awsiam.ListAccessKeysInput{
		UserName: aws.String(name),
	})
	if err != nil {
		return nil, wrapAPIError("list access keys", err)
	}
	ids := make([]string, 0, len(out.AccessKeyMetadata))
	for _, md := range out.AccessKeyMetadata {
		ids = append(ids, aws.ToString(md.AccessKeyId))
	}
	return ids, nil
}

// DeleteAccessKey implements API.
func (c *Client) DeleteAccessKey(ctx context.Context, name, keyID string) error {
	_, err := c.iam.DeleteAccessKey(ctx, &awsiam.DeleteAccessKeyInput{
		UserName:    aws.String(name),
		AccessKeyId: aws.String(keyID),
	})
	if err != nil {
		return wrapAPIError("delete access key", err)
	}
	return nil
}

// CreatePolicy implements API, returning the new policy's ARN.
func (c *Client) CreatePolicy(ctx context.Context, policyName, document string) (string, error) {
	out, err := c.iam.CreatePolicy(ctx, &awsiam.CreatePolicyInput{
		PolicyName:     aws.String(policyName),
		PolicyDocument: aws.String(document),
	})
	if err != nil {
		return "", wrapAPIError("create policy", err)
	}
	if out.Policy == nil {
		return "", wrapAPIError("create policy", errNoPolicyReturned)
	}
	return aws.ToString(out.Policy.Arn), nil
}

// CreatePolicyVersion implements API.
func (c *Client) CreatePolicyVersion(ctx context.Context, policyARN, document string, setDefault bool) error {
	_, err := c.iam.CreatePolicyVersion(ctx, &awsiam.CreatePolicyVersionInput{
		PolicyArn:      aws.String(policyARN),
		PolicyDocument: aws.String(document),
		SetAsDefault:   setDefault,
	})
	if err != nil {
		return wrapAPIError("create policy version", err)
	}
	return nil
}

// ListPolicyVersions implements API.
func (c *Client) ListPolicyVersions(ctx context.Context, policyARN string) ([]PolicyVersion, error) {
	out, err := c.iam.ListPolicyVersions(ctx, &awsiam.ListPolicyVersionsInput{
		PolicyArn: aws.String(policyARN),
	})
	if err != nil {
		return nil, wrapAPIError("list policy versions", err)
	}
	versions := make([]PolicyVersion, 0, len(out.Versions))
	for _, v := range out.Versions {
		versions = append(versions, PolicyVersion{
			ID:         aws.ToString(v.VersionId),
			IsDefault:  v.IsDefaultVersion,
			CreateDate: aws.ToTime(v.CreateDate),
		})
	}
	return versions, nil
}

// DeletePolicyVersion implements API.
func (c *Client) DeletePolicyVersion(ctx context.Context, policyARN, versionID string) error {
	_, err := c.iam.DeletePolicyVersion(ctx, &awsiam.DeletePolicyVersionInput{
		PolicyArn: aws.String(policyARN),
		VersionId: aws.String(versionID),
	})
	if err != nil {
		return wrapAPIError("delete policy version", err)
	}
	return nil
}

// AccountID implements API. The id is fetched once and cached for the life
// of the client.
func (c *Client) AccountID(ctx context.Context) (string, error) {
	if c.accountID != "" {
		return c.accountID, nil
	}
	out, err := c.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", wrapAPIError("get caller identity", err)
	}
	c.accountID = aws.ToString(out.Account)
	return c.accountID, nil
}

// SignInURL implements API. It prefers the account alias, falling back to
// the numeric account id. The result is cached.
func (c *Client) SignInURL(ctx context.Context) (string, error) {
	if c.signInURL != "" {
		return c.signInURL, nil
	}

	out, err := c.iam.ListAccountAliases(ctx, &awsiam.ListAccountAliasesInput{})
	if err == nil && len(out.AccountAliases) > 0 {
		c.signInURL = formatSignInURL(out.AccountAliases[0])
		return c.signInURL, nil
	}

	accountID, err := c.AccountID(ctx)
	if err != nil {
		return "", err
	}
	c.signInURL = formatSignInURL(accountID)
	return c.signInURL, nil
}

// formatSignInURL builds the console sign-in URL for an alias or account id.
func formatSignInURL(account string) string {
	return fmt.Sprintf("https://%s.signin.aws.amazon.com/console", account)
}

// PolicyARN builds the ARN of a customer managed policy in the account.
func PolicyARN(accountID, policyName string) string {
	return fmt.Sprintf("arn:aws:iam::%s:policy/%s", accountID, policyName)
}
