package identity

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shanep/canvas-tools/internal/platform/iam"
	"github.com/shanep/canvas-tools/internal/provisioning"
	testutil "github.com/shanep/canvas-tools/internal/testing"
)

func alreadyExistsErr() error {
	return &iam.APIError{Op: "create", Err: &smithy.GenericAPIError{Code: "EntityAlreadyExists"}}
}

func notFoundErr() error {
	return &iam.APIError{Op: "delete", Err: &smithy.GenericAPIError{Code: "NoSuchEntity"}}
}

func newTestProvisioner(api iam.API) *Provisioner {
	return NewProvisioner(api, "EC2OnlyAccess", "us-west-2", 12)
}

func TestCreateAccount_Created(t *testing.T) {
	t.Parallel()

	api := new(testutil.MockIdentityAPI)
	api.On("CreateUser", mock.Anything, "jdoe").Return(nil)
	api.On("CreateLoginProfile", mock.Anything, "jdoe", mock.AnythingOfType("string"), true).Return(nil)

	p := newTestProvisioner(api)
	result := p.CreateAccount(context.Background(), "jdoe@u.example.edu")

	assert.Equal(t, provisioning.StatusCreated, result.Status)
	assert.Equal(t, "jdoe", result.Account)
	assert.Len(t, result.Password, 12)
	api.AssertExpectations(t)
}

func TestCreateAccount_AlreadyExistsIsSkipped(t *testing.T) {
	t.Parallel()

	api := new(testutil.MockIdentityAPI)
	api.On("CreateUser", mock.Anything, "jdoe").Return(alreadyExistsErr())

	p := newTestProvisioner(api)
	result := p.CreateAccount(context.Background(), "jdoe@u.example.edu")

	assert.Equal(t, provisioning.StatusSkipped, result.Status)
	assert.Empty(t, result.Password)
	api.AssertNotCalled(t, "CreateLoginProfile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateAccount_ProviderError(t *testing.T) {
	t.Parallel()

	api := new(testutil.MockIdentityAPI)
	api.On("CreateUser", mock.Anything, "jdoe").Return(errors.New("access denied"))

	p := newTestProvisioner(api)
	result := p.CreateAccount(context.Background(), "jdoe@u.example.edu")

	assert.Equal(t, provisioning.StatusError, result.Status)
	assert.Contains(t, result.Err, "access denied")
}

func TestEnsureAccessPolicy_CreatesNewPolicy(t *testing.T) {
	t.Parallel()

	api := new(testutil.MockIdentityAPI)
	api.On("CreatePolicy", mock.Anything, "EC2OnlyAccess", mock.AnythingOfType("string")).
		Return("arn:aws:iam::123456789012:policy/EC2OnlyAccess", nil)

	p := newTestProvisioner(api)
	arn, err := p.EnsureAccessPolicy(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "arn:aws:iam::123456789012:policy/EC2OnlyAccess", arn)
	api.AssertNotCalled(t, "CreatePolicyVersion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEnsureAccessPolicy_NewVersionUnderCeiling(t *testing.T) {
	t.Parallel()

	arn := "arn:aws:iam::123456789012:policy/EC2OnlyAccess"

	api := new(testutil.MockIdentityAPI)
	api.On("CreatePolicy", mock.Anything, "EC2OnlyAccess", mock.Anything).Return("", alreadyExistsErr())
	api.On("AccountID", mock.Anything).Return("123456789012", nil)
	api.On("ListPolicyVersions", mock.Anything, arn).Return(testutil.PolicyVersions(3), nil)
	api.On("CreatePolicyVersion", mock.Anything, arn, mock.AnythingOfType("string"), true).Return(nil)

	p := newTestProvisioner(api)
	got, err := p.EnsureAccessPolicy(context.Background())

	require.NoError(t, err)
	assert.Equal(t, arn, got)
	api.AssertNotCalled(t, "DeletePolicyVersion", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnsureAccessPolicy_PrunesOldestAtCeiling(t *testing.T) {
	t.Parallel()

	arn := "arn:aws:iam::123456789012:policy/EC2OnlyAccess"

	api := new(testutil.MockIdentityAPI)
	api.On("CreatePolicy", mock.Anything, "EC2OnlyAccess", mock.Anything).Return("", alreadyExistsErr())
	api.On("AccountID", mock.Anything).Return("123456789012", nil)
	api.On("ListPolicyVersions", mock.Anything, arn).Return(testutil.PolicyVersions(5), nil)
	api.On("DeletePolicyVersion", mock.Anything, arn, "v1").Return(nil)
	api.On("CreatePolicyVersion", mock.Anything, arn, mock.AnythingOfType("string"), true).Return(nil)

	p := newTestProvisioner(api)
	_, err := p.EnsureAccessPolicy(context.Background())

	require.NoError(t, err)
	api.AssertExpectations(t)
}

// policyStore is a stateful in-memory policy backend for exercising the
// version ceiling over repeated calls. Unimplemented iam.API methods panic.
type policyStore struct {
	iam.API
	created  bool
	versions []iam.PolicyVersion
	deleted  int
	clock    time.Time
}

func (s *policyStore) CreatePolicy(_ context.Context, policyName, _ string) (string, error) {
	if s.created {
		return "", alreadyExistsErr()
	}
	s.created = true
	s.appendVersion()
	return iam.PolicyARN("123456789012", policyName), nil
}

func (s *policyStore) AccountID(context.Context) (string, error) {
	return "123456789012", nil
}

func (s *policyStore) ListPolicyVersions(context.Context, string) ([]iam.PolicyVersion, error) {
	out := make([]iam.PolicyVersion, len(s.versions))
	copy(out, s.versions)
	return out, nil
}

func (s *policyStore) DeletePolicyVersion(_ context.Context, _ string, versionID string) error {
	for i, v := range s.versions {
		if v.ID == versionID {
			if v.IsDefault {
				return errors.New("cannot delete default version")
			}
			s.versions = append(s.versions[:i], s.versions[i+1:]...)
			s.deleted++
			return nil
		}
	}
	return notFoundErr()
}

func (s *policyStore) CreatePolicyVersion(_ context.Context, _, _ string, setDefault bool) error {
	if len(s.versions) >= maxPolicyVersions {
		return errors.New("LimitExceeded")
	}
	if setDefault {
		for i := range s.versions {
			s.versions[i].IsDefault = false
		}
	}
	s.appendVersion()
	return nil
}

func (s *policyStore) appendVersion() {
	s.clock = s.clock.Add(time.Hour)
	s.versions = append(s.versions, iam.PolicyVersion{
		ID:         fmt.Sprintf("v%d", len(s.versions)+1),
		IsDefault:  true,
		CreateDate: s.clock,
	})
}

func TestEnsureAccessPolicy_VersionCountNeverExceedsCeiling(t *testing.T) {
	t.Parallel()

	store := &policyStore{clock: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)}
	p := newTestProvisioner(store)

	for i := 0; i < 6; i++ {
		_, err := p.EnsureAccessPolicy(context.Background())
		require.NoError(t, err, "call %d", i+1)
	}

	assert.Len(t, store.versions, maxPolicyVersions)
	assert.Equal(t, 1, store.deleted)
}

func TestAttachPolicy(t *testing.T) {
	t.Parallel()

	arn := "arn:aws:iam::123456789012:policy/EC2OnlyAccess"

	api := new(testutil.MockIdentityAPI)
	api.On("AttachUserPolicy", mock.Anything, "jdoe", arn).Return(nil)
	api.On("DeleteInlinePolicy", mock.Anything, "jdoe", "EC2OnlyAccess").Return(notFoundErr())

	p := newTestProvisioner(api)
	err := p.AttachPolicy(context.Background(), "jdoe", arn)

	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestAttachPolicy_AttachFailure(t *testing.T) {
	t.Parallel()

	api := new(testutil.MockIdentityAPI)
	api.On("AttachUserPolicy", mock.Anything, "jdoe", mock.Anything).Return(errors.New("limit exceeded"))

	p := newTestProvisioner(api)
	err := p.AttachPolicy(context.Background(), "jdoe", "arn:aws:iam::1:policy/x")

	require.Error(t, err)
	api.AssertNotCalled(t, "DeleteInlinePolicy", mock.Anything, mock.Anything, mock.Anything)
}

func TestRotateCredential_UpdatesExistingProfile(t *testing.T) {
	t.Parallel()

	api := new(testutil.MockIdentityAPI)
	api.On("UpdateLoginProfile", mock.Anything, "jdoe", mock.AnythingOfType("string"), true).Return(nil)

	p := newTestProvisioner(api)
	result := p.RotateCredential(context.Background(), "jdoe@u.example.edu")

	assert.Equal(t, provisioning.StatusRotated, result.Status)
	assert.Len(t, result.Password, 12)
}

func TestRotateCredential_CreatesMissingProfile(t *testing.T) {
	t.Parallel()

	api := new(testutil.MockIdentityAPI)
	api.On("UpdateLoginProfile", mock.Anything, "jdoe", mock.Anything, true).Return(notFoundErr())
	api.On("CreateLoginProfile", mock.Anything, "jdoe", mock.Anything, true).Return(nil)

	p := newTestProvisioner(api)
	result := p.RotateCredential(context.Background(), "jdoe@u.example.edu")

	assert.Equal(t, provisioning.StatusRotated, result.Status)
	api.AssertExpectations(t)
}

func TestRotateCredential_MissingUserIsSkipped(t *testing.T) {
	t.Parallel()

	api := new(testutil.MockIdentityAPI)
	api.On("UpdateLoginProfile", mock.Anything, "ghost", mock.Anything, true).Return(notFoundErr())
	api.On("CreateLoginProfile", mock.Anything, "ghost", mock.Anything, true).Return(notFoundErr())

	p := newTestProvisioner(api)
	result := p.RotateCredential(context.Background(), "ghost@u.example.edu")

	assert.Equal(t, provisioning.StatusSkipped, result.Status)
	assert.Empty(t, result.Password)
}

func TestRemoveAccount_Cascade(t *testing.T) {
	t.Parallel()

	api := new(testutil.MockIdentityAPI)
	api.On("DeleteLoginProfile", mock.Anything, "jdoe").Return(nil)
	api.On("ListInlinePolicies", mock.Anything, "jdoe").Return([]string{"EC2OnlyAccess"}, nil)
	api.On("DeleteInlinePolicy", mock.Anything, "jdoe", "EC2OnlyAccess").Return(nil)
	api.On("ListAttachedPolicies", mock.Anything, "jdoe").
		Return([]string{"arn:aws:iam::1:policy/EC2OnlyAccess"}, nil)
	api.On("DetachUserPolicy", mock.Anything, "jdoe", "arn:aws:iam::1:policy/EC2OnlyAccess").Return(nil)
	api.On("ListAccessKeys", mock.Anything, "jdoe").Return([]string{"AKIAEXAMPLE"}, nil)
	api.On("DeleteAccessKey", mock.Anything, "jdoe", "AKIAEXAMPLE").Return(nil)
	api.On("DeleteUser", mock.Anything, "jdoe").Return(nil)

	p := newTestProvisioner(api)
	result := p.RemoveAccount(context.Background(), "jdoe@u.example.edu")

	assert.Equal(t, provisioning.StatusDeleted, result.Status)
	api.AssertExpectations(t)
}

func TestRemoveAccount_MissingUserIsSkipped(t *testing.T) {
	t.Parallel()

	api := new(testutil.MockIdentityAPI)
	api.On("DeleteLoginProfile", mock.Anything, "ghost").Return(notFoundErr())
	api.On("ListInlinePolicies", mock.Anything, "ghost").Return(nil, notFoundErr())
	api.On("ListAttachedPolicies", mock.Anything, "ghost").Return(nil, notFoundErr())
	api.On("ListAccessKeys", mock.Anything, "ghost").Return(nil, notFoundErr())
	api.On("DeleteUser", mock.Anything, "ghost").Return(notFoundErr())

	p := newTestProvisioner(api)
	result := p.RemoveAccount(context.Background(), "ghost@u.example.edu")

	assert.Equal(t, provisioning.StatusSkipped, result.Status)
	assert.Equal(t, "user not found", result.Err)
}

func TestAccessPolicyDocument(t *testing.T) {
	t.Parallel()

	doc, err := accessPolicyDocument("us-east-1")

	require.NoError(t, err)
	assert.Contains(t, doc, `"Version":"2012-10-17"`)
	assert.Contains(t, doc, `"ec2:Region":"us-east-1"`)
	assert.Contains(t, doc, "ec2:RunInstances")
	assert.Contains(t, doc, "ec2:DescribeInstances")
	assert.NotContains(t, doc, "iam:")
}
