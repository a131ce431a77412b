package testing

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shanep/canvas-tools/internal/platform/ec2"
	"github.com/shanep/canvas-tools/internal/platform/iam"
	"github.com/shanep/canvas-tools/internal/roster"
)

// MockComputeAPI is a mock implementation of the ec2.API interface.
type MockComputeAPI struct {
	mock.Mock
}

// LaunchInstance launches a mock instance.
func (m *MockComputeAPI) LaunchInstance(ctx context.Context, opts ec2.LaunchOpts) (string, error) {
	args := m.Called(ctx, opts)
	return args.String(0), args.Error(1)
}

// DescribeInstances returns mock instance states.
func (m *MockComputeAPI) DescribeInstances(ctx context.Context, ids []string) ([]ec2.Instance, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ec2.Instance), args.Error(1)
}

// FindInstancesByTag returns mock instances matching a tag.
func (m *MockComputeAPI) FindInstancesByTag(ctx context.Context, key, value string) ([]ec2.Instance, error) {
	args := m.Called(ctx, key, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ec2.Instance), args.Error(1)
}

// ListLaunchTemplates returns mock launch templates.
func (m *MockComputeAPI) ListLaunchTemplates(ctx context.Context) ([]ec2.LaunchTemplate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ec2.LaunchTemplate), args.Error(1)
}

// TerminateInstances terminates mock instances.
func (m *MockComputeAPI) TerminateInstances(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

// MockIdentityAPI is a mock implementation of the iam.API interface.
type MockIdentityAPI struct {
	mock.Mock
}

// CreateUser creates a mock user.
func (m *MockIdentityAPI) CreateUser(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// DeleteUser deletes a mock user.
func (m *MockIdentityAPI) DeleteUser(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// CreateLoginProfile creates a mock login profile.
func (m *MockIdentityAPI) CreateLoginProfile(ctx context.Context, name, password string, resetRequired bool) error {
	args := m.Called(ctx, name, password, resetRequired)
	return args.Error(0)
}

// UpdateLoginProfile updates a mock login profile.
func (m *MockIdentityAPI) UpdateLoginProfile(ctx context.Context, name, password string, resetRequired bool) error {
	args := m.Called(ctx, name, password, resetRequired)
	return args.Error(0)
}

// DeleteLoginProfile deletes a mock login profile.
func (m *MockIdentityAPI) DeleteLoginProfile(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// ListInlinePolicies lists mock inline policy names.
func (m *MockIdentityAPI) ListInlinePolicies(ctx context.Context, name string) ([]string, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// DeleteInlinePolicy deletes a mock inline policy.
func (m *MockIdentityAPI) DeleteInlinePolicy(ctx context.Context, name, policyName string) error {
	args := m.Called(ctx, name, policyName)
	return args.Error(0)
}

// ListAttachedPolicies lists mock attached policy ARNs.
func (m *MockIdentityAPI) ListAttachedPolicies(ctx context.Context, name string) ([]string, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// AttachUserPolicy attaches a mock managed policy.
func (m *MockIdentityAPI) AttachUserPolicy(ctx context.Context, name, policyARN string) error {
	args := m.Called(ctx, name, policyARN)
	return args.Error(0)
}

// DetachUserPolicy detaches a mock managed policy.
func (m *MockIdentityAPI) DetachUserPolicy(ctx context.Context, name, policyARN string) error {
	args := m.Called(ctx, name, policyARN)
	return args.Error(0)
}

// ListAccessKeys lists mock access key ids.
func (m *MockIdentityAPI) ListAccessKeys(ctx context.Context, name string) ([]string, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// DeleteAccessKey deletes a mock access key.
func (m *MockIdentityAPI) DeleteAccessKey(ctx context.Context, name, keyID string) error {
	args := m.Called(ctx, name, keyID)
	return args.Error(0)
}

// CreatePolicy creates a mock managed policy and returns its ARN.
func (m *MockIdentityAPI) CreatePolicy(ctx context.Context, policyName, document string) (string, error) {
	args := m.Called(ctx, policyName, document)
	return args.String(0), args.Error(1)
}

// CreatePolicyVersion creates a mock policy version.
func (m *MockIdentityAPI) CreatePolicyVersion(ctx context.Context, policyARN, document string, setDefault bool) error {
	args := m.Called(ctx, policyARN, document, setDefault)
	return args.Error(0)
}

// ListPolicyVersions lists mock policy versions.
func (m *MockIdentityAPI) ListPolicyVersions(ctx context.Context, policyARN string) ([]iam.PolicyVersion, error) {
	args := m.Called(ctx, policyARN)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]iam.PolicyVersion), args.Error(1)
}

// DeletePolicyVersion deletes a mock policy version.
func (m *MockIdentityAPI) DeletePolicyVersion(ctx context.Context, policyARN, versionID string) error {
	args := m.Called(ctx, policyARN, versionID)
	return args.Error(0)
}

// AccountID returns a mock account id.
func (m *MockIdentityAPI) AccountID(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// SignInURL returns a mock console sign-in URL.
func (m *MockIdentityAPI) SignInURL(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockRosterSource is a mock implementation of the roster.Source interface.
type MockRosterSource struct {
	mock.Mock
}

// GetStudents returns a mock course roster.
func (m *MockRosterSource) GetStudents(ctx context.Context, courseID string) ([]roster.Student, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]roster.Student), args.Error(1)
}

// MockRemote is a mock remote command executor.
type MockRemote struct {
	mock.Mock
}

// Execute runs a mock remote command.
func (m *MockRemote) Execute(ctx context.Context, command string) (string, error) {
	args := m.Called(ctx, command)
	return args.String(0), args.Error(1)
}
