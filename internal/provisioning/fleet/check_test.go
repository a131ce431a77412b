package fleet

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shanep/canvas-tools/internal/platform/ec2"
	"github.com/shanep/canvas-tools/internal/provisioning"
	testutil "github.com/shanep/canvas-tools/internal/testing"
)

func TestRunLaunchCheck_Passes(t *testing.T) {
	t.Parallel()

	compute := new(mockCompute)
	compute.On("GenerateKeyPair").Return(testKeys(), nil)
	compute.On("Launch", mock.Anything, "testuser", map[string]string{
		ec2.TagCheck: "true",
	}).Return("i-check", nil)
	compute.On("WaitUntilRunning", mock.Anything, []string{"i-check"}).
		Return(map[string]string{"i-check": "1.2.3.4"}, nil)
	compute.On("ConfigureRemoteAccess", mock.Anything, "1.2.3.4", testKeys().PublicKey).Return(nil)
	compute.On("VerifyAccess", mock.Anything, "1.2.3.4", testKeys().PrivateKey, mock.Anything).
		Return("hello-from-canvastools\nubuntu\n", nil)

	o := newOrchestrator(new(testutil.MockRosterSource), compute, new(mockIdentity))
	report, err := o.RunLaunchCheck(context.Background(), "ubuntu")

	require.NoError(t, err)
	assert.Equal(t, provisioning.StatusPassed, report.Status)
	assert.Equal(t, "i-check", report.InstanceID)
	assert.Equal(t, "1.2.3.4", report.PublicIP)
	assert.Contains(t, report.Output, "hello-from-canvastools")
	assert.NotEmpty(t, report.PrivateKey)
}

// recordingObserver captures progress steps for sequence assertions.
type recordingObserver struct {
	steps []string
}

func (o *recordingObserver) Printf(string, ...interface{}) {}

func (o *recordingObserver) Progress(completed, total int, message string) {
	o.steps = append(o.steps, fmt.Sprintf("%d/%d %s", completed, total, message))
}

func TestRunLaunchCheck_ReportsEachStepOnce(t *testing.T) {
	t.Parallel()

	compute := new(mockCompute)
	compute.On("GenerateKeyPair").Return(testKeys(), nil)
	compute.On("Launch", mock.Anything, "testuser", mock.Anything).Return("i-check", nil)
	compute.On("WaitUntilRunning", mock.Anything, []string{"i-check"}).
		Return(map[string]string{"i-check": "1.2.3.4"}, nil)
	compute.On("ConfigureRemoteAccess", mock.Anything, "1.2.3.4", mock.Anything).Return(nil)
	compute.On("VerifyAccess", mock.Anything, "1.2.3.4", mock.Anything, mock.Anything).
		Return("hello-from-canvastools\nubuntu\n", nil)

	observer := &recordingObserver{}
	o := NewOrchestrator(new(testutil.MockRosterSource), compute, new(mockIdentity), observer)
	_, err := o.RunLaunchCheck(context.Background(), "ubuntu")

	require.NoError(t, err)
	require.Len(t, observer.steps, 4)
	assert.Equal(t, "1/4 Launching test instance...", observer.steps[0])
	assert.Equal(t, "2/4 Waiting for instance to start...", observer.steps[1])
	assert.Contains(t, observer.steps[2], "3/4 Installing test key")
	assert.Contains(t, observer.steps[3], "4/4 Logging in with generated key")
}

func TestRunLaunchCheck_SetupFailure(t *testing.T) {
	t.Parallel()

	compute := new(mockCompute)
	compute.On("GenerateKeyPair").Return(testKeys(), nil)
	compute.On("Launch", mock.Anything, "testuser", mock.Anything).Return("i-check", nil)
	compute.On("WaitUntilRunning", mock.Anything, []string{"i-check"}).
		Return(map[string]string{"i-check": "1.2.3.4"}, nil)
	compute.On("ConfigureRemoteAccess", mock.Anything, "1.2.3.4", mock.Anything).
		Return(errors.New("exit status 1"))

	o := newOrchestrator(new(testutil.MockRosterSource), compute, new(mockIdentity))
	report, err := o.RunLaunchCheck(context.Background(), "ubuntu")

	require.NoError(t, err)
	assert.Equal(t, provisioning.StatusError, report.Status)
	assert.Contains(t, report.Err, "setup failed")
	compute.AssertNotCalled(t, "VerifyAccess", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunLaunchCheck_UnexpectedOutput(t *testing.T) {
	t.Parallel()

	compute := new(mockCompute)
	compute.On("GenerateKeyPair").Return(testKeys(), nil)
	compute.On("Launch", mock.Anything, "testuser", mock.Anything).Return("i-check", nil)
	compute.On("WaitUntilRunning", mock.Anything, []string{"i-check"}).
		Return(map[string]string{"i-check": "1.2.3.4"}, nil)
	compute.On("ConfigureRemoteAccess", mock.Anything, "1.2.3.4", mock.Anything).Return(nil)
	compute.On("VerifyAccess", mock.Anything, "1.2.3.4", mock.Anything, mock.Anything).
		Return("permission denied", nil)

	o := newOrchestrator(new(testutil.MockRosterSource), compute, new(mockIdentity))
	report, err := o.RunLaunchCheck(context.Background(), "ubuntu")

	require.NoError(t, err)
	assert.Equal(t, provisioning.StatusError, report.Status)
	assert.Contains(t, report.Err, "unexpected output")
}

func TestCleanupChecks(t *testing.T) {
	t.Parallel()

	compute := new(mockCompute)
	compute.On("FindChecks", mock.Anything).Return([]ec2.Instance{
		{ID: "i-check", Name: "testuser-vm", State: ec2.StateRunning},
	}, nil)
	compute.On("Terminate", mock.Anything, []string{"i-check"}).Return(nil)

	o := newOrchestrator(new(testutil.MockRosterSource), compute, new(mockIdentity))
	results, err := o.CleanupChecks(context.Background())

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, provisioning.StatusTerminated, results[0].Status)
	assert.Equal(t, "testuser-vm", results[0].Account)
}

func TestCleanupChecks_NothingFound(t *testing.T) {
	t.Parallel()

	compute := new(mockCompute)
	compute.On("FindChecks", mock.Anything).Return([]ec2.Instance{}, nil)

	o := newOrchestrator(new(testutil.MockRosterSource), compute, new(mockIdentity))
	results, err := o.CleanupChecks(context.Background())

	require.NoError(t, err)
	assert.Empty(t, results)
	compute.AssertNotCalled(t, "Terminate", mock.Anything, mock.Anything)
}
