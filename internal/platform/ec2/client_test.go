package ec2

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRunInstancesInput_TemplateByID(t *testing.T) {
	t.Parallel()

	input := buildRunInstancesInput(LaunchOpts{
		Template: "lt-0abc1234",
		NameTag:  "john.doe-vm",
	})

	require.NotNil(t, input.LaunchTemplate)
	assert.Equal(t, "lt-0abc1234", aws.ToString(input.LaunchTemplate.LaunchTemplateId))
	assert.Nil(t, input.LaunchTemplate.LaunchTemplateName)
	assert.Equal(t, int32(1), aws.ToInt32(input.MinCount))
	assert.Equal(t, int32(1), aws.ToInt32(input.MaxCount))
	assert.Nil(t, input.UserData)
}

func TestBuildRunInstancesInput_TemplateByName(t *testing.T) {
	t.Parallel()

	input := buildRunInstancesInput(LaunchOpts{
		Template: "cs453-lab",
		NameTag:  "john.doe-vm",
		Tags: map[string]string{
			TagCourse:  "12345",
			TagStudent: "john.doe",
		},
		UserData: "IyEvYmluL2Jhc2g=",
	})

	require.NotNil(t, input.LaunchTemplate)
	assert.Equal(t, "cs453-lab", aws.ToString(input.LaunchTemplate.LaunchTemplateName))
	assert.Nil(t, input.LaunchTemplate.LaunchTemplateId)
	assert.Equal(t, "IyEvYmluL2Jhc2g=", aws.ToString(input.UserData))

	require.Len(t, input.TagSpecifications, 1)
	assert.Equal(t, types.ResourceTypeInstance, input.TagSpecifications[0].ResourceType)

	got := map[string]string{}
	for _, tag := range input.TagSpecifications[0].Tags {
		got[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	assert.Equal(t, map[string]string{
		"Name":     "john.doe-vm",
		TagCourse:  "12345",
		TagStudent: "john.doe",
	}, got)
}

func TestFlattenReservations(t *testing.T) {
	t.Parallel()

	reservations := []types.Reservation{
		{Instances: []types.Instance{
			{
				InstanceId:      aws.String("i-1"),
				PublicIpAddress: aws.String("1.2.3.4"),
				State:           &types.InstanceState{Name: types.InstanceStateNameRunning},
				Tags: []types.Tag{
					{Key: aws.String("Name"), Value: aws.String("john.doe-vm")},
					{Key: aws.String(TagStudent), Value: aws.String("john.doe")},
				},
			},
		}},
		{Instances: []types.Instance{
			{
				InstanceId: aws.String("i-2"),
				State:      &types.InstanceState{Name: types.InstanceStateNamePending},
			},
		}},
	}

	got := flattenReservations(reservations)
	require.Len(t, got, 2)

	assert.Equal(t, Instance{
		ID:       "i-1",
		Name:     "john.doe-vm",
		Student:  "john.doe",
		State:    StateRunning,
		PublicIP: "1.2.3.4",
	}, got[0])

	assert.Equal(t, "i-2", got[1].ID)
	assert.Equal(t, StatePending, got[1].State)
	assert.Empty(t, got[1].PublicIP)
}

type fakeAPIError struct {
	code string
}

func (e *fakeAPIError) Error() string                 { return e.code }
func (e *fakeAPIError) ErrorCode() string             { return e.code }
func (e *fakeAPIError) ErrorMessage() string          { return e.code }
func (e *fakeAPIError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	notFound := wrapAPIError("describe instances", &fakeAPIError{code: "InvalidInstanceID.NotFound"})
	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsBadTemplate(notFound))

	badTemplate := wrapAPIError("run instances", &fakeAPIError{code: "InvalidLaunchTemplateId.Malformed"})
	assert.True(t, IsBadTemplate(badTemplate))
	assert.False(t, IsNotFound(badTemplate))

	throttled := &fakeAPIError{code: "RequestLimitExceeded"}
	assert.True(t, IsThrottled(throttled))

	assert.False(t, IsNotFound(nil))
	assert.False(t, IsNotFound(errNoInstanceReturned))
}

func TestAPIError_Unwrap(t *testing.T) {
	t.Parallel()

	inner := &fakeAPIError{code: "Throttling"}
	wrapped := wrapAPIError("run instances", inner)
	assert.Contains(t, wrapped.Error(), "run instances")
	assert.True(t, IsThrottled(wrapped))
}
