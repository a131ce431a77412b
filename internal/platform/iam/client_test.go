package iam

import (
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
)

type fakeAPIError struct {
	code string
}

func (e *fakeAPIError) Error() string                 { return e.code }
func (e *fakeAPIError) ErrorCode() string             { return e.code }
func (e *fakeAPIError) ErrorMessage() string          { return e.code }
func (e *fakeAPIError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	exists := wrapAPIError("create user", &fakeAPIError{code: "EntityAlreadyExists"})
	assert.True(t, IsAlreadyExists(exists))
	assert.False(t, IsNotFound(exists))

	notFound := wrapAPIError("delete user", &fakeAPIError{code: "NoSuchEntity"})
	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsAlreadyExists(notFound))

	assert.False(t, IsNotFound(nil))
	assert.False(t, IsAlreadyExists(errNoPolicyReturned))
}

func TestAPIError_Message(t *testing.T) {
	t.Parallel()

	err := wrapAPIError("attach user policy", &fakeAPIError{code: "LimitExceeded"})
	assert.Contains(t, err.Error(), "attach user policy")
	assert.Contains(t, err.Error(), "LimitExceeded")
}

func TestFormatSignInURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://teaching.signin.aws.amazon.com/console", formatSignInURL("teaching"))
	assert.Equal(t, "https://123456789012.signin.aws.amazon.com/console", formatSignInURL("123456789012"))
}

func TestPolicyARN(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"arn:aws:iam::123456789012:policy/EC2OnlyAccess",
		PolicyARN("123456789012", "EC2OnlyAccess"))
}
