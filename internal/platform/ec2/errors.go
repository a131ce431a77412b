package ec2

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

var errNoInstanceReturned = errors.New("provider returned no instance")

// APIError wraps a provider rejection so callers can distinguish it from
// local failures.
type APIError struct {
	Op  string
	Err error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ec2: %s: %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func wrapAPIError(op string, err error) error {
	return &APIError{Op: op, Err: err}
}

// IsNotFound checks if an error indicates an unknown instance id.
func IsNotFound(err error) bool {
	return hasErrorCode(err,
		"InvalidInstanceID.NotFound",
		"InvalidInstanceID.Malformed",
	)
}

// IsBadTemplate checks if an error indicates a malformed or unknown
// launch template reference. These errors are fatal and not retried.
func IsBadTemplate(err error) bool {
	return hasErrorCode(err,
		"InvalidLaunchTemplateName.NotFoundException",
		"InvalidLaunchTemplateId.NotFound",
		"InvalidLaunchTemplateId.Malformed",
	)
}

// IsThrottled checks if an error indicates API rate limiting.
func IsThrottled(err error) bool {
	return hasErrorCode(err, "RequestLimitExceeded", "Throttling")
}

// hasErrorCode checks if the error is an AWS API error with one of the
// given codes.
func hasErrorCode(err error, codes ...string) bool {
	if err == nil {
		return false
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		for _, code := range codes {
			if apiErr.ErrorCode() == code {
				return true
			}
		}
	}
	return false
}
