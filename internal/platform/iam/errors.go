package iam

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

var errNoPolicyReturned = errors.New("provider returned no policy")

// APIError wraps a provider rejection so callers can distinguish it from
// local failures.
type APIError struct {
	Op  string
	Err error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("iam: %s: %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func wrapAPIError(op string, err error) error {
	return &APIError{Op: op, Err: err}
}

// IsAlreadyExists checks if an error indicates the entity already exists.
// Callers map this to a skipped outcome, never a failure.
func IsAlreadyExists(err error) bool {
	return hasErrorCode(err, "EntityAlreadyExists")
}

// IsNotFound checks if an error indicates the entity does not exist.
// Teardown paths tolerate this so partially-removed accounts can be
// retried to completion.
func IsNotFound(err error) bool {
	return hasErrorCode(err, "NoSuchEntity")
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
