package provisioning

import "strings"

// Status is the closed set of per-student outcomes.
type Status string

const (
	// StatusCreated means an account was created with fresh credentials.
	StatusCreated Status = "created"
	// StatusLaunched means an instance was launched, reached running, and
	// was configured for remote access.
	StatusLaunched Status = "launched"
	// StatusConfigured means remote access was (re)configured on an
	// already-running instance.
	StatusConfigured Status = "configured"
	// StatusSkipped means the student was not processed: no email on the
	// roster entry, or the target resource already exists / is gone.
	StatusSkipped Status = "skipped"
	// StatusError means the operation failed; Err carries the message.
	StatusError Status = "error"
	// StatusTerminated means the student's instance was terminated.
	StatusTerminated Status = "terminated"
	// StatusDeleted means the student's account and its attached resources
	// were removed.
	StatusDeleted Status = "deleted"
	// StatusRotated means the account's login credential was replaced.
	StatusRotated Status = "rotated"
	// StatusUpdated means the shared access policy was re-applied.
	StatusUpdated Status = "updated"
	// StatusPassed means a launch check completed end to end.
	StatusPassed Status = "passed"
)

// Result is the outcome of one workflow step for one student. Credential
// fields are populated only on success and ownership transfers to the
// caller; nothing here is persisted.
type Result struct {
	Email      string
	Account    string
	InstanceID string
	PublicIP   string
	Password   string
	PrivateKey string
	PublicKey  string
	Status     Status
	Err        string
}

// Errorf returns an error result for the given identity.
func Errorf(email, account, msg string) Result {
	return Result{Email: email, Account: account, Status: StatusError, Err: msg}
}

// Skipped returns a skipped result with the given reason.
func Skipped(email, account, reason string) Result {
	return Result{Email: email, Account: account, Status: StatusSkipped, Err: reason}
}

// AccountName derives the provider username from a student email: the text
// before the first "@". The derivation is deterministic so repeated runs
// address the same account.
func AccountName(email string) string {
	if i := strings.Index(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}
