package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	InstanceWait      time.Duration // Budget for the running-state batch wait
	InstancePoll      time.Duration // Poll interval for the running-state wait
	TerminateWait     time.Duration // Budget for the terminated-state wait
	TerminatePoll     time.Duration // Poll interval for the terminated-state wait
	SSHWait           time.Duration // Budget for SSH connection establishment
	SSHDial           time.Duration // Per-attempt TCP dial timeout
	RetryMaxAttempts  int           // Maximum API retry attempts
	RetryInitialDelay time.Duration // Initial delay between API retries
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - CANVASTOOLS_TIMEOUT_INSTANCE_WAIT (default: 5m)
//   - CANVASTOOLS_INSTANCE_POLL_INTERVAL (default: 10s)
//   - CANVASTOOLS_TIMEOUT_TERMINATE (default: 5m)
//   - CANVASTOOLS_TERMINATE_POLL_INTERVAL (default: 15s)
//   - CANVASTOOLS_TIMEOUT_SSH (default: 5m)
//   - CANVASTOOLS_SSH_DIAL_TIMEOUT (default: 10s)
//   - CANVASTOOLS_RETRY_MAX_ATTEMPTS (default: 5)
//   - CANVASTOOLS_RETRY_INITIAL_DELAY (default: 1s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		InstanceWait:      parseDuration("CANVASTOOLS_TIMEOUT_INSTANCE_WAIT", 5*time.Minute),
		InstancePoll:      parseDuration("CANVASTOOLS_INSTANCE_POLL_INTERVAL", 10*time.Second),
		TerminateWait:     parseDuration("CANVASTOOLS_TIMEOUT_TERMINATE", 5*time.Minute),
		TerminatePoll:     parseDuration("CANVASTOOLS_TERMINATE_POLL_INTERVAL", 15*time.Second),
		SSHWait:           parseDuration("CANVASTOOLS_TIMEOUT_SSH", 5*time.Minute),
		SSHDial:           parseDuration("CANVASTOOLS_SSH_DIAL_TIMEOUT", 10*time.Second),
		RetryMaxAttempts:  parseInt("CANVASTOOLS_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay: parseDuration("CANVASTOOLS_RETRY_INITIAL_DELAY", 1*time.Second),
	}
}

// TestTimeouts returns aggressive timeouts for unit tests so poll loops
// expire in milliseconds instead of minutes.
func TestTimeouts() *Timeouts {
	return &Timeouts{
		InstanceWait:      50 * time.Millisecond,
		InstancePoll:      time.Millisecond,
		TerminateWait:     50 * time.Millisecond,
		TerminatePoll:     time.Millisecond,
		SSHWait:           50 * time.Millisecond,
		SSHDial:           10 * time.Millisecond,
		RetryMaxAttempts:  2,
		RetryInitialDelay: time.Millisecond,
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
