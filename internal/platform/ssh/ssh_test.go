package ssh

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanep/canvas-tools/internal/util/keygen"
)

// generateTestKey generates a test RSA key pair for use in tests.
func generateTestKey(t *testing.T) *keygen.KeyPair {
	t.Helper()
	keyPair, err := keygen.GenerateRSAKeyPair(1024)
	require.NoError(t, err)
	return keyPair
}

func TestNewClient_Success(t *testing.T) {
	t.Parallel()
	keyPair := generateTestKey(t)

	client, err := NewClient(&Config{
		Host:       "192.0.2.10",
		User:       "ubuntu",
		PrivateKey: keyPair.PrivateKey,
	})
	require.NoError(t, err)
	require.NotNil(t, client)

	// Verify defaults were applied
	assert.Equal(t, defaultPort, client.config.Port)
	assert.Equal(t, defaultDialTimeout, client.config.DialTimeout)
	assert.Equal(t, defaultMaxRetries, client.config.MaxRetries)
	assert.Equal(t, defaultRetryDelay, client.config.RetryDelay)
	assert.NotNil(t, client.config.HostKeyCallback)
}

func TestNewClient_Validation(t *testing.T) {
	t.Parallel()
	keyPair := generateTestKey(t)

	tests := []struct {
		name string
		cfg  *Config
	}{
		{"nil config", nil},
		{"missing host", &Config{User: "ubuntu", PrivateKey: keyPair.PrivateKey}},
		{"missing user", &Config{Host: "192.0.2.10", PrivateKey: keyPair.PrivateKey}},
		{"missing key", &Config{Host: "192.0.2.10", User: "ubuntu"}},
		{"invalid key", &Config{Host: "192.0.2.10", User: "ubuntu", PrivateKey: []byte("not a key")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client, err := NewClient(tt.cfg)
			require.Error(t, err)
			assert.Nil(t, client)
		})
	}
}

func TestNewClient_DoesNotMutateCaller(t *testing.T) {
	t.Parallel()
	keyPair := generateTestKey(t)

	cfg := &Config{
		Host:       "192.0.2.10",
		User:       "ubuntu",
		PrivateKey: keyPair.PrivateKey,
	}
	_, err := NewClient(cfg)
	require.NoError(t, err)

	assert.Zero(t, cfg.Port)
	assert.Zero(t, cfg.MaxRetries)
}

func TestExecute_ConnectFailure(t *testing.T) {
	t.Parallel()
	keyPair := generateTestKey(t)

	client, err := NewClient(&Config{
		// TEST-NET address; nothing listens there.
		Host:        "192.0.2.10",
		User:        "ubuntu",
		PrivateKey:  keyPair.PrivateKey,
		DialTimeout: 10 * time.Millisecond,
		MaxRetries:  1,
		RetryDelay:  time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = client.Execute(ctx, "true")
	require.Error(t, err)
	assert.True(t, IsConnectError(err), "expected connect error, got: %v", err)
	assert.False(t, IsCommandError(err))
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	connErr := &ConnectError{Addr: "192.0.2.10:22", Err: errors.New("refused")}
	assert.True(t, IsConnectError(connErr))
	assert.False(t, IsCommandError(connErr))
	assert.Contains(t, connErr.Error(), "192.0.2.10:22")

	cmdErr := &CommandError{Command: "false", Output: "boom", Err: errors.New("exit 1")}
	assert.True(t, IsCommandError(cmdErr))
	assert.False(t, IsConnectError(cmdErr))
	assert.Contains(t, cmdErr.Error(), "boom")

	assert.False(t, IsConnectError(nil))
	assert.False(t, IsCommandError(errors.New("plain")))
}
