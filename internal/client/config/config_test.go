package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, v map[string]any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	p := filepath.Join(t.TempDir(), "cli.json")
	require.NoError(t, os.WriteFile(p, b, 0o600))
	return p
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Empty(t, c.AccessToken)
}

func TestLoadConfig_ReturnsCommand(t *testing.T) {
	cfg, rest, err := LoadConfig([]string{"-a", "10.0.0.1:50051", "list-codes"})
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:50051", cfg.ServerEndpointAddr)
	assert.Equal(t, []string{"list-codes"}, rest)
}

func TestLoadConfig_Precedence(t *testing.T) {
	p := writeTempJSON(t, map[string]any{
		"server_endpoint_addr": "json:1",
		"access_token":         "json-token",
		"request_timeout":      "3s",
	})
	t.Setenv("CUSTODIAN_ACCESS_TOKEN", "env-token")
	t.Setenv("CUSTODIAN_REQUEST_TIMEOUT", "4s")

	cfg, rest, err := LoadConfig([]string{"-c", p, "-timeout", "5s", "revoke-code", "sc-1"})
	require.NoError(t, err)

	assert.Equal(t, "json:1", cfg.ServerEndpointAddr)
	assert.Equal(t, "env-token", cfg.AccessToken)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"revoke-code", "sc-1"}, rest)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, _, err := LoadConfig([]string{"-c", filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, err)

	t.Setenv("CUSTODIAN_REQUEST_TIMEOUT", "soon")
	_, _, err = LoadConfig(nil)
	assert.Error(t, err)
}

func TestLoadConfig_UnknownGlobalFlag(t *testing.T) {
	_, _, err := LoadConfig([]string{"-zzz", "list-codes"})
	assert.Error(t, err)
}
