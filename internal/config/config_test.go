package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagProvider(t *testing.T) {
	provider := &FlagProvider{Value: "http://tracker.local:8080"}
	url, err := provider.ServerURL()
	require.NoError(t, err)
	assert.Equal(t, "http://tracker.local:8080", url)
}

func TestFlagProvider_Unset(t *testing.T) {
	provider := &FlagProvider{}
	url, err := provider.ServerURL()
	assert.Error(t, err)
	assert.Empty(t, url)
}

func TestEnvProvider(t *testing.T) {
	os.Setenv(EnvServerURL, "http://env.example:3000")
	defer os.Unsetenv(EnvServerURL)

	provider := &EnvProvider{}
	url, err := provider.ServerURL()
	require.NoError(t, err)
	assert.Equal(t, "http://env.example:3000", url)
}

func TestEnvProvider_Missing(t *testing.T) {
	os.Unsetenv(EnvServerURL)

	provider := &EnvProvider{}
	url, err := provider.ServerURL()
	assert.Error(t, err)
	assert.Empty(t, url)
	assert.Contains(t, err.Error(), EnvServerURL)
}

func TestResolveServerURL_FlagWins(t *testing.T) {
	os.Setenv(EnvServerURL, "http://env.example:3000")
	defer os.Unsetenv(EnvServerURL)

	url, err := ResolveServerURL("http://flagged.example")
	require.NoError(t, err)
	assert.Equal(t, "http://flagged.example", url)
}

func TestResolveServerURL_FallsBackToEnv(t *testing.T) {
	os.Setenv(EnvServerURL, "https://env.example")
	defer os.Unsetenv(EnvServerURL)

	url, err := ResolveServerURL("")
	require.NoError(t, err)
	assert.Equal(t, "https://env.example", url)
}

func TestResolveServerURL_Default(t *testing.T) {
	os.Unsetenv(EnvServerURL)

	url, err := ResolveServerURL("")
	require.NoError(t, err)
	assert.Equal(t, DefaultServerURL, url)
}

func TestResolveServerURL_TrimsTrailingSlash(t *testing.T) {
	url, err := ResolveServerURL("http://tracker.local/")
	require.NoError(t, err)
	assert.Equal(t, "http://tracker.local", url)
}

func TestResolveServerURL_RejectsInvalid(t *testing.T) {
	for _, bad := range []string{"not a url", "ftp://tracker.local", "tracker.local"} {
		_, err := ResolveServerURL(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}

func TestServerProvider_Interface(t *testing.T) {
	var _ ServerProvider = &FlagProvider{}
	var _ ServerProvider = &EnvProvider{}
}
