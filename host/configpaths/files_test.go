package configpaths

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindUserConfig(t *testing.T) {
	t.Setenv(EnvConfig, "")

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"upload", "--config", "a.yaml"}, "a.yaml"},
		{[]string{"--config=b.toml", "play", "1"}, "b.toml"},
		{[]string{"play", "--config"}, ""},
		{nil, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FindUserConfig(tt.args), "%v", tt.args)
	}

	t.Setenv(EnvConfig, "env.json")
	assert.Equal(t, "env.json", FindUserConfig([]string{"play"}))
	assert.Equal(t, "flag.json", FindUserConfig([]string{"--config", "flag.json"}))
}

func TestConfigCandidatePaths(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses XDG_CONFIG_HOME")
	}
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	jsonPaths, yamlPaths, tomlPaths := ConfigCandidatePaths("mine.yml")
	require.NotEmpty(t, yamlPaths)
	assert.Equal(t, "mine.yml", yamlPaths[0])
	assert.Contains(t, jsonPaths, filepath.Join(xdg, appName, "config.json"))
	assert.Contains(t, tomlPaths, "/etc/scjingle/config.toml")

	jsonPaths, _, _ = ConfigCandidatePaths("noext")
	assert.Equal(t, "noext", jsonPaths[0])
}

func TestDefaultConfigDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses XDG_CONFIG_HOME")
	}
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	dir, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/xdg/scjingle", dir)

	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/u")
	dir, err = DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/home/u/.config/scjingle", dir)
}
