package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir resets viper and runs the test from an empty directory so no
// stray config file is picked up.
func inTempDir(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	tmpDir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() {
		_ = os.Chdir(oldWd)
	})
	return tmpDir
}

func TestLoadConfigDefaults(t *testing.T) {
	inTempDir(t)

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "console", config.Format)
	assert.Empty(t, config.Output)
	assert.Empty(t, config.CatalogDir)
	assert.Equal(t, 2, config.Decimals)
	assert.False(t, config.FollowSymlinks)
	assert.False(t, config.Quiet)
	assert.False(t, config.Verbose)
	assert.False(t, config.NoCelebration)
}

func TestLoadConfigFiles(t *testing.T) {
	tests := []struct {
		file    string
		content string
	}{
		{".moyennerc.json", `{"format": "json", "catalogDir": "programs", "decimals": 3, "noCelebration": true}`},
		{".moyennerc.yaml", "format: json\ncatalogDir: programs\ndecimals: 3\nnoCelebration: true\n"},
		{".moyennerc.yml", "format: json\ncatalogDir: programs\ndecimals: 3\nnoCelebration: true\n"},
		{".moyennerc.toml", "format = \"json\"\ncatalogDir = \"programs\"\ndecimals = 3\nnoCelebration = true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			dir := inTempDir(t)
			require.NoError(t, os.WriteFile(filepath.Join(dir, tt.file), []byte(tt.content), 0o644))

			config, err := LoadConfig("")
			require.NoError(t, err)
			assert.Equal(t, "json", config.Format)
			assert.Equal(t, "programs", config.CatalogDir)
			assert.Equal(t, 3, config.Decimals)
			assert.True(t, config.NoCelebration)
		})
	}
}

func TestLoadConfigFilePriority(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".moyennerc.json"), []byte(`{"catalogDir": "from-json"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".moyennerc.yaml"), []byte("catalogDir: from-yaml\n"), 0o644))

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "from-json", config.CatalogDir)
}

func TestLoadConfigExplicitFile(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("quiet: true\n"), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, config.Quiet)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigEnvironmentVariables(t *testing.T) {
	inTempDir(t)
	t.Setenv("MOYENNE_FORMAT", "markdown")
	t.Setenv("MOYENNE_OUTPUT", "report.md")
	t.Setenv("MOYENNE_VERBOSE", "true")
	t.Setenv("MOYENNE_DECIMALS", "1")

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "markdown", config.Format)
	assert.Equal(t, "report.md", config.Output)
	assert.True(t, config.Verbose)
	assert.Equal(t, 1, config.Decimals)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{"console", Config{Format: "console", Decimals: 2}, ""},
		{"json to stdout", Config{Format: "json", Decimals: 2}, ""},
		{"html with output", Config{Format: "html", Output: "r.html"}, ""},
		{"invalid format", Config{Format: "xml"}, "invalid format: xml"},
		{"markdown without output", Config{Format: "markdown"}, "output file is required"},
		{"html without output", Config{Format: "html"}, "output file is required"},
		{"too many decimals", Config{Format: "console", Decimals: 7}, "decimals must be between 0 and 4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfig(&tt.config)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
