package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{
			name: "hcl",
			file: "/proj/.liquidscope.hcl",
			body: `
workspace        = env.TEMPLATES
shared_parts_dir = "shared"

cache {
  size = 8
}

chain {
  max_files = 16
}

log {
  level = "debug"
  color = true
}
`,
		},
		{
			name: "yaml",
			file: "/proj/.liquidscope.yaml",
			body: `
workspace: /templates
shared_parts_dir: shared
cache:
  size: 8
chain:
  max_files: 16
log:
  level: debug
  color: true
`,
		},
		{
			name: "toml",
			file: "/proj/.liquidscope.toml",
			body: `
workspace = "/templates"
shared_parts_dir = "shared"

[cache]
size = 8

[chain]
max_files = 16

[log]
level = "debug"
color = true
`,
		},
	}

	want := &Config{
		Workspace:      "/templates",
		SharedPartsDir: "shared",
		Cache:          &CacheConfig{Size: 8},
		Chain:          &ChainConfig{MaxFiles: 16},
		Log:            &LogConfig{Level: "debug", Color: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := memFs(t, map[string]string{tt.file: tt.body})
			cfg, err := Load(fs, tt.file, Env{"TEMPLATES": "/templates"})
			require.NoError(t, err)
			assert.Equal(t, want, cfg)
		})
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	tests := []struct {
		file string
		body string
	}{
		{file: "/p/c.yaml", body: "workspace: /w\nbogus: 1\n"},
		{file: "/p/c.toml", body: "workspace = \"/w\"\nbogus = 1\n"},
		{file: "/p/c.hcl", body: "workspace = \"/w\"\nbogus = 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			fs := memFs(t, map[string]string{tt.file: tt.body})
			_, err := Load(fs, tt.file, nil)
			assert.Error(t, err)
		})
	}
}

func TestLoadUnknownFormat(t *testing.T) {
	fs := memFs(t, map[string]string{"/p/c.json": "{}"})
	_, err := Load(fs, "/p/c.json", nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestRelativeWorkspaceFollowsConfigFile(t *testing.T) {
	fs := memFs(t, map[string]string{"/proj/.liquidscope.yml": "workspace: templates\n"})
	cfg, err := Load(fs, "/proj/.liquidscope.yml", nil)
	require.NoError(t, err)
	assert.Equal(t, "/proj/templates", cfg.Workspace)
}

func TestDiscoverOrder(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/proj/.liquidscope.toml": "",
		"/proj/.liquidscope.yaml": "",
	})
	p, ok := Discover(fs, "/proj")
	require.True(t, ok)
	assert.Equal(t, "/proj/.liquidscope.yaml", p)

	_, ok = Discover(fs, "/elsewhere")
	assert.False(t, ok)
}

func TestResolveDefaults(t *testing.T) {
	cfg, err := Resolve(afero.NewMemMapFs(), "", "/proj", Env{})
	require.NoError(t, err)
	assert.Equal(t, "/proj", cfg.Workspace)
	assert.Equal(t, DefaultSharedPartsDir, cfg.SharedPartsDir)
	assert.Equal(t, DefaultCacheSize, cfg.Cache.Size)
	assert.Equal(t, DefaultMaxFiles, cfg.Chain.MaxFiles)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
}

func TestResolveEnvOverridesFile(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/proj/.liquidscope.yaml": "workspace: /from-file\ncache:\n  size: 4\n",
	})
	cfg, err := Resolve(fs, "", "/proj", Env{
		EnvWorkspace: "/from-env",
		EnvLogLevel:  "WARN",
		EnvCacheSize: "32",
	})
	require.NoError(t, err)
	assert.Equal(t, "/from-env", cfg.Workspace)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 32, cfg.Cache.Size)

	_, err = Resolve(fs, "", "/proj", Env{EnvCacheSize: "lots"})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestResolveExplicitPathWins(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/proj/.liquidscope.yaml": "workspace: /discovered\n",
		"/etc/liquidscope.toml":   "workspace = \"/explicit\"\n",
	})
	cfg, err := Resolve(fs, "/etc/liquidscope.toml", "/proj", Env{})
	require.NoError(t, err)
	assert.Equal(t, "/explicit", cfg.Workspace)
}

func TestValidateReportsEveryField(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/proj/.liquidscope.yaml": "cache:\n  size: -1\nchain:\n  max_files: -2\nlog:\n  level: loud\n",
	})
	_, err := Resolve(fs, "", "/proj", Env{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "cache.size")
	assert.Contains(t, err.Error(), "chain.max_files")
	assert.Contains(t, err.Error(), "log.level")
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("LIQUIDSCOPE_TEST_SHADOWED", "process")
	fs := memFs(t, map[string]string{
		"/proj/.env": "LIQUIDSCOPE_TEST_DOTENV=dotenv\nLIQUIDSCOPE_TEST_SHADOWED=dotenv\n",
	})

	env, err := LoadEnv(fs, "/proj")
	require.NoError(t, err)
	assert.Equal(t, "dotenv", env["LIQUIDSCOPE_TEST_DOTENV"])
	assert.Equal(t, "process", env["LIQUIDSCOPE_TEST_SHADOWED"])

	_, err = LoadEnv(fs, "/no-dotenv")
	assert.NoError(t, err)
}
