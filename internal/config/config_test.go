package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/apimodel/internal/model"
	"github.com/roach88/apimodel/internal/validator"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "apimodel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault_MatchesValidatorPolicy(t *testing.T) {
	policy, err := Default().ValidatorPolicy()
	require.NoError(t, err)

	want := validator.DefaultPolicy()
	want.ScalarEvents = map[model.TypeName][]validator.JSONEvent{}
	assert.Equal(t, want, policy)
}

func TestConfig_LoadAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apimodel.yaml")

	cfg := Default()
	cfg.FailFast = true
	cfg.Routing = "rest-api-spec.yaml"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	path := writeFile(t, `
version: 1
json_events: false
policy:
  roots: ["_types:Root"]
  reuse_bases:
    "test:Base": "shared fields"
  scalar_events:
    "_types:Stringified": [string, number]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.False(t, cfg.JSONEvents)
	assert.Equal(t, []string{"_types:Root"}, cfg.Policy.Roots)
	assert.Equal(t, "_types:RequestBase", cfg.Policy.RequestBase)
	assert.Equal(t, "shared fields", cfg.Policy.ReuseBases["test:Base"])
	assert.Contains(t, cfg.Policy.ReuseBases, "_types:ResponseBase", "defaults are kept")

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.False(t, opts.JSONEvents)
	assert.Equal(t, []validator.JSONEvent{validator.EventString, validator.EventNumber},
		opts.Policy.ScalarEvents[model.TypeName{Namespace: "_types", Name: "Stringified"}])
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "version: 1\nunknown_key: true\n"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "unsupported version",
			mutate:  func(c *Config) { c.Version = 99 },
			wantErr: "unsupported config version",
		},
		{
			name:    "bad type name",
			mutate:  func(c *Config) { c.Policy.Roots = []string{"NoNamespace"} },
			wantErr: "policy.roots",
		},
		{
			name:    "bad event",
			mutate:  func(c *Config) { c.Policy.ScalarEvents = map[string][]string{"a:B": {"text"}} },
			wantErr: `unknown JSON event "text"`,
		},
		{
			name:    "empty namespace",
			mutate:  func(c *Config) { c.Policy.DisambiguatedNamespaces = map[string]string{"": "x"} },
			wantErr: "empty namespace",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		t.Setenv(EnvFailFast, "true")
		cfg := Default()
		require.NoError(t, cfg.ApplyEnv())
		assert.True(t, cfg.FailFast)
	})

	t.Run("disabled overrides file", func(t *testing.T) {
		t.Setenv(EnvFailFast, "0")
		cfg := Default()
		cfg.FailFast = true
		require.NoError(t, cfg.ApplyEnv())
		assert.False(t, cfg.FailFast)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Setenv(EnvFailFast, "sometimes")
		assert.Error(t, Default().ApplyEnv())
	})

	t.Run("unset", func(t *testing.T) {
		t.Setenv(EnvFailFast, "")
		cfg := Default()
		require.NoError(t, cfg.ApplyEnv())
		assert.False(t, cfg.FailFast)
	})
}
