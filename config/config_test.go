package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseConfigDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "standard config",
			cfg: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				Username: "pkgidx",
				Password: "secret",
				Database: "package_index",
				SSLMode:  "require",
			},
			want: "host='localhost' port='5432' user='pkgidx' password='secret' dbname='package_index' sslmode='require'",
		},
		{
			name: "empty password",
			cfg: DatabaseConfig{
				Host:     "db.example.com",
				Port:     5433,
				Username: "admin",
				Password: "",
				Database: "projects",
				SSLMode:  "disable",
			},
			want: "host='db.example.com' port='5433' user='admin' password='' dbname='projects' sslmode='disable'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "filesystem", cfg.Storage.Type)
	assert.Equal(t, "uploads", cfg.Storage.UploadRoot)
	assert.Equal(t, "30s", cfg.Storage.S3.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PKGIDX_DATABASE_HOST", "db.internal")
	t.Setenv("PKGIDX_STORAGE_UPLOAD_ROOT", "/srv/uploads")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "/srv/uploads", cfg.Storage.UploadRoot)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(
		"database:\n  host: file-host\n  port: 6543\nstorage:\n  type: s3\n",
	)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-host", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "s3", cfg.Storage.Type)
	// Untouched keys keep their defaults.
	assert.Equal(t, "disable", cfg.Database.SSLMode)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
