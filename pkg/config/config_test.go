package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bucketdav/bucketdav/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bucketdav.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
listen: 0.0.0.0:9999
auth:
  username: alice
  password: secret
storage:
  backend: minio
  bucket: media
  endpoint: minio.local:9000
  region: us-east-1
  access_key_id: AKIA123
  secret_access_key: shhh
  use_ssl: true
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9999", cfg.Listen)
	assert.Equal(t, "alice", cfg.Auth.Username)
	assert.Equal(t, "secret", cfg.Auth.Password)
	assert.Equal(t, "minio", cfg.Storage.Backend)
	assert.Equal(t, "media", cfg.Storage.Bucket)
	assert.Equal(t, "minio.local:9000", cfg.Storage.Endpoint)
	assert.Equal(t, "AKIA123", cfg.Storage.AccessKey)
	assert.Equal(t, "shhh", cfg.Storage.SecretKey)
	assert.True(t, cfg.Storage.UseSSL)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
auth:
  username: alice
  password: secret
storage:
  bucket: media
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Equal(t, "s3", cfg.Storage.Backend)
}

func TestLoad_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("BUCKETDAV_USERNAME", "envuser")
	t.Setenv("BUCKETDAV_PASSWORD", "envpass")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "envuser", cfg.Auth.Username)
	assert.Equal(t, "envpass", cfg.Auth.Password)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("BUCKETDAV_ACCESS_KEY_ID", "fromenv")

	path := writeConfig(t, `
auth:
  username: alice
  password: secret
storage:
  access_key_id: fromfile
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fromenv", cfg.Storage.AccessKey)
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "listen: [unclosed")
	_, err := config.Load(path)
	assert.Error(t, err)
}
