package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
[mainConfig]
appName = "chatroom"
host = "127.0.0.1"
port = 8000
storage = "memory"

[jwtConfig]
secret = "from-file"

[notifyConfig]
mode = "http"
baseURL = "http://127.0.0.1:9000/wsServer/notify"

[roomConfig]
maxAdminRooms = 3
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	return path
}

func TestLoadFileAppliesDefaults(t *testing.T) {
	cfg, err := LoadFile(writeSample(t))
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.MainConfig.Storage)
	assert.Equal(t, "dev", cfg.MainConfig.Mode)
	assert.Equal(t, "http", cfg.NotifyConfig.Mode)
	assert.Equal(t, 5, cfg.NotifyConfig.Timeout)
	assert.Equal(t, 3, cfg.RoomConfig.MaxAdminRooms)
	assert.Equal(t, "admin", cfg.RoomConfig.SystemAccount)
	assert.Equal(t, 15, cfg.JWTConfig.AccessTokenExpiry)
}

func TestLoadFileEnvOverride(t *testing.T) {
	t.Setenv("CHATROOM_JWT_SECRET", "from-env")
	t.Setenv("CHATROOM_PORT", "9100")

	cfg, err := LoadFile(writeSample(t))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWTConfig.Secret)
	assert.Equal(t, 9100, cfg.MainConfig.Port)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
