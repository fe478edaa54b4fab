package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDotenv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileEnvironment(t *testing.T) {
	path := writeDotenv(t, `# mail profile
EMAIL_FROM=noreply@example.com
USE_SMTP=true
EMAIL_HOST="smtp.example.com"
EMAIL_USERNAME=mailer
EMAIL_PASSWORD='p#ss word'
EMAIL_SECURITY=tls
`)

	env, err := FileEnvironment(path, nil)
	require.NoError(t, err)

	v, ok := env(EnvEmailHost)
	assert.True(t, ok)
	assert.Equal(t, "smtp.example.com", v)
	v, _ = env(EnvEmailPassword)
	assert.Equal(t, "p#ss word", v)
	_, ok = env(EnvEmailBcc)
	assert.False(t, ok)

	cfg, err := LoadEnvironment(env)
	require.NoError(t, err)
	assert.True(t, cfg.Mail.UseSMTP)
	assert.Equal(t, SecurityTLS, cfg.Mail.Security)
}

func TestFileEnvironment_BaseWins(t *testing.T) {
	path := writeDotenv(t, "EMAIL_FROM=file@example.com\nUSE_SMTP=false\n")
	base := MapEnvironment(map[string]string{EnvEmailFrom: "process@example.com"})

	env, err := FileEnvironment(path, base)
	require.NoError(t, err)

	v, _ := env(EnvEmailFrom)
	assert.Equal(t, "process@example.com", v)
	v, ok := env(EnvUseSMTP)
	assert.True(t, ok)
	assert.Equal(t, "false", v)
}

func TestFileEnvironment_MissingFile(t *testing.T) {
	_, err := FileEnvironment(filepath.Join(t.TempDir(), "absent.env"), nil)

	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "envFile", cfgErr.Field)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
