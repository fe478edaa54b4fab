package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easymvc/mailcomposer/pkg/config"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name           string
		configContent  string
		path           string
		expectedHost   string
		expectedBcc    []string
		expectedSec    string
		expectSMTP     bool
		expectError    bool
		expectErrField string
	}{
		{
			name: "smtp profile",
			configContent: `
mail:
  senderAddress: "noreply@example.com"
  bcc: ["archive@example.com", "audit@example.com"]
  useSMTP: true
  host: "smtp.example.com"
  port: 465
  username: "mailer"
  password: "secret"
  security: "SSL"
templates:
  dir: "/srv/templates"
`,
			expectedHost: "smtp.example.com",
			expectedBcc:  []string{"archive@example.com", "audit@example.com"},
			expectedSec:  config.SecuritySSL,
			expectSMTP:   true,
		},
		{
			name: "sendmail profile",
			configContent: `
mail:
  senderAddress: "noreply@example.com"
  useSMTP: false
`,
			expectedSec: config.SecurityNone,
		},
		{
			name: "unsupported security",
			configContent: `
mail:
  security: "starttls-please"
`,
			expectError:    true,
			expectErrField: "mail.security",
		},
		{
			name: "port out of range",
			configContent: `
mail:
  port: 70000
`,
			expectError:    true,
			expectErrField: "mail.port",
		},
		{
			name:           "invalid YAML",
			configContent:  `invalid: yaml: content [`,
			expectError:    true,
			expectErrField: "file",
		},
		{
			name:           "file not found",
			path:           "/nonexistent/path/config.yaml",
			expectError:    true,
			expectErrField: "file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := tt.path
			if tt.configContent != "" {
				configPath = filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(configPath, []byte(tt.configContent), 0o600))
			}

			cfg, err := config.Load(configPath)
			if tt.expectError {
				require.Error(t, err)
				var cfgErr *config.Error
				require.True(t, errors.As(err, &cfgErr), "expected *config.Error, got %T", err)
				assert.Equal(t, tt.expectErrField, cfgErr.Field)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.expectedHost, cfg.Mail.Host)
			assert.Equal(t, tt.expectedBcc, cfg.Mail.Bcc)
			assert.Equal(t, tt.expectedSec, cfg.Mail.Security)
			assert.Equal(t, tt.expectSMTP, cfg.Mail.UseSMTP)
			assert.Equal(t, config.DefaultSendmailPath, cfg.Mail.SendmailPath)
			assert.NotEmpty(t, cfg.Templates.TempDir)
		})
	}
}

func TestLoad_PathFromEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mail:\n  senderAddress: env@example.com\n"), 0o600))
	t.Setenv(config.ConfigPathEnv, path)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "env@example.com", cfg.Mail.SenderAddress)
}

func TestConfig_TemplatePath(t *testing.T) {
	cfg := config.Config{Templates: config.Templates{Dir: "/srv/templates"}}
	assert.Equal(t, filepath.Join("/srv/templates", "welcome.tpl"), cfg.TemplatePath("welcome.tpl"))
	assert.Equal(t, "/abs/welcome.tpl", cfg.TemplatePath("/abs/welcome.tpl"))
	assert.Equal(t, "welcome.tpl", config.Config{}.TemplatePath("welcome.tpl"))
}

func TestError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &config.Error{Field: "mail.password", Reason: "reading keyring", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "config mail.password: reading keyring: boom", err.Error())
	assert.Equal(t, "config EMAIL_HOST: missing", (&config.Error{Field: "EMAIL_HOST", Reason: "missing"}).Error())
}
