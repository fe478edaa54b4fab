package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestResolvePassword(t *testing.T) {
	keyring.MockInit()

	t.Run("disabled leaves password untouched", func(t *testing.T) {
		cfg := Config{Mail: Mail{Username: "mailer", Password: "inline"}}
		require.NoError(t, cfg.ResolvePassword())
		assert.Equal(t, "inline", cfg.Mail.Password)
	})

	t.Run("reads stored password", func(t *testing.T) {
		require.NoError(t, StorePassword("mailer", "from-keyring"))
		cfg := Config{Mail: Mail{Username: "mailer", PasswordFromKeyring: true}}
		require.NoError(t, cfg.ResolvePassword())
		assert.Equal(t, "from-keyring", cfg.Mail.Password)
	})

	t.Run("missing entry", func(t *testing.T) {
		cfg := Config{Mail: Mail{Username: "nobody", PasswordFromKeyring: true}}
		err := cfg.ResolvePassword()
		var cfgErr *Error
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "mail.password", cfgErr.Field)
		assert.ErrorIs(t, err, keyring.ErrNotFound)
	})

	t.Run("username required", func(t *testing.T) {
		cfg := Config{Mail: Mail{PasswordFromKeyring: true}}
		assert.Error(t, cfg.ResolvePassword())
		assert.Error(t, StorePassword("", "x"))
	})
}
