/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variable names of the ambient profile.
const (
	EnvEmailFrom     = "EMAIL_FROM"
	EnvEmailBcc      = "EMAIL_BCC"
	EnvUseSMTP       = "USE_SMTP"
	EnvEmailHost     = "EMAIL_HOST"
	EnvEmailPort     = "EMAIL_PORT"
	EnvEmailUsername = "EMAIL_USERNAME"
	EnvEmailPassword = "EMAIL_PASSWORD"
	EnvEmailSecurity = "EMAIL_SECURITY"
	EnvSendmailPath  = "SENDMAIL_PATH"
	EnvDocumentRoot  = "DOCUMENT_ROOT"
	EnvBaseURL       = "BASE_URL"
)

// Environment looks up a named value of the ambient configuration.
// os.LookupEnv satisfies it.
type Environment func(key string) (string, bool)

// OSEnvironment reads the process environment.
func OSEnvironment() Environment {
	return os.LookupEnv
}

// MapEnvironment serves lookups from a fixed map.
func MapEnvironment(values map[string]string) Environment {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

// LoadTransport reads the transport part of the ambient profile: USE_SMTP, the
// host, credentials and security mode. The SMTP variables are required only
// when SMTP is enabled, otherwise they are kept when defined. An empty value is
// accepted.
func LoadTransport(env Environment) (Mail, error) {
	var m Mail
	if env == nil {
		return m, &Error{Field: "environment", Reason: "ambient configuration was not initialized"}
	}

	raw, err := requireEnv(env, EnvUseSMTP)
	if err != nil {
		return m, err
	}
	useSMTP, err := parseBool(EnvUseSMTP, raw)
	if err != nil {
		return m, err
	}
	m.UseSMTP = useSMTP

	if v, ok := env(EnvSendmailPath); ok {
		m.SendmailPath = v
	}
	for _, field := range []struct {
		key string
		dst *string
	}{
		{EnvEmailHost, &m.Host},
		{EnvEmailUsername, &m.Username},
		{EnvEmailPassword, &m.Password},
		{EnvEmailSecurity, &m.Security},
	} {
		if !m.UseSMTP {
			*field.dst = getEnvString(env, field.key, "")
			continue
		}
		v, err := requireEnv(env, field.key)
		if err != nil {
			return m, err
		}
		*field.dst = v
	}
	m.Security = strings.ToLower(strings.TrimSpace(m.Security))

	if v, ok := env(EnvEmailPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return m, &Error{Field: EnvEmailPort, Reason: "not a number", Err: err}
		}
		m.Port = port
	}
	return m, nil
}

// LoadEnvironment builds a complete Config from the ambient profile.
// EMAIL_FROM is required, EMAIL_BCC is an optional comma separated list.
func LoadEnvironment(env Environment) (Config, error) {
	var cfg Config

	transport, err := LoadTransport(env)
	if err != nil {
		return cfg, err
	}
	cfg.Mail = transport

	from, err := requireEnv(env, EnvEmailFrom)
	if err != nil {
		return cfg, err
	}
	cfg.Mail.SenderAddress = from
	if v, ok := env(EnvEmailBcc); ok {
		cfg.Mail.Bcc = splitList(v)
	}

	if v, ok := env(EnvDocumentRoot); ok {
		cfg.Framework.DocumentRoot = v
	}
	if v, ok := env(EnvBaseURL); ok {
		cfg.Framework.BaseURL = v
	}

	cfg.Defaults()
	return cfg, cfg.Validate()
}

// Overlay replaces the fields of c with those defined in env. It is used when
// a config file is combined with the ambient profile; unlike LoadEnvironment
// nothing is required.
func (c *Config) Overlay(env Environment) error {
	if env == nil {
		return nil
	}
	c.Mail.SenderAddress = getEnvString(env, EnvEmailFrom, c.Mail.SenderAddress)
	if v, ok := env(EnvEmailBcc); ok {
		c.Mail.Bcc = splitList(v)
	}
	if v, ok := env(EnvUseSMTP); ok {
		useSMTP, err := parseBool(EnvUseSMTP, v)
		if err != nil {
			return err
		}
		c.Mail.UseSMTP = useSMTP
	}
	c.Mail.Host = getEnvString(env, EnvEmailHost, c.Mail.Host)
	c.Mail.Username = getEnvString(env, EnvEmailUsername, c.Mail.Username)
	c.Mail.Password = getEnvString(env, EnvEmailPassword, c.Mail.Password)
	c.Mail.Security = getEnvString(env, EnvEmailSecurity, c.Mail.Security)
	c.Mail.SendmailPath = getEnvString(env, EnvSendmailPath, c.Mail.SendmailPath)
	if v, ok := env(EnvEmailPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return &Error{Field: EnvEmailPort, Reason: "not a number", Err: err}
		}
		c.Mail.Port = port
	}
	c.Framework.DocumentRoot = getEnvString(env, EnvDocumentRoot, c.Framework.DocumentRoot)
	c.Framework.BaseURL = getEnvString(env, EnvBaseURL, c.Framework.BaseURL)

	c.Defaults()
	return c.Validate()
}

func requireEnv(env Environment, key string) (string, error) {
	v, ok := env(key)
	if !ok {
		return "", &Error{Field: key, Reason: "not defined in the ambient configuration"}
	}
	return v, nil
}

// getEnvString returns the value of key, or the provided default if not set.
func getEnvString(env Environment, key, defaultVal string) string {
	if val, ok := env(key); ok {
		return val
	}
	return defaultVal
}

// parseBool accepts "true", "1", "yes" and "false", "0", "no" plus the empty
// string, which counts as false.
func parseBool(key, val string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no", "":
		return false, nil
	}
	return false, &Error{Field: key, Reason: fmt.Sprintf("invalid boolean %q", val)}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
