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
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

const (
	// DefaultConfigPath is used when Load is called without a path.
	DefaultConfigPath = "./config.yaml"
	// ConfigPathEnv overrides DefaultConfigPath.
	ConfigPathEnv = "MAILCOMPOSER_CONFIG_PATH"

	DefaultSendmailPath = "/usr/sbin/sendmail"

	SecurityNone = ""
	SecuritySSL  = "ssl"
	SecurityTLS  = "tls"
)

// DefaultTemplateTempDir is the template scratch directory used when none is configured.
var DefaultTemplateTempDir = filepath.Join(os.TempDir(), "mailcomposer-templates")

// Mail holds the sender defaults and the transport profile.
type Mail struct {
	// SenderAddress is the default From address of every composed message.
	SenderAddress string `yaml:"senderAddress"`
	// Bcc is appended to every message whose caller does not pass its own list.
	Bcc []string `yaml:"bcc"`

	// UseSMTP selects the SMTP transport. When false the local sendmail binary is used.
	UseSMTP  bool   `yaml:"useSMTP"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// Security is "ssl" (implicit TLS), "tls" (STARTTLS) or empty.
	Security string `yaml:"security"`
	// PasswordFromKeyring makes ResolvePassword read the password from the OS keyring.
	PasswordFromKeyring bool `yaml:"passwordFromKeyring"`
	InsecureSkipVerify  bool `yaml:"insecureSkipVerify"`

	SendmailPath string `yaml:"sendmailPath"`
}

type Templates struct {
	// Dir is prepended to relative template names given to the CLI.
	Dir string `yaml:"dir"`
	// TempDir is the scratch directory handed to the template engine.
	TempDir string `yaml:"tempDir"`
}

// Framework describes the document root layout used when the composer is
// embedded in a web application.
type Framework struct {
	DocumentRoot string `yaml:"documentRoot"`
	BaseURL      string `yaml:"baseURL"`
}

type Config struct {
	Mail      Mail      `yaml:"mail"`
	Templates Templates `yaml:"templates"`
	Framework Framework `yaml:"framework"`
}

// Load loads the configuration from a file path.
// If configPath is empty, defaults to "./config.yaml".
// The config file path can also be overridden via the MAILCOMPOSER_CONFIG_PATH environment variable.
func Load(configPath ...string) (Config, error) {
	var path string

	if len(configPath) > 0 && configPath[0] != "" {
		path = configPath[0]
	} else if envPath, ok := os.LookupEnv(ConfigPathEnv); ok && envPath != "" {
		path = envPath
	} else {
		path = DefaultConfigPath
	}

	var config Config

	content, err := os.ReadFile(path)
	if err != nil {
		return config, &Error{Field: "file", Reason: fmt.Sprintf("trying to open config file %s", path), Err: err}
	}

	if err := yaml.Unmarshal(content, &config); err != nil {
		return config, &Error{Field: "file", Reason: fmt.Sprintf("unmarshaling YAML %s", path), Err: err}
	}
	config.Defaults()
	return config, config.Validate()
}

// Defaults fills in values that have a sensible fallback.
func (c *Config) Defaults() {
	c.Mail.Security = strings.ToLower(strings.TrimSpace(c.Mail.Security))
	if c.Mail.SendmailPath == "" {
		c.Mail.SendmailPath = DefaultSendmailPath
	}
	if c.Templates.TempDir == "" {
		c.Templates.TempDir = DefaultTemplateTempDir
	}
}

// Validate checks the fields that have a closed set of meaningful values.
// Addresses and credentials are accepted as given.
func (c *Config) Validate() error {
	switch c.Mail.Security {
	case SecurityNone, SecuritySSL, SecurityTLS:
	default:
		return &Error{Field: "mail.security", Reason: fmt.Sprintf("unsupported value %q, expected ssl, tls or empty", c.Mail.Security)}
	}
	if c.Mail.Port < 0 || c.Mail.Port > 65535 {
		return &Error{Field: "mail.port", Reason: fmt.Sprintf("port %d out of range", c.Mail.Port)}
	}
	if c.Mail.PasswordFromKeyring && c.Mail.Username == "" {
		return &Error{Field: "mail.username", Reason: "required when passwordFromKeyring is set"}
	}
	return nil
}

// TemplatePath joins a relative template name onto Templates.Dir.
func (c Config) TemplatePath(name string) string {
	if filepath.IsAbs(name) || c.Templates.Dir == "" {
		return name
	}
	return filepath.Join(c.Templates.Dir, name)
}
