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
	"github.com/zalando/go-keyring"
)

// KeyringService is the keyring service name SMTP passwords are stored under.
const KeyringService = "mailctl"

// ResolvePassword fills Mail.Password from the OS keyring when
// PasswordFromKeyring is set. The keyring entry is keyed by the SMTP username.
func (c *Config) ResolvePassword() error {
	if !c.Mail.PasswordFromKeyring {
		return nil
	}
	if c.Mail.Username == "" {
		return &Error{Field: "mail.username", Reason: "required when passwordFromKeyring is set"}
	}
	secret, err := keyring.Get(KeyringService, c.Mail.Username)
	if err != nil {
		return &Error{Field: "mail.password", Reason: "reading keyring entry for " + c.Mail.Username, Err: err}
	}
	c.Mail.Password = secret
	return nil
}

// StorePassword saves an SMTP password in the OS keyring for later use with
// passwordFromKeyring.
func StorePassword(username, password string) error {
	if username == "" {
		return &Error{Field: "mail.username", Reason: "required to store a keyring entry"}
	}
	if err := keyring.Set(KeyringService, username, password); err != nil {
		return &Error{Field: "mail.password", Reason: "writing keyring entry for " + username, Err: err}
	}
	return nil
}
