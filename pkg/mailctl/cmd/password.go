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

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/easymvc/mailcomposer/pkg/config"
)

func NewPasswordCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Manage the SMTP password stored in the OS keyring",
	}
	cmd.AddCommand(newPasswordSetCommand())
	return cmd
}

func newPasswordSetCommand() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Read the SMTP password from stdin and store it in the keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if username == "" {
				username = rt.cfg.Mail.Username
			}
			password, err := readSecret(rt.reader)
			if err != nil {
				return err
			}
			if err := config.StorePassword(username, password); err != nil {
				return err
			}
			rt.Logger().Infow("Stored SMTP password in keyring", "service", config.KeyringService, "user", username)
			_, _ = fmt.Fprintf(rt.Writer(), "Password for %s stored in keyring service %q\n", username, config.KeyringService)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "SMTP username, overrides mail.username")

	return cmd
}

// readSecret returns the first line of r without its line ending.
func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	secret := strings.TrimRight(line, "\r\n")
	if secret == "" {
		return "", errors.New("empty password on stdin")
	}
	return secret, nil
}
