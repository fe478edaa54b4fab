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
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/easymvc/mailcomposer/pkg/mail"
)

type sendOptions struct {
	to          []string
	cc          []string
	bcc         []string
	noBcc       bool
	attachments []string
	sender      string
	subject     string
	body        string
	bodyFile    string
	html        bool
	template    string
	dataFile    string
}

func NewSendCommand() *cobra.Command {
	opts := &sendOptions{}

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Compose one message and hand it to the configured transport",
		Example: `  mailctl send --to ann@example.com --subject Hello --body "Hi Ann"
  mailctl send --to ann@example.com --subject Welcome --template welcome.tpl --data ann.yaml
  mailctl --from-env send --to ann@example.com --subject Report --body-file report.txt --attach report.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			defer func() {
				if werr := rt.WriteMetrics(); err == nil {
					err = werr
				}
			}()
			return runSend(rt, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.to, "to", nil, "Recipient address (repeatable)")
	cmd.Flags().StringArrayVar(&opts.cc, "cc", nil, "CC address (repeatable)")
	cmd.Flags().StringArrayVar(&opts.bcc, "bcc", nil, "BCC address, replaces the configured default BCC (repeatable)")
	cmd.Flags().BoolVar(&opts.noBcc, "no-bcc", false, "Send without the configured default BCC")
	cmd.Flags().StringArrayVar(&opts.attachments, "attach", nil, "File to attach (repeatable)")
	cmd.Flags().StringVar(&opts.sender, "sender", "", "Sender address, overrides mail.senderAddress")
	cmd.Flags().StringVarP(&opts.subject, "subject", "s", "", "Subject")
	cmd.Flags().StringVar(&opts.body, "body", "", "Message body")
	cmd.Flags().StringVar(&opts.bodyFile, "body-file", "", "Read the message body from a file")
	cmd.Flags().BoolVar(&opts.html, "html", false, "Send the body as HTML")
	cmd.Flags().StringVar(&opts.template, "template", "", "Render the HTML body from this template")
	cmd.Flags().StringVar(&opts.dataFile, "data", "", "YAML file with template data")
	_ = cmd.MarkFlagRequired("to")
	cmd.MarkFlagsMutuallyExclusive("body", "body-file", "template")
	cmd.MarkFlagsMutuallyExclusive("bcc", "no-bcc")

	return cmd
}

func runSend(rt *runtimeState, opts *sendOptions) error {
	composer, err := rt.NewComposer()
	if err != nil {
		return err
	}
	if opts.sender != "" {
		composer.SetSender(opts.sender)
	}

	body, html, err := resolveBody(rt, composer, opts)
	if err != nil {
		return err
	}

	var msgOpts []mail.MessageOption
	if len(opts.cc) > 0 {
		msgOpts = append(msgOpts, mail.WithCc(opts.cc...))
	}
	switch {
	case opts.noBcc:
		msgOpts = append(msgOpts, mail.WithBcc())
	case len(opts.bcc) > 0:
		msgOpts = append(msgOpts, mail.WithBcc(opts.bcc...))
	}
	if len(opts.attachments) > 0 {
		msgOpts = append(msgOpts, mail.WithAttachments(opts.attachments...))
	}

	if html {
		composer.SetHTMLMessage(opts.to, opts.subject, body, msgOpts...)
	} else {
		composer.SetTextMessage(opts.to, opts.subject, body, msgOpts...)
	}

	if err := composer.Send(); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}

	m := composer.Message()
	_, _ = fmt.Fprintf(rt.Writer(), "Mail sent to %d recipient(s) via %s\n", len(m.To)+len(m.Cc)+len(m.Bcc), transportName(composer))
	return nil
}

// resolveBody returns the message body and whether it is HTML.
func resolveBody(rt *runtimeState, composer *mail.Composer, opts *sendOptions) (string, bool, error) {
	if opts.dataFile != "" && opts.template == "" {
		return "", false, errors.New("--data requires --template")
	}
	switch {
	case opts.template != "":
		data, err := loadTemplateData(opts.dataFile)
		if err != nil {
			return "", false, err
		}
		body, err := composer.RenderHTML(rt.TemplatePath(opts.template), data, rt.cfg.Templates.TempDir)
		if err != nil {
			return "", false, err
		}
		return body, true, nil
	case opts.bodyFile != "":
		content, err := os.ReadFile(opts.bodyFile)
		if err != nil {
			return "", false, fmt.Errorf("reading body file: %w", err)
		}
		return string(content), opts.html, nil
	default:
		return opts.body, opts.html, nil
	}
}

// loadTemplateData reads a YAML mapping used as template data. An empty path
// yields no data.
func loadTemplateData(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template data: %w", err)
	}
	data := map[string]any{}
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("unmarshaling template data %s: %w", path, err)
	}
	return data, nil
}

func transportName(c *mail.Composer) string {
	if c.TransportConfig().UseSMTP {
		return mail.TransportSMTP
	}
	return mail.TransportSendmail
}
