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

package mail

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/easymvc/mailcomposer/pkg/config"
	"github.com/easymvc/mailcomposer/pkg/metrics"
	"github.com/easymvc/mailcomposer/pkg/system"
)

// TransportFactory builds a transport for a single send.
type TransportFactory func(cfg TransportConfig) Transport

// Composer assembles one outgoing email and dispatches it. It is meant to be
// used by a single caller: configure, populate, then Send.
type Composer struct {
	sender     string
	defaultBcc []string
	transport  TransportConfig
	message    *Message
	renderer   Renderer
	framework  config.Framework
	newSMTP    TransportFactory
	newLocal   TransportFactory
	log        *zap.SugaredLogger
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithDefaultSender sets the sender used until SetSender is called.
func WithDefaultSender(address string) ComposerOption {
	return func(c *Composer) {
		c.sender = address
	}
}

// WithDefaultBcc sets the BCC list used when a message is populated without WithBcc.
func WithDefaultBcc(addresses ...string) ComposerOption {
	return func(c *Composer) {
		c.defaultBcc = cloneStrings(addresses)
	}
}

func WithLogger(log *zap.SugaredLogger) ComposerOption {
	return func(c *Composer) {
		if log != nil {
			c.log = log
		}
	}
}

func WithRenderer(r Renderer) ComposerOption {
	return func(c *Composer) {
		c.renderer = r
	}
}

// WithFramework sets the document root layout used by RenderFrameworkHTML.
func WithFramework(fw config.Framework) ComposerOption {
	return func(c *Composer) {
		c.framework = fw
	}
}

// WithSMTPTransportFactory replaces the constructor of the SMTP transport.
func WithSMTPTransportFactory(f TransportFactory) ComposerOption {
	return func(c *Composer) {
		c.newSMTP = f
	}
}

// WithLocalTransportFactory replaces the constructor of the sendmail transport.
func WithLocalTransportFactory(f TransportFactory) ComposerOption {
	return func(c *Composer) {
		c.newLocal = f
	}
}

// NewComposer returns an empty Composer.
func NewComposer(opts ...ComposerOption) *Composer {
	c := &Composer{
		message: &Message{ContentType: ContentTypePlain},
		newSMTP: func(cfg TransportConfig) Transport {
			return NewSMTPTransport(cfg)
		},
		newLocal: func(cfg TransportConfig) Transport {
			return NewSendmailTransport(cfg.SendmailPath)
		},
		log: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.renderer == nil {
		c.renderer = NewTemplateEngine(c.log)
	}
	c.log = c.log.Named("mail")
	return c
}

// NewComposerFromConfig returns a Composer whose default sender, default BCC,
// transport profile and framework layout come from cfg. Options are applied
// after the configuration and may override it.
func NewComposerFromConfig(cfg config.Config, opts ...ComposerOption) *Composer {
	base := []ComposerOption{
		WithDefaultSender(cfg.Mail.SenderAddress),
		WithDefaultBcc(cfg.Mail.Bcc...),
		WithFramework(cfg.Framework),
	}
	c := NewComposer(append(base, opts...)...)
	c.Configure(TransportConfigFrom(cfg.Mail))
	return c
}

// Configure stores the transport profile as given.
func (c *Composer) Configure(cfg TransportConfig) {
	c.transport = cfg
	c.log.Debugw("Transport configured",
		"useSMTP", cfg.UseSMTP,
		"host", cfg.Host,
		"port", cfg.Port,
		"user", cfg.Username,
		"security", cfg.Security)
}

// ConfigureFromEnvironment stores the transport profile read from the
// ambient configuration. An uninitialized profile yields a *config.Error and
// leaves the current profile untouched.
func (c *Composer) ConfigureFromEnvironment(env config.Environment) error {
	m, err := config.LoadTransport(env)
	if err != nil {
		c.log.Warnw("Ambient mail configuration unusable", "error", err)
		return err
	}
	if m.SendmailPath == "" {
		m.SendmailPath = c.transport.SendmailPath
	}
	c.Configure(TransportConfigFrom(m))
	return nil
}

// SetSender overwrites the sender address.
func (c *Composer) SetSender(address string) {
	c.sender = address
}

// MessageOption adds optional parts to a message.
type MessageOption func(*messageParts)

type messageParts struct {
	cc          []string
	bcc         []string
	bccSet      bool
	attachments []string
}

func WithCc(addresses ...string) MessageOption {
	return func(p *messageParts) {
		p.cc = append(p.cc, addresses...)
	}
}

// WithBcc replaces the default BCC list. WithBcc() with no addresses sends
// without BCC.
func WithBcc(addresses ...string) MessageOption {
	return func(p *messageParts) {
		p.bcc = append(p.bcc, addresses...)
		p.bccSet = true
	}
}

// WithAttachments attaches the files at the given paths.
func WithAttachments(paths ...string) MessageOption {
	return func(p *messageParts) {
		p.attachments = append(p.attachments, paths...)
	}
}

// SetTextMessage populates a plain-text message. Recipients and attachments
// are appended to those of earlier calls; sender, subject and body are
// overwritten.
func (c *Composer) SetTextMessage(to []string, subject, body string, opts ...MessageOption) {
	c.populate(ContentTypePlain, to, subject, body, opts)
}

// SetHTMLMessage is SetTextMessage with the body stored as HTML.
func (c *Composer) SetHTMLMessage(to []string, subject, body string, opts ...MessageOption) {
	c.populate(ContentTypeHTML, to, subject, body, opts)
}

func (c *Composer) populate(contentType string, to []string, subject, body string, opts []MessageOption) {
	parts := messageParts{}
	for _, opt := range opts {
		opt(&parts)
	}
	bcc := parts.bcc
	if !parts.bccSet {
		bcc = c.defaultBcc
	}

	m := c.message
	m.From = c.sender
	m.To = append(m.To, to...)
	m.Cc = append(m.Cc, parts.cc...)
	m.Bcc = append(m.Bcc, bcc...)
	m.Attachments = append(m.Attachments, parts.attachments...)
	m.Subject = subject
	m.Body = body
	m.ContentType = contentType

	c.log.Debugw("Message populated",
		append(system.RecipientFields(len(m.To), len(m.Cc), len(m.Bcc)),
			"contentType", contentType,
			"attachments", len(m.Attachments))...)
}

// Send builds a transport for the configured profile and hands it the
// composed message once. The transport's error is returned as is.
func (c *Composer) Send() error {
	var t Transport
	if c.transport.UseSMTP {
		t = c.newSMTP(c.transport)
	} else {
		t = c.newLocal(c.transport)
	}

	m := c.message
	log := c.log.With("transport", t.Name(), "subject", m.Subject)
	log.Infow("Sending mail", system.RecipientFields(len(m.To), len(m.Cc), len(m.Bcc))...)

	if err := t.Send(m.Build()); err != nil {
		metrics.MailSendFailure.WithLabelValues(t.Name()).Inc()
		log.Errorw("Mail send failed", "error", err)
		return err
	}

	metrics.MailSendSuccess.WithLabelValues(t.Name()).Inc()
	metrics.MailAttachments.Add(float64(len(m.Attachments)))
	log.Infow("Mail sent")
	return nil
}

// RenderHTML renders the template file at templatePath with data, using
// tempDir as the renderer's scratch directory. An empty tempDir selects
// config.DefaultTemplateTempDir. The renderer's output is returned unmodified.
func (c *Composer) RenderHTML(templatePath string, data map[string]any, tempDir string) (string, error) {
	if tempDir == "" {
		tempDir = config.DefaultTemplateTempDir
	}
	if err := c.renderer.SetTempDirectory(tempDir); err != nil {
		return "", err
	}
	return c.renderer.RenderToString(templatePath, data)
}

// RenderFrameworkHTML renders <DocumentRoot><BaseURL>/public/templates/<name>
// with <DocumentRoot><BaseURL>/tmp/templates as scratch directory.
func (c *Composer) RenderFrameworkHTML(name string, data map[string]any) (string, error) {
	root := filepath.Join(c.framework.DocumentRoot, c.framework.BaseURL)
	return c.RenderHTML(
		filepath.Join(root, "public", "templates", name),
		data,
		filepath.Join(root, "tmp", "templates"),
	)
}

func (c *Composer) Sender() string {
	return c.sender
}

// Message returns a copy of the composed message.
func (c *Composer) Message() Message {
	return c.message.Clone()
}

func (c *Composer) TransportConfig() TransportConfig {
	return c.transport
}
