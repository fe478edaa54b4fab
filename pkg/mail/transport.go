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
	"bytes"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"os/exec"
	"strconv"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/easymvc/mailcomposer/pkg/config"
)

const (
	TransportSMTP     = "smtp"
	TransportSendmail = "sendmail"
)

// Transport delivers a fully built message.
type Transport interface {
	Send(msg *gomail.Message) error
	Name() string
}

// TransportConfig is the transport profile a Composer sends with.
type TransportConfig struct {
	UseSMTP  bool
	Host     string
	Port     int
	Username string
	Password string
	// Security is "ssl", "tls" or empty.
	Security           string
	InsecureSkipVerify bool
	SendmailPath       string
}

// TransportConfigFrom converts the mail section of a loaded configuration.
func TransportConfigFrom(m config.Mail) TransportConfig {
	return TransportConfig{
		UseSMTP:            m.UseSMTP,
		Host:               m.Host,
		Port:               m.Port,
		Username:           m.Username,
		Password:           m.Password,
		Security:           m.Security,
		InsecureSkipVerify: m.InsecureSkipVerify,
		SendmailPath:       m.SendmailPath,
	}
}

// SMTPTransport sends through an SMTP server using a gomail dialer.
type SMTPTransport struct {
	dialer *gomail.Dialer
}

// NewSMTPTransport builds a dialer from cfg. Host may carry a port
// ("smtp.example.com:587"); otherwise Port is used, and when that is zero
// the port is 465 for ssl and 25 for everything else.
func NewSMTPTransport(cfg TransportConfig) *SMTPTransport {
	host, port := resolveHostPort(cfg.Host, cfg.Port, cfg.Security)

	d := gomail.NewDialer(host, port, cfg.Username, cfg.Password)
	// NewDialer guesses SSL from the port; the configured security mode wins.
	d.SSL = cfg.Security == config.SecuritySSL
	if cfg.InsecureSkipVerify {
		d.TLSConfig = &tls.Config{ServerName: host, InsecureSkipVerify: true} //nolint:gosec // opt-in via config
	}

	return &SMTPTransport{dialer: d}
}

func (t *SMTPTransport) Send(msg *gomail.Message) error {
	return t.dialer.DialAndSend(msg)
}

func (t *SMTPTransport) Name() string {
	return TransportSMTP
}

func (t *SMTPTransport) GetHost() string {
	return t.dialer.Host
}

func (t *SMTPTransport) GetPort() int {
	return t.dialer.Port
}

// SSL reports whether the connection uses implicit TLS.
func (t *SMTPTransport) SSL() bool {
	return t.dialer.SSL
}

func resolveHostPort(host string, port int, security string) (string, int) {
	if h, p, err := net.SplitHostPort(host); err == nil {
		if n, err := strconv.Atoi(p); err == nil {
			return h, n
		}
	}
	if port > 0 {
		return host, port
	}
	if security == config.SecuritySSL {
		return host, 465
	}
	return host, 25
}

// SendmailTransport hands messages to the local sendmail binary.
type SendmailTransport struct {
	path string
}

// NewSendmailTransport uses the binary at path, or /usr/sbin/sendmail when
// path is empty.
func NewSendmailTransport(path string) *SendmailTransport {
	if path == "" {
		path = config.DefaultSendmailPath
	}
	return &SendmailTransport{path: path}
}

func (t *SendmailTransport) Send(msg *gomail.Message) error {
	return gomail.Send(gomail.SendFunc(t.deliver), msg)
}

func (t *SendmailTransport) Name() string {
	return TransportSendmail
}

func (t *SendmailTransport) Path() string {
	return t.path
}

// deliver pipes the message into sendmail. Recipients are passed as
// arguments because gomail strips the Bcc header when writing the message.
func (t *SendmailTransport) deliver(from string, to []string, msg io.WriterTo) error {
	args := append([]string{"-i", "-f", from, "--"}, to...)
	cmd := exec.Command(t.path, args...) //nolint:gosec // path comes from configuration

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("sendmail stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", t.path, err)
	}

	if _, err := msg.WriteTo(stdin); err != nil {
		// Do not let sendmail deliver a truncated message.
		_ = stdin.Close()
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("writing message to %s: %w", t.path, err)
	}
	if err := stdin.Close(); err != nil {
		_ = cmd.Wait()
		return fmt.Errorf("closing %s stdin: %w", t.path, err)
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%s: %w: %s", t.path, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
