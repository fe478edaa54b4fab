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
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

const (
	ContentTypePlain = "text/plain"
	ContentTypeHTML  = "text/html"
)

// Message is the composite a Composer fills in before sending.
type Message struct {
	From        string
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	Body        string
	ContentType string
	// Attachments are file paths, read when the message is written out.
	Attachments []string
}

// IsHTML reports whether the body is stored as HTML.
func (m *Message) IsHTML() bool {
	return m.ContentType == ContentTypeHTML
}

// Clone returns a deep copy of m.
func (m *Message) Clone() Message {
	out := *m
	out.To = cloneStrings(m.To)
	out.Cc = cloneStrings(m.Cc)
	out.Bcc = cloneStrings(m.Bcc)
	out.Attachments = cloneStrings(m.Attachments)
	return out
}

// Build converts the message to a gomail message. Every call produces a
// fresh gomail message with its own Message-ID.
func (m *Message) Build() *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	if len(m.To) > 0 {
		msg.SetHeader("To", m.To...)
	}
	if len(m.Cc) > 0 {
		msg.SetHeader("Cc", m.Cc...)
	}
	if len(m.Bcc) > 0 {
		msg.SetHeader("Bcc", m.Bcc...)
	}
	msg.SetHeader("Subject", m.Subject)
	msg.SetHeader("Message-ID", messageID(m.From))
	msg.SetDateHeader("Date", time.Now())

	contentType := m.ContentType
	if contentType == "" {
		contentType = ContentTypePlain
	}
	msg.SetBody(contentType, m.Body)

	for _, path := range m.Attachments {
		msg.Attach(path)
	}
	return msg
}

// messageID returns an RFC 5322 Message-ID using the sender's domain.
func messageID(from string) string {
	domain := "localhost"
	if at := strings.LastIndex(from, "@"); at >= 0 && at < len(from)-1 {
		domain = strings.TrimRight(from[at+1:], "> ")
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
