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
	"html/template"
	"strings"
	"sync"

	"github.com/Masterminds/sprig/v3"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	policyOnce   sync.Once
	bodyPolicy   *bluemonday.Policy
	strictPolicy *bluemonday.Policy

	markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))
)

func initPolicies() {
	policyOnce.Do(func() {
		bodyPolicy = bluemonday.UGCPolicy()
		strictPolicy = bluemonday.StrictPolicy()
	})
}

// buildFuncMap creates the template function map with Sprig and custom functions.
func buildFuncMap() template.FuncMap {
	funcMap := sprig.FuncMap()
	funcMap["nl2br"] = nl2br
	funcMap["markdown"] = markdownHTML
	funcMap["sanitize"] = sanitizeHTML
	funcMap["stripTags"] = stripTags
	return funcMap
}

// nl2br escapes s and turns its line breaks into <br> tags.
func nl2br(s string) template.HTML {
	escaped := template.HTMLEscapeString(strings.ReplaceAll(s, "\r\n", "\n"))
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>\n")) //nolint:gosec // input is escaped above
}

// markdownHTML converts GitHub flavoured markdown to sanitized HTML.
func markdownHTML(s string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(s), &buf); err != nil {
		return "", err
	}
	return sanitizeHTML(buf.String()), nil
}

// sanitizeHTML keeps formatting markup and drops active content.
func sanitizeHTML(s string) template.HTML {
	initPolicies()
	return template.HTML(bodyPolicy.Sanitize(s)) //nolint:gosec // sanitized by policy
}

// stripTags removes all markup. The result is escaped text.
func stripTags(s string) template.HTML {
	initPolicies()
	return template.HTML(strictPolicy.Sanitize(s)) //nolint:gosec // no markup left
}
