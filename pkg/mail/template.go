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
	"crypto/sha256"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/easymvc/mailcomposer/pkg/metrics"
)

// Renderer turns a template file and a data mapping into an HTML string.
type Renderer interface {
	// SetTempDirectory configures the scratch directory for compiled templates.
	SetTempDirectory(dir string) error
	RenderToString(path string, data map[string]any) (string, error)
}

type cachedTemplate struct {
	sum  [sha256.Size]byte
	tmpl *template.Template
}

// TemplateEngine renders html/template files with the Sprig function set.
// Parsed templates are cached per scratch directory and re-parsed when the
// file's content changes. It is safe for concurrent use.
type TemplateEngine struct {
	log *zap.SugaredLogger

	mu      sync.Mutex
	tempDir string
	cache   map[string]cachedTemplate
}

// NewTemplateEngine creates a template engine. A nil logger disables logging.
func NewTemplateEngine(log *zap.SugaredLogger) *TemplateEngine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &TemplateEngine{
		log:   log.Named("templates"),
		cache: map[string]cachedTemplate{},
	}
}

// SetTempDirectory creates dir if needed and makes it the engine's scratch
// directory. Switching to another directory drops the parsed template cache.
func (e *TemplateEngine) SetTempDirectory(dir string) error {
	if dir == "" {
		return fmt.Errorf("template temp directory is empty")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating template temp directory %s: %w", dir, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tempDir != dir {
		e.log.Debugw("Template temp directory changed", "from", e.tempDir, "to", dir)
		e.tempDir = dir
		e.cache = map[string]cachedTemplate{}
	}
	return nil
}

// TempDirectory returns the configured scratch directory.
func (e *TemplateEngine) TempDirectory() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tempDir
}

// RenderToString renders the template file at path with data. A missing
// file yields an error wrapping fs.ErrNotExist.
func (e *TemplateEngine) RenderToString(path string, data map[string]any) (string, error) {
	tmpl, err := e.load(path)
	if err != nil {
		metrics.TemplateRenders.WithLabelValues("error").Inc()
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		metrics.TemplateRenders.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to execute template %s: %w", path, err)
	}
	metrics.TemplateRenders.WithLabelValues("success").Inc()
	return buf.String(), nil
}

func (e *TemplateEngine) load(path string) (*template.Template, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", path, err)
	}
	sum := sha256.Sum256(content)

	e.mu.Lock()
	defer e.mu.Unlock()

	if cached, ok := e.cache[path]; ok && cached.sum == sum {
		metrics.TemplateCacheHits.Inc()
		return cached.tmpl, nil
	}

	tmpl, err := template.New(filepath.Base(path)).Funcs(buildFuncMap()).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", path, err)
	}

	e.cache[path] = cachedTemplate{sum: sum, tmpl: tmpl}
	e.log.Debugw("Parsed template", "path", path, "bytes", len(content))
	return tmpl, nil
}
