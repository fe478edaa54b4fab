package mail

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easymvc/mailcomposer/pkg/metrics"
	"github.com/easymvc/mailcomposer/pkg/system"
)

func writeTemplate(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newTestEngine(t *testing.T) *TemplateEngine {
	t.Helper()
	e := NewTemplateEngine(system.NewTestLogger())
	require.NoError(t, e.SetTempDirectory(t.TempDir()))
	return e
}

func TestTemplateEngine_RenderToString(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]any
		expected string
	}{
		{
			name:     "plain field",
			template: "<p>Hello {{ .name }}</p>",
			data:     map[string]any{"name": "Ann"},
			expected: "<p>Hello Ann</p>",
		},
		{
			name:     "escapes html in data",
			template: "<p>{{ .name }}</p>",
			data:     map[string]any{"name": "<script>x</script>"},
			expected: "<p>&lt;script&gt;x&lt;/script&gt;</p>",
		},
		{
			name:     "sprig functions",
			template: `<p>{{ .name | upper }} {{ default "guest" .missing }}</p>`,
			data:     map[string]any{"name": "ann"},
			expected: "<p>ANN guest</p>",
		},
		{
			name:     "nl2br",
			template: "<p>{{ nl2br .text }}</p>",
			data:     map[string]any{"text": "one\r\ntwo & three"},
			expected: "<p>one<br>\ntwo &amp; three</p>",
		},
		{
			name:     "markdown",
			template: "<div>{{ markdown .text }}</div>",
			data:     map[string]any{"text": "**hi**"},
			expected: "<div><p><strong>hi</strong></p>\n</div>",
		},
		{
			name:     "range",
			template: "<ul>{{ range .items }}<li>{{ . }}</li>{{ end }}</ul>",
			data:     map[string]any{"items": []string{"a", "b"}},
			expected: "<ul><li>a</li><li>b</li></ul>",
		},
		{
			name:     "nil data",
			template: "<p>static</p>",
			expected: "<p>static</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			path := writeTemplate(t, t.TempDir(), "welcome.tpl", tt.template)

			out, err := e.RenderToString(path, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestTemplateEngine_MissingTemplate(t *testing.T) {
	e := newTestEngine(t)
	before := testutil.ToFloat64(metrics.TemplateRenders.WithLabelValues("error"))

	_, err := e.RenderToString(filepath.Join(t.TempDir(), "missing.tpl"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.TemplateRenders.WithLabelValues("error")))
}

func TestTemplateEngine_ParseError(t *testing.T) {
	e := newTestEngine(t)
	path := writeTemplate(t, t.TempDir(), "broken.tpl", "<p>{{ .name </p>")

	_, err := e.RenderToString(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse template")
}

func TestTemplateEngine_ExecuteError(t *testing.T) {
	e := newTestEngine(t)
	path := writeTemplate(t, t.TempDir(), "fail.tpl", `{{ fail "boom" }}`)

	_, err := e.RenderToString(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute template")
	assert.Contains(t, err.Error(), "boom")
}

func TestTemplateEngine_Cache(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()
	path := writeTemplate(t, dir, "cached.tpl", "<p>v1</p>")

	hits := testutil.ToFloat64(metrics.TemplateCacheHits)
	out, err := e.RenderToString(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "<p>v1</p>", out)

	out, err = e.RenderToString(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "<p>v1</p>", out)
	assert.Equal(t, hits+1, testutil.ToFloat64(metrics.TemplateCacheHits))

	writeTemplate(t, dir, "cached.tpl", "<p>version two</p>")

	out, err = e.RenderToString(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "<p>version two</p>", out)
	assert.Equal(t, hits+1, testutil.ToFloat64(metrics.TemplateCacheHits))
}

func TestTemplateEngine_Cache_SameSizeAndModTime(t *testing.T) {
	e := newTestEngine(t)
	path := writeTemplate(t, t.TempDir(), "same.tpl", "AAAA")
	info, err := os.Stat(path)
	require.NoError(t, err)

	out, err := e.RenderToString(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "AAAA", out)

	writeTemplate(t, filepath.Dir(path), "same.tpl", "BBBB")
	require.NoError(t, os.Chtimes(path, info.ModTime(), info.ModTime()))

	out, err = e.RenderToString(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "BBBB", out)
}

func TestTemplateEngine_SetTempDirectory(t *testing.T) {
	e := NewTemplateEngine(nil)

	err := e.SetTempDirectory("")
	assert.Error(t, err)

	dir := filepath.Join(t.TempDir(), "nested", "templates")
	require.NoError(t, e.SetTempDirectory(dir))
	assert.Equal(t, dir, e.TempDirectory())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestTemplateEngine_SetTempDirectory_ResetsCache(t *testing.T) {
	e := newTestEngine(t)
	path := writeTemplate(t, t.TempDir(), "page.tpl", "<p>page</p>")

	_, err := e.RenderToString(path, nil)
	require.NoError(t, err)
	require.NoError(t, e.SetTempDirectory(e.TempDirectory()))

	hits := testutil.ToFloat64(metrics.TemplateCacheHits)
	_, err = e.RenderToString(path, nil)
	require.NoError(t, err)
	assert.Equal(t, hits+1, testutil.ToFloat64(metrics.TemplateCacheHits), "same directory keeps the cache")

	require.NoError(t, e.SetTempDirectory(t.TempDir()))
	_, err = e.RenderToString(path, nil)
	require.NoError(t, err)
	assert.Equal(t, hits+1, testutil.ToFloat64(metrics.TemplateCacheHits), "new directory drops the cache")
}

func TestTemplateEngine_ThroughComposer(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "welcome.tpl", "<h1>Welcome {{ .name }}</h1>")

	c := NewComposer(WithLogger(system.NewTestLogger()))
	out, err := c.RenderHTML(path, map[string]any{"name": "Ann"}, filepath.Join(dir, "scratch"))
	require.NoError(t, err)
	assert.Equal(t, "<h1>Welcome Ann</h1>", out)
}
