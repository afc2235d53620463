package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_ToHTML(t *testing.T) {
	r := NewRenderer()

	out, err := r.ToHTML("**bold** and ~~gone~~")
	require.NoError(t, err)
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "<del>gone</del>")
}

func TestRenderer_RenderStripsScripts(t *testing.T) {
	r := NewRenderer()

	out := string(r.Render("hello <script>alert(1)</script>"))
	assert.Contains(t, out, "hello")
	assert.False(t, strings.Contains(out, "<script>"))
}

func TestRenderer_RenderLinks(t *testing.T) {
	r := NewRenderer()

	out := string(r.Render("[docs](https://example.com)"))
	assert.Contains(t, out, `href="https://example.com"`)
	assert.Contains(t, out, `rel="nofollow"`)
}
