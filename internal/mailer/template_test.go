package mailer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderHTML(t *testing.T) {
	out := RenderHTML("Your event request has been approved", "Hello Alice,\n\nGood news.\n\nCampus Events")

	assert.Contains(t, out, "<h2")
	assert.Contains(t, out, "Your event request has been approved")
	assert.Contains(t, out, "Good news.")
	assert.Equal(t, 3, strings.Count(out, "<p "))
}

func TestRenderHTMLEscapes(t *testing.T) {
	out := RenderHTML("<script>alert(1)</script>", "body & text")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "body &amp; text")
}
