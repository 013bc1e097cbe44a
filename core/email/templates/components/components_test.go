package components_test

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonr-io/motr-gateway/core/email/templates/components"
)

func render(t *testing.T, c templ.Component, children ...templ.Component) string {
	t.Helper()
	ctx := context.Background()
	if len(children) > 0 {
		ctx = templ.WithChildren(ctx, children[0])
	}
	var b strings.Builder
	require.NoError(t, c.Render(ctx, &b))
	return b.String()
}

func TestLayout(t *testing.T) {
	t.Parallel()

	html := render(t, components.Layout("Code <1>"), templ.Raw("<p>inner</p>"))
	assert.True(t, strings.HasPrefix(html, "<!doctype html>"))
	assert.Contains(t, html, "<title>Code &lt;1&gt;</title>")
	assert.Contains(t, html, "<p>inner</p></div></td></tr></table></body></html>")
}

func TestHeader(t *testing.T) {
	t.Parallel()

	t.Run("without subtitle", func(t *testing.T) {
		t.Parallel()
		html := render(t, components.Header("Sonr Identity", ""))
		assert.Contains(t, html, ">Sonr Identity</h1>")
		assert.NotContains(t, html, "<p")
	})

	t.Run("with subtitle", func(t *testing.T) {
		t.Parallel()
		html := render(t, components.Header("Sonr Identity", "Welcome"))
		assert.Contains(t, html, ">Welcome</p>")
	})
}

func TestOTP(t *testing.T) {
	t.Parallel()

	html := render(t, components.OTP("123456", "Valid for 10 minutes"))
	assert.Contains(t, html, "Your Verification Code")
	assert.Contains(t, html, ">123456</p>")
	assert.Contains(t, html, ">Valid for 10 minutes</p>")

	html = render(t, components.OTP("654321", ""))
	assert.Equal(t, 2, strings.Count(html, "<p "))
}

func TestTextBlocks(t *testing.T) {
	t.Parallel()

	child := templ.Raw("body & more")
	for name, c := range map[string]templ.Component{
		"text":      components.Text(),
		"secondary": components.TextSecondary(),
		"body":      components.Body(),
		"footer":    components.Footer(),
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Contains(t, render(t, c, child), "body & more")
		})
	}

	assert.Contains(t, render(t, components.Title("Hi <eve>!")), ">Hi &lt;eve&gt;!</h2>")
}
