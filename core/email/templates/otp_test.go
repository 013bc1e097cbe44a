package templates_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonr-io/motr-gateway/core/email/templates"
)

func TestOTPEmail(t *testing.T) {
	t.Parallel()

	t.Run("renders code and escapes username", func(t *testing.T) {
		t.Parallel()
		html, err := templates.Render(context.Background(), templates.OTPEmail(templates.OTPData{
			Code:             "123456",
			Username:         "<b>eve</b>",
			Purpose:          templates.PurposeLogin,
			ExpiresInMinutes: 10,
			Year:             2025,
		}))
		require.NoError(t, err)

		assert.Contains(t, html, "123456")
		assert.Contains(t, html, "Valid for 10 minutes")
		assert.Contains(t, html, "Hi &lt;b&gt;eve&lt;/b&gt;!")
		assert.NotContains(t, html, "<b>eve</b>")
		assert.Contains(t, html, "sign in to your Sonr account")
		assert.Contains(t, html, "&copy; 2025 Sonr. All rights reserved.")
		assert.Contains(t, html, "<title>Sonr Login Verification Code</title>")
		assert.Contains(t, html, ">Sonr Identity</h1>")
	})

	t.Run("anonymous greeting", func(t *testing.T) {
		t.Parallel()
		html, err := templates.Render(context.Background(), templates.OTPEmail(templates.OTPData{Code: "000000"}))
		require.NoError(t, err)
		assert.Contains(t, html, "Hello!")
	})
}

func TestOTPText(t *testing.T) {
	t.Parallel()

	text := templates.OTPText(templates.OTPData{
		Code:             "123456",
		Username:         "<b>eve</b>",
		Purpose:          templates.PurposeRegistration,
		ExpiresInMinutes: 15,
		Year:             2025,
	})
	assert.True(t, strings.HasPrefix(text, "Hi <b>eve</b>!\n"))
	assert.Contains(t, text, "Thank you for joining Sonr!")
	assert.Contains(t, text, "Your verification code: 123456\n")
	assert.Contains(t, text, "Valid for 15 minutes.")
	assert.NotContains(t, text, "<p")
}

func TestOTPSubject(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Welcome to Sonr - Verify Your Email", templates.OTPSubject(templates.PurposeRegistration))
	assert.Equal(t, "Sonr Login Verification Code", templates.OTPSubject(templates.PurposeLogin))
	assert.Equal(t, "Reset Your Sonr Password", templates.OTPSubject(templates.PurposePasswordReset))
	assert.Equal(t, "Sonr Verification Code", templates.OTPSubject("other"))
}
