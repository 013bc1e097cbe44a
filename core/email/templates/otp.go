package templates

import (
	"strconv"
	"strings"
)

// OTP purposes.
const (
	PurposeRegistration  = "registration"
	PurposeLogin         = "login"
	PurposePasswordReset = "password-reset"
)

// OTPData is the input of the verification code e-mail.
type OTPData struct {
	Code             string
	Username         string
	Purpose          string
	ExpiresInMinutes int
	Year             int
}

// OTPSubject returns the subject line for purpose.
func OTPSubject(purpose string) string {
	switch purpose {
	case PurposeRegistration:
		return "Welcome to Sonr - Verify Your Email"
	case PurposeLogin:
		return "Sonr Login Verification Code"
	case PurposePasswordReset:
		return "Reset Your Sonr Password"
	default:
		return "Sonr Verification Code"
	}
}

func otpIntro(purpose string) string {
	switch purpose {
	case PurposeRegistration:
		return "Thank you for joining Sonr! To complete your registration and verify your email address, please use the verification code below:"
	case PurposeLogin:
		return "We received a request to sign in to your Sonr account. Please use the verification code below to complete your login:"
	case PurposePasswordReset:
		return "We received a request to reset your Sonr password. Please use the verification code below to proceed:"
	default:
		return "Please use the verification code below to complete your action:"
	}
}

func otpGreeting(username string) string {
	if username == "" {
		return "Hello"
	}
	return "Hi " + username
}

func otpValidity(minutes int) string {
	return "Valid for " + strconv.Itoa(minutes) + " minutes"
}

// OTPText is the plain-text alternative of OTPEmail.
func OTPText(d OTPData) string {
	var b strings.Builder
	b.WriteString(otpGreeting(d.Username) + "!\n\n")
	b.WriteString(otpIntro(d.Purpose) + "\n\n")
	b.WriteString("Your verification code: " + d.Code + "\n")
	b.WriteString(otpValidity(d.ExpiresInMinutes) + ".\n\n")
	b.WriteString("If you didn't request this code, please ignore this email or contact our support team if you have concerns.\n\n")
	b.WriteString("(c) " + strconv.Itoa(d.Year) + " Sonr. All rights reserved.\n")
	return b.String()
}
