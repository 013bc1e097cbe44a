package gateway

import (
	"errors"
	"fmt"

	"github.com/sonr-io/motr-gateway/core/binder"
	"github.com/sonr-io/motr-gateway/core/handler"
	"github.com/sonr-io/motr-gateway/core/otp"
	"github.com/sonr-io/motr-gateway/core/response"
)

type sendOTPRequest struct {
	Email            string `json:"email"`
	Username         string `json:"username"`
	Purpose          string `json:"purpose"`
	ExpiresInMinutes int    `json:"expiresInMinutes"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type otpStatusRequest struct {
	Email string `json:"email"`
}

func (a *App) sendOTP(ctx *Context) handler.Response {
	var req sendOTPRequest
	if err := binder.JSON(ctx.Request(), &req); err != nil {
		return response.Error(failure(binder.HTTPError(err)))
	}

	id, err := a.gate.RequestCode(ctx, otp.CodeRequest{
		Email:            req.Email,
		Username:         req.Username,
		Purpose:          req.Purpose,
		ExpiresInMinutes: req.ExpiresInMinutes,
	})
	if err != nil {
		return otpError(err, "Failed to send OTP email")
	}
	return response.JSON(map[string]any{
		"success":    true,
		"instanceId": id,
		"message":    "OTP email sent successfully",
	})
}

func (a *App) verifyOTP(ctx *Context) handler.Response {
	var req verifyOTPRequest
	if err := binder.JSON(ctx.Request(), &req); err != nil {
		return response.Error(failure(binder.HTTPError(err)))
	}

	res, err := a.gate.VerifyCode(ctx, req.Email, req.Code)
	if err != nil {
		return otpError(err, "Verification failed")
	}
	if res.AlreadyValidated {
		return response.JSON(map[string]any{
			"success":          true,
			"message":          "Email already verified",
			"alreadyValidated": true,
		})
	}
	return response.JSON(map[string]any{
		"success": true,
		"message": "OTP verified successfully",
	})
}

func (a *App) otpStatus(ctx *Context) handler.Response {
	var req otpStatusRequest
	if err := binder.JSON(ctx.Request(), &req); err != nil {
		return response.Error(failure(binder.HTTPError(err)))
	}

	status, err := a.gate.CheckStatus(ctx, req.Email)
	if err != nil {
		return otpError(err, "Status check failed")
	}
	return response.JSON(status)
}

// otpError maps gate errors to {success:false, error} envelopes. Store and
// queue failures become 500 with fallback as the client-facing message.
func otpError(err error, fallback string) handler.Response {
	var rl *otp.RateLimitError
	switch {
	case errors.As(err, &rl):
		return response.Error(failure(response.ErrTooManyRequests.
			WithMessage(fmt.Sprintf("Please wait %d seconds before requesting another code", rl.RemainingSeconds)).
			WithDetail("remainingSeconds", rl.RemainingSeconds)))
	case errors.Is(err, otp.ErrInvalidEmail):
		return otpBadRequest("Valid email is required")
	case errors.Is(err, otp.ErrInvalidPurpose):
		return otpBadRequest("Purpose must be one of registration, login, password-reset")
	case errors.Is(err, otp.ErrInvalidExpiry):
		return otpBadRequest("expiresInMinutes must be between 1 and 60")
	case errors.Is(err, otp.ErrMissingCode):
		return otpBadRequest("Email and code are required")
	case errors.Is(err, otp.ErrAlreadyVerified):
		return otpBadRequest("Email already verified")
	case errors.Is(err, otp.ErrNotFound):
		return otpBadRequest("OTP code expired or not found")
	case errors.Is(err, otp.ErrExpired):
		return otpBadRequest("OTP code expired")
	case errors.Is(err, otp.ErrInvalidCode):
		return otpBadRequest("Invalid OTP code")
	case errors.Is(err, otp.ErrTooManyAttempts):
		return response.Error(failure(response.ErrTooManyRequests.
			WithMessage("Too many failed attempts. Please request a new code")))
	default:
		return response.Error(failure(response.ErrInternalServerError.WithMessage(fallback).WithError(err)))
	}
}

func otpBadRequest(msg string) handler.Response {
	return response.Error(failure(response.ErrBadRequest.WithMessage(msg)))
}
