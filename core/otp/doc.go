// Package otp issues and verifies six digit e-mail codes.
//
// Gate.RequestCode enforces the resend interval and schedules a queue task;
// the task, served by Deliverer, generates the code, mails it and stores the
// record under "otp:<email>". Gate.VerifyCode and Gate.CheckStatus read that
// record. A verified record is kept for a retention window so repeat
// verifications report AlreadyValidated.
package otp
