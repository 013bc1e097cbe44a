// Package smtp implements email.EmailSender over an SMTP relay with STARTTLS,
// implicit TLS or plain connections.
//
//	sender, err := smtp.New(smtp.Config{
//		Host:        "smtp.example.com",
//		Port:        587,
//		Username:    "apikey",
//		Password:    secret,
//		TLSMode:     smtp.TLSModeSTARTTLS,
//		SenderEmail: "noreply@sonr.id",
//	})
//
// Each SendEmail call dials a fresh connection bound to the caller's context.
package smtp
