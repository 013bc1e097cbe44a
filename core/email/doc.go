// Package email defines the EmailSender abstraction used to deliver one-time
// codes, plus DevSender, which writes each message to disk as an HTML file and a
// JSON metadata file instead of sending it.
//
// Provider implementations live under integration/email (Postmark and SMTP).
// Message bodies are templ components from the templates subpackage:
//
//	body, err := templates.Render(ctx, templates.OTPEmail(data))
//	if err != nil {
//		return err
//	}
//	err = sender.SendEmail(ctx, email.SendEmailParams{
//		SendTo:   "user@example.com",
//		Subject:  templates.OTPSubject(data.Purpose),
//		BodyHTML: body,
//		Tag:      "otp",
//	})
package email
