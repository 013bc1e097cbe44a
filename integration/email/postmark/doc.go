// Package postmark implements email.EmailSender on the Postmark transactional
// API using github.com/mrz1836/postmark.
//
//	sender, err := postmark.New(postmark.Config{
//		ServerToken: os.Getenv("POSTMARK_SERVER_TOKEN"),
//		SenderEmail: "noreply@sonr.id",
//	})
//
// API-level failures (a non-zero ErrorCode in the response) and transport
// failures are both reported as email.ErrFailedToSendEmail.
package postmark
