package postmark

// Config holds Postmark credentials and sender identity. Tokens are not
// env-required so another provider can be selected without them.
type Config struct {
	ServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	AccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail  string `env:"EMAIL_FROM" envDefault:"noreply@sonr.id"`
	ReplyTo      string `env:"EMAIL_REPLY_TO"`
	TrackOpens   bool   `env:"POSTMARK_TRACK_OPENS" envDefault:"false"`
}
