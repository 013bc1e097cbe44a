package smtp

// TLS modes.
const (
	TLSModeSTARTTLS = "starttls"
	TLSModeTLS      = "tls"
	TLSModePlain    = "plain"
)

// Config holds SMTP relay settings. Nothing is env-required here so the
// process can boot with another provider selected; New enforces the rules.
type Config struct {
	Host        string `env:"SMTP_HOST"`
	Port        int    `env:"SMTP_PORT" envDefault:"587"`
	Username    string `env:"SMTP_USERNAME"`
	Password    string `env:"SMTP_PASSWORD"`
	TLSMode     string `env:"SMTP_TLS_MODE" envDefault:"starttls"`
	SenderEmail string `env:"EMAIL_FROM" envDefault:"noreply@sonr.id"`
	ReplyTo     string `env:"EMAIL_REPLY_TO"`
}
