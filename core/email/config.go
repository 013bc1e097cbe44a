package email

// Supported EMAIL_PROVIDER values.
const (
	ProviderDev      = "dev"
	ProviderPostmark = "postmark"
	ProviderSMTP     = "smtp"
)

// Config selects the delivery provider.
type Config struct {
	Provider string `env:"EMAIL_PROVIDER" envDefault:"dev"`
	DevDir   string `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`
}

// DefaultConfig returns the development provider writing to ./tmp/emails.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderDev,
		DevDir:   "./tmp/emails",
	}
}

// Validate rejects unknown providers and a dev provider without a directory.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderDev:
		if c.DevDir == "" {
			return ErrInvalidConfig
		}
	case ProviderPostmark, ProviderSMTP:
	default:
		return ErrUnknownProvider
	}
	return nil
}
