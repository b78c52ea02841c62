package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

type Provider string

const (
	ProviderTwilio Provider = "twilio"
	ProviderSNS    Provider = "sns"
)

type Config struct {
	App struct {
		Env      Environment `env:"APP_ENV" envDefault:"production"`
		Port     string      `env:"PORT" envDefault:"3000"`
		LogLevel string      `env:"LOG_LEVEL" envDefault:"info"`
		PagesURL string      `env:"PAGES_URL" envDefault:"https://www.jongwings.com/PawsClinic/"`
		WebDir   string      `env:"WEB_DIR" envDefault:"../web"`
	}

	Database struct {
		Path string `env:"DB_PATH" envDefault:"./appointments.db"`
	}

	Messaging struct {
		Provider        Provider `env:"MESSAGING_PROVIDER" envDefault:"twilio"`
		ClinicTo        string   `env:"CLINIC_SMS_TO"`
		WhatsAppEnabled bool     `env:"WHATSAPP_ENABLED"`
		WhatsAppFrom    string   `env:"WHATSAPP_FROM"`
	}

	Twilio struct {
		AccountSID          string `env:"TWILIO_ACCOUNT_SID"`
		AuthToken           string `env:"TWILIO_AUTH_TOKEN"`
		FromNumber          string `env:"TWILIO_FROM_NUMBER"`
		MessagingServiceSID string `env:"TWILIO_MESSAGING_SERVICE_SID"`
	}

	SNS struct {
		Region            string `env:"SNS_REGION"`
		OriginationNumber string `env:"SNS_ORIGINATION_NUMBER"`
		SenderID          string `env:"SNS_SENDER_ID"`
	}

	Admin struct {
		Secret string `env:"ADMIN_SECRET"`
	}

	HTTP struct {
		RateLimit    int      `env:"API_RATE_LIMIT" envDefault:"12"`
		BodyLimit    string   `env:"BODY_LIMIT" envDefault:"64K"`
		AllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:","`
	}

	Telemetry struct {
		Endpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
		Insecure bool   `env:"OTEL_EXPORTER_OTLP_INSECURE"`
	}
}

// SenderIdentity is what the selected provider sends SMS as. FromNumber wins
// when both are set.
type SenderIdentity struct {
	FromNumber string
	SenderID   string
}

// Load reads an optional .env file from the working directory and then
// parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.App.Env = Environment(strings.ToLower(strings.TrimSpace(string(cfg.App.Env))))
	cfg.Messaging.Provider = Provider(strings.ToLower(strings.TrimSpace(string(cfg.Messaging.Provider))))
	cfg.Admin.Secret = strings.TrimSpace(cfg.Admin.Secret)

	switch cfg.Messaging.Provider {
	case ProviderTwilio, ProviderSNS:
	default:
		return nil, fmt.Errorf("unknown MESSAGING_PROVIDER %q", cfg.Messaging.Provider)
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == EnvDevelopment
}

// SMSSender returns the sender identity configured for the selected provider.
func (c *Config) SMSSender() SenderIdentity {
	if c.Messaging.Provider == ProviderSNS {
		return SenderIdentity{
			FromNumber: strings.TrimSpace(c.SNS.OriginationNumber),
			SenderID:   strings.TrimSpace(c.SNS.SenderID),
		}
	}
	return SenderIdentity{
		FromNumber: strings.TrimSpace(c.Twilio.FromNumber),
		SenderID:   strings.TrimSpace(c.Twilio.MessagingServiceSID),
	}
}
