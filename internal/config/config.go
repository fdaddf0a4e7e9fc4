// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// present), loads them into structured Go types, and validates that required
// values are present so they can be reused across the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide defaults for optional blocks (pricing, rate limit, assets, observability).
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads `.env` into the process env before we read it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the FUNNEL_ prefix. Nesting uses a double
	underscore so single underscores can stay inside field names:

		FUNNEL_SERVER__READ_TIMEOUT -> server.read_timeout -> Config.Server.ReadTimeout

	Keys listed in sliceKeys are split on commas.
*/

// EnvPrefix is the prefix every configuration variable carries.
const EnvPrefix = "FUNNEL_"

const ServiceName = "riva-funnel"

var sliceKeys = map[string]bool{
	"server.cors_allowed_origins":        true,
	"server.trusted_proxies":             true,
	"auth.admin_emails":                  true,
	"observability.health_checks.checks": true,
}

// Config is the root configuration object for the application.
//
// Blocks tagged `validate:"required"` must be present. Pricing, RateLimit
// and Assets fall back to defaults; Observability is a pointer because it is
// optional and gets injected when missing.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Integration   IntegrationConfig    `koanf:"integration" validate:"required"`
	Pricing       PricingConfig        `koanf:"pricing"`
	RateLimit     RateLimitConfig      `koanf:"rate_limit"`
	Assets        AssetsConfig         `koanf:"assets"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are whole seconds.
//
// TrustedProxies lists the CIDR ranges of the edge in front of the API.
// X-Forwarded-For is only honoured when the peer is inside one of them;
// with none set the client IP is the TCP peer.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
	TrustedProxies     []string `koanf:"trusted_proxies" validate:"omitempty,dive,cidr"`
}

// DatabaseConfig contains the Supabase Postgres connection and pool tuning.
//
// URL, when set, is used verbatim (Supabase hands out full connection
// strings); otherwise the DSN is assembled from the discrete fields.
type DatabaseConfig struct {
	URL             string `koanf:"url"`
	Host            string `koanf:"host" validate:"required_without=URL"`
	Port            int    `koanf:"port" validate:"required_without=URL"`
	User            string `koanf:"user" validate:"required_without=URL"`
	Password        string `koanf:"password" validate:"required_without=URL"`
	Name            string `koanf:"name" validate:"required_without=URL"`
	SSLMode         string `koanf:"ssl_mode"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time"`
}

// DSN returns the postgres connection string for pgx.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	hostPort := net.JoinHostPort(d.Host, strconv.Itoa(d.Port))

	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		d.User,
		url.QueryEscape(d.Password),
		hostPort,
		d.Name,
		sslMode,
	)
}

// RedisConfig contains Redis connection details. Address is "host:port".
type RedisConfig struct {
	Address  string `koanf:"address" validate:"required"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// AuthConfig stores token secrets.
//
// SupabaseJWTSecret verifies admin dashboard sessions issued by Supabase Auth.
// DownloadTokenSecret signs lead magnet download links.
type AuthConfig struct {
	SupabaseJWTSecret   string   `koanf:"supabase_jwt_secret" validate:"required"`
	AdminEmails         []string `koanf:"admin_emails"`
	DownloadTokenSecret string   `koanf:"download_token_secret" validate:"required,min=16"`
	DownloadTokenTTL    int      `koanf:"download_token_ttl"`
}

// IntegrationConfig holds credentials for the third-party SaaS the funnel
// talks to.
type IntegrationConfig struct {
	PublicBaseURL string `koanf:"public_base_url" validate:"required,url"`

	EmailProvider string `koanf:"email_provider" validate:"omitempty,oneof=brevo resend"`
	FromEmail     string `koanf:"from_email" validate:"required,email"`
	FromName      string `koanf:"from_name"`
	NotifyEmail   string `koanf:"notify_email" validate:"required,email"`

	BrevoAPIKey  string `koanf:"brevo_api_key"`
	BrevoBaseURL string `koanf:"brevo_base_url"`
	BrevoListID  int64  `koanf:"brevo_list_id"`
	ResendAPIKey string `koanf:"resend_api_key"`

	StripeSecretKey     string `koanf:"stripe_secret_key"`
	StripeWebhookSecret string `koanf:"stripe_webhook_secret"`
	StripeTaxRateID     string `koanf:"stripe_tax_rate_id"`

	CalendlyURL        string `koanf:"calendly_url" validate:"omitempty,url"`
	CalendlySigningKey string `koanf:"calendly_signing_key"`
}

// BillingEnabled reports whether Stripe credentials are present.
func (i IntegrationConfig) BillingEnabled() bool {
	return i.StripeSecretKey != ""
}

// PricingConfig holds the tax parameters applied by the quote calculator.
type PricingConfig struct {
	TaxRate          float64 `koanf:"tax_rate" validate:"gte=0,lt=1"`
	HomeState        string  `koanf:"home_state"`
	HomeStateTaxRate float64 `koanf:"home_state_tax_rate" validate:"gte=0,lt=1"`
	TrialDays        int     `koanf:"trial_days" validate:"gte=0"`
}

// RateLimitConfig configures the form submission limiter.
// Window is in seconds.
type RateLimitConfig struct {
	Store  string `koanf:"store" validate:"omitempty,oneof=memory redis"`
	Limit  int    `koanf:"limit" validate:"gte=0"`
	Window int    `koanf:"window" validate:"gte=0"`
}

// AssetsConfig locates the lead magnet PDFs.
type AssetsConfig struct {
	Driver            string `koanf:"driver" validate:"omitempty,oneof=fs s3"`
	Dir               string `koanf:"dir"`
	S3Bucket          string `koanf:"s3_bucket" validate:"required_if=Driver s3"`
	S3Region          string `koanf:"s3_region"`
	S3Endpoint        string `koanf:"s3_endpoint"`
	S3AccessKeyID     string `koanf:"s3_access_key_id"`
	S3SecretAccessKey string `koanf:"s3_secret_access_key"`
}

// LoadConfig loads configuration from environment variables, unmarshals it
// into Config, validates it, and applies defaults.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKeyValue), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	mainConfig.applyDefaults(func(key string) bool { return k.String(key) != "" })

	// Service name and environment always follow the primary block.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// envKeyValue maps FUNNEL_A__B_C to a.b_c and splits list values.
func envKeyValue(key, value string) (string, interface{}) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")

	if sliceKeys[key] {
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return key, items
	}

	return key, value
}

// applyDefaults fills unset fields. Fields where zero is meaningful (a
// disabled limiter, an untaxed home state, no trial) are only defaulted
// when isSet reports the key missing.
func (c *Config) applyDefaults(isSet func(key string) bool) {
	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}

	if c.Integration.EmailProvider == "" {
		c.Integration.EmailProvider = "brevo"
	}
	if c.Integration.FromName == "" {
		c.Integration.FromName = "Riva Digital"
	}
	if c.Integration.BrevoBaseURL == "" {
		c.Integration.BrevoBaseURL = "https://api.brevo.com/v3"
	}

	if c.Auth.DownloadTokenTTL == 0 {
		c.Auth.DownloadTokenTTL = 24
	}

	if c.Pricing.HomeState == "" {
		c.Pricing.HomeState = "MI"
	}
	if !isSet("pricing.home_state_tax_rate") {
		c.Pricing.HomeStateTaxRate = 0.06
	}
	if !isSet("pricing.trial_days") {
		c.Pricing.TrialDays = 14
	}

	if c.RateLimit.Store == "" {
		c.RateLimit.Store = "memory"
	}
	if !isSet("rate_limit.limit") {
		c.RateLimit.Limit = 5
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = 15 * 60
	}

	if c.Assets.Driver == "" {
		c.Assets.Driver = "fs"
	}
	if c.Assets.Dir == "" {
		c.Assets.Dir = "assets/lead-magnets"
	}
	if c.Assets.S3Region == "" {
		c.Assets.S3Region = "us-east-1"
	}
}
