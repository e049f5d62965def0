// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level and CORS. AppConfig is everything specific
// to CaseWatch: backing stores, delivery channel credentials, audit and
// retention policy, and worker cadence.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Bearer-token auth
	JWTSecret string        // HS256 signing secret (must be strong in production)
	TokenTTL  time.Duration // Access token lifetime

	// Seeded administrator account. Blank email disables seeding.
	AdminEmail    string
	AdminPassword string

	// Redis (login rate limiting, detection alert throttling).
	// Blank disables both; the service degrades rather than failing.
	RedisURL        string
	LoginRateLimit  int64         // Max login attempts per window per client+email
	LoginRateWindow time.Duration // Rate limit window

	// Email channel (resend)
	ResendAPIKey string
	MailFrom     string // From address, e.g. alerts@findxvision.org

	// SMS channel (Twilio)
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	// WhatsApp channel (Meta Graph API)
	WhatsAppToken   string
	WhatsAppPhoneID string

	// Case image storage (S3-compatible)
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string // Optional CDN/base URL for serving objects

	// Audit recording destinations: "all" (db+log), "db", "log", "off"
	AuditLogAuth  string
	AuditLogCase  string
	AuditLogAdmin string

	// Retention and worker cadence
	AuditRetention    time.Duration // How long audit rows are kept
	RetentionInterval time.Duration // How often the retention purge runs
	RetryInterval     time.Duration // How often failed notifications are re-attempted

	// Detection alerting
	DetectionAlertUserID string        // ObjectID hex of the alert recipient (blank disables alerts)
	DetectionCooldown    time.Duration // Suppression window for repeat matches of the same person
}
