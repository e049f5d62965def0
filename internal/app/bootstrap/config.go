// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for CaseWatch.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: CASEWATCH_MONGO_URI, CASEWATCH_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "casewatch", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Bearer-token auth
	{Name: "jwt_secret", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "JWT signing secret (must be strong in production)"},
	{Name: "token_ttl", Default: "24h", Desc: "Access token lifetime (e.g., 24h, 12h)"},

	// Seeded administrator account
	{Name: "admin_email", Default: "", Desc: "Email of the seeded administrator account (blank disables seeding)"},
	{Name: "admin_password", Default: "", Desc: "Password for the seeded administrator (required when the account does not exist yet)"},

	// Redis
	{Name: "redis_url", Default: "", Desc: "Redis URL for rate limiting and alert throttling (blank disables)"},
	{Name: "login_rate_limit", Default: 10, Desc: "Max login attempts per window per client"},
	{Name: "login_rate_window", Default: "15m", Desc: "Login rate limit window"},

	// Email channel (resend)
	{Name: "resend_api_key", Default: "", Desc: "Resend API key for the EMAIL channel (blank disables)"},
	{Name: "mail_from", Default: "alerts@findxvision.org", Desc: "From email address"},

	// SMS channel (Twilio)
	{Name: "twilio_account_sid", Default: "", Desc: "Twilio account SID for the SMS channel (blank disables)"},
	{Name: "twilio_auth_token", Default: "", Desc: "Twilio auth token"},
	{Name: "twilio_from_number", Default: "", Desc: "Twilio sending number (E.164)"},

	// WhatsApp channel (Meta Graph API)
	{Name: "whatsapp_token", Default: "", Desc: "Meta Graph API access token for the WHATSAPP channel (blank disables)"},
	{Name: "whatsapp_phone_id", Default: "", Desc: "WhatsApp Business phone number ID"},

	// Case image storage
	{Name: "minio_endpoint", Default: "", Desc: "S3-compatible storage endpoint (blank disables image uploads)"},
	{Name: "minio_access_key", Default: "", Desc: "Storage access key"},
	{Name: "minio_secret_key", Default: "", Desc: "Storage secret key"},
	{Name: "minio_bucket", Default: "casewatch-images", Desc: "Bucket for case images"},
	{Name: "minio_use_ssl", Default: true, Desc: "Use TLS for storage connections"},
	{Name: "minio_public_url", Default: "", Desc: "Public base URL for stored objects (blank derives from endpoint)"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_case", Default: "all", Desc: "Case mutation logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Retention and worker cadence
	{Name: "audit_retention", Default: "61320h", Desc: "Audit retention horizon (default: 7 years)"},
	{Name: "retention_interval", Default: "24h", Desc: "How often the audit retention purge runs"},
	{Name: "retry_interval", Default: "1m", Desc: "How often failed notifications are re-attempted"},

	// Detection alerting
	{Name: "detection_alert_user_id", Default: "", Desc: "ObjectID hex of the detection alert recipient (blank disables alerts)"},
	{Name: "detection_cooldown", Default: "15m", Desc: "Suppression window for repeat matches of the same person"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, CASEWATCH_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CASEWATCH", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		TokenTTL:  appValues.Duration("token_ttl", 24*time.Hour),

		AdminEmail:    appValues.String("admin_email"),
		AdminPassword: appValues.String("admin_password"),

		RedisURL:        appValues.String("redis_url"),
		LoginRateLimit:  int64(appValues.Int("login_rate_limit")),
		LoginRateWindow: appValues.Duration("login_rate_window", 15*time.Minute),

		ResendAPIKey: appValues.String("resend_api_key"),
		MailFrom:     appValues.String("mail_from"),

		TwilioAccountSID: appValues.String("twilio_account_sid"),
		TwilioAuthToken:  appValues.String("twilio_auth_token"),
		TwilioFromNumber: appValues.String("twilio_from_number"),

		WhatsAppToken:   appValues.String("whatsapp_token"),
		WhatsAppPhoneID: appValues.String("whatsapp_phone_id"),

		MinioEndpoint:  appValues.String("minio_endpoint"),
		MinioAccessKey: appValues.String("minio_access_key"),
		MinioSecretKey: appValues.String("minio_secret_key"),
		MinioBucket:    appValues.String("minio_bucket"),
		MinioUseSSL:    appValues.Bool("minio_use_ssl"),
		MinioPublicURL: appValues.String("minio_public_url"),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogCase:  appValues.String("audit_log_case"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		AuditRetention:    appValues.Duration("audit_retention", 7*365*24*time.Hour),
		RetentionInterval: appValues.Duration("retention_interval", 24*time.Hour),
		RetryInterval:     appValues.Duration("retry_interval", time.Minute),

		DetectionAlertUserID: appValues.String("detection_alert_user_id"),
		DetectionCooldown:    appValues.Duration("detection_cooldown", 15*time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// CaseWatch validates the MongoDB URI format and the detection alert
// recipient early, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if coreCfg.Env == "prod" && appCfg.JWTSecret == "dev-only-change-me-please-0123456789ABCDEF" {
		return fmt.Errorf("jwt_secret must be set in production")
	}

	if appCfg.DetectionAlertUserID != "" {
		if _, err := primitive.ObjectIDFromHex(appCfg.DetectionAlertUserID); err != nil {
			return fmt.Errorf("detection_alert_user_id is not a valid ObjectID: %w", err)
		}
	}

	return nil
}
