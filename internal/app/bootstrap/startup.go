// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"github.com/findxvision/casewatch/internal/app/notify"
	"github.com/findxvision/casewatch/internal/app/storage"
	"github.com/findxvision/casewatch/internal/app/store/audit"
	notifstore "github.com/findxvision/casewatch/internal/app/store/notifications"
	userstore "github.com/findxvision/casewatch/internal/app/store/users"
	"github.com/findxvision/casewatch/internal/app/system/auditlog"
	"github.com/findxvision/casewatch/internal/app/system/timeouts"
	"github.com/findxvision/casewatch/internal/app/system/workers"
	"github.com/findxvision/casewatch/internal/domain/models"
	"go.uber.org/zap"
)

// runtime holds long-lived pieces built in Startup and shared with
// BuildHandler and Shutdown.
type runtime struct {
	senders    map[string]notify.Sender
	dispatcher *notify.Dispatcher
	recorder   *auditlog.Recorder
	images     *storage.ImageStore
	retrySweep *workers.RetrySweep
	retention  *workers.AuditRetention
}

var rt runtime

// Startup builds the notification pipeline, the audit recorder and the
// image store, then starts the background workers. It runs after DB
// connections and schema setup, before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeout overrides applied", zap.Int("count", n))
	}

	db := deps.MongoDatabase
	users := userstore.New(db)
	rows := notifstore.New(db)

	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, deps, appCfg.AdminEmail, appCfg.AdminPassword, logger); err != nil {
			return fmt.Errorf("seed administrator: %w", err)
		}
	}

	rt.recorder = auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Case:  appCfg.AuditLogCase,
		Admin: appCfg.AuditLogAdmin,
	})

	rt.senders = map[string]notify.Sender{
		models.ChannelEmail:    notify.NewEmailSender(appCfg.ResendAPIKey, appCfg.MailFrom),
		models.ChannelSMS:      notify.NewSMSSender(appCfg.TwilioAccountSID, appCfg.TwilioAuthToken, appCfg.TwilioFromNumber),
		models.ChannelWhatsApp: notify.NewWhatsAppSender(appCfg.WhatsAppToken, appCfg.WhatsAppPhoneID),
	}
	for ch, s := range rt.senders {
		logger.Info("notification channel", zap.String("channel", ch), zap.Bool("enabled", s.Enabled()))
	}

	rt.dispatcher = notify.NewDispatcher(users, rows, rt.senders, logger, 0)

	images, err := storage.NewImageStore(storage.Config{
		Endpoint:      appCfg.MinioEndpoint,
		AccessKey:     appCfg.MinioAccessKey,
		SecretKey:     appCfg.MinioSecretKey,
		Bucket:        appCfg.MinioBucket,
		UseSSL:        appCfg.MinioUseSSL,
		PublicBaseURL: appCfg.MinioPublicURL,
	})
	if err != nil {
		return fmt.Errorf("image store: %w", err)
	}
	rt.images = images
	if !images.Enabled() {
		logger.Warn("image storage not configured; case image uploads disabled")
	}

	rt.retrySweep = workers.NewRetrySweep(rows, rt.dispatcher, logger, appCfg.RetryInterval)
	rt.retrySweep.Start()

	rt.retention = workers.NewAuditRetention(audit.New(db), rt.recorder, logger, appCfg.RetentionInterval, appCfg.AuditRetention)
	rt.retention.Start()

	return nil
}
