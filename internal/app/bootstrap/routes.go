// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	auditfeature "github.com/findxvision/casewatch/internal/app/features/auditlog"
	authfeature "github.com/findxvision/casewatch/internal/app/features/auth"
	casesfeature "github.com/findxvision/casewatch/internal/app/features/cases"
	compliancefeature "github.com/findxvision/casewatch/internal/app/features/compliance"
	detectionsfeature "github.com/findxvision/casewatch/internal/app/features/detections"
	healthfeature "github.com/findxvision/casewatch/internal/app/features/health"
	notificationsfeature "github.com/findxvision/casewatch/internal/app/features/notifications"
	"github.com/findxvision/casewatch/internal/app/notify"
	casesvc "github.com/findxvision/casewatch/internal/app/services/cases"
	compliancesvc "github.com/findxvision/casewatch/internal/app/services/compliance"
	"github.com/findxvision/casewatch/internal/app/store/audit"
	casestore "github.com/findxvision/casewatch/internal/app/store/cases"
	detectstore "github.com/findxvision/casewatch/internal/app/store/detections"
	notifstore "github.com/findxvision/casewatch/internal/app/store/notifications"
	userstore "github.com/findxvision/casewatch/internal/app/store/users"
	sysauth "github.com/findxvision/casewatch/internal/app/system/auth"
	"github.com/findxvision/casewatch/internal/app/system/authz"
	"github.com/findxvision/casewatch/internal/app/system/ratelimit"
	"github.com/findxvision/casewatch/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and the Startup hook have completed, so the notification pipeline
// and workers built there are already running.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	users := userstore.New(db)
	cases := casestore.New(db)
	notifs := notifstore.New(db)
	auditStore := audit.New(db)
	detections := detectstore.New(db)

	recorder := rt.recorder

	tokens := sysauth.NewTokens(appCfg.JWTSecret, appCfg.TokenTTL)
	identity := &sysauth.Middleware{
		Tokens: tokens,
		Users:  users,
		Audit:  recorder,
		Log:    logger,
	}
	adminOnly := authz.RequireRole(recorder, models.RoleAdministrator)
	officialOnly := authz.RequireRole(recorder, models.RoleLawEnforcement, models.RoleAdministrator)

	var limiter *ratelimit.Limiter
	var cooldown *ratelimit.Cooldown
	if deps.Redis != nil {
		limiter = ratelimit.New(deps.Redis, "login", appCfg.LoginRateLimit, appCfg.LoginRateWindow)
		cooldown = ratelimit.NewCooldown(deps.Redis, "detection", appCfg.DetectionCooldown)
	}

	emitter := &notify.AsyncEmitter{Dispatcher: rt.dispatcher, Log: logger}
	caseService := casesvc.New(cases, emitter, logger)
	complianceService := compliancesvc.New(users, cases, notifs, auditStore, appCfg.AuditRetention, logger)

	var alertUserID primitive.ObjectID
	if appCfg.DetectionAlertUserID != "" {
		alertUserID, _ = primitive.ObjectIDFromHex(appCfg.DetectionAlertUserID)
	}

	r := chi.NewRouter()

	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Redis, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	authHandler := authfeature.NewHandler(users, tokens, limiter, recorder, logger)
	r.Mount("/auth", authfeature.Routes(authHandler, identity.Require))

	casesHandler := casesfeature.NewHandler(caseService, rt.images, recorder, logger)
	r.With(identity.Require).Mount("/cases", casesfeature.Routes(casesHandler))

	notifHandler := notificationsfeature.NewHandler(notifs, users, rt.senders, logger)
	r.With(identity.Require).Mount("/notifications", notificationsfeature.Routes(notifHandler, adminOnly))

	detectionsHandler := detectionsfeature.NewHandler(detections, notifs, users,
		rt.senders[models.ChannelSMS], cooldown, recorder, alertUserID, logger)
	r.With(identity.Require, officialOnly).Mount("/detections", detectionsfeature.Routes(detectionsHandler))

	complianceHandler := compliancefeature.NewHandler(complianceService, recorder, logger)
	r.With(identity.Require).Mount("/compliance", compliancefeature.Routes(complianceHandler, adminOnly))

	auditHandler := auditfeature.NewHandler(auditStore, users, logger)
	r.With(identity.Require, adminOnly).Mount("/audit", auditfeature.Routes(auditHandler))

	return r, nil
}
