// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"github.com/findxvision/casewatch/internal/app/store/audit"
	casestore "github.com/findxvision/casewatch/internal/app/store/cases"
	detectstore "github.com/findxvision/casewatch/internal/app/store/detections"
	notifstore "github.com/findxvision/casewatch/internal/app/store/notifications"
	userstore "github.com/findxvision/casewatch/internal/app/store/users"
	"go.uber.org/zap"
)

// EnsureSchema creates the indexes every store depends on: the unique
// email and case-number indexes, the 2dsphere and text indexes on
// cases, and the retry-sweep index on notifications.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	type indexed interface {
		EnsureIndexes(ctx context.Context) error
	}
	stores := map[string]indexed{
		"users":         userstore.New(db),
		"cases":         casestore.New(db),
		"notifications": notifstore.New(db),
		"audit_logs":    audit.New(db),
		"detections":    detectstore.New(db),
	}
	for name, s := range stores {
		if err := s.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", name, err)
		}
	}
	logger.Info("database indexes ensured")
	return nil
}
