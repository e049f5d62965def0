// internal/app/bootstrap/seed.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	userstore "github.com/findxvision/casewatch/internal/app/store/users"
	"github.com/findxvision/casewatch/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ensureAdmin guarantees an ADMINISTRATOR account exists for the
// configured email so a fresh deployment has a working login. An
// existing account under that email is promoted; a missing one is
// created with the configured password.
func ensureAdmin(ctx context.Context, deps DBDeps, email, password string, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)

	existing, err := users.GetByEmail(ctx, email)
	if err == nil {
		if existing.Role == models.RoleAdministrator && existing.IsActive {
			return nil
		}
		_, err = deps.MongoDatabase.Collection("users").UpdateByID(ctx, existing.ID, bson.M{
			"$set": bson.M{"role": models.RoleAdministrator, "is_active": true},
		})
		if err != nil {
			return fmt.Errorf("promote admin account: %w", err)
		}
		logger.Info("promoted existing account to administrator",
			zap.String("email", email))
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("look up admin account: %w", err)
	}

	if password == "" {
		return fmt.Errorf("admin_password is required to create the %s account", email)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	_, err = users.Create(ctx, models.User{
		Email:             email,
		PasswordHash:      string(hash),
		FirstName:         "System",
		LastName:          "Administrator",
		Role:              models.RoleAdministrator,
		IsActive:          true,
		NotificationPrefs: models.NotificationPrefs{InApp: true},
	})
	if err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}
	logger.Info("created administrator account", zap.String("email", email))
	return nil
}
