package services

import (
	"context"
	"fmt"

	"github.com/localnerve/rentalmanager/internal/broker"
	"github.com/localnerve/rentalmanager/internal/config"
	"github.com/localnerve/rentalmanager/internal/logger"
	"github.com/localnerve/rentalmanager/internal/utils"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Authorizer   string            `json:"authorizer"`
	Broker       string            `json:"broker"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

func (r *HealthCheckResult) fail(message string) {
	r.Status = "unhealthy"
	if r.ErrorMessage == "" {
		r.ErrorMessage = message
	} else {
		r.ErrorMessage += "; " + message
	}
}

// HealthCheck checks the database, the Authorizer service and, when given, the change broker
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB, b broker.Broker) HealthCheckResult {
	log := logger.FromContext(ctx)
	result := HealthCheckResult{
		Status:  "healthy",
		Broker:  "disabled",
		Details: make(map[string]string),
	}

	// Check database connectivity
	sqlDB, err := db.DB()
	if err != nil {
		result.Database = "error"
		result.Details["database_error"] = err.Error()
		result.fail(fmt.Sprintf("Database connection error: %v", err))
		log.WithError(err).Warn("health check failed - database connection")
	} else if err := sqlDB.PingContext(ctx); err != nil {
		result.Database = "unreachable"
		result.Details["database_ping_error"] = err.Error()
		result.fail(fmt.Sprintf("Database ping failed: %v", err))
		log.WithError(err).Warn("health check failed - database ping")
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBDatabase
	}

	// Check Authorizer connectivity
	if err := utils.PingAuthorizer(cfg.AuthzURL); err != nil {
		result.Authorizer = "unreachable"
		result.Details["authorizer_error"] = err.Error()
		result.fail(fmt.Sprintf("Authorizer ping failed: %v", err))
		log.WithError(err).Warn("health check failed - authorizer ping")
	} else {
		result.Authorizer = "ok"
		result.Details["authorizer_url"] = cfg.AuthzURL
	}

	if b != nil {
		if err := b.Ping(ctx); err != nil {
			result.Broker = "unreachable"
			result.Details["broker_error"] = err.Error()
			result.fail(fmt.Sprintf("Broker ping failed: %v", err))
			log.WithError(err).Warn("health check failed - broker ping")
		} else {
			result.Broker = "ok"
		}
	}

	if result.Status == "healthy" {
		log.Debug("health check passed - all systems operational")
	}

	return result
}
