// main.go
//
// Rental manager: landlord back office with live collection snapshots
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of rentalmanager.
// rentalmanager is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// rentalmanager is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with rentalmanager.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/rentalmanager/internal/broker"
	"github.com/localnerve/rentalmanager/internal/config"
	"github.com/localnerve/rentalmanager/internal/database"
	"github.com/localnerve/rentalmanager/internal/gateway"
	"github.com/localnerve/rentalmanager/internal/handlers"
	"github.com/localnerve/rentalmanager/internal/jobs"
	"github.com/localnerve/rentalmanager/internal/logger"
	"github.com/localnerve/rentalmanager/internal/records"
	"github.com/localnerve/rentalmanager/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	_ "github.com/localnerve/rentalmanager/docs/api" // Swagger docs
)

// @title Rental Manager API
// @version 1.0.0
// @description Landlord back office: tenants, properties, payments and occupancies with live snapshots
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/rentalmanager
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	logger.InitLogger(cfg.LogLevel)
	log := logger.Default()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	codec, err := records.NewCodec()
	if err != nil {
		log.Fatalf("Failed to load record schemas: %v", err)
	}

	var changes broker.Broker
	if cfg.RedisURL != "" {
		changes, err = broker.NewRedisBroker(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Failed to create redis broker: %v", err)
		}
		log.WithField("redis", cfg.RedisURL).Info("change notifications through redis")
	} else {
		changes = broker.NewMemoryBroker()
		log.Info("change notifications in process only")
	}
	defer changes.Close()

	auth, err := services.NewAuthorizerAuthenticator(cfg, "")
	if err != nil {
		log.Fatalf("Failed to initialize authorizer: %v", err)
	}

	store := services.NewRecordStore(db, changes, codec)
	registry := gateway.NewRegistry(auth, store, cfg.SessionIdleTimeout)
	prometheus.MustRegister(registry.Collector())

	scheduler, err := jobs.NewScheduler(registry, cfg.ReapInterval)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.Middleware())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Output: logrus.StandardLogger().Writer(),
		Format: "${status} - ${method} ${path} ${latency} ${locals:requestid}\n",
	}))
	app.Use(compress.New(compress.Config{
		// event streams are flushed per event
		Next: func(c *fiber.Ctx) bool { return strings.HasPrefix(c.Path(), "/api/stream/") },
	}))

	// Prometheus metrics
	metrics := fiberprometheus.New("rentalmanager")
	metrics.RegisterAt(app, "/metrics")
	app.Use(metrics.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	done := make(chan struct{})
	handlers.Register(app, handlers.Dependencies{
		Config:   cfg,
		DB:       db,
		Broker:   changes,
		Registry: registry,
		Done:     done,
	})
	app.Use(handlers.NotFound)

	scheduler.Start()

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("Gracefully shutting down...")
		close(done)
		_ = app.Shutdown()
	}()

	// Start server
	log.Infof("Starting server on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	if err := scheduler.Stop(); err != nil {
		log.WithError(err).Warn("job scheduler did not stop cleanly")
	}
	registry.Close()

	log.Info("Server stopped")
}
