package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/uydev/asset-tracker/internal/config"
	"github.com/uydev/asset-tracker/internal/db"
	"github.com/uydev/asset-tracker/internal/events"
	"github.com/uydev/asset-tracker/internal/handlers"
	"github.com/uydev/asset-tracker/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found")
	}
	cfg := config.Load()

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	log.SetFormatter(&log.JSONFormatter{})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	client, err := db.ConnectMongo(ctx, cfg.MongoURI)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	log.WithField("database", cfg.MongoDB).Info("connected to MongoDB")

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.MQTTBrokerURL != "" {
		mqttPub, err := events.NewMQTTPublisher(cfg.MQTTBrokerURL, cfg.MQTTClientID)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to MQTT broker")
		}
		publisher = mqttPub
		log.WithField("broker", cfg.MQTTBrokerURL).Info("event publishing enabled")
	}

	collections := db.NewCollections(client, cfg.MongoDB)

	coordinator := service.NewCoordinator(collections.Assets, collections.Employees, collections.Assignments, collections.Categories, publisher)
	analytics := service.NewAnalytics(collections.Assets, collections.Assignments, collections.Maintenance, collections.Categories)
	tracker := service.NewMaintenanceTracker(collections.Assets, collections.Categories, collections.Maintenance, publisher)
	workflow := service.NewWorkflow(collections.Requests, collections.Assets, publisher)

	router := handlers.NewRouter(handlers.Routes{
		Assets:      handlers.NewAssetHandler(collections.Assets, collections.Categories),
		Employees:   handlers.NewEmployeeHandler(collections.Employees, collections.Assignments),
		Categories:  handlers.NewCategoryHandler(collections.Categories, collections.Assets),
		Assignments: handlers.NewAssignmentHandler(coordinator, collections.Assignments),
		Maintenance: handlers.NewMaintenanceHandler(tracker, collections.Maintenance),
		Requests:    handlers.NewRequestHandler(workflow, collections.Requests),
		Analytics:   handlers.NewAnalyticsHandler(analytics),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown failed")
	}
	publisher.Close()
	if err := client.Disconnect(shutdownCtx); err != nil {
		log.WithError(err).Error("mongo disconnect failed")
	}
}
