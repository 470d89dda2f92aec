package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/joho/godotenv"
	"github.com/pawtrail/walk-tracker/internal/handlers"
	"github.com/pawtrail/walk-tracker/internal/hub"
	"github.com/pawtrail/walk-tracker/internal/services"
	"github.com/pawtrail/walk-tracker/internal/store"
	"github.com/pawtrail/walk-tracker/internal/utils"
	"github.com/pawtrail/walk-tracker/pkg/file"
	"github.com/pawtrail/walk-tracker/pkg/mqtt"
	"github.com/rs/zerolog"
)

func main() {
	// Set up structured logging with JSON output
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Secrets come from the environment; a local .env is optional
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg("No .env file found, relying on the environment")
	}

	fileClient := file.NewFileService()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	config, err := utils.LoadConfig(configPath, fileClient)
	if err != nil {
		logger.Fatal().Err(err).Str("path", configPath).Msg("Failed to load configuration")
	}

	token := os.Getenv("INFLUXDB_TOKEN")
	if token == "" {
		logger.Fatal().Msg("INFLUXDB_TOKEN environment variable is not set")
	}

	// Set up the location store
	influxClient := influxdb2.NewClient(config.InfluxDB.URL, token)
	locationStore := store.NewInfluxLocationStore(
		influxClient,
		config.InfluxDB.Org,
		config.InfluxDB.Bucket,
		config.InfluxDB.Timeout.Std(),
		config.InfluxDB.MaxQueryRows,
		logger,
	)
	defer locationStore.Close()

	// Set up the broadcast hub and its send worker pool
	pool := utils.NewWorkerPool(config.Hub.Workers, config.Hub.QueueSize)
	broadcastHub := hub.NewHub(pool, config.Hub.SendTimeout.Std(), logger)

	trackingService := services.NewTrackingService(locationStore, broadcastHub, config.Tracking.MaxLookback.Std(), logger)

	// Wire the HTTP surface
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handlers.RegisterRoutes(router,
		handlers.NewLocationHandler(trackingService, logger),
		handlers.NewWSHandler(broadcastHub, logger),
		handlers.NewHealthHandler(broadcastHub, logger),
	)

	registry := services.NewRegistry(logger)
	registry.RegisterService("http", services.NewHTTPServer(
		fmt.Sprintf(":%d", config.Server.Port),
		router,
		config.Server.ShutdownTimeout.Std(),
		logger,
	))

	// Optional MQTT bridge for collar hardware publishing samples directly
	var mqttClient *mqtt.MqttService
	if config.MQTT.Enabled {
		mqttClient = mqtt.NewMqttService(fileClient)
		clientID := config.MQTT.ClientID + "-" + uuid.New().String()
		if err := mqttClient.Initialize(config.MQTT.Broker, clientID, config.MQTT.CACertificate); err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize MQTT connection")
		}
		registry.RegisterService("mqtt-ingest", services.NewMQTTIngestService(
			config.MQTT.Topic,
			config.MQTT.QOS,
			mqttClient,
			trackingService,
			logger,
		))
	}

	if err := registry.StartServices(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start services")
	}
	logger.Info().Int("port", config.Server.Port).Msg("Walk tracking service started")

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	logger.Info().Msg("Shutting down gracefully...")
	if err := registry.StopServices(); err != nil {
		logger.Error().Err(err).Msg("Service shutdown reported errors")
	}
	broadcastHub.CloseAll()
	pool.Shutdown()
	if mqttClient != nil {
		mqttClient.Disconnect(250)
	}
}
