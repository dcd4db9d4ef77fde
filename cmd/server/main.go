package main

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"

	"CapIot.dashboard/internal/chat"
	"CapIot.dashboard/internal/config"
	"CapIot.dashboard/internal/controller"
	"CapIot.dashboard/internal/heatmap"
	"CapIot.dashboard/internal/logging"
	"CapIot.dashboard/internal/publisher"
	"CapIot.dashboard/internal/repository"
	"CapIot.dashboard/internal/routes"
	"CapIot.dashboard/internal/server"
	"CapIot.dashboard/internal/service"
	"CapIot.dashboard/internal/view"
	"github.com/charmbracelet/log"
	"github.com/rs/cors"
)

const heatmapImageURL = "/public/temperature_heatmap.png"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info("Shutdown signal received", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		log.Fatal("Dashboard error", "err", err)
	}
}

func run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, "dashboard")
	if err != nil {
		return err
	}

	repo := repository.NewSensorAPIRepository(cfg.SensorAPIURL, cfg.SensorAPIKey, cfg.SensorAPISecret, cfg.UpstreamTimeout)

	var pub service.SnapshotPublisher = publisher.Nop{}
	if cfg.MQTTBroker != "" {
		mqttPub, err := publisher.Connect(publisher.Settings{
			Broker:      cfg.MQTTBroker,
			ClientID:    cfg.MQTTClientID,
			Username:    cfg.MQTTUsername,
			Password:    cfg.MQTTPassword,
			TopicPrefix: cfg.MQTTTopicPrefix,
		}, logger.WithPrefix("mqtt"))
		if err != nil {
			return err
		}
		defer mqttPub.Close()
		pub = mqttPub
		logger.Info("Publishing snapshots to MQTT", "broker", cfg.MQTTBroker, "prefix", cfg.MQTTTopicPrefix)
	}

	poller := service.NewPoller(repo, cfg.PollInterval,
		service.WithPublisher(pub),
		service.WithLogger(logger.WithPrefix("poller")),
	)

	runner := heatmap.NewRunner(cfg.HeatmapCommand,
		heatmap.WithArgs(cfg.HeatmapArgs...),
		heatmap.WithTimeout(cfg.HeatmapTimeout),
	)

	page, err := view.NewPage()
	if err != nil {
		return err
	}

	c := controller.NewDashboardController(controller.Deps{
		Proxy:        service.NewProxyService(repo),
		Snapshots:    poller,
		Occupancy:    service.NewOccupancyService(nil, poller),
		Heatmap:      service.NewHeatmapService(runner, heatmapImageURL, logger.WithPrefix("heatmap")),
		Page:         page,
		PollInterval: cfg.PollInterval,
		Logger:       logger,
	})

	hub := chat.NewHub(logger.WithPrefix("chat"))
	router := routes.SetupRouter(c, routes.Options{
		Chat:      chat.NewHandler(hub, allowOrigins(cfg.AllowedOrigins)),
		PublicDir: cfg.PublicDir,
		Logger:    logger,
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		poller.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()

	logger.Info("Dashboard available", "url", cfg.DashboardURL)
	err = server.New(cfg.ListenAddress(), corsHandler, logger).Start(ctx)
	cancel()
	wg.Wait()
	return err
}

// allowOrigins accepts same-host websocket upgrades and the configured origins.
func allowOrigins(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(allowed, "*") || slices.Contains(allowed, origin) {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}
