// README: Entry point; loads config, wires storage, integrations and both flows, then serves the HTTP API.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"oortgo/internal/ai"
	"oortgo/internal/clock"
	"oortgo/internal/config"
	httptransport "oortgo/internal/http"
	"oortgo/internal/infra"
	"oortgo/internal/maps"
	"oortgo/internal/modules/driver"
	"oortgo/internal/modules/notify"
	"oortgo/internal/modules/passenger"
	"oortgo/internal/modules/pricing"
	"oortgo/internal/modules/routing"
	"oortgo/internal/modules/wallet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := infra.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, table, closeStores, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("storage init failed", "store", cfg.Store, "error", err)
		os.Exit(1)
	}
	defer closeStores()

	walletSvc := wallet.NewService(repo, cfg.SeedDemo, logger)
	engine := pricing.NewEngine(table)

	var sched clock.Scheduler = clock.Real{}
	if cfg.SimScale != 1 {
		sched = clock.Scaled{Base: clock.Real{}, Factor: cfg.SimScale}
	}

	paxDeps := passenger.Deps{
		Pricing: engine,
		Drivers: walletSvc,
		Clock:   sched,
		Logger:  logger,
	}
	var router routing.Router
	if cfg.Maps.APIKey != "" {
		client, err := maps.NewClient(cfg.Maps.APIKey)
		if err != nil {
			logger.Error("maps init failed", "error", err)
			os.Exit(1)
		}
		router = maps.NewRouteService(client)
		paxDeps.Geocoder = maps.NewGeocodeService(client)
	} else {
		logger.Warn("OORT_MAPS_API_KEY not set, routes fall back to straight lines")
	}
	routes := routing.NewService(router, cfg.Maps.RouteTimeout, logger)
	paxDeps.Routes = routes

	if cfg.AI.GeminiKey != "" {
		extractor, err := ai.NewGeminiExtractor(ctx, cfg.AI.GeminiKey)
		if err != nil {
			logger.Error("gemini init failed", "error", err)
			os.Exit(1)
		}
		defer extractor.Close()
		paxDeps.Intents = extractor
	}

	paxCues, drvCues := notify.NewRecorder(), notify.NewRecorder()
	paxNotify := notify.Multi{notify.NewLogNotifier(logger, "passenger"), paxCues}
	drvNotify := notify.Multi{notify.NewLogNotifier(logger, "driver"), drvCues}
	if cfg.Firebase.FCMToken != "" {
		fcm, err := infra.NewMessagingClient(ctx, cfg.Firebase.CredentialsFile)
		if err != nil {
			logger.Error("firebase messaging init failed", "error", err)
			os.Exit(1)
		}
		paxNotify = append(paxNotify, notify.NewPushNotifier(fcm, cfg.Firebase.FCMToken, "Oort", logger))
		drvNotify = append(drvNotify, notify.NewPushNotifier(fcm, cfg.Firebase.FCMToken, "Oort Driver", logger))
	}
	paxDeps.Notifier = paxNotify

	paxFlow := passenger.NewFlow(paxDeps, passenger.DefaultOptions())
	drvFlow := driver.NewFlow(driver.Deps{
		Wallet:   walletSvc,
		Routes:   routes,
		Notifier: drvNotify,
		Clock:    sched,
		Logger:   logger,
	}, driver.DefaultOptions())

	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Passenger:     paxFlow,
		Driver:        drvFlow,
		Wallet:        walletSvc,
		Pricing:       engine,
		PassengerCues: paxCues,
		DriverCues:    drvCues,
		Logger:        logger,
	})
	server := httptransport.NewServer(cfg.HTTP.Addr, handler)
	if err := httptransport.Serve(ctx, server, logger); err != nil {
		logger.Error("http server stopped", "error", err)
		os.Exit(1)
	}
}
