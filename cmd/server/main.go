package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/middleware"

	"github.com/quickdine/quickdine/internal/auth"
	"github.com/quickdine/quickdine/internal/dining"
	"github.com/quickdine/quickdine/internal/mongo"
	"github.com/quickdine/quickdine/internal/stream"
	"github.com/quickdine/quickdine/pkg"
)

const (
	appNamespace = "QUICKDINE"
	appName      = "quickdine"
	appVersion   = "0.1.0"
)

const tokenCleanupInterval = 10 * time.Minute

func main() {
	config, err := apt.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("%s(%s) cannot setup: %v", appName, appVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := apt.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	baseRepo := mongo.NewBaseRepo(config, logger)
	err = baseRepo.Start(ctx)
	if err != nil {
		log.Fatalf("%s(%s) cannot start base repository: %v", appName, appVersion, err)
	}

	db := baseRepo.GetDatabase()
	if db == nil {
		log.Fatalf("%s(%s) cannot initialize repository database: %v", appName, appVersion, errors.New("repository database is nil"))
	}

	tableRepo := mongo.NewTableRepo(db)
	orderRepo := mongo.NewOrderRepo(db)
	floorPlanRepo := mongo.NewFloorPlanRepo(db)

	natsURL := config.GetStringOrDef("nats.url", "nats://localhost:4222")

	pub, err := pkg.NewNATSPublisher(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS publisher: %v", appName, appVersion, err)
	}

	sub, err := pkg.NewNATSSubscriber(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS subscriber: %v", appName, appVersion, err)
	}

	coordinator := dining.NewCoordinator(tableRepo, orderRepo, pub, logger)
	lazyCreate := config.GetStringOrDef("tables.lazy.create", "true")
	coordinator.SetLazyCreate(lazyCreate != "false")

	tokenTTL := config.GetStringOrDef("auth.token.ttl", "24h")
	ttl, err := time.ParseDuration(tokenTTL)
	if err != nil {
		log.Fatalf("%s(%s) invalid auth.token.ttl: %v", appName, appVersion, err)
	}
	tokenStore := auth.NewTokenStore(ttl)
	tokenStore.StartCleanup(ctx, tokenCleanupInterval)

	credentials := staffCredentials(config)
	if len(credentials) == 0 {
		logger.Info("no staff credentials configured, staff routes will reject all requests")
	}
	authHandler := auth.NewHandler(tokenStore, credentials, logger)
	staffGate := auth.StaffGate(tokenStore)

	hub := stream.NewHub(logger)
	relay := stream.NewRelay(sub, pub, hub, logger)
	streamHandler := stream.NewHandler(hub, pub, staffGate, logger)

	hd := dining.HandlerDeps{
		Coordinator:   coordinator,
		TableRepo:     tableRepo,
		OrderRepo:     orderRepo,
		FloorPlanRepo: floorPlanRepo,
		StaffGate:     staffGate,
	}
	diningHandler := dining.NewHandler(hd, config, logger)

	publisherLifecycle := apt.LifecycleHooks{
		OnStop: func(context.Context) error {
			return pub.Close()
		},
	}

	subLifecycle := apt.LifecycleHooks{
		OnStop: func(context.Context) error {
			return sub.Close()
		},
	}

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger: logger,
	})

	lifecycles := []interface{}{
		apt.LifecycleHooks{OnStop: baseRepo.Stop},
		relay,
		publisherLifecycle,
		subLifecycle,
	}

	options := []apt.Option{
		apt.WithConfig(config),
		apt.WithLogger(logger),
		apt.WithHTTPMiddleware(stack...),
		apt.WithHTTPServerModules("web.port", diningHandler, authHandler, streamHandler),
		apt.WithLifecycle(lifecycles...),
		apt.WithHealthChecks(appName),
	}

	ms := apt.NewMicro(options...)
	logger.Infof("Starting %s(%s)", appName, appVersion)

	err = ms.Run(ctx)
	if err != nil {
		_ = baseRepo.Stop(context.Background())
		log.Fatalf("%s(%s) stopped: %v", appName, appVersion, err)
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}

// staffCredentials reads the configured staff login. A single admin account
// is supported: username plus a bcrypt password hash.
func staffCredentials(config *apt.Config) []auth.Credential {
	username := config.GetStringOrDef("auth.admin.username", "")
	hash := config.GetStringOrDef("auth.admin.password.hash", "")
	if username == "" || hash == "" {
		return nil
	}
	return []auth.Credential{{Username: username, PasswordHash: hash}}
}
