// Package app wires configuration, storage and services into a gin engine.
// It is shared by the long-running server and the serverless handler.
package app

import (
	"context"
	"fmt"

	"saif-gifts/config"
	"saif-gifts/libs"
	"saif-gifts/middleware"
	"saif-gifts/pricing"
	"saif-gifts/repositories"
	"saif-gifts/routes"
	"saif-gifts/services"
	"saif-gifts/utils"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type App struct {
	Router   *gin.Engine
	Checkout *services.CheckoutService

	db     *pgxpool.Pool
	redis  *redis.Client
	events *libs.KafkaPublisher
	log    *zap.Logger
}

func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	decimal.MarshalJSONWithoutQuotes = true

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := config.RunMigrations(cfg.DSN(), cfg.MigrationsDir); err != nil {
		return nil, err
	}
	db, err := config.ConnectDB(ctx, cfg.DSN())
	if err != nil {
		return nil, err
	}
	rdb, err := config.ConnectRedis(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}
	a := &App{db: db, redis: rdb, log: log}

	taxRate := pricing.ParseTaxRate(cfg.TaxRate)
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)

	productRepo := repositories.NewProductRepository(db)
	userRepo := repositories.NewUserRepository(db)
	orderRepo := repositories.NewOrderRepository(db)

	var images services.ImageStore
	if store, err := libs.NewCloudinaryStore(libs.CloudinaryConfig{
		URL:       cfg.CloudinaryURL,
		CloudName: cfg.CloudName,
		APIKey:    cfg.CloudAPIKey,
		APISecret: cfg.CloudAPISecret,
		Folder:    cfg.CloudFolder,
	}, log); err != nil {
		log.Warn("product image uploads disabled", zap.Error(err))
	} else {
		images = store
	}

	var mailer services.OrderMailer
	if m, err := libs.NewMailer(libs.MailerConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.SMTPFrom,
		AdminTo:  cfg.AdminEmail,
	}); err != nil {
		log.Warn("order notification emails disabled", zap.Error(err))
	} else {
		mailer = m
	}

	var events services.OrderEventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		a.events = libs.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...)
		events = a.events
	} else {
		log.Info("order events disabled, KAFKA_BROKERS not set")
	}

	productService := services.NewProductService(productRepo, repositories.NewProductCache(rdb), images, cfg.MaxUploadSize, log)
	cartService := services.NewCartService(repositories.NewRedisCartRepository(rdb, log), productService, taxRate, log)
	a.Checkout = services.NewCheckoutService(
		services.CheckoutConfig{TaxRate: taxRate, SyncTimeout: cfg.OrderSyncTimeout},
		cartService,
		repositories.NewRedisOrderCache(rdb, log),
		orderRepo,
		libs.NewInvoiceRenderer(taxRate),
		events,
		mailer,
		log,
	)
	orderService := services.NewOrderService(orderRepo, log)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.CORSMiddleware(cfg.OriginURL))

	routes.SetupRoutes(router, routes.Services{
		Tokens:       tokens,
		Auth:         services.NewAuthService(userRepo, tokens, log),
		Users:        services.NewUserService(userRepo, log),
		Products:     productService,
		Carts:        cartService,
		Checkout:     a.Checkout,
		Orders:       orderService,
		Reports:      services.NewReportService(orderRepo, productRepo, log),
		POS:          services.NewPOSService(productService, cartService, log),
		Log:          log,
		SecureCookie: cfg.IsProduction(),
	})
	a.Router = router
	return a, nil
}

// Close waits for pending order notifications and releases connections.
func (a *App) Close() error {
	a.Checkout.Wait()

	var firstErr error
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			firstErr = fmt.Errorf("close kafka writer: %w", err)
		}
	}
	if err := a.redis.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close redis: %w", err)
	}
	a.db.Close()
	return firstErr
}
