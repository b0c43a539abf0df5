package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/almacen-api/internal/application/auth"
	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/almacen-api/internal/infrastructure/pdf"
	"github.com/jhoicas/almacen-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/almacen-api/internal/interfaces/http"
	"github.com/jhoicas/almacen-api/pkg/config"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repos atados al pool para lecturas; las escrituras de stock van por el
	// TxRunner con repos atados a la transacción.
	productRepo := postgres.NewProductRepository(pool)
	lotRepo := postgres.NewLotRepository(pool)
	entryRepo := postgres.NewEntryRepository(pool)
	withdrawalRepo := postgres.NewWithdrawalRepository(pool)
	adminRepo := postgres.NewAdminRepository(pool)
	employeeRepo := postgres.NewEmployeeRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Cache de productos (opcional: sin REDIS_ADDR se arranca sin cache)
	var productCache usecase.ProductCache
	if cfg.Redis.Addr != "" {
		pc, err := cache.NewProductCache(cfg.Redis.Addr, time.Duration(cfg.Redis.TTL)*time.Second, log.Zerolog())
		if err != nil {
			log.Warn().Err(err).Msg("Redis no disponible, se arranca sin cache")
		} else {
			productCache = pc
		}
	}

	// Motor de stock
	entryUC := stock.NewEntryUseCase(txRunner)
	allocatorUC := stock.NewAllocatorUseCase(txRunner)
	reversalUC := stock.NewReversalUseCase(txRunner)
	consistencyUC := stock.NewConsistencyUseCase(txRunner)

	// Casos de uso de consulta y soporte
	productUC := usecase.NewProductUseCase(productRepo, lotRepo, productCache)
	entryQueryUC := usecase.NewEntryQueryUseCase(entryRepo)
	withdrawalUC := usecase.NewWithdrawalUseCase(withdrawalRepo, employeeRepo)
	receiptGenerator := infrapdf.NewMarotoReceiptGenerator(cfg.App.Name)
	receiptUC := usecase.NewReceiptUseCase(withdrawalRepo, productRepo, employeeRepo, adminRepo, receiptGenerator)
	authUC := auth.NewAuthUseCase(adminRepo, employeeRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Almacén API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		ProductUC:     productUC,
		EntryQueryUC:  entryQueryUC,
		WithdrawalUC:  withdrawalUC,
		ReceiptUC:     receiptUC,
		EntryUC:       entryUC,
		AllocatorUC:   allocatorUC,
		ReversalUC:    reversalUC,
		ConsistencyUC: consistencyUC,
		ProductCache:  productCache,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
