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
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/timbrado-api/docs"
	"github.com/jhoicas/timbrado-api/internal/application/billing"
	"github.com/jhoicas/timbrado-api/internal/infrastructure/lock"
	"github.com/jhoicas/timbrado-api/internal/infrastructure/postgres"
	"github.com/jhoicas/timbrado-api/internal/infrastructure/taxauthority"
	httpRouter "github.com/jhoicas/timbrado-api/internal/interfaces/http"
	"github.com/jhoicas/timbrado-api/pkg/config"
	"github.com/jhoicas/timbrado-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()

	if cfg.DB.AutoMigrate {
		runMigrations(log, cfg.DB)
	}

	// Un pool por base de datos de empresa, abierto en el primer uso.
	pools := postgres.NewTenantPools(func(ctx context.Context, tenant string) (*pgxpool.Pool, error) {
		return postgres.NewPool(ctx, cfg.DB, tenant)
	}, cfg.DB.Tenants)
	defer pools.Close()
	txRunner := postgres.NewTxRunner(pools)

	var locker billing.InvoiceLocker
	if cfg.Redis.Enabled() {
		client, err := lock.NewRedisClient(ctx, lock.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		locker = lock.NewRedisLocker(client, cfg.Tax.LockTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("bloqueo de facturas en Redis")
	} else {
		locker = lock.NewMemoryLocker(cfg.Tax.LockTTL)
		log.Warn().Msg("REDIS_ADDR vacío: bloqueo de facturas en memoria (una sola instancia)")
	}

	submitter := taxauthority.NewHTTPClient(cfg.Tax.Timeout)
	stamper := billing.NewStampOrchestrator(txRunner, locker, submitter, billing.StampConfig{
		Timeout:        cfg.Tax.Timeout,
		DefaultBaseURL: cfg.Tax.DefaultBaseURL,
	}, log)

	// El intento de timbrado sigue aunque el cliente corte; el write timeout
	// cubre el envío completo.
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.Tax.Timeout + 15*time.Second,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())

	docs.SwaggerInfo.Title = cfg.App.Name
	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Timbrado API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AppName:   cfg.App.Name,
		Stamper:   stamper,
		JWTSecret: cfg.JWT.Secret,
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

	// Deja terminar los timbrados en curso.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Tax.Timeout+10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// runMigrations aplica las migraciones embebidas a cada base configurada.
func runMigrations(log *logger.Logger, db config.DBConfig) {
	if len(db.Tenants) == 0 {
		log.Warn().Msg("DB_AUTO_MIGRATE activo sin DB_TENANTS: no se migra ninguna base")
		return
	}
	for _, tenant := range db.Tenants {
		dsn, err := db.ForDatabase(tenant)
		if err != nil {
			log.Fatal().Err(err).Str("tenant", tenant).Msg("DSN de migración")
		}
		version, err := postgres.MigrateUp(dsn)
		if err != nil {
			log.Fatal().Err(err).Str("tenant", tenant).Msg("migraciones")
		}
		log.Info().Str("tenant", tenant).Uint("version", version).Msg("migraciones aplicadas")
	}
}
