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

	_ "github.com/jhoicas/notascan-api/docs"
	"github.com/jhoicas/notascan-api/internal/application/review"
	"github.com/jhoicas/notascan-api/internal/clock"
	"github.com/jhoicas/notascan-api/internal/infrastructure/api"
	httpRouter "github.com/jhoicas/notascan-api/internal/interfaces/http"
	"github.com/jhoicas/notascan-api/pkg/config"
	"github.com/jhoicas/notascan-api/pkg/logger"
)

// @title                       NotaScan API
// @version                     1.0
// @description                 Revisión y edición de notas fiscales NF-e/NFC-e extraídas por IA antes de guardarlas.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Bearer <token>
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("backend", cfg.Backend.BaseURL).
		Msg("iniciando aplicación")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración inválida")
	}
	loc, _ := cfg.Review.Location()

	// Un mismo cliente sirve de gateway de notas y de consulta de CNPJ.
	backend := api.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout(), log)
	reviews := review.NewManager(backend, backend, clock.System{}, review.ManagerConfig{
		TTL:      cfg.Review.SessionTTL(),
		Location: loc,
	}, log)

	app := fiber.New(fiber.Config{
		AppName: cfg.App.Name,
		// el envío espera al backend; el timeout de escritura debe cubrirlo
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.Backend.Timeout() + 5*time.Second,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "NotaScan API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "sessions": reviews.Len()})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Reviews:   reviews,
		Logger:    log,
		JWTSecret: cfg.JWT.Secret,
		JWTIssuer: cfg.JWT.Issuer,
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
