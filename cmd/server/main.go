// Argo Sales - conversational travel sales agent server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/npetros/argosales/internal/agent"
	"github.com/npetros/argosales/internal/api"
	"github.com/npetros/argosales/internal/booking"
	"github.com/npetros/argosales/internal/config"
	"github.com/npetros/argosales/internal/llm"
	"github.com/npetros/argosales/internal/mailer"
	"github.com/npetros/argosales/internal/middleware"
	"github.com/npetros/argosales/internal/places"
	"github.com/npetros/argosales/internal/session"
	"github.com/npetros/argosales/internal/store"
	"github.com/npetros/argosales/internal/tools"
	"github.com/npetros/argosales/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "provider", cfg.LLMProvider, "model", cfg.Model)

	// LLM backend.
	var client llm.Client
	switch cfg.LLMProvider {
	case llm.ProviderOllama:
		client, err = llm.NewOllamaClient(cfg.OllamaHost, cfg.Model)
		if err != nil {
			slog.Error("Failed to initialize Ollama client", "error", err)
			os.Exit(1)
		}
	default:
		client = llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.Model)
	}
	client = llm.WithTimeout(client, cfg.LLMTimeout)

	// Persona.
	persona := agent.DefaultPersona()
	if cfg.PersonaPath != "" {
		persona, err = agent.LoadPersona(cfg.PersonaPath)
		if err != nil {
			slog.Error("Failed to load persona file", "path", cfg.PersonaPath, "error", err)
			os.Exit(1)
		}
	}
	slog.Info("Persona loaded", "name", persona.SalespersonName, "company", persona.CompanyName)

	// Action registry.
	registry := tools.NewRegistry()
	registerTools(registry, client, cfg)
	slog.Info("Tools registered", "tools", registry.Names())

	// Transcript archive.
	var archive store.Archive = store.NopArchive{}
	if cfg.ArchiveEnabled {
		sqlArchive, err := store.NewSQLite(cfg.DBPath)
		if err != nil {
			slog.Error("Failed to initialize transcript archive", "error", err)
			os.Exit(1)
		}
		defer func() {
			if closeErr := sqlArchive.Close(); closeErr != nil {
				slog.Error("Failed to close archive", "error", closeErr)
			}
		}()
		if err := sqlArchive.Ping(context.Background()); err != nil {
			slog.Error("Archive health check failed", "error", err)
			os.Exit(1)
		}
		archive = sqlArchive
		slog.Info("Transcript archive enabled", "path", cfg.DBPath)
	}

	// Sessions and the composer.
	sessions := session.NewStore()
	composer := agent.NewComposer(client, registry, persona, cfg.MaxToolHops)
	handler := api.NewHandler(sessions, composer, persona, cfg.Model,
		session.Config{UseTools: cfg.UseTools}, archive, placesClient(cfg))

	// Setup router.
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	handler.RegisterRoutes(r)

	// Embedded demo chat page.
	r.Handle("/*", web.Handler())

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		// Generation can run long; rely on per-backend timeouts instead of
		// a server-wide write deadline.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Idle-session janitor.
	if cfg.SessionTTL > 0 {
		sessions.StartJanitor(ctx, cfg.SessionTTL, cfg.SessionTTL/4)
		slog.Info("Session janitor started", "session_ttl", cfg.SessionTTL)
	}

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

// registerTools wires each configured action into the registry. Tools with
// missing credentials are skipped so a partial configuration still serves
// chat.
func registerTools(registry *tools.Registry, client llm.Client, cfg *config.Config) {
	if cfg.Booking.BaseURL != "" {
		search := booking.NewClient(cfg.Booking.BaseURL, booking.Credentials{
			Code:      cfg.Booking.Code,
			Username:  cfg.Booking.Username,
			Password:  cfg.Booking.Password,
			Signature: cfg.Booking.Signature,
		}, cfg.ToolTimeout)
		mustRegister(registry, tools.NewTripSearchTool(client, search, time.Now))
	} else {
		slog.Info("Trip search tool disabled (BOOKING_API_URL not set)")
	}

	if cfg.Payment.GatewayURL != "" {
		mapping := map[string]string{}
		if cfg.PriceMappingPath != "" {
			var err error
			mapping, err = tools.LoadPriceMapping(cfg.PriceMappingPath)
			if err != nil {
				slog.Error("Failed to load price mapping", "path", cfg.PriceMappingPath, "error", err)
				os.Exit(1)
			}
		}
		mustRegister(registry, tools.NewPaymentLinkTool(client, tools.PaymentConfig{
			GatewayURL:   cfg.Payment.GatewayURL,
			StripeKey:    cfg.Payment.StripeKey,
			PriceMapping: mapping,
			Timeout:      cfg.ToolTimeout,
		}))
	} else {
		slog.Info("Payment link tool disabled (PAYMENT_GATEWAY_URL not set)")
	}

	if cfg.SMTP.Username != "" {
		sender := mailer.NewSMTPSender(mailer.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			StartTLS: cfg.SMTP.StartTLS,
		})
		mustRegister(registry, tools.NewSendEmailTool(client, sender))
	} else {
		slog.Info("Email tool disabled (SMTP_USERNAME not set)")
	}

	if cfg.Calendly.APIKey != "" && cfg.Calendly.EventTypeUUID != "" {
		mustRegister(registry, tools.NewCalendlyTool(tools.CalendlyConfig{
			APIKey:        cfg.Calendly.APIKey,
			EventTypeUUID: cfg.Calendly.EventTypeUUID,
			Timeout:       cfg.ToolTimeout,
		}))
	} else {
		slog.Info("Calendly tool disabled (CALENDLY_API_KEY or CALENDLY_EVENT_UUID not set)")
	}
}

func mustRegister(registry *tools.Registry, t *tools.Tool) {
	if err := registry.Register(t); err != nil {
		slog.Error("Failed to register tool", "error", err)
		os.Exit(1)
	}
}

func placesClient(cfg *config.Config) *places.Client {
	if cfg.Places.APIKey == "" {
		slog.Info("Place photo endpoints disabled (GOOGLE_API_KEY not set)")
		return nil
	}
	return places.NewClient(cfg.Places.APIKey, cfg.ToolTimeout)
}
