package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	scenariohandler "github.com/de-tools/cost-planner/pkg/handlers/scenario"
	sessionhandler "github.com/de-tools/cost-planner/pkg/handlers/session"
	plannermiddleware "github.com/de-tools/cost-planner/pkg/server/middleware"
	"github.com/de-tools/cost-planner/pkg/services/scenario"
	"github.com/de-tools/cost-planner/pkg/services/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const defaultShutdownTimeout = 10 * time.Second

type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Dependencies struct {
	Session   *session.Store
	Scenarios *scenario.Service
	Estimator sessionhandler.Estimator
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func ConfigureRouter(logger zerolog.Logger, deps Dependencies) *chi.Mux {
	sessionHandler := sessionhandler.NewHandler(deps.Session, deps.Estimator)
	scenarioHandler := scenariohandler.NewHandler(deps.Scenarios, deps.Session)

	router := chi.NewRouter()

	router.Use(plannermiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Get("/", sessionHandler.Get)
			r.Post("/upload", sessionHandler.Upload)
			r.Get("/breakdown", sessionHandler.Breakdown)
			r.Patch("/adjustments", sessionHandler.UpdateAdjustments)
			r.Put("/adjustments/{index}", sessionHandler.UpdateAdjustment)
			r.Post("/usage", sessionHandler.ApplyUsage)
			r.Post("/templates/{id}", sessionHandler.ApplyTemplate)
			r.Post("/wizard/questions", sessionHandler.WizardQuestions)
			r.Post("/wizard/usage", sessionHandler.WizardUsage)
			r.Post("/copilot", sessionHandler.Copilot)
		})

		r.Get("/templates", sessionHandler.ListTemplates)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", scenarioHandler.List)
			r.Post("/", scenarioHandler.Save)
			r.Get("/{id}", scenarioHandler.Get)
			r.Delete("/{id}", scenarioHandler.Delete)
			r.Post("/{id}/load", scenarioHandler.Load)
		})

		r.Get("/comparison", scenarioHandler.Compare)
		r.Delete("/comparison", scenarioHandler.ExitComparison)

		r.Get("/selection", scenarioHandler.Selection)
		r.Put("/selection/active", scenarioHandler.SelectActive)
	})

	return router
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	router := ConfigureRouter(logger, config.Dependencies)

	shutdownTimeout := config.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
		shutdownTimeout: shutdownTimeout,
	}
}

// Start serves until ctx is cancelled or SIGINT/SIGTERM arrives, then drains
// in-flight requests for at most the shutdown timeout.
func (w *WebAPI) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	w.logger.Info().Msg("shutdown initiated")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
	defer cancel()

	if err := w.server.Shutdown(shutdownCtx); err != nil {
		w.logger.Error().Err(err).Msg("graceful shutdown failed")
		return w.server.Close()
	}
	return nil
}
