package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"helphop/internal/api/handlers/http/sos"
	"helphop/internal/api/handlers/http/system"
	"helphop/internal/config"
	"helphop/internal/middleware"
	"helphop/internal/service"
)

type Server struct {
	logger *slog.Logger
	router *chi.Mux
	cfg    config.Config
}

func NewServer(cfg *config.Config, logger *slog.Logger, svc *service.Service) *Server {
	sosHandler := sos.NewHandler(logger, svc.Intake, svc.Lifecycle, svc.Stats)
	systemHandler := system.NewHandler(logger)

	r := InitRouter(cfg, sosHandler, systemHandler, logger)

	return &Server{
		logger: logger,
		router: r,
		cfg:    *cfg,
	}
}

func InitRouter(cfg *config.Config, sosHandler *sos.Handler, systemHandler *system.Handler, logger *slog.Logger) *chi.Mux {
	r := chi.NewMux()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Logger)

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/sos", func(sr chi.Router) {
			// PUBLIC: reporters submit SOS
			sr.Group(func(pr chi.Router) {
				pr.Use(middleware.Limit(10, 20, 5*time.Minute, logger))
				pr.Post("/", sosHandler.SubmitSOS)
			})

			// RESCUER surface
			sr.Group(func(rr chi.Router) {
				rr.Use(middleware.APIKey(cfg.APIKey))
				rr.Use(middleware.Limit(5, 10, 10*time.Minute, logger))

				rr.Get("/", sosHandler.ListAll)
				rr.Get("/pending", sosHandler.ListPending)
				rr.Get("/stats", sosHandler.SOSStats)
				rr.Get("/user/{userId}", sosHandler.ListByUser)

				rr.Post("/assign", sosHandler.AssignRescuer)
				rr.Post("/{id}/accept", sosHandler.AcceptByID)
				rr.Post("/{id}/reject", sosHandler.RejectByID)
				rr.Post("/{id}/resolve", sosHandler.Resolve)
			})
		})

		// SYSTEM
		api.Get("/health", systemHandler.SystemHealth)
	})

	return r
}

func (s *Server) Run(ctx context.Context) error {
	port := s.cfg.Http.Port
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Http.ReadTimeout,
		WriteTimeout: s.cfg.Http.WriteTimeout,
		IdleTimeout:  30 * time.Second,
	}

	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("Starting HTTP server",
			slog.String("addr", srv.Addr),
			slog.Duration("read_timeout", s.cfg.Http.ReadTimeout),
			slog.Duration("write_timeout", s.cfg.Http.WriteTimeout),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("ListenAndServe error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server", slog.String("reason", ctx.Err().Error()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Http.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Server shutdown failed", slog.Any("error", err))
			return err
		}
		return nil

	case err := <-errChan:
		return err
	}
}
