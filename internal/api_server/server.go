package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/cognitriage/cognitriage/internal/config"
	"github.com/cognitriage/cognitriage/internal/evidence"
	handlers "github.com/cognitriage/cognitriage/internal/handlers/v1alpha1"
	"github.com/cognitriage/cognitriage/internal/pipeline"
	"github.com/cognitriage/cognitriage/internal/service"
	"github.com/cognitriage/cognitriage/internal/store"
	"github.com/cognitriage/cognitriage/pkg/metrics"
	"github.com/cognitriage/cognitriage/pkg/middleware"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg      *config.Config
	store    store.Store
	listener net.Listener
}

// New returns a new instance of a cognitriage API server.
func New(
	cfg *config.Config,
	store store.Store,
	listener net.Listener,
) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		listener: listener,
	}
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	router := chi.NewRouter()

	metricMiddleware := metrics.NewMiddleware("api_server", s.cfg.Service.HTTPLatencyBuckets)
	metricMiddleware.MustRegisterDefault()
	metrics.RegisterPipelineMetrics()

	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "HEAD", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
		middleware.RequestID,
		middleware.Logger(),
		chiMiddleware.Recoverer,
	)

	httpClient := &http.Client{Timeout: s.cfg.Evidence.LookupTimeout}
	resolver := evidence.NewResolver(
		evidence.NewPubMedClient(s.cfg.Evidence.PubMedBaseUrl, httpClient),
		evidence.NewCTGovClient(s.cfg.Evidence.TrialsBaseUrl, httpClient),
		s.cfg.Evidence.LookupTimeout,
		s.cfg.Evidence.MaxResults,
	)
	orchestrator := pipeline.NewOrchestrator(s.store, resolver, s.cfg.Service.MaxConcurrentJobs)

	triageHandler := handlers.NewTriageHandler(service.NewTriageService(s.store, orchestrator))
	evidenceHandler := handlers.NewEvidenceHandler(service.NewEvidenceService(resolver))

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/triage", triageHandler.Submit)
		r.Get("/triage/{id}/status", triageHandler.Status)
		r.Get("/triage/{id}/result", triageHandler.Result)
		r.Post("/evidence/literature", evidenceHandler.Literature)
		r.Post("/evidence/trials", evidenceHandler.Trials)
	})
	router.Get("/health", handlers.Health)

	srv := &http.Server{Addr: s.cfg.Service.Address, Handler: router}

	go func() {
		<-ctx.Done()
		zap.S().Named("api_server").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
	}()

	zap.S().Named("api_server").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
