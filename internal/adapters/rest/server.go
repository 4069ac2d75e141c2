package rest

import (
	"context"
	"net/http"
	"time"

	core_port "github.com/ferone/Germany-real-sate/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// HTTPObserver получает длительность и статус каждого запроса
type HTTPObserver interface {
	ObserveHTTP(route, method string, status int, d time.Duration)
}

type Server struct {
	httpServer *http.Server
	logger     core_port.LoggerPort
}

// NewRouter собирает маршруты. metricsHandler и observer могут быть nil.
// Пустой corsOrigins отключает CORS.
func NewRouter(
	analyticsHandlers *AnalyticsHandler,
	listingHandlers *ListingHandler,
	metricsHandler http.Handler,
	observer HTTPObserver,
	corsOrigins []string,
	baseLogger core_port.LoggerPort,
) chi.Router {
	r := chi.NewRouter()

	r.Use(LoggerMiddleware(baseLogger, observer), middleware.Recoverer)
	if len(corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Trace-ID"},
			ExposedHeaders: []string{"X-Trace-ID"},
			MaxAge:         300,
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", Health)

		r.Route("/properties", func(r chi.Router) {
			r.Get("/stats", analyticsHandlers.GetStats)
			r.Get("/price-trend", analyticsHandlers.GetPriceTrend)
			r.Get("/city-distribution", analyticsHandlers.GetCityDistribution)
			r.Get("/type-distribution", analyticsHandlers.GetTypeDistribution)
			r.Get("/avg-price-by-type", analyticsHandlers.GetAvgPriceByType)

			r.Get("/", listingHandlers.SearchListings)
			r.Get("/{type}/{externalID}", listingHandlers.GetListing)
		})
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	return r
}

func NewServer(port string, handler http.Handler, baseLogger core_port.LoggerPort) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: baseLogger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST server", core_port.Fields{"address": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST server...", nil)
	return s.httpServer.Shutdown(ctx)
}
