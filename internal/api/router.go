package api

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/wonny/billflow/backend/internal/api/handlers"
	"github.com/wonny/billflow/backend/pkg/logger"
	"github.com/wonny/billflow/backend/pkg/redis"
)

// Handlers groups the route handlers
type Handlers struct {
	Health       *handlers.HealthHandler
	Portfolio    *handlers.PortfolioHandler
	Intelligence *handlers.IntelligenceHandler
	Revenue      *handlers.RevenueHandler
}

// RouterOptions holds the cross-cutting router settings
type RouterOptions struct {
	AllowedOrigins []string
	// Limiter가 nil이면 레이트 리밋 없음 (Redis 비활성 시 Allow는 항상 통과)
	Limiter *redis.RateLimiter
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, opts RouterOptions, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("api")

	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", h.Health.Health).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Portfolio endpoints
	api.HandleFunc("/contracts", h.Portfolio.GetContracts).Methods("GET")
	api.HandleFunc("/metrics", h.Portfolio.GetMetrics).Methods("GET")
	api.HandleFunc("/scenario", h.Portfolio.RunScenario).Methods("POST")

	// Contract intelligence endpoints
	intel := api.PathPrefix("/intelligence").Subrouter()
	intel.HandleFunc("/risk", h.Intelligence.GetRisk).Methods("GET")
	intel.HandleFunc("/risk/{id}", h.Intelligence.GetContractRisk).Methods("GET")
	intel.HandleFunc("/churn", h.Intelligence.GetChurn).Methods("GET")
	intel.HandleFunc("/churn/{id}", h.Intelligence.GetContractChurn).Methods("GET")
	intel.HandleFunc("/simulate", h.Intelligence.Simulate).Methods("POST")
	intel.HandleFunc("/compare", h.Intelligence.Compare).Methods("POST")
	intel.HandleFunc("/benchmarks", h.Intelligence.GetBenchmarks).Methods("GET")
	intel.Handle("/refresh",
		rateLimited(opts.Limiter, redis.RefreshRateLimit, log)(http.HandlerFunc(h.Intelligence.Refresh))).Methods("POST")

	// Revenue intelligence endpoints
	rev := api.PathPrefix("/revenue").Subrouter()
	rev.HandleFunc("/command-center", h.Revenue.GetCommandCenter).Methods("GET")
	rev.HandleFunc("/executive-summary", h.Revenue.GetExecutiveSummary).Methods("GET")
	rev.HandleFunc("/leakage", h.Revenue.GetLeakage).Methods("GET")
	rev.HandleFunc("/opportunities", h.Revenue.GetOpportunities).Methods("GET")
	rev.HandleFunc("/signals", h.Revenue.GetSignals).Methods("GET")
	rev.HandleFunc("/actions", h.Revenue.GetActions).Methods("GET")
	rev.HandleFunc("/genome", h.Revenue.GetGenomes).Methods("GET")
	rev.HandleFunc("/genome/{id}", h.Revenue.GetContractGenome).Methods("GET")
	rev.Handle("/generate-outreach",
		rateLimited(opts.Limiter, redis.OutreachRateLimit, log)(http.HandlerFunc(h.Revenue.GenerateOutreach))).Methods("POST")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	// CORS는 라우터 바깥에서 감싸야 preflight(OPTIONS)가 405로 떨어지지 않음
	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	})

	return c.Handler(r)
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimited applies a per-caller sliding window limit.
// Redis 오류 시 요청은 통과 (fail-open)
func rateLimited(limiter *redis.RateLimiter, cfg redis.RateLimitConfig, log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, remaining, err := limiter.Allow(r.Context(), cfg.PerClient(clientIP(r)))
			if err != nil {
				log.WithError(err).WithField("limit", cfg.Key).Warn("Rate limit check failed")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Rate limit exceeded",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
