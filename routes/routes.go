package routes

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dorcasbeulah27/PowerOil-Backend/config"
	"github.com/dorcasbeulah27/PowerOil-Backend/controllers/admins"
	"github.com/dorcasbeulah27/PowerOil-Backend/controllers/auth"
	"github.com/dorcasbeulah27/PowerOil-Backend/controllers/users"
	"github.com/dorcasbeulah27/PowerOil-Backend/database"
	"github.com/dorcasbeulah27/PowerOil-Backend/middleware"
	"github.com/dorcasbeulah27/PowerOil-Backend/utils"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// Controllers bundles the handlers mounted under /api
type Controllers struct {
	Onboarding *auth.OnboardingController
	Spin       *users.SpinController
	Catalog    *users.CatalogController
	Admin      *admins.CatalogController
}

func optionsHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	status, code := "healthy", http.StatusOK
	if err := database.Ping(r.Context()); err != nil {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"service":   "poweroil-spin-api",
	})
}

// InitRouter builds the mux router with CORS, health, metrics and the /api tree
func InitRouter(cfg config.ServerConfig, c Controllers) *mux.Router {
	r := mux.NewRouter()

	r.Handle("/health", http.HandlerFunc(healthHandler)).Methods(http.MethodGet)
	r.Handle("/metrics", utils.NewMetricsHandler()).Methods(http.MethodGet)

	r.Use(func(next http.Handler) http.Handler {
		return handlers.CORS(
			handlers.AllowedOrigins(cfg.CORSAllowedOrigins),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With", "X-Request-ID"}),
			handlers.AllowCredentials(),
		)(next)
	})

	api := r.PathPrefix("/api").Subrouter()

	// CORS preflight
	api.PathPrefix("/").HandlerFunc(optionsHandler).Methods(http.MethodOptions)

	UsersRoutes(api, cfg, c)
	SetAdminRoutes(api, cfg, c.Admin)

	return r
}

// Wrap applies the global middleware chain around the router:
// log -> security headers -> request id -> max body -> timeout -> recovery -> metrics -> suspicious activity
func Wrap(h http.Handler, cfg config.ServerConfig, production bool) http.Handler {
	tracker := middleware.NewActivityTracker(cfg.SlowRequestMs, cfg.SuspiciousThreshold, cfg.TrustedProxies)
	return middleware.RequestLogMiddleware(
		middleware.SecurityHeadersMiddleware(production, cfg.HSTS)(
			middleware.RequestIDMiddleware(
				middleware.MaxBodyMiddleware(cfg.MaxBodyBytes, utils.MaxImageBytes+(1<<20))(
					middleware.TimeoutMiddleware(cfg.RequestTimeout)(
						middleware.RecoveryMiddleware(
							tracker.MetricsMiddleware(
								tracker.SuspiciousActivityMiddleware(h),
							),
						),
					),
				),
			),
		),
	)
}
