package routes

import (
	"net/http"
	"time"

	"github.com/dorcasbeulah27/PowerOil-Backend/config"
	"github.com/dorcasbeulah27/PowerOil-Backend/controllers/auth"
	"github.com/dorcasbeulah27/PowerOil-Backend/controllers/users"
	"github.com/dorcasbeulah27/PowerOil-Backend/middleware"

	"github.com/gorilla/mux"
)

// UsersRoutes mounts participant onboarding, the public catalog and the spin endpoints
func UsersRoutes(api *mux.Router, cfg config.ServerConfig, c Controllers) {
	// 60 requests per IP per 5 minutes on unauthenticated participant endpoints
	publicLimiter := middleware.NewIPRateLimiter(60, 5*time.Minute, cfg.TrustedProxies)
	// 60 requests per participant per minute once a token is held
	userLimiter := middleware.NewUserRateLimiter(60, time.Minute)

	public := func(h http.HandlerFunc) http.Handler {
		return publicLimiter.Middleware(h)
	}
	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(userLimiter.Middleware(h))
	}

	// Onboarding
	api.Handle("/auth/register", public(c.Onboarding.Register)).Methods(http.MethodPost)
	api.Handle("/auth/otp/request", public(c.Onboarding.RequestOTP)).Methods(http.MethodPost)
	api.Handle("/auth/otp/verify", public(c.Onboarding.VerifyPhone)).Methods(http.MethodPost)
	api.Handle("/auth/logout", authed(auth.LogoutHandler)).Methods(http.MethodPost)

	// Public catalog
	api.Handle("/users/locations", public(c.Catalog.Locations)).Methods(http.MethodGet)
	api.Handle("/users/locations/{id}/verify", public(c.Catalog.VerifyLocation)).Methods(http.MethodGet)
	api.Handle("/users/campaigns/{id}", public(c.Catalog.Campaign)).Methods(http.MethodGet)
	api.Handle("/users/prizes/available", public(c.Spin.AvailablePrizes)).Methods(http.MethodGet)

	// Participant
	api.Handle("/users/me", authed(users.ProfileHandler)).Methods(http.MethodGet)
	api.Handle("/users/me/spins", authed(users.MySpinsHandler)).Methods(http.MethodGet)
	api.Handle("/users/eligibility", authed(c.Spin.Eligibility)).Methods(http.MethodPost)
	api.Handle("/users/spin", authed(c.Spin.Spin)).Methods(http.MethodPost)
}
