package routes

import (
	"net/http"
	"time"

	"github.com/dorcasbeulah27/PowerOil-Backend/config"
	"github.com/dorcasbeulah27/PowerOil-Backend/controllers/admins"
	"github.com/dorcasbeulah27/PowerOil-Backend/controllers/auth"
	"github.com/dorcasbeulah27/PowerOil-Backend/middleware"
	"github.com/dorcasbeulah27/PowerOil-Backend/models"

	"github.com/gorilla/mux"
)

func SetAdminRoutes(api *mux.Router, cfg config.ServerConfig, c *admins.CatalogController) {
	// Rate limiter for admin login: 5 attempts per IP per minute
	adminLoginLimiter := middleware.NewIPRateLimiter(5, time.Minute, cfg.TrustedProxies)

	api.Handle("/admin/login", adminLoginLimiter.Middleware(http.HandlerFunc(admins.Login))).Methods(http.MethodPost)

	adminRouter := api.PathPrefix("/admin").Subrouter()
	adminRouter.Use(middleware.AdminAuthMiddleware)

	// viewer and up read, admin and up write, superadmin deletes
	writer := middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin)
	owner := middleware.RequireRole(models.RoleSuperAdmin)
	read := func(h http.HandlerFunc) http.Handler { return h }
	write := func(h http.HandlerFunc) http.Handler { return writer(h) }
	del := func(h http.HandlerFunc) http.Handler { return owner(h) }

	// Account
	adminRouter.Handle("/logout", read(auth.LogoutHandler)).Methods(http.MethodPost)
	adminRouter.Handle("/profile", read(admins.GetAdminProfile)).Methods(http.MethodGet)
	adminRouter.Handle("/profile", read(admins.UpdateAdminProfile)).Methods(http.MethodPut)
	adminRouter.Handle("/password", read(admins.UpdateAdminPassword)).Methods(http.MethodPut)
	adminRouter.Handle("/admins", del(admins.CreateAdmin)).Methods(http.MethodPost)

	// Campaigns
	adminRouter.Handle("/campaigns", read(c.ListCampaigns)).Methods(http.MethodGet)
	adminRouter.Handle("/campaigns", write(c.CreateCampaign)).Methods(http.MethodPost)
	adminRouter.Handle("/campaigns/{id}", read(c.GetCampaign)).Methods(http.MethodGet)
	adminRouter.Handle("/campaigns/{id}", write(c.UpdateCampaign)).Methods(http.MethodPut)
	adminRouter.Handle("/campaigns/{id}", del(c.DeleteCampaign)).Methods(http.MethodDelete)

	// Locations
	adminRouter.Handle("/locations", read(c.ListLocations)).Methods(http.MethodGet)
	adminRouter.Handle("/locations", write(c.CreateLocation)).Methods(http.MethodPost)
	adminRouter.Handle("/locations/{id}", read(c.GetLocation)).Methods(http.MethodGet)
	adminRouter.Handle("/locations/{id}", write(c.UpdateLocation)).Methods(http.MethodPut)
	adminRouter.Handle("/locations/{id}", del(c.DeleteLocation)).Methods(http.MethodDelete)

	// Prizes
	adminRouter.Handle("/prizes", read(c.ListPrizes)).Methods(http.MethodGet)
	adminRouter.Handle("/prizes", write(c.CreatePrize)).Methods(http.MethodPost)
	adminRouter.Handle("/prizes/{id}", read(c.GetPrize)).Methods(http.MethodGet)
	adminRouter.Handle("/prizes/{id}", write(c.UpdatePrize)).Methods(http.MethodPut)
	adminRouter.Handle("/prizes/{id}/image", write(c.UploadPrizeImage)).Methods(http.MethodPost)
	adminRouter.Handle("/prizes/{id}", del(c.DeletePrize)).Methods(http.MethodDelete)

	// Prize rules
	adminRouter.Handle("/prize-rules", read(c.ListPrizeRules)).Methods(http.MethodGet)
	adminRouter.Handle("/prize-rules", write(c.CreatePrizeRule)).Methods(http.MethodPost)
	adminRouter.Handle("/prize-rules/{id}", read(c.GetPrizeRule)).Methods(http.MethodGet)
	adminRouter.Handle("/prize-rules/{id}", write(c.UpdatePrizeRule)).Methods(http.MethodPut)
	adminRouter.Handle("/prize-rules/{id}", del(c.DeletePrizeRule)).Methods(http.MethodDelete)

	// Participants and spin history
	adminRouter.Handle("/users", read(admins.GetUsers)).Methods(http.MethodGet)
	adminRouter.Handle("/users/{id}", read(admins.GetUserDetail)).Methods(http.MethodGet)
	adminRouter.Handle("/spins", read(admins.UserSpinsHandler)).Methods(http.MethodGet)
}
