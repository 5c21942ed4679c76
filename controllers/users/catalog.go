package users

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dorcasbeulah27/PowerOil-Backend/services"
	"github.com/dorcasbeulah27/PowerOil-Backend/utils"

	"github.com/gorilla/mux"
)

// CatalogController serves the public outlet and campaign listings
type CatalogController struct {
	locations *services.LocationService
	catalog   *services.CatalogService
}

func NewCatalogController(l *services.LocationService, c *services.CatalogService) *CatalogController {
	return &CatalogController{locations: l, catalog: c}
}

func parseCoord(s string, limit float64) (*float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < -limit || v > limit {
		return nil, false
	}
	return &v, true
}

// GET /api/users/locations?state=&city=&campaignId=&latitude=&longitude=
func (c *CatalogController) Locations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, okLat := parseCoord(q.Get("latitude"), 90)
	lon, okLon := parseCoord(q.Get("longitude"), 180)
	if !okLat || !okLon {
		utils.WriteError(w, r, services.NewValidationError("latitude and longitude must be valid coordinates"))
		return
	}
	if (lat == nil) != (lon == nil) {
		lat, lon = nil, nil
	}

	locs, err := c.locations.ListLocations(r.Context(), services.LocationFilter{
		State:      strings.TrimSpace(q.Get("state")),
		City:       strings.TrimSpace(q.Get("city")),
		CampaignID: strings.TrimSpace(q.Get("campaignId")),
		Latitude:   lat,
		Longitude:  lon,
	})
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Locations retrieved",
		Data:    map[string]interface{}{"locations": locs},
	})
}

// GET /api/users/campaigns/{id}
func (c *CatalogController) Campaign(w http.ResponseWriter, r *http.Request) {
	details, err := c.catalog.CampaignDetails(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Campaign retrieved",
		Data:    map[string]interface{}{"campaign": details},
	})
}

// GET /api/users/locations/{id}/verify?latitude=&longitude=
// Lets the client show the distance to the outlet before offering the wheel.
func (c *CatalogController) VerifyLocation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, okLat := parseCoord(q.Get("latitude"), 90)
	lon, okLon := parseCoord(q.Get("longitude"), 180)
	if !okLat || !okLon || lat == nil || lon == nil {
		utils.WriteError(w, r, services.NewValidationError("latitude and longitude are required"))
		return
	}

	check, err := c.locations.VerifyUserLocation(r.Context(), *lat, *lon, mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: check.Valid,
		Message: check.Message,
		Data:    check,
	})
}
