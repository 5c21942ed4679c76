package admins

import (
	"net/http"
	"strings"

	"github.com/dorcasbeulah27/PowerOil-Backend/database"
	"github.com/dorcasbeulah27/PowerOil-Backend/middleware"
	"github.com/dorcasbeulah27/PowerOil-Backend/models"
	"github.com/dorcasbeulah27/PowerOil-Backend/services"
	"github.com/dorcasbeulah27/PowerOil-Backend/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type locationRequest struct {
	Name          string   `json:"name" validate:"required,max=255"`
	Type          string   `json:"type" validate:"omitempty,oneof=supermarket openmarket retailstore other"`
	Address       string   `json:"address" validate:"required"`
	City          string   `json:"city" validate:"required,max=100"`
	State         string   `json:"state" validate:"required,max=100"`
	Latitude      *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude     *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	RadiusMeters  *int     `json:"radiusMeters" validate:"omitempty,gt=0"`
	IsActive      *bool    `json:"isActive"`
	ContactPerson string   `json:"contactPerson"`
	ContactPhone  string   `json:"contactPhone" validate:"omitempty,ngphone"`
	CampaignIDs   []string `json:"campaignIds"`
}

func (req *locationRequest) apply(l *models.Location) {
	l.Name = strings.TrimSpace(req.Name)
	if req.Type != "" {
		l.Type = req.Type
	}
	l.Address = strings.TrimSpace(req.Address)
	l.City = strings.TrimSpace(req.City)
	l.State = strings.TrimSpace(req.State)
	l.Latitude = *req.Latitude
	l.Longitude = *req.Longitude
	if req.RadiusMeters != nil {
		l.RadiusMeters = *req.RadiusMeters
	}
	if req.IsActive != nil {
		l.IsActive = *req.IsActive
	}
	l.ContactPerson = utils.StringPtr(strings.TrimSpace(req.ContactPerson))
	l.ContactPhone = utils.StringPtr(utils.CanonicalPhone(req.ContactPhone))
}

type locationView struct {
	models.Location
	CampaignIDs []string `json:"campaign_ids"`
}

// GET /api/admin/locations?state=&city=&isActive=&page=&limit=
func (c *CatalogController) ListLocations(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pagination(r)
	q := database.DB.WithContext(r.Context()).Model(&models.Location{})
	if state := strings.TrimSpace(r.URL.Query().Get("state")); state != "" {
		q = q.Where("LOWER(state) LIKE ?", "%"+strings.ToLower(state)+"%")
	}
	if city := strings.TrimSpace(r.URL.Query().Get("city")); city != "" {
		q = q.Where("LOWER(city) LIKE ?", "%"+strings.ToLower(city)+"%")
	}
	switch r.URL.Query().Get("isActive") {
	case "true":
		q = q.Where("is_active = ?", true)
	case "false":
		q = q.Where("is_active = ?", false)
	}

	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.WriteError(w, r, err)
		return
	}
	locations := make([]models.Location, 0)
	if err := q.Order("state ASC, city ASC, name ASC").Offset(offset).Limit(limit).Find(&locations).Error; err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"locations":  locations,
			"pagination": paginationMeta(page, limit, total),
		},
	})
}

// GET /api/admin/locations/{id}
func (c *CatalogController) GetLocation(w http.ResponseWriter, r *http.Request) {
	var loc models.Location
	if err := database.DB.WithContext(r.Context()).First(&loc, "id = ?", pathID(r)).Error; err != nil {
		utils.WriteError(w, r, notFound(err, services.ErrLocationNotFound.WithMessage("Location not found")))
		return
	}
	ids, err := c.catalog.LocationCampaignIDs(r.Context(), loc.ID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    locationView{Location: loc, CampaignIDs: ids},
	})
}

// POST /api/admin/locations
func (c *CatalogController) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	loc := models.Location{
		Type:         models.LocationOther,
		RadiusMeters: models.DefaultRadiusMeters,
		IsActive:     true,
	}
	req.apply(&loc)

	err := database.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&loc).Error; err != nil {
			return err
		}
		if req.CampaignIDs == nil {
			return nil
		}
		return services.ReplaceLocationCampaigns(tx, loc.ID, req.CampaignIDs)
	})
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	zap.L().Info("location created", zap.String("location_id", loc.ID), zap.String("state", loc.State))
	ids, _ := c.catalog.LocationCampaignIDs(r.Context(), loc.ID)
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Location created",
		Data:    locationView{Location: loc, CampaignIDs: ids},
	})
}

// PUT /api/admin/locations/{id}
// campaignIds replaces the campaign mapping when present and leaves it alone when omitted.
func (c *CatalogController) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	var loc models.Location
	err := database.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&loc, "id = ?", pathID(r)).Error; err != nil {
			return notFound(err, services.ErrLocationNotFound.WithMessage("Location not found"))
		}
		req.apply(&loc)
		if err := tx.Save(&loc).Error; err != nil {
			return err
		}
		if req.CampaignIDs == nil {
			return nil
		}
		return services.ReplaceLocationCampaigns(tx, loc.ID, req.CampaignIDs)
	})
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ids, _ := c.catalog.LocationCampaignIDs(r.Context(), loc.ID)
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Location updated",
		Data:    locationView{Location: loc, CampaignIDs: ids},
	})
}

// DELETE /api/admin/locations/{id}
func (c *CatalogController) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := c.catalog.DeleteLocation(r.Context(), id); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	zap.L().Info("location deleted", zap.String("location_id", id))
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Location deleted"})
}
