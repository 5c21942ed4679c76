package admins

import (
	"net/http"
	"strings"

	"github.com/dorcasbeulah27/PowerOil-Backend/database"
	"github.com/dorcasbeulah27/PowerOil-Backend/middleware"
	"github.com/dorcasbeulah27/PowerOil-Backend/models"
	"github.com/dorcasbeulah27/PowerOil-Backend/services"
	"github.com/dorcasbeulah27/PowerOil-Backend/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultCooldownDays = 7

type campaignRequest struct {
	Name             string              `json:"name" validate:"required,max=255"`
	Description      string              `json:"description"`
	StartDate        string              `json:"startDate" validate:"required"`
	EndDate          string              `json:"endDate" validate:"required"`
	Status           string              `json:"status" validate:"omitempty,oneof=draft active paused completed"`
	MaxSpinsPerUser  *int                `json:"maxSpinsPerUser" validate:"omitempty,gte=1"`
	SpinCooldownDays *int                `json:"spinCooldownDays" validate:"omitempty,gte=0"`
	TotalBudget      decimal.NullDecimal `json:"totalBudget"`
	LocationIDs      []string            `json:"locationIds"`
}

// apply copies the request onto c. Omitted optional fields keep c's current values.
func (req *campaignRequest) apply(c *models.Campaign) error {
	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		return err
	}
	end, err := parseDate("endDate", req.EndDate)
	if err != nil {
		return err
	}
	if start.After(end) {
		return services.ErrInvalidCampaignDate
	}
	if req.TotalBudget.Valid && req.TotalBudget.Decimal.IsNegative() {
		return services.NewValidationError("totalBudget must not be negative")
	}

	c.Name = strings.TrimSpace(req.Name)
	c.Description = utils.StringPtr(strings.TrimSpace(req.Description))
	c.StartDate = start
	c.EndDate = end
	if req.Status != "" {
		c.Status = req.Status
	}
	if req.MaxSpinsPerUser != nil {
		c.MaxSpinsPerUser = *req.MaxSpinsPerUser
	}
	if req.SpinCooldownDays != nil {
		c.SpinCooldownDays = *req.SpinCooldownDays
	}
	if req.TotalBudget.Valid {
		c.TotalBudget = req.TotalBudget.Decimal
	}
	return nil
}

type campaignView struct {
	models.Campaign
	LocationIDs []string `json:"location_ids"`
}

// GET /api/admin/campaigns?status=
func (c *CatalogController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	q := database.DB.WithContext(r.Context()).Model(&models.Campaign{})
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		if !models.ValidCampaignStatus(status) {
			utils.WriteError(w, r, services.NewValidationError("status must be one of: draft active paused completed"))
			return
		}
		q = q.Where("status = ?", status)
	}
	campaigns := make([]models.Campaign, 0)
	if err := q.Order("start_date DESC").Find(&campaigns).Error; err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    map[string]interface{}{"campaigns": campaigns, "count": len(campaigns)},
	})
}

// GET /api/admin/campaigns/{id}
func (c *CatalogController) GetCampaign(w http.ResponseWriter, r *http.Request) {
	var campaign models.Campaign
	if err := database.DB.WithContext(r.Context()).First(&campaign, "id = ?", pathID(r)).Error; err != nil {
		utils.WriteError(w, r, notFound(err, services.ErrCampaignNotFound))
		return
	}
	ids, err := c.catalog.CampaignLocationIDs(r.Context(), campaign.ID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    campaignView{Campaign: campaign, LocationIDs: ids},
	})
}

// POST /api/admin/campaigns
func (c *CatalogController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	campaign := models.Campaign{
		Status:           models.CampaignDraft,
		MaxSpinsPerUser:  1,
		SpinCooldownDays: defaultCooldownDays,
	}
	if err := req.apply(&campaign); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if admin, ok := utils.GetAdmin(r); ok {
		campaign.CreatedByID = &admin.ID
	}

	err := database.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&campaign).Error; err != nil {
			return err
		}
		if req.LocationIDs == nil {
			return nil
		}
		return services.ReplaceCampaignLocations(tx, campaign.ID, req.LocationIDs)
	})
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	zap.L().Info("campaign created", zap.String("campaign_id", campaign.ID), zap.String("status", campaign.Status))
	ids, _ := c.catalog.CampaignLocationIDs(r.Context(), campaign.ID)
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Campaign created",
		Data:    campaignView{Campaign: campaign, LocationIDs: ids},
	})
}

// PUT /api/admin/campaigns/{id}
// locationIds replaces the outlet mapping when present and leaves it alone when omitted.
func (c *CatalogController) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	var campaign models.Campaign
	err := database.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&campaign, "id = ?", pathID(r)).Error; err != nil {
			return notFound(err, services.ErrCampaignNotFound)
		}
		if err := req.apply(&campaign); err != nil {
			return err
		}
		if err := tx.Save(&campaign).Error; err != nil {
			return err
		}
		if req.LocationIDs == nil {
			return nil
		}
		return services.ReplaceCampaignLocations(tx, campaign.ID, req.LocationIDs)
	})
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ids, _ := c.catalog.CampaignLocationIDs(r.Context(), campaign.ID)
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Campaign updated",
		Data:    campaignView{Campaign: campaign, LocationIDs: ids},
	})
}

// DELETE /api/admin/campaigns/{id}
func (c *CatalogController) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := c.catalog.DeleteCampaign(r.Context(), id); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	zap.L().Info("campaign deleted", zap.String("campaign_id", id))
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Campaign deleted"})
}
