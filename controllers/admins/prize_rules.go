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
)

type prizeRuleRequest struct {
	CampaignID  string              `json:"campaignId" validate:"required"`
	PrizeID     string              `json:"prizeId" validate:"required"`
	Probability *float64            `json:"probability" validate:"required"`
	MaxPerDay   *int                `json:"maxPerDay"`
	MaxTotal    *int                `json:"maxTotal"`
	Value       decimal.NullDecimal `json:"value"`
}

func (req *prizeRuleRequest) input() services.PrizeRuleInput {
	return services.PrizeRuleInput{
		CampaignID:  strings.TrimSpace(req.CampaignID),
		PrizeID:     strings.TrimSpace(req.PrizeID),
		Probability: *req.Probability,
		MaxPerDay:   req.MaxPerDay,
		MaxTotal:    req.MaxTotal,
		Value:       req.Value,
	}
}

// GET /api/admin/prize-rules?campaignId=
func (c *CatalogController) ListPrizeRules(w http.ResponseWriter, r *http.Request) {
	q := database.DB.WithContext(r.Context()).Preload("Prize")
	if id := strings.TrimSpace(r.URL.Query().Get("campaignId")); id != "" {
		q = q.Where("campaign_id = ?", id)
	}
	rules := make([]models.PrizeRule, 0)
	if err := q.Order("campaign_id ASC, probability DESC").Find(&rules).Error; err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    map[string]interface{}{"prize_rules": rules, "count": len(rules)},
	})
}

// GET /api/admin/prize-rules/{id}
func (c *CatalogController) GetPrizeRule(w http.ResponseWriter, r *http.Request) {
	var rule models.PrizeRule
	err := database.DB.WithContext(r.Context()).Preload("Campaign").Preload("Prize").
		First(&rule, "id = ?", pathID(r)).Error
	if err != nil {
		utils.WriteError(w, r, notFound(err, services.ErrPrizeRuleNotFound))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: rule})
}

// POST /api/admin/prize-rules
func (c *CatalogController) CreatePrizeRule(w http.ResponseWriter, r *http.Request) {
	var req prizeRuleRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	rule, err := c.catalog.CreatePrizeRule(r.Context(), req.input())
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	zap.L().Info("prize rule created",
		zap.String("campaign_id", rule.CampaignID),
		zap.String("prize_id", rule.PrizeID),
		zap.Float64("probability", rule.Probability))
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Prize rule created", Data: rule})
}

// PUT /api/admin/prize-rules/{id}
func (c *CatalogController) UpdatePrizeRule(w http.ResponseWriter, r *http.Request) {
	var req prizeRuleRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	rule, err := c.catalog.UpdatePrizeRule(r.Context(), pathID(r), req.input())
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Prize rule updated", Data: rule})
}

// DELETE /api/admin/prize-rules/{id}
func (c *CatalogController) DeletePrizeRule(w http.ResponseWriter, r *http.Request) {
	res := database.DB.WithContext(r.Context()).Where("id = ?", pathID(r)).Delete(&models.PrizeRule{})
	if res.Error != nil {
		utils.WriteError(w, r, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteError(w, r, services.ErrPrizeRuleNotFound)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Prize rule deleted"})
}
