package admins

import (
	"net/http"
	"strings"
	"time"

	"github.com/dorcasbeulah27/PowerOil-Backend/database"
	"github.com/dorcasbeulah27/PowerOil-Backend/models"
	"github.com/dorcasbeulah27/PowerOil-Backend/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type spinHistoryItem struct {
	ID               string              `json:"id"`
	UserID           string              `json:"user_id"`
	UserName         string              `json:"user_name"`
	Phone            string              `json:"phone"`
	CampaignID       string              `json:"campaign_id"`
	CampaignName     string              `json:"campaign_name"`
	LocationID       string              `json:"location_id"`
	LocationName     string              `json:"location_name"`
	PrizeID          string              `json:"prize_id"`
	PrizeName        string              `json:"prize_name"`
	PrizeValue       decimal.NullDecimal `json:"prize_value"`
	IsWin            bool                `json:"is_win"`
	RedemptionCode   *string             `json:"redemption_code,omitempty"`
	RedemptionStatus string              `json:"redemption_status"`
	ExpiresAt        *time.Time          `json:"expires_at,omitempty"`
	DeviceID         string              `json:"device_id"`
	SpinDate         time.Time           `json:"spin_date"`
}

// GET /api/admin/spins?campaignId=&locationId=&userId=&isWin=&page=&limit=
func UserSpinsHandler(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pagination(r)
	db := database.DB.WithContext(r.Context())

	q := db.Model(&models.SpinResult{})
	for param, column := range map[string]string{
		"campaignId": "campaign_id",
		"locationId": "location_id",
		"userId":     "user_id",
	} {
		if v := strings.TrimSpace(r.URL.Query().Get(param)); v != "" {
			q = q.Where(column+" = ?", v)
		}
	}
	switch r.URL.Query().Get("isWin") {
	case "true":
		q = q.Where("is_win = ?", true)
	case "false":
		q = q.Where("is_win = ?", false)
	}

	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.WriteError(w, r, err)
		return
	}
	var wins int64
	if err := q.Where("is_win = ?", true).Count(&wins).Error; err != nil {
		utils.WriteError(w, r, err)
		return
	}

	var spins []models.SpinResult
	if err := q.Preload("User").Preload("Campaign").Preload("Location").Preload("Prize").
		Order("spin_date DESC").Offset(offset).Limit(limit).Find(&spins).Error; err != nil {
		utils.WriteError(w, r, err)
		return
	}

	// rule values for the (campaign, prize) pairs on this page
	values := map[string]decimal.NullDecimal{}
	if len(spins) > 0 {
		campaignIDs := make([]string, 0, len(spins))
		for _, s := range spins {
			campaignIDs = append(campaignIDs, s.CampaignID)
		}
		var rules []models.PrizeRule
		if err := db.Where("campaign_id IN ?", campaignIDs).Find(&rules).Error; err != nil {
			utils.WriteError(w, r, err)
			return
		}
		for _, rule := range rules {
			values[rule.CampaignID+"/"+rule.PrizeID] = rule.Value
		}
	}

	items := make([]spinHistoryItem, 0, len(spins))
	for _, s := range spins {
		item := spinHistoryItem{
			ID:               s.ID,
			UserID:           s.UserID,
			CampaignID:       s.CampaignID,
			LocationID:       s.LocationID,
			PrizeID:          s.PrizeID,
			PrizeValue:       values[s.CampaignID+"/"+s.PrizeID],
			IsWin:            s.IsWin,
			RedemptionCode:   s.RedemptionCode,
			RedemptionStatus: s.RedemptionStatus,
			ExpiresAt:        s.ExpiresAt,
			DeviceID:         s.DeviceID,
			SpinDate:         s.SpinDate,
		}
		if s.User != nil {
			item.UserName = s.User.FullName
			item.Phone = s.User.PhoneNumber
		}
		if s.Campaign != nil {
			item.CampaignName = s.Campaign.Name
		}
		if s.Location != nil {
			item.LocationName = s.Location.Name
		}
		if s.Prize != nil {
			item.PrizeName = s.Prize.Name
		}
		items = append(items, item)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"total_spins": total,
			"total_wins":  wins,
			"items":       items,
			"pagination":  paginationMeta(page, limit, total),
		},
	})
}
