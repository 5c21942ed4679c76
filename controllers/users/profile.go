package users

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dorcasbeulah27/PowerOil-Backend/database"
	"github.com/dorcasbeulah27/PowerOil-Backend/models"
	"github.com/dorcasbeulah27/PowerOil-Backend/services"
	"github.com/dorcasbeulah27/PowerOil-Backend/utils"

	"gorm.io/gorm"
)

// GET /api/users/me
func ProfileHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized", Code: "unauthorized"})
		return
	}

	var user models.User
	err := database.DB.WithContext(r.Context()).Preload("StoreOutlet").First(&user, "id = ?", uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.WriteError(w, r, services.ErrUserNotFound)
		return
	}
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Profile retrieved", Data: user})
}

type mySpin struct {
	ID               string     `json:"id"`
	IsWin            bool       `json:"is_win"`
	RedemptionCode   *string    `json:"redemption_code"`
	RedemptionStatus string     `json:"redemption_status"`
	ExpiresAt        *time.Time `json:"expires_at"`
	SpinDate         time.Time  `json:"spin_date"`
	PrizeName        string     `json:"prize_name"`
	CampaignName     string     `json:"campaign_name"`
	LocationName     string     `json:"location_name"`
}

// GET /api/users/me/spins?page=&limit=
func MySpinsHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized", Code: "unauthorized"})
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	db := database.DB.WithContext(r.Context())
	var total int64
	if err := db.Model(&models.SpinResult{}).Where("user_id = ?", uid).Count(&total).Error; err != nil {
		utils.WriteError(w, r, err)
		return
	}

	var spins []models.SpinResult
	err := db.Preload("Prize").Preload("Campaign").Preload("Location").
		Where("user_id = ?", uid).
		Order("spin_date DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&spins).Error
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	items := make([]mySpin, 0, len(spins))
	for _, s := range spins {
		item := mySpin{
			ID:               s.ID,
			IsWin:            s.IsWin,
			RedemptionCode:   s.RedemptionCode,
			RedemptionStatus: s.RedemptionStatus,
			ExpiresAt:        s.ExpiresAt,
			SpinDate:         s.SpinDate,
		}
		if s.Prize != nil {
			item.PrizeName = s.Prize.Name
		}
		if s.Campaign != nil {
			item.CampaignName = s.Campaign.Name
		}
		if s.Location != nil {
			item.LocationName = s.Location.Name
		}
		items = append(items, item)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Spin history retrieved",
		Data: map[string]interface{}{
			"spins":        items,
			"total":        total,
			"current_page": page,
			"total_pages":  (total + int64(limit) - 1) / int64(limit),
		},
	})
}
