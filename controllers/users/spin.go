package users

import (
	"net/http"
	"strings"

	"github.com/dorcasbeulah27/PowerOil-Backend/middleware"
	"github.com/dorcasbeulah27/PowerOil-Backend/services"
	"github.com/dorcasbeulah27/PowerOil-Backend/utils"
)

// SpinController serves the eligibility check, the spin itself and the prize wheel contents
type SpinController struct {
	eligibility *services.EligibilityService
	spins       *services.SpinService
	prizes      *services.PrizeService
	trusted     []string
}

func NewSpinController(e *services.EligibilityService, s *services.SpinService, p *services.PrizeService, trustedProxies []string) *SpinController {
	return &SpinController{eligibility: e, spins: s, prizes: p, trusted: trustedProxies}
}

type spinTarget struct {
	UserID     string   `json:"userId"`
	CampaignID string   `json:"campaignId" validate:"required"`
	LocationID string   `json:"locationId" validate:"required"`
	Latitude   *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude  *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	DeviceID   string   `json:"deviceId"`
}

// participant resolves the acting user from the token. A userId in the body must match it.
func participant(w http.ResponseWriter, r *http.Request, bodyUserID string) (string, bool) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized", Code: "unauthorized"})
		return "", false
	}
	if bodyUserID != "" && bodyUserID != uid {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "You can only spin for your own account", Code: "forbidden"})
		return "", false
	}
	return uid, true
}

// POST /api/users/eligibility
func (c *SpinController) Eligibility(w http.ResponseWriter, r *http.Request) {
	var req spinTarget
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	uid, ok := participant(w, r, req.UserID)
	if !ok {
		return
	}

	res, err := c.eligibility.CheckEligibility(r.Context(), services.EligibilityRequest{
		UserID:     uid,
		CampaignID: req.CampaignID,
		LocationID: req.LocationID,
		Latitude:   *req.Latitude,
		Longitude:  *req.Longitude,
	})
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, res.HTTPStatus(), utils.APIResponse{
		Success: res.Eligible,
		Message: res.Reason,
		Code:    res.Code,
		Data:    res,
	})
}

// POST /api/users/spin
func (c *SpinController) Spin(w http.ResponseWriter, r *http.Request) {
	var req spinTarget
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	uid, ok := participant(w, r, req.UserID)
	if !ok {
		return
	}
	if strings.TrimSpace(req.DeviceID) == "" {
		utils.WriteError(w, r, services.NewValidationError("deviceId is required"))
		return
	}

	out, err := c.spins.Spin(r.Context(), services.SpinRequest{
		UserID:     uid,
		CampaignID: req.CampaignID,
		LocationID: req.LocationID,
		Latitude:   *req.Latitude,
		Longitude:  *req.Longitude,
		DeviceID:   strings.TrimSpace(req.DeviceID),
		IPAddress:  middleware.ClientIP(r, c.trusted),
		UserAgent:  r.UserAgent(),
	})
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	msg := "Better luck next time!"
	if out.IsWin {
		msg = "Congratulations! You won " + out.Prize.Name
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: msg, Data: out})
}

// GET /api/users/prizes/available?campaignId=&locationId=
func (c *SpinController) AvailablePrizes(w http.ResponseWriter, r *http.Request) {
	campaignID := strings.TrimSpace(r.URL.Query().Get("campaignId"))
	locationID := strings.TrimSpace(r.URL.Query().Get("locationId"))
	if campaignID == "" || locationID == "" {
		utils.WriteError(w, r, services.NewValidationError("campaignId and locationId are required"))
		return
	}

	prizes, err := c.prizes.AvailablePrizes(r.Context(), campaignID, locationID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Available prizes retrieved",
		Data:    map[string]interface{}{"prizes": prizes, "count": len(prizes)},
	})
}
