package admins

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dorcasbeulah27/PowerOil-Backend/database"
	"github.com/dorcasbeulah27/PowerOil-Backend/models"
	"github.com/dorcasbeulah27/PowerOil-Backend/services"
	"github.com/dorcasbeulah27/PowerOil-Backend/utils"

	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func pagination(r *http.Request) (page, limit, offset int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit, (page - 1) * limit
}

func paginationMeta(page, limit int, total int64) map[string]interface{} {
	pages := (total + int64(limit) - 1) / int64(limit)
	return map[string]interface{}{
		"page":        page,
		"limit":       limit,
		"total":       total,
		"total_pages": pages,
	}
}

// GET /api/admin/users?search=&storeOutletId=&verified=&page=&limit=
func GetUsers(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pagination(r)
	q := database.DB.WithContext(r.Context()).Model(&models.User{})

	if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(full_name) LIKE ? OR phone_number LIKE ? OR LOWER(email) LIKE ?", like, "%"+search+"%", like)
	}
	if outlet := strings.TrimSpace(r.URL.Query().Get("storeOutletId")); outlet != "" {
		q = q.Where("store_outlet_id = ?", outlet)
	}
	switch r.URL.Query().Get("verified") {
	case "true":
		q = q.Where("phone_verified = ?", true)
	case "false":
		q = q.Where("phone_verified = ?", false)
	}

	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.WriteError(w, r, err)
		return
	}
	users := make([]models.User, 0)
	if err := q.Preload("StoreOutlet").Order("registered_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		utils.WriteError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"users":      users,
			"pagination": paginationMeta(page, limit, total),
		},
	})
}

// GET /api/admin/users/{id}
func GetUserDetail(w http.ResponseWriter, r *http.Request) {
	db := database.DB.WithContext(r.Context())
	var user models.User
	if err := db.Preload("StoreOutlet").First(&user, "id = ?", pathID(r)).Error; err != nil {
		utils.WriteError(w, r, notFound(err, services.ErrUserNotFound))
		return
	}

	spins := make([]models.SpinResult, 0)
	if err := db.Preload("Prize").Preload("Campaign").Preload("Location").
		Where("user_id = ?", user.ID).Order("spin_date DESC").Limit(defaultPageSize).
		Find(&spins).Error; err != nil {
		utils.WriteError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"user":         user,
			"recent_spins": spins,
		},
	})
}
