package admins

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/dorcasbeulah27/PowerOil-Backend/database"
	"github.com/dorcasbeulah27/PowerOil-Backend/middleware"
	"github.com/dorcasbeulah27/PowerOil-Backend/models"
	"github.com/dorcasbeulah27/PowerOil-Backend/services"
	"github.com/dorcasbeulah27/PowerOil-Backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type prizeRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	Type        string `json:"type" validate:"required,max=100"`
	Color       string `json:"color" validate:"omitempty,hexcolor,max=7"`
	IsActive    *bool  `json:"isActive"`
}

func (req *prizeRequest) apply(p *models.Prize) {
	p.Name = strings.TrimSpace(req.Name)
	p.Description = utils.StringPtr(strings.TrimSpace(req.Description))
	p.Type = strings.TrimSpace(req.Type)
	if req.Color != "" {
		p.Color = strings.ToUpper(req.Color)
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
}

// GET /api/admin/prizes?isActive=
func (c *CatalogController) ListPrizes(w http.ResponseWriter, r *http.Request) {
	q := database.DB.WithContext(r.Context()).Model(&models.Prize{})
	switch r.URL.Query().Get("isActive") {
	case "true":
		q = q.Where("is_active = ?", true)
	case "false":
		q = q.Where("is_active = ?", false)
	}
	prizes := make([]models.Prize, 0)
	if err := q.Order("name ASC").Find(&prizes).Error; err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    map[string]interface{}{"prizes": prizes, "count": len(prizes)},
	})
}

// GET /api/admin/prizes/{id}
func (c *CatalogController) GetPrize(w http.ResponseWriter, r *http.Request) {
	var p models.Prize
	if err := database.DB.WithContext(r.Context()).First(&p, "id = ?", pathID(r)).Error; err != nil {
		utils.WriteError(w, r, notFound(err, services.ErrPrizeNotFound))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: p})
}

// POST /api/admin/prizes
func (c *CatalogController) CreatePrize(w http.ResponseWriter, r *http.Request) {
	var req prizeRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	p := models.Prize{Color: models.DefaultPrizeColor, IsActive: true}
	req.apply(&p)
	if err := database.DB.WithContext(r.Context()).Create(&p).Error; err != nil {
		utils.WriteError(w, r, err)
		return
	}
	zap.L().Info("prize created", zap.String("prize_id", p.ID), zap.String("type", p.Type))
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Prize created", Data: p})
}

// PUT /api/admin/prizes/{id}
func (c *CatalogController) UpdatePrize(w http.ResponseWriter, r *http.Request) {
	var req prizeRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	db := database.DB.WithContext(r.Context())
	var p models.Prize
	if err := db.First(&p, "id = ?", pathID(r)).Error; err != nil {
		utils.WriteError(w, r, notFound(err, services.ErrPrizeNotFound))
		return
	}
	req.apply(&p)
	if err := db.Save(&p).Error; err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Prize updated", Data: p})
}

// POST /api/admin/prizes/{id}/image (multipart, field "image")
func (c *CatalogController) UploadPrizeImage(w http.ResponseWriter, r *http.Request) {
	if c.store == nil {
		utils.WriteJSON(w, http.StatusServiceUnavailable, utils.APIResponse{
			Success: false,
			Message: "Image storage is not configured",
			Code:    "storage_unavailable",
		})
		return
	}

	db := database.DB.WithContext(r.Context())
	var p models.Prize
	if err := db.First(&p, "id = ?", pathID(r)).Error; err != nil {
		utils.WriteError(w, r, notFound(err, services.ErrPrizeNotFound))
		return
	}

	if err := r.ParseMultipartForm(utils.MaxImageBytes); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			utils.WriteError(w, r, services.NewValidationError(utils.ErrImageSize.Error()))
			return
		}
		utils.WriteError(w, r, services.NewValidationError("Request must be multipart/form-data"))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		utils.WriteError(w, r, services.NewValidationError("image is required"))
		return
	}
	defer file.Close()

	data, ext, err := utils.SanitizeImage(file, header)
	if err != nil {
		utils.WriteError(w, r, services.NewValidationError(err.Error()))
		return
	}

	objectName := "prizes/" + p.ID + "-" + uuid.NewString() + ext
	url, err := c.store.Upload(r.Context(), objectName, bytes.NewReader(data))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := db.Model(&p).Update("image_url", url).Error; err != nil {
		// the stored object is orphaned without a row pointing at it
		if delErr := c.store.Delete(r.Context(), objectName); delErr != nil {
			zap.L().Warn("failed to remove orphaned prize image", zap.String("object", objectName), zap.Error(delErr))
		}
		utils.WriteError(w, r, err)
		return
	}
	p.ImageURL = &url
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Prize image uploaded", Data: p})
}

// DELETE /api/admin/prizes/{id}
func (c *CatalogController) DeletePrize(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := c.catalog.DeletePrize(r.Context(), id); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	zap.L().Info("prize deleted", zap.String("prize_id", id))
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Prize deleted"})
}
