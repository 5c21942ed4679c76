package middleware

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/dorcasbeulah27/PowerOil-Backend/utils"
)

// ErrBadRequestBody is returned by ValidateJSON after it has already written the response
var ErrBadRequestBody = errors.New("bad request body")

// ValidateJSON decodes the JSON payload into dst and runs utils.ValidateStruct.
// On failure the response has been written and the caller should just return.
func ValidateJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt != "application/json" {
		utils.WriteJSON(w, http.StatusUnsupportedMediaType, utils.APIResponse{Success: false, Message: "Content-Type must be application/json", Code: "unsupported_media_type"})
		return ErrBadRequestBody
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.WriteJSON(w, http.StatusRequestEntityTooLarge, utils.APIResponse{Success: false, Message: "Request body too large", Code: "body_too_large"})
			return ErrBadRequestBody
		}
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid JSON body", Code: "invalid_json"})
		return ErrBadRequestBody
	}
	if err := utils.ValidateStruct(dst); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error(), Code: "validation_error"})
		return ErrBadRequestBody
	}
	return nil
}
