package admins

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dorcasbeulah27/PowerOil-Backend/services"
	"github.com/dorcasbeulah27/PowerOil-Backend/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// CatalogController manages campaigns, outlets, prizes and prize rules
type CatalogController struct {
	catalog *services.CatalogService
	store   *utils.ObjectStore
}

// NewCatalogController wires the admin catalog handlers. store may be nil, in which
// case prize image uploads are refused.
func NewCatalogController(catalog *services.CatalogService, store *utils.ObjectStore) *CatalogController {
	return &CatalogController{catalog: catalog, store: store}
}

func pathID(r *http.Request) string {
	return strings.TrimSpace(mux.Vars(r)["id"])
}

// notFound maps gorm's missing row error onto the given domain error
func notFound(err error, nf *services.Error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nf
	}
	return err
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

func parseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, services.NewValidationError(field + " must be a date (YYYY-MM-DD or RFC 3339)")
}
