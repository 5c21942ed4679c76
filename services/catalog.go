package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dorcasbeulah27/PowerOil-Backend/models"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CatalogService owns the administrative rules around campaigns, outlets, prizes and
// prize rules: mapping replacement, guarded deletion and prize rule validation.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// CampaignDetails is a campaign with its active outlets and the active prizes of its rules
type CampaignDetails struct {
	models.Campaign
	Locations []models.Location `json:"locations"`
	Prizes    []models.Prize    `json:"prizes"`
}

func (s *CatalogService) CampaignDetails(ctx context.Context, id string) (*CampaignDetails, error) {
	db := s.db.WithContext(ctx)
	c, err := loadCampaign(db, id, false)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCampaignNotFound
	}

	out := &CampaignDetails{Campaign: *c, Locations: []models.Location{}, Prizes: []models.Prize{}}
	err = db.Model(&models.Location{}).
		Joins("JOIN location_campaign_mappings m ON m.location_id = locations.id").
		Where("m.campaign_id = ? AND locations.is_active = ?", id, true).
		Order("locations.name").
		Find(&out.Locations).Error
	if err != nil {
		return nil, fmt.Errorf("load campaign locations: %w", err)
	}
	err = db.Model(&models.Prize{}).
		Joins("JOIN prize_rules r ON r.prize_id = prizes.id").
		Where("r.campaign_id = ? AND prizes.is_active = ?", id, true).
		Order("r.created_at").
		Find(&out.Prizes).Error
	if err != nil {
		return nil, fmt.Errorf("load campaign prizes: %w", err)
	}
	return out, nil
}

// CampaignLocationIDs lists the outlets mapped to a campaign
func (s *CatalogService) CampaignLocationIDs(ctx context.Context, campaignID string) ([]string, error) {
	ids := []string{}
	err := s.db.WithContext(ctx).Model(&models.LocationCampaignMapping{}).
		Where("campaign_id = ?", campaignID).Pluck("location_id", &ids).Error
	return ids, err
}

// LocationCampaignIDs lists the campaigns mapped to an outlet
func (s *CatalogService) LocationCampaignIDs(ctx context.Context, locationID string) ([]string, error) {
	ids := []string{}
	err := s.db.WithContext(ctx).Model(&models.LocationCampaignMapping{}).
		Where("location_id = ?", locationID).Pluck("campaign_id", &ids).Error
	return ids, err
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// ReplaceCampaignLocations swaps the campaign's outlet mapping for locationIDs.
// Run it inside the transaction that saves the campaign.
func ReplaceCampaignLocations(tx *gorm.DB, campaignID string, locationIDs []string) error {
	ids := uniqueIDs(locationIDs)
	if len(ids) > 0 {
		var n int64
		if err := tx.Model(&models.Location{}).Where("id IN ?", ids).Count(&n).Error; err != nil {
			return fmt.Errorf("check locations: %w", err)
		}
		if int(n) != len(ids) {
			return ErrLocationNotFound.WithMessage("One or more locations do not exist")
		}
	}
	if err := tx.Where("campaign_id = ?", campaignID).Delete(&models.LocationCampaignMapping{}).Error; err != nil {
		return fmt.Errorf("clear campaign mapping: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	rows := make([]models.LocationCampaignMapping, len(ids))
	for i, id := range ids {
		rows[i] = models.LocationCampaignMapping{LocationID: id, CampaignID: campaignID}
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("create campaign mapping: %w", err)
	}
	return nil
}

// ReplaceLocationCampaigns swaps the outlet's campaign mapping for campaignIDs
func ReplaceLocationCampaigns(tx *gorm.DB, locationID string, campaignIDs []string) error {
	ids := uniqueIDs(campaignIDs)
	if len(ids) > 0 {
		var n int64
		if err := tx.Model(&models.Campaign{}).Where("id IN ?", ids).Count(&n).Error; err != nil {
			return fmt.Errorf("check campaigns: %w", err)
		}
		if int(n) != len(ids) {
			return ErrCampaignNotFound.WithMessage("One or more campaigns do not exist")
		}
	}
	if err := tx.Where("location_id = ?", locationID).Delete(&models.LocationCampaignMapping{}).Error; err != nil {
		return fmt.Errorf("clear location mapping: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	rows := make([]models.LocationCampaignMapping, len(ids))
	for i, id := range ids {
		rows[i] = models.LocationCampaignMapping{LocationID: locationID, CampaignID: id}
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("create location mapping: %w", err)
	}
	return nil
}

func spinCount(tx *gorm.DB, column, id string) (int64, error) {
	var n int64
	err := tx.Model(&models.SpinResult{}).Where(column+" = ?", id).Count(&n).Error
	return n, err
}

// DeleteCampaign removes a campaign with its rules and mappings. Campaigns with spins are kept.
func (s *CatalogService) DeleteCampaign(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Campaign
		if err := tx.Where("id = ?", id).First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCampaignNotFound
			}
			return err
		}
		n, err := spinCount(tx, "campaign_id", id)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrReferencedBySpins.WithMessage("Campaign has %d spin(s) and cannot be deleted. Set its status to completed instead.", n)
		}
		if err := tx.Where("campaign_id = ?", id).Delete(&models.PrizeRule{}).Error; err != nil {
			return err
		}
		if err := tx.Where("campaign_id = ?", id).Delete(&models.LocationCampaignMapping{}).Error; err != nil {
			return err
		}
		return tx.Delete(&c).Error
	})
}

// DeleteLocation removes an outlet that has neither spins nor registered participants
func (s *CatalogService) DeleteLocation(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var loc models.Location
		if err := tx.Where("id = ?", id).First(&loc).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLocationNotFound.WithMessage("Location not found")
			}
			return err
		}
		n, err := spinCount(tx, "location_id", id)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrReferencedBySpins.WithMessage("Location has %d spin(s) and cannot be deleted. Deactivate it instead.", n)
		}
		var users int64
		if err := tx.Model(&models.User{}).Where("store_outlet_id = ?", id).Count(&users).Error; err != nil {
			return err
		}
		if users > 0 {
			return ErrReferencedBySpins.WithMessage("Location has %d registered participant(s) and cannot be deleted. Deactivate it instead.", users)
		}
		if err := tx.Where("location_id = ?", id).Delete(&models.LocationCampaignMapping{}).Error; err != nil {
			return err
		}
		return tx.Delete(&loc).Error
	})
}

// DeletePrize removes a prize and its rules. Prizes that were ever drawn are kept.
func (s *CatalogService) DeletePrize(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Prize
		if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPrizeNotFound
			}
			return err
		}
		n, err := spinCount(tx, "prize_id", id)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrReferencedBySpins.WithMessage("Prize has %d spin(s) and cannot be deleted. Deactivate it instead.", n)
		}
		if err := tx.Where("prize_id = ?", id).Delete(&models.PrizeRule{}).Error; err != nil {
			return err
		}
		return tx.Delete(&p).Error
	})
}

// PrizeRuleInput is the writable part of a prize rule. Nil caps mean unlimited.
type PrizeRuleInput struct {
	CampaignID  string
	PrizeID     string
	Probability float64
	MaxPerDay   *int
	MaxTotal    *int
	Value       decimal.NullDecimal
}

func (in PrizeRuleInput) validate() error {
	if strings.TrimSpace(in.CampaignID) == "" || strings.TrimSpace(in.PrizeID) == "" {
		return NewValidationError("campaignId and prizeId are required")
	}
	if in.Probability < 0 || in.Probability > 1 {
		return ErrInvalidProbability
	}
	if in.MaxPerDay != nil && *in.MaxPerDay < 0 {
		return NewValidationError("maxPerDay must not be negative")
	}
	if in.MaxTotal != nil && *in.MaxTotal < 0 {
		return NewValidationError("maxTotal must not be negative")
	}
	if in.Value.Valid && in.Value.Decimal.IsNegative() {
		return NewValidationError("value must not be negative")
	}
	return nil
}

func checkRuleRefs(tx *gorm.DB, in PrizeRuleInput) error {
	var n int64
	if err := tx.Model(&models.Campaign{}).Where("id = ?", in.CampaignID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrCampaignNotFound
	}
	if err := tx.Model(&models.Prize{}).Where("id = ?", in.PrizeID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrPrizeNotFound
	}
	return nil
}

func duplicateRule(tx *gorm.DB, campaignID, prizeID, exceptID string) (bool, error) {
	q := tx.Model(&models.PrizeRule{}).Where("campaign_id = ? AND prize_id = ?", campaignID, prizeID)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// isDuplicateKey reports a unique index violation from MySQL (1062) or sqlite
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// CreatePrizeRule validates and stores a new rule
func (s *CatalogService) CreatePrizeRule(ctx context.Context, in PrizeRuleInput) (*models.PrizeRule, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	rule := &models.PrizeRule{
		CampaignID:  in.CampaignID,
		PrizeID:     in.PrizeID,
		Probability: in.Probability,
		MaxPerDay:   in.MaxPerDay,
		MaxTotal:    in.MaxTotal,
		Value:       in.Value,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkRuleRefs(tx, in); err != nil {
			return err
		}
		dup, err := duplicateRule(tx, in.CampaignID, in.PrizeID, "")
		if err != nil {
			return err
		}
		if dup {
			return ErrDuplicatePrizeRule
		}
		if err := tx.Create(rule).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrDuplicatePrizeRule
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// UpdatePrizeRule replaces the writable fields of an existing rule
func (s *CatalogService) UpdatePrizeRule(ctx context.Context, id string, in PrizeRuleInput) (*models.PrizeRule, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var rule models.PrizeRule
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&rule).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPrizeRuleNotFound
			}
			return err
		}
		if err := checkRuleRefs(tx, in); err != nil {
			return err
		}
		dup, err := duplicateRule(tx, in.CampaignID, in.PrizeID, id)
		if err != nil {
			return err
		}
		if dup {
			return ErrDuplicatePrizeRule
		}
		rule.CampaignID = in.CampaignID
		rule.PrizeID = in.PrizeID
		rule.Probability = in.Probability
		rule.MaxPerDay = in.MaxPerDay
		rule.MaxTotal = in.MaxTotal
		rule.Value = in.Value
		if err := tx.Save(&rule).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrDuplicatePrizeRule
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rule, nil
}
