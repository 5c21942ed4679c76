package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dorcasbeulah27/PowerOil-Backend/models"
	"github.com/dorcasbeulah27/PowerOil-Backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Candidate is a prize together with the campaign rule that governs it
type Candidate struct {
	Prize models.Prize
	Rule  models.PrizeRule
}

// AvailablePrize is the public projection of an awardable prize
type AvailablePrize struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Type        string  `json:"type"`
	Color       string  `json:"color"`
	ImageURL    *string `json:"image_url,omitempty"`
	IsWin       bool    `json:"is_win"`
	Probability float64 `json:"probability"`
	Chance      float64 `json:"chance"`
}

type PrizeService struct {
	db   *gorm.DB
	rand RandomSource
	now  Clock
}

func NewPrizeService(db *gorm.DB, rng RandomSource, now Clock) *PrizeService {
	if rng == nil {
		rng = utils.NewTimeSeededRand()
	}
	if now == nil {
		now = time.Now
	}
	return &PrizeService{db: db, rand: rng, now: now}
}

// SelectPrize draws one prize from the awardable set. tx should be the caller's
// transaction so the cap counts and the later insert share one view.
func (s *PrizeService) SelectPrize(ctx context.Context, tx *gorm.DB, campaignID, locationID string) (*Candidate, error) {
	if tx == nil {
		tx = s.db
	}
	cands, err := s.awardable(tx.WithContext(ctx), campaignID, locationID, s.now())
	if err != nil {
		return nil, err
	}
	picked := drawWeighted(cands, s.rand)
	return &picked, nil
}

// AvailablePrizes lists what a spin could currently land on, without drawing.
// An unconfigured or exhausted campaign yields an empty list.
func (s *PrizeService) AvailablePrizes(ctx context.Context, campaignID, locationID string) ([]AvailablePrize, error) {
	db := s.db.WithContext(ctx)
	campaign, err := loadCampaign(db, campaignID, false)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}

	cands, err := s.awardable(db, campaignID, locationID, s.now())
	if err != nil {
		var e *Error
		if errors.As(err, &e) && e.Kind == KindExhausted {
			return []AvailablePrize{}, nil
		}
		return nil, err
	}

	var total float64
	for _, c := range cands {
		if c.Rule.Probability > 0 {
			total += c.Rule.Probability
		}
	}
	out := make([]AvailablePrize, 0, len(cands))
	for _, c := range cands {
		out = append(out, AvailablePrize{
			ID:          c.Prize.ID,
			Name:        c.Prize.Name,
			Description: c.Prize.Description,
			Type:        c.Prize.Type,
			Color:       c.Prize.Color,
			ImageURL:    c.Prize.ImageURL,
			IsWin:       !c.Prize.IsLoss(),
			Probability: c.Rule.Probability,
			Chance:      utils.SharePercent(c.Rule.Probability, total, len(cands)),
		})
	}
	return out, nil
}

// awardable loads the campaign's rules and active prizes and drops every prize
// whose caps are already reached
func (s *PrizeService) awardable(db *gorm.DB, campaignID, locationID string, now time.Time) ([]Candidate, error) {
	var rules []models.PrizeRule
	if err := db.Where("campaign_id = ?", campaignID).Order("created_at ASC").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("load prize rules: %w", err)
	}
	if len(rules) == 0 {
		return nil, ErrNoPrizeRules
	}

	ruleByPrize := make(map[string]models.PrizeRule, len(rules))
	prizeIDs := make([]string, 0, len(rules))
	for _, r := range rules {
		if r.PrizeID == "" {
			continue
		}
		ruleByPrize[r.PrizeID] = r
		prizeIDs = append(prizeIDs, r.PrizeID)
	}

	var prizes []models.Prize
	if err := db.Where("id IN ? AND is_active = ?", prizeIDs, true).Order("created_at ASC").Order("name ASC").Find(&prizes).Error; err != nil {
		return nil, fmt.Errorf("load prizes: %w", err)
	}
	if len(prizes) == 0 {
		var existing int64
		if err := db.Model(&models.Prize{}).Where("id IN ?", prizeIDs).Count(&existing).Error; err != nil {
			return nil, fmt.Errorf("count prizes: %w", err)
		}
		if existing == 0 {
			return nil, ErrNoPrizesConfigured
		}
		return nil, ErrNoActivePrizes.WithMessage(
			"No active prizes available for this campaign. Found %d prize(s) but none are active.", existing)
	}

	cands, err := filterPrizesByLimits(db, prizes, ruleByPrize, campaignID, locationID, now)
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return nil, ErrNoPrizesAvailable
	}
	return cands, nil
}

// filterPrizesByLimits keeps prizes whose rule still has room.
// A set maxTotal is checked against all-time wins, so maxTotal 0 means no stock.
// A positive maxPerDay is checked against today's wins campaign-wide and at this location.
func filterPrizesByLimits(db *gorm.DB, prizes []models.Prize, rules map[string]models.PrizeRule, campaignID, locationID string, now time.Time) ([]Candidate, error) {
	out := make([]Candidate, 0, len(prizes))
	for _, p := range prizes {
		rule, ok := rules[p.ID]
		if !ok {
			continue
		}

		if rule.MaxTotal != nil {
			n, err := countWins(db, winQuery{CampaignID: campaignID, PrizeID: p.ID})
			if err != nil {
				return nil, err
			}
			if n >= int64(*rule.MaxTotal) {
				continue
			}
		}

		if rule.MaxPerDay != nil && *rule.MaxPerDay > 0 {
			n, err := countWins(db, winQuery{CampaignID: campaignID, PrizeID: p.ID, Day: &now})
			if err != nil {
				return nil, err
			}
			if n >= int64(*rule.MaxPerDay) {
				continue
			}
			n, err = countWins(db, winQuery{CampaignID: campaignID, PrizeID: p.ID, LocationID: locationID, Day: &now})
			if err != nil {
				return nil, err
			}
			if n >= int64(*rule.MaxPerDay) {
				continue
			}
		}

		out = append(out, Candidate{Prize: p, Rule: rule})
	}
	return out, nil
}

// drawWeighted picks by rule probability. Weights need not sum to one; when they
// sum to zero every candidate is equally likely. cands must not be empty.
func drawWeighted(cands []Candidate, rng RandomSource) Candidate {
	var total float64
	last := -1
	for i, c := range cands {
		if c.Rule.Probability > 0 {
			total += c.Rule.Probability
			last = i
		}
	}
	if total <= 0 {
		return cands[rng.Intn(len(cands))]
	}

	r := rng.Float64() * total
	var cum float64
	for _, c := range cands {
		if c.Rule.Probability <= 0 {
			continue
		}
		cum += c.Rule.Probability
		if r <= cum {
			return c
		}
	}
	return cands[last]
}

// GenerateRedemptionCode returns prefix followed by 8 uppercase characters of a fresh UUID
func GenerateRedemptionCode(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + strings.ToUpper(id[:8])
}
