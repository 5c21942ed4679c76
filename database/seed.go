package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dorcasbeulah27/PowerOil-Backend/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedOptions controls the demo data written by Seed
type SeedOptions struct {
	AdminUsername string
	AdminPassword string
	AdminEmail    string
	Now           time.Time
}

type seedPrize struct {
	prize       models.Prize
	probability float64
	maxPerDay   *int
	maxTotal    *int
	value       int64
}

func intPtr(v int) *int { return &v }

func strPtr(s string) *string { return &s }

// Seed writes the superadmin, demo outlets, one active campaign and its prize table.
// Each group is skipped when rows already exist, so it can be rerun safely.
func Seed(ctx context.Context, db *gorm.DB, opts SeedOptions) error {
	if opts.AdminUsername == "" {
		opts.AdminUsername = "admin"
	}
	if opts.AdminEmail == "" {
		opts.AdminEmail = "admin@poweroil.com"
	}
	if opts.AdminPassword == "" {
		return errors.New("admin password is required for seeding")
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin, err := seedAdmin(tx, opts)
		if err != nil {
			return err
		}
		locations, err := seedLocations(tx)
		if err != nil {
			return err
		}
		campaign, created, err := seedCampaign(tx, admin, opts.Now)
		if err != nil {
			return err
		}
		if created {
			for _, loc := range locations {
				m := models.LocationCampaignMapping{LocationID: loc.ID, CampaignID: campaign.ID}
				if err := tx.Create(&m).Error; err != nil {
					return fmt.Errorf("map location %s: %w", loc.Name, err)
				}
			}
		}
		return seedPrizes(tx, campaign)
	})
}

func seedAdmin(tx *gorm.DB, opts SeedOptions) (*models.Admin, error) {
	var admin models.Admin
	err := tx.Where("username = ?", opts.AdminUsername).First(&admin).Error
	if err == nil {
		zap.L().Info("admin already exists", zap.String("username", admin.Username))
		return &admin, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	admin = models.Admin{
		Username: opts.AdminUsername,
		Email:    opts.AdminEmail,
		Password: opts.AdminPassword,
		FullName: "Power Oil Admin",
		Role:     models.RoleSuperAdmin,
		IsActive: true,
	}
	if err := admin.HashPassword(); err != nil {
		return nil, err
	}
	if err := tx.Create(&admin).Error; err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	zap.L().Info("admin created", zap.String("username", admin.Username))
	return &admin, nil
}

func seedLocations(tx *gorm.DB) ([]models.Location, error) {
	var count int64
	if err := tx.Model(&models.Location{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		var existing []models.Location
		err := tx.Find(&existing).Error
		return existing, err
	}

	locations := []models.Location{
		{Name: "Shoprite Ikeja City Mall", Type: models.LocationSupermarket, Address: "Obafemi Awolowo Way, Ikeja, Lagos", State: "Lagos", City: "Ikeja", Latitude: 6.6018, Longitude: 3.3515},
		{Name: "Shoprite Lekki", Type: models.LocationSupermarket, Address: "Admiralty Way, Lekki Phase 1, Lagos", State: "Lagos", City: "Lekki", Latitude: 6.4474, Longitude: 3.4647},
		{Name: "Justrite Supermarket Victoria Island", Type: models.LocationSupermarket, Address: "Akin Adesola Street, Victoria Island, Lagos", State: "Lagos", City: "Victoria Island", Latitude: 6.4281, Longitude: 3.4219},
		{Name: "Ebeano Supermarket Abuja", Type: models.LocationSupermarket, Address: "Wuse 2, Abuja", State: "FCT", City: "Abuja", Latitude: 9.0643, Longitude: 7.4894},
		{Name: "Market Square Port Harcourt", Type: models.LocationOpenMarket, Address: "Trans Amadi, Port Harcourt", State: "Rivers", City: "Port Harcourt", Latitude: 4.8156, Longitude: 7.0498},
		{Name: "City Mall Kano", Type: models.LocationSupermarket, Address: "Zoo Road, Kano", State: "Kano", City: "Kano", Latitude: 11.9956, Longitude: 8.5265},
	}
	for i := range locations {
		locations[i].RadiusMeters = models.DefaultRadiusMeters
		locations[i].IsActive = true
	}
	if err := tx.Create(&locations).Error; err != nil {
		return nil, fmt.Errorf("create locations: %w", err)
	}
	zap.L().Info("locations created", zap.Int("count", len(locations)))
	return locations, nil
}

func seedCampaign(tx *gorm.DB, admin *models.Admin, now time.Time) (*models.Campaign, bool, error) {
	var campaign models.Campaign
	err := tx.Order("created_at ASC").First(&campaign).Error
	if err == nil {
		return &campaign, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	campaign = models.Campaign{
		Name:             "Power Oil Summer Spin to Win 2024",
		Description:      strPtr("Spin the wheel at participating stores and win amazing prizes! From free products to wellness packs, there's something for everyone."),
		StartDate:        now,
		EndDate:          now.AddDate(0, 0, 90),
		Status:           models.CampaignActive,
		MaxSpinsPerUser:  1,
		SpinCooldownDays: 7,
		TotalBudget:      decimal.NewFromInt(5000000),
		SpentBudget:      decimal.Zero,
		CreatedByID:      &admin.ID,
	}
	if err := tx.Create(&campaign).Error; err != nil {
		return nil, false, fmt.Errorf("create campaign: %w", err)
	}
	zap.L().Info("campaign created", zap.String("campaign_id", campaign.ID))
	return &campaign, true, nil
}

func seedPrizes(tx *gorm.DB, campaign *models.Campaign) error {
	var count int64
	if err := tx.Model(&models.Prize{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	table := []seedPrize{
		{prize: models.Prize{Name: "Free Power Oil 1L", Description: strPtr("Get a free 1 liter bottle of Power Oil"), Type: "Product", Color: "#FFD700"}, probability: 0.05, maxPerDay: intPtr(50), maxTotal: intPtr(1000), value: 1500},
		{prize: models.Prize{Name: "₦500 Discount Voucher", Description: strPtr("₦500 off your next purchase"), Type: "Discount Voucher", Color: "#10B981"}, probability: 0.15, maxPerDay: intPtr(100), maxTotal: intPtr(10000), value: 500},
		{prize: models.Prize{Name: "₦200 Airtime", Description: strPtr("Free ₦200 mobile airtime"), Type: "Airtime", Color: "#3B82F6"}, probability: 0.20, maxPerDay: intPtr(150), maxTotal: intPtr(10000), value: 200},
		{prize: models.Prize{Name: "Power Oil Branded T-Shirt", Description: strPtr("Stylish Power Oil branded t-shirt"), Type: "Merchandise", Color: "#EC4899"}, probability: 0.10, maxPerDay: intPtr(30), maxTotal: intPtr(500), value: 3000},
		{prize: models.Prize{Name: "Wellness Gift Pack", Description: strPtr("Premium wellness gift pack with yoga mat and meal bowl"), Type: "Wellness Pack", Color: "#8B5CF6"}, probability: 0.03, maxPerDay: intPtr(10), maxTotal: intPtr(200), value: 8000},
		{prize: models.Prize{Name: "Try Again", Description: strPtr("Better luck next time!"), Type: models.PrizeTypeNoWin, Color: "#6B7280"}, probability: 0.47},
	}

	for _, sp := range table {
		prize := sp.prize
		prize.IsActive = true
		if err := tx.Create(&prize).Error; err != nil {
			return fmt.Errorf("create prize %s: %w", prize.Name, err)
		}
		rule := models.PrizeRule{
			CampaignID:  campaign.ID,
			PrizeID:     prize.ID,
			Probability: sp.probability,
			MaxPerDay:   sp.maxPerDay,
			MaxTotal:    sp.maxTotal,
		}
		if sp.value > 0 {
			rule.Value = decimal.NewNullDecimal(decimal.NewFromInt(sp.value))
		}
		if err := tx.Create(&rule).Error; err != nil {
			return fmt.Errorf("create prize rule %s: %w", prize.Name, err)
		}
	}
	zap.L().Info("prizes and rules created", zap.Int("count", len(table)))
	return nil
}
