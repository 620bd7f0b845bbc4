package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/wanjiru254/fundflow/database"
	"github.com/wanjiru254/fundflow/middleware"
	"github.com/wanjiru254/fundflow/models"
	"github.com/wanjiru254/fundflow/payouts"
	"github.com/wanjiru254/fundflow/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TierRequest struct {
	Title              string `json:"title" validate:"required,min=2"`
	Description        string `json:"description"`
	MinimumAmountCents int64  `json:"minimum_amount_cents" validate:"required,gt=0"`
	MaxBackers         *int   `json:"max_backers" validate:"omitempty,gt=0"`
}

type CreateCampaignRequest struct {
	Title       string        `json:"title" validate:"required,min=5"`
	Description string        `json:"description" validate:"required,min=20"`
	GoalCents   int64         `json:"goal_cents" validate:"required,gt=0"`
	Currency    string        `json:"currency" validate:"omitempty,len=3,uppercase"`
	EndDate     time.Time     `json:"end_date" validate:"required"`
	Tiers       []TierRequest `json:"tiers" validate:"omitempty,dive"`
}

func CreateCampaign(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req CreateCampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if !req.EndDate.After(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "End date must be in the future"})
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	campaign := models.Campaign{
		CreatorID:   userID,
		Title:       req.Title,
		Slug:        utils.Slugify(req.Title),
		Description: req.Description,
		GoalCents:   req.GoalCents,
		Currency:    currency,
		Status:      models.CampaignActive,
		EndDate:     req.EndDate,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.Campaign{}).Where("slug = ?", campaign.Slug).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			campaign.Slug = campaign.Slug + "-" + uuid.NewString()[:8]
		}
		if err := tx.Create(&campaign).Error; err != nil {
			return err
		}

		for _, tier := range req.Tiers {
			rewardTier := models.RewardTier{
				CampaignID:         campaign.ID,
				Title:              tier.Title,
				Description:        tier.Description,
				MinimumAmountCents: tier.MinimumAmountCents,
				MaxBackers:         tier.MaxBackers,
			}
			if err := tx.Create(&rewardTier).Error; err != nil {
				return err
			}
		}

		// Promote the creator so the dashboard unlocks.
		return tx.Model(&models.User{}).
			Where("id = ? AND role = ?", userID, "backer").
			Update("role", "creator").Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create campaign"})
	}

	database.DB.Preload("RewardTiers").First(&campaign, "id = ?", campaign.ID)
	return c.Status(fiber.StatusCreated).JSON(campaign)
}

func ListCampaigns(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var campaigns []models.Campaign
	if err := database.DB.
		Where("status = ?", models.CampaignActive).
		Order("created_at desc").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&campaigns).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch campaigns"})
	}

	return c.JSON(campaigns)
}

func GetCampaign(c *fiber.Ctx) error {
	ref := c.Params("id")

	var campaign models.Campaign
	query := database.DB.Preload("RewardTiers")
	var err error
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		err = query.First(&campaign, "id = ?", id).Error
	} else {
		err = query.First(&campaign, "slug = ?", ref).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Campaign not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch campaign"})
	}

	return c.JSON(campaign)
}

func GetMyCampaigns(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var campaigns []models.Campaign
	if err := database.DB.
		Preload("RewardTiers").
		Where("creator_id = ?", userID).
		Order("created_at desc").
		Find(&campaigns).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch campaigns"})
	}

	// Attach the live eligibility verdict so the dashboard can show when the
	// payout button unlocks.
	now := time.Now()
	type dashboardCampaign struct {
		models.Campaign
		PayoutEligible    bool   `json:"payout_eligible"`
		PayoutReason      string `json:"payout_reason,omitempty"`
		PayoutWindowDays  int    `json:"payout_window_days_remaining"`
		EstimatedNetCents int64  `json:"estimated_net_cents"`
	}
	out := make([]dashboardCampaign, 0, len(campaigns))
	for _, campaign := range campaigns {
		elig := payouts.Evaluate(payouts.SnapshotOf(&campaign), now)
		net, _ := payouts.ComputeNetAmount(campaign.FundingCents())
		out = append(out, dashboardCampaign{
			Campaign:          campaign,
			PayoutEligible:    elig.Eligible,
			PayoutReason:      elig.Reason,
			PayoutWindowDays:  payouts.DaysRemainingInPayoutWindow(campaign.EndDate, now),
			EstimatedNetCents: net,
		})
	}

	return c.JSON(out)
}

type UpdateCampaignRequest struct {
	Title         *string    `json:"title" validate:"omitempty,min=5"`
	Description   *string    `json:"description" validate:"omitempty,min=20"`
	CoverImageURL *string    `json:"cover_image_url"`
	EndDate       *time.Time `json:"end_date"`
}

func UpdateCampaign(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	campaignID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid campaign ID format"})
	}

	var campaign models.Campaign
	if err := database.DB.First(&campaign, "id = ?", campaignID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Campaign not found"})
	}
	if campaign.CreatorID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only the campaign creator can edit it"})
	}
	if campaign.Status == models.CampaignCompleted || campaign.Status == models.CampaignCanceled {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Finished campaigns cannot be edited"})
	}

	var req UpdateCampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if req.Title != nil {
		campaign.Title = *req.Title
	}
	if req.Description != nil {
		campaign.Description = *req.Description
	}
	if req.CoverImageURL != nil {
		campaign.CoverImageURL = req.CoverImageURL
	}
	if req.EndDate != nil {
		if !req.EndDate.After(time.Now()) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "End date must be in the future"})
		}
		campaign.EndDate = *req.EndDate
	}

	if err := database.DB.Save(&campaign).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update campaign"})
	}
	return c.JSON(campaign)
}

func CancelCampaign(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	campaignID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid campaign ID format"})
	}

	var campaign models.Campaign
	if err := database.DB.First(&campaign, "id = ?", campaignID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Campaign not found"})
	}
	if campaign.CreatorID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only the campaign creator can cancel it"})
	}
	if campaign.FundingCents() > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Campaigns with donations cannot be canceled"})
	}

	campaign.Status = models.CampaignCanceled
	if err := database.DB.Save(&campaign).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to cancel campaign"})
	}
	return c.JSON(fiber.Map{"message": "Campaign canceled"})
}
