package handlers

import (
	"fmt"
	"log"
	"strconv"
	"time"

	config "github.com/wanjiru254/fundflow/configs"
	"github.com/wanjiru254/fundflow/database"
	"github.com/wanjiru254/fundflow/middleware"
	"github.com/wanjiru254/fundflow/models"
	"github.com/wanjiru254/fundflow/payments"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// paymentClient is constructed in main and injected here; handlers stay thin
// wrappers over it.
var paymentClient *payments.Client

func InitDonationHandlers(client *payments.Client) {
	paymentClient = client
}

type DonateRequest struct {
	CampaignID   string  `json:"campaign_id" validate:"required,uuid"`
	AmountCents  int64   `json:"amount_cents" validate:"required,gte=100"`
	Anonymous    bool    `json:"anonymous"`
	Message      *string `json:"message" validate:"omitempty,max=500"`
	RewardTierID *string `json:"reward_tier_id" validate:"omitempty,uuid"`
}

// CreateDonation opens a hosted checkout session for a donation and records
// the pending payment. The payment is completed by the processor webhook, not
// by this handler.
func CreateDonation(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req DonateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	campaignID, _ := uuid.Parse(req.CampaignID)

	var campaign models.Campaign
	if err := database.DB.First(&campaign, "id = ?", campaignID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Campaign not found"})
	}
	if campaign.Status != models.CampaignActive || !campaign.EndDate.After(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "This campaign is no longer accepting donations"})
	}

	var donor models.User
	if err := database.DB.First(&donor, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	var tierID *uuid.UUID
	if req.RewardTierID != nil {
		parsed, _ := uuid.Parse(*req.RewardTierID)
		var tier models.RewardTier
		if err := database.DB.First(&tier, "id = ? AND campaign_id = ?", parsed, campaignID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Reward tier not found for this campaign"})
		}
		if req.AmountCents < tier.MinimumAmountCents {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("This reward requires a donation of at least %d cents", tier.MinimumAmountCents),
			})
		}
		if tier.MaxBackers != nil && tier.ClaimedCount >= *tier.MaxBackers {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "This reward tier is sold out"})
		}
		tierID = &parsed
	}

	donation := models.Payment{
		CampaignID:   campaignID,
		DonorUserID:  &donor.ID,
		DonorName:    donor.FullName,
		DonorEmail:   &donor.Email,
		Anonymous:    req.Anonymous,
		Message:      req.Message,
		RewardTierID: tierID,
		AmountCents:  req.AmountCents,
		Currency:     campaign.Currency,
		Status:       models.PaymentPending,
	}
	if err := database.DB.Create(&donation).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record donation"})
	}

	metadata := map[string]string{
		"campaign_id":   campaignID.String(),
		"donor_user_id": donor.ID.String(),
		"anonymous":     strconv.FormatBool(req.Anonymous),
	}
	if req.Message != nil {
		metadata["message"] = *req.Message
	}
	if tierID != nil {
		metadata["reward_tier_id"] = tierID.String()
	}

	frontendURL := config.Config("FRONTEND_BASE_URL")
	session, err := paymentClient.CreateCheckoutSession(c.Context(), payments.CheckoutParams{
		AmountCents: req.AmountCents,
		Currency:    campaign.Currency,
		Description: fmt.Sprintf("Donation to %s", campaign.Title),
		SuccessURL:  fmt.Sprintf("%s/campaigns/%s?donation=success", frontendURL, campaign.Slug),
		CancelURL:   fmt.Sprintf("%s/campaigns/%s?donation=canceled", frontendURL, campaign.Slug),
		Metadata:    metadata,
	})
	if err != nil {
		log.Printf("🔥 Checkout session creation failed for donation %s: %v", donation.ID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to start checkout, please try again"})
	}

	donation.ProviderSessionID = &session.ID
	if err := database.DB.Save(&donation).Error; err != nil {
		log.Printf("🔥 Failed to save checkout session id for donation %s: %v", donation.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update donation record"})
	}

	return c.JSON(fiber.Map{
		"donation_id":  donation.ID,
		"session_id":   session.ID,
		"checkout_url": session.URL,
	})
}

// ListCampaignDonations is the public donor wall for a campaign.
func ListCampaignDonations(c *fiber.Ctx) error {
	campaignID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid campaign ID format"})
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var donations []models.Payment
	if err := database.DB.
		Where("campaign_id = ? AND status = ?", campaignID, models.PaymentSucceeded).
		Order("created_at desc").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&donations).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch donations"})
	}

	out := make([]fiber.Map, 0, len(donations))
	for _, d := range donations {
		entry := fiber.Map{
			"donor_name":   d.DisplayName(),
			"amount_cents": d.AmountCents,
			"currency":     d.Currency,
			"created_at":   d.CreatedAt,
		}
		if d.Message != nil {
			entry["message"] = *d.Message
		}
		out = append(out, entry)
	}
	return c.JSON(out)
}
