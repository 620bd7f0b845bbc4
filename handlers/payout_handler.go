package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/wanjiru254/fundflow/database"
	"github.com/wanjiru254/fundflow/middleware"
	"github.com/wanjiru254/fundflow/models"
	"github.com/wanjiru254/fundflow/notifications"
	"github.com/wanjiru254/fundflow/payouts"
	"github.com/wanjiru254/fundflow/utils"
)

var payoutOrchestrator *payouts.Orchestrator

// InitPayoutHandlers injects the orchestrator built in main.
func InitPayoutHandlers(orch *payouts.Orchestrator) {
	payoutOrchestrator = orch
}

func RequestPayoutHandler(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	type PayoutRequestBody struct {
		CampaignID string `json:"campaign_id" validate:"required,uuid"`
	}
	var req PayoutRequestBody
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	campaignID, err := uuid.Parse(req.CampaignID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid campaign ID format"})
	}

	receipt, err := payoutOrchestrator.RequestPayout(c.Context(), campaignID, userID, time.Now().UTC())
	if err != nil {
		var ineligible *payouts.IneligibleError
		var transferErr *payouts.TransferError
		switch {
		case errors.Is(err, payouts.ErrCampaignNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Campaign not found"})
		case errors.Is(err, payouts.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only the campaign creator can request a payout"})
		case errors.As(err, &ineligible):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":    ineligible.Reason,
				"terminal": ineligible.Terminal,
			})
		case errors.Is(err, payouts.ErrPayoutAccountRequired):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Link an active payout account before requesting a payout",
				"code":  "payout_account_required",
			})
		case errors.Is(err, payouts.ErrInvalidAmount):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Campaign funds do not cover the platform fee"})
		case errors.Is(err, payouts.ErrPayoutAlreadyInProgress):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A payout for this campaign is already in progress"})
		case errors.As(err, &transferErr):
			log.Printf("🔥 Transfer submission failed for campaign %s: %v", campaignID, err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error":     "Payment processor is unavailable, please try again",
				"retryable": true,
			})
		default:
			log.Printf("🔥 Payout request failed for campaign %s: %v", campaignID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process payout request"})
		}
	}

	go func() {
		var creator models.User
		if err := database.DB.First(&creator, "id = ?", userID).Error; err != nil {
			return
		}
		notifications.SendEmail(creator.FullName, creator.Email, "Your Payout Is on the Way!",
			"<h1>Payout Processing</h1><p>Your payout of "+utils.FormatCents(receipt.AmountCents)+" "+receipt.Currency+" has been submitted and is on its way to your linked account.</p>")
	}()

	return c.JSON(fiber.Map{
		"payout_id":    receipt.PayoutID,
		"transfer_id":  receipt.TransferID,
		"amount":       utils.FormatCents(receipt.AmountCents),
		"amount_cents": receipt.AmountCents,
		"currency":     receipt.Currency,
	})
}

// GetPayoutEligibility lets a creator see where their campaign stands before
// requesting the money.
func GetPayoutEligibility(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	campaignID, err := uuid.Parse(c.Params("campaignId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid campaign ID format"})
	}

	campaign, elig, err := payoutOrchestrator.PreviewEligibility(c.Context(), campaignID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, payouts.ErrCampaignNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Campaign not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to evaluate eligibility"})
	}
	if campaign.CreatorID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only the campaign creator can view payout eligibility"})
	}

	now := time.Now().UTC()
	resp := fiber.Map{
		"campaign_id":    campaign.ID,
		"eligible":       elig.Eligible,
		"reason":         elig.Reason,
		"terminal":       elig.Terminal,
		"funding_cents":  campaign.FundingCents(),
		"goal_cents":     campaign.GoalCents,
		"days_remaining": payouts.DaysRemainingInPayoutWindow(campaign.EndDate, now),
	}
	if fee, err := payouts.ComputePlatformFee(campaign.FundingCents()); err == nil {
		resp["platform_fee_cents"] = fee
		resp["estimated_net_cents"] = campaign.FundingCents() - fee
	}
	return c.JSON(resp)
}

func ListMyPayoutRequests(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var requests []models.PayoutRequest
	if err := database.DB.
		Where("creator_id = ?", userID).
		Order("requested_at DESC").
		Find(&requests).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch payout requests"})
	}
	return c.JSON(requests)
}
