package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	config "github.com/wanjiru254/fundflow/configs"
	"github.com/wanjiru254/fundflow/database"
	"github.com/wanjiru254/fundflow/models"
	"github.com/wanjiru254/fundflow/notifications"
	"github.com/wanjiru254/fundflow/payments"
	"github.com/wanjiru254/fundflow/payouts"
	"github.com/wanjiru254/fundflow/services"
	"github.com/wanjiru254/fundflow/utils"
	"github.com/wanjiru254/fundflow/websocket"
)

var webhookReconciler *payouts.Reconciler

// InitWebhookHandlers injects the reconciler built in main.
func InitWebhookHandlers(rec *payouts.Reconciler) {
	webhookReconciler = rec
}

// HandleProcessorWebhook receives payment and transfer events from the
// processor. A 2xx acknowledges delivery; any other status makes the
// processor retry, so storage errors must surface as 500.
func HandleProcessorWebhook(c *fiber.Ctx) error {
	payload := c.Body()
	signature := c.Get("Webhook-Signature")

	event, err := payments.VerifyAndParseEvent(payload, signature, config.Config("PAYMENT_WEBHOOK_SECRET"))
	if err != nil {
		if errors.Is(err, payments.ErrUnhandledEvent) {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
		}
		if errors.Is(err, payments.ErrInvalidSignature) {
			log.Printf("⚠️ Rejected webhook with invalid signature")
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid webhook signature"})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse webhook payload"})
	}

	outcome, err := webhookReconciler.Apply(c.Context(), event)
	if err != nil {
		log.Printf("🔥 CRITICAL: failed to reconcile %s event: %v", event.EventType(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process webhook"})
	}

	fanOutWebhookEffects(outcome)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}

// fanOutWebhookEffects pushes ticker updates, emails and receipt generation
// after the event is durably recorded. None of these block the acknowledgment
// and none are retried by the processor, so they stay best-effort.
func fanOutWebhookEffects(outcome *payouts.Outcome) {
	switch ev := outcome.Event.(type) {
	case payments.PaymentSucceeded:
		if outcome.Duplicate {
			return
		}
		var campaign models.Campaign
		if err := database.DB.Preload("Creator").First(&campaign, "id = ?", ev.CampaignID).Error; err != nil {
			log.Printf("⚠️ Ticker update skipped, campaign %s not found: %v", ev.CampaignID, err)
			return
		}

		websocket.Publish(websocket.FundingUpdate{
			CampaignID:   campaign.ID,
			FundingCents: outcome.NewFundingCents,
			GoalCents:    campaign.GoalCents,
			DonorName:    outcome.Payment.DisplayName(),
		})

		go notifications.SendEmail(campaign.Creator.FullName, campaign.Creator.Email, "You Received a New Donation!",
			"<h1>New Donation</h1><p>"+outcome.Payment.DisplayName()+" just donated "+utils.FormatCents(ev.AmountCents)+" "+ev.Currency+" to \""+campaign.Title+"\".</p>")

		if outcome.Payment.DonorEmail != nil {
			go services.GenerateDonationReceipt(outcome.Payment.ID)
		}

	case payments.TransferFailed:
		if outcome.Payout == nil {
			return
		}
		var creator models.User
		if err := database.DB.First(&creator, "id = ?", outcome.Payout.CreatorID).Error; err != nil {
			return
		}
		go notifications.SendEmail(creator.FullName, creator.Email, "Your Payout Could Not Be Completed",
			"<h1>Payout Failed</h1><p>Your payout of "+utils.FormatCents(outcome.Payout.AmountCents)+" "+outcome.Payout.Currency+" could not be delivered: "+ev.Reason+". Your campaign funds are untouched and you can request the payout again.</p>")
	}
}
