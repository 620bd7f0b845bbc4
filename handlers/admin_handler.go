package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wanjiru254/fundflow/database"
	"github.com/wanjiru254/fundflow/models"
)

func AdminListPayouts(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.Query("limit", "25"))
	if limit < 1 || limit > 100 {
		limit = 25
	}

	query := database.DB.Model(&models.PayoutRequest{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var requests []models.PayoutRequest
	if err := query.
		Order("requested_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&requests).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch payout requests"})
	}

	return c.JSON(fiber.Map{
		"payouts": requests,
		"total":   total,
		"page":    page,
	})
}

func AdminListCampaigns(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.Query("limit", "25"))
	if limit < 1 || limit > 100 {
		limit = 25
	}

	query := database.DB.Model(&models.Campaign{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if payoutStatus := c.Query("payout_status"); payoutStatus != "" {
		query = query.Where("payout_status = ?", payoutStatus)
	}

	var total int64
	query.Count(&total)

	var campaigns []models.Campaign
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&campaigns).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch campaigns"})
	}

	return c.JSON(fiber.Map{
		"campaigns": campaigns,
		"total":     total,
		"page":      page,
	})
}

// AdminGetDashboard aggregates platform totals for the admin overview page.
func AdminGetDashboard(c *fiber.Ctx) error {
	var totalUsers int64
	database.DB.Model(&models.User{}).Count(&totalUsers)

	var activeCampaigns int64
	database.DB.Model(&models.Campaign{}).Where("status = ?", models.CampaignActive).Count(&activeCampaigns)

	var totalRaisedCents int64
	database.DB.Model(&models.Payment{}).
		Where("status = ?", models.PaymentSucceeded).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&totalRaisedCents)

	var totalPaidOutCents int64
	database.DB.Model(&models.PayoutRequest{}).
		Where("status = ?", models.PayoutRequestPaid).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&totalPaidOutCents)

	var pendingPayouts int64
	database.DB.Model(&models.PayoutRequest{}).
		Where("status IN ?", []string{models.PayoutRequestPending, models.PayoutRequestProcessing}).
		Count(&pendingPayouts)

	return c.JSON(fiber.Map{
		"total_users":          totalUsers,
		"active_campaigns":     activeCampaigns,
		"total_raised_cents":   totalRaisedCents,
		"total_paid_out_cents": totalPaidOutCents,
		"pending_payouts":      pendingPayouts,
	})
}
