package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wanjiru254/fundflow/database"
	"github.com/wanjiru254/fundflow/middleware"
	"github.com/wanjiru254/fundflow/models"
)

type UpdateProfileRequest struct {
	FullName          *string `json:"full_name"`
	ProfilePictureURL *string `json:"profile_picture_url"`
	Bio               *string `json:"bio"`
}

func GetProfile(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var user models.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(user)
}

func UpdateProfile(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var user models.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.ProfilePictureURL != nil {
		user.ProfilePictureURL = req.ProfilePictureURL
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}

	database.DB.Save(&user)

	return c.JSON(user)
}

// LinkPayoutAccount attaches a processor connected-account ID to the user.
// The account starts pending; the processor's account.updated webhook flips
// it to active once onboarding completes.
func LinkPayoutAccount(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	type LinkAccountRequest struct {
		PayoutAccountID string `json:"payout_account_id" validate:"required"`
	}
	var req LinkAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var user models.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	var existing models.User
	if err := database.DB.Where("payout_account_id = ? AND id <> ?", req.PayoutAccountID, userID).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "This payout account is already linked to another user"})
	}

	user.PayoutAccountID = &req.PayoutAccountID
	user.PayoutAccountStatus = models.PayoutAccountPending
	if err := database.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to link payout account"})
	}

	return c.JSON(fiber.Map{
		"payout_account_id":     user.PayoutAccountID,
		"payout_account_status": user.PayoutAccountStatus,
	})
}
