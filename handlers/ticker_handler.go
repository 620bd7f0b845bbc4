package handlers

import (
	"log"

	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/wanjiru254/fundflow/websocket"
)

// ServeFundingTicker streams live funding updates for one campaign. The
// ticker is public; anyone viewing a campaign page can watch it.
func ServeFundingTicker(c *websocketcontrib.Conn) {
	campaignID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		_ = c.WriteJSON(fiber.Map{"error": "Invalid campaign ID"})
		c.Close()
		return
	}

	client := &websocket.Client{CampaignID: campaignID, Conn: c}
	websocket.Register <- client
	defer func() {
		websocket.Unregister <- client
		c.Close()
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			log.Printf("Funding ticker watcher for campaign %s disconnected: %v", campaignID, err)
			return
		}
	}
}
