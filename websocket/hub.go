package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// Client is a browser watching one campaign's funding ticker.
type Client struct {
	CampaignID uuid.UUID
	Conn       *websocket.Conn
}

// FundingUpdate is pushed to every watcher of a campaign when the webhook
// reconciler records a donation.
type FundingUpdate struct {
	CampaignID   uuid.UUID `json:"campaign_id"`
	FundingCents int64     `json:"funding_cents"`
	GoalCents    int64     `json:"goal_cents"`
	DonorName    string    `json:"donor_name,omitempty"`
}

var watchers = make(map[uuid.UUID]map[*websocket.Conn]bool)
var watchersMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Broadcast = make(chan FundingUpdate, 32)

func RunHub() {
	for {
		select {
		case client := <-Register:
			watchersMu.Lock()
			if watchers[client.CampaignID] == nil {
				watchers[client.CampaignID] = make(map[*websocket.Conn]bool)
			}
			watchers[client.CampaignID][client.Conn] = true
			watchersMu.Unlock()
		case client := <-Unregister:
			watchersMu.Lock()
			if conns, ok := watchers[client.CampaignID]; ok {
				delete(conns, client.Conn)
				if len(conns) == 0 {
					delete(watchers, client.CampaignID)
				}
			}
			watchersMu.Unlock()
		case update := <-Broadcast:
			watchersMu.RLock()
			conns := make([]*websocket.Conn, 0, len(watchers[update.CampaignID]))
			for conn := range watchers[update.CampaignID] {
				conns = append(conns, conn)
			}
			watchersMu.RUnlock()

			for _, conn := range conns {
				if err := conn.WriteJSON(update); err != nil {
					log.Printf("Error pushing funding update to watcher: %v", err)
					conn.Close()
					watchersMu.Lock()
					if w, ok := watchers[update.CampaignID]; ok {
						delete(w, conn)
					}
					watchersMu.Unlock()
				}
			}
		}
	}
}

// Publish queues a funding update without blocking the caller; the ticker is
// best-effort.
func Publish(update FundingUpdate) {
	select {
	case Broadcast <- update:
	default:
		log.Printf("Funding ticker backlog full, dropping update for campaign %s", update.CampaignID)
	}
}
