package models

import (
	"time"

	"github.com/google/uuid"
)

// Payout account statuses mirror the payment processor's connected-account
// lifecycle and are kept current by account.updated webhooks.
const (
	PayoutAccountNotSetup   = "not_setup"
	PayoutAccountPending    = "pending"
	PayoutAccountActive     = "active"
	PayoutAccountRestricted = "restricted"
	PayoutAccountDisabled   = "disabled"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FullName string    `gorm:"size:255;not null" json:"full_name"`
	Email    string    `gorm:"size:255;not null;unique" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Role     string    `gorm:"size:20;not null;default:'backer'" json:"role"`

	// PayoutAccountID is the processor-side connected account that receives
	// payout transfers. A creator without one cannot be paid out.
	PayoutAccountID     *string `gorm:"size:255;unique" json:"payout_account_id"`
	PayoutAccountStatus string  `gorm:"size:20;not null;default:'not_setup'" json:"payout_account_status"`

	ProfilePictureURL *string `gorm:"size:255" json:"profile_picture_url"`
	Bio               *string `gorm:"type:text" json:"bio"`
	IsActive          bool    `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanReceiveTransfers reports whether the linked payout account is in a state
// the processor will accept transfers for.
func (u *User) CanReceiveTransfers() bool {
	return u.PayoutAccountID != nil && u.PayoutAccountStatus == PayoutAccountActive
}
