package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/wanjiru254/fundflow/models"
	"gorm.io/gorm"
)

const receiptNumberLength = 10
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateUniqueReceiptNumber produces an unused receipt number for a
// donation, retrying on the unlikely collision.
func GenerateUniqueReceiptNumber(tx *gorm.DB) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		b := make([]byte, receiptNumberLength)
		for i := range b {
			b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
		}
		number := "RCP-" + string(b)

		var payment models.Payment
		err := tx.Where("receipt_number = ?", number).First(&payment).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return number, nil
			}
			return "", err
		}
	}
}

// Slugify turns a campaign title into a URL-safe slug.
func Slugify(title string) string {
	var b []byte
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b = append(b, byte(r))
			lastDash = false
		default:
			if !lastDash {
				b = append(b, '-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(string(b), "-")
}

// FormatCents renders a minor-unit amount for display, e.g. 92000 -> "920.00".
func FormatCents(amountCents int64) string {
	sign := ""
	if amountCents < 0 {
		sign = "-"
		amountCents = -amountCents
	}
	return fmt.Sprintf("%s%d.%02d", sign, amountCents/100, amountCents%100)
}
