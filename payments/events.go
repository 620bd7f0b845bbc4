package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrUnhandledEvent marks event types we receive but do not act on; the
	// webhook endpoint acknowledges them so the processor stops retrying.
	ErrUnhandledEvent = errors.New("unhandled event type")
)

// Event is a closed set of processor webhook events, decoded and validated at
// the boundary instead of being passed around as loose JSON.
type Event interface {
	EventType() string
	isEvent()
}

type PaymentSucceeded struct {
	TransactionID string
	SessionID     string
	CampaignID    uuid.UUID
	AmountCents   int64
	Currency      string
	DonorName     string
	DonorEmail    string
	DonorUserID   *uuid.UUID
	RewardTierID  *uuid.UUID
	Anonymous     bool
	Message       string
}

type PaymentFailed struct {
	TransactionID string
	SessionID     string
	CampaignID    uuid.UUID
	Currency      string
	Reason        string
}

type TransferCreated struct {
	TransferID string
}

type TransferFailed struct {
	TransferID string
	Reason     string
}

type AccountUpdated struct {
	AccountID string
	Status    string
}

func (PaymentSucceeded) EventType() string { return "payment.succeeded" }
func (PaymentFailed) EventType() string    { return "payment.failed" }
func (TransferCreated) EventType() string  { return "transfer.created" }
func (TransferFailed) EventType() string   { return "transfer.failed" }
func (AccountUpdated) EventType() string   { return "account.updated" }

func (PaymentSucceeded) isEvent() {}
func (PaymentFailed) isEvent()    {}
func (TransferCreated) isEvent()  {}
func (TransferFailed) isEvent()   {}
func (AccountUpdated) isEvent()   {}

type eventEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type paymentObject struct {
	ID              string            `json:"id"`
	CheckoutSession string            `json:"checkout_session"`
	Amount          int64             `json:"amount"`
	Currency        string            `json:"currency"`
	DonorName       string            `json:"donor_name"`
	DonorEmail      string            `json:"donor_email"`
	FailureMessage  string            `json:"failure_message"`
	Metadata        map[string]string `json:"metadata"`
}

type transferObject struct {
	ID             string `json:"id"`
	FailureMessage string `json:"failure_message"`
}

type accountObject struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// VerifyAndParseEvent checks the HMAC-SHA256 signature over the raw payload
// and decodes it into a typed event. A bad signature is rejected before any
// of the payload is trusted.
func VerifyAndParseEvent(payload []byte, sigHeader, secret string) (Event, error) {
	if !VerifyWebhookSignature(payload, sigHeader, secret) {
		return nil, ErrInvalidSignature
	}

	var env eventEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}

	switch env.Type {
	case "payment.succeeded":
		var obj paymentObject
		if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
			return nil, fmt.Errorf("decode payment object: %w", err)
		}
		return buildPaymentSucceeded(obj)
	case "payment.failed":
		var obj paymentObject
		if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
			return nil, fmt.Errorf("decode payment object: %w", err)
		}
		campaignID, err := uuid.Parse(obj.Metadata["campaign_id"])
		if err != nil {
			return nil, fmt.Errorf("payment.failed %s: bad campaign_id metadata: %w", obj.ID, err)
		}
		return PaymentFailed{
			TransactionID: obj.ID,
			SessionID:     obj.CheckoutSession,
			CampaignID:    campaignID,
			Currency:      strings.ToUpper(obj.Currency),
			Reason:        obj.FailureMessage,
		}, nil
	case "transfer.created":
		var obj transferObject
		if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
			return nil, fmt.Errorf("decode transfer object: %w", err)
		}
		return TransferCreated{TransferID: obj.ID}, nil
	case "transfer.failed":
		var obj transferObject
		if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
			return nil, fmt.Errorf("decode transfer object: %w", err)
		}
		return TransferFailed{TransferID: obj.ID, Reason: obj.FailureMessage}, nil
	case "account.updated":
		var obj accountObject
		if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
			return nil, fmt.Errorf("decode account object: %w", err)
		}
		return AccountUpdated{AccountID: obj.ID, Status: obj.Status}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnhandledEvent, env.Type)
	}
}

func buildPaymentSucceeded(obj paymentObject) (Event, error) {
	campaignID, err := uuid.Parse(obj.Metadata["campaign_id"])
	if err != nil {
		return nil, fmt.Errorf("payment.succeeded %s: bad campaign_id metadata: %w", obj.ID, err)
	}
	if obj.Amount <= 0 {
		return nil, fmt.Errorf("payment.succeeded %s: non-positive amount %d", obj.ID, obj.Amount)
	}

	ev := PaymentSucceeded{
		TransactionID: obj.ID,
		SessionID:     obj.CheckoutSession,
		CampaignID:    campaignID,
		AmountCents:   obj.Amount,
		Currency:      strings.ToUpper(obj.Currency),
		DonorName:     obj.DonorName,
		DonorEmail:    obj.DonorEmail,
		Anonymous:     obj.Metadata["anonymous"] == "true",
		Message:       obj.Metadata["message"],
	}
	if raw := obj.Metadata["donor_user_id"]; raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			ev.DonorUserID = &id
		}
	}
	if raw := obj.Metadata["reward_tier_id"]; raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			ev.RewardTierID = &id
		}
	}
	return ev, nil
}

// VerifyWebhookSignature accepts either a bare hex signature or the
// comma-separated "v1=<hex>" scheme and compares in constant time.
func VerifyWebhookSignature(payload []byte, sigHeader, secret string) bool {
	sig := strings.TrimSpace(sigHeader)
	if sig == "" || secret == "" {
		return false
	}

	candidates := []string{}
	for _, part := range strings.Split(sig, ",") {
		part = strings.TrimSpace(part)
		if v, ok := strings.CutPrefix(part, "v1="); ok {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		candidates = append(candidates, sig)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, candidate := range candidates {
		decoded, err := hex.DecodeString(strings.ToLower(candidate))
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return true
		}
	}
	return false
}
