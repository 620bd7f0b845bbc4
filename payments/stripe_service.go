package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	config "github.com/wanjiru254/fundflow/configs"
)

const defaultAPIBaseURL = "https://api.stripe.com/v1"

// Client talks to the payment processor's REST API: checkout sessions for
// donations, transfers for payouts. Calls are form-encoded with a bearer key
// and a bounded timeout, surfacing failures as retryable errors rather than
// hanging.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewClient() *Client {
	baseURL := config.ConfigOr("PAYMENT_API_BASE_URL", defaultAPIBaseURL)
	secretKey := config.Config("PAYMENT_SECRET_KEY")
	if secretKey == "" {
		log.Println("⚠️ PAYMENT_SECRET_KEY is not set; processor calls will be rejected")
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type CheckoutParams struct {
	AmountCents int64
	Currency    string
	Description string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// CreateCheckoutSession opens a hosted payment page for a donation. The
// metadata rides along to the webhook so the reconciler can attribute the
// payment to its campaign.
func (c *Client) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(p.AmountCents, 10))
	form.Set("currency", strings.ToLower(p.Currency))
	form.Set("description", p.Description)
	form.Set("success_url", p.SuccessURL)
	form.Set("cancel_url", p.CancelURL)
	for k, v := range p.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var session CheckoutSession
	if err := c.post(ctx, "/checkout/sessions", form, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// CreateTransfer moves funds to a connected payout account and returns the
// processor's transfer reference.
func (c *Client) CreateTransfer(ctx context.Context, amountCents int64, currency, destination string, metadata map[string]string) (string, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountCents, 10))
	form.Set("currency", strings.ToLower(currency))
	form.Set("destination", destination)
	for k, v := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var transfer struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/transfers", form, &transfer); err != nil {
		return "", err
	}
	if transfer.ID == "" {
		return "", fmt.Errorf("processor returned a transfer without an id")
	}

	log.Printf("✅ Transfer %s submitted for %d %s to %s", transfer.ID, amountCents, currency, destination)
	return transfer.ID, nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build processor request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("processor request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read processor response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("Processor API error on %s: status %d, body: %s", path, resp.StatusCode, string(body))
		return fmt.Errorf("processor returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal processor response: %w", err)
	}
	return nil
}
