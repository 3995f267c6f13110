package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sangkips/tableorder-api/internal/config"
)

// Sender delivers a text message to a phone number.
type Sender interface {
	SendText(ctx context.Context, phone, body string) error
}

// WhatsAppClient sends messages through the WhatsApp Cloud API.
// Without credentials it runs in development mode and only logs messages.
type WhatsAppClient struct {
	baseURL       string
	phoneNumberID string
	accessToken   string
	httpClient    *http.Client
}

// NewWhatsAppClient creates a new WhatsApp Cloud API client.
func NewWhatsAppClient(cfg *config.WhatsAppConfig) *WhatsAppClient {
	return &WhatsAppClient{
		baseURL:       strings.TrimRight(cfg.APIBaseURL, "/"),
		phoneNumberID: cfg.PhoneNumberID,
		accessToken:   cfg.AccessToken,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Configured reports whether API credentials are present.
func (c *WhatsAppClient) Configured() bool {
	return c.accessToken != "" && c.phoneNumberID != ""
}

type textMessage struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

// SendText sends a plain text message. Indian numbers without a country code get +91.
func (c *WhatsAppClient) SendText(ctx context.Context, phone, body string) error {
	to := InternationalNumber(phone)

	if !c.Configured() {
		log.Printf("WhatsApp (development mode) to %s:\n%s", to, body)
		return nil
	}

	msg := textMessage{MessagingProduct: "whatsapp", To: to, Type: "text"}
	msg.Text.Body = body

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("Failed to send WhatsApp message to %s: %v", to, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("whatsapp api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	log.Printf("WhatsApp message sent to %s", to)
	return nil
}

// InternationalNumber normalizes a 10 digit Indian mobile number to 91XXXXXXXXXX.
func InternationalNumber(phone string) string {
	digits := strings.TrimPrefix(strings.TrimSpace(phone), "+")
	if len(digits) == 10 {
		return "91" + digits
	}
	return digits
}
