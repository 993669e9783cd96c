package alerts

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ogulcanaydogan/slotwatch/pkg/model"
)

// SlotsEvent is the event name on every webhook delivery.
const SlotsEvent = "slots_available"

// WebhookNotifier posts slot alerts as JSON to an HTTP endpoint.
type WebhookNotifier struct {
	url    string
	secret string
	client *http.Client
}

// NewWebhookNotifier creates a webhook notifier. With a non-empty secret the
// body is signed with HMAC-SHA256 in the X-Signature-256 header.
func NewWebhookNotifier(url, secret string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		secret: secret,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (w *WebhookNotifier) Name() string { return "webhook" }

func (w *WebhookNotifier) Send(ctx context.Context, alert Alert) error {
	body, err := json.Marshal(newSlotsPayload(alert, time.Now()))
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "slotwatch/1.0")
	req.Header.Set("X-Slotwatch-Event", SlotsEvent)
	if alert.ID != "" {
		req.Header.Set("X-Slotwatch-Delivery", alert.ID)
	}
	if w.secret != "" {
		req.Header.Set("X-Signature-256", "sha256="+computeHMAC(body, []byte(w.secret)))
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// slotsPayload is the webhook body. StartDate is null when the source gave
// no date.
type slotsPayload struct {
	Event            string           `json:"event"`
	DeliveryID       string           `json:"delivery_id,omitempty"`
	SentAt           time.Time        `json:"sent_at"`
	Transition       model.Transition `json:"transition"`
	Location         string           `json:"location"`
	ReportedLocation string           `json:"reported_location,omitempty"`
	Slots            int              `json:"slots"`
	PreviousSlots    int              `json:"previous_slots"`
	StartDate        *string          `json:"start_date"`
	Cutoff           string           `json:"cutoff_date,omitempty"`
	CheckedAt        time.Time        `json:"checked_at"`
	Message          string           `json:"message"`
}

func newSlotsPayload(alert Alert, now time.Time) slotsPayload {
	p := slotsPayload{
		Event:            SlotsEvent,
		DeliveryID:       alert.ID,
		SentAt:           now.UTC(),
		Transition:       alert.Transition,
		Location:         alert.Location,
		ReportedLocation: alert.ReportedLocation,
		Slots:            alert.Slots,
		PreviousSlots:    alert.PreviousSlots,
		Cutoff:           alert.Cutoff,
		CheckedAt:        alert.CheckedAt.UTC(),
		Message:          alert.Subject,
	}
	if alert.StartDate != "" && alert.StartDate != UnknownDate {
		date := alert.StartDate
		p.StartDate = &date
	}
	return p
}

func computeHMAC(message, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}
