package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ogulcanaydogan/slotwatch/pkg/model"
)

// SlackNotifier sends alerts to a Slack webhook.
type SlackNotifier struct {
	webhookURL string
	channel    string
	client     *http.Client
}

// NewSlackNotifier creates a Slack webhook notifier.
func NewSlackNotifier(webhookURL, channel string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		channel:    channel,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *SlackNotifier) Name() string { return "slack" }

func (s *SlackNotifier) Send(ctx context.Context, alert Alert) error {
	color := "#36a64f" // green
	if alert.Transition == model.TransitionIncreased {
		color = "#2f80ed" // blue
	}

	fields := []slackField{
		{Title: "Location", Value: alert.Location, Short: true},
		{Title: "Slots", Value: strconv.Itoa(alert.Slots), Short: true},
		{Title: "Earliest Date", Value: alert.StartDate, Short: true},
		{Title: "Checked At", Value: alert.CheckedAt.Format("2006-01-02 15:04:05"), Short: true},
	}
	if alert.Cutoff != "" {
		fields = append(fields, slackField{Title: "Cutoff", Value: alert.Cutoff, Short: true})
	}

	payload := slackPayload{
		Channel: s.channel,
		Text:    alert.Subject,
		Attachments: []slackAttachment{
			{
				Color:  color,
				Title:  alert.Subject,
				Text:   alert.Body,
				Fields: fields,
				Footer: "slotwatch",
				Ts:     alert.CheckedAt.Unix(),
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send slack alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned status %d", resp.StatusCode)
	}
	return nil
}

type slackPayload struct {
	Channel     string            `json:"channel,omitempty"`
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Text   string       `json:"text"`
	Fields []slackField `json:"fields"`
	Footer string       `json:"footer"`
	Ts     int64        `json:"ts"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}
