// Package whatsapp sends notifications through an Evolution API v2 instance.
package whatsapp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/ttacon/libphonenumber"

	"JurisMonitor/internal/domain"
	"JurisMonitor/internal/ports"
)

// ErrNotConfigured is returned when the API URL, key or instance is missing.
var ErrNotConfigured = errors.New("whatsapp notifier misconfigured")

// DefaultRegion is used to parse phone numbers written without a country code.
const DefaultRegion = "BR"

// Config holds the Evolution API settings.
type Config struct {
	BaseURL  string
	APIKey   string
	Instance string
	Region   string
	Timeout  time.Duration
}

// Notifier posts one text message per opted-in phone within a single dispatch.
type Notifier struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers the Evolution API instance.
func NewNotifier(cfg Config, logger *slog.Logger) *Notifier {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With("component", "notifier.whatsapp"),
	}
}

// Channel identifies the notifier.
func (n *Notifier) Channel() domain.Channel {
	return domain.ChannelWhatsApp
}

// Notify sends the rendered text to every reachable recipient and joins the failures.
func (n *Notifier) Notify(ctx context.Context, note domain.Notification) error {
	if n.cfg.BaseURL == "" || n.cfg.APIKey == "" || n.cfg.Instance == "" {
		return ErrNotConfigured
	}

	text := RenderText(note)
	sent := make(map[string]bool)
	var errs []error
	for _, r := range note.Recipients {
		if !r.Accepts(domain.ChannelWhatsApp) {
			continue
		}
		number, err := NormalizePhone(r.Phone, n.cfg.Region)
		if err != nil {
			n.logger.Warn("skip recipient with invalid phone", "recipient", r.ID, "error", err)
			continue
		}
		if sent[number] {
			continue
		}
		sent[number] = true

		if err := n.sendText(ctx, number, text); err != nil {
			errs = append(errs, fmt.Errorf("send to recipient %d: %w", r.ID, err))
		}
	}

	return errors.Join(errs...)
}

// NormalizePhone returns the E.164 digits (no plus sign) expected by the API.
func NormalizePhone(phone, region string) (string, error) {
	p, err := libphonenumber.Parse(phone, region)
	if err != nil {
		return "", fmt.Errorf("parse phone: %w", err)
	}
	if !libphonenumber.IsValidNumber(p) {
		return "", fmt.Errorf("phone number is not valid")
	}
	return strings.TrimPrefix(libphonenumber.Format(p, libphonenumber.E164), "+"), nil
}

// RenderText formats the notification with WhatsApp markup.
func RenderText(note domain.Notification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n", note.Subject)
	if note.NPU != "" {
		fmt.Fprintf(&b, "Processo: %s\n", note.NPU)
	}
	for _, line := range note.Lines {
		fmt.Fprintf(&b, "\n• %s", line)
	}
	if note.Link != "" {
		fmt.Fprintf(&b, "\n\n%s", note.Link)
	}
	return b.String()
}

type sendTextRequest struct {
	Number  string      `json:"number"`
	Text    string      `json:"text"`
	Options sendOptions `json:"options"`
}

type sendOptions struct {
	Delay    int    `json:"delay"`
	Presence string `json:"presence"`
}

func (n *Notifier) sendText(ctx context.Context, number, text string) error {
	body, err := json.Marshal(sendTextRequest{
		Number:  number,
		Text:    text,
		Options: sendOptions{Delay: 1200, Presence: "composing"},
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/message/sendText/%s", n.cfg.BaseURL, url.PathEscape(n.cfg.Instance))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", n.cfg.APIKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("evolution api error: %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}
	return nil
}
