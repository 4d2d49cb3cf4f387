package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/logctx"
)

const (
	EventPaymentConfigError = "payment_config_error"

	defaultTimeout = 5 * time.Second
)

// WebhookNotify is the JSON body posted to the ops webhook.
type WebhookNotify struct {
	HotelID   int    `json:"hotelId"`
	Event     string `json:"event"`
	Reason    string `json:"reason"`
	TimeStamp string `json:"timestamp"`
}

// WebhookNotifier posts ops events. An empty URL disables it.
type WebhookNotifier struct {
	url  string
	rest *resty.Client
	wg   sync.WaitGroup
}

func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &WebhookNotifier{
		url:  url,
		rest: resty.New().SetTimeout(timeout),
	}
}

// NotifyPaymentConfigError sends the event in the background; failures are only logged.
func (n *WebhookNotifier) NotifyPaymentConfigError(ctx context.Context, hotelID int, reason error) {
	if n == nil || n.url == "" {
		return
	}

	payload := &WebhookNotify{
		HotelID:   hotelID,
		Event:     EventPaymentConfigError,
		Reason:    reason.Error(),
		TimeStamp: time.Now().UTC().Format(time.RFC3339),
	}

	ctx = context.WithoutCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.NotifyWebhook(ctx, payload); err != nil {
			logctx.From(ctx).Warn("webhook not delivered", slog.Int("hotel_id", hotelID), slog.Any("err", err))
		}
	}()
}

// NotifyWebhook posts one payload synchronously.
func (n *WebhookNotifier) NotifyWebhook(ctx context.Context, payload *WebhookNotify) error {
	resp, err := n.rest.R().
		SetContext(ctx).
		SetBody(payload).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook answered %d", resp.StatusCode())
	}

	logctx.From(ctx).Debug("webhook delivered", slog.String("event", payload.Event))
	return nil
}

// Wait blocks until background deliveries finish.
func (n *WebhookNotifier) Wait() {
	if n != nil {
		n.wg.Wait()
	}
}
