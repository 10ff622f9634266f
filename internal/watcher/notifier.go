package watcher

import (
	"buildwatch/internal/providers"
	"buildwatch/internal/structures"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

// NotifierInterface forwards watcher failures to an operator channel.
// Delivery is best effort; failures are only logged.
type NotifierInterface interface {
	Notify(ctx context.Context, message string)
}

type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
	logger     providers.Logger
}

func NewNotifier(conf *structures.Config, logger providers.Logger) NotifierInterface {
	if conf.Notifier.DiscordWebhookURL == "" {
		return &noopNotifier{}
	}
	timeout := conf.Notifier.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DiscordNotifier{
		webhookURL: conf.Notifier.DiscordWebhookURL,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (d *DiscordNotifier) Notify(ctx context.Context, message string) {
	if err := d.send(ctx, message); err != nil {
		d.logger.Errorf(providers.TypeWatcher, "Discord notify failed: %s", err)
	}
}

func (d *DiscordNotifier) send(ctx context.Context, message string) error {
	body, err := json.Marshal(map[string]string{"content": message})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 1<<16))

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", res.StatusCode)
	}
	return nil
}

type noopNotifier struct{}

func (n *noopNotifier) Notify(_ context.Context, _ string) {}
