package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultWebhookTimeout = 10 * time.Second
	contentType           = "application/json; charset=utf-8"
	userAgent             = "stashwatch/v1"
	maxErrorBody          = 512
)

// DeliveryError reports a failed webhook delivery. StatusCode is zero when no
// response was received.
type DeliveryError struct {
	StatusCode int
	Content    string
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("webhook delivery failed with HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("webhook delivery failed: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

type webhookPayload struct {
	Content string `json:"content"`
}

type WebhookConfig struct {
	URL     string
	Timeout time.Duration
	// HTTPClient overrides the default client; its Timeout is replaced by
	// Timeout and redirects are never followed.
	HTTPClient *http.Client
}

type WebhookSender struct {
	httpClient *http.Client
	logger     *zap.Logger
	url        string
}

func NewWebhookSender(logger *zap.Logger, cfg WebhookConfig) (*WebhookSender, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webhook URL is required")
	}
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook URL: %w", err)
	}
	if u.Scheme != "https" {
		return nil, fmt.Errorf("webhook URL must use https scheme, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("webhook URL must include a host")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}

	var client http.Client
	if cfg.HTTPClient != nil {
		client = *cfg.HTTPClient
	} else {
		client.Transport = http.DefaultTransport.(*http.Transport).Clone()
	}
	client.Timeout = timeout
	// a redirect would turn the POST into a bodiless GET
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &WebhookSender{
		httpClient: &client,
		logger:     logger.Named("webhook-sender"),
		url:        cfg.URL,
	}, nil
}

// Send performs one POST of a's text. Only HTTP 204 counts as delivered.
func (ws *WebhookSender) Send(ctx context.Context, a Alert) error {
	body, err := json.Marshal(webhookPayload{Content: a.Text})
	if err != nil {
		webhookSendTotal.WithLabelValues("error").Inc()
		return &DeliveryError{Content: a.Text, Err: fmt.Errorf("marshal webhook payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ws.url, bytes.NewReader(body))
	if err != nil {
		webhookSendTotal.WithLabelValues("error").Inc()
		return &DeliveryError{Content: a.Text, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := ws.httpClient.Do(req)
	duration := time.Since(start).Seconds()
	if err != nil {
		webhookSendTotal.WithLabelValues("error").Inc()
		webhookSendDuration.WithLabelValues("error").Observe(duration)
		return &DeliveryError{Content: a.Text, Err: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNoContent {
		webhookSendTotal.WithLabelValues("success").Inc()
		webhookSendDuration.WithLabelValues("success").Observe(duration)
		ws.logger.Debug("Webhook alert delivered",
			zap.String("alert_id", a.ID),
			zap.Duration("took", time.Since(start)),
		)
		return nil
	}

	webhookSendTotal.WithLabelValues("error").Inc()
	webhookSendDuration.WithLabelValues("error").Observe(duration)
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &DeliveryError{
		StatusCode: resp.StatusCode,
		Content:    a.Text,
		Err:        fmt.Errorf("unexpected status %q: %s", resp.Status, strings.TrimSpace(string(snippet))),
	}
}

func (ws *WebhookSender) RedactedURL() string {
	return RedactURL(ws.url)
}

// RedactURL masks the credentials in a webhook URL for logging: userinfo,
// query values and the trailing token segment of the path.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	if u.User != nil {
		u.User = url.User("REDACTED")
	}
	if u.RawQuery != "" {
		q := u.Query()
		for key := range q {
			q.Set(key, "REDACTED")
		}
		u.RawQuery = q.Encode()
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) >= 2 {
		segments[len(segments)-1] = "REDACTED"
		u.Path = "/" + strings.Join(segments, "/")
		u.RawPath = ""
	}
	return u.String()
}
