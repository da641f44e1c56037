package clients

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"
)

// WebhookClient posts event payloads to merchant-registered URLs
type WebhookClient interface {
	// Post delivers the payload, signing it with the endpoint secret when
	// one is set. Returns the HTTP status code and any transport error.
	Post(ctx context.Context, url, secret string, payload []byte) (int, error)
}

type webhookClient struct {
	httpClient *http.Client
}

// NewWebhookClient creates a webhook delivery client
func NewWebhookClient() WebhookClient {
	return &webhookClient{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *webhookClient) Post(ctx context.Context, url, secret string, payload []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(payload)
		req.Header.Set("X-Payhula-Signature", hex.EncodeToString(mac.Sum(nil)))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}
