package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// NotificationClient sends customer emails via the notification service
type NotificationClient interface {
	// SendPriceAlert tells a subscriber the product price dropped
	SendPriceAlert(ctx context.Context, n *PriceAlertNotification) error
	// SendStockAlert tells a subscriber the product is back or running low
	SendStockAlert(ctx context.Context, n *StockAlertNotification) error
	// SendShipmentUpdate tells the buyer their order shipped or arrived
	SendShipmentUpdate(ctx context.Context, n *OrderStatusNotification) error
	// SendReturnUpdate tells the buyer their return progressed
	SendReturnUpdate(ctx context.Context, n *OrderStatusNotification) error
}

type notificationClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Entry
}

// NewNotificationClient creates a new notification client. An empty base
// URL yields a client that logs and drops every send, so local setups
// work without the email service.
func NewNotificationClient(baseURL string, logger *logrus.Logger) NotificationClient {
	return &notificationClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.WithField("component", "notification_client"),
	}
}

// sendRequest is the wire format of the notification service API
type sendRequest struct {
	Channel        string                 `json:"channel"`
	RecipientEmail string                 `json:"recipientEmail"`
	Subject        string                 `json:"subject"`
	TemplateName   string                 `json:"templateName,omitempty"`
	Variables      map[string]interface{} `json:"variables,omitempty"`
}

// PriceAlertNotification carries a price-drop alert payload
type PriceAlertNotification struct {
	StoreID        string
	RecipientEmail string
	ProductName    string
	OldPrice       float64
	NewPrice       float64
	Currency       string
}

// StockAlertNotification carries a stock-transition alert payload
type StockAlertNotification struct {
	StoreID        string
	RecipientEmail string
	ProductName    string
	StockQuantity  int
	Transition     string
}

// OrderStatusNotification carries a shipment or return status payload
type OrderStatusNotification struct {
	StoreID        string
	RecipientEmail string
	CustomerName   string
	OrderNumber    string
	Status         string
}

// SendPriceAlert sends a price-drop email
func (c *notificationClient) SendPriceAlert(ctx context.Context, n *PriceAlertNotification) error {
	req := sendRequest{
		Channel:        "EMAIL",
		RecipientEmail: n.RecipientEmail,
		Subject:        fmt.Sprintf("Price drop on %s", n.ProductName),
		TemplateName:   "price_alert",
		Variables: map[string]interface{}{
			"productName": n.ProductName,
			"oldPrice":    n.OldPrice,
			"newPrice":    n.NewPrice,
			"currency":    n.Currency,
		},
	}
	return c.send(ctx, n.StoreID, req)
}

// SendStockAlert sends a back-in-stock or low-stock email
func (c *notificationClient) SendStockAlert(ctx context.Context, n *StockAlertNotification) error {
	subject := fmt.Sprintf("%s is back in stock", n.ProductName)
	if n.Transition == "out_to_low" {
		subject = fmt.Sprintf("%s is almost gone", n.ProductName)
	}
	req := sendRequest{
		Channel:        "EMAIL",
		RecipientEmail: n.RecipientEmail,
		Subject:        subject,
		TemplateName:   "stock_alert",
		Variables: map[string]interface{}{
			"productName":   n.ProductName,
			"stockQuantity": n.StockQuantity,
			"transition":    n.Transition,
		},
	}
	return c.send(ctx, n.StoreID, req)
}

// SendShipmentUpdate sends a shipment status email
func (c *notificationClient) SendShipmentUpdate(ctx context.Context, n *OrderStatusNotification) error {
	req := sendRequest{
		Channel:        "EMAIL",
		RecipientEmail: n.RecipientEmail,
		Subject:        fmt.Sprintf("Order %s update", n.OrderNumber),
		TemplateName:   "shipment_update",
		Variables: map[string]interface{}{
			"customerName": n.CustomerName,
			"orderNumber":  n.OrderNumber,
			"status":       n.Status,
		},
	}
	return c.send(ctx, n.StoreID, req)
}

// SendReturnUpdate sends a return status email
func (c *notificationClient) SendReturnUpdate(ctx context.Context, n *OrderStatusNotification) error {
	req := sendRequest{
		Channel:        "EMAIL",
		RecipientEmail: n.RecipientEmail,
		Subject:        fmt.Sprintf("Return update for order %s", n.OrderNumber),
		TemplateName:   "return_update",
		Variables: map[string]interface{}{
			"customerName": n.CustomerName,
			"orderNumber":  n.OrderNumber,
			"status":       n.Status,
		},
	}
	return c.send(ctx, n.StoreID, req)
}

func (c *notificationClient) send(ctx context.Context, storeID string, req sendRequest) error {
	if c.baseURL == "" {
		c.logger.WithField("subject", req.Subject).Debug("Notification service not configured, dropping email")
		return nil
	}
	if req.RecipientEmail == "" {
		c.logger.Debug("Skipping notification, no recipient email")
		return nil
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/notifications/send", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Store-ID", storeID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("notification service returned status %d", resp.StatusCode)
	}
	return nil
}
