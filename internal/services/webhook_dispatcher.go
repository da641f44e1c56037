package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/payhuk02/payhula-sub017/internal/clients"
	"github.com/payhuk02/payhula-sub017/internal/models"
	"github.com/payhuk02/payhula-sub017/internal/repository"
)

// WebhookDispatcher delivers domain events to merchant-registered
// endpoints. Dispatch is fire-and-forget: failures are logged and
// recorded, never surfaced to the triggering workflow.
type WebhookDispatcher interface {
	Trigger(storeID, event string, payload map[string]interface{})
}

type webhookDispatcher struct {
	repo   repository.WebhookRepository
	client clients.WebhookClient
	logger *logrus.Entry
}

// NewWebhookDispatcher creates a webhook dispatcher
func NewWebhookDispatcher(repo repository.WebhookRepository, client clients.WebhookClient, logger *logrus.Logger) WebhookDispatcher {
	return &webhookDispatcher{
		repo:   repo,
		client: client,
		logger: logger.WithField("component", "webhook_dispatcher"),
	}
}

// Trigger dispatches the event to every subscribed endpoint in a
// goroutine and returns immediately
func (d *webhookDispatcher) Trigger(storeID, event string, payload map[string]interface{}) {
	go d.dispatch(storeID, event, payload)
}

func (d *webhookDispatcher) dispatch(storeID, event string, payload map[string]interface{}) {
	log := d.logger.WithFields(logrus.Fields{"store_id": storeID, "event": event})

	endpoints, err := d.repo.ActiveEndpointsForEvent(storeID, event)
	if err != nil {
		log.WithError(err).Error("Failed to load webhook endpoints")
		return
	}
	if len(endpoints) == 0 {
		return
	}

	body, err := json.Marshal(map[string]interface{}{
		"event":     event,
		"storeId":   storeID,
		"timestamp": time.Now().UTC(),
		"data":      payload,
	})
	if err != nil {
		log.WithError(err).Error("Failed to marshal webhook payload")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, endpoint := range endpoints {
		status, err := d.client.Post(ctx, endpoint.URL, endpoint.Secret, body)

		delivery := &models.WebhookDelivery{
			EndpointID: endpoint.ID,
			StoreID:    storeID,
			Event:      event,
			Payload:    models.JSONB(body),
			StatusCode: status,
			Success:    err == nil && status < 400,
		}
		if err != nil {
			delivery.Error = err.Error()
			log.WithError(err).WithField("url", endpoint.URL).Warn("Webhook delivery failed")
		} else if status >= 400 {
			log.WithFields(logrus.Fields{"url": endpoint.URL, "status": status}).Warn("Webhook endpoint rejected delivery")
		}

		if recErr := d.repo.RecordDelivery(delivery); recErr != nil {
			log.WithError(recErr).Error("Failed to record webhook delivery")
		}
	}
}
