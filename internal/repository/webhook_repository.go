package repository

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/payhuk02/payhula-sub017/internal/models"
)

// WebhookRepository defines the interface for webhook endpoint and
// delivery persistence
type WebhookRepository interface {
	CreateEndpoint(endpoint *models.WebhookEndpoint) error
	ListEndpoints(storeID string) ([]models.WebhookEndpoint, error)
	DeleteEndpoint(id uuid.UUID, storeID string) error
	ActiveEndpointsForEvent(storeID, event string) ([]models.WebhookEndpoint, error)
	RecordDelivery(delivery *models.WebhookDelivery) error
}

type webhookRepository struct {
	db *gorm.DB
}

// NewWebhookRepository creates a new webhook repository
func NewWebhookRepository(db *gorm.DB) WebhookRepository {
	return &webhookRepository{db: db}
}

// CreateEndpoint registers a merchant webhook URL
func (r *webhookRepository) CreateEndpoint(endpoint *models.WebhookEndpoint) error {
	if err := r.db.Create(endpoint).Error; err != nil {
		return fmt.Errorf("failed to create webhook endpoint: %w", err)
	}
	return nil
}

// ListEndpoints returns all endpoints for a store
func (r *webhookRepository) ListEndpoints(storeID string) ([]models.WebhookEndpoint, error) {
	var endpoints []models.WebhookEndpoint
	err := r.db.Where("store_id = ?", storeID).Order("created_at DESC").Find(&endpoints).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list webhook endpoints: %w", err)
	}
	return endpoints, nil
}

// DeleteEndpoint removes an endpoint registration
func (r *webhookRepository) DeleteEndpoint(id uuid.UUID, storeID string) error {
	result := r.db.Where("store_id = ?", storeID).Delete(&models.WebhookEndpoint{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete webhook endpoint: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ActiveEndpointsForEvent returns the active endpoints subscribed to an
// event in a store. Subscription filtering happens in memory since event
// lists are short.
func (r *webhookRepository) ActiveEndpointsForEvent(storeID, event string) ([]models.WebhookEndpoint, error) {
	var endpoints []models.WebhookEndpoint
	err := r.db.Where("store_id = ? AND is_active = ?", storeID, true).Find(&endpoints).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load webhook endpoints: %w", err)
	}

	matched := endpoints[:0]
	for _, e := range endpoints {
		if e.SubscribedTo(event) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// RecordDelivery persists a dispatch attempt outcome
func (r *webhookRepository) RecordDelivery(delivery *models.WebhookDelivery) error {
	if err := r.db.Create(delivery).Error; err != nil {
		return fmt.Errorf("failed to record webhook delivery: %w", err)
	}
	return nil
}
