package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/payhuk02/payhula-sub017/internal/models"
)

// APIKeyRepository defines the interface for API key lookups
type APIKeyRepository interface {
	Create(key *models.APIKey) error
	GetByHash(hash string) (*models.APIKey, error)
	TouchLastUsed(key *models.APIKey) error
}

type apiKeyRepository struct {
	db *gorm.DB
}

// NewAPIKeyRepository creates a new API key repository
func NewAPIKeyRepository(db *gorm.DB) APIKeyRepository {
	return &apiKeyRepository{db: db}
}

// Create inserts an API key row (hash only, never plaintext)
func (r *apiKeyRepository) Create(key *models.APIKey) error {
	if err := r.db.Create(key).Error; err != nil {
		return fmt.Errorf("failed to create api key: %w", err)
	}
	return nil
}

// GetByHash looks up a key by its SHA-256 digest
func (r *apiKeyRepository) GetByHash(hash string) (*models.APIKey, error) {
	var key models.APIKey
	err := r.db.Where("key_hash = ?", hash).First(&key).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}
	return &key, nil
}

// TouchLastUsed stamps the key's last-used timestamp, best effort
func (r *apiKeyRepository) TouchLastUsed(key *models.APIKey) error {
	now := time.Now()
	return r.db.Model(&models.APIKey{}).
		Where("id = ?", key.ID).
		Update("last_used_at", now).Error
}
