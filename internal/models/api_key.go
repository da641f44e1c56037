package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// APIKey is a store-scoped credential. Only the SHA-256 hash of the key
// is stored; the plaintext is shown once at creation.
type APIKey struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	StoreID    string         `json:"storeId" gorm:"type:varchar(255);not null;index:idx_api_keys_store"`
	Name       string         `json:"name" gorm:"type:varchar(255);not null"`
	KeyHash    string         `json:"-" gorm:"type:varchar(64);not null;uniqueIndex:idx_api_keys_hash"`
	Scopes     pq.StringArray `json:"scopes" gorm:"type:text[]"`
	IsActive   bool           `json:"isActive" gorm:"default:true"`
	LastUsedAt *time.Time     `json:"lastUsedAt,omitempty"`
	ExpiresAt  *time.Time     `json:"expiresAt,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// HashAPIKey returns the hex SHA-256 digest stored and looked up for a key
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// HasScope checks scope membership; the wildcard scope grants everything
func (k *APIKey) HasScope(scope string) bool {
	for _, s := range k.Scopes {
		if s == scope || s == "*" {
			return true
		}
	}
	return false
}

// Valid reports whether the key can authenticate right now
func (k *APIKey) Valid(now time.Time) bool {
	if !k.IsActive {
		return false
	}
	if k.ExpiresAt != nil && k.ExpiresAt.Before(now) {
		return false
	}
	return true
}
